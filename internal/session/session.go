package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"StudyHub/internal/assembler"
	"StudyHub/internal/models"
	"StudyHub/internal/scoring"
)

var (
	ErrNoActiveSession  = errors.New("no active test session")
	ErrSessionCompleted = errors.New("test session already completed")
	ErrNotCompleted     = errors.New("test session is not completed yet")
	ErrInvalidOption    = errors.New("selected option is out of range")
)

// State of one test attempt. A user with no session is Idle; Dismiss
// returns there by discarding the session.
type State int

const (
	StateIdle State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

// Recorder persists finished attempts. A Save failure is surfaced but never
// blocks the local Completed state.
type Recorder interface {
	Save(ctx context.Context, result *models.TestResult) (uint, error)
}

// Session is the runtime state of one in-progress test attempt. All fields
// are guarded by mu; the 1 Hz timer goroutine and the user's request flow
// are the only writers.
type Session struct {
	mu        sync.Mutex
	id        string
	userID    uint
	test      assembler.TestDefinition
	current   int
	answers   []int
	timeLeft  int
	completed bool
	result    *models.TestResult
	saveErr   error
	recorder  Recorder
	cancel    context.CancelFunc
}

// Snapshot is a read-only copy of session state for the presentation layer.
type Snapshot struct {
	SessionID       string             `json:"session_id"`
	TestID          string             `json:"test_id"`
	TestTitle       string             `json:"test_title"`
	State           string             `json:"state"`
	CurrentQuestion int                `json:"current_question"`
	TotalQuestions  int                `json:"total_questions"`
	Question        *models.Question   `json:"question,omitempty"`
	Answers         []int              `json:"answers"`
	TimeLeft        int                `json:"time_left"`
	Result          *models.TestResult `json:"result,omitempty"`
	SaveFailed      bool               `json:"save_failed,omitempty"`
}

// ReviewItem is the per-question breakdown for the result review screen.
type ReviewItem struct {
	Index        int      `json:"index"`
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	Selected     int      `json:"selected"`
	SelectedText string   `json:"selected_text"`
	Correct      int      `json:"correct"`
	CorrectText  string   `json:"correct_text"`
	IsCorrect    bool     `json:"is_correct"`
	Explanation  string   `json:"explanation"`
}

// SelectAnswer overwrites the answer slot for the current question. It does
// not advance the position; re-selecting overwrites.
func (s *Session) SelectAnswer(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return ErrSessionCompleted
	}
	q := s.test.Questions[s.current]
	if option < 0 || option >= len(q.Options) {
		return ErrInvalidOption
	}
	s.answers[s.current] = option
	return nil
}

// Next advances to the next question, clamping at the last one.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return ErrSessionCompleted
	}
	if s.current < len(s.test.Questions)-1 {
		s.current++
	}
	return nil
}

// Previous moves back one question, clamping at the first one.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return ErrSessionCompleted
	}
	if s.current > 0 {
		s.current--
	}
	return nil
}

// Tick is invoked once per second by the session timer. It decrements the
// counter and, at exactly zero, auto-submits. The decrement and the submit
// are evaluated under the session lock so a manual Submit racing the final
// tick can never produce a second result. Returns true when the timer
// should stop.
func (s *Session) Tick(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return true
	}
	if s.timeLeft > 0 {
		s.timeLeft--
		if s.timeLeft == 0 {
			s.submitLocked(ctx)
			return true
		}
	}
	return false
}

// Submit freezes the session into a TestResult. It is idempotent: once the
// completed flag is set, timer-driven and user-driven submits are mutually
// exclusive and a second call returns ErrSessionCompleted.
func (s *Session) Submit(ctx context.Context) (*models.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return nil, ErrSessionCompleted
	}
	return s.submitLocked(ctx), nil
}

func (s *Session) submitLocked(ctx context.Context) *models.TestResult {
	s.completed = true

	outcome := scoring.Score(s.test.Questions, s.answers)
	answers := make([]int, len(s.answers))
	copy(answers, s.answers)

	result := &models.TestResult{
		UserID:         s.userID,
		TestID:         s.test.ID,
		TestTitle:      s.test.Title,
		Score:          outcome.Percentage,
		TotalQuestions: len(s.test.Questions),
		CorrectAnswers: outcome.CorrectCount,
		Answers:        answers,
		TimeSpent:      s.test.Duration*60 - s.timeLeft,
	}

	// The result is handed to the recorder before the Completed state is
	// exposed: Snapshot blocks on the session lock until Save returns.
	// A failed save keeps the local result visible for review.
	id, err := s.recorder.Save(ctx, result)
	if err != nil {
		s.saveErr = err
		log.Printf("ERROR: Could not save test result for user %d: %v", s.userID, err)
	} else {
		result.ID = id
	}
	s.result = result

	// Stop the timer last: the tick path hands its own context to Save,
	// so cancelling earlier would abort the write mid-flight.
	if s.cancel != nil {
		s.cancel()
	}
	return result
}

// Snapshot returns a copy of the session state for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := StateInProgress
	if s.completed {
		state = StateCompleted
	}

	answers := make([]int, len(s.answers))
	copy(answers, s.answers)

	snap := Snapshot{
		SessionID:       s.id,
		TestID:          s.test.ID,
		TestTitle:       s.test.Title,
		State:           state.String(),
		CurrentQuestion: s.current,
		TotalQuestions:  len(s.test.Questions),
		Answers:         answers,
		TimeLeft:        s.timeLeft,
		Result:          s.result,
		SaveFailed:      s.saveErr != nil,
	}
	if !s.completed {
		// The question is a copy; the correct option and explanation are
		// withheld until the session completes.
		q := s.test.Questions[s.current]
		q.CorrectAnswer = scoring.Unanswered
		q.Explanation = ""
		snap.Question = &q
	}
	return snap
}

// Review recomputes per-question correctness from the test snapshot still
// held in memory. Persisted results alone cannot rebuild this breakdown
// (they carry ids and the raw buffer only), so review is scoped to the
// lifetime of the Completed session.
func (s *Session) Review() ([]ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.completed {
		return nil, ErrNotCompleted
	}

	items := make([]ReviewItem, len(s.test.Questions))
	for i, q := range s.test.Questions {
		selected := s.answers[i]
		item := ReviewItem{
			Index:        i,
			Prompt:       q.Prompt,
			Options:      q.Options,
			Selected:     selected,
			SelectedText: "Not answered",
			Correct:      q.CorrectAnswer,
			CorrectText:  q.Options[q.CorrectAnswer],
			IsCorrect:    selected == q.CorrectAnswer,
			Explanation:  q.Explanation,
		}
		if selected != scoring.Unanswered {
			item.SelectedText = q.Options[selected]
		}
		items[i] = item
	}
	return items, nil
}

// stop cancels the session timer. Safe to call more than once.
func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) runTimer(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Tick(ctx) {
				return
			}
		}
	}
}
