package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StudyHub/internal/assembler"
	"StudyHub/internal/models"
	"StudyHub/internal/scoring"
)

// fakeRecorder counts saves and can be told to fail.
type fakeRecorder struct {
	mu    sync.Mutex
	saves []*models.TestResult
	fail  error
	next  uint32
}

func (f *fakeRecorder) Save(_ context.Context, result *models.TestResult) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	f.saves = append(f.saves, result)
	return uint(atomic.AddUint32(&f.next, 1)), nil
}

func (f *fakeRecorder) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func easyTest(numQuestions int) assembler.TestDefinition {
	qs := make([]models.Question, numQuestions)
	for i := range qs {
		qs[i] = models.Question{
			Prompt:        fmt.Sprintf("question %d", i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
			Difficulty:    models.DifficultyEasy,
		}
	}
	return assembler.TestDefinition{
		ID:         "javascript-easy",
		Title:      "JavaScript Easy",
		Subject:    "JavaScript",
		Duration:   15,
		Difficulty: models.DifficultyEasy,
		Questions:  qs,
	}
}

// newTestSession builds a session without a running timer so tests drive
// the clock by calling Tick directly.
func newTestSession(test assembler.TestDefinition, userID uint, recorder Recorder) *Session {
	return &Session{
		id:       uuid.NewString(),
		userID:   userID,
		test:     test,
		answers:  scoring.EmptyAnswers(len(test.Questions)),
		timeLeft: test.Duration * 60,
		recorder: recorder,
	}
}

func TestStartInitializesSession(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewManager(rec)
	defer m.Shutdown()

	s := m.Start(easyTest(3), 7)
	snap := s.Snapshot()

	assert.Equal(t, "in_progress", snap.State)
	assert.Equal(t, 0, snap.CurrentQuestion)
	assert.Equal(t, 3, snap.TotalQuestions)
	assert.Equal(t, 15*60, snap.TimeLeft)
	assert.Equal(t, []int{-1, -1, -1}, snap.Answers)
	require.NotNil(t, snap.Question)
	assert.Equal(t, "question 1", snap.Question.Prompt)
}

func TestNavigationClampsAtBounds(t *testing.T) {
	s := newTestSession(easyTest(3), 1, &fakeRecorder{})

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Next())
	}
	assert.Equal(t, 2, s.Snapshot().CurrentQuestion)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Previous())
	}
	assert.Equal(t, 0, s.Snapshot().CurrentQuestion)
}

func TestSelectAnswerOverwrites(t *testing.T) {
	s := newTestSession(easyTest(2), 1, &fakeRecorder{})

	require.NoError(t, s.SelectAnswer(1))
	assert.Equal(t, []int{1, -1}, s.Snapshot().Answers)

	// Re-selecting the same question overwrites, never appends.
	require.NoError(t, s.SelectAnswer(3))
	assert.Equal(t, []int{3, -1}, s.Snapshot().Answers)

	assert.ErrorIs(t, s.SelectAnswer(4), ErrInvalidOption)
	assert.ErrorIs(t, s.SelectAnswer(-1), ErrInvalidOption)
}

func TestSubmitScoresAndSaves(t *testing.T) {
	rec := &fakeRecorder{}
	test := easyTest(2)
	test.Questions[0].CorrectAnswer = 0
	test.Questions[1].CorrectAnswer = 1
	s := newTestSession(test, 9, rec)

	require.NoError(t, s.SelectAnswer(0))
	require.NoError(t, s.Next())
	require.NoError(t, s.SelectAnswer(2)) // wrong

	result, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, []int{0, 2}, result.Answers)
	assert.Equal(t, uint(9), result.UserID)
	assert.Equal(t, "javascript-easy", result.TestID)
	assert.Equal(t, 1, rec.saveCount())

	snap := s.Snapshot()
	assert.Equal(t, "completed", snap.State)
	assert.Nil(t, snap.Question)

	// Second submit must not double-fire.
	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSessionCompleted)
	assert.Equal(t, 1, rec.saveCount())
}

func TestSubmitWithUnansweredScoresIncorrect(t *testing.T) {
	rec := &fakeRecorder{}
	s := newTestSession(easyTest(4), 1, rec)

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.CorrectAnswers)
	assert.Equal(t, []int{-1, -1, -1, -1}, result.Answers)
}

func TestTimerExpiryAutoSubmits(t *testing.T) {
	rec := &fakeRecorder{}
	s := newTestSession(easyTest(2), 3, rec)

	// A 15-minute test: run the full countdown.
	ctx := context.Background()
	done := false
	for i := 0; i < 15*60; i++ {
		done = s.Tick(ctx)
	}
	assert.True(t, done)
	assert.Equal(t, 1, rec.saveCount())

	result := rec.saves[0]
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, []int{-1, -1}, result.Answers)
	assert.Equal(t, 15*60, result.TimeSpent)
	assert.Equal(t, "completed", s.Snapshot().State)

	// Further ticks are no-ops on the completed session.
	assert.True(t, s.Tick(ctx))
	assert.Equal(t, 1, rec.saveCount())
}

func TestFinalTickRacingManualSubmit(t *testing.T) {
	// A tick landing exactly as a manual submit is in flight must produce
	// exactly one TestResult.
	for i := 0; i < 100; i++ {
		rec := &fakeRecorder{}
		s := newTestSession(easyTest(2), 1, rec)
		s.timeLeft = 1

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Tick(context.Background())
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Submit(context.Background())
		}()
		wg.Wait()

		require.Equal(t, 1, rec.saveCount())
	}
}

func TestFailedSaveKeepsCompletedState(t *testing.T) {
	rec := &fakeRecorder{fail: errors.New("permission denied")}
	test := easyTest(1)
	s := newTestSession(test, 1, rec)
	require.NoError(t, s.SelectAnswer(test.Questions[0].CorrectAnswer))

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score)

	snap := s.Snapshot()
	assert.Equal(t, "completed", snap.State)
	assert.True(t, snap.SaveFailed)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 100, snap.Result.Score)

	// Review stays available locally despite the failed save.
	items, err := s.Review()
	require.NoError(t, err)
	assert.True(t, items[0].IsCorrect)
}

func TestReview(t *testing.T) {
	rec := &fakeRecorder{}
	test := easyTest(3)
	test.Questions[0].CorrectAnswer = 0
	test.Questions[1].CorrectAnswer = 1
	test.Questions[2].CorrectAnswer = 2
	s := newTestSession(test, 1, rec)

	_, err := s.Review()
	assert.ErrorIs(t, err, ErrNotCompleted)

	require.NoError(t, s.SelectAnswer(0))
	require.NoError(t, s.Next())
	require.NoError(t, s.SelectAnswer(3))

	_, err = s.Submit(context.Background())
	require.NoError(t, err)

	items, err := s.Review()
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.True(t, items[0].IsCorrect)
	assert.Equal(t, "a", items[0].SelectedText)

	assert.False(t, items[1].IsCorrect)
	assert.Equal(t, "d", items[1].SelectedText)
	assert.Equal(t, "b", items[1].CorrectText)

	assert.False(t, items[2].IsCorrect)
	assert.Equal(t, "Not answered", items[2].SelectedText)
}

func TestDismissThenStartResetsBuffer(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewManager(rec)
	defer m.Shutdown()

	test := easyTest(3)
	s := m.Start(test, 5)
	require.NoError(t, s.SelectAnswer(2))
	require.NoError(t, s.Next())

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.Dismiss(5))
	_, err = m.Get(5)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	// A fresh session is independent of the prior attempt's buffer.
	fresh := m.Start(test, 5)
	snap := fresh.Snapshot()
	assert.Equal(t, []int{-1, -1, -1}, snap.Answers)
	assert.Equal(t, 0, snap.CurrentQuestion)
	assert.Equal(t, test.Duration*60, snap.TimeLeft)
	assert.NotEqual(t, s.Snapshot().SessionID, snap.SessionID)
}

func TestReentrantStartResets(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewManager(rec)
	defer m.Shutdown()

	test := easyTest(2)
	first := m.Start(test, 11)
	require.NoError(t, first.SelectAnswer(1))

	// Starting again while InProgress behaves as a full reset.
	second := m.Start(test, 11)
	assert.Equal(t, []int{-1, -1}, second.Snapshot().Answers)

	got, err := m.Get(11)
	require.NoError(t, err)
	assert.Equal(t, second.Snapshot().SessionID, got.Snapshot().SessionID)

	assert.Equal(t, 0, rec.saveCount())
}

func TestDismissWithoutSession(t *testing.T) {
	m := NewManager(&fakeRecorder{})
	assert.ErrorIs(t, m.Dismiss(42), ErrNoActiveSession)
}
