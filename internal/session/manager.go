package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"StudyHub/internal/assembler"
	"StudyHub/internal/scoring"
)

// Manager owns at most one active session per user. The presentation layer
// reaches sessions only through it, so a discarded session can never be
// mutated by a stale timer: Start and Dismiss cancel the old timer before
// the session becomes unreachable.
type Manager struct {
	mu       sync.Mutex
	recorder Recorder
	sessions map[uint]*Session
}

func NewManager(recorder Recorder) *Manager {
	return &Manager{
		recorder: recorder,
		sessions: make(map[uint]*Session),
	}
}

// Start begins a fresh attempt at the given test. Any existing session for
// the user, in progress or completed, is discarded first: a re-entrant
// start behaves as a full reset with a clean answer buffer and timer.
func (m *Manager) Start(test assembler.TestDefinition, userID uint) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.sessions[userID]; ok {
		old.stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:       uuid.NewString(),
		userID:   userID,
		test:     test,
		answers:  scoring.EmptyAnswers(len(test.Questions)),
		timeLeft: test.Duration * 60,
		recorder: m.recorder,
		cancel:   cancel,
	}
	m.sessions[userID] = s

	go s.runTimer(ctx)
	return s
}

// Get returns the user's active session, completed or not.
func (m *Manager) Get(userID uint) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// Dismiss discards the user's session and cancels its timer. Nothing is
// persisted here; an unfinished attempt is simply dropped.
func (m *Manager) Dismiss(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return ErrNoActiveSession
	}
	s.stop()
	delete(m.sessions, userID)
	return nil
}

// Shutdown cancels every live timer. Used on process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		s.stop()
		delete(m.sessions, id)
	}
}
