package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	astar "github.com/pdrpinto/gridastar"
)

// Session is one board being searched step by step.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	stepper    *astar.Stepper
	last       astar.StepSnapshot
	lastAccess time.Time
}

// Step advances the search up to n nodes and returns the latest snapshot.
// ctx bounds this call only: a cancelled request stops between nodes and
// leaves the session resumable.
func (s *Session) Step(ctx context.Context, n int) (astar.StepSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < n && !s.stepper.Done(); i++ {
		if err := ctx.Err(); err != nil {
			return s.last, err
		}
		snap, err := s.stepper.Step(context.Background())
		s.last = snap
		if err != nil {
			return snap, err
		}
	}
	return s.last, s.last.Err
}

// Run finishes the search.
func (s *Session) Run(ctx context.Context) (astar.StepSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for !s.stepper.Done() {
		if err := ctx.Err(); err != nil {
			return s.last, err
		}
		snap, err := s.stepper.Step(context.Background())
		s.last = snap
		if err != nil {
			return snap, err
		}
	}
	return s.last, s.last.Err
}

// Snapshot returns the state after the latest step.
func (s *Session) Snapshot() astar.StepSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Grid returns the board being searched.
func (s *Session) Grid() *astar.Grid { return s.stepper.Grid() }

// Store is an in-memory, capacity-bounded set of sessions. When full, the
// least recently used session is evicted.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxSessions int
	now         func() time.Time
}

// NewStore creates a store holding at most maxSessions sessions.
func NewStore(maxSessions int) *Store {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &Store{
		sessions:    make(map[string]*Session),
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Create starts a session searching grid from its start to its end.
func (s *Store) Create(grid *astar.Grid, observer astar.Observer) (*Session, error) {
	if grid == nil {
		return nil, astar.ErrInvalidConfiguration
	}
	stepper, err := astar.NewStepper(grid, grid.Start(), grid.End(), observer)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		s.evictOldest()
	}

	now := s.now()
	sess := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		stepper:    stepper,
		lastAccess: now,
		last:       stepper.Snapshot(),
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastAccess.Before(oldest) {
			oldestID, oldest = id, sess.lastAccess
		}
	}
	delete(s.sessions, oldestID)
}

// Get looks up a session and marks it as used.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastAccess = s.now()
	return sess, true
}

// Delete removes a session and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
