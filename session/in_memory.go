package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/notomate/core"
)

// InMemoryStore is a volatile Store keeping sessions in a process local
// map. It is safe for concurrent access. Returned sessions are clones.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create allocates a session with a fresh uuid and an empty history.
func (s *InMemoryStore) Create() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	s.sessions[sess.ID] = sess

	return sess.Clone(), nil
}

// Get returns a copy of the session.
func (s *InMemoryStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return sess.Clone(), nil
}

// Append adds messages to the end of the session history.
func (s *InMemoryStore) Append(id string, msgs ...core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	sess.Messages = append(sess.Messages, msgs...)
	sess.UpdatedAt = s.now()

	return nil
}

// Replace swaps the whole history, typically with the result of a turn.
func (s *InMemoryStore) Replace(id string, msgs []core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	sess.Messages = append([]core.Message(nil), msgs...)
	sess.UpdatedAt = s.now()

	return nil
}

// Delete forgets the session.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)

	return nil
}

// Len returns the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
