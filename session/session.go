package session

import (
	"errors"
	"time"

	"github.com/hupe1980/notomate/core"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Session is one conversation.
type Session struct {
	ID        string
	Messages  []core.Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no slices with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = append([]core.Message(nil), s.Messages...)
	return &c
}

// Store persists sessions.
type Store interface {
	Create() (*Session, error)
	Get(id string) (*Session, error)
	Append(id string, msgs ...core.Message) error
	Replace(id string, msgs []core.Message) error
	Delete(id string) error
}
