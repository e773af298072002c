package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType categorizes an Event.
type EventType string

const (
	// EventTypeDelta carries an incremental chunk of assistant text.
	EventTypeDelta EventType = "delta"
	// EventTypeMessage carries a finished message appended to the history.
	EventTypeMessage EventType = "message"
	// EventTypeError carries a terminal error description.
	EventTypeError EventType = "error"
)

// Event is the streaming unit delivered to front ends while a turn runs.
// Streaming is a presentation concern: the delegation graph only ever acts on
// finished messages.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id,omitempty"`
	Author    string    `json:"author"`
	Type      EventType `json:"type"`
	Delta     string    `json:"delta,omitempty"`
	Message   *Message  `json:"-"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDeltaEvent creates a partial text event.
func NewDeltaEvent(runID, author, delta string) Event {
	return Event{ID: NewID(), RunID: runID, Author: author, Type: EventTypeDelta, Delta: delta, Timestamp: time.Now().UTC()}
}

// NewMessageEvent creates an event announcing a finished message.
func NewMessageEvent(runID, author string, msg Message) Event {
	return Event{ID: NewID(), RunID: runID, Author: author, Type: EventTypeMessage, Message: &msg, Timestamp: time.Now().UTC()}
}

// NewErrorEvent creates an event describing a terminal error.
func NewErrorEvent(runID, author string, err error) Event {
	return Event{ID: NewID(), RunID: runID, Author: author, Type: EventTypeError, Error: err.Error(), Timestamp: time.Now().UTC()}
}

// IsPartial reports whether this event is a streaming fragment.
func (e Event) IsPartial() bool { return e.Type == EventTypeDelta }

// EmitFunc receives events produced during a run. A nil EmitFunc discards them.
type EmitFunc func(Event)

// Emit calls f when it is non-nil.
func (f EmitFunc) Emit(ev Event) {
	if f != nil {
		f(ev)
	}
}

// NewID generates a new unique identifier for messages, events and runs.
func NewID() string { return uuid.NewString() }
