package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/hupe1980/notomate/core"
)

// eventStream writes server-sent events. Agents may emit from several
// goroutines, so writes are serialized.
type eventStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &eventStream{w: w, flusher: flusher}, true
}

type deltaPayload struct {
	Author string `json:"author"`
	Delta  string `json:"delta"`
}

// forward converts an agent event into an SSE frame.
func (s *eventStream) forward(ev core.Event) {
	switch ev.Type {
	case core.EventTypeDelta:
		s.send("delta", deltaPayload{Author: ev.Author, Delta: ev.Delta})
	case core.EventTypeMessage:
		if ev.Message != nil {
			s.send("message", toWire(*ev.Message))
		}
	}
}

func (s *eventStream) send(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	s.flusher.Flush()
}
