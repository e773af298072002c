package model

import (
	"context"
	"errors"
	"sync"

	"github.com/hupe1980/notomate/core"
)

// ErrNoScriptedResponse is returned by MockModel when its script is exhausted.
var ErrNoScriptedResponse = errors.New("mock model: no scripted response left")

// Turn is one scripted MockModel reply.
type Turn struct {
	Text  string
	Calls []core.FunctionCall
	Err   error
}

// TextTurn scripts a plain text answer.
func TextTurn(text string) Turn { return Turn{Text: text} }

// CallTurn scripts a reply requesting one or more tool invocations.
func CallTurn(calls ...core.FunctionCall) Turn { return Turn{Calls: calls} }

// ErrorTurn scripts a provider failure.
func ErrorTurn(err error) Turn { return Turn{Err: err} }

// MockModel is a deterministic in-memory Model useful for tests & examples. It
// replays scripted turns in order and records every request it received.
type MockModel struct {
	info Info

	mu       sync.Mutex
	script   []Turn
	requests []Request
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name string, turns ...Turn) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      "mock",
			SupportsTools: true,
		},
		script: turns,
	}
}

// Enqueue appends turns to the script.
func (m *MockModel) Enqueue(turns ...Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, turns...)
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns how many times Generate was invoked.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockModel) next(req Request) (Turn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if len(m.script) == 0 {
		return Turn{}, false
	}
	t := m.script[0]
	m.script = m.script[1:]
	return t, true
}

// Generate implements Model. Text turns are streamed rune by rune when the
// request asks for streaming.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		turn, ok := m.next(req)
		if !ok {
			errCh <- ErrNoScriptedResponse
			return
		}
		if turn.Err != nil {
			errCh <- turn.Err
			return
		}

		if len(turn.Calls) > 0 {
			calls := make([]core.FunctionCall, len(turn.Calls))
			for i, c := range turn.Calls {
				if c.ID == "" {
					c.ID = "call_" + core.NewID()
				}
				calls[i] = c
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
			case respCh <- Response{
				ID:           core.NewID(),
				Message:      core.NewFunctionCallMessage(m.info.Name, calls...),
				FinishReason: "tool_calls",
			}:
			}
			return
		}

		if req.Stream {
			for _, r := range turn.Text {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Message: core.NewAssistantMessage(m.info.Name, string(r))}:
				}
			}
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{
			ID:           core.NewID(),
			Message:      core.NewAssistantMessage(m.info.Name, turn.Text),
			FinishReason: "stop",
		}:
		}
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
