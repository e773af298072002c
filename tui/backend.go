package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/notomate/agent"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/runner"
)

// Backend runs the turns of one conversation.
type Backend interface {
	// Start prepares a fresh conversation.
	Start(ctx context.Context) error
	// Send answers input. emit receives the events of the turn.
	Send(ctx context.Context, input string, emit core.EmitFunc) (string, error)
}

// Asker answers a question with the notes specialist.
type Asker interface {
	Ask(ctx context.Context, history []core.Message, input string, emit core.EmitFunc) (*agent.Result, error)
}

// AgentBackend talks to the notes agent and keeps the history itself.
type AgentBackend struct {
	asker Asker

	mu      sync.Mutex
	history []core.Message
}

// NewAgentBackend creates an agent mode backend.
func NewAgentBackend(asker Asker) *AgentBackend {
	return &AgentBackend{asker: asker}
}

// Start clears the history.
func (b *AgentBackend) Start(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = nil

	return nil
}

// Send asks the agent and records the exchange on success.
func (b *AgentBackend) Send(ctx context.Context, input string, emit core.EmitFunc) (string, error) {
	b.mu.Lock()
	history := append([]core.Message(nil), b.history...)
	b.mu.Unlock()

	res, err := b.asker.Ask(ctx, history, input, emit)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	b.history = append(b.history, core.NewUserMessage(input), core.NewAssistantMessage(agent.NotesSpecialistName, res.Output))
	b.mu.Unlock()

	return res.Output, nil
}

// History returns a copy of the recorded exchanges.
func (b *AgentBackend) History() []core.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]core.Message(nil), b.history...)
}

// SupervisorBackend runs turns through a runner session.
type SupervisorBackend struct {
	runner    *runner.Runner
	sessionID string
}

// NewSupervisorBackend creates a supervisor mode backend.
func NewSupervisorBackend(r *runner.Runner) *SupervisorBackend {
	return &SupervisorBackend{runner: r}
}

// Start opens a new session, dropping the previous one.
func (b *SupervisorBackend) Start(context.Context) error {
	if b.sessionID != "" {
		_ = b.runner.Sessions().Delete(b.sessionID)
	}

	sess, err := b.runner.Sessions().Create()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.sessionID = sess.ID

	return nil
}

// SessionID returns the current session.
func (b *SupervisorBackend) SessionID() string { return b.sessionID }

// Send runs one graph turn and returns the final answer.
func (b *SupervisorBackend) Send(ctx context.Context, input string, emit core.EmitFunc) (string, error) {
	if b.sessionID == "" {
		return "", errors.New("conversation not started")
	}

	_, eventsCh, errorsCh, err := b.runner.Run(ctx, b.sessionID, input)
	if err != nil {
		return "", err
	}

	var final core.Message
	for ev := range eventsCh {
		if ev.Message != nil && ev.Message.IsFinalAnswer() {
			final = *ev.Message
		}
		emit.Emit(ev)
	}

	if err := <-errorsCh; err != nil {
		return "", err
	}

	return final.Text(), nil
}
