package core

import (
	"context"
	"maps"

	"github.com/hupe1980/notomate/logging"
)

// AgentInfo carries identifying details about an agent used in contexts & events.
// Name is the external identifier; Type categorizes implementation (e.g. "supervisor", "specialist").
type AgentInfo struct{ Name, Type string }

// RunContext carries execution state & helpers for one conversational turn.
// It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (SessionID, RunID, Agent info)
//   - Template state used to render agent instructions
//   - The event sink front ends subscribe to
//   - A model call budget shared by every agent of the turn
//
// A RunContext is owned by a single turn and is not safe for concurrent mutation.
type RunContext struct {
	Context          context.Context
	SessionID, RunID string
	Agent            AgentInfo
	State            map[string]any
	Budget           *CallBudget

	emit EmitFunc

	*logHelper
}

// NewRunContext constructs a RunContext. maxModelCalls of zero disables the limit.
func NewRunContext(
	ctx context.Context,
	sessionID, runID string,
	maxModelCalls int,
	emit EmitFunc,
	logger logging.Logger,
) *RunContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if runID == "" {
		runID = NewID()
	}
	return &RunContext{
		Context:   ctx,
		SessionID: sessionID,
		RunID:     runID,
		State:     map[string]any{},
		Budget:    NewCallBudget(maxModelCalls),
		emit:      emit,
		logHelper: newLogHelper(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetState returns a template state value.
func (rc *RunContext) GetState(k string) (any, bool) {
	v, ok := rc.State[k]
	return v, ok
}

// SetState stores a template state value.
func (rc *RunContext) SetState(k string, v any) { rc.State[k] = v }

// EmitEvent forwards ev to the subscribed front end, if any.
func (rc *RunContext) EmitEvent(ev Event) {
	if ev.RunID == "" {
		ev.RunID = rc.RunID
	}
	rc.emit.Emit(ev)
}

// WithAgent returns a shallow copy scoped to agent. The budget, event sink
// and logger are shared; state is copied.
func (rc *RunContext) WithAgent(agent AgentInfo) *RunContext {
	c := &RunContext{
		Context:   rc.Context,
		SessionID: rc.SessionID,
		RunID:     rc.RunID,
		Agent:     agent,
		State:     maps.Clone(rc.State),
		Budget:    rc.Budget,
		emit:      rc.emit,
		logHelper: rc.logHelper,
	}
	if c.State == nil {
		c.State = map[string]any{}
	}
	return c
}

// NewToolContext derives the context handed to a tool invocation.
func (rc *RunContext) NewToolContext(functionCallID string) *ToolContext {
	return NewToolContext(rc.Context, rc.Agent.Name, functionCallID, rc.Logger())
}
