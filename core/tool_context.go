package core

import (
	"context"

	"github.com/hupe1980/notomate/logging"
)

// ToolContext provides a constrained surface for tool implementations invoked
// by an agent: the cancellation context, the correlating function call id, the
// calling agent and a logger.
type ToolContext struct {
	ctx            context.Context
	functionCallID string
	agentName      string

	*logHelper
}

// NewToolContext constructs a tool context bound to ctx and a unique functionCallID.
func NewToolContext(ctx context.Context, agentName, functionCallID string, logger logging.Logger) *ToolContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ToolContext{
		ctx:            ctx,
		functionCallID: functionCallID,
		agentName:      agentName,
		logHelper:      newLogHelper(logger),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.logHelper.Logger() }

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// AgentName returns the name of the agent that requested the invocation.
func (tc *ToolContext) AgentName() string { return tc.agentName }
