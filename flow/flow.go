// Package flow provides the agent executor loop used by NotoMate agents.
//
// A flow alternates between asking the model and invoking the tools the model
// names until the model answers without requesting a tool. Request processors
// assemble each model request (instructions, history, scratchpad, injected
// tool definitions) so the loop itself stays small.
package flow

import (
	"errors"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/model"
	"github.com/hupe1980/notomate/tool"
)

// DefaultMaxIterations bounds the model turns of a single flow run.
const DefaultMaxIterations = 15

// ErrMaxIterations is returned when the model keeps requesting tools beyond
// the configured iteration budget.
var ErrMaxIterations = errors.New("agent exceeded max iterations")

// ErrNoResponse is returned when a model closes its stream without a final message.
var ErrNoResponse = errors.New("model returned no final response")

// Flow runs one agent over a message history.
type Flow interface {
	Run(runCtx *core.RunContext, history []core.Message) (*Result, error)
}

// FlowAgent defines the interface that agents must implement to work with flows.
type FlowAgent interface {
	// GetName returns the agent's display name.
	GetName() string

	// GetLLM returns the language model instance.
	GetLLM() model.Model

	// ResolveInstructions returns the raw (unrendered) system prompt.
	ResolveInstructions(runCtx *core.RunContext) (string, error)

	// GetTools returns the tools the agent may execute.
	GetTools() []tool.Tool

	// GetDelegates returns the specialist names the agent may delegate to.
	GetDelegates() []string

	// IsStreamingEnabled returns whether streaming responses are enabled.
	IsStreamingEnabled() bool

	// MaxHistoryMessages returns the maximum number of history messages sent to the model (0 = all).
	MaxHistoryMessages() int

	// MaxIterations returns the maximum number of model turns per run (0 = DefaultMaxIterations).
	MaxIterations() int
}

// Invocation is the per-run input handed to request processors.
type Invocation struct {
	*core.RunContext

	// History is the conversation the agent was invoked with.
	History []core.Message
	// Scratchpad holds the tool invocation and tool result messages produced so far.
	Scratchpad []core.Message
}

// Result is the outcome of a flow run.
type Result struct {
	// Output is the text of the final answer (empty when Delegated).
	Output string
	// Message is the last model message: the final answer, or the intercepted
	// delegation request when Delegated is true.
	Message core.Message
	// Messages is the scratchpad of call/result messages produced during the run.
	Messages []core.Message
	// Delegated reports that the run stopped on an intercepted tool call.
	Delegated bool
}

// RequestProcessor processes the request before sending it to the LLM.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the model request before execution.
	ProcessRequest(inv *Invocation, req *model.Request, agent FlowAgent) error
}
