package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/flow"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/model"
	"github.com/hupe1980/notomate/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Instruction        Instruction
	Description        string
	EnableStreaming    bool
	MaxHistoryMessages int
	MaxIterations      int
	// MaxModelCalls bounds the model calls of a standalone Invoke (0 = unlimited).
	MaxModelCalls int
	Tools         []tool.Tool
	Delegates     []string
	Logger        logging.Logger
}

// Result is the outcome of ModelAgent.Invoke.
type Result struct {
	// Output is the text of the final answer.
	Output string
	// Messages holds the tool invocation and tool result messages produced
	// while reaching the answer.
	Messages []core.Message
}

// ModelAgent binds a language model to an instruction and a tool set. Each
// run loops over the model's tool requests until it answers without one.
type ModelAgent struct {
	name               string
	description        string
	llm                model.Model
	instruction        Instruction
	tools              []tool.Tool
	delegates          []string
	enableStreaming    bool
	maxHistoryMessages int
	maxIterations      int
	maxModelCalls      int
	logger             logging.Logger
	selector           *flow.Selector
}

// NewModelAgent creates a model-based agent with sensible defaults:
// streaming enabled, the whole history forwarded and flow.DefaultMaxIterations
// model turns per run.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:     NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		EnableStreaming: true,
		MaxIterations:   flow.DefaultMaxIterations,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &ModelAgent{
		name:               name,
		description:        opts.Description,
		llm:                llm,
		instruction:        opts.Instruction,
		tools:              append([]tool.Tool(nil), opts.Tools...),
		delegates:          append([]string(nil), opts.Delegates...),
		enableStreaming:    opts.EnableStreaming,
		maxHistoryMessages: opts.MaxHistoryMessages,
		maxIterations:      opts.MaxIterations,
		maxModelCalls:      opts.MaxModelCalls,
		logger:             opts.Logger,
		selector:           flow.NewSelector(),
	}
}

// Name returns the agent name.
func (a *ModelAgent) Name() string { return a.name }

// Description returns the optional human readable description.
func (a *ModelAgent) Description() string { return a.description }

// RegisterTools adds tools to the agent's capability set. A tool with the
// name of an already registered tool replaces it.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		replaced := false
		for i, existing := range a.tools {
			if existing.Name() == t.Name() {
				a.tools[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			a.tools = append(a.tools, t)
		}
	}
}

// GetTool retrieves a registered tool by name.
func (a *ModelAgent) GetTool(name string) (tool.Tool, bool) {
	return tool.Find(a.tools, name)
}

// FlowAgent implementation.

// GetName returns the agent's display name.
func (a *ModelAgent) GetName() string { return a.name }

// GetLLM returns the language model instance.
func (a *ModelAgent) GetLLM() model.Model { return a.llm }

// ResolveInstructions returns the unrendered instruction text.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// GetTools returns the registered tools in registration order.
func (a *ModelAgent) GetTools() []tool.Tool { return a.tools }

// GetDelegates returns the specialist names the agent may delegate to.
func (a *ModelAgent) GetDelegates() []string { return a.delegates }

// IsStreamingEnabled returns whether streaming responses are enabled.
func (a *ModelAgent) IsStreamingEnabled() bool { return a.enableStreaming }

// MaxHistoryMessages returns the maximum number of history messages sent to the model.
func (a *ModelAgent) MaxHistoryMessages() int { return a.maxHistoryMessages }

// MaxIterations returns the maximum number of model turns per run.
func (a *ModelAgent) MaxIterations() int { return a.maxIterations }

// Run executes the agent within an existing turn. The run context is scoped
// to this agent; its limiter and event sink stay shared with the caller.
func (a *ModelAgent) Run(runCtx *core.RunContext, messages []core.Message) (*flow.Result, error) {
	scoped := runCtx.WithAgent(core.AgentInfo{Name: a.name, Type: "model"})
	return a.runFlow(scoped, a.selector.SelectFlow(a), messages)
}

// Invoke runs the agent as a standalone turn over messages. emit may be nil.
func (a *ModelAgent) Invoke(ctx context.Context, messages []core.Message, emit core.EmitFunc) (*Result, error) {
	runCtx := core.NewRunContext(ctx, "", "", a.maxModelCalls, emit, a.logger)

	res, err := a.Run(runCtx, messages)
	if err != nil {
		return nil, err
	}

	return &Result{Output: res.Output, Messages: res.Messages}, nil
}

func (a *ModelAgent) runFlow(runCtx *core.RunContext, f flow.Flow, messages []core.Message) (*flow.Result, error) {
	start := time.Now()
	runCtx.LogDebug("agent.run.start", "agent", a.name, "run_id", runCtx.RunID, "messages", len(messages))

	res, err := f.Run(runCtx, messages)
	if err != nil {
		runCtx.LogError("agent.run.error", "agent", a.name, "run_id", runCtx.RunID, "error", err.Error())
		runCtx.EmitEvent(core.NewErrorEvent(runCtx.RunID, a.name, err))
		return nil, err
	}

	runCtx.LogDebug("agent.run.end", "agent", a.name, "run_id", runCtx.RunID,
		"duration_ms", time.Since(start).Milliseconds(), "delegated", res.Delegated)

	return res, nil
}
