package flow

import (
	"fmt"

	"github.com/hupe1980/notomate/core"
	internalutil "github.com/hupe1980/notomate/internal/util"
	"github.com/hupe1980/notomate/model"
	"github.com/hupe1980/notomate/tool"
)

// InstructionsProcessor handles system prompt and instruction processing.
type InstructionsProcessor struct{}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor { return &InstructionsProcessor{} }

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest resolves the agent instruction and renders it against the run state.
func (p *InstructionsProcessor) ProcessRequest(inv *Invocation, req *model.Request, agent FlowAgent) error {
	instructions, err := agent.ResolveInstructions(inv.RunContext)
	if err != nil {
		return fmt.Errorf("failed to resolve instruction: %w", err)
	}

	inv.LogDebug("agent.instruction.resolved", "agent", agent.GetName(), "length", len(instructions))

	req.Instructions, err = internalutil.RenderTemplate(instructions, inv.State)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	return nil
}

// ContentsProcessor copies the (trimmed) history followed by the scratchpad
// into the request.
type ContentsProcessor struct{}

// NewContentsProcessor creates a new contents processor.
func NewContentsProcessor() *ContentsProcessor { return &ContentsProcessor{} }

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest adds conversation history and scratchpad to the request.
func (p *ContentsProcessor) ProcessRequest(inv *Invocation, req *model.Request, agent FlowAgent) error {
	history := inv.History
	if limit := agent.MaxHistoryMessages(); limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	messages := make([]core.Message, 0, len(history)+len(inv.Scratchpad))
	messages = append(messages, history...)
	messages = append(messages, inv.Scratchpad...)

	req.Messages = messages
	return nil
}

// DelegationToolInjector declares get_info_from_agent to the model when the
// agent has delegates.
type DelegationToolInjector struct{}

// NewDelegationToolInjector creates a new injector.
func NewDelegationToolInjector() *DelegationToolInjector { return &DelegationToolInjector{} }

// Name returns the processor's identifier.
func (p *DelegationToolInjector) Name() string { return "delegation_injector" }

// ProcessRequest appends the delegation tool definition unless already present.
func (p *DelegationToolInjector) ProcessRequest(_ *Invocation, req *model.Request, agent FlowAgent) error {
	delegates := agent.GetDelegates()
	if len(delegates) == 0 {
		return nil
	}

	for _, t := range req.Tools {
		if t.Function.Name == tool.DelegationToolName {
			return nil
		}
	}

	d := tool.NewDelegationTool(delegates...)
	req.Tools = append(req.Tools, model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        d.Name(),
			Description: d.Description(),
			Parameters:  d.Parameters(),
		},
	})

	return nil
}
