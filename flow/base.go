package flow

import (
	"fmt"
	"time"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/model"
)

// BaseFlow is a single-agent flow implementation that supports a
// request -> LLM -> (optional tool loop) cycle with pluggable request processors.
type BaseFlow struct {
	agent             FlowAgent
	requestProcessors []RequestProcessor
	executor          FunctionExecutor
	intercepted       map[string]bool
	interceptAll      bool
}

// NewBaseFlow creates a new basic single-agent flow.
func NewBaseFlow(agent FlowAgent) *BaseFlow {
	return &BaseFlow{
		agent:             agent,
		requestProcessors: []RequestProcessor{},
		executor:          NewBatchExecutor(4),
		intercepted:       map[string]bool{},
	}
}

// AddRequestProcessor appends a request processor; order of registration defines execution order.
func (f *BaseFlow) AddRequestProcessor(processor RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, processor)
}

// SetFunctionExecutor replaces the executor used for tool batches.
func (f *BaseFlow) SetFunctionExecutor(executor FunctionExecutor) {
	f.executor = executor
}

// Intercept makes the flow stop, without executing anything, as soon as the
// model requests one of the named tools. The requesting message is returned
// in Result.Message.
func (f *BaseFlow) Intercept(toolNames ...string) {
	for _, n := range toolNames {
		f.intercepted[n] = true
	}
}

// Run drives the agent until it produces a final answer, requests an
// intercepted tool or exhausts its iteration budget. Every tool outcome,
// including failures, is folded into the scratchpad as a tool result so the
// model can react to it.
func (f *BaseFlow) Run(runCtx *core.RunContext, history []core.Message) (*Result, error) {
	maxIter := f.agent.MaxIterations()
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	inv := &Invocation{RunContext: runCtx, History: history}
	name := f.agent.GetName()

	for i := 0; i < maxIter; i++ {
		if err := runCtx.Err(); err != nil {
			return nil, err
		}

		if runCtx.Budget != nil {
			if err := runCtx.Budget.Spend(); err != nil {
				return nil, fmt.Errorf("agent %s: %w", name, err)
			}
		}

		msg, err := f.runOnce(inv)
		if err != nil {
			return nil, err
		}

		calls := msg.FunctionCalls()
		if len(calls) == 0 {
			runCtx.EmitEvent(core.NewMessageEvent(runCtx.RunID, name, msg))
			return &Result{Output: msg.Text(), Message: msg, Messages: inv.Scratchpad}, nil
		}

		if f.interceptsAny(calls) {
			runCtx.LogDebug("agent.flow.intercepted", "agent", name, "calls", len(calls))
			return &Result{Message: msg, Messages: inv.Scratchpad, Delegated: true}, nil
		}

		inv.Scratchpad = append(inv.Scratchpad, msg)
		runCtx.EmitEvent(core.NewMessageEvent(runCtx.RunID, name, msg))

		for _, resp := range f.executor.Execute(runCtx, f.agent, f.agent.GetTools(), calls) {
			inv.Scratchpad = append(inv.Scratchpad, resp)
			runCtx.EmitEvent(core.NewMessageEvent(runCtx.RunID, name, resp))
		}
	}

	runCtx.LogWarn("agent.flow.max_iterations", "agent", name, "max", maxIter)

	return nil, fmt.Errorf("%w: agent %s stopped after %d model turns", ErrMaxIterations, name, maxIter)
}

// InterceptAll makes the flow stop on any tool request. The caller becomes
// responsible for validating and routing every call.
func (f *BaseFlow) InterceptAll() {
	f.interceptAll = true
}

func (f *BaseFlow) interceptsAny(calls []core.FunctionCall) bool {
	if f.interceptAll {
		return len(calls) > 0
	}
	for _, c := range calls {
		if f.intercepted[c.Name] {
			return true
		}
	}
	return false
}

// runOnce performs one model turn and returns the finished message. Text
// deltas are forwarded as events while the model streams.
func (f *BaseFlow) runOnce(inv *Invocation) (core.Message, error) {
	req := new(model.Request)
	req.Stream = f.agent.IsStreamingEnabled()

	for _, t := range f.agent.GetTools() {
		req.Tools = append(req.Tools, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	for _, processor := range f.requestProcessors {
		if err := processor.ProcessRequest(inv, req, f.agent); err != nil {
			return core.Message{}, fmt.Errorf("request processor %s failed: %w", processor.Name(), err)
		}
	}

	name := f.agent.GetName()
	start := time.Now()

	respCh, errCh := f.agent.GetLLM().Generate(inv.Context, *req)

	var (
		final core.Message
		done  bool
	)
	for resp := range respCh {
		if resp.Partial {
			if delta := resp.Message.Text(); delta != "" {
				inv.EmitEvent(core.NewDeltaEvent(inv.RunID, name, delta))
			}
			continue
		}
		final = resp.Message
		done = true
	}

	if err := <-errCh; err != nil {
		inv.LogError("agent.model.error", "agent", name, "error", err.Error())
		return core.Message{}, fmt.Errorf("agent %s: model call failed: %w", name, err)
	}

	if !done {
		return core.Message{}, fmt.Errorf("agent %s: %w", name, ErrNoResponse)
	}

	final.Name = name

	inv.LogDebug("agent.model.response", "agent", name, "duration_ms", time.Since(start).Milliseconds(), "calls", len(final.FunctionCalls()))

	return final, nil
}
