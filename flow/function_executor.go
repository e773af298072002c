package flow

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/tool"
)

// FunctionExecutor runs the tool calls of one model turn. It returns exactly
// one tool result message per call, in call order, and never panics: every
// failure, including cancellation, is folded into the result message.
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, agent FlowAgent, tools []tool.Tool, calls []core.FunctionCall) []core.Message
}

// BatchExecutor runs the calls of a batch concurrently.
type BatchExecutor struct {
	// Concurrency caps the calls in flight (0 = one goroutine per call).
	Concurrency int
}

// NewBatchExecutor returns an executor running at most concurrency calls at once.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	return &BatchExecutor{Concurrency: concurrency}
}

// Execute implements FunctionExecutor.
func (e *BatchExecutor) Execute(runCtx *core.RunContext, agent FlowAgent, tools []tool.Tool, calls []core.FunctionCall) []core.Message {
	if len(calls) == 0 {
		return nil
	}

	name := agent.GetName()
	out := make([]core.Message, len(calls))

	if len(calls) == 1 {
		out[0] = runCall(runCtx, name, tools, calls[0])
		return out
	}

	var g errgroup.Group
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}

	start := time.Now()
	for i, fc := range calls {
		g.Go(func() error {
			out[i] = runCall(runCtx, name, tools, fc)
			return nil
		})
	}
	_ = g.Wait()

	runCtx.LogDebug("agent.tools.batch", "agent", name, "calls", len(calls), "duration_ms", time.Since(start).Milliseconds())

	return out
}

func runCall(runCtx *core.RunContext, agentName string, tools []tool.Tool, fc core.FunctionCall) core.Message {
	if err := runCtx.Err(); err != nil {
		return core.NewFunctionResponseMessage(agentName, fc.ID, fc.Name, nil, err)
	}

	start := time.Now()
	result, err := callTool(runCtx.NewToolContext(fc.ID), tools, fc)

	runCtx.LogInfo("agent.tool.done",
		"agent", agentName,
		"tool", fc.Name,
		"fc_id", fc.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"failed", err != nil,
	)

	return core.NewFunctionResponseMessage(agentName, fc.ID, fc.Name, result, err)
}

// callTool resolves fc against tools, decodes its JSON arguments and invokes
// the tool. A panicking tool yields an error.
func callTool(toolCtx *core.ToolContext, tools []tool.Tool, fc core.FunctionCall) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			toolCtx.Logger().Error("agent.tool.panic", "tool", fc.Name, "recover", fmt.Sprint(r), "stack", string(debug.Stack()))
			err = fmt.Errorf("tool %s panicked: %v", fc.Name, r)
		}
	}()

	t, ok := tool.Find(tools, fc.Name)
	if !ok {
		return nil, tool.NewToolError(fc.Name, fmt.Sprintf("tool %s not found", fc.Name), tool.CodeNotFound)
	}

	args := map[string]any{}
	if fc.Arguments != "" {
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return nil, tool.NewToolError(fc.Name, fmt.Sprintf("arguments are not a JSON object: %v", err), tool.CodeValidation)
		}
	}

	return t.Call(toolCtx, args)
}
