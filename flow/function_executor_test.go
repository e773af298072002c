package flow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teMockTool struct {
	name     string
	delay    time.Duration
	result   any
	err      error
	panicMsg any
	calls    *atomic.Int32
}

func (mt *teMockTool) Name() string               { return mt.name }
func (mt *teMockTool) Description() string        { return "mock tool" }
func (mt *teMockTool) Parameters() map[string]any { return map[string]any{} }
func (mt *teMockTool) Call(tc *core.ToolContext, _ map[string]any) (any, error) {
	if mt.calls != nil {
		mt.calls.Add(1)
	}
	if mt.delay > 0 {
		select {
		case <-time.After(mt.delay):
		case <-tc.Context().Done():
			return nil, tc.Context().Err()
		}
	}
	if mt.panicMsg != nil {
		panic(mt.panicMsg)
	}
	return mt.result, mt.err
}

func TestBatchExecutor_PreservesOrder(t *testing.T) {
	tools := []tool.Tool{
		&teMockTool{name: "slow", delay: 30 * time.Millisecond, result: "slow"},
		&teMockTool{name: "fast", result: "fast"},
	}
	calls := []core.FunctionCall{
		{ID: "1", Name: "slow"},
		{ID: "2", Name: "fast"},
		{ID: "3", Name: "slow"},
	}

	exec := NewBatchExecutor(2)
	out := exec.Execute(newRunContext(nil), &testAgent{name: "a"}, tools, calls)

	require.Len(t, out, 3)
	for i, want := range []string{"slow", "fast", "slow"} {
		fr := out[i].FunctionResponses()[0]
		assert.Equal(t, calls[i].ID, fr.ID)
		assert.Equal(t, want, fr.Response)
		assert.Equal(t, "a", out[i].Name)
	}
}

func TestBatchExecutor_RecoversPanics(t *testing.T) {
	tools := []tool.Tool{&teMockTool{name: "boom", panicMsg: "kaboom"}}

	out := NewBatchExecutor(1).Execute(newRunContext(nil), &testAgent{name: "a"}, tools, []core.FunctionCall{{ID: "1", Name: "boom"}})

	require.Len(t, out, 1)
	assert.Contains(t, out[0].ResultText(), "kaboom")
}

func TestBatchExecutor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	tools := []tool.Tool{&teMockTool{name: "t", calls: &calls}}
	runCtx := core.NewRunContext(ctx, "s", "r", 0, nil, logging.NoOpLogger{})

	out := NewBatchExecutor(0).Execute(runCtx, &testAgent{name: "a"}, tools, []core.FunctionCall{{ID: "1", Name: "t"}, {ID: "2", Name: "t"}})

	require.Len(t, out, 2)
	assert.Zero(t, calls.Load())
	assert.Contains(t, out[1].ResultText(), "context canceled")
}

func TestBatchExecutor_Empty(t *testing.T) {
	assert.Nil(t, NewBatchExecutor(1).Execute(newRunContext(nil), &testAgent{}, nil, nil))
}
