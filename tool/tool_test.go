package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolContext(fcID string) *core.ToolContext {
	return core.NewToolContext(context.Background(), "tester", fcID, logging.NoOpLogger{})
}

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ *core.ToolContext, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Call(newToolContext("fc1"), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
		},
		"required": []any{"a"},
	}
	called := false
	tTool := NewFunctionTool("test", "Test", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		called = true
		return 0, nil
	})

	_, err := tTool.Call(newToolContext("fc2"), map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.False(t, called)

	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := execTool.Call(newToolContext("fc3"), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_ForwardsToolError(t *testing.T) {
	custom := NewToolError("custom", "quota exceeded", "QUOTA")
	execTool := NewFunctionTool("custom", "Custom", map[string]any{"type": "object"}, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, custom
	})

	_, err := execTool.Call(newToolContext("fc4"), nil)
	assert.Same(t, custom, err)
	assert.Equal(t, "tool error [QUOTA] in custom: quota exceeded", err.Error())
}

type pagedArgs struct {
	Query    string `json:"query" description:"what to look for"`
	PageSize int    `json:"page_size,omitempty" default:"10" maximum:"100"`
}

func TestNewTypedTool(t *testing.T) {
	var got pagedArgs
	typed := NewTypedTool("paged", "Paged lookup", func(_ *core.ToolContext, args pagedArgs) (any, error) {
		got = args
		return "ok", nil
	})

	props := typed.Parameters()["properties"].(map[string]any)
	assert.Contains(t, props, "query")
	assert.Equal(t, []string{"query"}, typed.Parameters()["required"])

	res, err := typed.Call(newToolContext("fc5"), map[string]any{"query": "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, pagedArgs{Query: "x", PageSize: 10}, got)
}

func TestNewTypedTool_RejectsBeforeCall(t *testing.T) {
	called := false
	typed := NewTypedTool("paged", "Paged lookup", func(_ *core.ToolContext, _ pagedArgs) (any, error) {
		called = true
		return nil, nil
	})

	_, err := typed.Call(newToolContext("fc6"), map[string]any{"query": "x", "page_size": float64(101)})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.Contains(t, toolErr.Message, "page_size")
	assert.False(t, called)
}

func TestDelegationTool(t *testing.T) {
	d := NewDelegationTool("NotionAPI")

	assert.Equal(t, DelegationToolName, d.Name())
	assert.Contains(t, d.Description(), "NotionAPI")

	props := d.Parameters()["properties"].(map[string]any)
	assert.Equal(t, []string{"NotionAPI"}, props["agent_name"].(map[string]any)["enum"])

	_, err := d.Call(newToolContext("fc7"), map[string]any{"agent_name": "NotionAPI"})
	assert.ErrorIs(t, err, ErrDelegationNotExecutable)
}

func TestFind(t *testing.T) {
	tools := []Tool{NewDelegationTool("a"), NewFunctionTool("x", "", nil, nil)}

	found, ok := Find(tools, "x")
	require.True(t, ok)
	assert.Equal(t, "x", found.Name())

	_, ok = Find(tools, "missing")
	assert.False(t, ok)
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	ft := NewFunctionToolFromStruct("paged", "Paged lookup", &pagedArgs{}, func(_ *core.ToolContext, args map[string]any) (any, error) {
		return args["page_size"], nil
	})

	assert.Equal(t, []string{"query"}, ft.Parameters()["required"])

	res, err := ft.Call(newToolContext("fc8"), map[string]any{"query": "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), res)
}
