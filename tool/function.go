package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/internal/util"
)

// Func is the body of a FunctionTool. args are already defaulted and
// validated against the tool's schema.
type Func func(toolCtx *core.ToolContext, args map[string]any) (any, error)

// FunctionTool exposes a Go function as a Tool. Every failure is reported as
// a *ToolError: CodeValidation when the arguments do not match the schema,
// CodeExecution when the function fails with a plain error. A *ToolError
// returned by the function is passed through unchanged.
//
// A FunctionTool is immutable and safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          Func
}

// NewFunctionTool creates a tool with an explicit parameter schema.
func NewFunctionTool(name, description string, parameters map[string]any, fn Func) *FunctionTool {
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// NewFunctionToolFromStruct creates a tool whose schema is derived from the
// struct tags of v. See util.CreateSchema for the supported tags.
func NewFunctionToolFromStruct(name, description string, v any, fn Func) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(v), fn)
}

// NewTypedTool creates a tool whose schema is derived from the struct tags
// of T. Validated arguments are decoded into a T before fn runs.
//
//	type searchArgs struct {
//		Query string `json:"query" description:"what to look for"`
//	}
//
//	search := tool.NewTypedTool("search", "Search notes", func(tc *core.ToolContext, args searchArgs) (any, error) {
//		return lookup(tc, args.Query)
//	})
func NewTypedTool[T any](name, description string, fn func(toolCtx *core.ToolContext, args T) (any, error)) *FunctionTool {
	var zero T

	return NewFunctionToolFromStruct(name, description, zero, func(toolCtx *core.ToolContext, raw map[string]any) (any, error) {
		var args T
		b, err := json.Marshal(raw)
		if err == nil {
			err = json.Unmarshal(b, &args)
		}
		if err != nil {
			return nil, &ToolError{Tool: name, Code: CodeValidation, Message: "decode arguments: " + err.Error(), Details: err}
		}
		return fn(toolCtx, args)
	})
}

func (t *FunctionTool) Name() string { return t.name }

func (t *FunctionTool) Description() string { return t.description }

func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args and runs the function.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	log := toolCtx.Logger()
	start := time.Now()

	log.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	args = util.ApplyDefaults(args, t.parameters)
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		log.Warn("tool.call.invalid", "tool", t.name, "error", err.Error())
		return nil, &ToolError{Tool: t.name, Code: CodeValidation, Message: fmt.Sprintf("parameter validation failed: %v", err), Details: err}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		var te *ToolError
		if !errors.As(err, &te) {
			te = &ToolError{Tool: t.name, Code: CodeExecution, Message: err.Error()}
		}
		log.Error("tool.call.error", "tool", t.name, "code", te.Code, "error", te.Message)
		return nil, te
	}

	log.Info("tool.call.done", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
