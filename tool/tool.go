// Package tool lets agents invoke structured capabilities, such as notes
// lookups and delegation requests, with schema validated arguments and
// uniform errors.
package tool

import (
	"fmt"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/internal/util"
)

// ToolError codes.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeNotFound   = "TOOL_NOT_FOUND"
)

// Tool is a named capability offered to a model.
type Tool interface {
	// Name is the snake_case identifier the model calls the tool by.
	Name() string
	// Description tells the model when to use the tool.
	Description() string
	// Parameters is the JSON schema of the arguments object.
	Parameters() map[string]any
	// Call runs the tool. It may be invoked concurrently.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError is the cause carried by CodeValidation errors.
type ValidationError = util.ValidationError

// ToolError is the error type every tool failure is reported as.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
}

// Unwrap returns Details when it is an error.
func (e *ToolError) Unwrap() error {
	err, _ := e.Details.(error)
	return err
}

// NewToolError creates a ToolError without details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// Find looks a tool up by name.
func Find(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
