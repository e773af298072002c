package tool

import (
	"errors"
	"strings"

	"github.com/hupe1980/notomate/core"
)

// DelegationToolName is the function name the supervisor calls to ask a
// specialist agent for information.
const DelegationToolName = "get_info_from_agent"

// ErrDelegationNotExecutable is returned when the delegation tool is called
// directly instead of being intercepted by the delegation graph.
var ErrDelegationNotExecutable = errors.New("delegation requests are resolved by the graph, not executed")

// DelegationTool declares get_info_from_agent to the supervisor's model. The
// agent_name argument is restricted to the configured specialists.
type DelegationTool struct {
	agents []string
}

// NewDelegationTool creates the delegation tool for the given specialist names.
func NewDelegationTool(agents ...string) *DelegationTool {
	return &DelegationTool{agents: append([]string(nil), agents...)}
}

// Name implements Tool.
func (t *DelegationTool) Name() string { return DelegationToolName }

// Description implements Tool.
func (t *DelegationTool) Description() string {
	return "Provides info from specialized agent. Available agents: " + strings.Join(t.agents, ", ")
}

// Agents returns the specialist names accepted by agent_name.
func (t *DelegationTool) Agents() []string { return append([]string(nil), t.agents...) }

// Parameters implements Tool.
func (t *DelegationTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent_name": map[string]any{
				"type":        "string",
				"enum":        t.Agents(),
				"description": "Name of the specialized agent to ask",
			},
			"input": map[string]any{
				"type":        "string",
				"description": "Optional task description for the agent",
			},
		},
		"required": []string{"agent_name"},
	}
}

// Call implements Tool. It always fails: the graph intercepts delegation calls.
func (t *DelegationTool) Call(_ *core.ToolContext, _ map[string]any) (any, error) {
	return nil, &ToolError{Tool: DelegationToolName, Message: ErrDelegationNotExecutable.Error(), Code: CodeExecution, Details: ErrDelegationNotExecutable}
}
