package flow

import "github.com/hupe1980/notomate/tool"

// DelegatingFlow runs an agent that may ask specialists for help. The
// get_info_from_agent tool is injected into every request and intercepted:
// the run stops on the first delegation request and hands it back to the
// caller (the delegation graph) instead of executing it.
type DelegatingFlow struct{ *BaseFlow }

// NewDelegatingFlow creates a flow with delegation support.
func NewDelegatingFlow(agent FlowAgent) *DelegatingFlow {
	baseFlow := NewBaseFlow(agent)

	baseFlow.AddRequestProcessor(NewInstructionsProcessor())
	baseFlow.AddRequestProcessor(NewContentsProcessor())
	baseFlow.AddRequestProcessor(NewDelegationToolInjector())
	baseFlow.Intercept(tool.DelegationToolName)

	return &DelegatingFlow{BaseFlow: baseFlow}
}
