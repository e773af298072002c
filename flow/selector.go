package flow

// Selector determines which flow to use based on agent capabilities.
type Selector struct{}

// NewSelector creates a new flow selector.
func NewSelector() *Selector { return &Selector{} }

// SelectFlow chooses the appropriate flow for the given agent:
//   - SingleAgentFlow for agents without delegates
//   - DelegatingFlow for agents that may delegate to specialists
func (s *Selector) SelectFlow(agent FlowAgent) Flow {
	if len(agent.GetDelegates()) == 0 {
		return NewSingleAgentFlow(agent)
	}
	return NewDelegatingFlow(agent)
}
