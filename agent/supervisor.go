package agent

import (
	"strings"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/flow"
	"github.com/hupe1980/notomate/model"
)

// SupervisorOptions configures a Supervisor.
type SupervisorOptions struct {
	ModelAgentOptions
	// UserName is greeted in the first answer when set.
	UserName string
}

// Supervisor is the top level agent of the delegation graph. Each decision
// is a single model turn with the delegation tool bound: the model either
// answers the user or asks one of its specialists for information.
type Supervisor struct {
	*ModelAgent
	userName string
	flow     *flow.DelegatingFlow
}

// NewSupervisor creates a supervisor that may delegate to the named specialists.
func NewSupervisor(llm model.Model, specialists []string, optFns ...func(o *SupervisorOptions)) *Supervisor {
	opts := SupervisorOptions{}
	opts.Instruction = NewInstructionFromText(SupervisorInstruction)
	opts.EnableStreaming = true

	for _, fn := range optFns {
		fn(&opts)
	}

	a := NewModelAgent(SupervisorName, llm, func(o *ModelAgentOptions) {
		*o = opts.ModelAgentOptions
		o.Delegates = specialists
		o.Tools = nil
		o.MaxIterations = 1
	})

	f := flow.NewDelegatingFlow(a)
	f.InterceptAll()

	return &Supervisor{ModelAgent: a, userName: opts.UserName, flow: f}
}

// Decide runs one supervisor turn over the full history. The returned
// message is either a final answer or a request to call tools; the caller
// decodes and routes it.
func (s *Supervisor) Decide(runCtx *core.RunContext, messages []core.Message) (core.Message, error) {
	scoped := runCtx.WithAgent(core.AgentInfo{Name: s.Name(), Type: "supervisor"})
	scoped.SetState("additional_agents", strings.Join(s.GetDelegates(), ", "))
	if s.userName != "" {
		scoped.SetState("user_name", s.userName)
	}

	res, err := s.runFlow(scoped, s.flow, messages)
	if err != nil {
		return core.Message{}, err
	}

	return res.Message, nil
}
