package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/flow"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/tool"
)

// DefaultMaxSteps bounds the node visits of a single turn.
const DefaultMaxSteps = 25

// ErrStepLimit is returned when a turn does not reach Done within MaxSteps.
var ErrStepLimit = errors.New("delegation graph exceeded step limit")

// Decider produces the supervisor's reply to a history.
type Decider interface {
	Decide(runCtx *core.RunContext, messages []core.Message) (core.Message, error)
}

// Specialist answers one delegation batch.
type Specialist interface {
	Name() string
	Run(runCtx *core.RunContext, messages []core.Message) (*flow.Result, error)
}

// Options configures a Graph.
type Options struct {
	// MaxSteps bounds the node visits per turn (default DefaultMaxSteps).
	MaxSteps int
	// MaxModelCalls bounds the model calls of all agents per turn (0 = unlimited).
	MaxModelCalls int
	Logger        logging.Logger
}

// Result is the outcome of one turn.
type Result struct {
	// Message is the final answer.
	Message core.Message
	// Messages is the input history followed by every message the turn
	// appended, ending with Message.
	Messages []core.Message
	// Steps counts the visited nodes.
	Steps int
}

// Graph routes a conversational turn between a supervisor and its
// specialists. A Graph holds no per-turn state and may serve concurrent
// sessions.
type Graph struct {
	supervisor  Decider
	specialists map[string]Specialist
	names       []string
	maxSteps    int
	maxCalls    int
	logger      logging.Logger
}

// New creates a graph. Specialists are addressed by their Name.
func New(supervisor Decider, specialists []Specialist, optFns ...func(o *Options)) *Graph {
	opts := Options{
		MaxSteps: DefaultMaxSteps,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	g := &Graph{
		supervisor:  supervisor,
		specialists: make(map[string]Specialist, len(specialists)),
		maxSteps:    opts.MaxSteps,
		maxCalls:    opts.MaxModelCalls,
		logger:      opts.Logger,
	}
	for _, s := range specialists {
		g.specialists[s.Name()] = s
		g.names = append(g.names, s.Name())
	}

	return g
}

// Specialists returns the configured specialist names.
func (g *Graph) Specialists() []string { return append([]string(nil), g.names...) }

// Run processes one turn over history. emit receives deltas and finished
// messages of every agent and may be nil. The history is not modified.
func (g *Graph) Run(ctx context.Context, sessionID string, history []core.Message, emit core.EmitFunc) (*Result, error) {
	runCtx := core.NewRunContext(ctx, sessionID, "", g.maxCalls, emit, logging.With(g.logger, "session_id", sessionID))

	state := &State{Messages: append([]core.Message(nil), history...)}
	start := time.Now()

	// Every turn enters at the supervisor; Route decides after each node.
	node := Supervisor()

	for step := 1; step <= g.maxSteps; step++ {
		if err := runCtx.Err(); err != nil {
			return nil, err
		}

		runCtx.LogInfo("graph.step", "run_id", runCtx.RunID, "step", step, "node", node.String(), "pending", len(state.Pending))

		var err error
		switch node.Kind {
		case NodeDone:
			last, _ := state.Last()
			runCtx.LogInfo("graph.done", "run_id", runCtx.RunID, "steps", step, "duration_ms", time.Since(start).Milliseconds())
			return &Result{Message: last, Messages: state.Messages, Steps: step}, nil
		case NodeSupervisor:
			err = g.supervisorStep(runCtx, state)
		case NodeSpecialist:
			err = g.specialistStep(runCtx, state, node.Name)
		}

		if err != nil {
			runCtx.LogError("graph.error", "run_id", runCtx.RunID, "step", step, "node", node.String(), "error", err.Error())
			return nil, err
		}

		node = Route(state)
	}

	runCtx.LogError("graph.step_limit", "run_id", runCtx.RunID, "max_steps", g.maxSteps)

	return nil, fmt.Errorf("%w: no answer after %d steps", ErrStepLimit, g.maxSteps)
}

func (g *Graph) supervisorStep(runCtx *core.RunContext, state *State) error {
	reply, err := g.supervisor.Decide(runCtx, state.Messages)
	if err != nil {
		return fmt.Errorf("supervisor: %w", err)
	}

	decision, err := Decode(reply, g.names)
	if err != nil {
		return err
	}

	switch d := decision.(type) {
	case FinalAnswer:
		state.Messages = append(state.Messages, d.Message)
	case DelegationBatch:
		if len(d.Requests) > 1 {
			runCtx.LogWarn("graph.batch.collapsed", "run_id", runCtx.RunID, "target", d.Target(), "requests", len(d.Requests))
		}
		state.Pending = d.Requests
	default:
		return fmt.Errorf("%w: undecodable reply %T", ErrContractViolation, decision)
	}

	return nil
}

func (g *Graph) specialistStep(runCtx *core.RunContext, state *State, name string) error {
	sp, ok := g.specialists[name]
	if !ok {
		return fmt.Errorf("%w: unknown agent %q", ErrContractViolation, name)
	}

	input := FilterForSpecialist(state.Messages)
	if note, ok := requestNote(state.Pending); ok {
		input = append(input, note)
	}

	res, err := sp.Run(runCtx, input)
	if err != nil {
		return fmt.Errorf("specialist %s: %w", name, err)
	}

	// One answer satisfies every request of the batch.
	state.Messages = append(state.Messages, state.Pending[0].CallMessage)
	for _, req := range state.Pending {
		result := core.NewFunctionResponseMessage(name, req.CallID, tool.DelegationToolName, res.Output, nil)
		state.Messages = append(state.Messages, result)
		runCtx.EmitEvent(core.NewMessageEvent(runCtx.RunID, name, result))
	}
	state.Pending = nil

	return nil
}
