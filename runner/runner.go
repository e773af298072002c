package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/graph"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/session"
)

// ErrSessionBusy is returned when a session already has a turn in flight.
var ErrSessionBusy = errors.New("session has a turn in progress")

// Graph runs one turn over a history.
type Graph interface {
	Run(ctx context.Context, sessionID string, history []core.Message, emit core.EmitFunc) (*graph.Result, error)
}

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// MaxConcurrentTurns limits turns executing simultaneously across sessions.
	MaxConcurrentTurns int
	// EventBufferSize sets channel buffering for events.
	EventBufferSize int
	// SessionStore keeps the conversations.
	SessionStore session.Store
	// Logger receives runner.* entries.
	Logger logging.Logger
}

// Turn is a finished turn.
type Turn struct {
	RunID  string
	Result *graph.Result
	Events []core.Event
}

// Runner coordinates turn execution. Public methods are safe for concurrent use.
type Runner struct {
	graph           Graph
	store           session.Store
	eventBufferSize int
	sem             chan struct{}
	logger          logging.Logger

	mu         sync.Mutex
	activeRuns map[string]context.CancelFunc
	busy       map[string]bool
}

// New constructs a Runner with optional overrides.
func New(g Graph, optFns ...func(o *Options)) *Runner {
	opts := Options{
		MaxConcurrentTurns: 10,
		EventBufferSize:    100,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	r := &Runner{
		graph:           g,
		store:           opts.SessionStore,
		eventBufferSize: opts.EventBufferSize,
		logger:          opts.Logger,
		activeRuns:      make(map[string]context.CancelFunc),
		busy:            make(map[string]bool),
	}
	if opts.MaxConcurrentTurns > 0 {
		r.sem = make(chan struct{}, opts.MaxConcurrentTurns)
	}

	return r
}

// Sessions returns the session store.
func (r *Runner) Sessions() session.Store { return r.store }

// Run starts an asynchronous turn answering text in the given session. Both
// channels are closed when the turn ends; the error channel carries at most
// one error.
func (r *Runner) Run(ctx context.Context, sessionID, text string) (string, <-chan core.Event, <-chan error, error) {
	return r.start(ctx, sessionID, text, nil)
}

func (r *Runner) start(ctx context.Context, sessionID, text string, done func(*graph.Result)) (string, <-chan core.Event, <-chan error, error) {
	sess, err := r.store.Get(sessionID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	r.mu.Lock()
	if r.busy[sessionID] {
		r.mu.Unlock()
		return "", nil, nil, fmt.Errorf("%w: %s", ErrSessionBusy, sessionID)
	}
	r.busy[sessionID] = true
	r.mu.Unlock()

	runID := core.NewID()
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)

	history := append(sess.Messages, core.NewUserMessage(text))

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.activeRuns, runID)
			delete(r.busy, sessionID)
			r.mu.Unlock()
			close(eventsCh)
			close(errorsCh)
		}()

		res, err := r.runTurn(ctx, runID, sessionID, history, eventsCh)
		if err != nil {
			errorsCh <- err
			return
		}
		if done != nil {
			done(res)
		}
	}()

	return runID, eventsCh, errorsCh, nil
}

// RunSync runs a turn and collects its events.
func (r *Runner) RunSync(ctx context.Context, sessionID, text string) (*Turn, error) {
	turn := &Turn{}

	runID, eventsCh, errorsCh, err := r.start(ctx, sessionID, text, func(res *graph.Result) { turn.Result = res })
	if err != nil {
		return nil, err
	}

	turn.RunID = runID
	for ev := range eventsCh {
		turn.Events = append(turn.Events, ev)
	}

	if err := <-errorsCh; err != nil {
		return nil, err
	}

	return turn, nil
}

// Cancel cancels a running turn by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

func (r *Runner) runTurn(ctx context.Context, runID, sessionID string, history []core.Message, eventsCh chan<- core.Event) (*graph.Result, error) {
	if r.sem != nil {
		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.logger.Debug("runner.turn.start", "run_id", runID, "session_id", sessionID, "history", len(history))

	emit := func(ev core.Event) {
		ev.RunID = runID
		select {
		case eventsCh <- ev:
		case <-ctx.Done():
		}
	}

	res, err := r.graph.Run(ctx, sessionID, history, emit)
	if err != nil {
		r.logger.Error("runner.turn.error", "run_id", runID, "session_id", sessionID, "error", err.Error())
		return nil, fmt.Errorf("turn failed: %w", err)
	}

	if err := r.store.Replace(sessionID, res.Messages); err != nil {
		return nil, fmt.Errorf("failed to store session history: %w", err)
	}

	r.logger.Debug("runner.turn.end", "run_id", runID, "session_id", sessionID, "steps", res.Steps)

	return res, nil
}
