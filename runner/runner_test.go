package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/graph"
	"github.com/hupe1980/notomate/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGraph struct {
	err     error
	block   chan struct{}
	history []core.Message
}

func (g *fakeGraph) Run(ctx context.Context, _ string, history []core.Message, emit core.EmitFunc) (*graph.Result, error) {
	g.history = history
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}

	emit.Emit(core.NewDeltaEvent("", "Supervisor", "hel"))
	emit.Emit(core.NewDeltaEvent("", "Supervisor", "lo"))
	answer := core.NewAssistantMessage("Supervisor", "hello")
	emit.Emit(core.NewMessageEvent("", "Supervisor", answer))

	msgs := append(append([]core.Message(nil), history...), answer)
	return &graph.Result{Message: answer, Messages: msgs, Steps: 2}, nil
}

func newRunner(t *testing.T, g Graph) (*Runner, string) {
	t.Helper()
	store := session.NewInMemoryStore()
	sess, err := store.Create()
	require.NoError(t, err)
	return New(g, func(o *Options) { o.SessionStore = store }), sess.ID
}

func TestRunner_RunSyncPersistsHistory(t *testing.T) {
	g := &fakeGraph{}
	r, sid := newRunner(t, g)

	turn, err := r.RunSync(context.Background(), sid, "hi")
	require.NoError(t, err)

	assert.NotEmpty(t, turn.RunID)
	assert.Equal(t, "hello", turn.Result.Message.Text())
	assert.Equal(t, 2, turn.Result.Steps)
	require.Len(t, turn.Events, 3)
	for _, ev := range turn.Events {
		assert.Equal(t, turn.RunID, ev.RunID)
	}

	sess, err := r.Sessions().Get(sid)
	require.NoError(t, err)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, core.KindUserText, sess.Messages[0].Kind())

	// The next turn sees the stored history.
	_, err = r.RunSync(context.Background(), sid, "again")
	require.NoError(t, err)
	assert.Len(t, g.history, 3)
}

func TestRunner_FailedTurnLeavesSessionUntouched(t *testing.T) {
	boom := errors.New("boom")
	r, sid := newRunner(t, &fakeGraph{err: boom})

	_, err := r.RunSync(context.Background(), sid, "hi")
	assert.ErrorIs(t, err, boom)

	sess, err := r.Sessions().Get(sid)
	require.NoError(t, err)
	assert.Empty(t, sess.Messages)
}

func TestRunner_UnknownSession(t *testing.T) {
	r := New(&fakeGraph{})
	_, _, _, err := r.Run(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRunner_SessionBusyAndCancel(t *testing.T) {
	g := &fakeGraph{block: make(chan struct{})}
	r, sid := newRunner(t, g)

	runID, eventsCh, errorsCh, err := r.Run(context.Background(), sid, "hi")
	require.NoError(t, err)

	_, _, _, err = r.Run(context.Background(), sid, "second")
	assert.ErrorIs(t, err, ErrSessionBusy)

	require.NoError(t, r.Cancel(runID))
	for range eventsCh {
	}
	assert.ErrorIs(t, <-errorsCh, context.Canceled)

	assert.Error(t, r.Cancel(runID))

	// The session accepts turns again once the previous one ended.
	g.block = nil
	_, err = r.RunSync(context.Background(), sid, "third")
	assert.NoError(t, err)
}
