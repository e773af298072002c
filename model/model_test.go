package model

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hupe1980/notomate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) ([]Response, error) {
	t.Helper()
	var out []Response
	for r := range respCh {
		out = append(out, r)
	}
	return out, <-errCh
}

func TestMockModel_StreamsText(t *testing.T) {
	m := NewMockModel("mock", TextTurn("hey"))

	respCh, errCh := m.Generate(context.Background(), Request{Stream: true, Messages: []core.Message{core.NewUserMessage("hi")}})
	resps, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, resps, 4)

	var deltas strings.Builder
	for _, r := range resps[:3] {
		assert.True(t, r.Partial)
		deltas.WriteString(r.Message.Text())
	}
	assert.Equal(t, "hey", deltas.String())

	final := resps[3]
	assert.False(t, final.Partial)
	assert.Equal(t, "hey", final.Message.Text())
	assert.True(t, final.Message.IsFinalAnswer())
	assert.Equal(t, 1, m.Calls())
	assert.Len(t, m.Requests()[0].Messages, 1)
}

func TestMockModel_ToolCalls(t *testing.T) {
	m := NewMockModel("mock", CallTurn(core.FunctionCall{Name: "search_my_notion", Arguments: `{"query":"x"}`}))

	respCh, errCh := m.Generate(context.Background(), Request{Stream: true})
	resps, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	require.Len(t, resps, 1)

	calls := resps[0].Message.FunctionCalls()
	require.Len(t, calls, 1)
	assert.NotEmpty(t, calls[0].ID)
	assert.Equal(t, "tool_calls", resps[0].FinishReason)
}

func TestMockModel_ErrorsAndExhaustion(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockModel("mock", ErrorTurn(boom))

	respCh, errCh := m.Generate(context.Background(), Request{})
	_, err := drain(t, respCh, errCh)
	assert.ErrorIs(t, err, boom)

	respCh, errCh = m.Generate(context.Background(), Request{})
	_, err = drain(t, respCh, errCh)
	assert.ErrorIs(t, err, ErrNoScriptedResponse)

	m.Enqueue(TextTurn("again"))
	respCh, errCh = m.Generate(context.Background(), Request{})
	resps, err := drain(t, respCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, "again", resps[0].Message.Text())
}
