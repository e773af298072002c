package core

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/notomate/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Kind(t *testing.T) {
	call := FunctionCall{ID: "c1", Name: "get_info_from_agent", Arguments: `{"agent_name":"NotionAPI"}`}

	tests := []struct {
		name string
		msg  Message
		want Kind
	}{
		{"user", NewUserMessage("hi"), KindUserText},
		{"assistant", NewAssistantMessage("Supervisor", "hello"), KindAssistantText},
		{"system", NewSystemMessage("note"), KindSystemNote},
		{"invocation", NewFunctionCallMessage("Supervisor", call), KindToolInvocation},
		{"result", NewFunctionResponseMessage("NotionAPI", "c1", "get_info_from_agent", "ok", nil), KindToolResult},
		{"unknown", Message{Role: "robot"}, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Kind())
			assert.NotEqual(t, "", tt.want.String())
		})
	}
}

func TestMessage_IsFinalAnswer(t *testing.T) {
	assert.True(t, NewAssistantMessage("a", "done").IsFinalAnswer())
	assert.False(t, NewAssistantMessage("a", "").IsFinalAnswer())
	assert.False(t, NewUserMessage("done").IsFinalAnswer())

	mixed := NewMessage(RoleAssistant, "a", TextPart{Text: "let me check"}, FunctionCallPart{FunctionCall: FunctionCall{ID: "1", Name: "x"}})
	assert.False(t, mixed.IsFinalAnswer())
	assert.Equal(t, "let me check", mixed.Text())
	assert.Len(t, mixed.FunctionCalls(), 1)
}

func TestFunctionResponse_Content(t *testing.T) {
	ok := NewFunctionResponseMessage("n", "1", "f", map[string]any{"a": 1}, nil)
	assert.Equal(t, `{"a":1}`, ok.ResultText())

	text := NewFunctionResponseMessage("n", "1", "f", "plain", nil)
	assert.Equal(t, "plain", text.ResultText())

	failed := NewFunctionResponseMessage("n", "1", "f", nil, errors.New("boom"))
	assert.Equal(t, "boom", failed.ResultText())
	assert.Equal(t, "boom", failed.FunctionResponses()[0].Error)
}

func TestConversation(t *testing.T) {
	c := NewConversation(NewUserMessage("a"))
	_, ok := NewConversation().Last()
	assert.False(t, ok)

	c.Append(NewAssistantMessage("x", "b"))
	require.Equal(t, 2, c.Len())

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, "b", last.Text())

	msgs := c.Messages()
	msgs[0] = NewUserMessage("mutated")
	assert.Equal(t, "a", c.Messages()[0].Text())
}

func TestEvents(t *testing.T) {
	var got []Event
	emit := EmitFunc(func(ev Event) { got = append(got, ev) })

	emit.Emit(NewDeltaEvent("r1", "a", "tok"))
	emit.Emit(NewMessageEvent("r1", "a", NewAssistantMessage("a", "done")))
	emit.Emit(NewErrorEvent("r1", "a", errors.New("bad")))
	EmitFunc(nil).Emit(NewDeltaEvent("r1", "a", "dropped"))

	require.Len(t, got, 3)
	assert.True(t, got[0].IsPartial())
	assert.Equal(t, "tok", got[0].Delta)
	assert.Equal(t, "done", got[1].Message.Text())
	assert.Equal(t, "bad", got[2].Error)
}

func TestRunContext(t *testing.T) {
	var events []Event
	rc := NewRunContext(context.Background(), "s1", "", 2, func(ev Event) { events = append(events, ev) }, logging.NoOpLogger{})
	assert.NotEmpty(t, rc.RunID)

	rc.SetState("k", "v")
	child := rc.WithAgent(AgentInfo{Name: "NotionAPI", Type: "specialist"})
	child.SetState("k", "changed")

	v, _ := rc.GetState("k")
	assert.Equal(t, "v", v)
	assert.Same(t, rc.Budget, child.Budget)

	child.EmitEvent(Event{Type: EventTypeDelta, Delta: "x"})
	require.Len(t, events, 1)
	assert.Equal(t, rc.RunID, events[0].RunID)

	tc := child.NewToolContext("fc1")
	assert.Equal(t, "NotionAPI", tc.AgentName())
	assert.Equal(t, "fc1", tc.FunctionCallID())
	assert.NotNil(t, tc.Logger())
}

func TestCallBudget(t *testing.T) {
	b := NewCallBudget(2)
	require.NoError(t, b.Spend())
	require.NoError(t, b.Spend())
	assert.Equal(t, 0, b.Left())
	assert.ErrorIs(t, b.Spend(), ErrBudgetExhausted)
	assert.Equal(t, 3, b.Used())
	assert.Equal(t, 0, b.Left())

	unlimited := NewCallBudget(0)
	assert.NoError(t, unlimited.Spend())
	assert.Equal(t, -1, unlimited.Left())
}

func TestToolContext_NilDefaults(t *testing.T) {
	//nolint:staticcheck // nil context is normalized
	tc := NewToolContext(nil, "", "", nil)
	assert.NotNil(t, tc.Context())
	assert.IsType(t, logging.NoOpLogger{}, tc.Logger())
}
