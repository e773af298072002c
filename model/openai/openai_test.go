package openai

import (
	"testing"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/model"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToChatMessages(t *testing.T) {
	call := core.FunctionCall{ID: "call_1", Name: "search_my_notion", Arguments: `{"query":"x"}`}
	history := []core.Message{
		core.NewUserMessage("find x"),
		core.NewFunctionCallMessage("NotionAPI", call),
		core.NewFunctionResponseMessage("NotionAPI", "call_1", "search_my_notion", map[string]any{"results": []any{}}, nil),
		core.NewFunctionResponseMessage("NotionAPI", "call_orphan", "search_my_notion", "late", nil),
		core.NewSystemMessage("note"),
		core.NewAssistantMessage("NotionAPI", "done"),
	}

	msgs := toChatMessages("be helpful", history)
	require.Len(t, msgs, 7)

	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)

	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[2].OfAssistant.ToolCalls[0].ID)
	assert.Equal(t, `{"query":"x"}`, msgs[2].OfAssistant.ToolCalls[0].Function.Arguments)

	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "call_1", msgs[3].OfTool.ToolCallID)

	// Orphaned results become system text.
	assert.NotNil(t, msgs[4].OfSystem)
	assert.NotNil(t, msgs[5].OfSystem)
	assert.NotNil(t, msgs[6].OfAssistant)
}

func TestToChatMessages_NoInstructions(t *testing.T) {
	msgs := toChatMessages("", []core.Message{core.NewUserMessage("hi")})
	require.Len(t, msgs, 1)
	assert.NotNil(t, msgs[0].OfUser)
}

func TestParams_Tools(t *testing.T) {
	m := NewModelFromClient(nil, func(o *Options) { o.Model = "gpt-test" })
	params := m.params(model.Request{
		Tools: []model.ToolDefinition{{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        "get_info_from_agent",
				Description: "Provides info from specialized agent",
				Parameters:  map[string]any{"type": "object"},
			},
		}},
	})

	assert.EqualValues(t, "gpt-test", params.Model)
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "get_info_from_agent", params.Tools[0].Function.Name)
	assert.Equal(t, "gpt-test", m.Info().Name)
	assert.Equal(t, "openai", m.Info().Provider)

	assert.Nil(t, m.params(model.Request{}).Tools)
}

func TestCollector(t *testing.T) {
	c := newCollector("gpt")

	chunk := func(choice openai.ChatCompletionChunkChoice) openai.ChatCompletionChunk {
		return openai.ChatCompletionChunk{ID: "cmpl_1", Choices: []openai.ChatCompletionChunkChoice{choice}}
	}
	toolDelta := func(idx int64, id, name, args string) openai.ChatCompletionChunkChoice {
		var ch openai.ChatCompletionChunkChoice
		ch.Delta.ToolCalls = []openai.ChatCompletionChunkChoiceDeltaToolCall{{
			Index:    idx,
			ID:       id,
			Function: openai.ChatCompletionChunkChoiceDeltaToolCallFunction{Name: name, Arguments: args},
		}}
		return ch
	}

	var text openai.ChatCompletionChunkChoice
	text.Delta.Content = "thinking"
	out := c.add(chunk(text))
	require.Len(t, out, 1)
	assert.True(t, out[0].Partial)
	assert.Equal(t, "cmpl_1", out[0].ID)

	assert.Empty(t, c.add(chunk(toolDelta(1, "b", "second", "{"))))
	assert.Empty(t, c.add(chunk(toolDelta(0, "a", "first", "{}"))))
	assert.Empty(t, c.add(chunk(toolDelta(1, "", "", "}"))))

	var done openai.ChatCompletionChunkChoice
	done.FinishReason = "tool_calls"
	out = c.add(chunk(done))
	require.Len(t, out, 1)
	assert.False(t, out[0].Partial)
	assert.Equal(t, "tool_calls", out[0].FinishReason)

	msg := out[0].Message
	assert.Equal(t, "thinking", msg.Text())
	assert.Equal(t, core.KindToolInvocation, msg.Kind())
	calls := msg.FunctionCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, core.FunctionCall{ID: "a", Name: "first", Arguments: "{}"}, calls[0])
	assert.Equal(t, core.FunctionCall{ID: "b", Name: "second", Arguments: "{}"}, calls[1])
}

func TestFromChatMessage(t *testing.T) {
	msg := fromChatMessage("gpt", openai.ChatCompletionMessage{Content: "hello"})
	assert.Equal(t, core.KindAssistantText, msg.Kind())
	assert.Equal(t, "hello", msg.Text())
	assert.Equal(t, "gpt", msg.Name)
}
