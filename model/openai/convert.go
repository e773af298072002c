package openai

import (
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/model"
	"github.com/openai/openai-go"
)

// toChatMessages renders instructions and history as chat messages. The API
// rejects tool messages that do not answer an earlier assistant tool call, so
// such results are rendered as system text.
func toChatMessages(instructions string, history []core.Message) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if instructions != "" {
		msgs = append(msgs, openai.SystemMessage(instructions))
	}

	open := make(map[string]struct{})

	for _, m := range history {
		switch m.Kind() {
		case core.KindUserText:
			msgs = append(msgs, openai.UserMessage(m.Text()))
		case core.KindAssistantText:
			msgs = append(msgs, openai.AssistantMessage(m.Text()))
		case core.KindSystemNote:
			msgs = append(msgs, openai.SystemMessage(m.Text()))
		case core.KindToolInvocation:
			calls := toToolCallParams(m.FunctionCalls())
			for _, c := range calls {
				open[c.ID] = struct{}{}
			}
			msgs = append(msgs, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{ToolCalls: calls},
			})
		case core.KindToolResult:
			for _, r := range m.FunctionResponses() {
				if _, ok := open[r.ID]; ok {
					msgs = append(msgs, openai.ToolMessage(r.Content(), r.ID))
				} else {
					msgs = append(msgs, openai.SystemMessage("Result of "+r.Name+": "+r.Content()))
				}
			}
		}
	}

	return msgs
}

func toToolCallParams(calls []core.FunctionCall) []openai.ChatCompletionMessageToolCallParam {
	params := make([]openai.ChatCompletionMessageToolCallParam, len(calls))
	for i, c := range calls {
		args := c.Arguments
		if args == "" {
			args = "{}"
		}
		params[i] = openai.ChatCompletionMessageToolCallParam{
			ID:       c.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{Name: c.Name, Arguments: args},
		}
	}
	return params
}

func toToolParams(defs []model.ToolDefinition) []openai.ChatCompletionToolParam {
	if len(defs) == 0 {
		return nil
	}

	params := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		fn := openai.FunctionDefinitionParam{
			Name:       d.Function.Name,
			Parameters: d.Function.Parameters,
		}
		if d.Function.Description != "" {
			fn.Description = openai.String(d.Function.Description)
		}
		params = append(params, openai.ChatCompletionToolParam{Function: fn})
	}
	return params
}

func fromChatMessage(name string, msg openai.ChatCompletionMessage) core.Message {
	var parts []core.Part
	if msg.Content != "" {
		parts = append(parts, core.TextPart{Text: msg.Content})
	}
	for _, tc := range msg.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}
	return core.NewMessage(core.RoleAssistant, name, parts...)
}
