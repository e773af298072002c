package openai

import (
	"slices"
	"strings"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/model"
	"github.com/openai/openai-go"
)

// collector folds streamed chunks into deltas and one final message.
type collector struct {
	name  string
	id    string
	text  strings.Builder
	calls map[int64]*core.FunctionCall
}

func newCollector(name string) *collector {
	return &collector{name: name, calls: make(map[int64]*core.FunctionCall)}
}

// add consumes a chunk and returns the responses it completes: a partial
// response per text delta, and the whole message once a finish reason arrives.
func (c *collector) add(chunk openai.ChatCompletionChunk) []model.Response {
	if c.id == "" {
		c.id = chunk.ID
	}

	var out []model.Response

	for _, choice := range chunk.Choices {
		if d := choice.Delta.Content; d != "" {
			c.text.WriteString(d)
			out = append(out, model.Response{ID: c.id, Partial: true, Message: core.NewAssistantMessage(c.name, d)})
		}

		for _, tc := range choice.Delta.ToolCalls {
			call, ok := c.calls[tc.Index]
			if !ok {
				call = &core.FunctionCall{}
				c.calls[tc.Index] = call
			}
			if tc.ID != "" {
				call.ID = tc.ID
			}
			if tc.Function.Name != "" {
				call.Name = tc.Function.Name
			}
			call.Arguments += tc.Function.Arguments
		}

		if choice.FinishReason != "" {
			out = append(out, model.Response{ID: c.id, Message: c.message(), FinishReason: choice.FinishReason})
		}
	}

	return out
}

// message returns the text and tool calls seen so far, calls in stream order.
func (c *collector) message() core.Message {
	var parts []core.Part
	if c.text.Len() > 0 {
		parts = append(parts, core.TextPart{Text: c.text.String()})
	}

	idx := make([]int64, 0, len(c.calls))
	for i := range c.calls {
		idx = append(idx, i)
	}
	slices.Sort(idx)

	for _, i := range idx {
		parts = append(parts, core.FunctionCallPart{FunctionCall: *c.calls[i]})
	}

	return core.NewMessage(core.RoleAssistant, c.name, parts...)
}
