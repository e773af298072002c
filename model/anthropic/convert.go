package anthropic

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/model"
)

// turn is one alternating conversation turn under construction.
type turn struct {
	user   bool
	blocks []anthropic.ContentBlockParamUnion
}

// buildMessages converts history into strictly alternating turns. System
// notes travel as user text, tool results as tool_result blocks of the user
// turn after the tool_use turn, and adjacent blocks of one role share a turn.
func buildMessages(history []core.Message) []anthropic.MessageParam {
	var turns []turn

	push := func(user bool, blocks ...anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(turns); n > 0 && turns[n-1].user == user {
			turns[n-1].blocks = append(turns[n-1].blocks, blocks...)
			return
		}
		turns = append(turns, turn{user: user, blocks: blocks})
	}

	for _, m := range history {
		switch m.Kind() {
		case core.KindUserText, core.KindSystemNote:
			push(true, textBlocks(m.Text())...)
		case core.KindAssistantText:
			push(false, textBlocks(m.Text())...)
		case core.KindToolInvocation:
			blocks := textBlocks(m.Text())
			for _, c := range m.FunctionCalls() {
				blocks = append(blocks, anthropic.NewToolUseBlock(c.ID, toolInput(c.Arguments), c.Name))
			}
			push(false, blocks...)
		case core.KindToolResult:
			for _, r := range m.FunctionResponses() {
				push(true, anthropic.NewToolResultBlock(r.ID, r.Content(), r.Error != ""))
			}
		}
	}

	out := make([]anthropic.MessageParam, len(turns))
	for i, t := range turns {
		if t.user {
			out[i] = anthropic.NewUserMessage(t.blocks...)
		} else {
			out[i] = anthropic.NewAssistantMessage(t.blocks...)
		}
	}
	return out
}

func textBlocks(text string) []anthropic.ContentBlockParamUnion {
	if text == "" {
		return nil
	}
	return []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(text)}
}

// toolInput decodes call arguments. Invalid JSON is passed through as a string.
func toolInput(args string) any {
	if args == "" {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal([]byte(args), &v); err != nil {
		return args
	}
	return v
}

// buildTools maps tool definitions onto Anthropic tool params. Only the
// properties and required members of the schema are carried over.
func buildTools(defs []model.ToolDefinition) []anthropic.ToolUnionParam {
	if len(defs) == 0 {
		return nil
	}

	tools := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if p := d.Function.Parameters; p != nil {
			schema.Properties = p["properties"]
			schema.Required = requiredNames(p["required"])
		}

		t := anthropic.ToolUnionParamOfTool(schema, d.Function.Name)
		if t.OfTool != nil && d.Function.Description != "" {
			t.OfTool.Description = anthropic.String(d.Function.Description)
		}
		tools = append(tools, t)
	}
	return tools
}

func requiredNames(v any) []string {
	switch r := v.(type) {
	case []string:
		return r
	case []any:
		names := make([]string, 0, len(r))
		for _, x := range r {
			if s, ok := x.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}

// fromMessage converts the text and tool_use blocks of a reply.
func fromMessage(name string, msg *anthropic.Message) core.Message {
	var parts []core.Part
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if t := block.AsText().Text; t != "" {
				parts = append(parts, core.TextPart{Text: t})
			}
		case "tool_use":
			tu := block.AsToolUse()
			args := "{}"
			if tu.Input != nil {
				if b, err := json.Marshal(tu.Input); err == nil {
					args = string(b)
				}
			}
			parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: tu.ID, Name: tu.Name, Arguments: args}})
		}
	}
	return core.NewMessage(core.RoleAssistant, name, parts...)
}
