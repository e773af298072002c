package server

import (
	"fmt"
	"strings"

	"github.com/hupe1980/notomate/core"
)

// AgentInvokeRequest is the body of the notes agent routes. ChatHistory
// holds [human, ai] pairs.
type AgentInvokeRequest struct {
	Input       string      `json:"input"`
	ChatHistory [][2]string `json:"chat_history"`
}

// AgentInvokeResponse is the reply of /notion-agent/invoke.
type AgentInvokeResponse struct {
	Output string `json:"output"`
}

// WireMessage is the JSON form of a conversation message.
type WireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	Name       string         `json:"name,omitempty"`
	ToolCalls  []WireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// WireToolCall is a tool invocation inside a WireMessage.
type WireToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// SupervisorInvokeRequest is the body of the supervisor routes. With a
// SessionID the stored history is used and only the last user message of
// Messages is taken as the new turn.
type SupervisorInvokeRequest struct {
	Messages  []WireMessage `json:"messages"`
	SessionID string        `json:"session_id,omitempty"`
}

// SupervisorInvokeResponse is the reply of /supervisor/invoke.
type SupervisorInvokeResponse struct {
	Output    string        `json:"output"`
	Messages  []WireMessage `json:"messages"`
	SessionID string        `json:"session_id,omitempty"`
}

// SessionResponse is the reply of POST /sessions.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// formatChatHistory maps [human, ai] pairs to user and assistant messages.
func formatChatHistory(pairs [][2]string, aiName string) []core.Message {
	out := make([]core.Message, 0, 2*len(pairs))
	for _, p := range pairs {
		out = append(out, core.NewUserMessage(p[0]), core.NewAssistantMessage(aiName, p[1]))
	}
	return out
}

// fromWire converts client messages. Tool plumbing cannot be supplied by
// clients; only user, assistant and system text is accepted.
func fromWire(msgs []WireMessage) ([]core.Message, error) {
	out := make([]core.Message, 0, len(msgs))
	for i, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "user", "human":
			out = append(out, core.NewUserMessage(m.Content))
		case "assistant", "ai":
			out = append(out, core.NewAssistantMessage(m.Name, m.Content))
		case "system":
			out = append(out, core.NewSystemMessage(m.Content))
		default:
			return nil, fmt.Errorf("messages[%d]: unsupported role %q", i, m.Role)
		}
	}
	return out, nil
}

func toWire(m core.Message) WireMessage {
	w := WireMessage{Role: string(m.Role), Name: m.Name}

	switch m.Kind() {
	case core.KindToolInvocation:
		for _, c := range m.FunctionCalls() {
			w.ToolCalls = append(w.ToolCalls, WireToolCall{ID: c.ID, Name: c.Name, Arguments: c.Arguments})
		}
	case core.KindToolResult:
		w.Content = m.ResultText()
		if fr := m.FunctionResponses(); len(fr) > 0 {
			w.ToolCallID = fr[0].ID
		}
	default:
		w.Content = m.Text()
	}

	return w
}

func toWireAll(msgs []core.Message) []WireMessage {
	out := make([]WireMessage, len(msgs))
	for i, m := range msgs {
		out[i] = toWire(m)
	}
	return out
}

// lastUserText returns the content of the last user message.
func lastUserText(msgs []WireMessage) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if r := strings.ToLower(msgs[i].Role); r == "user" || r == "human" {
			return msgs[i].Content, true
		}
	}
	return "", false
}
