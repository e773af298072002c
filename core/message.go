package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role identifies the speaker of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Kind is the decoded variant of a Message. Every message maps to exactly one
// kind; see Message.Kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindUserText
	KindAssistantText
	KindSystemNote
	KindToolInvocation
	KindToolResult
)

// String returns a short lowercase label for the kind.
func (k Kind) String() string {
	switch k {
	case KindUserText:
		return "user_text"
	case KindAssistantText:
		return "assistant_text"
	case KindSystemNote:
		return "system_note"
	case KindToolInvocation:
		return "tool_invocation"
	case KindToolResult:
		return "tool_result"
	default:
		return "unknown"
	}
}

// Message is one entry of a conversation. Name optionally records the agent
// that produced the message; tool results carry the name of the agent (or
// tool) whose answer they hold.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Name      string    `json:"name,omitempty"`
	Parts     []Part    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message from raw parts. Providers use it to assemble
// assistant replies that mix text and tool invocations.
func NewMessage(role Role, name string, parts ...Part) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Name:      name,
		Parts:     parts,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, "", TextPart{Text: text})
}

// NewAssistantMessage creates an assistant text message authored by name.
func NewAssistantMessage(name, text string) Message {
	return NewMessage(RoleAssistant, name, TextPart{Text: text})
}

// NewSystemMessage creates a system note.
func NewSystemMessage(text string) Message {
	return NewMessage(RoleSystem, "", TextPart{Text: text})
}

// NewFunctionCallMessage creates an assistant message requesting one or more
// tool invocations.
func NewFunctionCallMessage(name string, calls ...FunctionCall) Message {
	parts := make([]Part, 0, len(calls))
	for _, c := range calls {
		parts = append(parts, FunctionCallPart{FunctionCall: c})
	}
	return NewMessage(RoleAssistant, name, parts...)
}

// NewFunctionResponseMessage records the result (or error) of a tool
// invocation. If err is non-nil its message is copied into the response Error.
func NewFunctionResponseMessage(name, callID, functionName string, result any, err error) Message {
	fr := FunctionResponse{ID: callID, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	return NewMessage(RoleTool, name, FunctionResponsePart{FunctionResponse: fr})
}

// Text concatenates all text parts.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// FunctionCalls returns the FunctionCall parts preserving their order.
func (m Message) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// FunctionResponses returns the FunctionResponse parts preserving their order.
func (m Message) FunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// Kind decodes the message into its tagged-union variant.
func (m Message) Kind() Kind {
	switch m.Role {
	case RoleUser:
		return KindUserText
	case RoleSystem:
		return KindSystemNote
	case RoleTool:
		return KindToolResult
	case RoleAssistant:
		if len(m.FunctionCalls()) > 0 {
			return KindToolInvocation
		}
		return KindAssistantText
	default:
		return KindUnknown
	}
}

// IsFinalAnswer reports whether the message is assistant text with non-empty
// content and no pending tool invocation.
func (m Message) IsFinalAnswer() bool {
	return m.Kind() == KindAssistantText && m.Text() != ""
}

// Content renders the response as text suitable for a model or a user. Errors
// take precedence; structured results are rendered as JSON.
func (fr FunctionResponse) Content() string {
	body := renderResult(fr.Response)
	switch {
	case fr.Error != "" && body == "":
		return fr.Error
	case fr.Error != "":
		return fr.Error + "\n" + body
	default:
		return body
	}
}

func renderResult(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case []byte:
		return string(r)
	case json.RawMessage:
		return string(r)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ResultText returns the rendered content of every function response in the
// message joined by newlines.
func (m Message) ResultText() string {
	var out []string
	for _, fr := range m.FunctionResponses() {
		out = append(out, fr.Content())
	}
	return strings.Join(out, "\n")
}
