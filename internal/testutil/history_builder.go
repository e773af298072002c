package testutil

import (
	"encoding/json"

	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/tool"
)

// HistoryBuilder provides a fluent helper for constructing conversations in tests.
// Example:
//
//	msgs := testutil.NewHistory().User("hi").Assistant("Supervisor", "hello").Build()
//
// Chain only the turns you need.
type HistoryBuilder struct {
	msgs []core.Message
}

// NewHistory creates an empty builder.
func NewHistory() *HistoryBuilder { return &HistoryBuilder{} }

// User appends a user text turn (chainable).
func (b *HistoryBuilder) User(text string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewUserMessage(text))
	return b
}

// Assistant appends an assistant text turn authored by name (chainable).
func (b *HistoryBuilder) Assistant(name, text string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewAssistantMessage(name, text))
	return b
}

// System appends a system note (chainable).
func (b *HistoryBuilder) System(text string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewSystemMessage(text))
	return b
}

// Delegate appends a supervisor message asking agent for information (chainable).
func (b *HistoryBuilder) Delegate(callID, agent, input string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewFunctionCallMessage("Supervisor", DelegationCall(callID, agent, input)))
	return b
}

// Result appends the answer of agent to the call callID (chainable).
func (b *HistoryBuilder) Result(agent, callID, content string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.NewFunctionResponseMessage(agent, callID, tool.DelegationToolName, content, nil))
	return b
}

// Add appends arbitrary messages (chainable).
func (b *HistoryBuilder) Add(msgs ...core.Message) *HistoryBuilder {
	b.msgs = append(b.msgs, msgs...)
	return b
}

// Build returns a copy of the collected messages.
func (b *HistoryBuilder) Build() []core.Message {
	return append([]core.Message(nil), b.msgs...)
}

// DelegationCall builds a get_info_from_agent call. An empty input is omitted.
func DelegationCall(callID, agent, input string) core.FunctionCall {
	args := map[string]string{"agent_name": agent}
	if input != "" {
		args["input"] = input
	}
	raw, _ := json.Marshal(args)
	return core.FunctionCall{ID: callID, Name: tool.DelegationToolName, Arguments: string(raw)}
}

// Kinds returns the kind of every message, handy for asserting conversation shape.
func Kinds(msgs []core.Message) []core.Kind {
	out := make([]core.Kind, len(msgs))
	for i, m := range msgs {
		out[i] = m.Kind()
	}
	return out
}
