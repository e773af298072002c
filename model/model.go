package model

import (
	"context"

	"github.com/hupe1980/notomate/core"
)

// ToolDefinition offers a function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition names a function and its JSON schema parameters.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the provider independent input of one generation. Instructions
// is the system prompt, kept apart from the history. Stream asks for partial
// responses carrying text deltas.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"-"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage reports the tokens a generation consumed.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is emitted by Generate. Partial responses hold a text delta; the
// last response of a generation is not partial and holds the whole message.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"`
	Message      core.Message `json:"-"`
	FinishReason string       `json:"finish_reason"`
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info describes a Model.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model generates assistant messages. Generate closes both channels when the
// generation ends; the error channel yields at most one error.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)
	Info() Info
}
