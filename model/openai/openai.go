// Package openai implements model.Model on the OpenAI Chat Completions API,
// with streaming and tool calling.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/notomate/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configures the adapter. APIKey falls back to OPENAI_API_KEY when
// empty.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
}

// Model talks to the Chat Completions endpoint.
type Model struct {
	client *openai.Client
	opts   Options
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// NewModel builds an SDK client from the options.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := applyOptions(optFns)

	var reqOpts []option.RequestOption
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(reqOpts...)

	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient reuses an existing SDK client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	return &Model{client: client, opts: applyOptions(optFns)}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := m.params(req)

		var err error
		if req.Stream {
			err = m.stream(ctx, params, out)
		} else {
			err = m.complete(ctx, params, out)
		}
		if err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

func (m *Model) params(req model.Request) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model:               m.opts.Model,
		Messages:            toChatMessages(req.Instructions, req.Messages),
		Tools:               toToolParams(req.Tools),
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
}

func (m *Model) complete(ctx context.Context, params openai.ChatCompletionNewParams, out chan<- model.Response) error {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return errors.New("openai: completion without choices")
	}

	choice := resp.Choices[0]

	return send(ctx, out, model.Response{
		ID:           resp.ID,
		Message:      fromChatMessage(m.opts.Model, choice.Message),
		FinishReason: choice.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	})
}

func (m *Model) stream(ctx context.Context, params openai.ChatCompletionNewParams, out chan<- model.Response) error {
	s := m.client.Chat.Completions.NewStreaming(ctx, params)
	defer s.Close()

	acc := newCollector(m.opts.Model)

	for s.Next() {
		for _, resp := range acc.add(s.Current()) {
			if err := send(ctx, out, resp); err != nil {
				return err
			}
		}
	}

	if err := s.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}

	return nil
}

func send(ctx context.Context, out chan<- model.Response, resp model.Response) error {
	select {
	case out <- resp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai", SupportsTools: true}
}
