// Package anthropic implements model.Model on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/model"
)

// Options configures the adapter. APIKey falls back to ANTHROPIC_API_KEY
// when empty.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model talks to the Messages endpoint.
type Model struct {
	client *anthropic.Client
	opts   Options
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 4096,
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

	client := anthropic.NewClient(reqOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient reuses an existing SDK client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	return &Model{client: client, opts: applyOptions(optFns)}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := m.buildParams(req)

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

func (m *Model) buildParams(req model.Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
		Messages:    buildMessages(req.Messages),
		Tools:       buildTools(req.Tools),
	}
	if req.Instructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instructions}}
	}
	return params
}

func (m *Model) complete(ctx context.Context, params anthropic.MessageNewParams, out chan<- model.Response) error {
	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return fmt.Errorf("anthropic: %w", err)
	}
	return send(ctx, out, m.response(resp))
}

func (m *Model) stream(ctx context.Context, params anthropic.MessageNewParams, out chan<- model.Response) error {
	s := m.client.Messages.NewStreaming(ctx, params)
	defer s.Close()

	var acc anthropic.Message

	for s.Next() {
		event := s.Current()
		if err := acc.Accumulate(event); err != nil {
			return fmt.Errorf("anthropic stream: %w", err)
		}

		ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if d, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && d.Text != "" {
			delta := model.Response{ID: acc.ID, Partial: true, Message: core.NewAssistantMessage(m.name(), d.Text)}
			if err := send(ctx, out, delta); err != nil {
				return err
			}
		}
	}

	if err := s.Err(); err != nil {
		return fmt.Errorf("anthropic stream: %w", err)
	}

	return send(ctx, out, m.response(&acc))
}

func (m *Model) response(msg *anthropic.Message) model.Response {
	finish := string(msg.StopReason)
	if finish == "" {
		finish = "stop"
	}

	return model.Response{
		ID:           msg.ID,
		Message:      fromMessage(m.name(), msg),
		FinishReason: finish,
		Usage: &model.TokenUsage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
}

func (m *Model) name() string { return string(m.opts.Model) }

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
	return model.Info{Name: m.name(), Provider: "anthropic", SupportsTools: true}
}
