// Package notomate wires the NotoMate assistant together: the notes service
// client, the language model, the notes specialist, the supervisor, the
// delegation graph and the turn runner. Every dependency is constructed once
// per process by New and passed down explicitly.
//
// Most applications interact with this package by:
//  1. Loading a config.Config (file plus environment)
//  2. Creating an App via New
//  3. Serving it through one of the front ends (server, tui, mcpserver)
package notomate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/notomate/agent"
	"github.com/hupe1980/notomate/auth"
	"github.com/hupe1980/notomate/config"
	"github.com/hupe1980/notomate/core"
	"github.com/hupe1980/notomate/graph"
	"github.com/hupe1980/notomate/logging"
	"github.com/hupe1980/notomate/model"
	anthropicmodel "github.com/hupe1980/notomate/model/anthropic"
	openaimodel "github.com/hupe1980/notomate/model/openai"
	"github.com/hupe1980/notomate/notion"
	"github.com/hupe1980/notomate/runner"
	"github.com/hupe1980/notomate/session"
	"github.com/hupe1980/notomate/tool"
)

// Options overrides the dependencies New would otherwise build from the config.
type Options struct {
	// Model replaces the provider selected by the config.
	Model model.Model
	// NotionAPI replaces the REST client.
	NotionAPI notion.API
	// HTTPClient is used by the REST client.
	HTTPClient *http.Client
	// SessionStore defaults to an in-memory store.
	SessionStore session.Store
	// Logger defaults to the logger described by the config.
	Logger logging.Logger
}

// App is the assembled assistant.
type App struct {
	Config     *config.Config
	Logger     logging.Logger
	Notion     notion.API
	Model      model.Model
	Specialist *agent.ModelAgent
	Supervisor *agent.Supervisor
	Graph      *graph.Graph
	Runner     *runner.Runner
	Auth       *auth.Allowlist
}

// New builds an App from cfg.
func New(cfg *config.Config, optFns ...func(o *Options)) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = cfg.NewLogger("notomate")
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}

	if opts.NotionAPI == nil {
		if cfg.Notion.APIKey == "" {
			return nil, fmt.Errorf("%w: NOTION_API_KEY is required", config.ErrMissingAPIKey)
		}
		opts.NotionAPI = notion.NewClient(cfg.Notion.APIKey, func(o *notion.Options) {
			if cfg.Notion.BaseURL != "" {
				o.BaseURL = cfg.Notion.BaseURL
			}
			if cfg.Notion.Version != "" {
				o.Version = cfg.Notion.Version
			}
			if opts.HTTPClient != nil {
				o.HTTPClient = opts.HTTPClient
			}
			o.Logger = logging.With(opts.Logger, "component", "notion")
		})
	}

	if opts.Model == nil {
		m, err := NewModel(cfg.Model)
		if err != nil {
			return nil, err
		}
		opts.Model = m
	}

	specialist := agent.NewModelAgent(agent.NotesSpecialistName, opts.Model, func(o *agent.ModelAgentOptions) {
		o.Instruction = agent.NewInstructionFromText(agent.NotesSpecialistInstruction)
		o.Description = "Searches and reads pages of the user's Notion workspace"
		o.Tools = notion.Tools(opts.NotionAPI)
		o.MaxIterations = cfg.Agent.MaxIterations
		o.MaxHistoryMessages = cfg.Agent.MaxHistoryMessages
		o.MaxModelCalls = cfg.Agent.MaxModelCalls
		o.Logger = opts.Logger
	})

	supervisor := agent.NewSupervisor(opts.Model, []string{specialist.Name()}, func(o *agent.SupervisorOptions) {
		o.UserName = cfg.Agent.UserName
		o.MaxHistoryMessages = cfg.Agent.MaxHistoryMessages
		o.Logger = opts.Logger
	})

	g := graph.New(supervisor, []graph.Specialist{specialist}, func(o *graph.Options) {
		o.MaxSteps = cfg.Agent.MaxSteps
		o.MaxModelCalls = cfg.Agent.MaxModelCalls
		o.Logger = opts.Logger
	})

	r := runner.New(g, func(o *runner.Options) {
		o.SessionStore = opts.SessionStore
		o.Logger = opts.Logger
	})

	opts.Logger.Info("notomate.ready", "provider", cfg.Model.Provider, "model", opts.Model.Info().Name, "specialists", g.Specialists())

	return &App{
		Config:     cfg,
		Logger:     opts.Logger,
		Notion:     opts.NotionAPI,
		Model:      opts.Model,
		Specialist: specialist,
		Supervisor: supervisor,
		Graph:      g,
		Runner:     r,
		Auth:       auth.NewAllowlist(cfg.Auth.AllowedUsername),
	}, nil
}

// NewModel constructs the provider selected by mc.
func NewModel(mc config.ModelConfig) (model.Model, error) {
	switch mc.Provider {
	case config.ProviderOpenAI, "":
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if mc.Name != "" {
				o.Model = mc.Name
			}
			o.Temperature = mc.Temperature
			if mc.MaxTokens > 0 {
				o.MaxCompletionTokens = int64(mc.MaxTokens)
			}
			o.APIKey = mc.OpenAIAPIKey
			o.BaseURL = mc.OpenAIBaseURL
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if mc.Name != "" {
				o.Model = anthropic.Model(mc.Name)
			}
			o.Temperature = mc.Temperature
			if mc.MaxTokens > 0 {
				o.MaxTokens = int64(mc.MaxTokens)
			}
			o.APIKey = mc.AnthropicAPIKey
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", mc.Provider)
	}
}

// Tools returns the notes tools bound to the app's REST client.
func (a *App) Tools() []tool.Tool { return notion.Tools(a.Notion) }

// Ask answers a single question through the notes specialist, without the
// supervisor. history holds prior turns.
func (a *App) Ask(ctx context.Context, history []core.Message, input string, emit core.EmitFunc) (*agent.Result, error) {
	msgs := append(append([]core.Message(nil), history...), core.NewUserMessage(input))
	return a.Specialist.Invoke(ctx, msgs, emit)
}
