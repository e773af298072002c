// Package config loads NotoMate settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/notomate/logging"
)

// ErrMissingAPIKey is returned when a required credential is absent.
var ErrMissingAPIKey = errors.New("missing api key")

// Model providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is the complete process configuration.
type Config struct {
	Notion  NotionConfig  `yaml:"notion" json:"notion"`
	Model   ModelConfig   `yaml:"model" json:"model"`
	Agent   AgentConfig   `yaml:"agent" json:"agent"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Auth    AuthConfig    `yaml:"auth" json:"auth"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// NotionConfig configures the notes service client.
type NotionConfig struct {
	APIKey  string `yaml:"api_key" json:"-"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	Version string `yaml:"version" json:"version"`
}

// ModelConfig selects and configures the language model.
type ModelConfig struct {
	Provider        string  `yaml:"provider" json:"provider"`
	Name            string  `yaml:"name" json:"name"` // empty uses the provider default
	Temperature     float64 `yaml:"temperature" json:"temperature"`
	MaxTokens       int     `yaml:"max_tokens" json:"max_tokens"`
	OpenAIAPIKey    string  `yaml:"openai_api_key" json:"-"`
	OpenAIBaseURL   string  `yaml:"openai_base_url" json:"openai_base_url"`
	AnthropicAPIKey string  `yaml:"anthropic_api_key" json:"-"`
}

// AgentConfig bounds the agents.
type AgentConfig struct {
	// MaxIterations bounds the model turns of one agent run.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`
	// MaxSteps bounds the node visits of one delegation graph turn.
	MaxSteps int `yaml:"max_steps" json:"max_steps"`
	// MaxModelCalls bounds the model calls of one turn (0 = unlimited).
	MaxModelCalls int `yaml:"max_model_calls" json:"max_model_calls"`
	// MaxHistoryMessages trims the history sent to the model (0 = all).
	MaxHistoryMessages int `yaml:"max_history_messages" json:"max_history_messages"`
	// UserName is greeted by the supervisor.
	UserName string `yaml:"user_name" json:"user_name"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// AuthConfig configures the OAuth allowlist.
type AuthConfig struct {
	AllowedUsername string `yaml:"allowed_username" json:"allowed_username"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Notion: NotionConfig{
			BaseURL: "https://api.notion.com",
			Version: "2022-06-28",
		},
		Model: ModelConfig{
			Provider:  ProviderOpenAI,
			MaxTokens: 4096,
		},
		Agent: AgentConfig{
			MaxIterations: 15,
			MaxSteps:      25,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (skipped when empty), applies the environment and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from the environment. Empty variables are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	str(&c.Notion.APIKey, "NOTION_API_KEY")
	str(&c.Notion.BaseURL, "NOTION_BASE_URL")
	str(&c.Model.Provider, "NOTOMATE_PROVIDER")
	str(&c.Model.Name, "NOTOMATE_MODEL")
	str(&c.Model.OpenAIAPIKey, "OPENAI_API_KEY")
	str(&c.Model.OpenAIBaseURL, "OPENAI_BASE_URL")
	str(&c.Model.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	str(&c.Agent.UserName, "NOTOMATE_USER_NAME")
	str(&c.Server.Addr, "NOTOMATE_ADDR")
	str(&c.Auth.AllowedUsername, "NOTOMATE_ALLOWED_USERNAME", "CHAINLIT_ALLOWED_USERNAME")
	str(&c.Logging.Level, "NOTOMATE_LOG_LEVEL")
	str(&c.Logging.Format, "NOTOMATE_LOG_FORMAT")

	if v, ok := lookup("NOTOMATE_MAX_STEPS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NOTOMATE_MAX_STEPS %q: %w", v, err)
		}
		c.Agent.MaxSteps = n
	}

	return nil
}

// Validate checks required credentials and value ranges.
func (c *Config) Validate() error {
	if c.Notion.APIKey == "" {
		return fmt.Errorf("%w: NOTION_API_KEY is required", ErrMissingAPIKey)
	}

	switch c.Model.Provider {
	case ProviderOpenAI:
		if c.Model.OpenAIAPIKey == "" && c.Model.OpenAIBaseURL == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for provider %s", ErrMissingAPIKey, c.Model.Provider)
		}
	case ProviderAnthropic:
		if c.Model.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: ANTHROPIC_API_KEY is required for provider %s", ErrMissingAPIKey, c.Model.Provider)
		}
	default:
		return fmt.Errorf("invalid model provider: %q (must be %q or %q)", c.Model.Provider, ProviderOpenAI, ProviderAnthropic)
	}

	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("max_iterations cannot be negative")
	}
	if c.Agent.MaxSteps < 0 {
		return fmt.Errorf("max_steps cannot be negative")
	}
	if c.Agent.MaxModelCalls < 0 {
		return fmt.Errorf("max_model_calls cannot be negative")
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if f := c.Logging.Format; f != "json" && f != "text" {
		return fmt.Errorf("invalid log format: %q (must be json or text)", f)
	}

	return nil
}

// NewLogger builds the process logger described by the logging section.
func (c *Config) NewLogger(component string) logging.Logger {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logging.LogLevelInfo
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    c.Logging.Format,
		Output:    os.Stderr,
		Component: component,
	})
}
