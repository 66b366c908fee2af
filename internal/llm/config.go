package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures the LLM used for grading feedback. An
// empty Provider means feedback comes from the answer key alone.
type Config struct {
	Provider string `env:"EXAMPREP_LLM_PROVIDER"`

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one grading call, retries included.
	Timeout time.Duration `env:"EXAMPREP_LLM_TIMEOUT" envDefault:"30s"`
}

type AnthropicConfig struct {
	APIKey string `env:"EXAMPREP_ANTHROPIC_API_KEY"`
	Model  string `env:"EXAMPREP_ANTHROPIC_MODEL" envDefault:"claude-haiku"`
}

type OpenAIConfig struct {
	APIKey  string `env:"EXAMPREP_OPENAI_API_KEY"`
	Model   string `env:"EXAMPREP_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"EXAMPREP_OPENAI_BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `env:"EXAMPREP_GEMINI_API_KEY"`
	Model  string `env:"EXAMPREP_GEMINI_MODEL" envDefault:"gemini-flash"`
}

type OpenRouterConfig struct {
	APIKey  string `env:"EXAMPREP_OPENROUTER_API_KEY"`
	Model   string `env:"EXAMPREP_OPENROUTER_MODEL" envDefault:"google/gemini-2.0-flash-exp"`
	BaseURL string `env:"EXAMPREP_OPENROUTER_BASE_URL"`
}

// RetryConfig configures backoff for transient provider failures.
type RetryConfig struct {
	MaxAttempts int           `env:"EXAMPREP_LLM_RETRY_ATTEMPTS" envDefault:"3"`
	InitialWait time.Duration `env:"EXAMPREP_LLM_RETRY_WAIT" envDefault:"1s"`
	MaxWait     time.Duration `env:"EXAMPREP_LLM_RETRY_MAX_WAIT" envDefault:"10s"`
	Multiplier  float64       `env:"EXAMPREP_LLM_RETRY_MULTIPLIER" envDefault:"2"`
}

// ConfigFromEnv reads EXAMPREP_* variables. When no provider is named it
// falls back to DiscoverConfig.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse llm config: %w", err)
	}
	if cfg.Provider == "" {
		if found, ok := discover(cfg); ok {
			return found, nil
		}
	}
	return cfg, nil
}

// DiscoverConfig probes the vendors' standard API key variables in the
// order Gemini, OpenAI, Anthropic, OpenRouter and selects the first one set.
func DiscoverConfig() (Config, bool) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, false
	}
	return discover(cfg)
}

func discover(cfg Config) (Config, bool) {
	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool { return c.Provider != "" }

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	missing := func(name string) error {
		return fmt.Errorf("EXAMPREP_%s_API_KEY is required for the %s provider", name, c.Provider)
	}
	switch c.Provider {
	case "", ProviderMock:
		return nil
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return missing("ANTHROPIC")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return missing("OPENAI")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return missing("GEMINI")
		}
	case ProviderOpenRouter:
		if c.OpenRouter.APIKey == "" {
			return missing("OPENROUTER")
		}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
