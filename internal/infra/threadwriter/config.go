package threadwriter

import (
	"fmt"
	"time"

	"news-thread/pkg/config"
)

// Provider names accepted by THREAD_WRITER_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderNoop   = "noop"
)

// Config holds thread writer settings shared by all providers.
type Config struct {
	// Provider selects the backing implementation.
	Provider string

	// Model is the provider model identifier.
	Model string

	// MaxOutputTokens caps each completion. Valid range: 1-4096.
	MaxOutputTokens int

	// MaxInputChars clamps the article text sent to the model, in runes.
	MaxInputChars int

	// Timeout is the maximum duration for one staged API call.
	Timeout time.Duration

	// RequestsPerMinute throttles outbound API calls per instance.
	RequestsPerMinute int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		MaxOutputTokens:   900,
		MaxInputChars:     20000,
		Timeout:           60 * time.Second,
		RequestsPerMinute: 30,
	}
}

// LoadConfigFromEnv loads thread writer settings from environment
// variables. Out-of-range token overrides fall back to the default.
func LoadConfigFromEnv() Config {
	defaults := DefaultConfig()
	cfg := Config{
		Provider:          config.GetEnvString("THREAD_WRITER_PROVIDER", defaults.Provider),
		Model:             config.GetEnvString("OPENAI_MODEL", defaults.Model),
		MaxOutputTokens:   config.GetEnvInt("OVERRIDE_MAX_OUTPUT_TOKENS", defaults.MaxOutputTokens),
		MaxInputChars:     config.GetEnvInt("LLM_MAX_INPUT_CHARS", defaults.MaxInputChars),
		Timeout:           config.GetEnvDuration("THREAD_WRITER_TIMEOUT", defaults.Timeout),
		RequestsPerMinute: config.GetEnvInt("THREAD_WRITER_RPM", defaults.RequestsPerMinute),
	}
	if cfg.MaxOutputTokens < 1 || cfg.MaxOutputTokens > 4096 {
		cfg.MaxOutputTokens = defaults.MaxOutputTokens
	}
	return cfg
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderClaude, ProviderNoop:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.MaxOutputTokens < 1 || c.MaxOutputTokens > 4096 {
		return fmt.Errorf("max output tokens must be in 1-4096, got %d", c.MaxOutputTokens)
	}
	if c.MaxInputChars <= 0 {
		return fmt.Errorf("max input chars must be positive, got %d", c.MaxInputChars)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests per minute must be positive, got %d", c.RequestsPerMinute)
	}
	return nil
}
