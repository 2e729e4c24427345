package threadwriter

import (
	"log/slog"
	"os"
)

// NewFromEnv builds the configured Writer. A missing API key does not
// fail startup; the MissingKey writer rejects affected requests with a
// classified error instead.
func NewFromEnv(cfg Config) Writer {
	switch cfg.Provider {
	case ProviderClaude:
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return NewClaude(key, cfg)
		}
		slog.Warn("ANTHROPIC_API_KEY not set, thread generation disabled")
		return NewMissingKey()
	case ProviderNoop:
		return NewNoOp(cfg)
	default:
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return NewOpenAI(key, cfg)
		}
		slog.Warn("OPENAI_API_KEY not set, thread generation disabled")
		return NewMissingKey()
	}
}
