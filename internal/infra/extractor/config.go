package extractor

import (
	"fmt"

	"news-thread/pkg/config"
)

// Config holds content extraction settings.
type Config struct {
	// MinChars is the minimum article body length, counted in runes.
	// Bodies below this are rejected as too short to thread.
	MinChars int

	// ExcerptMaxChars caps the excerpt derived for pasted text, in runes.
	ExcerptMaxChars int
}

// DefaultConfig returns the extraction defaults.
func DefaultConfig() Config {
	return Config{
		MinChars:        800,
		ExcerptMaxChars: 300,
	}
}

// LoadConfigFromEnv loads extraction settings from environment variables.
func LoadConfigFromEnv() Config {
	defaults := DefaultConfig()
	return Config{
		MinChars:        config.GetEnvInt("EXTRACT_MIN_CHARS", defaults.MinChars),
		ExcerptMaxChars: config.GetEnvInt("EXTRACT_EXCERPT_MAX_CHARS", defaults.ExcerptMaxChars),
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.MinChars < 0 {
		return fmt.Errorf("min chars must not be negative, got %d", c.MinChars)
	}
	if c.ExcerptMaxChars <= 0 {
		return fmt.Errorf("excerpt max chars must be positive, got %d", c.ExcerptMaxChars)
	}
	return nil
}
