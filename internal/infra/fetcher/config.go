// Package fetcher performs the bounded, SSRF-guarded fetch of user-supplied
// article URLs. Redirects are followed manually so that the URL safety gate
// and DNS public-host assertion run again at every hop.
package fetcher

import (
	"fmt"
	"time"

	"news-thread/pkg/config"
)

// Config holds the resource bounds for one fetch-with-redirects operation.
//
// Security settings:
//   - Timeout: wall-clock budget for the whole multi-hop operation
//   - MaxBytes: response body budget, enforced while streaming
//   - MaxRedirects: redirect chain cap, re-validated per hop
type Config struct {
	// Timeout is the wall-clock budget covering every hop: DNS
	// resolution, requests, and body streaming. Default: 8s.
	Timeout time.Duration

	// MaxBytes is the maximum HTTP response body size in bytes, enforced
	// during streaming rather than via the Content-Length header.
	// Default: 1572864 (1.5MB).
	MaxBytes int64

	// MaxRedirects is the maximum number of redirects to follow. Each
	// redirect target passes the full URL safety gate again. Default: 3.
	MaxRedirects int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:      8 * time.Second,
		MaxBytes:     1_572_864,
		MaxRedirects: 3,
	}
}

// Validate checks that the configured bounds are sane.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBytes := int64(1024)
	maxBytes := int64(100 * 1024 * 1024)
	if c.MaxBytes < minBytes || c.MaxBytes > maxBytes {
		return fmt.Errorf("max bytes must be between %d and %d, got %d", minBytes, maxBytes, c.MaxBytes)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables,
// falling back to defaults for unset values.
//
// Environment variables:
//   - FETCH_TIMEOUT: duration string, e.g. "8s" (default: 8s)
//   - FETCH_MAX_BYTES: integer in bytes (default: 1572864)
//   - FETCH_MAX_REDIRECTS: integer (default: 3)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.Timeout = config.GetEnvDuration("FETCH_TIMEOUT", cfg.Timeout)
	cfg.MaxBytes = config.GetEnvInt64("FETCH_MAX_BYTES", cfg.MaxBytes)
	cfg.MaxRedirects = config.GetEnvInt("FETCH_MAX_REDIRECTS", cfg.MaxRedirects)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("fetch configuration validation failed: %w", err)
	}
	return cfg, nil
}
