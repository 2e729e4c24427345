package abuse

import (
	"fmt"
	"time"

	"news-thread/pkg/config"
)

// Config holds rate limiting and cooldown thresholds.
type Config struct {
	// HourlyLimit is the number of requests admitted per IP per hour.
	HourlyLimit int

	// DailyLimit is the number of requests admitted per IP per day.
	DailyLimit int

	// HourlyWindow is the expiry for the hourly counter.
	HourlyWindow time.Duration

	// DailyWindow is the expiry for the daily counter.
	DailyWindow time.Duration

	// FailureThreshold is the failure count that triggers a cooldown.
	FailureThreshold int

	// FailureWindow is the expiry for the failure counter.
	FailureWindow time.Duration

	// Cooldown is how long a tripped IP stays blocked.
	Cooldown time.Duration
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		HourlyLimit:      5,
		DailyLimit:       20,
		HourlyWindow:     time.Hour,
		DailyWindow:      24 * time.Hour,
		FailureThreshold: 5,
		FailureWindow:    10 * time.Minute,
		Cooldown:         15 * time.Minute,
	}
}

// LoadConfigFromEnv loads thresholds from environment variables.
func LoadConfigFromEnv() Config {
	defaults := DefaultConfig()
	return Config{
		HourlyLimit:      config.GetEnvInt("RATE_LIMIT_HOUR_MAX", defaults.HourlyLimit),
		DailyLimit:       config.GetEnvInt("RATE_LIMIT_DAY_MAX", defaults.DailyLimit),
		HourlyWindow:     defaults.HourlyWindow,
		DailyWindow:      defaults.DailyWindow,
		FailureThreshold: config.GetEnvInt("FAILURE_THRESHOLD", defaults.FailureThreshold),
		FailureWindow:    config.GetEnvDuration("FAILURE_WINDOW", defaults.FailureWindow),
		Cooldown:         config.GetEnvDuration("COOLDOWN_DURATION", defaults.Cooldown),
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.HourlyLimit <= 0 {
		return fmt.Errorf("hourly limit must be positive, got %d", c.HourlyLimit)
	}
	if c.DailyLimit < c.HourlyLimit {
		return fmt.Errorf("daily limit %d must not be below hourly limit %d", c.DailyLimit, c.HourlyLimit)
	}
	if c.HourlyWindow <= 0 || c.DailyWindow <= 0 {
		return fmt.Errorf("counter windows must be positive")
	}
	if c.FailureThreshold <= 0 {
		return fmt.Errorf("failure threshold must be positive, got %d", c.FailureThreshold)
	}
	if c.FailureWindow <= 0 || c.Cooldown <= 0 {
		return fmt.Errorf("failure window and cooldown must be positive")
	}
	return nil
}
