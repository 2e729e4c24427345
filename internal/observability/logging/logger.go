// Package logging provides structured logging utilities using the standard
// library's log/slog package, plus helpers for logging network identifiers
// without exposing them: client IPs are logged only as salted SHA-256
// hashes and URLs only as host and path.
package logging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"os"

	"news-thread/internal/handler/http/requestid"
)

// NewLogger creates a new structured logger with JSON output.
// The log level can be controlled via the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error
// Default level: info
func NewLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
		// Add source code location for error and warn levels
		AddSource: logLevel <= slog.LevelWarn,
	})

	return slog.New(handler)
}

// WithRequestID returns a new logger that includes the request ID from the
// context. This enables request tracing across log entries.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// HashIP returns the hex SHA-256 of ip concatenated with the LOG_SALT
// environment variable. Raw client IPs must never reach the log sink.
func HashIP(ip string) string {
	salt := os.Getenv("LOG_SALT")
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])
}

// URLHostPath reduces a URL to its host and path for logging. Query
// strings, fragments, and credentials are dropped. Unparsable input yields
// empty strings rather than an error; logging must not fail a request.
func URLHostPath(raw string) (host, path string) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ""
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return u.Hostname(), path
}
