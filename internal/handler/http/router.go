package http

import (
	"log/slog"
	"net/http"

	"news-thread/internal/handler/http/requestid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRequestBodyBytes bounds request bodies. Pasted text tops out at
// 150k characters, so 2 MiB leaves room for multi-byte text plus JSON
// escaping.
const maxRequestBodyBytes = 2 << 20

// RouterConfig carries the dependencies of the HTTP surface.
type RouterConfig struct {
	Service  ThreadService
	Store    Pinger // nil when abuse control runs fail-open
	Provider string // thread writer provider name, reported by /health
	Logger   *slog.Logger
}

// NewRouter builds the full handler tree with the shared middleware
// chain applied.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/generate", NewGenerateHandler(cfg.Service, logger))
	mux.Handle("/api/extract", NewExtractHandler(cfg.Service, logger))
	mux.Handle("/health", NewHealthHandler(cfg.Store, cfg.Provider))
	mux.Handle("/live", LiveHandler())
	mux.Handle("/metrics", promhttp.Handler())

	return Chain(mux,
		Recover(logger),
		requestid.Middleware,
		Logging(logger),
		Metrics(),
		LimitRequestBody(maxRequestBodyBytes),
	)
}
