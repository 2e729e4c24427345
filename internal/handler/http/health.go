package http

import (
	"context"
	"net/http"
	"time"

	"news-thread/internal/handler/http/respond"
)

// Pinger reports reachability of a backing store. The abuse-control
// Redis client satisfies it; a nil Pinger means the service runs in
// fail-open mode without one.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus reports one health check item.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler serves GET /health. The abuse store check is advisory:
// the pipeline fails open without it, so an unreachable store degrades
// the report but never the HTTP status.
type HealthHandler struct {
	Store    Pinger
	Provider string
}

// NewHealthHandler creates a health handler. store may be nil.
func NewHealthHandler(store Pinger, provider string) *HealthHandler {
	return &HealthHandler{Store: store, Provider: provider}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := map[string]CheckStatus{
		"thread_writer": {Status: "healthy", Message: h.Provider},
	}

	switch {
	case h.Store == nil:
		checks["abuse_store"] = CheckStatus{Status: "disabled", Message: "running fail-open"}
	default:
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.Ping(ctx); err != nil {
			checks["abuse_store"] = CheckStatus{Status: "unhealthy", Message: "store unreachable, failing open"}
		} else {
			checks["abuse_store"] = CheckStatus{Status: "healthy"}
		}
	}

	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// LiveHandler serves GET /live, a bare liveness probe.
func LiveHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
