package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(svc ThreadService) http.Handler {
	return NewRouter(RouterConfig{
		Service:  svc,
		Provider: "openai",
		Logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
}

func TestRouter_GenerateRoute(t *testing.T) {
	svc := &fakeService{thread: testThread()}
	router := newTestRouter(svc)

	body, _ := json.Marshal(map[string]string{"url": "https://example.com/a"})
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), resp.RequestID)
}

func TestRouter_MetricsAndProbes(t *testing.T) {
	router := newTestRouter(&fakeService{})

	for _, path := range []string{"/metrics", "/health", "/live"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equalf(t, http.StatusOK, rec.Code, "GET %s", path)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_BodyLimitEnforced(t *testing.T) {
	svc := &fakeService{thread: testThread()}
	router := newTestRouter(svc)

	huge := strings.Repeat("x", maxRequestBodyBytes+1)
	body, _ := json.Marshal(map[string]string{"pastedText": huge})
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, svc.calls)
}
