package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct{ err error }

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func getHealth(t *testing.T, h http.Handler) HealthResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	return resp
}

func TestHealthHandler_NoStore(t *testing.T) {
	resp := getHealth(t, NewHealthHandler(nil, "openai"))

	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Checks["abuse_store"].Status != "disabled" {
		t.Errorf("abuse_store = %+v", resp.Checks["abuse_store"])
	}
	if resp.Checks["thread_writer"].Message != "openai" {
		t.Errorf("thread_writer = %+v", resp.Checks["thread_writer"])
	}
}

func TestHealthHandler_StoreHealthy(t *testing.T) {
	resp := getHealth(t, NewHealthHandler(&fakePinger{}, "claude"))

	if resp.Checks["abuse_store"].Status != "healthy" {
		t.Errorf("abuse_store = %+v", resp.Checks["abuse_store"])
	}
}

func TestHealthHandler_StoreDownStillHealthy(t *testing.T) {
	resp := getHealth(t, NewHealthHandler(&fakePinger{err: errors.New("refused")}, "openai"))

	if resp.Status != "healthy" {
		t.Errorf("status = %q, fail-open store must not fail health", resp.Status)
	}
	if resp.Checks["abuse_store"].Status != "unhealthy" {
		t.Errorf("abuse_store = %+v", resp.Checks["abuse_store"])
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
