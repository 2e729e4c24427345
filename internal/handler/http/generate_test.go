package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-thread/internal/apperror"
	"news-thread/internal/domain/entity"
	"news-thread/internal/handler/http/requestid"
	"news-thread/internal/handler/http/respond"
	"news-thread/internal/usecase/generate"
)

type fakeService struct {
	thread  *entity.Thread
	article *entity.ExtractedArticle
	err     error

	lastGenerate generate.Request
	lastExtract  generate.ExtractRequest
	calls        int
}

func (f *fakeService) GenerateThread(ctx context.Context, req generate.Request) (*entity.Thread, error) {
	f.calls++
	f.lastGenerate = req
	return f.thread, f.err
}

func (f *fakeService) ExtractArticle(ctx context.Context, req generate.ExtractRequest) (*entity.ExtractedArticle, error) {
	f.calls++
	f.lastExtract = req
	return f.article, f.err
}

func testThread() *entity.Thread {
	return &entity.Thread{
		Tweets: []string{"1/ Hook", "2/ Point", "3/ Takeaway"},
		Meta: entity.ThreadMeta{
			Title:     "Example Article",
			SiteName:  "Example News",
			URL:       "https://example.com/a",
			Tone:      "professional",
			Length:    "8",
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Debug: entity.ThreadDebug{ExtractedCharCount: 1200, Model: "gpt-4o-mini"},
	}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req = req.WithContext(requestid.WithRequestID(req.Context(), "test-req-id"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGenerateHandler_Success(t *testing.T) {
	svc := &fakeService{thread: testThread()}
	handler := NewGenerateHandler(svc, nil)

	rec := postJSON(t, handler, "/api/generate", map[string]any{
		"url":  "https://example.com/a",
		"tone": "casual",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"1/ Hook", "2/ Point", "3/ Takeaway"}, resp.Tweets)
	assert.Equal(t, "Example Article", resp.Meta.Title)
	assert.Equal(t, "Example News", resp.Meta.SiteName)
	assert.Equal(t, "https://example.com/a", resp.Meta.URL)
	assert.Equal(t, "2026-03-01T12:00:00Z", resp.Meta.CreatedAt)
	assert.Equal(t, "Example Article", resp.Sources.Title)
	assert.Equal(t, "test-req-id", resp.RequestID)
	require.NotNil(t, resp.Debug)
	assert.Equal(t, 1200, resp.Debug.ExtractedCharCount)
	assert.Equal(t, "gpt-4o-mini", resp.Debug.Model)

	assert.Equal(t, "casual", svc.lastGenerate.Tone)
	assert.Equal(t, "8", svc.lastGenerate.Length)
}

func TestGenerateHandler_ClientIPForwarded(t *testing.T) {
	svc := &fakeService{thread: testThread()}
	handler := NewGenerateHandler(svc, nil)

	raw, _ := json.Marshal(map[string]string{"url": "https://example.com/a"})
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(raw))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.9", svc.lastGenerate.ClientIP)
}

func TestGenerateHandler_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty body", map[string]any{}},
		{"bad tone", map[string]any{"url": "https://example.com", "tone": "angry"}},
		{"bad length", map[string]any{"url": "https://example.com", "length": "99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{thread: testThread()}
			handler := NewGenerateHandler(svc, nil)

			rec := postJSON(t, handler, "/api/generate", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body respond.ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
			assert.Equal(t, "test-req-id", body.Error.RequestID)
			assert.Zero(t, svc.calls, "pipeline must not run on invalid input")
		})
	}
}

func TestGenerateHandler_MalformedJSON(t *testing.T) {
	svc := &fakeService{thread: testThread()}
	handler := NewGenerateHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
}

func TestGenerateHandler_PipelineErrorEnvelope(t *testing.T) {
	svc := &fakeService{err: apperror.New(apperror.CodeRateLimit, "Hourly limit exceeded. Try again later.")}
	handler := NewGenerateHandler(svc, nil)

	rec := postJSON(t, handler, "/api/generate", map[string]any{"url": "https://example.com/a"})

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMIT", body.Error.Code)
	assert.Equal(t, "Hourly limit exceeded. Try again later.", body.Error.Message)
}

func TestGenerateHandler_MethodNotAllowed(t *testing.T) {
	handler := NewGenerateHandler(&fakeService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/generate", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestGenerateHandler_PastedTextOmitsURLFromMeta(t *testing.T) {
	thread := testThread()
	thread.Meta.URL = ""
	svc := &fakeService{thread: thread}
	handler := NewGenerateHandler(svc, nil)

	rec := postJSON(t, handler, "/api/generate", map[string]any{"pastedText": "a long pasted article"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"url"`)
	assert.Equal(t, "a long pasted article", svc.lastGenerate.PastedText)
	assert.Empty(t, svc.lastGenerate.URL)
}
