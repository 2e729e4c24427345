package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"news-thread/internal/domain/entity"
	"news-thread/internal/handler/http/requestid"
	"news-thread/internal/handler/http/respond"
	"news-thread/internal/usecase/generate"
)

// ThreadService is the pipeline surface the handlers call into.
type ThreadService interface {
	GenerateThread(ctx context.Context, req generate.Request) (*entity.Thread, error)
	ExtractArticle(ctx context.Context, req generate.ExtractRequest) (*entity.ExtractedArticle, error)
}

// generateRequest is the POST /api/generate body.
type generateRequest struct {
	URL               string `json:"url"`
	PastedText        string `json:"pastedText"`
	Tone              string `json:"tone"`
	Length            string `json:"length"`
	Angle             string `json:"angle"`
	ThreadLanguage    string `json:"threadLanguage"`
	IncludeSourceLink bool   `json:"includeSourceLink"`
}

// generateResponse is the POST /api/generate success body.
type generateResponse struct {
	Tweets    []string      `json:"tweets"`
	Meta      threadMeta    `json:"meta"`
	Sources   threadSources `json:"sources"`
	Debug     *threadDebug  `json:"debug,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

type threadMeta struct {
	Title     string `json:"title"`
	SiteName  string `json:"siteName"`
	URL       string `json:"url,omitempty"`
	Tone      string `json:"tone"`
	Length    string `json:"length"`
	CreatedAt string `json:"createdAt"`
}

type threadSources struct {
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	SiteName string `json:"siteName"`
}

type threadDebug struct {
	ExtractedCharCount int    `json:"extractedCharCount,omitempty"`
	Model              string `json:"model,omitempty"`
}

// GenerateHandler serves POST /api/generate.
type GenerateHandler struct {
	Service ThreadService
	Logger  *slog.Logger
}

// NewGenerateHandler creates a generate handler.
func NewGenerateHandler(service ThreadService, logger *slog.Logger) *GenerateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateHandler{Service: service, Logger: logger}
}

// ServeHTTP decodes, validates, and runs the generation pipeline.
// Validation failures are plain 400s and never count as pipeline
// failures for abuse control.
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond.Error(w, r, methodNotAllowed())
		return
	}

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, r, validationError("Invalid JSON body."))
		return
	}

	req, err := validateGenerateRequest(body)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	req.ClientIP = ClientIP(r)

	thread, err := h.Service.GenerateThread(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toGenerateResponse(thread, requestid.FromContext(r.Context())))
}

func toGenerateResponse(thread *entity.Thread, requestID string) generateResponse {
	resp := generateResponse{
		Tweets: thread.Tweets,
		Meta: threadMeta{
			Title:     thread.Meta.Title,
			SiteName:  thread.Meta.SiteName,
			URL:       thread.Meta.URL,
			Tone:      thread.Meta.Tone,
			Length:    thread.Meta.Length,
			CreatedAt: thread.Meta.CreatedAt.Format(time.RFC3339),
		},
		Sources: threadSources{
			Title:    thread.Meta.Title,
			URL:      thread.Meta.URL,
			SiteName: thread.Meta.SiteName,
		},
		RequestID: requestID,
	}
	if thread.Debug.Model != "" || thread.Debug.ExtractedCharCount > 0 {
		resp.Debug = &threadDebug{
			ExtractedCharCount: thread.Debug.ExtractedCharCount,
			Model:              thread.Debug.Model,
		}
	}
	return resp
}
