package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"news-thread/internal/handler/http/respond"
	"news-thread/internal/usecase/generate"
)

// extractRequest is the POST /api/extract body.
type extractRequest struct {
	URL string `json:"url"`
}

// extractResponse mirrors entity.ExtractedArticle on the wire.
type extractResponse struct {
	Title    string `json:"title"`
	SiteName string `json:"siteName"`
	Byline   string `json:"byline,omitempty"`
	Text     string `json:"text"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// ExtractHandler serves POST /api/extract: the fetch and extraction
// stages only, no thread generation.
type ExtractHandler struct {
	Service ThreadService
	Logger  *slog.Logger
}

// NewExtractHandler creates an extract handler.
func NewExtractHandler(service ThreadService, logger *slog.Logger) *ExtractHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractHandler{Service: service, Logger: logger}
}

func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respond.Error(w, r, methodNotAllowed())
		return
	}

	var body extractRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.Error(w, r, validationError("Invalid JSON body."))
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		respond.Error(w, r, validationError("Provide url."))
		return
	}

	article, err := h.Service.ExtractArticle(r.Context(), generate.ExtractRequest{
		URL:      strings.TrimSpace(body.URL),
		ClientIP: ClientIP(r),
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, extractResponse{
		Title:    article.Title,
		SiteName: article.SiteName,
		Byline:   article.Byline,
		Text:     article.Text,
		Excerpt:  article.Excerpt,
	})
}
