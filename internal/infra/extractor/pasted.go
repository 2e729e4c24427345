package extractor

import (
	"net/http"
	"strings"

	"news-thread/internal/apperror"
	"news-thread/internal/domain/entity"
	"news-thread/internal/utils/text"
)

// PastedOptions carries optional metadata supplied alongside pasted text.
type PastedOptions struct {
	Title    string
	SiteName string
}

// FromPastedText builds an article from user-pasted plain text.
//
// The trimmed input is used as the body verbatim with no length cap.
// Empty input is rejected as a validation failure, not an abuse signal,
// so it maps to a 400 rather than the extraction pipeline's 422.
func (e *Extractor) FromPastedText(pasted string, opts PastedOptions) (*entity.ExtractedArticle, error) {
	body := strings.TrimSpace(pasted)
	if body == "" {
		return nil, apperror.NewWithStatus(apperror.CodeExtractTooShort,
			"Pasted text is empty.", http.StatusBadRequest)
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Pasted article"
	}
	siteName := strings.TrimSpace(opts.SiteName)
	if siteName == "" {
		siteName = "Unknown"
	}

	return &entity.ExtractedArticle{
		Title:    title,
		SiteName: siteName,
		Text:     body,
		Excerpt:  text.Excerpt(body, e.config.ExcerptMaxChars),
	}, nil
}
