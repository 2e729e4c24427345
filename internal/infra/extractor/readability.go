// Package extractor turns fetched HTML or pasted plain text into a
// structured article ready for thread generation.
//
// HTML goes through go-shiori/go-readability, which applies the usual
// readability heuristic to strip navigation, ads and boilerplate. The
// extractor then enforces a minimum body length and resolves a display
// site name from the parse metadata, the og:site_name meta tag, or the
// hostname as a last resort.
package extractor

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"news-thread/internal/apperror"
	"news-thread/internal/domain/entity"
	"news-thread/internal/utils/text"
)

// Extractor parses article content out of arbitrary HTML.
type Extractor struct {
	config Config
	logger *slog.Logger
}

// New creates an Extractor with the given configuration.
func New(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{config: cfg, logger: logger}
}

// FromHTML extracts the main article from an HTML document.
//
// finalURL is the URL the document was ultimately served from (after
// redirects); readability uses it to resolve relative references and it
// feeds the hostname fallback for the site name.
func (e *Extractor) FromHTML(html string, finalURL *url.URL) (*entity.ExtractedArticle, error) {
	article, err := readability.FromReader(strings.NewReader(html), finalURL)
	if err != nil {
		e.logger.Debug("readability parse failed",
			slog.String("host", hostOf(finalURL)),
			slog.String("error", err.Error()))
		return nil, apperror.New(apperror.CodeReadabilityEmpty,
			"Could not extract readable content from the page.").WithCause(err)
	}

	body := strings.TrimSpace(article.TextContent)
	if body == "" {
		return nil, apperror.New(apperror.CodeReadabilityEmpty,
			"Could not extract readable content from the page.")
	}

	if n := text.CountRunes(body); n < e.config.MinChars {
		return nil, apperror.New(apperror.CodeExtractTooShort,
			"The extracted article is too short to generate a thread.").
			WithDetails(map[string]any{
				"char_count": n,
				"min_chars":  e.config.MinChars,
			})
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = "Untitled"
	}

	return &entity.ExtractedArticle{
		Title:    title,
		SiteName: e.resolveSiteName(article, html, finalURL),
		Byline:   strings.TrimSpace(article.Byline),
		Text:     body,
		Excerpt:  strings.TrimSpace(article.Excerpt),
	}, nil
}

// resolveSiteName picks a display name for the publishing site.
// Preference order: readability metadata, the og:site_name meta tag,
// then the hostname with a leading "www." stripped.
func (e *Extractor) resolveSiteName(article readability.Article, html string, finalURL *url.URL) string {
	if name := strings.TrimSpace(article.SiteName); name != "" {
		return name
	}
	if name := ogSiteName(html); name != "" {
		return name
	}
	if host := hostOf(finalURL); host != "" {
		return strings.TrimPrefix(host, "www.")
	}
	return "Unknown"
}

// ogSiteName reads the og:site_name meta tag, if present.
func ogSiteName(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	content, _ := doc.Find(`meta[property="og:site_name"]`).Attr("content")
	return strings.TrimSpace(content)
}

func hostOf(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Hostname()
}
