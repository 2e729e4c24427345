// Package generate orchestrates the URL-to-thread pipeline: abuse
// admission, URL safety gating, bounded fetch, content extraction, and
// the two-stage thread writer.
//
// Every terminal outcome, success or classified failure, is recorded to
// metrics and logged with derived telemetry fields only. Raw errors and
// full URLs never reach the log sink.
package generate

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"news-thread/internal/apperror"
	"news-thread/internal/domain/entity"
	"news-thread/internal/infra/extractor"
	"news-thread/internal/infra/fetcher"
	"news-thread/internal/infra/threadwriter"
	"news-thread/internal/observability/logging"
	"news-thread/internal/observability/metrics"
	"news-thread/internal/security/ssrf"
	"news-thread/internal/utils/text"
)

// Fetcher retrieves HTML from a gated URL under time, byte and redirect
// budgets.
type Fetcher interface {
	FetchHTML(ctx context.Context, u *url.URL) (*fetcher.Result, error)
}

// Extractor recovers readable article content.
type Extractor interface {
	FromHTML(html string, finalURL *url.URL) (*entity.ExtractedArticle, error)
	FromPastedText(pasted string, opts extractor.PastedOptions) (*entity.ExtractedArticle, error)
}

// AbuseGuard gates requests per client IP.
type AbuseGuard interface {
	Admit(ctx context.Context, ip string) error
	RecordFailure(ctx context.Context, ip string)
	ClearFailures(ctx context.Context, ip string)
}

// Request is a validated thread-generation request. Exactly one of URL
// and PastedText is set; the handler enforces that before calling in.
type Request struct {
	URL        string
	PastedText string
	Tone       string
	Length     string
	Angle      string
	Language   string

	// IncludeSourceLink asks the writer to place the source URL in the
	// final post. Ignored for pasted text.
	IncludeSourceLink bool

	// ClientIP keys abuse control. Derived by the handler from proxy
	// headers, "unknown" when absent.
	ClientIP string
}

// ExtractRequest is a validated extraction-only request.
type ExtractRequest struct {
	URL      string
	ClientIP string
}

// Service wires the pipeline stages together.
type Service struct {
	guard     AbuseGuard
	fetcher   Fetcher
	extractor Extractor
	writer    threadwriter.Writer
	model     string
	logger    *slog.Logger
}

// NewService creates a generation service. model is reported back to
// clients in the thread debug block.
func NewService(guard AbuseGuard, f Fetcher, e Extractor, w threadwriter.Writer, model string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		guard:     guard,
		fetcher:   f,
		extractor: e,
		writer:    w,
		model:     model,
		logger:    logger,
	}
}

// GenerateThread runs the full pipeline for one request.
//
// Failures in the fetch, extraction and writer stages count against the
// client's failure budget; admission and input-shape failures do not.
// A successful run clears the client's failure counter.
func (s *Service) GenerateThread(ctx context.Context, req Request) (*entity.Thread, error) {
	start := time.Now()

	if err := s.guard.Admit(ctx, req.ClientIP); err != nil {
		return nil, s.rejected(ctx, req.ClientIP, start, err)
	}

	var (
		article *entity.ExtractedArticle
		result  *fetcher.Result
	)
	if req.URL != "" {
		var err error
		article, result, err = s.fetchAndExtract(ctx, req.URL, req.ClientIP, start)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		article, err = s.extractor.FromPastedText(req.PastedText, extractor.PastedOptions{})
		if err != nil {
			return nil, s.rejected(ctx, req.ClientIP, start, err)
		}
	}

	opts := threadwriter.Options{
		Tone:     req.Tone,
		Length:   req.Length,
		Angle:    req.Angle,
		Language: req.Language,
	}
	if req.IncludeSourceLink && req.URL != "" {
		opts.SourceURL = req.URL
	}

	outline, err := s.writer.Outline(ctx, article.Text, opts)
	if err != nil {
		return nil, s.failed(ctx, req.ClientIP, start, result, err)
	}
	posts, err := s.writer.Render(ctx, outline, opts)
	if err != nil {
		return nil, s.failed(ctx, req.ClientIP, start, result, err)
	}

	extractedChars := text.CountRunes(article.Text)
	s.guard.ClearFailures(ctx, req.ClientIP)
	s.succeeded(ctx, req.ClientIP, start, result, extractedChars)

	return &entity.Thread{
		Tweets: posts,
		Meta: entity.ThreadMeta{
			Title:     article.Title,
			SiteName:  article.SiteName,
			URL:       req.URL,
			Tone:      req.Tone,
			Length:    req.Length,
			CreatedAt: time.Now().UTC(),
		},
		Debug: entity.ThreadDebug{
			ExtractedCharCount: extractedChars,
			Model:              s.model,
		},
	}, nil
}

// ExtractArticle runs admission, gating, fetch and extraction without
// the writer stages.
func (s *Service) ExtractArticle(ctx context.Context, req ExtractRequest) (*entity.ExtractedArticle, error) {
	start := time.Now()

	if err := s.guard.Admit(ctx, req.ClientIP); err != nil {
		return nil, s.rejected(ctx, req.ClientIP, start, err)
	}

	article, result, err := s.fetchAndExtract(ctx, req.URL, req.ClientIP, start)
	if err != nil {
		return nil, err
	}

	s.guard.ClearFailures(ctx, req.ClientIP)
	s.succeeded(ctx, req.ClientIP, start, result, text.CountRunes(article.Text))
	return article, nil
}

// fetchAndExtract gates the URL, fetches it and extracts the article.
// Gate failures are input rejections; fetch and extraction failures
// count as abuse signals.
func (s *Service) fetchAndExtract(ctx context.Context, rawURL, ip string, start time.Time) (*entity.ExtractedArticle, *fetcher.Result, error) {
	u, err := ssrf.AssertSafeURL(rawURL)
	if err != nil {
		return nil, nil, s.rejected(ctx, ip, start, err)
	}

	result, err := s.fetcher.FetchHTML(ctx, u)
	if err != nil {
		return nil, nil, s.failed(ctx, ip, start, nil, err)
	}

	article, err := s.extractor.FromHTML(result.HTML, result.FinalURL)
	if err != nil {
		return nil, nil, s.failed(ctx, ip, start, result, err)
	}
	return article, result, nil
}

// rejected finalizes a request refused before any network work, or one
// with an invalid input shape. No failure is recorded against the IP.
func (s *Service) rejected(ctx context.Context, ip string, start time.Time, err error) error {
	appErr := apperror.Classify(err)
	metrics.RecordOutcome(string(appErr.Code))
	s.logger.WarnContext(ctx, "request rejected",
		slog.String("code", string(appErr.Code)),
		slog.String("ip_hash", logging.HashIP(ip)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return appErr
}

// failed finalizes a pipeline failure and counts it against the IP.
func (s *Service) failed(ctx context.Context, ip string, start time.Time, result *fetcher.Result, err error) error {
	appErr := apperror.Classify(err)
	s.guard.RecordFailure(ctx, ip)
	metrics.RecordOutcome(string(appErr.Code))

	attrs := []any{
		slog.String("code", string(appErr.Code)),
		slog.String("ip_hash", logging.HashIP(ip)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	attrs = append(attrs, fetchAttrs(result)...)
	s.logger.WarnContext(ctx, "pipeline failed", attrs...)
	return appErr
}

// succeeded finalizes a successful run with its telemetry fields.
func (s *Service) succeeded(ctx context.Context, ip string, start time.Time, result *fetcher.Result, extractedChars int) {
	metrics.RecordOutcome("ok")

	attrs := []any{
		slog.String("ip_hash", logging.HashIP(ip)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		slog.Int("extracted_chars", extractedChars),
	}
	attrs = append(attrs, fetchAttrs(result)...)
	s.logger.InfoContext(ctx, "pipeline completed", attrs...)
}

// fetchAttrs derives log fields from a completed fetch. Nil for pasted
// text or when the fetch never finished.
func fetchAttrs(result *fetcher.Result) []any {
	if result == nil {
		return nil
	}
	return []any{
		slog.Int("html_bytes", result.Metrics.HTMLBytes),
		slog.Int("http_status", result.Metrics.HTTPStatus),
		slog.String("content_type", result.Metrics.ContentType),
		slog.String("final_host", result.Metrics.FinalHost),
	}
}
