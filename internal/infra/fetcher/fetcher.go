package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"news-thread/internal/apperror"
	"news-thread/internal/observability/metrics"
	"news-thread/internal/security/ssrf"
)

const userAgent = "Mozilla/5.0 (compatible; NewsThreadBot/1.0; +https://github.com/news-to-thread)"

// Metrics describes a completed fetch for observability. It is not part of
// the safety contract.
type Metrics struct {
	Duration    time.Duration
	HTMLBytes   int
	ContentType string
	HTTPStatus  int
	FinalHost   string
}

// Result is the outcome of a successful fetch: the decoded HTML, the final
// URL after all redirects, and fetch metrics.
type Result struct {
	HTML     string
	FinalURL *url.URL
	Metrics  Metrics
}

// SafeFetcher fetches HTML from pre-validated URLs under strict resource
// bounds. Safe for concurrent use; no state is held across requests.
type SafeFetcher struct {
	client *http.Client
	gate   *ssrf.Gate
	config Config
}

// New creates a SafeFetcher. The HTTP client never follows redirects on its
// own: each 3xx is surfaced so the hop loop can re-run the safety gate and
// DNS assertion before continuing.
func New(gate *ssrf.Gate, cfg Config) *SafeFetcher {
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &SafeFetcher{
		client: client,
		gate:   gate,
		config: cfg,
	}
}

// FetchHTML fetches u, following up to MaxRedirects redirects manually.
//
// Per hop: the hostname is resolved and asserted public, the request is
// issued, and 3xx responses are re-validated through the full URL safety
// gate before the next hop. The whole operation shares one deadline; the
// body is streamed against the byte budget and aborted the moment the
// budget is exceeded. On success the caller receives the decoded HTML and
// the final URL; on failure a classified error. No partial content is ever
// returned.
func (f *SafeFetcher) FetchHTML(ctx context.Context, u *url.URL) (*Result, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	current := u
	redirects := 0

	for {
		if err := f.gate.ResolveAndAssertPublicHost(ctx, current.Hostname()); err != nil {
			return nil, f.fail(ctx, start, err)
		}

		resp, err := f.doRequest(ctx, current)
		if err != nil {
			return nil, f.fail(ctx, start, err)
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			location := resp.Header.Get("Location")
			drain(resp)

			if location == "" {
				return nil, f.fail(ctx, start, apperror.New(apperror.CodeFetchHTTPError,
					"Could not fetch the URL. Check the link or try pasting the article."))
			}

			redirects++
			if redirects > f.config.MaxRedirects {
				return nil, f.fail(ctx, start, apperror.New(apperror.CodeTooManyRedirects, "Too many redirects.").
					WithDetails(map[string]any{"max_redirects": f.config.MaxRedirects}))
			}

			next, err := current.Parse(location)
			if err != nil {
				return nil, f.fail(ctx, start, apperror.New(apperror.CodeInvalidURL, "Invalid URL.").WithCause(err))
			}
			if _, err := ssrf.AssertSafeURL(next.String()); err != nil {
				return nil, f.fail(ctx, start, err)
			}

			current = next
			continue
		}

		result, err := f.readBody(resp, current, start)
		if err != nil {
			return nil, f.fail(ctx, start, err)
		}
		metrics.RecordFetch(result.Metrics.Duration, result.Metrics.HTMLBytes, true)
		return result, nil
	}
}

func (f *SafeFetcher) doRequest(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidURL, "Invalid URL.").WithCause(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperror.New(apperror.CodeFetchHTTPError,
			"Could not fetch the URL. Check the link or try pasting the article.").WithCause(err)
	}
	return resp, nil
}

// readBody validates the terminal response and streams its body under the
// byte budget.
func (f *SafeFetcher) readBody(resp *http.Response, current *url.URL, start time.Time) (*Result, error) {
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status := http.StatusBadRequest
		if resp.StatusCode >= 500 {
			status = http.StatusBadGateway
		}
		return nil, apperror.NewWithStatus(apperror.CodeFetchHTTPError,
			"Could not fetch the URL. Check the link or try pasting the article.", status).
			WithDetails(map[string]any{"http_status": resp.StatusCode})
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, apperror.New(apperror.CodeFetchNonHTML, "Response is not HTML.").
			WithDetails(map[string]any{"content_type": contentType})
	}

	// Read at most MaxBytes+1: a full read of the limited reader means the
	// body exceeded the budget, and the partial bytes are discarded.
	limited := io.LimitReader(resp.Body, f.config.MaxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, apperror.New(apperror.CodeFetchHTTPError,
			"Could not fetch the URL. Check the link or try pasting the article.").
			WithCause(fmt.Errorf("reading response body: %w", err))
	}
	if int64(len(body)) > f.config.MaxBytes {
		return nil, apperror.New(apperror.CodeFetchTooLarge, "Response too large.").
			WithDetails(map[string]any{"max_bytes": f.config.MaxBytes})
	}

	return &Result{
		HTML:     string(body),
		FinalURL: current,
		Metrics: Metrics{
			Duration:    time.Since(start),
			HTMLBytes:   len(body),
			ContentType: contentType,
			HTTPStatus:  resp.StatusCode,
			FinalHost:   current.Hostname(),
		},
	}, nil
}

// fail maps a hop failure to its terminal classification. Deadline expiry
// anywhere in the operation surfaces as FETCH_TIMEOUT regardless of which
// call observed it first.
func (f *SafeFetcher) fail(ctx context.Context, start time.Time, err error) error {
	metrics.RecordFetch(time.Since(start), 0, false)

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.New(apperror.CodeFetchTimeout, "Request timed out.").WithCause(err)
	}
	return err
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
