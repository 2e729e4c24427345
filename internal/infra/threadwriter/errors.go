package threadwriter

import (
	"errors"
	"log/slog"
	"net/http"

	"news-thread/internal/apperror"
	"news-thread/internal/resilience/retry"
	"news-thread/internal/utils/text"
)

// errBadResponse marks completions that could not be parsed into the
// expected JSON shape. It is not retried: a model that just produced
// malformed output will likely do so again with the same prompt.
var errBadResponse = errors.New("malformed model response")

// classifyLLMError maps a provider failure onto the closed error set.
// Already-classified errors pass through unchanged.
func classifyLLMError(err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, errBadResponse) {
		return apperror.New(apperror.CodeLLMBadResponse,
			"The language model returned an unusable response.").WithCause(err)
	}

	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		return apperror.New(apperror.CodeLLMRateLimit,
			"The language model is receiving too many requests. Try again shortly.").WithCause(err)
	}

	return apperror.New(apperror.CodeLLMError,
		"Thread generation failed. Try again later.").WithCause(err)
}

// clampInput bounds the article text sent to a model, in runes.
func clampInput(s string, maxChars int) string {
	if text.CountRunes(s) <= maxChars {
		return s
	}
	clamped := text.Clamp(s, maxChars)
	slog.Warn("article text truncated for model input",
		slog.Int("original_chars", text.CountRunes(s)),
		slog.Int("clamped_chars", maxChars))
	return clamped
}
