// Package apperror defines the closed error taxonomy shared by the
// extraction pipeline, abuse control, and the HTTP boundary.
//
// Every failure raised inside the pipeline carries a stable Code, a safe
// user-facing message, and an HTTP status from the moment it is created.
// Nothing is downgraded to a generic error except truly unrecognized
// failures at the outermost boundary (see Classify).
package apperror

import "net/http"

// Code identifies a failure category. The set is closed: handlers and
// telemetry match exhaustively on these values.
type Code string

const (
	// CodeInvalidURL indicates the candidate URL could not be parsed or
	// has no hostname.
	CodeInvalidURL Code = "INVALID_URL"

	// CodeDisallowedURL indicates a non-http(s) scheme or a blocked
	// hostname, including redirect targets.
	CodeDisallowedURL Code = "DISALLOWED_URL"

	// CodeDNSBlocked indicates the hostname resolved to zero addresses
	// across both address families.
	CodeDNSBlocked Code = "DNS_BLOCKED"

	// CodePrivateIPBlocked indicates a resolved address is private or
	// link-local (IPv4 or IPv6).
	CodePrivateIPBlocked Code = "PRIVATE_IP_BLOCKED"

	// CodeFetchTimeout indicates the overall fetch operation exceeded its
	// wall-clock budget.
	CodeFetchTimeout Code = "FETCH_TIMEOUT"

	// CodeFetchTooLarge indicates the streamed response body exceeded the
	// byte budget.
	CodeFetchTooLarge Code = "FETCH_TOO_LARGE"

	// CodeFetchNonHTML indicates the response content-type is not HTML.
	CodeFetchNonHTML Code = "FETCH_NON_HTML"

	// CodeFetchHTTPError indicates a non-2xx upstream status or a
	// transport-level failure.
	CodeFetchHTTPError Code = "FETCH_HTTP_ERROR"

	// CodeTooManyRedirects indicates the redirect chain exceeded the
	// configured maximum.
	CodeTooManyRedirects Code = "TOO_MANY_REDIRECTS"

	// CodeReadabilityEmpty indicates no extractable article body was found.
	CodeReadabilityEmpty Code = "READABILITY_EMPTY"

	// CodeExtractTooShort indicates the extracted body text is shorter
	// than the configured minimum.
	CodeExtractTooShort Code = "EXTRACT_TOO_SHORT"

	// CodeRateLimit indicates the hourly or daily request quota for a
	// client IP is exhausted.
	CodeRateLimit Code = "RATE_LIMIT"

	// CodeCooldown indicates a failure-triggered cooldown is active for a
	// client IP.
	CodeCooldown Code = "COOLDOWN"

	// CodeValidationError indicates the request shape itself is invalid
	// (missing url/pastedText, bad enum value). Validation failures never
	// feed the abuse-control failure counter.
	CodeValidationError Code = "VALIDATION_ERROR"

	// CodeLLMMissingKey indicates the language-model API key is not
	// configured.
	CodeLLMMissingKey Code = "LLM_MISSING_KEY"

	// CodeLLMRateLimit indicates the language-model provider rejected the
	// request for quota reasons.
	CodeLLMRateLimit Code = "LLM_RATE_LIMIT"

	// CodeLLMBadResponse indicates the language-model reply could not be
	// parsed into the expected shape.
	CodeLLMBadResponse Code = "LLM_BAD_RESPONSE"

	// CodeLLMError indicates any other language-model request failure.
	CodeLLMError Code = "LLM_ERROR"

	// CodeServerError is the fallback for unclassified internal failures.
	CodeServerError Code = "SERVER_ERROR"
)

// statusByCode maps each code to its fixed HTTP status. FETCH_HTTP_ERROR is
// the one code with a variable status (400 or 502 depending on the upstream
// status); this table holds its default.
var statusByCode = map[Code]int{
	CodeInvalidURL:       http.StatusBadRequest,
	CodeDisallowedURL:    http.StatusBadRequest,
	CodeDNSBlocked:       http.StatusBadRequest,
	CodePrivateIPBlocked: http.StatusBadRequest,
	CodeFetchTimeout:     http.StatusRequestTimeout,
	CodeFetchTooLarge:    http.StatusRequestEntityTooLarge,
	CodeFetchNonHTML:     http.StatusBadRequest,
	CodeFetchHTTPError:   http.StatusBadRequest,
	CodeTooManyRedirects: http.StatusBadRequest,
	CodeReadabilityEmpty: http.StatusUnprocessableEntity,
	CodeExtractTooShort:  http.StatusUnprocessableEntity,
	CodeRateLimit:        http.StatusTooManyRequests,
	CodeCooldown:         http.StatusTooManyRequests,
	CodeValidationError:  http.StatusBadRequest,
	CodeLLMMissingKey:    http.StatusInternalServerError,
	CodeLLMRateLimit:     http.StatusTooManyRequests,
	CodeLLMBadResponse:   http.StatusBadGateway,
	CodeLLMError:         http.StatusBadGateway,
	CodeServerError:      http.StatusInternalServerError,
}

// StatusFor returns the HTTP status associated with a code. Unknown codes
// map to 500.
func StatusFor(code Code) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
