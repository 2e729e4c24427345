package http

import (
	"net/http"
	"strings"

	"news-thread/internal/apperror"
	"news-thread/internal/usecase/generate"
	"news-thread/internal/utils/text"
)

const (
	maxPastedTextChars = 150_000
	maxAngleChars      = 500

	defaultTone   = "professional"
	defaultLength = "8"
)

var toneOptions = map[string]bool{
	"professional": true,
	"casual":       true,
	"urgent":       true,
	"neutral":      true,
}

var lengthOptions = map[string]bool{
	"7": true, "8": true, "9": true, "10": true,
}

// threadLanguageOptions are the languages the writer can be asked to
// produce the thread in. Empty means English with no explicit
// instruction.
var threadLanguageOptions = map[string]bool{
	"English":    true,
	"Spanish":    true,
	"French":     true,
	"German":     true,
	"Portuguese": true,
	"Italian":    true,
}

func validationError(message string) error {
	return apperror.New(apperror.CodeValidationError, message)
}

func methodNotAllowed() error {
	return apperror.NewWithStatus(apperror.CodeValidationError, "Method not allowed.", http.StatusMethodNotAllowed)
}

// validateGenerateRequest normalizes a decoded request body into a
// usecase request. Non-empty pasted text wins over a URL when both are
// sent, matching the input precedence clients rely on. Enum fields get
// their documented defaults when omitted.
func validateGenerateRequest(body generateRequest) (generate.Request, error) {
	req := generate.Request{
		Tone:              body.Tone,
		Length:            body.Length,
		Angle:             strings.TrimSpace(body.Angle),
		Language:          body.ThreadLanguage,
		IncludeSourceLink: body.IncludeSourceLink,
	}

	pasted := strings.TrimSpace(body.PastedText)
	switch {
	case pasted != "":
		if text.CountRunes(body.PastedText) > maxPastedTextChars {
			return generate.Request{}, validationError("Pasted text is too long.")
		}
		req.PastedText = pasted
	case strings.TrimSpace(body.URL) != "":
		req.URL = strings.TrimSpace(body.URL)
	default:
		return generate.Request{}, validationError("Provide url or pastedText.")
	}

	if req.Tone == "" {
		req.Tone = defaultTone
	}
	if !toneOptions[req.Tone] {
		return generate.Request{}, validationError("Invalid tone.")
	}

	if req.Length == "" {
		req.Length = defaultLength
	}
	if !lengthOptions[req.Length] {
		return generate.Request{}, validationError("Invalid length.")
	}

	if text.CountRunes(req.Angle) > maxAngleChars {
		return generate.Request{}, validationError("Angle is too long.")
	}

	if req.Language != "" && !threadLanguageOptions[req.Language] {
		return generate.Request{}, validationError("Invalid thread language.")
	}

	return req, nil
}
