// Package respond writes JSON responses and renders classified errors
// in the API's error envelope:
//
//	{"error": {"code": "...", "message": "...", "request_id": "..."}}
//
// Only the safe message of a classified error ever reaches a client;
// causes stay in the logs.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"news-thread/internal/apperror"
	"news-thread/internal/handler/http/requestid"
)

// ErrorBody is the envelope for every non-2xx response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the classified code and safe message.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// Error classifies err and writes the error envelope. The request ID is
// taken from the request context so clients can quote it in reports.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.Classify(err)
	JSON(w, appErr.Status, ErrorBody{
		Error: ErrorDetail{
			Code:      string(appErr.Code),
			Message:   appErr.SafeMessage,
			RequestID: requestid.FromContext(r.Context()),
			Details:   appErr.Details,
		},
	})
}
