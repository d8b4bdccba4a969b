// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler writes failed workflow actions back to HTTP callers.
// Every failure kind is reported with a uniform 400 response carrying a
// human-readable message; status codes are not differentiated per kind.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// errorResponse is the uniform failure envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteHTTPError logs the error with contextual step markers and writes the
// uniform failure envelope.
func (h *ErrorHandler) WriteHTTPError(w http.ResponseWriter, err error, fields map[string]interface{}) {
	stdErr := Normalize(err)

	logFields := map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	h.logger.Error("request failed", logFields)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: stdErr.Message})
}
