// Package httpjson writes the JSON bodies used by the project API.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/showmate/internal/app/system/apperr"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success is the body of most 2xx responses.
var Success = map[string]bool{"success": true}

// Write encodes payload with the given status.
func Write(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		// avoid writing partial JSON
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, ErrorResponse{Error: msg})
}

// Fail classifies err and writes the matching response. Server-side
// failures are logged with the operation name; client errors are not.
func Fail(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error(op+" failed", zap.Error(err))
	}
	Error(w, status, apperr.Message(err))
}

// Decode reads a JSON body into dst. A malformed body is a BadRequest; one
// cut off by http.MaxBytesReader is TooLarge.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.BadRequest.New("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return apperr.TooLarge.New("Request body too large")
		}
		return apperr.BadRequest.New("Invalid JSON body")
	}
	return nil
}
