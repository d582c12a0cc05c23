package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/matzehuels/beerxml/pkg/errors"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, retryable bool) {
	writeJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: RequestID(r.Context()),
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// writeCodedError maps an error code to its HTTP status.
func writeCodedError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status, retryable := statusFor(code)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeError(w, r, status, string(code), errors.UserMessage(err), retryable)
}

func statusFor(code errors.Code) (status int, retryable bool) {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSource,
		errors.ErrCodeInvalidUnits, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest, false
	case errors.ErrCodeNoRecipe:
		return http.StatusNotFound, false
	case errors.ErrCodeMalformed:
		return http.StatusUnprocessableEntity, false
	case errors.ErrCodeSourceUnavailable:
		return http.StatusBadGateway, true
	case errors.ErrCodeBackendUnavailable:
		return http.StatusServiceUnavailable, true
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests, true
	}
	return http.StatusInternalServerError, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
