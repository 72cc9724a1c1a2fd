package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"agency-report-service/internal/domain"
	"agency-report-service/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrCursorMismatch),
		errors.Is(err, domain.ErrMalformedCursor):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		msg = http.StatusText(status)
	} else {
		log.Warn("Request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}
