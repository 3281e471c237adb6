package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/taxava/internal/auth"
	"github.com/mmynk/taxava/internal/catalog"
	"github.com/mmynk/taxava/internal/middleware"
	"github.com/mmynk/taxava/internal/overlay"
	"github.com/mmynk/taxava/internal/service"
)

// Error codes returned in ErrorBody.Code.
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailExists        = "EMAIL_EXISTS"
	ErrCodeDanglingReference  = "DANGLING_REFERENCE"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Warn("Failed to write response", "error", err)
		}
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, body ErrorBody) {
	respondJSON(w, statusCode, ErrorResponse{Error: body})
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// writeError maps err to a status code and error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapError(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "request_id", middleware.GetRequestID(r.Context()), "error", err)
	}
	respondError(w, status, body)
}

func mapError(err error) (int, ErrorBody) {
	var (
		validation *service.ValidationError
		dangling   *catalog.DanglingReferenceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorBody{
			Code:    ErrCodeInvalidInput,
			Message: validation.Error(),
			Details: map[string]any{"field": validation.Field},
		}
	case errors.As(err, &dangling):
		return http.StatusUnprocessableEntity, ErrorBody{
			Code:    ErrCodeDanglingReference,
			Message: dangling.Error(),
			Details: map[string]any{"field": dangling.Field, "id": dangling.ID},
		}
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Code: ErrCodeNotFound, Message: "not found or not accessible"}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorBody{Code: ErrCodeInvalidCredentials, Message: "invalid credentials, please try again"}
	case middleware.IsAuthError(err):
		return http.StatusUnauthorized, ErrorBody{Code: ErrCodeUnauthorized, Message: "please log in again"}
	case errors.Is(err, auth.ErrEmailExists), errors.Is(err, catalog.ErrEmailTaken):
		return http.StatusConflict, ErrorBody{Code: ErrCodeEmailExists, Message: "an account with this email already exists"}
	case errors.Is(err, overlay.ErrConflict):
		return http.StatusConflict, ErrorBody{Code: ErrCodeConflict, Message: "the data changed concurrently, please retry"}
	case errors.Is(err, middleware.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorBody{Code: ErrCodeRateLimited, Message: "rate limit exceeded, please try again later"}
	case errors.Is(err, auth.ErrEmptyPassword):
		return http.StatusBadRequest, ErrorBody{Code: ErrCodeInvalidInput, Message: err.Error()}
	}
	return http.StatusInternalServerError, ErrorBody{Code: ErrCodeInternalError, Message: "an internal error occurred"}
}

func badRequest(w http.ResponseWriter, message string) {
	respondError(w, http.StatusBadRequest, ErrorBody{Code: ErrCodeInvalidInput, Message: message})
}
