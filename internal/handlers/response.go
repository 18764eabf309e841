package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"nlvx-chat/internal/models"
	"nlvx-chat/internal/services"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

// classifyError maps a chat pipeline error to the status, code and message
// the client may see. Provider details never leave this function.
func classifyError(err error) (status int, code, message string, fields map[string]string) {
	var validationErr *services.ValidationError
	var configErr *services.ConfigurationError
	var rateErr *services.RateLimitError
	var upstreamErr *services.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", validationErr.Reason, validationErr.Fields
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, "CONFIGURATION_ERROR", "Server configuration error.", nil
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, "RATE_LIMITED", rateErr.Message, nil
	case errors.As(err, &upstreamErr):
		return http.StatusInternalServerError, "UPSTREAM_ERROR", "An internal error occurred.", nil
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred.", nil
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) string {
	status, code, message, fields := classifyError(err)
	if fields != nil {
		writeJSON(w, status, errorRespWithFields(code, message, fields, r))
	} else {
		writeJSON(w, status, errorResp(code, message, r))
	}
	return code
}

func attemptsOf(err error) int {
	var rateErr *services.RateLimitError
	if errors.As(err, &rateErr) {
		return rateErr.Attempts
	}
	var upstreamErr *services.UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Attempts
	}
	return 0
}
