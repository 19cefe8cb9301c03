package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/service"
)

const (
	msgSessionExpired = "session expired, please log in again"
	msgRateLimited    = "rate limit reached, wait 60 seconds before trying again"
	msgInternal       = "internal server error"
	retryAfterSeconds = "60"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps service errors to an HTTP status, an error code and the message shown to clients.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", msgSessionExpired
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden", err.Error()
	case errors.Is(err, service.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, "not_found", notFoundMessage(err)
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation", err.Error()
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited", msgRateLimited
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway, "upstream", "upstream provider unavailable"
	}
	return http.StatusInternalServerError, "internal", msgInternal
}

func notFoundMessage(err error) string {
	if errors.Is(err, service.ErrNotFound) {
		return err.Error()
	}
	return "not found"
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return validationErr("invalid JSON body")
	}
	return nil
}

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", service.ErrValidation, msg)
}
