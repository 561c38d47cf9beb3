package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	h "eventconnect/internal/delivery/http/helpers"
	"eventconnect/internal/domain"
)

// errorMapping is the response for one domain error.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string // empty means err.Error()
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{domain.ErrInvalidQRCode, http.StatusBadRequest, h.ErrCodeInvalidQRCode, "invalid QR code"},
	{domain.ErrInvalidInput, http.StatusBadRequest, h.ErrCodeBadRequest, ""},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid email or password"},
	{domain.ErrSessionInvalid, http.StatusUnauthorized, h.ErrCodeUnauthorized, "session expired or signed out"},
	{domain.ErrForbidden, http.StatusForbidden, h.ErrCodeForbidden, "forbidden"},
	{domain.ErrUserNotFound, http.StatusNotFound, h.ErrCodeNotFound, "user not found"},
	{domain.ErrNotFound, http.StatusNotFound, h.ErrCodeNotFound, "not found"},
	{domain.ErrOwnEvent, http.StatusConflict, h.ErrCodeOwnEvent, ""},
	{domain.ErrEventFull, http.StatusConflict, h.ErrCodeEventFull, ""},
	{domain.ErrEventClosed, http.StatusConflict, h.ErrCodeEventClosed, ""},
	{domain.ErrAlreadyRegistered, http.StatusConflict, h.ErrCodeAlreadyRegistered, ""},
	{domain.ErrContactExists, http.StatusConflict, h.ErrCodeContactExists, ""},
	{domain.ErrDuplicateEmail, http.StatusConflict, h.ErrCodeConflict, "email already registered"},
}

// writeServiceError maps err to an API error response. Unexpected errors are
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			h.WriteJSONError(w, m.status, m.code, msg)
			return
		}
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, h.InternalErrorMessage)
}

func writeUnauthorized(w http.ResponseWriter) {
	h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
}
