package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"remotemouse/internal/control"
	"remotemouse/internal/protocol"
	"remotemouse/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorPayload maps a control error to its HTTP status and body
func errorPayload(err error) (int, protocol.ErrorPayload) {
	var ce *session.CooldownError
	switch {
	case errors.As(err, &ce):
		remaining := ce.RemainingSeconds()
		return http.StatusTooManyRequests, protocol.ErrorPayload{
			Status:           "cooldown",
			Message:          ce.Error(),
			RemainingSeconds: &remaining,
		}
	case errors.Is(err, session.ErrBlocked):
		return http.StatusForbidden, protocol.ErrorPayload{Status: "error", Message: "This device is blocked."}
	case errors.Is(err, session.ErrAdmissionDenied):
		return http.StatusForbidden, protocol.ErrorPayload{Status: "error", Message: "Another device is already connected."}
	case errors.Is(err, control.ErrMalformedRequest):
		return http.StatusBadRequest, protocol.ErrorPayload{Status: "error", Message: err.Error()}
	default:
		return http.StatusInternalServerError, protocol.ErrorPayload{Status: "error", Message: "Internal error"}
	}
}

func writeControlError(w http.ResponseWriter, err error) {
	status, payload := errorPayload(err)
	writeJSON(w, status, payload)
}
