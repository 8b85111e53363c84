package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/classregister/auth-server/auth"
	"github.com/classregister/auth-server/users"
)

// Non-auth error codes used by the record endpoints.
const (
	codeNotFound   = "NOT_FOUND"
	codeConflict   = "CONFLICT"
	codeBadRequest = "BAD_REQUEST"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// envelope is the wire format of every response:
// {"success": true, "data": ...} or {"success": false, "error": {...}}.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}

// writeError maps service and store errors onto the JSON envelope. Store
// failures are logged with their cause server-side and surfaced as a
// generic internal error, never the underlying detail.
func writeError(w http.ResponseWriter, err error) {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		if authErr.Code == auth.CodeStoreError {
			log.Error().Err(authErr.Unwrap()).Msg("store error")
		}
		writeErrorCode(w, statusForCode(authErr.Code), string(authErr.Code), authErr.Message)
		return
	}

	switch {
	case errors.Is(err, users.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, codeNotFound, "user not found")
	case errors.Is(err, users.ErrConflict):
		writeErrorCode(w, http.StatusConflict, codeConflict, "a user with this identifier or email already exists")
	default:
		log.Error().Err(err).Msg("internal error")
		writeErrorCode(w, http.StatusInternalServerError, string(auth.CodeStoreError), "internal storage error")
	}
}

func statusForCode(code auth.Code) int {
	switch code {
	case auth.CodeForbidden:
		return http.StatusForbidden
	case auth.CodeValidation:
		return http.StatusBadRequest
	case auth.CodeStoreError:
		return http.StatusInternalServerError
	default:
		// NO_TOKEN, INVALID_TOKEN, EXPIRED_OR_REVOKED, UNAUTHORIZED,
		// BAD_CREDENTIALS
		return http.StatusUnauthorized
	}
}
