package auth

import "fmt"

// Code is a stable machine-readable authentication/authorization failure
// code, surfaced to callers alongside a human-readable message.
type Code string

const (
	CodeNoToken          Code = "NO_TOKEN"
	CodeInvalidToken     Code = "INVALID_TOKEN"
	CodeExpiredOrRevoked Code = "EXPIRED_OR_REVOKED"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeBadCredentials   Code = "BAD_CREDENTIALS"
	CodeStoreError       Code = "STORE_ERROR"
	CodeValidation       Code = "VALIDATION_ERROR"
)

// Error is a coded authentication or authorization failure. The code is
// what callers branch on; the message is for humans.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on code so errors.Is works against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNoToken = &Error{Code: CodeNoToken, Message: "access token is missing"}
	// ErrInvalidToken covers signature and format failures without
	// distinguishing them, to avoid oracle leakage.
	ErrInvalidToken     = &Error{Code: CodeInvalidToken, Message: "invalid or expired token"}
	ErrExpiredOrRevoked = &Error{Code: CodeExpiredOrRevoked, Message: "session has expired or is invalid"}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized, Message: "not authenticated"}
	ErrForbidden        = &Error{Code: CodeForbidden, Message: "insufficient permissions for this resource"}
	// ErrBadCredentials deliberately does not distinguish an unknown
	// identifier from a wrong password.
	ErrBadCredentials = &Error{Code: CodeBadCredentials, Message: "invalid identifier or password"}
)

// StoreError wraps a credential or session store failure. The cause is for
// server-side logs; callers only ever see the generic message.
func StoreError(cause error) *Error {
	return &Error{Code: CodeStoreError, Message: "internal storage error", cause: cause}
}

// ValidationError reports a rejected input with its reason.
func ValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// Forbidden reports a FORBIDDEN failure with a specific message.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}
