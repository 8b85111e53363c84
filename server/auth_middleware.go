package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/classregister/auth-server/auth"
	"github.com/classregister/auth-server/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyPrincipal stores the authenticated principal
const ContextKeyPrincipal ContextKey = "principal"

// PrincipalFromContext returns the principal injected by RequireAuth, or
// nil when the request never passed it.
func PrincipalFromContext(ctx context.Context) *auth.Principal {
	principal, _ := ctx.Value(ContextKeyPrincipal).(*auth.Principal)
	return principal
}

// bearerToken extracts the token from the Authorization header. An empty
// result means no token was supplied.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// RequireAuth validates the bearer token (presence, signature, embedded
// expiry, and session liveness for persisted users) and injects the
// principal into the request context. It is the entry of the guard chain;
// every later gate assumes it ran.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, err := s.auth.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole rejects with FORBIDDEN unless the principal's role is in the
// allowed set. Chain after RequireAuth.
func (s *Server) RequireRole(roles ...users.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if err := s.auth.Authorize(principal, roles, ""); err != nil {
				writeError(w, err)
				return
			}
			next(w, r)
		}
	}
}

// RequireOwnerOrAdmin rejects with FORBIDDEN unless the principal is
// elevated or its own identifier equals the {identifier} named by the
// request path. Chain after RequireAuth.
func (s *Server) RequireOwnerOrAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if err := s.auth.Authorize(principal, nil, r.PathValue("identifier")); err != nil {
				writeError(w, err)
				return
			}
			next(w, r)
		}
	}
}
