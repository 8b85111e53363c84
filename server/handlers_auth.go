package server

import (
	"encoding/json"
	"net/http"

	"github.com/classregister/auth-server/auth"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// LoginHandler exchanges credentials for a signed bearer token.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identifier == "" || req.Password == "" {
			writeErrorCode(w, http.StatusBadRequest, codeBadRequest, "identifier and password are required")
			return
		}

		result, err := s.auth.Login(r.Context(), req.Identifier, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// LogoutHandler revokes the presented token's session. Not part of the
// protected chain: an already-expired token must still be able to log out.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			writeError(w, auth.ErrNoToken)
			return
		}
		if err := s.auth.Logout(r.Context(), tok); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

// MeHandler returns the authenticated principal.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, PrincipalFromContext(r.Context()))
	}
}

// ChangePasswordHandler rotates the caller's own password.
func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
			writeErrorCode(w, http.StatusBadRequest, codeBadRequest, "old_password and new_password are required")
			return
		}

		principal := PrincipalFromContext(r.Context())
		if err := s.auth.ChangePassword(r.Context(), principal, req.OldPassword, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
	}
}
