package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/classregister/auth-server/users"
)

type createUserRequest struct {
	users.User
	Password string `json:"password"`
}

// ListUsersHandler returns active users matching the query filters.
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := users.Filter{
			Role:    users.Role(q.Get("role")),
			Search:  q.Get("search"),
			Subject: q.Get("subject"),
		}
		if v := q.Get("min_grade"); v != "" {
			grade, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeErrorCode(w, http.StatusBadRequest, codeBadRequest, "min_grade must be a number")
				return
			}
			filter.MinGrade = &grade
		}
		filter.Limit, _ = strconv.Atoi(q.Get("limit"))
		filter.Offset, _ = strconv.Atoi(q.Get("offset"))

		list, err := s.users.List(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"count": len(list), "users": list})
	}
}

// UserStatsHandler returns per-role counts and average grades.
func (s *Server) UserStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.users.Stats(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// GradeDistributionHandler returns active students bucketed by grade band.
func (s *Server) GradeDistributionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bands, err := s.users.GradeDistribution(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bands)
	}
}

// GetUserHandler returns one active user by identifier.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.users.GetByIdentifier(r.Context(), r.PathValue("identifier"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// CreateUserHandler inserts a new user record with a freshly hashed
// password. Admin-only; the route carries the role gate.
func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorCode(w, http.StatusBadRequest, codeBadRequest, "malformed request body")
			return
		}

		user := req.User
		if err := user.Validate(); err != nil {
			writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}

		hash, err := users.HashPassword(req.Password, s.config.GetBcryptCost())
		if err != nil {
			writeError(w, err)
			return
		}
		user.PasswordHash = hash
		if principal := PrincipalFromContext(r.Context()); principal != nil {
			user.CreatedBy = principal.Identifier
		}

		if err := s.users.Create(r.Context(), &user); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, &user)
	}
}

// UpdateUserHandler applies a partial update to the business fields of a
// record. The identifier, role, and password are not updatable here.
func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd users.Update
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeErrorCode(w, http.StatusBadRequest, codeBadRequest, "malformed request body")
			return
		}
		if upd.AverageGrade != nil {
			if err := users.ValidateAverageGrade(*upd.AverageGrade); err != nil {
				writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
				return
			}
		}
		if upd.Email != nil && *upd.Email != "" {
			if err := users.ValidateEmail(*upd.Email); err != nil {
				writeErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
				return
			}
		}

		if principal := PrincipalFromContext(r.Context()); principal != nil {
			upd.UpdatedBy = principal.Identifier
		}

		user, err := s.users.Update(r.Context(), r.PathValue("identifier"), upd)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// DeleteUserHandler soft-deletes a record. Admin-only.
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deletedBy := ""
		if principal := PrincipalFromContext(r.Context()); principal != nil {
			deletedBy = principal.Identifier
		}
		if err := s.users.Delete(r.Context(), r.PathValue("identifier"), deletedBy); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "user removed"})
	}
}
