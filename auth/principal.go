package auth

import (
	"github.com/pkg/errors"

	"github.com/classregister/auth-server/token"
	"github.com/classregister/auth-server/users"
)

// Principal is the authenticated identity attached to a request. It is a
// transient view materialized from either the system-admin registry or a
// persisted user record. Exactly one attribute set is populated per role:
// students and domain admins carry a course number and a grade, teachers a
// teacher id and a subject, system admins neither.
type Principal struct {
	ID            string     `json:"id"`
	Identifier    string     `json:"identifier"`
	Role          users.Role `json:"role"`
	IsSystemAdmin bool       `json:"is_system_admin,omitempty"`
	CourseNumber  *string    `json:"course_number,omitempty"`
	TeacherID     *string    `json:"teacher_id,omitempty"`
	Subject       *string    `json:"subject,omitempty"`
	AverageGrade  *float64   `json:"average_grade,omitempty"`
}

// PrincipalFromUser materializes a principal from a stored record,
// enforcing the per-role attribute invariant. A record violating it is data
// corruption, reported as an internal failure rather than an auth failure.
func PrincipalFromUser(u *users.User) (*Principal, error) {
	switch u.Role {
	case users.RoleStudent, users.RoleAdmin:
		if u.CourseNumber == nil || u.AverageGrade == nil {
			return nil, errors.Errorf("user %s: role %s requires course number and average grade", u.Identifier, u.Role)
		}
	case users.RoleTeacher:
		if u.TeacherID == nil {
			return nil, errors.Errorf("user %s: role teacher requires teacher id", u.Identifier)
		}
		if u.AverageGrade != nil {
			return nil, errors.Errorf("user %s: teachers never carry a grade", u.Identifier)
		}
	default:
		return nil, errors.Errorf("user %s: unexpected persisted role %q", u.Identifier, u.Role)
	}

	return &Principal{
		ID:           u.ID,
		Identifier:   u.Identifier,
		Role:         u.Role,
		CourseNumber: u.CourseNumber,
		TeacherID:    u.TeacherID,
		Subject:      u.Subject,
		AverageGrade: u.AverageGrade,
	}, nil
}

// PrincipalFromClaims rebuilds the principal verified token claims carry.
func PrincipalFromClaims(c *token.Claims) *Principal {
	return &Principal{
		ID:            c.Subject,
		Identifier:    c.Identifier,
		Role:          c.Role,
		IsSystemAdmin: c.SystemAdmin,
		CourseNumber:  c.CourseNumber,
		TeacherID:     c.TeacherID,
		Subject:       c.TeacherSubject,
		AverageGrade:  c.AverageGrade,
	}
}

// Claims projects the principal into token claims. The projection is
// flattened and role-appropriate; it never includes credential material.
func (p *Principal) Claims() token.Claims {
	return token.Claims{
		Identifier:     p.Identifier,
		Role:           p.Role,
		SystemAdmin:    p.IsSystemAdmin,
		CourseNumber:   p.CourseNumber,
		TeacherID:      p.TeacherID,
		TeacherSubject: p.Subject,
		AverageGrade:   p.AverageGrade,
	}
}

// Elevated reports whether the principal passes admin-only gates.
func (p *Principal) Elevated() bool {
	return p.Role.IsElevated()
}

// CanActOn reports whether the principal may mutate the resource named by
// identifier: elevated principals always, others only their own record.
func (p *Principal) CanActOn(identifier string) bool {
	return p.Elevated() || p.Identifier == identifier
}
