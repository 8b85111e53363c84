package users

import (
	"fmt"
	"time"

	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Role represents the access level of a principal.
type Role string

const (
	// Persisted roles, stored on user rows
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"

	// RoleSystemAdmin is held only by the fixed, environment-provisioned
	// administrators. It never appears on a persisted row.
	RoleSystemAdmin Role = "system_admin"
)

// IsPersisted reports whether the role may appear on a stored user record.
func (r Role) IsPersisted() bool {
	return r == RoleStudent || r == RoleTeacher || r == RoleAdmin
}

// IsElevated reports whether the role passes admin-only gates. Domain admins
// and system admins are privilege-equivalent for authorization.
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSystemAdmin
}

// User is a persisted credential record. Students and domain admins carry a
// course number and an average grade; teachers carry a teacher id and a
// subject and never a grade.
type User struct {
	ID           string    `json:"id,omitempty"`
	Identifier   string    `json:"identifier"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email,omitempty"`
	Role         Role      `json:"role"`
	CourseNumber *string   `json:"course_number,omitempty"`
	TeacherID    *string   `json:"teacher_id,omitempty"`
	Subject      *string   `json:"subject,omitempty"`
	AverageGrade *float64  `json:"average_grade,omitempty"`
	PasswordHash string    `json:"-"` // never serialized
	Active       bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
	CreatedBy    string    `json:"created_by,omitempty"`
	UpdatedBy    string    `json:"updated_by,omitempty"`
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// A cost outside bcrypt's supported range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}
