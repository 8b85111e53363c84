package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no active user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when a create would violate the identifier or
	// email uniqueness guarantee.
	ErrConflict = errors.New("user already exists")
)

// Update carries the mutable business fields of a user record. Nil fields
// are left unchanged. The identifier, role, and password hash are never
// updated through this path.
type Update struct {
	FirstName    *string  `json:"first_name,omitempty"`
	LastName     *string  `json:"last_name,omitempty"`
	Email        *string  `json:"email,omitempty"`
	Subject      *string  `json:"subject,omitempty"`
	AverageGrade *float64 `json:"average_grade,omitempty"`
	UpdatedBy    string   `json:"-"`
}

// Filter narrows List results.
type Filter struct {
	Role     Role
	Search   string // matches first name, last name or identifier
	MinGrade *float64
	Subject  string
	Limit    int
	Offset   int
}

// RoleStats summarizes the active users holding one role.
type RoleStats struct {
	Role         Role     `json:"role"`
	Count        int      `json:"count"`
	AverageGrade *float64 `json:"average_grade,omitempty"`
}

// GradeBand is one bucket of the student grade distribution report.
type GradeBand struct {
	Range string `json:"grade_range"`
	Count int    `json:"student_count"`
}

// gradeBands, highest first, per the national grading scale.
var gradeBands = []struct {
	label string
	min   float64
}{
	{"excellent (5.50-6.00)", 5.50},
	{"very good (4.50-5.49)", 4.50},
	{"good (3.50-4.49)", 3.50},
	{"average (3.00-3.49)", 3.00},
	{"poor (2.00-2.99)", MinAverageGrade},
}

// GradeBandLabel returns the scale band a grade falls into.
func GradeBandLabel(grade float64) string {
	for _, b := range gradeBands {
		if grade >= b.min {
			return b.label
		}
	}
	return gradeBands[len(gradeBands)-1].label
}

// DistributeGrades buckets student grades into the scale bands, highest
// band first, omitting empty bands. Both store implementations share this
// so the report labels stay in one place.
func DistributeGrades(grades []float64) []GradeBand {
	counts := make(map[string]int)
	for _, g := range grades {
		counts[GradeBandLabel(g)]++
	}

	out := make([]GradeBand, 0, len(gradeBands))
	for _, b := range gradeBands {
		if counts[b.label] > 0 {
			out = append(out, GradeBand{Range: b.label, Count: counts[b.label]})
		}
	}
	return out
}

// Repo is the persisted credential store. Soft-deleted rows are invisible
// to every method. GetByIdentifier matches a user on either its course
// number or its teacher id; callers do not know in advance which attribute
// the supplied identifier denotes.
type Repo interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, identifier string, upd Update) (*User, error)
	UpdatePassword(ctx context.Context, identifier, newHash string) error
	Delete(ctx context.Context, identifier, deletedBy string) error
	List(ctx context.Context, filter Filter) ([]*User, error)
	Stats(ctx context.Context) ([]RoleStats, error)
	GradeDistribution(ctx context.Context) ([]GradeBand, error)
}
