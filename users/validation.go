package users

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Course numbers are 21XYZ where X is the class group (1-5) and YZ the
	// number within the group.
	courseNumberRegexp = regexp.MustCompile(`^21[1-5]\d{2}$`)
	emailRegexp        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

const (
	MinAverageGrade = 2.00
	MaxAverageGrade = 6.00
)

// ValidateCourseNumber checks the 21XYZ course number format.
func ValidateCourseNumber(courseNumber string) error {
	if !courseNumberRegexp.MatchString(courseNumber) {
		return fmt.Errorf("invalid course number %q: expected format 21XYZ with X in 1-5", courseNumber)
	}
	return nil
}

// ValidateAverageGrade checks that a grade is within the grading scale.
func ValidateAverageGrade(grade float64) error {
	if grade < MinAverageGrade || grade > MaxAverageGrade {
		return fmt.Errorf("average grade must be between %.2f and %.2f", MinAverageGrade, MaxAverageGrade)
	}
	return nil
}

// ValidateEmail checks the basic shape of an email address.
func ValidateEmail(email string) error {
	if !emailRegexp.MatchString(email) {
		return fmt.Errorf("invalid email format: %q", email)
	}
	return nil
}

// Validate checks a user record for storage: role, identifier, and the
// per-role attribute set. Students and domain admins must carry a course
// number and a grade; teachers must carry a teacher id and never a grade.
func (u *User) Validate() error {
	var problems []string

	if strings.TrimSpace(u.Identifier) == "" {
		problems = append(problems, "identifier is required")
	}
	if strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.LastName) == "" {
		problems = append(problems, "first and last name are required")
	}
	if !u.Role.IsPersisted() {
		problems = append(problems, fmt.Sprintf("invalid role %q: expected student, teacher or admin", u.Role))
	}

	switch u.Role {
	case RoleStudent, RoleAdmin:
		if u.CourseNumber == nil {
			problems = append(problems, "course number is required for students and admins")
		} else if err := ValidateCourseNumber(*u.CourseNumber); err != nil {
			problems = append(problems, err.Error())
		}
		if u.AverageGrade == nil {
			problems = append(problems, "average grade is required for students and admins")
		} else if err := ValidateAverageGrade(*u.AverageGrade); err != nil {
			problems = append(problems, err.Error())
		}
		if u.TeacherID != nil {
			problems = append(problems, "teacher id must not be set for students and admins")
		}
	case RoleTeacher:
		if u.TeacherID == nil || strings.TrimSpace(*u.TeacherID) == "" {
			problems = append(problems, "teacher id is required for teachers")
		}
		if u.CourseNumber != nil {
			problems = append(problems, "course number must not be set for teachers")
		}
		if u.AverageGrade != nil {
			problems = append(problems, "average grade must not be set for teachers")
		}
	}

	if u.Email != "" {
		if err := ValidateEmail(u.Email); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid user record: %s", strings.Join(problems, "; "))
	}
	return nil
}
