package users_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classregister/auth-server/internal/utils"
	"github.com/classregister/auth-server/users"
)

func TestValidateCourseNumber(t *testing.T) {
	valid := []string{"21101", "21103", "21299", "21500"}
	for _, cn := range valid {
		require.NoError(t, users.ValidateCourseNumber(cn), cn)
	}

	invalid := []string{"", "2110", "211011", "21601", "21011", "22101", "21a01", " 21101"}
	for _, cn := range invalid {
		require.Error(t, users.ValidateCourseNumber(cn), cn)
	}
}

func TestValidateAverageGrade(t *testing.T) {
	require.NoError(t, users.ValidateAverageGrade(2.00))
	require.NoError(t, users.ValidateAverageGrade(6.00))
	require.NoError(t, users.ValidateAverageGrade(4.75))
	require.Error(t, users.ValidateAverageGrade(1.99))
	require.Error(t, users.ValidateAverageGrade(6.01))
	require.Error(t, users.ValidateAverageGrade(0))
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, users.ValidateEmail("ivan@school.bg"))
	require.Error(t, users.ValidateEmail("not-an-email"))
	require.Error(t, users.ValidateEmail("a b@school.bg"))
	require.Error(t, users.ValidateEmail("ivan@school"))
}

func TestUserValidate(t *testing.T) {
	student := func() users.User {
		return users.User{
			Identifier:   "21103",
			FirstName:    "Georgi",
			LastName:     "Dimitrov",
			Role:         users.RoleStudent,
			CourseNumber: utils.Ptr("21103"),
			AverageGrade: utils.Ptr(4.80),
		}
	}
	teacher := func() users.User {
		return users.User{
			Identifier: "T001",
			FirstName:  "Maria",
			LastName:   "Petrova",
			Role:       users.RoleTeacher,
			TeacherID:  utils.Ptr("T001"),
			Subject:    utils.Ptr("Mathematics"),
		}
	}

	t.Run("valid records", func(t *testing.T) {
		s := student()
		require.NoError(t, s.Validate())

		tc := teacher()
		require.NoError(t, tc.Validate())

		a := student()
		a.Role = users.RoleAdmin
		require.NoError(t, a.Validate())
	})

	t.Run("student without grade", func(t *testing.T) {
		s := student()
		s.AverageGrade = nil
		require.Error(t, s.Validate())
	})

	t.Run("student with teacher attributes", func(t *testing.T) {
		s := student()
		s.TeacherID = utils.Ptr("T009")
		require.Error(t, s.Validate())
	})

	t.Run("teacher with a grade", func(t *testing.T) {
		tc := teacher()
		tc.AverageGrade = utils.Ptr(5.00)
		require.Error(t, tc.Validate())
	})

	t.Run("teacher without teacher id", func(t *testing.T) {
		tc := teacher()
		tc.TeacherID = nil
		require.Error(t, tc.Validate())
	})

	t.Run("system admin role is not persistable", func(t *testing.T) {
		s := student()
		s.Role = users.RoleSystemAdmin
		require.Error(t, s.Validate())
	})

	t.Run("missing names", func(t *testing.T) {
		s := student()
		s.FirstName = " "
		require.Error(t, s.Validate())
	})

	t.Run("bad email", func(t *testing.T) {
		s := student()
		s.Email = "nope"
		require.Error(t, s.Validate())
	})
}

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, users.ValidatePasswordStrength("Password1"))
	require.Error(t, users.ValidatePasswordStrength("short1A"))
	require.Error(t, users.ValidatePasswordStrength("alllowercase1"))
	require.Error(t, users.ValidatePasswordStrength("ALLUPPERCASE1"))
	require.Error(t, users.ValidatePasswordStrength("NoDigitsHere"))
}
