package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classregister/auth-server/auth"
	"github.com/classregister/auth-server/users"
)

func TestNewSystemAdminRegistry(t *testing.T) {
	t.Run("builds principals with sequential slot ids", func(t *testing.T) {
		registry, err := auth.NewSystemAdminRegistry([]auth.AdminAccount{
			{Username: "admin", Password: "RootAdmin123"},
			{Username: "superadmin", Password: "SuperAdmin123"},
		})
		require.NoError(t, err)

		principal := registry.Lookup("superadmin")
		require.NotNil(t, principal)
		require.Equal(t, "system-admin-2", principal.ID)
		require.Equal(t, users.RoleSystemAdmin, principal.Role)
		require.True(t, principal.IsSystemAdmin)
		require.Nil(t, registry.Lookup("nobody"))
	})

	t.Run("rejects incomplete slots", func(t *testing.T) {
		_, err := auth.NewSystemAdminRegistry([]auth.AdminAccount{{Username: "admin"}})
		require.Error(t, err)
		_, err = auth.NewSystemAdminRegistry([]auth.AdminAccount{{Password: "RootAdmin123"}})
		require.Error(t, err)
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		_, err := auth.NewSystemAdminRegistry([]auth.AdminAccount{
			{Username: "admin", Password: "RootAdmin123"},
			{Username: "admin", Password: "OtherAdmin123"},
		})
		require.Error(t, err)
	})

	t.Run("empty registry is valid", func(t *testing.T) {
		registry, err := auth.NewSystemAdminRegistry(nil)
		require.NoError(t, err)
		require.Nil(t, registry.Lookup("admin"))
	})
}

func TestPrincipalFromUser(t *testing.T) {
	t.Run("rejects a student row missing its grade", func(t *testing.T) {
		course := "21103"
		_, err := auth.PrincipalFromUser(&users.User{
			Identifier:   "21103",
			Role:         users.RoleStudent,
			CourseNumber: &course,
		})
		require.Error(t, err)
	})

	t.Run("rejects a teacher row missing its teacher id", func(t *testing.T) {
		_, err := auth.PrincipalFromUser(&users.User{
			Identifier: "T001",
			Role:       users.RoleTeacher,
		})
		require.Error(t, err)
	})
}
