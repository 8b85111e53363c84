package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classregister/auth-server/internal/config"
)

func setBaseline(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "RootAdmin123")
	t.Setenv("ADMIN2_USERNAME", "")
	t.Setenv("ADMIN2_PASSWORD", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("SESSION_TTL_HOURS", "")
}

func TestValidate(t *testing.T) {
	t.Run("baseline configuration passes", func(t *testing.T) {
		setBaseline(t)
		require.NoError(t, config.Validate(config.New()))
	})

	t.Run("missing signing secret is fatal", func(t *testing.T) {
		setBaseline(t)
		t.Setenv("JWT_SECRET", "")
		require.Error(t, config.Validate(config.New()))
	})

	t.Run("admin slot without a password is fatal", func(t *testing.T) {
		setBaseline(t)
		t.Setenv("ADMIN_PASSWORD", "")
		t.Setenv("ADMIN2_USERNAME", "superadmin")
		t.Setenv("ADMIN2_PASSWORD", "")
		require.Error(t, config.Validate(config.New()))
	})

	t.Run("duplicate admin usernames are fatal", func(t *testing.T) {
		setBaseline(t)
		t.Setenv("ADMIN2_USERNAME", "admin")
		t.Setenv("ADMIN2_PASSWORD", "OtherAdmin123")
		require.Error(t, config.Validate(config.New()))
	})

	t.Run("bcrypt cost out of range is fatal", func(t *testing.T) {
		setBaseline(t)
		t.Setenv("BCRYPT_COST", "99")
		require.Error(t, config.Validate(config.New()))
	})
}

func TestAuthDefaults(t *testing.T) {
	setBaseline(t)
	cfg := config.New()

	require.Equal(t, 24*time.Hour, cfg.GetSessionTTL())

	admins := cfg.GetSystemAdmins()
	require.Len(t, admins, 1)
	require.Equal(t, "admin", admins[0].Username)
	require.Equal(t, "RootAdmin123", admins[0].Password)
}

func TestSecondAdminSlot(t *testing.T) {
	setBaseline(t)
	t.Setenv("ADMIN2_PASSWORD", "SuperAdmin123")

	admins := config.New().GetSystemAdmins()
	require.Len(t, admins, 2)
	require.Equal(t, "superadmin", admins[1].Username)
}

func TestEnvVars(t *testing.T) {
	t.Run("port is colon-prefixed", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		require.Equal(t, ":9000", config.New().GetPort())
		t.Setenv("PORT", ":9001")
		require.Equal(t, ":9001", config.New().GetPort())
		t.Setenv("PORT", "")
		require.Equal(t, ":8080", config.New().GetPort())
	})

	t.Run("env defaults to DEV", func(t *testing.T) {
		t.Setenv("ENV", "")
		require.Equal(t, "DEV", config.New().GetEnv())
	})
}
