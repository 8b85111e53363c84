package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/classregister/auth-server/auth"
	"github.com/classregister/auth-server/users"
)

func TestVerifierAdminDigest(t *testing.T) {
	var v auth.Verifier
	stored := auth.DigestPassword("RootAdmin123")

	t.Run("matching password", func(t *testing.T) {
		ok, err := v.Verify("RootAdmin123", stored, auth.SchemeAdminDigest)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		ok, err := v.Verify("RootAdmin124", stored, auth.SchemeAdminDigest)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("malformed digest is an error", func(t *testing.T) {
		_, err := v.Verify("RootAdmin123", "zz"+stored[2:], auth.SchemeAdminDigest)
		require.Error(t, err)
		_, err = v.Verify("RootAdmin123", stored[:10], auth.SchemeAdminDigest)
		require.Error(t, err)
	})
}

func TestVerifierUserAdaptive(t *testing.T) {
	var v auth.Verifier
	stored, err := users.HashPassword("student21103", 4)
	require.NoError(t, err)

	t.Run("matching password", func(t *testing.T) {
		ok, err := v.Verify("student21103", stored, auth.SchemeUserAdaptive)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("wrong password is a mismatch, not an error", func(t *testing.T) {
		ok, err := v.Verify("student21104", stored, auth.SchemeUserAdaptive)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("malformed hash is an error", func(t *testing.T) {
		_, err := v.Verify("student21103", "plaintext-left-in-column", auth.SchemeUserAdaptive)
		require.Error(t, err)
	})
}

func TestVerifierUnknownScheme(t *testing.T) {
	var v auth.Verifier
	_, err := v.Verify("x", "y", auth.Scheme("plain"))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "unknown verification scheme"))
}

func TestDigestPassword(t *testing.T) {
	// Stable well-known vector
	require.Equal(t,
		"240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9",
		auth.DigestPassword("admin123"))
	require.Len(t, auth.DigestPassword(""), 64)
}
