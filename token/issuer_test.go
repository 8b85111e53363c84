package token_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classregister/auth-server/internal/utils"
	"github.com/classregister/auth-server/token"
	"github.com/classregister/auth-server/users"
)

const secretStr = "1234"

func newIssuer(now *time.Time, ttl time.Duration) *token.Issuer {
	return token.NewIssuer(token.NewHMACSigner(secretStr), ttl,
		token.WithNowTime(func() time.Time { return *now }))
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 9, 16, 8, 0, 0, 0, time.UTC)
	issuer := newIssuer(&now, time.Hour)

	signed, expiresAt, err := issuer.Issue("user-1", token.Claims{
		Identifier:   "21103",
		Role:         users.RoleStudent,
		CourseNumber: utils.Ptr("21103"),
		AverageGrade: utils.Ptr(4.80),
	})
	require.NoError(t, err)
	require.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "21103", claims.Identifier)
	require.Equal(t, users.RoleStudent, claims.Role)
	require.Equal(t, "21103", utils.Value(claims.CourseNumber))
	require.False(t, claims.SystemAdmin)
	require.NotEmpty(t, claims.ID)
}

func TestSubjectClaimCarriesPrincipalID(t *testing.T) {
	now := time.Date(2024, 9, 16, 8, 0, 0, 0, time.UTC)
	issuer := newIssuer(&now, time.Hour)

	// The registered Subject claim and the taught-subject attribute are
	// distinct: one is the principal id, the other a teacher's field.
	signed, _, err := issuer.Issue("teacher-row-id", token.Claims{
		Identifier:     "T001",
		Role:           users.RoleTeacher,
		TeacherID:      utils.Ptr("T001"),
		TeacherSubject: utils.Ptr("Mathematics"),
	})
	require.NoError(t, err)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, "teacher-row-id", claims.Subject)
	require.Equal(t, "Mathematics", utils.Value(claims.TeacherSubject))
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2024, 9, 16, 8, 0, 0, 0, time.UTC)
	issuer := newIssuer(&now, time.Hour)

	signed, _, err := issuer.Issue("user-1", token.Claims{Identifier: "21103", Role: users.RoleStudent})
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Second)
	_, err = issuer.Verify(signed)
	require.ErrorIs(t, err, token.ErrExpired)
}

func TestVerifyRejectsTampering(t *testing.T) {
	now := time.Date(2024, 9, 16, 8, 0, 0, 0, time.UTC)
	issuer := newIssuer(&now, time.Hour)

	signed, _, err := issuer.Issue("user-1", token.Claims{Identifier: "21103", Role: users.RoleStudent})
	require.NoError(t, err)

	t.Run("payload edit", func(t *testing.T) {
		parts := strings.Split(signed, ".")
		require.Len(t, parts, 3)
		tampered := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx." + parts[2]
		_, err := issuer.Verify(tampered)
		require.ErrorIs(t, err, token.ErrInvalid)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := token.NewIssuer(token.NewHMACSigner("different-secret"), time.Hour)
		_, err := other.Verify(signed)
		require.ErrorIs(t, err, token.ErrInvalid)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := issuer.Verify("not.a.jwt")
		require.ErrorIs(t, err, token.ErrInvalid)
		_, err = issuer.Verify("")
		require.ErrorIs(t, err, token.ErrInvalid)
	})
}

func TestUniqueTokenIDs(t *testing.T) {
	now := time.Date(2024, 9, 16, 8, 0, 0, 0, time.UTC)
	issuer := newIssuer(&now, time.Hour)

	first, _, err := issuer.Issue("user-1", token.Claims{Identifier: "21103", Role: users.RoleStudent})
	require.NoError(t, err)
	second, _, err := issuer.Issue("user-1", token.Claims{Identifier: "21103", Role: users.RoleStudent})
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
