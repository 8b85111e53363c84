package fakesessionrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classregister/auth-server/auth/sessions"
	fakesessionrepo "github.com/classregister/auth-server/auth/sessions/repofakes"
)

func TestFakeSessionRepo(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 16, 8, 0, 0, 0, time.UTC)

	repo := fakesessionrepo.NewFakeSessionRepo().WithNowTime(func() time.Time { return now })

	live := sessions.Session{Token: "tok-live", PrincipalID: "user-1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	expired := sessions.Session{Token: "tok-expired", PrincipalID: "user-2", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, expired))

	t.Run("FindLive returns live sessions only", func(t *testing.T) {
		found, err := repo.FindLive(ctx, "tok-live")
		require.NoError(t, err)
		require.Equal(t, "user-1", found.PrincipalID)

		_, err = repo.FindLive(ctx, "tok-expired")
		require.ErrorIs(t, err, sessions.ErrNotFound)
		_, err = repo.FindLive(ctx, "tok-missing")
		require.ErrorIs(t, err, sessions.ErrNotFound)
	})

	t.Run("a session expires exactly at its deadline", func(t *testing.T) {
		now = live.ExpiresAt
		_, err := repo.FindLive(ctx, "tok-live")
		require.ErrorIs(t, err, sessions.ErrNotFound)
		now = live.ExpiresAt.Add(-time.Second)
		_, err = repo.FindLive(ctx, "tok-live")
		require.NoError(t, err)
	})

	t.Run("SweepExpired removes only dead rows", func(t *testing.T) {
		deleted, err := repo.SweepExpired(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, deleted)

		_, err = repo.FindLive(ctx, "tok-live")
		require.NoError(t, err)

		deleted, err = repo.SweepExpired(ctx)
		require.NoError(t, err)
		require.Zero(t, deleted)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "tok-live"))
		require.NoError(t, repo.Delete(ctx, "tok-live"))
		_, err := repo.FindLive(ctx, "tok-live")
		require.ErrorIs(t, err, sessions.ErrNotFound)
	})
}
