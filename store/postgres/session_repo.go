package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/classregister/auth-server/auth/sessions"
)

// SessionRepo implements sessions.Repo over the shared pool.
type SessionRepo struct {
	sql *sql.DB
}

var _ sessions.Repo = (*SessionRepo)(nil)

// Create inserts one session row.
func (r *SessionRepo) Create(ctx context.Context, session sessions.Session) error {
	_, err := r.sql.ExecContext(ctx,
		`INSERT INTO user_sessions (token, principal_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		session.Token, session.PrincipalID, session.CreatedAt.UTC(), session.ExpiresAt.UTC(),
	)
	return err
}

// FindLive returns a session only while its expiry is in the future; the
// expiry filter lives in the query so sweep never needs to coordinate with
// lookups.
func (r *SessionRepo) FindLive(ctx context.Context, token string) (*sessions.Session, error) {
	var s sessions.Session
	err := r.sql.QueryRowContext(ctx,
		`SELECT token, principal_id, created_at, expires_at
		 FROM user_sessions WHERE token = $1 AND expires_at > NOW()`,
		token,
	).Scan(&s.Token, &s.PrincipalID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sessions.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a session row; deleting an absent token succeeds.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.sql.ExecContext(ctx, `DELETE FROM user_sessions WHERE token = $1`, token)
	return err
}

// SweepExpired deletes expired rows and reports how many were removed.
func (r *SessionRepo) SweepExpired(ctx context.Context) (int, error) {
	result, err := r.sql.ExecContext(ctx, `DELETE FROM user_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
