// Package postgres implements the credential and session repositories
// using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB owns the connection pool and hands out the repository adapters.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// UserRepo returns the users.Repo adapter over the shared pool.
func (d *DB) UserRepo() *UserRepo {
	return &UserRepo{sql: d.sql}
}

// SessionRepo returns the sessions.Repo adapter over the shared pool.
func (d *DB) SessionRepo() *SessionRepo {
	return &SessionRepo{sql: d.sql}
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			identifier TEXT UNIQUE NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT UNIQUE,
			role TEXT NOT NULL CHECK(role IN ('student', 'teacher', 'admin')),
			course_number TEXT,
			teacher_id TEXT,
			subject TEXT,
			average_grade DOUBLE PRECISION,
			password_hash TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			created_by TEXT,
			updated_by TEXT,
			CONSTRAINT chk_identifier CHECK(
				(role IN ('student', 'admin') AND course_number IS NOT NULL AND teacher_id IS NULL) OR
				(role = 'teacher' AND teacher_id IS NOT NULL AND course_number IS NULL)
			),
			CONSTRAINT chk_grade CHECK(
				(role IN ('student', 'admin') AND average_grade BETWEEN 2.0 AND 6.0) OR
				(role = 'teacher' AND average_grade IS NULL)
			)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);`,
		`CREATE INDEX IF NOT EXISTS idx_users_course_number ON users(course_number);`,
		`CREATE INDEX IF NOT EXISTS idx_users_teacher_id ON users(teacher_id);`,
		// principal_id is a weak back-reference, not a foreign key: session
		// rows only ever feed liveness lookups and cleanup.
		`CREATE TABLE IF NOT EXISTS user_sessions (
			token TEXT PRIMARY KEY,
			principal_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_user_sessions_expires_at ON user_sessions(expires_at);`,
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
