package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/classregister/auth-server/users"
)

const userColumns = `id, identifier, first_name, last_name, COALESCE(email, ''), role,
	course_number, teacher_id, subject, average_grade, password_hash,
	is_active, created_at, updated_at, COALESCE(created_by, ''), COALESCE(updated_by, '')`

// UserRepo implements users.Repo. The session adapter shares the pool but
// not the type; the two interfaces declare colliding method names.
type UserRepo struct {
	sql *sql.DB
}

var _ users.Repo = (*UserRepo)(nil)

// GetByIdentifier retrieves an active user whose course number or teacher
// id equals the supplied identifier.
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*users.User, error) {
	row := r.sql.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE (course_number = $1 OR teacher_id = $1) AND is_active`,
		identifier,
	)
	return scanUser(row)
}

// GetByID retrieves an active user by row id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	row := r.sql.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND is_active`, id)
	return scanUser(row)
}

// Create inserts a new user record.
func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.Active = true
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.sql.ExecContext(ctx,
		`INSERT INTO users (id, identifier, first_name, last_name, email, role,
			course_number, teacher_id, subject, average_grade, password_hash,
			is_active, created_at, updated_at, created_by)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, TRUE, $12, $13, NULLIF($14, ''))`,
		user.ID, user.Identifier, user.FirstName, user.LastName, user.Email, user.Role,
		user.CourseNumber, user.TeacherID, user.Subject, user.AverageGrade, user.PasswordHash,
		user.CreatedAt, user.UpdatedAt, user.CreatedBy,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return users.ErrConflict
		}
		return err
	}
	return nil
}

// Update applies the non-nil fields of upd to an active user record.
func (r *UserRepo) Update(ctx context.Context, identifier string, upd users.Update) (*users.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{identifier}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.FirstName != nil {
		add("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		add("last_name", *upd.LastName)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.Subject != nil {
		add("subject", *upd.Subject)
	}
	if upd.AverageGrade != nil {
		add("average_grade", *upd.AverageGrade)
	}
	if upd.UpdatedBy != "" {
		add("updated_by", upd.UpdatedBy)
	}

	row := r.sql.QueryRowContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+`
		 WHERE identifier = $1 AND is_active
		 RETURNING `+userColumns,
		args...,
	)
	return scanUser(row)
}

// UpdatePassword replaces the password hash of an active user.
func (r *UserRepo) UpdatePassword(ctx context.Context, identifier, newHash string) error {
	result, err := r.sql.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW()
		 WHERE identifier = $1 AND is_active`,
		identifier, newHash,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(result)
}

// Delete soft-deletes a user; the row remains for audit but is invisible to
// every read path.
func (r *UserRepo) Delete(ctx context.Context, identifier, deletedBy string) error {
	result, err := r.sql.ExecContext(ctx,
		`UPDATE users SET is_active = FALSE, updated_at = NOW(), updated_by = NULLIF($2, '')
		 WHERE identifier = $1 AND is_active`,
		identifier, deletedBy,
	)
	if err != nil {
		return err
	}
	return requireRowChanged(result)
}

// List returns active users matching the filter, ordered by name.
func (r *UserRepo) List(ctx context.Context, filter users.Filter) ([]*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_active`
	args := []any{}

	if filter.Role != "" {
		args = append(args, filter.Role)
		query += fmt.Sprintf(" AND role = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR identifier ILIKE $%d)", n, n, n)
	}
	if filter.MinGrade != nil {
		args = append(args, *filter.MinGrade)
		query += fmt.Sprintf(" AND average_grade >= $%d", len(args))
	}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		query += fmt.Sprintf(" AND subject = $%d", len(args))
	}

	query += " ORDER BY last_name, first_name"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Stats returns per-role counts and, where applicable, the mean grade.
func (r *UserRepo) Stats(ctx context.Context) ([]users.RoleStats, error) {
	rows, err := r.sql.QueryContext(ctx,
		`SELECT role, COUNT(*), AVG(average_grade)
		 FROM users WHERE is_active
		 GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.RoleStats, 0)
	for rows.Next() {
		var stats users.RoleStats
		var avg sql.NullFloat64
		if err := rows.Scan(&stats.Role, &stats.Count, &avg); err != nil {
			return nil, err
		}
		if avg.Valid {
			stats.AverageGrade = &avg.Float64
		}
		out = append(out, stats)
	}
	return out, rows.Err()
}

// GradeDistribution buckets active students' grades into the scale bands.
// Bucketing happens in users.DistributeGrades so the band labels live in
// one place.
func (r *UserRepo) GradeDistribution(ctx context.Context) ([]users.GradeBand, error) {
	rows, err := r.sql.QueryContext(ctx,
		`SELECT average_grade FROM users
		 WHERE role = 'student' AND is_active AND average_grade IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grades := make([]float64, 0)
	for rows.Next() {
		var grade float64
		if err := rows.Scan(&grade); err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users.DistributeGrades(grades), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*users.User, error) {
	var u users.User
	err := row.Scan(
		&u.ID, &u.Identifier, &u.FirstName, &u.LastName, &u.Email, &u.Role,
		&u.CourseNumber, &u.TeacherID, &u.Subject, &u.AverageGrade, &u.PasswordHash,
		&u.Active, &u.CreatedAt, &u.UpdatedAt, &u.CreatedBy, &u.UpdatedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func requireRowChanged(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return users.ErrNotFound
	}
	return nil
}
