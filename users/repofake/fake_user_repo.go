package fakeuserrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classregister/auth-server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory users.Repo used by tests and by the server
// when no database is configured.
type FakeUserRepo struct {
	lock  sync.RWMutex
	rows  map[string]*users.User // keyed by identifier
	byID  map[string]string      // id -> identifier
	clock func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		rows:  make(map[string]*users.User),
		byID:  make(map[string]string),
		clock: time.Now,
	}
}

func (ur *FakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	for _, u := range ur.rows {
		if !u.Active {
			continue
		}
		if (u.CourseNumber != nil && *u.CourseNumber == identifier) ||
			(u.TeacherID != nil && *u.TeacherID == identifier) {
			c := *u
			return &c, nil
		}
	}
	return nil, users.ErrNotFound
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	identifier, ok := ur.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	u := ur.rows[identifier]
	if u == nil || !u.Active {
		return nil, users.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if existing, ok := ur.rows[user.Identifier]; ok && existing.Active {
		return users.ErrConflict
	}
	if user.Email != "" {
		for _, u := range ur.rows {
			if u.Active && u.Email == user.Email {
				return users.ErrConflict
			}
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Active = true
	user.CreatedAt = ur.clock()
	user.UpdatedAt = user.CreatedAt

	c := *user
	ur.rows[user.Identifier] = &c
	ur.byID[user.ID] = user.Identifier
	return nil
}

func (ur *FakeUserRepo) Update(_ context.Context, identifier string, upd users.Update) (*users.User, error) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.rows[identifier]
	if !ok || !u.Active {
		return nil, users.ErrNotFound
	}

	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Subject != nil {
		u.Subject = upd.Subject
	}
	if upd.AverageGrade != nil {
		u.AverageGrade = upd.AverageGrade
	}
	u.UpdatedBy = upd.UpdatedBy
	u.UpdatedAt = ur.clock()

	c := *u
	return &c, nil
}

func (ur *FakeUserRepo) UpdatePassword(_ context.Context, identifier, newHash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.rows[identifier]
	if !ok || !u.Active {
		return users.ErrNotFound
	}
	u.PasswordHash = newHash
	u.UpdatedAt = ur.clock()
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, identifier, deletedBy string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.rows[identifier]
	if !ok || !u.Active {
		return users.ErrNotFound
	}
	u.Active = false
	u.UpdatedBy = deletedBy
	u.UpdatedAt = ur.clock()
	return nil
}

func (ur *FakeUserRepo) List(_ context.Context, filter users.Filter) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	out := make([]*users.User, 0)
	for _, u := range ur.rows {
		if !u.Active {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !matchesSearch(u, filter.Search) {
			continue
		}
		if filter.MinGrade != nil && (u.AverageGrade == nil || *u.AverageGrade < *filter.MinGrade) {
			continue
		}
		if filter.Subject != "" && (u.Subject == nil || *u.Subject != filter.Subject) {
			continue
		}
		c := *u
		out = append(out, &c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*users.User{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (ur *FakeUserRepo) Stats(_ context.Context) ([]users.RoleStats, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	counts := make(map[users.Role]int)
	gradeSums := make(map[users.Role]float64)
	gradeCounts := make(map[users.Role]int)
	for _, u := range ur.rows {
		if !u.Active {
			continue
		}
		counts[u.Role]++
		if u.AverageGrade != nil {
			gradeSums[u.Role] += *u.AverageGrade
			gradeCounts[u.Role]++
		}
	}

	out := make([]users.RoleStats, 0, len(counts))
	for role, count := range counts {
		stats := users.RoleStats{Role: role, Count: count}
		if gradeCounts[role] > 0 {
			avg := gradeSums[role] / float64(gradeCounts[role])
			stats.AverageGrade = &avg
		}
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out, nil
}

func (ur *FakeUserRepo) GradeDistribution(_ context.Context) ([]users.GradeBand, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	grades := make([]float64, 0)
	for _, u := range ur.rows {
		if u.Active && u.Role == users.RoleStudent && u.AverageGrade != nil {
			grades = append(grades, *u.AverageGrade)
		}
	}
	return users.DistributeGrades(grades), nil
}

func matchesSearch(u *users.User, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(u.FirstName), s) ||
		strings.Contains(strings.ToLower(u.LastName), s) ||
		strings.Contains(strings.ToLower(u.Identifier), s)
}
