package fakesessionrepo

import (
	"context"
	"sync"
	"time"

	"github.com/classregister/auth-server/auth/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory sessions.Repo used by tests and by the
// server when no database is configured.
type FakeSessionRepo struct {
	lock    sync.RWMutex
	rows    map[string]sessions.Session // keyed by token
	nowTime func() time.Time
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{
		rows:    make(map[string]sessions.Session),
		nowTime: time.Now,
	}
}

// WithNowTime overrides the clock (primarily for testing).
func (sr *FakeSessionRepo) WithNowTime(nowFunc func() time.Time) *FakeSessionRepo {
	sr.nowTime = nowFunc
	return sr
}

func (sr *FakeSessionRepo) Create(_ context.Context, session sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	sr.rows[session.Token] = session
	return nil
}

func (sr *FakeSessionRepo) FindLive(_ context.Context, token string) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	session, ok := sr.rows[token]
	if !ok || !session.Live(sr.nowTime()) {
		return nil, sessions.ErrNotFound
	}
	return &session, nil
}

func (sr *FakeSessionRepo) Delete(_ context.Context, token string) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	delete(sr.rows, token)
	return nil
}

func (sr *FakeSessionRepo) SweepExpired(_ context.Context) (int, error) {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	now := sr.nowTime()
	deleted := 0
	for token, session := range sr.rows {
		if !session.Live(now) {
			delete(sr.rows, token)
			deleted++
		}
	}
	return deleted, nil
}
