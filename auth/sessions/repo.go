package sessions

import (
	"context"
	"errors"
)

// ErrNotFound is returned by FindLive when no live session matches the token.
var ErrNotFound = errors.New("session not found")

// Repo defines the interface for session storage. Each operation is atomic
// with respect to the others; no cross-operation transactions are needed. A
// race between FindLive and a concurrent Delete for the same token resolves
// to "session absent", which simply invalidates the token early.
type Repo interface {
	// Create inserts one session row. Multiple concurrent sessions per
	// principal are permitted.
	Create(ctx context.Context, session Session) error

	// FindLive returns the session only if it has not expired.
	FindLive(ctx context.Context, token string) (*Session, error)

	// Delete removes a session by token. Deleting an absent token is not an
	// error; logout is idempotent.
	Delete(ctx context.Context, token string) error

	// SweepExpired deletes every expired row and returns the count. Purely
	// storage reclamation: an expired row already fails FindLive.
	SweepExpired(ctx context.Context) (int, error)
}
