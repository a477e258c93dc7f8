// Package session owns the process-external state of one user session and
// the lock that serializes actions against it.  State lives in Redis with a
// TTL, so patient data evaporates when the session does.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"discharge-companion/pkg"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store persists per-session state.  Implementations must honor the
// session's ExpiresAt as an upper bound on retention.
type Store interface {
	Save(ctx context.Context, s *pkg.Session) error
	Get(ctx context.Context, id string) (*pkg.Session, error)
	Delete(ctx context.Context, id string) error
}

// Locker serializes user actions within one session.  Acquire reports
// false when another action on the same session is already in flight.
type Locker interface {
	Acquire(ctx context.Context, sessionID string) (release func(), acquired bool, err error)
}

// New creates empty session state with a fresh ID and the given lifetime.
func New(ttl time.Duration) *pkg.Session {
	now := time.Now()
	return &pkg.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
