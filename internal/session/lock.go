package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "session:lock:"

// Verify interface compliance.
var _ Locker = (*RedisLock)(nil)

// RedisLock serializes actions within a session using SETNX with a TTL.
// Each acquisition uses a unique token so a slow holder cannot release a
// lock that has expired and been re-acquired.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLock creates a per-session lock.  The TTL bounds how long a
// stalled call can block the session; it should exceed the request timeout.
func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, ttl: ttl}
}

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Acquire attempts to take the session's lock.  On success the returned
// release func must be called when the action completes.
func (l *RedisLock) Acquire(ctx context.Context, sessionID string) (func(), bool, error) {
	key := lockPrefix + sessionID
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// best effort; the TTL reclaims the lock if this fails
		_, _ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Result()
	}
	return release, true, nil
}
