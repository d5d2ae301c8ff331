// internal/pkg/lock/lock.go
package lock

import (
	"context"
	"fmt"
	"time"

	xerrors "duka-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only when the stored token matches, so a
// worker can never release a lease that already expired and was re-acquired
// by someone else.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// Client is the subset of redis commands the locker issues. *redis.Client
// satisfies it.
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Locker hands out lease-based locks keyed by job name. The TTL must be
// longer than the expected run time of the job; a crashed worker's lease
// simply expires.
type Locker struct {
	client Client
	ttl    time.Duration
}

func NewLocker(client Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// Acquire takes the lease for the named job. Returns ErrLockNotAcquired when
// another worker holds it.
func (l *Locker) Acquire(ctx context.Context, name string) (*Lease, error) {
	key := fmt.Sprintf("scheduler:lock:%s", name)
	token := ulid.Make().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, xerrors.ErrLockNotAcquired
	}

	return &Lease{client: l.client, key: key, token: token}, nil
}

// Lease is a held lock. Release is best-effort; an unreleased lease expires
// with the TTL.
type Lease struct {
	client Client
	key    string
	token  string
}

func (le *Lease) Release(ctx context.Context) error {
	if err := le.client.Eval(ctx, releaseScript, []string{le.key}, le.token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", le.key, err)
	}
	return nil
}
