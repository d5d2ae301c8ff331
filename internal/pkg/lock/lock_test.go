package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	xerrors "duka-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient implements Client over an in-memory key space with the same
// compare-and-delete release semantics as the server-side script.
type fakeClient struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{keys: make(map[string]string)}
}

func (c *fakeClient) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, held := c.keys[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	c.keys[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (c *fakeClient) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keys[keys[0]] == args[0].(string) {
		delete(c.keys, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

// expire drops a key as if its TTL ran out.
func (c *fakeClient) expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key)
}

func (c *fakeClient) holder(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[key]
}

func TestAcquireIsMutuallyExclusive(t *testing.T) {
	ctx := context.Background()
	locker := NewLocker(newFakeClient(), time.Minute)

	lease, err := locker.Acquire(ctx, "savings:process-daily")
	require.NoError(t, err)

	// Second acquire under the same job name fails until release.
	_, err = locker.Acquire(ctx, "savings:process-daily")
	assert.True(t, xerrors.Is(err, xerrors.ErrLockNotAcquired))

	require.NoError(t, lease.Release(ctx))

	_, err = locker.Acquire(ctx, "savings:process-daily")
	assert.NoError(t, err)
}

func TestAcquireDifferentJobsAreIndependent(t *testing.T) {
	ctx := context.Background()
	locker := NewLocker(newFakeClient(), time.Minute)

	_, err := locker.Acquire(ctx, "savings:process-daily")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "subscriptions:check-expired")
	assert.NoError(t, err)
}

func TestStaleTokenReleaseIsNoOp(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	locker := NewLocker(client, time.Minute)

	stale, err := locker.Acquire(ctx, "savings:process-daily")
	require.NoError(t, err)

	// The first worker's lease expires mid-run and another worker takes
	// over. The first worker's deferred release must not evict the new
	// holder.
	client.expire("scheduler:lock:savings:process-daily")
	fresh, err := locker.Acquire(ctx, "savings:process-daily")
	require.NoError(t, err)

	require.NoError(t, stale.Release(ctx))
	assert.Equal(t, fresh.token, client.holder("scheduler:lock:savings:process-daily"))

	_, err = locker.Acquire(ctx, "savings:process-daily")
	assert.True(t, xerrors.Is(err, xerrors.ErrLockNotAcquired))
}
