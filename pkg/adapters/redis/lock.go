package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// unlockScript deletes the key only when it still holds our token.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.Locker using Redis, so that two processes never
// run the same task at once.
type Locker struct {
	client backend.UniversalClient
	prefix string
	wait   time.Duration
	poll   time.Duration
}

// LockerOption configures the locker.
type LockerOption func(*Locker)

// WithLockPrefix sets the key prefix for locks.
func WithLockPrefix(prefix string) LockerOption {
	return func(l *Locker) { l.prefix = prefix }
}

// WithWait makes Lock retry a held key for up to d before giving up with
// domain.ErrConcurrentTask. Zero (the default) fails fast.
func WithWait(d time.Duration) LockerOption {
	return func(l *Locker) { l.wait = d }
}

// WithPollInterval sets the retry interval used while waiting.
func WithPollInterval(d time.Duration) LockerOption {
	return func(l *Locker) { l.poll = d }
}

// NewLocker creates a new Redis locker.
func NewLocker(client backend.UniversalClient, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: "qtree:",
		poll:   100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dial connects to the Redis server at addr and returns a locker using it.
func Dial(ctx context.Context, addr, password string, db int, opts ...LockerOption) (*Locker, error) {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewLocker(client, opts...), nil
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("task %q: %w", key, domain.ErrConcurrentTask)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}
