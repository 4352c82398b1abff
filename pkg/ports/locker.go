package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker guards a task key so that two traversals of the same task do not run
// at once. Lock returns domain.ErrConcurrentTask when the key is held and the
// implementation gives up waiting.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
