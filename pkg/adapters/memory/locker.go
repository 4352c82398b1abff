package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// Locker implements ports.Locker for a single process.
// A held key is refused immediately; expired holds are reclaimed.
type Locker struct {
	mu    sync.Mutex
	held  map[string]hold
	now   func() time.Time
	token uint64
}

type hold struct {
	token   uint64
	expires time.Time
}

// NewLocker creates an empty in-process locker.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]hold), now: time.Now}
}

// Lock acquires key for at most ttl. A zero ttl never expires.
func (l *Locker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if h, ok := l.held[key]; ok && (h.expires.IsZero() || now.Before(h.expires)) {
		return nil, fmt.Errorf("task %q: %w", key, domain.ErrConcurrentTask)
	}

	l.token++
	h := hold{token: l.token}
	if ttl > 0 {
		h.expires = now.Add(ttl)
	}
	l.held[key] = h

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if cur, ok := l.held[key]; ok && cur.token == h.token {
			delete(l.held, key)
		}
		return nil
	}, nil
}
