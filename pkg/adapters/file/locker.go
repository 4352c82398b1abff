package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
)

// Locker implements ports.Locker with lock files, so that two processes
// working on the same project do not run the same task at once.
// A lock file older than its TTL is considered stale and reclaimed. Each
// lock file holds the owner's token; unlocking a lock that was reclaimed by
// someone else leaves their file in place.
type Locker struct {
	Dir string
}

// NewLocker creates a locker that keeps its lock files in dir.
func NewLocker(dir string) *Locker {
	return &Locker{Dir: dir}
}

// Lock creates <Dir>/<key>.lock exclusively.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure lock directory: %w", err)
	}
	path := filepath.Join(l.Dir, sanitizeKey(key)+".lock")
	token := fmt.Sprintf("%d %s\n", os.Getpid(), uuid.NewString())

	if err := l.create(path, token); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return nil, err
		}
		if !l.stale(path, ttl) {
			return nil, fmt.Errorf("task %q: %w", key, domain.ErrConcurrentTask)
		}
		_ = os.Remove(path)
		if err := l.create(path, token); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return nil, fmt.Errorf("task %q: %w", key, domain.ErrConcurrentTask)
			}
			return nil, err
		}
	}

	return func(context.Context) error {
		held, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && string(held) != token) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read lock %s: %w", path, err)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to release lock %s: %w", path, err)
		}
		return nil
	}, nil
}

func (l *Locker) create(path, token string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.WriteString(token)
	cerr := f.Close()
	return errors.Join(werr, cerr)
}

func (l *Locker) stale(path string, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.Is(err, fs.ErrNotExist)
	}
	return time.Since(info.ModTime()) > ttl
}

func sanitizeKey(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_").Replace(key)
}
