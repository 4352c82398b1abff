package memory

import (
	"context"
	"path"
	"sync"
)

// FS implements ports.FileSystem over a fixed set of paths.
// Parent directories of every added path exist too.
type FS struct {
	mu    sync.RWMutex
	paths map[string]bool
}

// NewFS creates a file system holding the given paths.
func NewFS(paths ...string) *FS {
	fs := &FS{paths: make(map[string]bool)}
	for _, p := range paths {
		fs.Add(p)
	}
	return fs
}

// Add marks p and all its parents as existing.
func (f *FS) Add(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for p = path.Clean(p); ; p = path.Dir(p) {
		f.paths[p] = true
		if p == "." || p == "/" {
			return
		}
	}
}

// Remove forgets p. Parents stay.
func (f *FS) Remove(p string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.paths, path.Clean(p))
}

// Exists implements ports.FileSystem.
func (f *FS) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.paths[path.Clean(p)], nil
}
