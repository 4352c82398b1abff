package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FS implements ports.FileSystem on the local disk.
// Relative paths are resolved against Root when it is set.
type FS struct {
	Root string
}

// NewFS creates a file system rooted at root. An empty root means the working directory.
func NewFS(root string) *FS {
	return &FS{Root: root}
}

// Exists reports whether path exists. Permission errors are returned, not
// folded into "missing".
func (f *FS) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if f.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.Root, path)
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
