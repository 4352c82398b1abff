package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var treeExtensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.TreeLoader over a directory of YAML and JSON files.
// A tree's ID is its path relative to Dir, without extension, using forward slashes.
type Loader struct {
	Dir string
}

// NewLoader creates a loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// GetTree reads the definition for id, trying each supported extension.
// An id that already carries an extension is read as is.
func (l *Loader) GetTree(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.FromSlash(id)
	if strings.Contains(clean, "..") {
		return nil, fmt.Errorf("invalid tree id %q", id)
	}
	candidates := []string{filepath.Join(l.Dir, clean)}
	if filepath.Ext(clean) == "" {
		candidates = candidates[:0]
		for _, ext := range treeExtensions {
			candidates = append(candidates, filepath.Join(l.Dir, clean+ext))
		}
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read tree %s: %w", id, err)
		}
	}
	return nil, fmt.Errorf("tree not found: %s", id)
}

// ListTrees walks Dir and returns every tree ID. Two files mapping to the same
// ID are reported as a collision.
func (l *Loader) ListTrees(ctx context.Context) ([]string, error) {
	seen := make(map[string]string)
	err := filepath.WalkDir(l.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.Dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if !isTreeExt(ext) {
			return nil
		}
		rel, err := filepath.Rel(l.Dir, path)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(strings.TrimSuffix(rel, ext))
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, prev, rel)
		}
		seen[id] = rel
		return nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func isTreeExt(ext string) bool {
	for _, e := range treeExtensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
