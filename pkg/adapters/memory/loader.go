package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/qtree/internal/compiler"
	"github.com/aretw0/qtree/pkg/domain"
)

// Loader implements ports.TreeLoader using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu    sync.RWMutex
	trees map[string][]byte
}

// NewLoader creates a Loader with the provided raw definitions (YAML or JSON).
func NewLoader(data map[string]string) *Loader {
	trees := make(map[string][]byte, len(data))
	for k, v := range data {
		trees[k] = []byte(v)
	}
	return &Loader{trees: trees}
}

// NewFromTrees creates a Loader from built trees.
// This handles serialization automatically, improving DX for tests.
func NewFromTrees(trees map[string]*domain.QTreeNode) (*Loader, error) {
	l := &Loader{trees: make(map[string][]byte, len(trees))}
	for id, root := range trees {
		if err := l.Add(id, root); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add serializes root and stores it under id, replacing any previous tree.
func (l *Loader) Add(id string, root *domain.QTreeNode) error {
	if id == "" {
		return fmt.Errorf("tree missing ID")
	}
	raw, err := json.Marshal(compiler.Export(root))
	if err != nil {
		return fmt.Errorf("failed to marshal tree %s: %w", id, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trees[id] = raw
	return nil
}

// GetTree retrieves the raw definition of a tree by ID.
func (l *Loader) GetTree(_ context.Context, id string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	content, ok := l.trees[id]
	if !ok {
		return nil, fmt.Errorf("tree not found: %s", id)
	}
	return content, nil
}

// ListTrees returns all available tree IDs.
func (l *Loader) ListTrees(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.trees))
	for k := range l.trees {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
