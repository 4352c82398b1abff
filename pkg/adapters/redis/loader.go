package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	backend "github.com/redis/go-redis/v9"
)

// Loader implements ports.TreeLoader over a Redis hash of raw tree
// definitions, so that several servers share one set of trees.
type Loader struct {
	client backend.UniversalClient
	key    string
}

// NewLoader stores trees in the hash prefix+"trees".
func NewLoader(client backend.UniversalClient, prefix string) *Loader {
	return &Loader{client: client, key: prefix + "trees"}
}

// Put stores (or replaces) the raw definition of tree id.
func (l *Loader) Put(ctx context.Context, id string, data []byte) error {
	if err := l.client.HSet(ctx, l.key, id, data).Err(); err != nil {
		return fmt.Errorf("failed to store tree %s: %w", id, err)
	}
	return nil
}

// Delete removes tree id.
func (l *Loader) Delete(ctx context.Context, id string) error {
	return l.client.HDel(ctx, l.key, id).Err()
}

// GetTree implements ports.TreeLoader.
func (l *Loader) GetTree(ctx context.Context, id string) ([]byte, error) {
	data, err := l.client.HGet(ctx, l.key, id).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("tree not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tree %s: %w", id, err)
	}
	return data, nil
}

// ListTrees implements ports.TreeLoader.
func (l *Loader) ListTrees(ctx context.Context) ([]string, error) {
	ids, err := l.client.HKeys(ctx, l.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
