package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

// Loader adapts a Loam repository to the ports.TreeLoader interface.
// Each document holds one tree; the Markdown body, when present, becomes the
// root description.
type Loader struct {
	Repo *loam.TypedRepository[TreeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[TreeMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// NewFromRepo wraps an untyped repository.
func NewFromRepo(repo core.Repository) *Loader {
	return New(loam.NewTypedRepository[TreeMetadata](repo))
}

// Open initializes a read-only, strict Loam repository at path.
func Open(path string) (*Loader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// Strict mode keeps numbers as json.Number across Markdown, YAML and JSON documents.
	repo, err := loam.Init(abs,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return NewFromRepo(repo), nil
}

// GetTree retrieves a tree document and re-encodes it as JSON for the compiler.
func (l *Loader) GetTree(ctx context.Context, id string) ([]byte, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	tree := doc.Data
	if tree.ID == "" {
		tree.ID = doc.ID
	}
	tree.ID = trimExtension(tree.ID)
	if body := strings.TrimSpace(doc.Content); body != "" && tree.Description == "" {
		tree.Description = body
	}

	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tree %s: %w", id, err)
	}
	return data, nil
}

// ListTrees lists all trees in the repository.
func (l *Loader) ListTrees(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
