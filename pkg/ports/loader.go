package ports

import "context"

// TreeLoader returns raw tree definitions (YAML or JSON) by ID.
type TreeLoader interface {
	// GetTree returns the raw definition of a tree. The compiler parses it.
	GetTree(ctx context.Context, id string) ([]byte, error)

	// ListTrees returns the IDs of every tree the loader can serve.
	ListTrees(ctx context.Context) ([]string, error)
}
