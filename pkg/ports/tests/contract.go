package tests

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/qtree/pkg/ports"
)

// TreeLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.TreeLoader.
// setupData maps tree IDs to a fragment that must appear in the raw definition.
func TreeLoaderContractTest(t *testing.T, loader ports.TreeLoader, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetTree_Success", func(t *testing.T) {
		for id, fragment := range setupData {
			content, err := loader.GetTree(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting tree %s: %v", id, err)
			}
			if !strings.Contains(string(content), fragment) {
				t.Errorf("tree %s: expected %q in %q", id, fragment, content)
			}
		}
	})

	t.Run("GetTree_NotFound", func(t *testing.T) {
		_, err := loader.GetTree(ctx, "non-existent-tree")
		if err == nil {
			t.Error("expected error for non-existent tree, got nil")
		}
	})

	t.Run("ListTrees", func(t *testing.T) {
		ids, err := loader.ListTrees(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing trees: %v", err)
		}
		if len(ids) != len(setupData) {
			t.Errorf("expected %d trees, got %d (%v)", len(setupData), len(ids), ids)
		}
		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for id := range setupData {
			if !lookup[id] {
				t.Errorf("tree %s missing from list", id)
			}
		}
	})
}
