package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/qtree/internal/compiler"
	"github.com/aretw0/qtree/internal/testutils"
	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_Contract(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()

	docs := []core.Document{
		{ID: "setup.md", Content: `---
id: setup
type: group
name: setup
children:
  - type: singleSelect
    name: env
    option: [dev, prod]
---
Choose where the app runs.`},
		{ID: "deploy.md", Content: `---
type: number
name: replicas
validation:
  minimum: 1
---
`},
	}
	for _, doc := range docs {
		require.NoError(t, repo.Save(ctx, doc))
	}

	tests.TreeLoaderContractTest(t, NewFromRepo(repo), map[string]string{
		"setup":  `"env"`,
		"deploy": `"replicas"`,
	})
}

func TestLoader_GetTree_Compiles(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	err := os.WriteFile(filepath.Join(tmpDir, "setup.md"), []byte(`---
type: group
name: setup
children:
  - type: singleSelect
    name: env
    option: [dev, prod]
  - type: number
    name: replicas
    validation:
      minimum: 1
      maximum: 5
---
Choose where the app runs.`), 0644)
	require.NoError(t, err)

	raw, err := NewFromRepo(repo).GetTree(context.Background(), "setup")
	require.NoError(t, err)

	root, err := compiler.Load(raw)
	require.NoError(t, err)
	assert.Equal(t, "Choose where the app runs.", root.Data.(*domain.Group).Description)

	v := root.Children[1].Question().(*domain.NumberInputQuestion).Validation.(*domain.NumberValidation)
	assert.Equal(t, 5.0, *v.Maximum)
}

func TestLoader_ListTrees_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"foo.md": `---
id: foo
type: text
name: a
---
Explicit ID`,
		"foo.json": `{
  "id": "foo",
  "type": "text",
  "name": "b"
}`,
	}
	testutils.WriteFiles(t, tmpDir, files)

	_, err := NewFromRepo(repo).ListTrees(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}
