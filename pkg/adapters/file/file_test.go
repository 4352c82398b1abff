package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/qtree/pkg/domain"
	"github.com/aretw0/qtree/pkg/ports"
	"github.com/aretw0/qtree/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_Exists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	fsys := NewFS(dir)
	ctx := context.Background()

	ok, err := fsys.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fsys.Exists(ctx, filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fsys.Exists(ctx, "missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "teams"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "setup.yaml"), []byte("type: text\nname: env\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams", "tab.json"), []byte(`{"type":"text","name":"tab"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# ignored"), 0o644))

	tests.TreeLoaderContractTest(t, NewLoader(dir), map[string]string{
		"setup":     "env",
		"teams/tab": `"tab"`,
	})
}

func TestLoader_Collision(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("type: text"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte("{}"), 0o644))

	_, err := NewLoader(dir).ListTrees(context.Background())
	assert.ErrorContains(t, err, "collision")
}

func TestLoader_RejectsTraversal(t *testing.T) {
	_, err := NewLoader(t.TempDir()).GetTree(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}

func TestLocker_Contract(t *testing.T) {
	ports.RunLockerContract(t, NewLocker(t.TempDir()), domain.ErrConcurrentTask)
}

func TestLocker_ReclaimsStaleLock(t *testing.T) {
	dir := t.TempDir()
	l := NewLocker(dir)
	ctx := context.Background()

	_, err := l.Lock(ctx, "provision", time.Minute)
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "provision.lock"), old, old))

	unlock, err := l.Lock(ctx, "provision", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestLocker_StaleHolderKeepsReclaimedLock(t *testing.T) {
	dir := t.TempDir()
	l := NewLocker(dir)
	ctx := context.Background()
	path := filepath.Join(dir, "provision.lock")

	unlockStale, err := l.Lock(ctx, "provision", time.Minute)
	require.NoError(t, err)

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))
	unlockFresh, err := l.Lock(ctx, "provision", time.Minute)
	require.NoError(t, err)

	require.NoError(t, unlockStale(ctx))
	_, err = os.Stat(path)
	require.NoError(t, err, "the first holder must not remove the reclaimed lock")

	_, err = l.Lock(ctx, "provision", time.Minute)
	assert.ErrorIs(t, err, domain.ErrConcurrentTask)

	require.NoError(t, unlockFresh(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
