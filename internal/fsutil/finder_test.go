package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("# test"), 0o600))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.hcl", "a.hcl", "notes.txt", "nested/c.hcl")

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.hcl", "b.txt", "dir/c.hcl")
	a := filepath.Join(root, "a.hcl")

	files, err := CollectFiles([]string{a, root, filepath.Join(root, "b.txt")}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{a, filepath.Join(root, "dir", "c.hcl")}, files)

	_, err = CollectFiles([]string{filepath.Join(root, "missing.hcl")}, ".hcl")
	assert.ErrorContains(t, err, "does not exist")
}
