package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ControlDir), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	_, err = FindRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrNoRepository)
}

func TestLocalWorkspace(t *testing.T) {
	root := t.TempDir()
	w := NewLocalWorkspace(root, nil)

	t.Run("WriteRead", func(t *testing.T) {
		require.NoError(t, w.Write("top.txt", []byte("top\n")))
		require.NoError(t, w.Write("dir/sub/deep.txt", []byte("deep\n")))

		got, err := w.Read("dir/sub/deep.txt")
		require.NoError(t, err)
		assert.Equal(t, "deep\n", string(got))
		assert.True(t, w.Exists("top.txt"))
		assert.False(t, w.Exists("dir"))
		assert.False(t, w.Exists("missing.txt"))
	})

	t.Run("ListIgnoresControlDirs", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, ControlDir, "objects"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, ControlDir, "HEAD"), []byte("x"), 0644))
		require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "config"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0644))

		names, err := w.List()
		require.NoError(t, err)
		assert.Equal(t, []string{".hidden", "dir/sub/deep.txt", "top.txt"}, names)
	})

	t.Run("TmpPrefixedNamesAreTracked", func(t *testing.T) {
		require.NoError(t, w.Write(".tmp-notes", []byte("mine\n")))
		assert.True(t, w.Exists(".tmp-notes"))
		assert.False(t, ShouldIgnore(".tmp-notes"))

		name, err := w.Normalize(root, ".tmp-notes")
		require.NoError(t, err)
		assert.Equal(t, ".tmp-notes", name)

		names, err := w.List()
		require.NoError(t, err)
		assert.Contains(t, names, ".tmp-notes")

		// Temp files are staged under the control directory, never beside
		// the target.
		entries, err := os.ReadDir(filepath.Join(root, ControlDir, "tmp"))
		require.NoError(t, err)
		assert.Empty(t, entries)
		require.NoError(t, w.Delete(".tmp-notes"))
	})

	t.Run("DeletePrunesEmptyDirs", func(t *testing.T) {
		require.NoError(t, w.Delete("dir/sub/deep.txt"))
		_, err := os.Stat(filepath.Join(root, "dir"))
		assert.True(t, os.IsNotExist(err))

		require.NoError(t, w.Delete("never-existed.txt"))
	})

	t.Run("RejectsEscapes", func(t *testing.T) {
		for _, name := range []string{"", "../x", "/etc/passwd", "a/../b", ".gitlet/HEAD"} {
			_, err := w.Read(name)
			assert.ErrorIs(t, err, ErrOutsideTree, name)
		}
		assert.ErrorIs(t, w.Write("../escape.txt", nil), ErrOutsideTree)
	})
}

func TestNormalize(t *testing.T) {
	root := t.TempDir()
	w := NewLocalWorkspace(root, nil)

	name, err := w.Normalize(filepath.Join(root, "dir"), "f.txt")
	require.NoError(t, err)
	assert.Equal(t, "dir/f.txt", name)

	name, err = w.Normalize(root, filepath.Join(root, "x", "y.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x/y.txt", name)

	name, err = w.Normalize(filepath.Join(root, "dir"), "../top.txt")
	require.NoError(t, err)
	assert.Equal(t, "top.txt", name)

	_, err = w.Normalize(root, "../outside.txt")
	assert.ErrorIs(t, err, ErrOutsideTree)

	_, err = w.Normalize(root, ".")
	assert.ErrorIs(t, err, ErrOutsideTree)
}
