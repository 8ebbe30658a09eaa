package safe

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlet/shared/utils"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSafe(t *testing.T, compress bool) (*Safe, string) {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable logging for tests

	db, err := badger.Open(opts)
	require.NoError(t, err)

	root := t.TempDir()
	s, err := New(db, Options{
		Root:        root,
		CacheSize:   8,
		Compress:    compress,
		Compression: CompressionOptions{MinSize: 64},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
		db.Close()
	})
	return s, root
}

func TestSafe(t *testing.T) {
	s, root := setupTestSafe(t, false)

	t.Run("PutGet", func(t *testing.T) {
		content := []byte("hello\n")
		id, err := s.Put(KindBlob, "hello.txt", content)
		require.NoError(t, err)
		assert.Equal(t, "f572d396fae9206628714fb2ce00f72e94f2258f", id)

		got, err := s.Get(KindBlob, id)
		require.NoError(t, err)
		assert.Equal(t, content, got)

		_, err = os.Stat(filepath.Join(root, "blobs", id[:2], id[2:]))
		assert.NoError(t, err)
	})

	t.Run("Dedup", func(t *testing.T) {
		a, err := s.Put(KindBlob, "a.txt", []byte("same"))
		require.NoError(t, err)
		b, err := s.Put(KindBlob, "b.txt", []byte("same"))
		require.NoError(t, err)
		assert.Equal(t, a, b)

		meta, err := s.Meta(KindBlob, a)
		require.NoError(t, err)
		assert.Equal(t, "a.txt", meta.Name)
	})

	t.Run("KindsAreSeparate", func(t *testing.T) {
		id, err := s.Put(KindCommit, "", []byte("only a commit"))
		require.NoError(t, err)

		ok, err := s.Exists(KindBlob, id)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = s.Get(KindBlob, id)
		assert.ErrorIs(t, err, ErrContentNotFound)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.Get(KindBlob, utils.HashContent([]byte("never stored")))
		assert.ErrorIs(t, err, ErrContentNotFound)

		_, err = s.Get(KindBlob, "not-a-hash")
		assert.ErrorIs(t, err, ErrInvalidHash)
	})

	t.Run("EmptyContent", func(t *testing.T) {
		id, err := s.Put(KindBlob, "empty", nil)
		require.NoError(t, err)
		assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", id)

		got, err := s.Get(KindBlob, id)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Verify", func(t *testing.T) {
		id, err := s.Put(KindBlob, "v.txt", []byte("verify me"))
		require.NoError(t, err)
		assert.NoError(t, s.Verify(KindBlob, id))
	})
}

func TestSafeResolve(t *testing.T) {
	s, _ := setupTestSafe(t, false)

	var ids []string
	for _, body := range []string{"one", "two", "three"} {
		id, err := s.Put(KindCommit, "", []byte(body))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	full, err := s.Resolve(KindCommit, ids[0][:8])
	require.NoError(t, err)
	assert.Equal(t, ids[0], full)

	full, err = s.Resolve(KindCommit, ids[1])
	require.NoError(t, err)
	assert.Equal(t, ids[1], full)

	_, err = s.Resolve(KindCommit, ids[0][:3])
	assert.ErrorIs(t, err, ErrContentNotFound)

	_, err = s.Resolve(KindCommit, "ffffffff")
	assert.ErrorIs(t, err, ErrContentNotFound)

	// Ids are lowercase; other spellings never resolve.
	_, err = s.Resolve(KindCommit, strings.ToUpper(ids[0][:8]))
	assert.ErrorIs(t, err, ErrInvalidHash)
	_, err = s.Resolve(KindCommit, strings.ToUpper(ids[0]))
	assert.ErrorIs(t, err, ErrInvalidHash)

	listed, err := s.List(KindCommit)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
	assert.IsIncreasing(t, listed)
}

func TestSafeCompression(t *testing.T) {
	s, root := setupTestSafe(t, true)

	content := bytes.Repeat([]byte("compressible line of text\n"), 200)
	id, err := s.Put(KindBlob, "big.txt", content)
	require.NoError(t, err)

	meta, err := s.Meta(KindBlob, id)
	require.NoError(t, err)
	assert.True(t, meta.Compressed)
	assert.Less(t, meta.StoredSize, meta.Size)

	raw, err := os.ReadFile(filepath.Join(root, "blobs", id[:2], id[2:]))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, zstdMagic))

	// Force a read from disk.
	s.cache.Purge()
	got, err := s.Get(KindBlob, id)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	small, err := s.Put(KindBlob, "small.txt", []byte("tiny"))
	require.NoError(t, err)
	meta, err = s.Meta(KindBlob, small)
	require.NoError(t, err)
	assert.False(t, meta.Compressed)

	skipped, err := s.Put(KindBlob, "archive.zip", content[:len(content)-1])
	require.NoError(t, err)
	meta, err = s.Meta(KindBlob, skipped)
	require.NoError(t, err)
	assert.False(t, meta.Compressed)

	stats, err := s.Stats(KindBlob)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 1, stats.Compressed)
}
