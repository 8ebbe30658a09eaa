package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.CacheSize)
	assert.Equal(t, 1024, cfg.Compression.MinSize)
	assert.Equal(t, 2, cfg.Compression.Level)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\ncompression:\n  min_size: 64\n"), 0644))

	t.Run("File", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 64, cfg.Compression.MinSize)
		assert.Equal(t, 1024, cfg.CacheSize)
	})

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("GITLET_LOG_LEVEL", "error")
		t.Setenv("GITLET_CACHE_SIZE", "16")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, 16, cfg.CacheSize)
	})

	t.Run("InvalidCacheSize", func(t *testing.T) {
		t.Setenv("GITLET_CACHE_SIZE", "0")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestRepoConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cfg, err := CreateRepoConfig(path, "repo-id", created)
	require.NoError(t, err)
	assert.Equal(t, "repo-id", cfg.ID())
	assert.True(t, cfg.Compress())
	assert.Equal(t, DefaultBranchName, cfg.DefaultBranch())

	require.NoError(t, cfg.Set("core.compress", "false"))
	require.NoError(t, cfg.Set("user.name", "someone"))

	loaded, err := LoadRepoConfig(path)
	require.NoError(t, err)
	assert.False(t, loaded.Compress())

	value, ok, err := loaded.Get("user.name")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "someone", value)

	value, ok, err = loaded.Get("core.created")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-05-01T12:00:00Z", value)

	_, ok, err = loaded.Get("user.email")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, key := range []string{"nodot", ".name", "section."} {
		_, _, err := loaded.Get(key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.ErrorIs(t, loaded.Set(key, "x"), ErrInvalidKey, key)
	}
}
