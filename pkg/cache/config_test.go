package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thepwagner/aptkeys/pkg/cache"
)

func TestStorageFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("default", func(t *testing.T) {
		t.Parallel()
		s, err := cache.StorageFromConfig(cache.Config{})
		require.NoError(t, err)
		assert.IsType(t, &cache.LRUStorage{}, s)
	})

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		s, err := cache.StorageFromConfig(cache.Config{URL: "memory://"})
		require.NoError(t, err)
		assert.IsType(t, &cache.LRUStorage{}, s)
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		s, err := cache.StorageFromConfig(cache.Config{URL: "file:///var/cache/aptkeys"})
		require.NoError(t, err)
		fs, ok := s.(*cache.FileStorage)
		require.True(t, ok)
		assert.Equal(t, "/var/cache/aptkeys", fs.Path)
	})

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()
		_, err := cache.StorageFromConfig(cache.Config{URL: "redis://localhost"})
		assert.Error(t, err)
	})
}
