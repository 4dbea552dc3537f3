package cache_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/cache"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/gitlib"
)

func hashOf(b byte) gitlib.Hash {
	var h gitlib.Hash
	h[0] = b

	return h
}

func TestBlobCache_GetPut(t *testing.T) {
	t.Parallel()

	c := cache.NewBlobCache(100)

	_, ok := c.Get(hashOf(1))
	assert.False(t, ok)

	c.Put(hashOf(1), []byte("hello"))

	data, ok := c.Get(hashOf(1))
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(5), stats.Size)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-9)
}

func TestBlobCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := cache.NewBlobCache(10)

	c.Put(hashOf(1), []byte("aaaa"))
	c.Put(hashOf(2), []byte("bbbb"))

	_, ok := c.Get(hashOf(1))
	require.True(t, ok)

	c.Put(hashOf(3), []byte("cccc"))

	_, ok = c.Get(hashOf(2))
	assert.False(t, ok, "least recently used entry is evicted")

	_, ok = c.Get(hashOf(1))
	assert.True(t, ok)

	_, ok = c.Get(hashOf(3))
	assert.True(t, ok)

	assert.Equal(t, int64(8), c.Stats().Size)
}

func TestBlobCache_OversizedNotCached(t *testing.T) {
	t.Parallel()

	c := cache.NewBlobCache(4)
	c.Put(hashOf(1), []byte("too large"))

	assert.Zero(t, c.Stats().Entries)
}

func TestBlobCache_GetOrLoad(t *testing.T) {
	t.Parallel()

	c := cache.NewBlobCache(0)
	calls := 0

	load := func(gitlib.Hash) ([]byte, error) {
		calls++

		return []byte("blob"), nil
	}

	for range 3 {
		data, err := c.GetOrLoad(hashOf(7), load)
		require.NoError(t, err)
		assert.Equal(t, "blob", string(data))
	}

	assert.Equal(t, 1, calls)

	boom := errors.New("boom")

	_, err := c.GetOrLoad(hashOf(8), func(gitlib.Hash) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Stats().Entries, "failed loads are not cached")
}
