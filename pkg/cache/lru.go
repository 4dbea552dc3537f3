// Package cache provides an in-memory LRU cache for git blob contents so a
// history walk reads each blob from the object database at most once.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/gitlib"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/units"
)

// DefaultBlobCacheSize is the default memory bound of a BlobCache.
const DefaultBlobCacheSize = 64 * units.MiB

// BlobCache is a size-bounded, least-recently-used map from blob id to
// contents. It is safe for concurrent use.
type BlobCache struct {
	mu      sync.Mutex
	entries map[gitlib.Hash]*list.Element
	order   *list.List // front is most recently used.
	maxSize int64
	size    int64

	hits   atomic.Int64
	misses atomic.Int64
}

type blobEntry struct {
	hash gitlib.Hash
	data []byte
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
	Size    int64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// NewBlobCache creates a cache bounded to maxSize bytes of contents.
// Non-positive sizes use DefaultBlobCacheSize.
func NewBlobCache(maxSize int64) *BlobCache {
	if maxSize <= 0 {
		maxSize = DefaultBlobCacheSize
	}

	return &BlobCache{
		entries: make(map[gitlib.Hash]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// Get returns the cached contents for hash.
func (c *BlobCache) Get(hash gitlib.Hash) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[hash]
	if !ok {
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)
	c.order.MoveToFront(el)

	entry, _ := el.Value.(*blobEntry)

	return entry.data, true
}

// Put stores data under hash, evicting least recently used entries to stay
// within the size bound. Blobs larger than the bound are not cached.
func (c *BlobCache) Put(hash gitlib.Hash, data []byte) {
	size := int64(len(data))
	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[hash]; ok {
		c.order.MoveToFront(el)

		return
	}

	for c.size+size > c.maxSize && c.order.Len() > 0 {
		c.evictOldest()
	}

	c.entries[hash] = c.order.PushFront(&blobEntry{hash: hash, data: data})
	c.size += size
}

func (c *BlobCache) evictOldest() {
	el := c.order.Back()
	entry, _ := el.Value.(*blobEntry)

	c.order.Remove(el)
	delete(c.entries, entry.hash)
	c.size -= int64(len(entry.data))
}

// Stats returns a snapshot of the counters.
func (c *BlobCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.order.Len(),
		Size:    c.size,
	}
}

// Loader fetches blob contents on a cache miss.
type Loader func(gitlib.Hash) ([]byte, error)

// GetOrLoad returns the cached contents for hash, calling load and caching
// its result on a miss.
func (c *BlobCache) GetOrLoad(hash gitlib.Hash, load Loader) ([]byte, error) {
	if data, ok := c.Get(hash); ok {
		return data, nil
	}

	data, err := load(hash)
	if err != nil {
		return nil, err
	}

	c.Put(hash, data)

	return data, nil
}
