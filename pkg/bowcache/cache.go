// Package bowcache stores preprocessed bag-of-words artifacts on disk under
// content-addressed keys.
package bowcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/persist"
)

// Extension is the file suffix of cache entries.
const Extension = ".pkl"

const shardLen = 2

// ErrNoRoot is returned when a cache is created without a root directory.
var ErrNoRoot = errors.New("bowcache: empty root directory")

// Artifact is one token list per document, in corpus order.
type Artifact [][]string

// Stats reports cache activity since creation.
type Stats struct {
	Hits    int64
	Misses  int64
	Repairs int64
}

// Cache is a sharded on-disk artifact store. It is safe for concurrent use
// by multiple goroutines and processes sharing the same root; writes are
// published with a same-directory rename.
type Cache struct {
	root    string
	codec   persist.Codec
	logger  *slog.Logger
	metrics *observability.PipelineMetrics

	hits    atomic.Int64
	misses  atomic.Int64
	repairs atomic.Int64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for repair warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics forwards hit, miss and repair counts to pm.
func WithMetrics(pm *observability.PipelineMetrics) Option {
	return func(c *Cache) {
		c.metrics = pm
	}
}

// WithCodec overrides the entry codec. The default is LZ4-framed gob.
func WithCodec(codec persist.Codec) Option {
	return func(c *Cache) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// New creates a cache rooted at root. The directory is created lazily on
// the first Set.
func New(root string, opts ...Option) (*Cache, error) {
	if root == "" {
		return nil, ErrNoRoot
	}

	c := &Cache{
		root:   root,
		codec:  persist.NewLZ4Codec(persist.NewGobCodec()),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Path returns the entry path for key: <root>/<xx>/<digest>.pkl.
func (c *Cache) Path(key Key) (string, error) {
	digest, err := key.Digest()
	if err != nil {
		return "", err
	}

	return c.pathFor(digest), nil
}

func (c *Cache) pathFor(digest string) string {
	return filepath.Join(c.root, digest[:shardLen], digest+Extension)
}

// Has reports whether an entry file exists for key.
func (c *Cache) Has(key Key) bool {
	path, err := c.Path(key)
	if err != nil {
		return false
	}

	info, statErr := os.Stat(path)

	return statErr == nil && info.Mode().IsRegular()
}

// Get returns the artifact for key. Any read or decode failure is treated
// as a miss and the offending file is removed.
func (c *Cache) Get(ctx context.Context, key Key) (Artifact, bool) {
	path, err := c.Path(key)
	if err != nil {
		c.recordMiss(ctx)

		return nil, false
	}

	var art Artifact

	loadErr := persist.LoadFile(path, c.codec, &art)
	if loadErr == nil {
		c.hits.Add(1)
		c.metrics.CacheLookup(ctx, true)

		return restoreEmpty(art), true
	}

	c.recordMiss(ctx)

	if errors.Is(loadErr, fs.ErrNotExist) {
		return nil, false
	}

	c.logger.WarnContext(ctx, "removing unreadable cache entry", "path", path, "error", loadErr)

	rmErr := os.Remove(path)
	if rmErr == nil || errors.Is(rmErr, fs.ErrNotExist) {
		c.repairs.Add(1)
		c.metrics.CacheRepair(ctx)
	} else {
		c.logger.WarnContext(ctx, "cache repair failed", "path", path, "error", rmErr)
	}

	return nil, false
}

// restoreEmpty undoes gob's collapsing of empty slices into nil so a hit
// equals what was stored.
func restoreEmpty(art Artifact) Artifact {
	if art == nil {
		art = Artifact{}
	}

	for i, doc := range art {
		if doc == nil {
			art[i] = []string{}
		}
	}

	return art
}

func (c *Cache) recordMiss(ctx context.Context) {
	c.misses.Add(1)
	c.metrics.CacheLookup(ctx, false)
}

// Set stores art under key. The final path either holds the complete new
// artifact or is left untouched.
func (c *Cache) Set(key Key, art Artifact) error {
	path, err := c.Path(key)
	if err != nil {
		return err
	}

	if art == nil {
		art = Artifact{}
	}

	saveErr := persist.SaveFile(path, c.codec, art)
	if saveErr != nil {
		return fmt.Errorf("bowcache set: %w", saveErr)
	}

	return nil
}

// Invalidate removes the entry for key. A missing entry is not an error.
func (c *Cache) Invalidate(key Key) error {
	path, err := c.Path(key)
	if err != nil {
		return err
	}

	rmErr := os.Remove(path)
	if rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
		return fmt.Errorf("bowcache invalidate: %w", rmErr)
	}

	return nil
}

// Stats returns a snapshot of the activity counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Repairs: c.repairs.Load(),
	}
}
