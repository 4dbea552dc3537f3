package bowcache_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/bowcache"
)

func scenarioSignature() map[string]any {
	return map[string]any{
		"lemmatizer":     true,
		"stopwords":      "nltk_english_default",
		"pii_removal":    true,
		"filters":        []string{"text", "code"},
		"normalize_code": true,
	}
}

func scenarioKey() bowcache.Key {
	return bowcache.Key{
		CorpusID:  bowcache.CorpusID([]string{"a.txt", "b.txt"}),
		Signature: scenarioSignature(),
	}
}

func newCache(t *testing.T) *bowcache.Cache {
	t.Helper()

	c, err := bowcache.New(t.TempDir())
	require.NoError(t, err)

	return c
}

func TestKey_DigestDeterministic(t *testing.T) {
	t.Parallel()

	first, err := scenarioKey().Digest()
	require.NoError(t, err)

	second, err := scenarioKey().Digest()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestKey_SentinelsEquivalent(t *testing.T) {
	t.Parallel()

	implicit, err := bowcache.Key{}.Digest()
	require.NoError(t, err)

	explicit, err := bowcache.Key{
		CorpusID:   bowcache.NoRepo,
		HeadCommit: bowcache.NoCommit,
		Signature:  map[string]any{},
	}.Digest()
	require.NoError(t, err)

	assert.Equal(t, implicit, explicit)
}

func TestKey_FieldsChangeDigest(t *testing.T) {
	t.Parallel()

	base, err := scenarioKey().Digest()
	require.NoError(t, err)

	withCommit := scenarioKey()
	withCommit.HeadCommit = "abc123"

	commitDigest, err := withCommit.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, base, commitDigest)

	withSig := scenarioKey()
	withSig.Signature["lemmatizer"] = false

	sigDigest, err := withSig.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, base, sigDigest)
}

func TestCanonicalJSON(t *testing.T) {
	t.Parallel()

	got, err := bowcache.CanonicalJSON(map[string]any{
		"z": 1,
		"a": map[string]any{"y": "<b>", "b": true},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":true,"y":"<b>"},"z":1}`, got)

	empty, err := bowcache.CanonicalJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", empty)
}

func TestCorpusID(t *testing.T) {
	t.Parallel()

	id := bowcache.CorpusID([]string{"a.txt", "b.txt"})
	assert.Len(t, id, 32)
	assert.Equal(t, id, bowcache.CorpusID([]string{"a.txt", "b.txt"}))
	assert.NotEqual(t, id, bowcache.CorpusID([]string{"b.txt", "a.txt"}))
}

func TestNew_EmptyRoot(t *testing.T) {
	t.Parallel()

	_, err := bowcache.New("")
	require.ErrorIs(t, err, bowcache.ErrNoRoot)
}

func TestCache_SetGetLayout(t *testing.T) {
	t.Parallel()

	c := newCache(t)
	ctx := context.Background()
	key := scenarioKey()
	art := bowcache.Artifact{{"hello", "world"}, {"another", "doc"}}

	assert.False(t, c.Has(key))

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)

	require.NoError(t, c.Set(key, art))
	assert.True(t, c.Has(key))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, art, got)

	digest, err := key.Digest()
	require.NoError(t, err)

	path, err := c.Path(key)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.Root(), digest[:2], digest+".pkl"), path)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestCache_Invalidate(t *testing.T) {
	t.Parallel()

	c := newCache(t)
	key := scenarioKey()

	require.NoError(t, c.Set(key, bowcache.Artifact{{"x"}}))
	require.NoError(t, c.Invalidate(key))

	assert.False(t, c.Has(key))

	_, ok := c.Get(context.Background(), key)
	assert.False(t, ok)

	require.NoError(t, c.Invalidate(key), "absent entry is not an error")
}

func TestCache_SelfRepair(t *testing.T) {
	t.Parallel()

	c := newCache(t)
	ctx := context.Background()
	key := scenarioKey()

	require.NoError(t, c.Set(key, bowcache.Artifact{{"hello", "world"}, {"another", "doc"}}))

	path, err := c.Path(key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not a pickle"), 0o600))

	_, ok := c.Get(ctx, key)
	assert.False(t, ok)
	assert.NoFileExists(t, path)
	assert.False(t, c.Has(key))
	assert.Equal(t, int64(1), c.Stats().Repairs)

	require.NoError(t, c.Set(key, bowcache.Artifact{{"again"}}))

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, bowcache.Artifact{{"again"}}, got)
}

func TestCache_EmptyDocuments(t *testing.T) {
	t.Parallel()

	c := newCache(t)
	key := bowcache.Key{CorpusID: "empty"}

	want := bowcache.Artifact{{"a"}, {}, {"b"}}
	require.NoError(t, c.Set(key, want))

	got, ok := c.Get(context.Background(), key)
	require.True(t, ok)
	assert.Equal(t, want, got)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[["a"],[],["b"]]`, string(encoded))

	emptyKey := bowcache.Key{CorpusID: "no-documents"}
	require.NoError(t, c.Set(emptyKey, bowcache.Artifact{}))

	got, ok = c.Get(context.Background(), emptyKey)
	require.True(t, ok)
	assert.Equal(t, bowcache.Artifact{}, got)
}

func TestCache_ConcurrentReadersSeeWholeValues(t *testing.T) {
	t.Parallel()

	c := newCache(t)
	ctx := context.Background()
	key := scenarioKey()

	small := bowcache.Artifact{{"small"}}
	large := make(bowcache.Artifact, 200)

	for idx := range large {
		large[idx] = strings.Fields(strings.Repeat("token ", 50))
	}

	require.NoError(t, c.Set(key, small))

	var wg sync.WaitGroup

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for idx := range 20 {
				art := small
				if idx%2 == 0 {
					art = large
				}

				assert.NoError(t, c.Set(key, art))
			}
		}()
	}

	for range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 50 {
				got, ok := c.Get(ctx, key)
				if !ok {
					continue
				}

				assert.True(t, len(got) == len(small) || len(got) == len(large))
			}
		}()
	}

	wg.Wait()

	assert.Zero(t, c.Stats().Repairs)

	path, err := c.Path(key)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
