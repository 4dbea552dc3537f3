package preprocess_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/bowcache"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/classify"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/preprocess"
)

type countingProcessor struct {
	calls atomic.Int32
	err   error
}

func (c *countingProcessor) Process(_ context.Context, docs []preprocess.Document) ([][]string, error) {
	c.calls.Add(1)

	if c.err != nil {
		return nil, c.err
	}

	out := make([][]string, len(docs))
	for i, d := range docs {
		out[i] = []string{string(d.Content)}
	}

	return out, nil
}

func scenarioCorpus() preprocess.Corpus {
	return preprocess.Corpus{Documents: []preprocess.Document{
		{Path: "a.txt", Name: "a.txt", Kind: preprocess.KindText, Content: []byte("hello world")},
		{Path: "b.txt", Name: "b.txt", Kind: preprocess.KindText, Content: []byte("another doc")},
	}}
}

func TestGlue_CacheHitSkipsPreprocessing(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cache, err := bowcache.New(root)
	require.NoError(t, err)

	proc := &countingProcessor{}
	glue := preprocess.NewGlue(proc, preprocess.DefaultOptions(), cache, nil, nil)

	first, err := glue.Run(context.Background(), scenarioCorpus())
	require.NoError(t, err)
	assert.False(t, first.Hit)
	assert.Len(t, first.Artifact, 2)

	path, err := cache.Path(first.Key)
	require.NoError(t, err)
	assert.FileExists(t, path)

	shards, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, shards, 1)

	second, err := glue.Run(context.Background(), scenarioCorpus())
	require.NoError(t, err)
	assert.True(t, second.Hit)
	assert.Equal(t, first.Artifact, second.Artifact)
	assert.EqualValues(t, 1, proc.calls.Load())
}

func TestGlue_CorruptEntryRecomputes(t *testing.T) {
	t.Parallel()

	cache, err := bowcache.New(t.TempDir())
	require.NoError(t, err)

	proc := &countingProcessor{}
	glue := preprocess.NewGlue(proc, preprocess.DefaultOptions(), cache, nil, nil)

	first, err := glue.Run(context.Background(), scenarioCorpus())
	require.NoError(t, err)

	path, err := cache.Path(first.Key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("not a pickle"), 0o644))

	again, err := glue.Run(context.Background(), scenarioCorpus())
	require.NoError(t, err)
	assert.False(t, again.Hit)
	assert.EqualValues(t, 2, proc.calls.Load())
	assert.True(t, cache.Has(first.Key))
}

func TestGlue_NoCache(t *testing.T) {
	t.Parallel()

	proc := &countingProcessor{}
	glue := preprocess.NewGlue(proc, preprocess.DefaultOptions(), nil, nil, nil)

	for range 2 {
		out, err := glue.Run(context.Background(), scenarioCorpus())
		require.NoError(t, err)
		assert.False(t, out.Hit)
	}

	assert.EqualValues(t, 2, proc.calls.Load())
}

func TestGlue_ProcessorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	glue := preprocess.NewGlue(&countingProcessor{err: boom}, preprocess.DefaultOptions(), nil, nil, nil)

	_, err := glue.Run(context.Background(), scenarioCorpus())
	require.ErrorIs(t, err, boom)
}

func TestGlue_KeyDependsOnHeadCommit(t *testing.T) {
	t.Parallel()

	glue := preprocess.NewGlue(&countingProcessor{}, preprocess.DefaultOptions(), nil, nil, nil)

	c := scenarioCorpus()
	plain, err := glue.Key(c).Digest()
	require.NoError(t, err)

	c.HeadCommit = "abc123"
	pinned, err := glue.Key(c).Digest()
	require.NoError(t, err)

	assert.NotEqual(t, plain, pinned)
}

func TestBuildCorpus_TextThenCode(t *testing.T) {
	t.Parallel()

	var payloads filetree.Payloads

	tree := filetree.New(filetree.Node{Name: "root", Path: "/root", Kind: filetree.KindDirectory, BinaryIndex: filetree.NoPayload})
	file := func(name string) filetree.NodeID {
		idx := payloads.Append([]byte(name))

		return tree.AddChild(tree.Root(), filetree.Node{
			Name: name, Path: filepath.Join("/root", name), Kind: filetree.KindFile, BinaryIndex: idx,
		})
	}

	code := file("main.go")
	text := file("README.md")
	dropped := file("gone.txt")
	payloads.Drop(tree.Node(dropped).BinaryIndex)

	cls := classify.Result{Text: []filetree.NodeID{text, dropped}, Code: []filetree.NodeID{code}}

	c := preprocess.BuildCorpus(tree, payloads, cls, preprocess.DefaultOptions())
	assert.Equal(t, []string{"/root/README.md", "/root/main.go"}, c.Paths())
	assert.Equal(t, preprocess.KindText, c.Documents[0].Kind)
	assert.Equal(t, preprocess.KindCode, c.Documents[1].Kind)

	textOnly := preprocess.DefaultOptions()
	textOnly.Filters = []string{preprocess.FilterText}
	assert.Len(t, preprocess.BuildCorpus(tree, payloads, cls, textOnly).Documents, 1)
}
