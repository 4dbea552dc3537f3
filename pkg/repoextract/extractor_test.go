package repoextract_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/classify"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/gitlib/gitlibtest"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/identity"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/loader"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/repoextract"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ingest(t *testing.T, dir string) (*loader.Result, classify.Result) {
	t.Helper()

	res, err := loader.New().Load(context.Background(), dir)
	require.NoError(t, err)

	cls := classify.NewProcessor(classify.EnryResolver{}, nil).Process(res.Tree, res.Payloads)

	return res, cls
}

func newExtractor(t *testing.T, tmp string, emails ...string) *repoextract.Extractor {
	t.Helper()

	return repoextract.New(
		repoextract.WithTempDir(tmp),
		repoextract.WithMatcher(identity.NewMatcher(emails, false)),
		repoextract.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtract_AttributesUserCommits(t *testing.T) {
	t.Parallel()

	repo := gitlibtest.New(t, "proj")
	alice := func(d int) time.Time { return base.AddDate(0, 0, d) }

	repo.Write("src/main.py", "import os\nprint('hi')\n")
	first := repo.Commit("init", gitlibtest.Sig("Alice", "Alice+ci@Example.com", alice(0)))

	repo.Write("README.md", "docs\n")
	repo.Commit("docs", gitlibtest.Sig("Bob", "bob@example.com", alice(1)))

	repo.Write("src/main.py", "import os\nimport sys\nprint('hello')\n")
	repo.Write("tests/test_main.py", "def test():\n    pass\n")
	last := repo.Commit("tests", gitlibtest.Sig("Alice", "alice@other.org", alice(10)))

	res, cls := ingest(t, filepath.Dir(repo.Dir()))
	require.Len(t, cls.RepoHeads, 1)

	tmp := t.TempDir()
	recs := newExtractor(t, tmp, "alice@example.com").ExtractAll(context.Background(), res.Tree, res.Payloads, cls.RepoHeads)
	require.Len(t, recs, 1)

	rec := recs[0]
	require.True(t, rec.OK(), rec.Error)
	assert.Equal(t, "proj", rec.Name)
	assert.Equal(t, last.String(), rec.HeadCommit)

	assert.Equal(t, 3, rec.Context.TotalCommits)
	assert.Equal(t, 2, rec.Context.TotalContributors)
	require.Contains(t, rec.Context.Authors, "alice")
	assert.Equal(t, 2, rec.Context.Authors["alice"].Commits)
	assert.Equal(t, 1, rec.Context.Authors["bob"].Commits)

	require.Len(t, rec.UserCommits, 2)
	assert.Equal(t, last.String(), rec.UserCommits[0].Hash)
	assert.Equal(t, first.String(), rec.UserCommits[1].Hash)

	assert.Equal(t, 2+2+2, rec.UserLinesAdded)
	assert.Equal(t, 1, rec.UserLinesDeleted)
	assert.Equal(t, 3, rec.UserFilesModified)

	assert.True(t, rec.StartDate.Equal(alice(0)))
	assert.True(t, rec.EndDate.Equal(alice(10)))
	assert.Equal(t, 10, rec.DurationDays)

	var kinds []string

	for _, f := range rec.UserCommits[0].ModifiedFiles {
		kinds = append(kinds, f.Filename+":"+f.ChangeKind)

		if f.Filename == "test_main.py" {
			assert.Equal(t, "tests/test_main.py", f.NewPath)
			assert.True(t, strings.HasPrefix(f.SourceAfterChange, "def test()"))
		}
	}

	assert.ElementsMatch(t, []string{"main.py:modify", "test_main.py:add"}, kinds)

	assertEmptyDir(t, tmp)
}

func TestExtract_NoMatcherMeansNoUserCommits(t *testing.T) {
	t.Parallel()

	repo := gitlibtest.New(t, "solo")
	repo.Write("a.go", "package a\n")
	repo.Commit("init", gitlibtest.Sig("Carol", "carol@example.com", base))

	res, cls := ingest(t, filepath.Dir(repo.Dir()))

	rec := repoextract.New().Extract(context.Background(), res.Tree, res.Payloads, cls.RepoHeads[0])
	require.True(t, rec.OK(), rec.Error)
	assert.Empty(t, rec.UserCommits)
	assert.Equal(t, 1, rec.Context.TotalCommits)
	assert.Zero(t, rec.DurationDays)
	assert.True(t, rec.StartDate.IsZero())
}

func TestExtract_DeleteAndBinary(t *testing.T) {
	t.Parallel()

	repo := gitlibtest.New(t, "bin")
	repo.Write("logo.bin", "\x00\x01\x02\x03")
	repo.Write("old.txt", "one\ntwo\n")
	repo.Commit("add", gitlibtest.Sig("Dan", "dan@example.com", base))

	repo.Remove("old.txt")
	repo.Commit("remove", gitlibtest.Sig("Dan", "dan@example.com", base.Add(time.Hour)))

	res, cls := ingest(t, filepath.Dir(repo.Dir()))

	rec := newExtractor(t, t.TempDir(), "dan@example.com").
		Extract(context.Background(), res.Tree, res.Payloads, cls.RepoHeads[0])
	require.True(t, rec.OK(), rec.Error)
	require.Len(t, rec.UserCommits, 2)

	removal := rec.UserCommits[0].ModifiedFiles
	require.Len(t, removal, 1)
	assert.Equal(t, "delete", removal[0].ChangeKind)
	assert.Equal(t, 2, removal[0].DeletedLines)
	assert.Empty(t, removal[0].SourceAfterChange)

	for _, f := range rec.UserCommits[1].ModifiedFiles {
		if f.Filename == "logo.bin" {
			assert.Zero(t, f.AddedLines)
			assert.Empty(t, f.SourceAfterChange)
		}
	}

	assert.Zero(t, rec.DurationDays)
}

func TestExtract_BrokenRepositoryIsIsolated(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "broken", ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken", ".git", "HEAD"), []byte("garbage"), 0o644))

	good := gitlibtest.New(t, "")
	good.Write("x.py", "x = 1\n")
	good.Commit("init", gitlibtest.Sig("Eve", "eve@example.com", base))

	res, cls := ingest(t, root)
	require.Len(t, cls.RepoHeads, 1)

	goodRes, goodCls := ingest(t, good.Dir())
	require.Len(t, goodCls.RepoHeads, 1)

	tmp := t.TempDir()
	ex := newExtractor(t, tmp, "eve@example.com")

	bad := ex.Extract(context.Background(), res.Tree, res.Payloads, cls.RepoHeads[0])
	assert.Equal(t, repoextract.StatusError, bad.Status)
	assert.NotEmpty(t, bad.Error)
	assert.Equal(t, "broken", bad.Name)

	ok := ex.Extract(context.Background(), goodRes.Tree, goodRes.Payloads, goodCls.RepoHeads[0])
	assert.True(t, ok.OK(), ok.Error)
	assert.Len(t, ok.UserCommits, 1)

	assertEmptyDir(t, tmp)
}
