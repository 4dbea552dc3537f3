package gitlib_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/gitlib"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/gitlib/gitlibtest"
)

var (
	t0    = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	alice = gitlibtest.Sig("Alice", "alice@example.com", t0)
)

func at(days int) gitlib.Signature {
	s := alice
	s.When = t0.AddDate(0, 0, days)

	return s
}

func open(t *testing.T, dir string) *gitlib.Repository {
	t.Helper()

	repo, err := gitlib.OpenRepository(dir)
	require.NoError(t, err)
	t.Cleanup(repo.Free)

	return repo
}

func changesOf(t *testing.T, repo *gitlib.Repository, hash gitlib.Hash) []gitlib.Change {
	t.Helper()

	c, err := repo.LookupCommit(hash)
	require.NoError(t, err)

	defer c.Free()

	changes, err := repo.Changes(c)
	require.NoError(t, err)

	return changes
}

func TestOpenRepository_NotFound(t *testing.T) {
	t.Parallel()

	_, err := gitlib.OpenRepository(t.TempDir())
	require.Error(t, err)
}

func TestHead_EmptyRepository(t *testing.T) {
	t.Parallel()

	r := gitlibtest.New(t, "")
	repo := open(t, r.Dir())

	_, err := repo.Head()
	require.ErrorIs(t, err, gitlib.ErrEmptyRepository)

	_, err = repo.Log()
	require.ErrorIs(t, err, gitlib.ErrEmptyRepository)
}

func TestLog_NewestFirst(t *testing.T) {
	t.Parallel()

	r := gitlibtest.New(t, "")
	r.Write("a.txt", "one\n")
	first := r.Commit("first", at(0))
	r.Write("a.txt", "one\ntwo\n")
	second := r.Commit("second", at(1))

	repo := open(t, r.Dir())

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, second, head)

	iter, err := repo.Log()
	require.NoError(t, err)

	var seen []gitlib.Hash

	var messages []string

	require.NoError(t, iter.ForEach(func(c *gitlib.Commit) error {
		seen = append(seen, c.Hash())
		messages = append(messages, c.Message())

		return nil
	}))

	assert.Equal(t, []gitlib.Hash{second, first}, seen)
	assert.Equal(t, []string{"second", "first"}, messages)

	_, err = iter.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestCommit_AuthorAndParents(t *testing.T) {
	t.Parallel()

	r := gitlibtest.New(t, "")
	r.Write("a.txt", "x")
	first := r.Commit("first", at(0))
	r.Write("a.txt", "y")
	second := r.Commit("second", at(3))

	repo := open(t, r.Dir())

	c, err := repo.LookupCommit(second)
	require.NoError(t, err)

	defer c.Free()

	author := c.Author()
	assert.Equal(t, "Alice", author.Name)
	assert.Equal(t, "alice@example.com", author.Email)
	assert.True(t, author.When.Equal(t0.AddDate(0, 0, 3)))
	assert.Equal(t, 1, c.NumParents())

	parent, err := c.Parent(0)
	require.NoError(t, err)

	defer parent.Free()

	assert.Equal(t, first, parent.Hash())

	_, err = c.Parent(1)
	require.ErrorIs(t, err, gitlib.ErrParentNotFound)
}

func TestChanges_Kinds(t *testing.T) {
	t.Parallel()

	r := gitlibtest.New(t, "")
	r.Write("keep.go", "package keep\n")
	r.Write("gone.txt", "bye\n")
	r.Write("move.md", "a long enough body that rename detection\nrecognizes it as the same file\nacross commits\n")
	root := r.Commit("root", at(0))

	r.Write("keep.go", "package keep\n\nfunc X() {}\n")
	r.Remove("gone.txt")
	r.Remove("move.md")
	r.Write("docs/moved.md", "a long enough body that rename detection\nrecognizes it as the same file\nacross commits\n")
	second := r.Commit("second", at(1))

	repo := open(t, r.Dir())

	rootChanges := changesOf(t, repo, root)
	require.Len(t, rootChanges, 3)

	for _, ch := range rootChanges {
		assert.Equal(t, gitlib.ChangeAdd, ch.Kind)
		assert.Empty(t, ch.OldPath)
		assert.False(t, ch.NewHash.IsZero())
	}

	byKind := map[gitlib.ChangeKind]gitlib.Change{}
	for _, ch := range changesOf(t, repo, second) {
		byKind[ch.Kind] = ch
	}

	require.Len(t, byKind, 3)
	assert.Equal(t, "keep.go", byKind[gitlib.ChangeModify].Path())
	assert.Equal(t, "gone.txt", byKind[gitlib.ChangeDelete].Path())
	assert.True(t, byKind[gitlib.ChangeDelete].NewHash.IsZero())
	assert.Equal(t, "move.md", byKind[gitlib.ChangeRename].OldPath)
	assert.Equal(t, "docs/moved.md", byKind[gitlib.ChangeRename].NewPath)
}

func TestLookupBlob(t *testing.T) {
	t.Parallel()

	r := gitlibtest.New(t, "")
	r.Write("a.txt", "hello\n")
	root := r.Commit("root", at(0))

	repo := open(t, r.Dir())
	changes := changesOf(t, repo, root)
	require.Len(t, changes, 1)

	data, err := repo.LookupBlob(changes[0].NewHash)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	_, err = repo.LookupBlob(gitlib.NewHash("0000000000000000000000000000000000000001"))
	require.Error(t, err)
}

func TestChangeKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "add", gitlib.ChangeAdd.String())
	assert.Equal(t, "modify", gitlib.ChangeModify.String())
	assert.Equal(t, "rename", gitlib.ChangeRename.String())
	assert.Equal(t, "delete", gitlib.ChangeDelete.String())
	assert.Equal(t, "copy", gitlib.ChangeCopy.String())
	assert.Equal(t, "unknown", gitlib.ChangeUnknown.String())
}

func TestHash(t *testing.T) {
	t.Parallel()

	const hex = "0123456789abcdef0123456789abcdef01234567"

	h := gitlib.NewHash(hex)
	assert.Equal(t, hex, h.String())
	assert.False(t, h.IsZero())
	assert.Equal(t, h, gitlib.HashFromOid(h.ToOid()))
	assert.True(t, gitlib.Hash{}.IsZero())
	assert.True(t, gitlib.HashFromOid(nil).IsZero())
}

func TestLineStats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		old, new     string
		added, delet int
	}{
		{"empty", "", "", 0, 0},
		{"add file", "", "a\nb\nc\n", 3, 0},
		{"delete file", "a\nb\n", "", 0, 2},
		{"modify", "a\nb\nc\n", "a\nB\nc\nd\n", 2, 1},
		{"unchanged", "a\nb\n", "a\nb\n", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			added, deleted := gitlib.LineStats([]byte(tt.old), []byte(tt.new))
			assert.Equal(t, tt.added, added)
			assert.Equal(t, tt.delet, deleted)
		})
	}
}
