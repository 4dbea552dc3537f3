// Package gitlibtest builds throwaway git repositories for tests.
package gitlibtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/require"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/gitlib"
)

// Repo is a repository with a working directory under t.TempDir().
type Repo struct {
	t      testing.TB
	dir    string
	native *git2go.Repository
}

// New initializes an empty repository inside a fresh temp dir. If name is
// not empty the working directory is <tmp>/<name>.
func New(t testing.TB, name string) *Repo {
	t.Helper()

	dir := t.TempDir()
	if name != "" {
		dir = filepath.Join(dir, name)
	}

	native, err := git2go.InitRepository(dir, false)
	require.NoError(t, err)

	t.Cleanup(native.Free)

	return &Repo{t: t, dir: dir, native: native}
}

// Dir returns the working directory.
func (r *Repo) Dir() string {
	return r.dir
}

// Write creates or replaces a file in the working directory.
func (r *Repo) Write(name, content string) {
	r.t.Helper()

	path := filepath.Join(r.dir, filepath.FromSlash(name))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))
}

// Remove deletes a file from the working directory.
func (r *Repo) Remove(name string) {
	r.t.Helper()

	require.NoError(r.t, os.Remove(filepath.Join(r.dir, filepath.FromSlash(name))))
}

// Commit stages every change (deletions included) and commits it on HEAD
// as author at when.
func (r *Repo) Commit(message string, author gitlib.Signature) gitlib.Hash {
	r.t.Helper()

	index, err := r.native.Index()
	require.NoError(r.t, err)

	defer index.Free()

	require.NoError(r.t, index.AddAll([]string{"*"}, git2go.IndexAddDefault, nil))
	require.NoError(r.t, index.UpdateAll([]string{"*"}, nil))
	require.NoError(r.t, index.Write())

	treeID, err := index.WriteTree()
	require.NoError(r.t, err)

	tree, err := r.native.LookupTree(treeID)
	require.NoError(r.t, err)

	defer tree.Free()

	when := author.When
	if when.IsZero() {
		when = time.Now()
	}

	sig := &git2go.Signature{Name: author.Name, Email: author.Email, When: when}

	var parents []*git2go.Commit

	head, headErr := r.native.Head()
	if headErr == nil {
		parent, lookupErr := r.native.LookupCommit(head.Target())
		require.NoError(r.t, lookupErr)

		parents = append(parents, parent)

		head.Free()
	}

	oid, err := r.native.CreateCommit("HEAD", sig, sig, message, tree, parents...)
	require.NoError(r.t, err)

	for _, p := range parents {
		p.Free()
	}

	return gitlib.HashFromOid(oid)
}

// Sig returns a signature for name and email at when.
func Sig(name, email string, when time.Time) gitlib.Signature {
	return gitlib.Signature{Name: name, Email: email, When: when}
}
