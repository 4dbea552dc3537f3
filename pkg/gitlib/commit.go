package gitlib

import (
	"errors"
	"fmt"
	"io"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrParentNotFound is returned when the requested parent commit is not found.
var ErrParentNotFound = errors.New("parent commit not found")

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

// Hash returns the commit id.
func (c *Commit) Hash() Hash {
	return HashFromOid(c.commit.Id())
}

// Author returns the commit author.
func (c *Commit) Author() Signature {
	sig := c.commit.Author()

	return Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}

// Message returns the full commit message.
func (c *Commit) Message() string {
	return c.commit.Message()
}

// NumParents returns the number of parents.
func (c *Commit) NumParents() int {
	return int(c.commit.ParentCount())
}

// Parent returns the nth parent.
func (c *Commit) Parent(n int) (*Commit, error) {
	if n < 0 {
		return nil, ErrParentNotFound
	}

	parent := c.commit.Parent(uint(n))
	if parent == nil {
		return nil, ErrParentNotFound
	}

	return &Commit{commit: parent, repo: c.repo}, nil
}

func (c *Commit) tree() (*git2go.Tree, error) {
	tree, err := c.commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}

	return tree, nil
}

// Free releases the commit.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}

// CommitIter iterates over commits.
type CommitIter struct {
	walk *git2go.RevWalk
	repo *Repository
}

// Next returns the next commit, or io.EOF when the walk is exhausted.
// The caller frees the returned commit.
func (ci *CommitIter) Next() (*Commit, error) {
	if ci.walk == nil {
		return nil, io.EOF
	}

	oid := new(git2go.Oid)

	err := ci.walk.Next(oid)
	if err != nil {
		ci.Close()

		if git2go.IsErrorCode(err, git2go.ErrorCodeIterOver) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("revwalk next: %w", err)
	}

	commit, err := ci.repo.repo.LookupCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", oid, err)
	}

	return &Commit{commit: commit, repo: ci.repo}, nil
}

// ForEach calls cb for every remaining commit and frees it afterwards.
func (ci *CommitIter) ForEach(cb func(*Commit) error) error {
	defer ci.Close()

	for {
		commit, err := ci.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		cbErr := cb(commit)
		commit.Free()

		if cbErr != nil {
			return cbErr
		}
	}
}

// Close releases the walker.
func (ci *CommitIter) Close() {
	if ci.walk != nil {
		ci.walk.Free()
		ci.walk = nil
	}
}
