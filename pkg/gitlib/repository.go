package gitlib

import (
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrEmptyRepository is returned when HEAD does not resolve to a commit.
var ErrEmptyRepository = errors.New("repository has no commits")

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens the repository at path. path may be a working
// directory or the metadata directory itself.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the path the repository was opened from.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the commit HEAD points at.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("%w: %w", ErrEmptyRepository, err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// LookupCommit returns the commit with the given id.
func (r *Repository) LookupCommit(hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

// LookupBlob returns the contents of the blob with the given id.
func (r *Repository) LookupBlob(hash Hash) ([]byte, error) {
	blob, err := r.repo.LookupBlob(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup blob: %w", err)
	}
	defer blob.Free()

	contents := blob.Contents()
	out := make([]byte, len(contents))
	copy(out, contents)

	return out, nil
}

// Log returns an iterator over every commit reachable from HEAD, newest
// first, parents never before their children.
func (r *Repository) Log() (*CommitIter, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	pushErr := walk.Push(head.ToOid())
	if pushErr != nil {
		walk.Free()

		return nil, fmt.Errorf("push HEAD to revwalk: %w", pushErr)
	}

	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	return &CommitIter{walk: walk, repo: r}, nil
}
