package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ChangeKind classifies how a file changed in a commit.
type ChangeKind uint8

// Change kinds.
const (
	ChangeUnknown ChangeKind = iota
	ChangeAdd
	ChangeModify
	ChangeRename
	ChangeDelete
	ChangeCopy
)

// String returns the lower-case name of the kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeModify:
		return "modify"
	case ChangeRename:
		return "rename"
	case ChangeDelete:
		return "delete"
	case ChangeCopy:
		return "copy"
	case ChangeUnknown:
		return "unknown"
	}

	return "unknown"
}

// Change is one file touched by a commit.
type Change struct {
	Kind    ChangeKind
	OldPath string
	NewPath string
	OldHash Hash
	NewHash Hash
}

// Path returns the path after the change, or the old path for deletions.
func (c Change) Path() string {
	if c.NewPath != "" {
		return c.NewPath
	}

	return c.OldPath
}

// Changes returns the files changed by c relative to its first parent,
// with rename and copy detection. Root commits are diffed against the
// empty tree. Merge commits report no changes.
func (r *Repository) Changes(c *Commit) ([]Change, error) {
	if c.NumParents() > 1 {
		return nil, nil
	}

	newTree, err := c.tree()
	if err != nil {
		return nil, err
	}
	defer newTree.Free()

	var oldTree *git2go.Tree

	if c.NumParents() == 1 {
		parent, parentErr := c.Parent(0)
		if parentErr != nil {
			return nil, parentErr
		}
		defer parent.Free()

		oldTree, err = parent.tree()
		if err != nil {
			return nil, err
		}
		defer oldTree.Free()

		if oldTree.Id().Equal(newTree.Id()) {
			return nil, nil
		}
	}

	return r.diffTrees(oldTree, newTree)
}

func (r *Repository) diffTrees(oldTree, newTree *git2go.Tree) ([]Change, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	diff, err := r.repo.DiffTreeToTree(oldTree, newTree, &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	defer func() {
		_ = diff.Free()
	}()

	findOpts, err := git2go.DefaultDiffFindOptions()
	if err != nil {
		return nil, fmt.Errorf("get find options: %w", err)
	}

	findOpts.Flags = git2go.DiffFindRenames | git2go.DiffFindCopies

	findErr := diff.FindSimilar(&findOpts)
	if findErr != nil {
		return nil, fmt.Errorf("find renames: %w", findErr)
	}

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("get num deltas: %w", err)
	}

	changes := make([]Change, 0, numDeltas)

	for idx := range numDeltas {
		delta, deltaErr := diff.Delta(idx)
		if deltaErr != nil {
			return nil, fmt.Errorf("get delta %d: %w", idx, deltaErr)
		}

		kind, ok := kindOf(delta.Status)
		if !ok {
			continue
		}

		change := Change{Kind: kind}

		if kind != ChangeAdd {
			change.OldPath = delta.OldFile.Path
			change.OldHash = HashFromOid(delta.OldFile.Oid)
		}

		if kind != ChangeDelete {
			change.NewPath = delta.NewFile.Path
			change.NewHash = HashFromOid(delta.NewFile.Oid)
		}

		changes = append(changes, change)
	}

	return changes, nil
}

func kindOf(status git2go.Delta) (ChangeKind, bool) {
	switch status {
	case git2go.DeltaAdded:
		return ChangeAdd, true
	case git2go.DeltaModified:
		return ChangeModify, true
	case git2go.DeltaRenamed:
		return ChangeRename, true
	case git2go.DeltaDeleted:
		return ChangeDelete, true
	case git2go.DeltaCopied:
		return ChangeCopy, true
	case git2go.DeltaUnmodified, git2go.DeltaIgnored, git2go.DeltaUntracked:
		return ChangeUnknown, false
	case git2go.DeltaTypeChange, git2go.DeltaUnreadable, git2go.DeltaConflicted:
		return ChangeUnknown, true
	}

	return ChangeUnknown, true
}
