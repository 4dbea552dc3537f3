package repoextract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/classify"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

var errNoMetadataDir = errors.New("repository head has no metadata directory")

// materialize recreates the metadata subtree of head under dst/.git:
// directories are created empty and files are written from their payloads.
func materialize(tree *filetree.Tree, payloads filetree.Payloads, head filetree.NodeID, dst string) (string, error) {
	gitID := tree.Child(head, classify.VCSDir)
	if gitID == filetree.NoNode {
		return "", errNoMetadataDir
	}

	root := filepath.Join(dst, classify.VCSDir)

	err := writeNode(tree, payloads, gitID, root)
	if err != nil {
		return "", err
	}

	return root, nil
}

func writeNode(tree *filetree.Tree, payloads filetree.Payloads, id filetree.NodeID, path string) error {
	n := tree.Node(id)

	if n.IsDir() {
		mkErr := os.MkdirAll(path, dirPerm)
		if mkErr != nil {
			return fmt.Errorf("create %s: %w", path, mkErr)
		}

		for _, child := range tree.Children(id) {
			childErr := writeNode(tree, payloads, child, filepath.Join(path, tree.Node(child).Name))
			if childErr != nil {
				return childErr
			}
		}

		return nil
	}

	data, ok := payloads.Get(n.BinaryIndex)
	if !ok {
		return fmt.Errorf("payload missing for %s", n.Path)
	}

	writeErr := os.WriteFile(path, data, filePerm)
	if writeErr != nil {
		return fmt.Errorf("write %s: %w", path, writeErr)
	}

	return nil
}
