// Package classify marks repository heads in a loaded file tree and sorts
// its files into text, code, repository metadata and drops.
package classify

import (
	"log/slog"
	"slices"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/filetree"
)

// VCSDir is the name of the version-control metadata directory.
const VCSDir = ".git"

// TextExtensions are the extensions treated as prose documents.
var TextExtensions = []string{
	".txt", ".md", ".markdown", ".rst", ".pdf", ".docx", ".doc",
	".rtf", ".odt", ".tex", ".csv", ".log",
}

// Result partitions the surviving file nodes. Each slice is in tree order.
type Result struct {
	Text         []filetree.NodeID
	Code         []filetree.NodeID
	RepoHeads    []filetree.NodeID
	RepoMetadata []filetree.NodeID
	Dropped      int
}

// Processor classifies a tree in place.
type Processor struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewProcessor creates a Processor. A nil resolver uses EnryResolver.
func NewProcessor(resolver Resolver, logger *slog.Logger) *Processor {
	if resolver == nil {
		resolver = EnryResolver{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Processor{resolver: resolver, logger: logger}
}

// Process marks repository heads, classifies every file, detaches dropped
// files and nulls their payload slots.
func (p *Processor) Process(tree *filetree.Tree, payloads filetree.Payloads) Result {
	var res Result

	tree.Walk(func(id filetree.NodeID, _ int) bool {
		n := tree.Node(id)
		if n.IsDir() && IsRepoHead(tree, id) {
			n.IsRepoHead = true
			res.RepoHeads = append(res.RepoHeads, id)
		}

		return true
	})

	var drops []filetree.NodeID

	for _, id := range tree.Files() {
		n := tree.Node(id)
		n.Classification = p.classify(tree, id)

		switch n.Classification {
		case filetree.Text:
			res.Text = append(res.Text, id)
		case filetree.Code:
			res.Code = append(res.Code, id)
		case filetree.RepoMetadata:
			res.RepoMetadata = append(res.RepoMetadata, id)
		default:
			drops = append(drops, id)
		}
	}

	for _, id := range drops {
		payloads.Drop(tree.Node(id).BinaryIndex)
		tree.Detach(id)
	}

	res.Dropped = len(drops)

	p.logger.Debug("classified tree",
		"text", len(res.Text), "code", len(res.Code),
		"repo_heads", len(res.RepoHeads), "dropped", res.Dropped, "live_payloads", payloads.Live())

	return res
}

func (p *Processor) classify(tree *filetree.Tree, id filetree.NodeID) filetree.Classification {
	if tree.HasAncestor(id, isVCSDir) {
		return filetree.RepoMetadata
	}

	n := tree.Node(id)

	if slices.Contains(TextExtensions, n.Extension) {
		return filetree.Text
	}

	if p.resolver.ByFilename(n.Name) != "" {
		return filetree.Code
	}

	return filetree.Drop
}

func isVCSDir(n *filetree.Node) bool {
	return n.Kind == filetree.KindDirectory && n.Name == VCSDir
}

// IsRepoHead reports whether dir has an immediate VCS metadata child.
func IsRepoHead(tree *filetree.Tree, dir filetree.NodeID) bool {
	c := tree.Child(dir, VCSDir)

	return c != filetree.NoNode && isVCSDir(tree.Node(c))
}
