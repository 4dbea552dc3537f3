// Package filetree holds the ingested file tree as an index-addressed arena
// together with the payload array that backs every file node.
//
// Nodes never carry their bytes. A file node points into Payloads through
// BinaryIndex; dropping a file nulls its slot without reassigning indices,
// so indices stay stable identifiers for the whole run.
package filetree

import (
	"strings"
	"time"
)

// Kind distinguishes directories, regular files and expanded archives.
type Kind uint8

// Node kinds.
const (
	KindDirectory Kind = iota
	KindFile
	KindArchive
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// Classification is written once per file node by the tree processor.
type Classification uint8

// Classifications. Directories keep Unset.
const (
	Unset Classification = iota
	Text
	Code
	RepoMetadata
	Drop
)

// String returns the wire name of the classification.
func (c Classification) String() string {
	switch c {
	case Text:
		return "text"
	case Code:
		return "code"
	case RepoMetadata:
		return "repo-metadata"
	case Drop:
		return "drop"
	case Unset:
		return ""
	default:
		return "unknown"
	}
}

// NodeID addresses a node inside a Tree.
type NodeID int

// Sentinels.
const (
	// NoNode is returned where a node lookup has no answer (e.g. the root's parent).
	NoNode NodeID = -1
	// NoPayload is the BinaryIndex of nodes that have no payload slot.
	NoPayload = -1
)

// Node is a single directory, file or archive entry.
type Node struct {
	Name      string
	Path      string
	Extension string
	Kind      Kind
	Size      int64

	// BinaryIndex is the payload slot of a file; NoPayload for directories.
	BinaryIndex    int
	Classification Classification
	IsRepoHead     bool

	// CreatedAt and LastModified are zero when unknown.
	CreatedAt    time.Time
	LastModified time.Time

	// FSBacked is false for nodes synthesised from archive entries.
	FSBacked bool

	parent   NodeID
	children []NodeID
	detached bool
}

// IsDir reports whether the node can hold children.
func (n *Node) IsDir() bool {
	return n.Kind == KindDirectory || n.Kind == KindArchive
}

// Tree is an arena of nodes rooted at NodeID(0).
type Tree struct {
	nodes []Node
}

// New creates a tree with the given root node.
func New(root Node) *Tree {
	root.parent = NoNode
	root.children = nil

	return &Tree{nodes: []Node{root}}
}

// Root returns the root identifier.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of nodes ever added, detached ones included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a pointer to the node; it stays valid until the next AddChild.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// AddChild appends n under parent and returns its identifier.
func (t *Tree) AddChild(parent NodeID, n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.parent = parent
	n.children = nil
	n.detached = false
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, id)

	return id
}

// Children returns the attached children of id in insertion order.
func (t *Tree) Children(id NodeID) []NodeID {
	out := make([]NodeID, len(t.nodes[id].children))
	copy(out, t.nodes[id].children)

	return out
}

// Parent returns the parent of id, or NoNode for the root and detached nodes.
func (t *Tree) Parent(id NodeID) NodeID {
	if t.nodes[id].detached {
		return NoNode
	}

	return t.nodes[id].parent
}

// HasAncestor reports whether any ancestor of id satisfies pred. O(depth).
func (t *Tree) HasAncestor(id NodeID, pred func(*Node) bool) bool {
	for p := t.Parent(id); p != NoNode; p = t.Parent(p) {
		if pred(&t.nodes[p]) {
			return true
		}
	}

	return false
}

// Detach unlinks id (and therefore its subtree) from its parent.
func (t *Tree) Detach(id NodeID) {
	n := &t.nodes[id]
	if n.detached || n.parent == NoNode {
		return
	}

	siblings := t.nodes[n.parent].children
	for i, c := range siblings {
		if c == id {
			t.nodes[n.parent].children = append(siblings[:i:i], siblings[i+1:]...)

			break
		}
	}

	n.detached = true
}

// Walk visits attached nodes in pre-order. Returning false from fn skips the
// node's subtree.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	t.walk(t.Root(), 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}

	for _, c := range t.Children(id) {
		t.walk(c, depth+1, fn)
	}
}

// Files returns the attached file nodes in pre-order.
func (t *Tree) Files() []NodeID {
	var out []NodeID

	t.Walk(func(id NodeID, _ int) bool {
		if t.nodes[id].Kind == KindFile {
			out = append(out, id)
		}

		return true
	})

	return out
}

// Child returns the attached child of id with the given name.
func (t *Tree) Child(id NodeID, name string) NodeID {
	for _, c := range t.nodes[id].children {
		if t.nodes[c].Name == name {
			return c
		}
	}

	return NoNode
}

// ExtensionOf returns the lower-cased final suffix of name including the dot.
// Dotfiles without a further suffix (".gitignore") have no extension.
func ExtensionOf(name string) string {
	trimmed := strings.TrimLeft(name, ".")

	idx := strings.LastIndexByte(trimmed, '.')
	if idx < 0 {
		return ""
	}

	return strings.ToLower(trimmed[idx:])
}
