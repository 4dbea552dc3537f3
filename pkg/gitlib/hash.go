// Package gitlib is a thin commit-history reader over libgit2: it opens a
// repository, walks commits from HEAD and reports per-commit file changes
// with line deltas.
package gitlib

import (
	"encoding/hex"

	git2go "github.com/libgit2/git2go/v34"
)

// HashSize is the size of a SHA-1 object id in bytes.
const HashSize = 20

// Hash is a git object id.
type Hash [HashSize]byte

// NewHash parses a hex object id. Invalid or short input yields a
// partially filled hash.
func NewHash(s string) Hash {
	var h Hash

	raw, _ := hex.DecodeString(s[:min(len(s), 2*HashSize)&^1])
	copy(h[:], raw)

	return h
}

// HashFromOid converts a libgit2 Oid to Hash.
func HashFromOid(oid *git2go.Oid) Hash {
	var h Hash
	if oid != nil {
		copy(h[:], oid[:])
	}

	return h
}

// String returns the hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// ToOid converts h to a libgit2 Oid.
func (h Hash) ToOid() *git2go.Oid {
	oid := new(git2go.Oid)
	copy(oid[:], h[:])

	return oid
}
