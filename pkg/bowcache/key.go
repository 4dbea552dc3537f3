package bowcache

import (
	"bytes"
	"crypto/md5" //nolint:gosec // corpus fingerprint, not a security boundary.
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Sentinels substituted for missing key fields.
const (
	NoRepo   = "no_repo"
	NoCommit = "no_commit"
)

const keySeparator = "|"

// Key identifies one cached artifact: the corpus, the commit it was taken
// from, and the preprocessing options that shaped the tokens.
type Key struct {
	CorpusID   string
	HeadCommit string
	Signature  map[string]any
}

// Digest returns the hex SHA-256 of "corpus|commit|signature_json". The
// signature is serialized as compact JSON with sorted keys, so insertion
// order does not affect the result.
func (k Key) Digest() (string, error) {
	corpus := k.CorpusID
	if corpus == "" {
		corpus = NoRepo
	}

	commit := k.HeadCommit
	if commit == "" {
		commit = NoCommit
	}

	sig, err := CanonicalJSON(k.Signature)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(corpus + keySeparator + commit + keySeparator + sig))

	return hex.EncodeToString(sum[:]), nil
}

// CanonicalJSON renders sig with sorted keys and no insignificant
// whitespace. A nil or empty map renders as "{}".
func CanonicalJSON(sig map[string]any) (string, error) {
	if len(sig) == 0 {
		return "{}", nil
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(sig)
	if err != nil {
		return "", fmt.Errorf("encode signature: %w", err)
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// CorpusID fingerprints a corpus by the ordered list of its file paths.
func CorpusID(paths []string) string {
	sum := md5.Sum([]byte(strings.Join(paths, keySeparator))) //nolint:gosec // fingerprint only.

	return hex.EncodeToString(sum[:])
}
