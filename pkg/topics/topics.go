// Package topics fits topic models over bag-of-words corpora.
package topics

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// Defaults mirror the configuration defaults.
const (
	DefaultNumTopics  = 5
	DefaultIterations = 200
	DefaultTopTerms   = 10
)

// Errors returned by Fit.
var (
	ErrNoTopics     = errors.New("number of topics must be positive")
	ErrEmptyCorpus  = errors.New("corpus has no tokens")
	ErrInvalidPrior = errors.New("priors must be positive")
)

// TermWeight is one term of a topic and its probability under that topic.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Model is a fitted topic model.
// DocTopics[i] is the topic distribution of the i-th input document;
// TopicTerms[k] lists the heaviest terms of topic k, heaviest first.
type Model struct {
	DocTopics  [][]float64    `json:"doc_topic_vectors"`
	TopicTerms [][]TermWeight `json:"topic_term_vectors"`
}

// Modeler fits a topic model. Implementations must be deterministic for a
// given seed.
type Modeler interface {
	Fit(docs [][]string, seed uint64) (Model, error)
}

// SeedFromDigest derives a sampler seed from a hex digest such as a cache
// key digest. Digests shorter than eight bytes or not hex yield zero.
func SeedFromDigest(digest string) uint64 {
	raw, err := hex.DecodeString(digest)
	if err != nil || len(raw) < 8 {
		return 0
	}

	return binary.BigEndian.Uint64(raw[:8])
}
