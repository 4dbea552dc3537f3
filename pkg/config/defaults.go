package config

import "time"

// Limit defaults.
const (
	DefaultMaxFileSize  = "4GiB"
	DefaultMaxTotalSize = "4GiB"
)

// Cache defaults.
const (
	DefaultCacheEnabled = true
	// DefaultCacheSubdir is joined onto the working directory.
	DefaultCacheSubdir = "cache/bow"
)

// Preprocess defaults. These feed the cache-key signature.
const (
	DefaultLemmatize          = true
	DefaultStopwords          = "nltk_english_default"
	DefaultPIIRemoval         = true
	DefaultNormalizeCode      = true
	DefaultMinTokenLength     = 2
	DefaultRedactionChunkSize = 100_000
)

// DefaultFilters lists the document classes submitted to preprocessing.
var DefaultFilters = []string{"text", "code"}

// Identity defaults.
const (
	DefaultMatchNoreply = false
)

// Topic model defaults.
const (
	DefaultNumTopics  = 5
	DefaultIterations = 200
	DefaultTopTerms   = 10
)

// Summarizer defaults.
const (
	DefaultSummarizerEnabled = false
	DefaultOnlineTimeout     = 30 * time.Second
	DefaultLocalTimeout      = 120 * time.Second
	DefaultMaxRetries        = 3
	DefaultLocalEndpoint     = "http://localhost:11434"
	DefaultSummarizerModel   = "llama3.1"
)

// Store defaults.
const (
	DefaultStoreEnabled = true
	DefaultStoreDSN     = "artifactminer.db"
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)
