// Package preprocess turns text and code documents into normalized token
// lists and caches the result per corpus and option set.
package preprocess

import (
	"errors"
	"slices"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/config"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/preprocess/lexer"
)

// Document classes accepted by Options.Filters.
const (
	FilterText = "text"
	FilterCode = "code"
)

// Stopword list identifiers.
const (
	StopwordsNLTKEnglish = "nltk_english_default"
	StopwordsNone        = "none"
)

// ErrUnknownStopwords is returned for an unrecognized stopword list id.
var ErrUnknownStopwords = errors.New("unknown stopword list")

// Options enumerates every setting that changes preprocessing output.
type Options struct {
	Lemmatize          bool
	Stopwords          string
	PIIRemoval         bool
	Filters            []string
	NormalizeCode      bool
	MinTokenLength     int
	RedactionChunkSize int
	Include            []lexer.Category
	Exclude            []lexer.Category
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Lemmatize:          config.DefaultLemmatize,
		Stopwords:          config.DefaultStopwords,
		PIIRemoval:         config.DefaultPIIRemoval,
		Filters:            slices.Clone(config.DefaultFilters),
		NormalizeCode:      config.DefaultNormalizeCode,
		MinTokenLength:     config.DefaultMinTokenLength,
		RedactionChunkSize: config.DefaultRedactionChunkSize,
		Include:            []lexer.Category{lexer.Identifier},
		Exclude:            []lexer.Category{lexer.Comment, lexer.String},
	}
}

// OptionsFromConfig converts the preprocess configuration section.
func OptionsFromConfig(c config.PreprocessConfig) Options {
	return Options{
		Lemmatize:          c.Lemmatize,
		Stopwords:          c.Stopwords,
		PIIRemoval:         c.PIIRemoval,
		Filters:            slices.Clone(c.Filters),
		NormalizeCode:      c.NormalizeCode,
		MinTokenLength:     c.MinTokenLength,
		RedactionChunkSize: c.RedactionChunkSize,
		Include:            categories(c.IncludeCategories),
		Exclude:            categories(c.ExcludeCategories),
	}
}

func categories(names []string) []lexer.Category {
	out := make([]lexer.Category, 0, len(names))
	for _, n := range names {
		out = append(out, lexer.Category(n))
	}

	return out
}

// Signature returns the option map that is part of the cache key. List
// values are sorted so option order does not change the key.
func (o Options) Signature() map[string]any {
	return map[string]any{
		"lemmatizer":           o.Lemmatize,
		"stopwords":            o.Stopwords,
		"pii_removal":          o.PIIRemoval,
		"filters":              sorted(o.Filters),
		"normalize_code":       o.NormalizeCode,
		"min_token_length":     o.MinTokenLength,
		"redaction_chunk_size": o.RedactionChunkSize,
		"include_categories":   sorted(categoryNames(o.Include)),
		"exclude_categories":   sorted(categoryNames(o.Exclude)),
	}
}

// HasFilter reports whether documents of class f are preprocessed.
func (o Options) HasFilter(f string) bool {
	return slices.Contains(o.Filters, f)
}

func categoryNames(cs []lexer.Category) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, string(c))
	}

	return out
}

func sorted(s []string) []string {
	out := slices.Clone(s)
	if out == nil {
		out = []string{}
	}

	slices.Sort(out)

	return out
}

// keeps reports whether tokens of category c pass the include and exclude
// sets. An empty include set admits every category.
func (o Options) keeps(c lexer.Category) bool {
	if slices.Contains(o.Exclude, c) {
		return false
	}

	return len(o.Include) == 0 || slices.Contains(o.Include, c)
}
