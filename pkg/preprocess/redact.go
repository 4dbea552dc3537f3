package preprocess

import (
	"context"
	"regexp"
	"strings"
)

// Redactor removes personally identifying information from text.
type Redactor interface {
	Redact(ctx context.Context, text string) (string, error)
}

// RegexRedactor blanks emails, URLs, phone numbers, IPv4 addresses and
// card-like digit runs.
type RegexRedactor struct {
	patterns []*regexp.Regexp
}

// NewRegexRedactor creates the default redactor.
func NewRegexRedactor() *RegexRedactor {
	return &RegexRedactor{patterns: []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`),
		regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`),
		regexp.MustCompile(`\b(?:\d[ \-]?){13,16}\b`),
		regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
		regexp.MustCompile(`(?:\+?\d{1,2}[ .\-]?)?\(?\b\d{3}\)?[ .\-]?\d{3}[ .\-]?\d{4}\b`),
	}}
}

// Redact replaces every match with a single space.
func (r *RegexRedactor) Redact(_ context.Context, text string) (string, error) {
	for _, re := range r.patterns {
		text = re.ReplaceAllString(text, " ")
	}

	return text, nil
}

// redactTokens joins tokens, redacts the text in chunks of at most
// chunkSize bytes split on token boundaries, and re-tokenizes the result.
func redactTokens(ctx context.Context, r Redactor, tokens []string, chunkSize int) ([]string, error) {
	out := []string{}

	for _, chunk := range chunkTokens(tokens, chunkSize) {
		red, err := r.Redact(ctx, chunk)
		if err != nil {
			return nil, err
		}

		out = append(out, strings.Fields(red)...)
	}

	return out, nil
}

// chunkTokens groups space-joined tokens into strings no longer than size.
// A single token longer than size forms its own chunk.
func chunkTokens(tokens []string, size int) []string {
	var (
		chunks []string
		b      strings.Builder
	)

	for _, tok := range tokens {
		if b.Len() > 0 && b.Len()+1+len(tok) > size {
			chunks = append(chunks, b.String())
			b.Reset()
		}

		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString(tok)
	}

	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}

	return chunks
}
