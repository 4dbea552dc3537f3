package preprocess

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
)

// lemmaTags are the Penn Treebank tag prefixes whose words are reduced to
// their dictionary form. Proper nouns, numbers and symbols are kept.
var lemmaTags = []string{"NN", "VB", "JJ", "RB"}

// textPipeline tokenizes, tags, strips stopwords and lemmatizes free text.
type textPipeline struct {
	stopwords  map[string]bool
	lemmatizer *golem.Lemmatizer
}

func newTextPipeline(opts Options) (*textPipeline, error) {
	stop, err := stopwordSet(opts.Stopwords)
	if err != nil {
		return nil, err
	}

	tp := &textPipeline{stopwords: stop}

	if opts.Lemmatize {
		lem, lemErr := golem.New(en.New())
		if lemErr != nil {
			return nil, fmt.Errorf("load lemmatizer: %w", lemErr)
		}

		tp.lemmatizer = lem
	}

	return tp, nil
}

// tokens returns the normalized tokens of text in order.
func (tp *textPipeline) tokens(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
		prose.WithTagging(tp.lemmatizer != nil),
	)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	out := []string{}

	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if !hasLetter(word) || tp.stopwords[word] {
			continue
		}

		if tp.lemmatizer != nil && lemmatizable(tok.Tag) {
			word = tp.lemmatizer.LemmaLower(word)
		}

		out = append(out, word)
	}

	return out, nil
}

func lemmatizable(tag string) bool {
	if tag == "NNP" || tag == "NNPS" {
		return false
	}

	for _, prefix := range lemmaTags {
		if strings.HasPrefix(tag, prefix) {
			return true
		}
	}

	return false
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
