package preprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/classify"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/docfmt"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/preprocess/lexer"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/textutil"
)

// Kind tells text documents from code documents.
type Kind uint8

// Document kinds.
const (
	KindText Kind = iota
	KindCode
)

// Document is one corpus entry.
type Document struct {
	Path    string
	Name    string
	Kind    Kind
	Content []byte
}

// Processor turns documents into one token list per document.
type Processor interface {
	Process(ctx context.Context, docs []Document) ([][]string, error)
}

// Preprocessor is the default Processor.
type Preprocessor struct {
	opts     Options
	resolver classify.Resolver
	lexer    lexer.Lexer
	redactor Redactor
	text     *textPipeline
	logger   *slog.Logger
}

// Option configures a Preprocessor.
type Option func(*Preprocessor)

// WithResolver sets the language resolver.
func WithResolver(r classify.Resolver) Option {
	return func(p *Preprocessor) { p.resolver = r }
}

// WithLexer sets the code lexer.
func WithLexer(l lexer.Lexer) Option {
	return func(p *Preprocessor) { p.lexer = l }
}

// WithRedactor sets the PII redactor.
func WithRedactor(r Redactor) Option {
	return func(p *Preprocessor) { p.redactor = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Preprocessor) { p.logger = l }
}

// New creates a Preprocessor for opts.
func New(opts Options, options ...Option) (*Preprocessor, error) {
	text, err := newTextPipeline(opts)
	if err != nil {
		return nil, err
	}

	p := &Preprocessor{
		opts:     opts,
		resolver: classify.EnryResolver{},
		lexer:    lexer.New(),
		redactor: NewRegexRedactor(),
		text:     text,
		logger:   slog.Default(),
	}

	for _, o := range options {
		o(p)
	}

	return p, nil
}

// Process returns one token list per document, in input order. Code that
// cannot be lexed yields an empty list at its position.
func (p *Preprocessor) Process(ctx context.Context, docs []Document) ([][]string, error) {
	out := make([][]string, len(docs))

	for i, doc := range docs {
		tokens, err := p.document(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("preprocess %s: %w", doc.Path, err)
		}

		out[i] = tokens
	}

	return out, nil
}

func (p *Preprocessor) document(ctx context.Context, doc Document) ([]string, error) {
	var raw string

	switch doc.Kind {
	case KindCode:
		ids, ok := p.identifiers(ctx, doc)
		if !ok {
			return []string{}, nil
		}

		raw = strings.Join(ids, " ")
	case KindText:
		raw = documentText(doc.Name, doc.Content)
	}

	tokens, err := p.text.tokens(raw)
	if err != nil {
		return nil, err
	}

	if !p.opts.PIIRemoval {
		return tokens, nil
	}

	return redactTokens(ctx, p.redactor, tokens, p.opts.RedactionChunkSize)
}

var wordRe = regexp.MustCompile(`[\p{L}_][\p{L}\p{N}_]*`)

// identifiers lexes a code document and returns the identifiers of the
// kept token categories. ok is false when no lexer applies.
func (p *Preprocessor) identifiers(ctx context.Context, doc Document) ([]string, bool) {
	lang := p.resolver.ByFilename(doc.Name)
	if lang == "" || !lexer.Supported(lang) {
		lang = p.resolver.ByContent(doc.Name, doc.Content)
	}

	if lang == "" {
		p.logger.DebugContext(ctx, "no lexer for code document", "path", doc.Path)

		return nil, false
	}

	tokens, err := p.lexer.Lex(ctx, lang, doc.Content)
	if err != nil {
		if !errors.Is(err, lexer.ErrUnsupportedLanguage) {
			p.logger.WarnContext(ctx, "lexing failed", "path", doc.Path, "lang", lang, "error", err)
		}

		return nil, false
	}

	var ids []string

	for _, tok := range tokens {
		if !p.opts.keeps(tok.Category) {
			continue
		}

		for _, word := range wordRe.FindAllString(tok.Text, -1) {
			if len([]rune(word)) < p.opts.MinTokenLength {
				continue
			}

			if p.opts.NormalizeCode {
				ids = append(ids, SplitIdentifier(word)...)

				continue
			}

			ids = append(ids, word)
		}
	}

	return ids, true
}

// documentText extracts readable text from a text-class document.
func documentText(name string, content []byte) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		text, _ := docfmt.PDFText(content)

		return text
	case ".docx":
		text, _ := docfmt.DOCXText(content)

		return text
	}

	text, _ := textutil.Decode(content)

	return text
}
