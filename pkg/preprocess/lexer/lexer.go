// Package lexer turns source code into categorized tokens by walking the
// leaves of a tree-sitter parse.
package lexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Category classifies a token.
type Category string

// Token categories.
const (
	Identifier  Category = "identifier"
	Keyword     Category = "keyword"
	Comment     Category = "comment"
	String      Category = "string"
	Number      Category = "number"
	Operator    Category = "operator"
	Punctuation Category = "punctuation"
)

// ErrUnsupportedLanguage is returned for languages without a grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Token is one lexeme.
type Token struct {
	Text     string
	Category Category
}

// Lexer tokenizes source in a named language.
type Lexer interface {
	Lex(ctx context.Context, lang string, src []byte) ([]Token, error)
}

// TreeSitter is a Lexer backed by tree-sitter grammars. It is safe for
// concurrent use.
type TreeSitter struct {
	pools sync.Map // language name -> *sync.Pool of *sitter.Parser
}

// New creates a TreeSitter lexer.
func New() *TreeSitter {
	return &TreeSitter{}
}

// Lex parses src and returns its leaf tokens in source order. Comments and
// string literals are emitted whole.
func (l *TreeSitter) Lex(ctx context.Context, lang string, src []byte) ([]Token, error) {
	var out []Token

	err := l.parse(ctx, lang, src, func(root sitter.Node) {
		collect(root, src, &out)
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Walk parses src and visits its nodes in pre-order. When visit returns
// false the children of that node are skipped. Nodes must not be retained
// after Walk returns.
func (l *TreeSitter) Walk(ctx context.Context, lang string, src []byte, visit func(n sitter.Node) bool) error {
	return l.parse(ctx, lang, src, func(root sitter.Node) {
		walk(root, visit)
	})
}

func walk(n sitter.Node, visit func(sitter.Node) bool) {
	if !visit(n) {
		return
	}

	for i := range n.ChildCount() {
		walk(n.Child(i), visit)
	}
}

// parse runs fn on the root of src's syntax tree, borrowing a pooled parser
// for lang. fn is not called for an empty tree.
func (l *TreeSitter) parse(ctx context.Context, lang string, src []byte, fn func(root sitter.Node)) error {
	pool, err := l.pool(lang)
	if err != nil {
		return err
	}

	parser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	defer pool.Put(parser)

	tree, err := parser.ParseString(ctx, nil, src)
	if err != nil {
		return fmt.Errorf("parse %s: %w", lang, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil
	}

	fn(root)

	return nil
}

func (l *TreeSitter) pool(lang string) (*sync.Pool, error) {
	if p, ok := l.pools.Load(lang); ok {
		if pool, castOK := p.(*sync.Pool); castOK {
			return pool, nil
		}
	}

	grammar := language(lang)
	if grammar == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	pool := &sync.Pool{
		New: func() any {
			p := sitter.NewParser()
			p.SetLanguage(grammar)

			return p
		},
	}

	actual, _ := l.pools.LoadOrStore(lang, pool)

	return actual.(*sync.Pool), nil //nolint:forcetypeassert // only *sync.Pool is stored.
}

func collect(n sitter.Node, src []byte, out *[]Token) {
	typ := n.Type()

	switch {
	case strings.Contains(typ, "comment"):
		emit(out, n.Content(src), Comment)

		return
	case n.IsNamed() && isStringType(typ):
		emit(out, n.Content(src), String)

		return
	}

	if n.ChildCount() == 0 {
		text := n.Content(src)
		emit(out, text, leafCategory(typ, text))

		return
	}

	for i := range n.ChildCount() {
		collect(n.Child(i), src, out)
	}
}

func emit(out *[]Token, text string, cat Category) {
	if strings.TrimSpace(text) == "" {
		return
	}

	*out = append(*out, Token{Text: text, Category: cat})
}

func isStringType(typ string) bool {
	return strings.Contains(typ, "string") ||
		strings.HasSuffix(typ, "char_literal") ||
		strings.HasSuffix(typ, "character_literal") ||
		typ == "rune_literal" ||
		typ == "heredoc_body"
}

var identifierTypes = map[string]bool{
	"name":          true,
	"word":          true,
	"constant":      true,
	"variable_name": true,
	"field_name":    true,
}

var numberMarkers = []string{"integer", "float", "number", "int_literal", "decimal", "hex"}

const punctuationChars = "()[]{},;.:"

func leafCategory(typ, text string) Category {
	if strings.Contains(typ, "identifier") || identifierTypes[typ] {
		return Identifier
	}

	for _, m := range numberMarkers {
		if strings.Contains(typ, m) {
			return Number
		}
	}

	if isWord(text) {
		return Keyword
	}

	if strings.Trim(text, punctuationChars) == "" {
		return Punctuation
	}

	return Operator
}

func isWord(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !unicode.IsLetter(r) && r != '_' {
			return false
		}
	}

	return true
}
