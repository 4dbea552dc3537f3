package lexer

import (
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/bash"
	"github.com/alexaandru/go-sitter-forest/c"
	"github.com/alexaandru/go-sitter-forest/c_sharp"
	"github.com/alexaandru/go-sitter-forest/cpp"
	"github.com/alexaandru/go-sitter-forest/css"
	"github.com/alexaandru/go-sitter-forest/dart"
	"github.com/alexaandru/go-sitter-forest/elixir"
	golang "github.com/alexaandru/go-sitter-forest/go"
	"github.com/alexaandru/go-sitter-forest/haskell"
	"github.com/alexaandru/go-sitter-forest/html"
	"github.com/alexaandru/go-sitter-forest/java"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/json"
	"github.com/alexaandru/go-sitter-forest/kotlin"
	"github.com/alexaandru/go-sitter-forest/lua"
	"github.com/alexaandru/go-sitter-forest/perl"
	"github.com/alexaandru/go-sitter-forest/php"
	"github.com/alexaandru/go-sitter-forest/python"
	"github.com/alexaandru/go-sitter-forest/r"
	"github.com/alexaandru/go-sitter-forest/ruby"
	"github.com/alexaandru/go-sitter-forest/rust"
	"github.com/alexaandru/go-sitter-forest/scala"
	"github.com/alexaandru/go-sitter-forest/sql"
	"github.com/alexaandru/go-sitter-forest/swift"
	"github.com/alexaandru/go-sitter-forest/toml"
	"github.com/alexaandru/go-sitter-forest/tsx"
	"github.com/alexaandru/go-sitter-forest/typescript"
	"github.com/alexaandru/go-sitter-forest/yaml"
)

// grammars maps linguist language names, as returned by the classifier's
// resolver, to tree-sitter grammars.
var grammars = map[string]func() unsafe.Pointer{
	"C":          c.GetLanguage,
	"C#":         c_sharp.GetLanguage,
	"C++":        cpp.GetLanguage,
	"CSS":        css.GetLanguage,
	"Dart":       dart.GetLanguage,
	"Elixir":     elixir.GetLanguage,
	"Go":         golang.GetLanguage,
	"HTML":       html.GetLanguage,
	"Haskell":    haskell.GetLanguage,
	"JSON":       json.GetLanguage,
	"Java":       java.GetLanguage,
	"JavaScript": javascript.GetLanguage,
	"Kotlin":     kotlin.GetLanguage,
	"Lua":        lua.GetLanguage,
	"PHP":        php.GetLanguage,
	"Perl":       perl.GetLanguage,
	"Python":     python.GetLanguage,
	"R":          r.GetLanguage,
	"Ruby":       ruby.GetLanguage,
	"Rust":       rust.GetLanguage,
	"SQL":        sql.GetLanguage,
	"Scala":      scala.GetLanguage,
	"Shell":      bash.GetLanguage,
	"Swift":      swift.GetLanguage,
	"TOML":       toml.GetLanguage,
	"TSX":        tsx.GetLanguage,
	"TypeScript": typescript.GetLanguage,
	"YAML":       yaml.GetLanguage,
}

var languageCache sync.Map

// Supported reports whether a grammar exists for lang.
func Supported(lang string) bool {
	_, ok := grammars[lang]

	return ok
}

// Languages returns the names of every supported language.
func Languages() []string {
	out := make([]string, 0, len(grammars))
	for name := range grammars {
		out = append(out, name)
	}

	return out
}

// language returns the grammar for lang, or nil.
func language(lang string) *sitter.Language {
	if cached, ok := languageCache.Load(lang); ok {
		if l, castOK := cached.(*sitter.Language); castOK {
			return l
		}
	}

	fn, ok := grammars[lang]
	if !ok {
		return nil
	}

	l := sitter.NewLanguage(fn())
	languageCache.Store(lang, l)

	return l
}
