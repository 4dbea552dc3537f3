package classify

import (
	"path"

	"github.com/src-d/enry/v2"
)

// Resolver maps a file to the name of a language lexer.
type Resolver interface {
	// ByFilename returns the language for name, or "" if none resolves.
	ByFilename(name string) string
	// ByContent guesses the language from content, or returns "".
	ByContent(name string, content []byte) string
}

// EnryResolver resolves languages with enry's filename and content strategies.
type EnryResolver struct{}

// ByFilename implements Resolver.
func (EnryResolver) ByFilename(name string) string {
	return enry.GetLanguage(path.Base(name), nil)
}

// ByContent implements Resolver. Binary content never resolves.
func (EnryResolver) ByContent(name string, content []byte) string {
	if len(content) == 0 || enry.IsBinary(content) {
		return ""
	}

	if lang, _ := enry.GetLanguageByShebang(content); lang != "" {
		return lang
	}

	return enry.GetLanguage(path.Base(name), content)
}
