package preprocess

import (
	"strings"
	"unicode"
)

// SplitIdentifier splits an identifier on snake_case and camelCase
// boundaries and lower-cases the pieces. Acronyms stay whole:
// "HTTPServerError" yields http, server, error.
func SplitIdentifier(id string) []string {
	var out []string

	chunks := strings.FieldsFunc(id, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, chunk := range chunks {
		for _, part := range splitCamel(chunk) {
			out = append(out, strings.ToLower(part))
		}
	}

	return out
}

func splitCamel(s string) []string {
	runes := []rune(s)

	var out []string

	start := 0

	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]

		var next rune
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		lowerToUpper := (unicode.IsLower(prev) || unicode.IsDigit(prev)) && unicode.IsUpper(cur)
		acronymEnd := unicode.IsUpper(prev) && unicode.IsUpper(cur) && unicode.IsLower(next)

		if lowerToUpper || acronymEnd {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}

	return append(out, string(runes[start:]))
}
