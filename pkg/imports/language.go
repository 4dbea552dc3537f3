package imports

import (
	"context"
	"path"
	"slices"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/preprocess/lexer"
)

// Language names.
const (
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangJava       = "java"
	LangCSharp     = "csharp"
	LangGo         = "go"
	LangRust       = "rust"
	LangRuby       = "ruby"
	LangPHP        = "php"
	LangSwift      = "swift"
	LangKotlin     = "kotlin"
	LangC          = "c"
)

// language pairs an import language with the grammar that parses it.
type language struct {
	name    string
	grammar string
}

var languageByExt = map[string]language{
	".py":    {LangPython, "Python"},
	".js":    {LangJavaScript, "JavaScript"},
	".jsx":   {LangJavaScript, "JavaScript"},
	".mjs":   {LangJavaScript, "JavaScript"},
	".cjs":   {LangJavaScript, "JavaScript"},
	".ts":    {LangJavaScript, "TypeScript"},
	".tsx":   {LangJavaScript, "TSX"},
	".java":  {LangJava, "Java"},
	".cs":    {LangCSharp, "C#"},
	".go":    {LangGo, "Go"},
	".rs":    {LangRust, "Rust"},
	".rb":    {LangRuby, "Ruby"},
	".php":   {LangPHP, "PHP"},
	".swift": {LangSwift, "Swift"},
	".kt":    {LangKotlin, "Kotlin"},
	".kts":   {LangKotlin, "Kotlin"},
	".c":     {LangC, "C"},
	".h":     {LangC, "C"},
	".cc":    {LangC, "C++"},
	".cpp":   {LangC, "C++"},
	".cxx":   {LangC, "C++"},
	".hpp":   {LangC, "C++"},
	".hh":    {LangC, "C++"},
}

// LanguageOf returns the import language for filename, or "".
func LanguageOf(filename string) string {
	return languageByExt[strings.ToLower(path.Ext(filename))].name
}

// nodeFunc inspects one syntax node. It returns the raw import names the
// node declares and whether its children should still be visited.
type nodeFunc func(n sitter.Node, src []byte) (names []string, descend bool)

var extractors = map[string]nodeFunc{
	LangPython:     pythonImports,
	LangJavaScript: javaScriptImports,
	LangJava:       javaImports,
	LangKotlin:     kotlinImports,
	LangCSharp:     cSharpImports,
	LangGo:         goImports,
	LangRust:       rustImports,
	LangRuby:       rubyImports,
	LangPHP:        phpImports,
	LangSwift:      swiftImports,
	LangC:          cImports,
}

var parser = lexer.New()

// extract walks the syntax tree of src and collects the raw names of every
// import node. Unparsable sources yield nothing.
func extract(lang language, src []byte) []string {
	inspect := extractors[lang.name]

	var out []string

	err := parser.Walk(context.Background(), lang.grammar, src, func(n sitter.Node) bool {
		names, descend := inspect(n, src)
		out = append(out, names...)

		return descend
	})
	if err != nil {
		return nil
	}

	return out
}

func pythonImports(n sitter.Node, src []byte) ([]string, bool) {
	switch n.Type() {
	case "import_statement":
		var out []string

		for idx := range n.NamedChildCount() {
			child := n.NamedChild(idx)
			if child.Type() == "aliased_import" {
				child = child.ChildByFieldName("name")
			}

			if !child.IsNull() && child.Type() == "dotted_name" {
				out = append(out, firstSegment(child.Content(src), "."))
			}
		}

		return out, false
	case "import_from_statement":
		// Relative imports ("from . import x") are local modules.
		mod := n.ChildByFieldName("module_name")
		if mod.IsNull() || mod.Type() != "dotted_name" {
			return nil, false
		}

		return []string{firstSegment(mod.Content(src), ".")}, false
	}

	return nil, true
}

func javaScriptImports(n sitter.Node, src []byte) ([]string, bool) {
	switch n.Type() {
	case "import_statement":
		// Also covers TypeScript's `import x = require("y")`.
		if s, ok := firstOfType(n, "string"); ok {
			return jsModule(unquote(s.Content(src))), false
		}

		return nil, false
	case "export_statement":
		if s := n.ChildByFieldName("source"); !s.IsNull() {
			return jsModule(unquote(s.Content(src))), false
		}
	case "call_expression":
		fn := n.ChildByFieldName("function")
		if fn.IsNull() || (fn.Content(src) != "require" && fn.Content(src) != "import") {
			break
		}

		args := n.ChildByFieldName("arguments")
		if !args.IsNull() && args.NamedChildCount() > 0 {
			if arg := args.NamedChild(0); arg.Type() == "string" {
				return jsModule(unquote(arg.Content(src))), true
			}
		}
	}

	return nil, true
}

// jsModule reduces a module specifier to its package: scoped packages keep
// their scope, relative and absolute paths are dropped.
func jsModule(spec string) []string {
	if spec == "" || strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		return nil
	}

	spec = strings.TrimPrefix(spec, "node:")

	if strings.HasPrefix(spec, "@") {
		scope, rest, ok := strings.Cut(spec, "/")
		if ok {
			spec = scope + "/" + firstSegment(rest, "/")
		}

		return []string{spec}
	}

	return []string{firstSegment(spec, "/")}
}

func javaImports(n sitter.Node, src []byte) ([]string, bool) {
	if n.Type() != "import_declaration" {
		return nil, true
	}

	if name, ok := firstOfType(n, "scoped_identifier", "identifier"); ok {
		return []string{dottedRoot(name.Content(src))}, false
	}

	return nil, false
}

func kotlinImports(n sitter.Node, src []byte) ([]string, bool) {
	typ := n.Type()
	if typ != "import_header" && (typ != "import" || !n.IsNamed()) {
		return nil, true
	}

	if name, ok := firstOfType(n, "identifier", "qualified_identifier"); ok {
		return []string{dottedRoot(name.Content(src))}, false
	}

	return nil, false
}

func cSharpImports(n sitter.Node, src []byte) ([]string, bool) {
	if n.Type() != "using_directive" {
		return nil, true
	}

	// In `using Alias = Target;` the target is the last name.
	var target sitter.Node

	found := false

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if child.Type() == "qualified_name" || child.Type() == "identifier" {
			target, found = child, true
		}
	}

	if !found {
		return nil, false
	}

	return []string{firstSegment(target.Content(src), ".")}, false
}

func goImports(n sitter.Node, src []byte) ([]string, bool) {
	if n.Type() != "import_spec" {
		return nil, true
	}

	spec := n.ChildByFieldName("path")
	if spec.IsNull() {
		return nil, false
	}

	return []string{goRoot(unquote(spec.Content(src)))}, false
}

// goRoot reduces a Go import path to its module root: host/owner/repo for
// hosted paths, the first element for the standard library.
func goRoot(spec string) string {
	parts := strings.Split(spec, "/")
	if !strings.Contains(parts[0], ".") {
		return parts[0]
	}

	const hostedDepth = 3
	if len(parts) > hostedDepth {
		parts = parts[:hostedDepth]
	}

	return strings.Join(parts, "/")
}

var rustLocalRoots = map[string]bool{"crate": true, "self": true, "super": true}

func rustImports(n sitter.Node, src []byte) ([]string, bool) {
	var target sitter.Node

	switch n.Type() {
	case "use_declaration":
		target = n.ChildByFieldName("argument")
	case "extern_crate_declaration":
		target = n.ChildByFieldName("name")
	default:
		return nil, true
	}

	if target.IsNull() {
		return nil, false
	}

	root := strings.TrimPrefix(strings.TrimSpace(target.Content(src)), "::")
	if idx := strings.IndexAny(root, ":{ ,;"); idx >= 0 {
		root = root[:idx]
	}

	if root == "" || rustLocalRoots[root] {
		return nil, false
	}

	return []string{root}, false
}

func rubyImports(n sitter.Node, src []byte) ([]string, bool) {
	if n.Type() != "call" && n.Type() != "method_call" {
		return nil, true
	}

	method := n.ChildByFieldName("method")
	if method.IsNull() || method.Content(src) != "require" {
		return nil, true
	}

	args := n.ChildByFieldName("arguments")
	if args.IsNull() {
		return nil, false
	}

	s, ok := firstOfType(args, "string")
	if !ok {
		return nil, false
	}

	spec := unquote(s.Content(src))
	if spec == "" || strings.HasPrefix(spec, ".") {
		return nil, false
	}

	return []string{firstSegment(spec, "/")}, false
}

func phpImports(n sitter.Node, src []byte) ([]string, bool) {
	if n.Type() != "namespace_use_declaration" {
		return nil, true
	}

	var out []string

	for idx := range n.NamedChildCount() {
		clause := n.NamedChild(idx)
		if clause.Type() != "namespace_use_clause" {
			continue
		}

		if name, ok := firstOfType(clause, "qualified_name", "name"); ok {
			out = append(out, firstSegment(strings.TrimPrefix(name.Content(src), `\`), `\`))
		}
	}

	if len(out) == 0 {
		if name, ok := firstOfType(n, "qualified_name", "name"); ok {
			out = append(out, firstSegment(strings.TrimPrefix(name.Content(src), `\`), `\`))
		}
	}

	return out, false
}

func swiftImports(n sitter.Node, src []byte) ([]string, bool) {
	if n.Type() != "import_declaration" {
		return nil, true
	}

	if name, ok := firstOfType(n, "identifier"); ok {
		return []string{firstSegment(name.Content(src), ".")}, false
	}

	return nil, false
}

func cImports(n sitter.Node, src []byte) ([]string, bool) {
	if n.Type() != "preproc_include" {
		return nil, true
	}

	// Quoted includes are project headers; only <...> names a library.
	header := n.ChildByFieldName("path")
	if header.IsNull() || header.Type() != "system_lib_string" {
		return nil, false
	}

	name := firstSegment(strings.Trim(header.Content(src), "<>"), "/")

	return []string{strings.TrimSuffix(name, path.Ext(name))}, false
}

// firstOfType returns the first node below n, in pre-order, whose type is
// one of types.
func firstOfType(n sitter.Node, types ...string) (sitter.Node, bool) {
	for idx := range n.ChildCount() {
		child := n.Child(idx)
		if slices.Contains(types, child.Type()) {
			return child, true
		}

		if found, ok := firstOfType(child, types...); ok {
			return found, true
		}
	}

	return sitter.Node{}, false
}

// reverseDomainRoots are leading package segments too generic on their own.
var reverseDomainRoots = map[string]bool{
	"com": true, "org": true, "net": true, "io": true, "edu": true,
	"gov": true, "dev": true, "co": true, "me": true,
}

func dottedRoot(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && reverseDomainRoots[strings.ToLower(parts[0])] {
		return parts[0] + "." + parts[1]
	}

	return parts[0]
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}

func firstSegment(s, sep string) string {
	head, _, _ := strings.Cut(s, sep)

	return head
}
