package python

import (
	"strings"
)

// ResolveImport resolves every item of match into a dotted import target.
// contextDir is the dotted path of the declaring module's directory.
//
// Leading dots of a relative package are appended to contextDir verbatim;
// `from ..pkg import x` does not walk up parent packages.
func ResolveImport(match ImportMatch, contextDir string) []string {
	var resolved []string
	for _, item := range splitImportItems(match.Items) {
		resolved = append(resolved, importPrefix(match.FromPackage, item, contextDir)+item)
	}
	return resolved
}

// ResolveImports extracts and resolves all imports of a source file. When
// strict is set the tree-sitter grammar is used instead of lexical matching.
func ResolveImports(sourceCode []byte, contextDir string, strict bool) ([]string, error) {
	var resolved []string

	if strict {
		matches, err := ParseImportsAST(sourceCode)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			resolved = append(resolved, ResolveImport(match, contextDir)...)
		}
		return resolved, nil
	}

	for match := range ExtractImports(sourceCode) {
		resolved = append(resolved, ResolveImport(match, contextDir)...)
	}
	return resolved, nil
}

func importPrefix(pkg, item, contextDir string) string {
	switch {
	case strings.HasPrefix(pkg, "."):
		return contextDir + pkg + "."
	case pkg != "":
		return pkg + "."
	case strings.HasPrefix(item, "."):
		return contextDir
	default:
		return ""
	}
}

// splitImportItems splits an item list on commas and newlines. Comments are
// dropped and only the leading dotted name of each entry is kept, so aliases,
// wildcards and stray parentheses disappear.
func splitImportItems(items string) []string {
	var result []string
	for _, line := range strings.Split(items, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, entry := range strings.Split(line, ",") {
			if name := leadingDottedName(strings.TrimSpace(entry)); name != "" {
				result = append(result, name)
			}
		}
	}
	return result
}

func leadingDottedName(s string) string {
	end := 0
	for end < len(s) && isDottedNameByte(s[end]) {
		end++
	}
	return s[:end]
}

func isDottedNameByte(c byte) bool {
	return c == '.' || c == '_' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
