package python

import (
	"bytes"
	"iter"
	"regexp"
)

// ImportMatch is one structural match of an import declaration.
// FromPackage is empty for plain `import x` statements and may start with
// one or more dots for relative imports. Items is the raw item list text.
type ImportMatch struct {
	FromPackage string
	Items       string
}

var (
	// from <package> import <items> | import <items>, items not parenthesized
	singleLineImportPattern = regexp.MustCompile(`(?m)^(?:from[ \t]+([.\w]+)[ \t]+)?import[ \t]+([^(\s][^\r\n]*)`)
	// from <package> import ( <items spanning lines> )
	multiLineImportPattern = regexp.MustCompile(`(?m)^from[ \t]+([.\w]+)[ \t]+import[ \t]*\(([^)]*)\)`)
	// lines that look like import declarations
	importKeywordPattern = regexp.MustCompile(`(?m)^(?:import|from)\b[^\r\n]*`)
)

// ExtractImports scans Python source text for import declarations anchored at
// the start of a line. All single-line declarations are yielded first, then
// all parenthesized multi-line ones. Matching is purely lexical, so
// import-like text inside strings is reported too.
func ExtractImports(sourceCode []byte) iter.Seq[ImportMatch] {
	return func(yield func(ImportMatch) bool) {
		for _, m := range singleLineImportPattern.FindAllSubmatch(sourceCode, -1) {
			if !yield(ImportMatch{FromPackage: string(m[1]), Items: string(m[2])}) {
				return
			}
		}
		for _, m := range multiLineImportPattern.FindAllSubmatch(sourceCode, -1) {
			if !yield(ImportMatch{FromPackage: string(m[1]), Items: string(m[2])}) {
				return
			}
		}
	}
}

// UnmatchedImportLines returns lines that start with an import keyword but
// are not recognized by either import grammar.
func UnmatchedImportLines(sourceCode []byte) []string {
	matched := make(map[int]bool)
	for _, loc := range singleLineImportPattern.FindAllIndex(sourceCode, -1) {
		matched[loc[0]] = true
	}
	for _, loc := range multiLineImportPattern.FindAllIndex(sourceCode, -1) {
		matched[loc[0]] = true
	}

	var unmatched []string
	for _, loc := range importKeywordPattern.FindAllIndex(sourceCode, -1) {
		if matched[loc[0]] {
			continue
		}
		unmatched = append(unmatched, string(bytes.TrimSpace(sourceCode[loc[0]:loc[1]])))
	}
	return unmatched
}
