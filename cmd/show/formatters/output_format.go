package formatters

import (
	"sort"
	"strings"
)

// OutputFormat represents an output format type
type OutputFormat string

const (
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatYAML    OutputFormat = "yaml"
	OutputFormatDOT     OutputFormat = "dot"
	OutputFormatMermaid OutputFormat = "mermaid"
)

var outputFormats = map[string]OutputFormat{
	"json":    OutputFormatJSON,
	"yaml":    OutputFormatYAML,
	"yml":     OutputFormatYAML,
	"dot":     OutputFormatDOT,
	"mermaid": OutputFormatMermaid,
}

// String returns the string representation of the format
func (f OutputFormat) String() string {
	return string(f)
}

// ParseOutputFormat parses a format name, ignoring case.
func ParseOutputFormat(format string) (OutputFormat, bool) {
	f, ok := outputFormats[strings.ToLower(strings.TrimSpace(format))]
	return f, ok
}

// SupportedFormats returns the canonical format names, comma separated.
func SupportedFormats() string {
	seen := make(map[OutputFormat]bool)
	var names []string
	for _, f := range outputFormats {
		if !seen[f] {
			seen[f] = true
			names = append(names, f.String())
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
