package formatters

import (
	"fmt"

	"github.com/LegacyCodeHQ/djdep/cmd/show/formatters/dot"
	"github.com/LegacyCodeHQ/djdep/cmd/show/formatters/mermaid"
	"github.com/LegacyCodeHQ/djdep/depgraph"
)

// RenderOptions contains optional parameters for rendering dependency graphs.
type RenderOptions struct {
	// Label is an optional title or label for the graph
	Label string
	// Granularity the graph was collapsed to. Zero means depgraph.MaxGranularity.
	Granularity int
}

func (o RenderOptions) granularity() int {
	if o.Granularity < 1 {
		return depgraph.MaxGranularity
	}
	return o.Granularity
}

// Formatter converts a dependency graph to a string representation.
type Formatter interface {
	Format(g depgraph.DependencyGraph, opts RenderOptions) (string, error)
}

// URLGenerator is implemented by formatters whose output can be opened in an
// online viewer.
type URLGenerator interface {
	GenerateURL(output string) (string, error)
}

// NewFormatter creates a Formatter for the specified format type.
func NewFormatter(format string) (Formatter, error) {
	f, ok := ParseOutputFormat(format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (valid options: %s)", format, SupportedFormats())
	}

	switch f {
	case OutputFormatJSON:
		return jsonFormatter{}, nil
	case OutputFormatYAML:
		return yamlFormatter{}, nil
	case OutputFormatDOT:
		return dotFormatter{}, nil
	case OutputFormatMermaid:
		return mermaidFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s (valid options: %s)", format, SupportedFormats())
	}
}

type dotFormatter struct{}

func (dotFormatter) Format(g depgraph.DependencyGraph, opts RenderOptions) (string, error) {
	cycles, err := depgraph.FindCycles(g, opts.granularity())
	if err != nil {
		return "", err
	}
	return dot.Format(g, dot.Options{
		Label:       opts.Label,
		Granularity: opts.granularity(),
		Cycles:      cycles,
	}), nil
}

func (dotFormatter) GenerateURL(output string) (string, error) {
	return dot.GenerateURL(output), nil
}

type mermaidFormatter struct{}

func (mermaidFormatter) Format(g depgraph.DependencyGraph, opts RenderOptions) (string, error) {
	cycles, err := depgraph.FindCycles(g, opts.granularity())
	if err != nil {
		return "", err
	}
	return mermaid.Format(g, mermaid.Options{
		Label:       opts.Label,
		Granularity: opts.granularity(),
		Cycles:      cycles,
	}), nil
}

func (mermaidFormatter) GenerateURL(output string) (string, error) {
	return mermaid.GenerateURL(output)
}
