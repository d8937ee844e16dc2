package formatters

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LegacyCodeHQ/djdep/depgraph"
)

type yamlFormatter struct{}

// Format renders the graph as a YAML mapping of module to dependency list.
func (yamlFormatter) Format(g depgraph.DependencyGraph, _ RenderOptions) (string, error) {
	if g == nil {
		g = depgraph.DependencyGraph{}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(map[string][]string(g)); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode yaml: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
