package formatters

import (
	"encoding/json"

	"github.com/LegacyCodeHQ/djdep/depgraph"
)

type jsonFormatter struct{}

// Format renders the graph as indented JSON. Keys are emitted in sorted order.
func (jsonFormatter) Format(g depgraph.DependencyGraph, _ RenderOptions) (string, error) {
	if g == nil {
		g = depgraph.DependencyGraph{}
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
