package mermaid

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/depgraph/languages/python"
)

// Options controls Mermaid rendering.
type Options struct {
	Label       string
	Granularity int
	Cycles      [][]string
}

// Format renders the unit graph of g as a Mermaid.js flowchart.
func Format(g depgraph.DependencyGraph, opts Options) string {
	edges := depgraph.UnitEdges(g, opts.Granularity)
	units := make([]string, 0, len(edges))
	for unit := range edges {
		units = append(units, unit)
	}
	sort.Strings(units)

	var sb strings.Builder

	if opts.Label != "" {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", opts.Label))
		sb.WriteString("---\n")
	}

	sb.WriteString("flowchart LR\n")

	cycleUnits := make(map[string]bool)
	for i, cycle := range opts.Cycles {
		sb.WriteString(fmt.Sprintf("%%%% C%d: %s\n", i+1, strings.Join(cycle, ", ")))
		for _, unit := range cycle {
			cycleUnits[unit] = true
		}
	}

	// Mermaid node IDs can't contain dots.
	nodeIDs := make(map[string]string, len(units))
	for i, unit := range units {
		nodeIDs[unit] = fmt.Sprintf("n%d", i)
		label := strings.ReplaceAll(unit, "\"", "#quot;")
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", nodeIDs[unit], label))
	}

	var edgesSB strings.Builder
	edgeIndex := 0
	var cycleEdgeIndices []int
	for _, unit := range units {
		for _, dep := range edges[unit] {
			edgesSB.WriteString(fmt.Sprintf("    %s --> %s\n", nodeIDs[unit], nodeIDs[dep]))
			if cycleUnits[unit] && cycleUnits[dep] {
				cycleEdgeIndices = append(cycleEdgeIndices, edgeIndex)
			}
			edgeIndex++
		}
	}
	if edgeIndex > 0 {
		sb.WriteString("\n")
		sb.WriteString(edgesSB.String())
	}

	var testNodes []string
	for _, unit := range units {
		if python.IsTestModule(unit) {
			testNodes = append(testNodes, nodeIDs[unit])
		}
	}

	var stylesSB strings.Builder
	if len(testNodes) > 0 {
		stylesSB.WriteString("    classDef testModule fill:#90EE90,stroke:#228B22,color:#000000\n")
		stylesSB.WriteString(fmt.Sprintf("    class %s testModule\n", strings.Join(testNodes, ",")))
	}
	for _, unit := range units {
		if cycleUnits[unit] {
			stylesSB.WriteString(fmt.Sprintf("    style %s stroke:#d62728,stroke-width:3px\n", nodeIDs[unit]))
		}
	}
	for _, idx := range cycleEdgeIndices {
		stylesSB.WriteString(fmt.Sprintf("    linkStyle %d stroke:#d62728,stroke-width:3px,stroke-dasharray: 5 5\n", idx))
	}
	if stylesSB.Len() > 0 {
		sb.WriteString("\n")
		sb.WriteString(stylesSB.String())
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// GenerateURL creates a mermaid.live editor URL with the diagram embedded.
func GenerateURL(output string) (string, error) {
	state := map[string]any{
		"code":    output,
		"mermaid": map[string]string{"theme": "default"},
	}
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode mermaid state: %w", err)
	}
	return "https://mermaid.live/edit#base64:" + base64.URLEncoding.EncodeToString(data), nil
}
