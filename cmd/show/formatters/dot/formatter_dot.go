package dot

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/depgraph/languages/python"
)

// Options controls DOT rendering.
type Options struct {
	// Label is an optional title for the graph.
	Label string
	// Granularity the graph was collapsed to; dependencies are drawn as edges
	// to the unit they belong to.
	Granularity int
	// Cycles lists units that import each other.
	Cycles [][]string
}

// Format renders the unit graph of g as Graphviz DOT.
func Format(g depgraph.DependencyGraph, opts Options) string {
	edges := depgraph.UnitEdges(g, opts.Granularity)
	units := sortedUnits(edges)

	cycleUnits := make(map[string]bool)
	for _, cycle := range opts.Cycles {
		for _, unit := range cycle {
			cycleUnits[unit] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("digraph dependencies {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")

	if opts.Label != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", opts.Label))
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
		sb.WriteString("  fontsize=10;\n")
		sb.WriteString("  fontname=Courier;\n")
	}
	sb.WriteString("\n")

	for _, unit := range units {
		style := "filled"
		if _, ok := g[unit]; !ok {
			style = "filled,dashed"
		}
		sb.WriteString(fmt.Sprintf("  %q [style=%q, fillcolor=%s];\n", unit, style, unitColor(unit, cycleUnits)))
	}
	if len(units) > 0 {
		sb.WriteString("\n")
	}

	for _, unit := range units {
		for _, dep := range edges[unit] {
			if cycleUnits[unit] && cycleUnits[dep] {
				sb.WriteString(fmt.Sprintf("  %q -> %q [color=red];\n", unit, dep))
				continue
			}
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", unit, dep))
		}
	}

	sb.WriteString("}")
	return sb.String()
}

// GenerateURL creates a GraphvizOnline URL with the DOT graph embedded.
func GenerateURL(output string) string {
	return fmt.Sprintf("https://dreampuf.github.io/GraphvizOnline/?engine=dot#%s", url.PathEscape(output))
}

func unitColor(unit string, cycleUnits map[string]bool) string {
	switch {
	case cycleUnits[unit]:
		return "lightpink"
	case python.IsTestModule(unit):
		return "lightgreen"
	default:
		return "white"
	}
}

func sortedUnits(edges map[string][]string) []string {
	g := make(depgraph.DependencyGraph, len(edges))
	for unit, deps := range edges {
		g[unit] = deps
	}
	return g.Nodes()
}
