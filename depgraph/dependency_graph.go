package depgraph

import "sort"

// DependencyGraph maps a dotted module path to the dotted import targets it declares.
type DependencyGraph map[string][]string

// Nodes returns the graph keys in lexical order.
func (g DependencyGraph) Nodes() []string {
	nodes := make([]string, 0, len(g))
	for node := range g {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// Clone returns a deep copy of the graph.
func (g DependencyGraph) Clone() DependencyGraph {
	clone := make(DependencyGraph, len(g))
	for node, deps := range g {
		clone[node] = append([]string{}, deps...)
	}
	return clone
}

// EdgeCount returns the total number of dependency entries.
func (g DependencyGraph) EdgeCount() int {
	count := 0
	for _, deps := range g {
		count += len(deps)
	}
	return count
}
