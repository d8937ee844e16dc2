package depgraph

import (
	"errors"
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// UnitEdges returns the adjacency between units of an already collapsed graph.
// Every dependency is collapsed to level segments so that it names the unit it
// belongs to. Units that are only referenced appear as keys without edges.
func UnitEdges(g DependencyGraph, level int) map[string][]string {
	edges := make(map[string][]string, len(g))
	for _, node := range g.Nodes() {
		if _, ok := edges[node]; !ok {
			edges[node] = []string{}
		}
		for _, dep := range g[node] {
			unit := CollapseModulePath(dep, level)
			edges[node] = unionDependencies(edges[node], []string{unit})
			if _, ok := edges[unit]; !ok {
				edges[unit] = []string{}
			}
		}
	}
	for unit := range edges {
		sort.Strings(edges[unit])
	}
	return edges
}

// NewUnitGraph builds a directed graph of units from UnitEdges.
func NewUnitGraph(g DependencyGraph, level int) (graphlib.Graph[string, string], error) {
	edges := UnitEdges(g, level)
	units := make([]string, 0, len(edges))
	for unit := range edges {
		units = append(units, unit)
	}
	sort.Strings(units)

	unitGraph := graphlib.New(graphlib.StringHash, graphlib.Directed())
	for _, unit := range units {
		if err := unitGraph.AddVertex(unit); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, fmt.Errorf("failed to add unit %s: %w", unit, err)
		}
	}
	for _, unit := range units {
		for _, dep := range edges[unit] {
			if err := unitGraph.AddEdge(unit, dep); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, fmt.Errorf("failed to add edge %s -> %s: %w", unit, dep, err)
			}
		}
	}

	return unitGraph, nil
}

// FindCycles reports import cycles between units: strongly connected
// components with more than one unit, plus units importing themselves.
// Each cycle is sorted and cycles are ordered by their first unit.
func FindCycles(g DependencyGraph, level int) ([][]string, error) {
	unitGraph, err := NewUnitGraph(g, level)
	if err != nil {
		return nil, err
	}

	components, err := graphlib.StronglyConnectedComponents(unitGraph)
	if err != nil {
		return nil, fmt.Errorf("failed to find strongly connected components: %w", err)
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) == 1 {
			if _, err := unitGraph.Edge(component[0], component[0]); err != nil {
				continue
			}
		}
		cycle := append([]string{}, component...)
		sort.Strings(cycle)
		cycles = append(cycles, cycle)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles, nil
}
