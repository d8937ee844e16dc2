package depgraph

import "sort"

// FilterBetween keeps the part of g that lies on directed paths between the
// given units, in either direction. Edges are compared at level granularity.
// Units that do not occur in the graph are returned as missing.
func FilterBetween(g DependencyGraph, level int, units []string) (DependencyGraph, []string) {
	edges := UnitEdges(g, level)

	var missing []string
	for _, unit := range units {
		if _, ok := edges[unit]; !ok {
			missing = append(missing, unit)
		}
	}

	keep := FindPathNodes(edges, units)

	filtered := make(DependencyGraph)
	for node, deps := range g {
		if !keep[node] {
			continue
		}
		var kept []string
		for _, dep := range deps {
			if keep[CollapseModulePath(dep, level)] {
				kept = append(kept, dep)
			}
		}
		if len(kept) > 0 {
			filtered[node] = kept
		}
	}

	return filtered, missing
}

// FindPathNodes returns all nodes on any directed path between any pair of
// targets, including the targets themselves. Targets missing from adjacency
// are ignored.
func FindPathNodes(adjacency map[string][]string, targets []string) map[string]bool {
	var validTargets []string
	for _, target := range targets {
		if _, ok := adjacency[target]; ok {
			validTargets = append(validTargets, target)
		}
	}
	sort.Strings(validTargets)

	nodesToKeep := make(map[string]bool)
	for _, target := range validTargets {
		nodesToKeep[target] = true
	}
	if len(validTargets) < 2 {
		return nodesToKeep
	}

	forward, reverse := buildAdjacencyLists(adjacency)

	for i := 0; i < len(validTargets); i++ {
		for j := i + 1; j < len(validTargets); j++ {
			for node := range findDirectedPathNodes(forward, reverse, validTargets[i], validTargets[j]) {
				nodesToKeep[node] = true
			}
			for node := range findDirectedPathNodes(forward, reverse, validTargets[j], validTargets[i]) {
				nodesToKeep[node] = true
			}
		}
	}

	return nodesToKeep
}

// buildAdjacencyLists returns forward edges and their reverse.
func buildAdjacencyLists(adjacency map[string][]string) (forward, reverse map[string][]string) {
	forward = make(map[string][]string, len(adjacency))
	reverse = make(map[string][]string, len(adjacency))

	for node, deps := range adjacency {
		forward[node] = append(forward[node], deps...)
		for _, dep := range deps {
			reverse[dep] = append(reverse[dep], node)
		}
	}

	return forward, reverse
}

// findDirectedPathNodes returns the nodes reachable from source that can also
// reach target.
func findDirectedPathNodes(forward, reverse map[string][]string, source, target string) map[string]bool {
	result := make(map[string]bool)

	reachableFromSource := bfsReachable(forward, source)
	canReachTarget := bfsReachable(reverse, target)
	if !reachableFromSource[target] {
		return result
	}

	for node := range reachableFromSource {
		if canReachTarget[node] {
			result[node] = true
		}
	}

	return result
}

func bfsReachable(adjacency map[string][]string, source string) map[string]bool {
	reachable := map[string]bool{source: true}

	queue := []string{source}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, neighbor := range adjacency[current] {
			if !reachable[neighbor] {
				reachable[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return reachable
}
