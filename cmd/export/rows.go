package export

import (
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/djdep/depgraph"
	"github.com/LegacyCodeHQ/djdep/depgraph/languages/python"
)

// moduleRows describes every unit of g, including units that are only imported.
func moduleRows(g depgraph.DependencyGraph, granularity int) []map[string]any {
	edges := depgraph.UnitEdges(g, granularity)
	units := make([]string, 0, len(edges))
	for unit := range edges {
		units = append(units, unit)
	}
	sort.Strings(units)

	rows := make([]map[string]any, 0, len(units))
	for _, unit := range units {
		_, hasImports := g[unit]
		rows = append(rows, map[string]any{
			"path":     unit,
			"name":     lastSegment(unit),
			"app":      depgraph.CollapseModulePath(unit, 1),
			"has_imports": hasImports,
			"is_test":  python.IsTestModule(unit),
		})
	}
	return rows
}

// importRows groups the dependencies of g by the unit they point to.
func importRows(g depgraph.DependencyGraph, granularity int) []map[string]any {
	var rows []map[string]any
	for _, from := range g.Nodes() {
		targetsByUnit := make(map[string][]string)
		for _, dep := range g[from] {
			unit := depgraph.CollapseModulePath(dep, granularity)
			targetsByUnit[unit] = append(targetsByUnit[unit], dep)
		}

		units := make([]string, 0, len(targetsByUnit))
		for unit := range targetsByUnit {
			units = append(units, unit)
		}
		sort.Strings(units)

		for _, unit := range units {
			rows = append(rows, map[string]any{
				"from":    from,
				"to":      unit,
				"targets": targetsByUnit[unit],
				"count":   len(targetsByUnit[unit]),
			})
		}
	}
	return rows
}

func chunkRows(rows []map[string]any, size int) [][]map[string]any {
	if size <= 0 {
		size = len(rows)
	}
	var chunks [][]map[string]any
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
