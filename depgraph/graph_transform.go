package depgraph

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/djdep/depgraph/languages/python"
)

// MaxGranularity keeps every segment of a module path, disabling collapsing.
const MaxGranularity = math.MaxInt

// ErrInvalidGranularity is returned for granularities below 1.
var ErrInvalidGranularity = errors.New("granularity must be a positive integer")

// PipelineOptions selects the optional stages of ApplyPipeline.
type PipelineOptions struct {
	Granularity   int
	AllowInternal bool
	IgnoreTests   bool
}

// DefaultPipelineOptions collapses to top-level apps and drops self imports.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{Granularity: 1}
}

// ApplyPipeline turns a raw graph into the app-level view:
// external imports are removed, test modules optionally dropped, keys collapsed
// to the requested granularity, self imports optionally removed, empty nodes
// pruned and every dependency list deduplicated and sorted.
//
// The graph is modified in place where possible; use Clone to keep the input.
func ApplyPipeline(g DependencyGraph, opts PipelineOptions) (DependencyGraph, error) {
	if opts.Granularity < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidGranularity, opts.Granularity)
	}

	g = RemoveExternalImports(g)
	if opts.IgnoreTests {
		g = RemoveTestModules(g)
	}
	g = CollapseToGranularity(g, opts.Granularity)
	if !opts.AllowInternal {
		g = RemoveInternalImports(g)
	}
	g = RemoveEmptyNodes(g)
	return SortDependencies(g), nil
}

// RemoveExternalImports keeps only dependencies whose first segment is the
// first segment of some key in the graph.
func RemoveExternalImports(g DependencyGraph) DependencyGraph {
	internal := make(map[string]bool, len(g))
	for node := range g {
		internal[topLevelSegment(node)] = true
	}

	removed := 0
	for node, deps := range g {
		kept := filterDependencies(deps, func(dep string) bool {
			return internal[topLevelSegment(dep)]
		})
		removed += len(deps) - len(kept)
		g[node] = kept
	}

	slog.Debug("removed external imports", "count", removed)
	return g
}

// RemoveTestModules deletes keys that name test modules. References to them
// from other keys are left in place.
func RemoveTestModules(g DependencyGraph) DependencyGraph {
	removed := 0
	for node := range g {
		if python.IsTestModule(node) {
			delete(g, node)
			removed++
		}
	}

	slog.Debug("removed test modules", "count", removed)
	return g
}

// CollapseToGranularity rekeys the graph by the first level segments of each
// key, merging the dependency lists of keys that collapse together.
func CollapseToGranularity(g DependencyGraph, level int) DependencyGraph {
	if level == MaxGranularity {
		return g
	}

	collapsed := make(DependencyGraph, len(g))
	for _, node := range g.Nodes() {
		unit := CollapseModulePath(node, level)
		existing, ok := collapsed[unit]
		if !ok {
			existing = []string{}
		}
		collapsed[unit] = unionDependencies(existing, g[node])
	}

	slog.Debug("collapsed graph", "granularity", level, "before", len(g), "after", len(collapsed))
	return collapsed
}

// RemoveInternalImports drops dependencies that point inside their own key.
func RemoveInternalImports(g DependencyGraph) DependencyGraph {
	removed := 0
	for node, deps := range g {
		prefix := node + "."
		kept := filterDependencies(deps, func(dep string) bool {
			return !strings.HasPrefix(dep, prefix)
		})
		removed += len(deps) - len(kept)
		g[node] = kept
	}

	slog.Debug("removed internal imports", "count", removed)
	return g
}

// RemoveEmptyNodes deletes keys without dependencies.
func RemoveEmptyNodes(g DependencyGraph) DependencyGraph {
	for node, deps := range g {
		if len(deps) == 0 {
			delete(g, node)
		}
	}
	return g
}

// SortDependencies deduplicates and sorts every dependency list.
func SortDependencies(g DependencyGraph) DependencyGraph {
	for node, deps := range g {
		g[node] = unionDependencies([]string{}, deps)
		sort.Strings(g[node])
	}
	return g
}

func filterDependencies(deps []string, keep func(string) bool) []string {
	kept := deps[:0]
	for _, dep := range deps {
		if keep(dep) {
			kept = append(kept, dep)
		}
	}
	return kept
}

func unionDependencies(existing, deps []string) []string {
	seen := make(map[string]bool, len(existing)+len(deps))
	for _, dep := range existing {
		seen[dep] = true
	}
	for _, dep := range deps {
		if !seen[dep] {
			seen[dep] = true
			existing = append(existing, dep)
		}
	}
	return existing
}
