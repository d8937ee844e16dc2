package depgraph

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/LegacyCodeHQ/djdep/depgraph/languages/python"
	"github.com/LegacyCodeHQ/djdep/vcs"
)

const packageMarkerFile = "__init__.py"

// DefaultSkippedDirs are directory names never descended into.
var DefaultSkippedDirs = []string{"__pycache__", ".git", ".idea", "env", "migrations"}

// BuildOptions controls how a project tree is discovered and parsed.
type BuildOptions struct {
	// Walker enumerates the tree. Defaults to the filesystem.
	Walker vcs.TreeWalker
	// ContentReader reads source files. Defaults to the filesystem.
	ContentReader vcs.ContentReader
	// ExtraSkippedDirs are skipped in addition to DefaultSkippedDirs.
	ExtraSkippedDirs []string
	// Strict parses sources with tree-sitter instead of the line grammars.
	Strict bool
	// Cache memoizes resolved imports across builds. May be nil.
	Cache *ImportCache
	// Concurrency bounds parallel file parsing. Zero means GOMAXPROCS.
	Concurrency int
}

type sourceFile struct {
	path       string
	module     string
	contextDir string
}

// BuildDependencyGraph walks rootDir and maps every Python module found inside
// a package directory to the dotted targets of its import statements.
// Directories without __init__.py are traversed but their files are not read.
func BuildDependencyGraph(rootDir string, opts BuildOptions) (DependencyGraph, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", rootDir, err)
	}

	walker := opts.Walker
	if walker == nil {
		walker = vcs.FilesystemTreeWalker()
	}
	contentReader := opts.ContentReader
	if contentReader == nil {
		contentReader = vcs.FilesystemContentReader()
	}

	sources, err := collectSourceFiles(absRoot, walker, skippedDirSet(opts.ExtraSkippedDirs))
	if err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([][]string, len(sources))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			targets, err := resolveSourceFile(src, contentReader, opts)
			if err != nil {
				return err
			}
			results[i] = targets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph := make(DependencyGraph, len(sources))
	for i, src := range sources {
		if _, ok := graph[src.module]; !ok {
			graph[src.module] = []string{}
		}
		graph[src.module] = append(graph[src.module], results[i]...)
	}

	slog.Debug("dependency graph built",
		"root", absRoot,
		"modules", len(graph),
		"imports", graph.EdgeCount(),
		"strict", opts.Strict)

	return graph, nil
}

func skippedDirSet(extra []string) map[string]bool {
	skipped := make(map[string]bool, len(DefaultSkippedDirs)+len(extra))
	for _, name := range DefaultSkippedDirs {
		skipped[name] = true
	}
	for _, name := range extra {
		skipped[name] = true
	}
	return skipped
}

func collectSourceFiles(absRoot string, walker vcs.TreeWalker, skipped map[string]bool) ([]sourceFile, error) {
	var sources []sourceFile

	skipDir := func(name string) bool { return skipped[name] }
	err := walker(absRoot, skipDir, func(dir string, files []string) error {
		if !slices.Contains(files, packageMarkerFile) {
			return nil
		}

		contextDir, err := ModulePath(dir, absRoot)
		if err != nil {
			return err
		}

		for _, name := range files {
			if filepath.Ext(name) != sourceFileExtension {
				continue
			}
			path := filepath.Join(dir, name)
			module, err := ModulePath(path, absRoot)
			if err != nil {
				return err
			}
			sources = append(sources, sourceFile{path: path, module: module, contextDir: contextDir})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	return sources, nil
}

func resolveSourceFile(src sourceFile, contentReader vcs.ContentReader, opts BuildOptions) ([]string, error) {
	content, err := contentReader(src.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.path, err)
	}

	cacheKey := importCacheKey(src.contextDir, opts.Strict, content)
	if targets, ok := opts.Cache.get(cacheKey); ok {
		return targets, nil
	}

	if !opts.Strict && slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		for _, line := range python.UnmatchedImportLines(content) {
			slog.Debug("import-like line not recognized", "module", src.module, "line", line)
		}
	}

	targets, err := python.ResolveImports(content, src.contextDir, opts.Strict)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", src.path, err)
	}

	opts.Cache.add(cacheKey, targets)
	return targets, nil
}
