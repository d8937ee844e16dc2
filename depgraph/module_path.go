package depgraph

import (
	"fmt"
	"path/filepath"
	"strings"
)

const sourceFileExtension = ".py"

var pathSeparatorReplacer = strings.NewReplacer("/", ".", `\`, ".")

// ModulePath converts a filesystem path into the dotted module path used as a
// graph key: the path relative to baseDir with separators replaced by dots and
// a trailing .py removed. baseDir itself maps to "".
func ModulePath(absolutePath, baseDir string) (string, error) {
	rel, err := filepath.Rel(baseDir, absolutePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve module path for %s: %w", absolutePath, err)
	}
	if rel == "." {
		return "", nil
	}

	dotted := pathSeparatorReplacer.Replace(rel)
	return strings.TrimSuffix(dotted, sourceFileExtension), nil
}

// CollapseModulePath keeps the first level dot-separated segments of path.
func CollapseModulePath(path string, level int) string {
	seen := 0
	for i := 0; i < len(path); i++ {
		if path[i] != '.' {
			continue
		}
		seen++
		if seen == level {
			return path[:i]
		}
	}
	return path
}

func topLevelSegment(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}
