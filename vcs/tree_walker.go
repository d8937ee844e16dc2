package vcs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// VisitFunc receives one directory and the names of the regular files it contains.
type VisitFunc func(dir string, files []string) error

// TreeWalker visits every directory below root top-down, in lexical order.
// Subdirectories for which skipDir returns true are not entered.
type TreeWalker func(root string, skipDir func(name string) bool, visit VisitFunc) error

// FilesystemTreeWalker returns a TreeWalker backed by the local filesystem.
func FilesystemTreeWalker() TreeWalker {
	return walkFilesystem
}

func walkFilesystem(root string, skipDir func(name string) bool, visit VisitFunc) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", root, err)
	}

	var files []string
	var dirs []string
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			if skipDir != nil && skipDir(entry.Name()) {
				continue
			}
			dirs = append(dirs, entry.Name())
		case entry.Type().IsRegular():
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	sort.Strings(dirs)

	if err := visit(root, files); err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := walkFilesystem(filepath.Join(root, dir), skipDir, visit); err != nil {
			return err
		}
	}

	return nil
}
