package git

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/LegacyCodeHQ/djdep/vcs"
)

// CommitTree exposes the tree of a single commit through the vcs walker and
// reader contracts, so a project can be analyzed as it was at that commit.
type CommitTree struct {
	repoRoot string
	commitID string

	// files maps a repo-relative directory (slash separated, "" for the root)
	// to the names of the files it contains.
	files map[string][]string
	// dirs maps a repo-relative directory to its immediate subdirectory names.
	dirs map[string][]string

	mu       sync.RWMutex
	reported map[string]string
}

// NewCommitTree lists every file of commitID using git ls-tree.
func NewCommitTree(repoPath, commitID string) (*CommitTree, error) {
	if err := ValidateCommit(repoPath, commitID); err != nil {
		return nil, err
	}

	repoRoot, err := GetRepositoryRoot(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository root: %w", err)
	}

	stdout, stderr, err := runGitCommand(repoRoot, "ls-tree", "-r", "-z", "--name-only", commitID)
	if err != nil {
		return nil, gitCommandError(err, stderr)
	}

	t := &CommitTree{
		repoRoot: repoRoot,
		commitID: commitID,
		files:    make(map[string][]string),
		dirs:     make(map[string][]string),
		reported: make(map[string]string),
	}

	for _, raw := range bytes.Split(stdout, []byte{0}) {
		name := string(raw)
		if name == "" {
			continue
		}
		dir, file := path.Split(name)
		dir = strings.TrimSuffix(dir, "/")
		t.files[dir] = append(t.files[dir], file)
		t.addDir(dir)
	}

	for dir := range t.files {
		sort.Strings(t.files[dir])
	}
	for dir := range t.dirs {
		sort.Strings(t.dirs[dir])
	}

	return t, nil
}

func (t *CommitTree) addDir(dir string) {
	for dir != "" {
		parent, name := path.Split(dir)
		parent = strings.TrimSuffix(parent, "/")
		for _, existing := range t.dirs[parent] {
			if existing == name {
				return
			}
		}
		t.dirs[parent] = append(t.dirs[parent], name)
		dir = parent
	}
}

// Walker returns the commit tree as a vcs.TreeWalker.
func (t *CommitTree) Walker() vcs.TreeWalker {
	return t.walk
}

// ContentReader returns a vcs.ContentReader that reads file content at the commit.
func (t *CommitTree) ContentReader() vcs.ContentReader {
	return t.readFile
}

func (t *CommitTree) walk(root string, skipDir func(name string) bool, visit vcs.VisitFunc) error {
	rootRel, err := t.relativeToRepo(root)
	if err != nil {
		return err
	}
	if rootRel != "" {
		if _, ok := t.files[rootRel]; !ok {
			if _, ok := t.dirs[rootRel]; !ok {
				return fmt.Errorf("directory %s does not exist in commit %s", root, t.commitID)
			}
		}
	}

	return t.walkDir(root, rootRel, skipDir, visit)
}

func (t *CommitTree) walkDir(dir, dirRel string, skipDir func(name string) bool, visit vcs.VisitFunc) error {
	files := t.files[dirRel]
	t.mu.Lock()
	for _, file := range files {
		t.reported[filepath.Join(dir, file)] = path.Join(dirRel, file)
	}
	t.mu.Unlock()

	if err := visit(dir, append([]string(nil), files...)); err != nil {
		return err
	}

	for _, sub := range t.dirs[dirRel] {
		if skipDir != nil && skipDir(sub) {
			continue
		}
		if err := t.walkDir(filepath.Join(dir, sub), path.Join(dirRel, sub), skipDir, visit); err != nil {
			return err
		}
	}

	return nil
}

func (t *CommitTree) readFile(filePath string) ([]byte, error) {
	t.mu.RLock()
	rel, ok := t.reported[filePath]
	t.mu.RUnlock()

	if !ok {
		var err error
		rel, err = t.relativeToRepo(filePath)
		if err != nil {
			return nil, err
		}
	}
	if err := validateGitRelPath(rel); err != nil {
		return nil, err
	}

	stdout, stderr, err := runGitCommand(t.repoRoot, "show", fmt.Sprintf("%s:%s", t.commitID, rel))
	if err != nil {
		if stderr != "" {
			return nil, fmt.Errorf("git show failed: %s", stderr)
		}
		return nil, err
	}

	return stdout, nil
}

// relativeToRepo returns p relative to the repository root in slash form.
func (t *CommitTree) relativeToRepo(p string) (string, error) {
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", p, err)
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}

	rel, err := filepath.Rel(t.repoRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", p, err)
	}
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside repository %s", p, t.repoRoot)
	}

	return filepath.ToSlash(rel), nil
}
