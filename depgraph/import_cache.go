package depgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ImportCache memoizes resolved import targets of file contents across builds.
// It is safe for concurrent use.
type ImportCache struct {
	entries *lru.Cache[string, []string]
}

// NewImportCache returns a cache holding at most size file results.
func NewImportCache(size int) (*ImportCache, error) {
	entries, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create import cache: %w", err)
	}
	return &ImportCache{entries: entries}, nil
}

func (c *ImportCache) get(key string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(key)
}

func (c *ImportCache) add(key string, targets []string) {
	if c == nil {
		return
	}
	c.entries.Add(key, slices.Clone(targets))
}

// Len returns the number of cached file results.
func (c *ImportCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func importCacheKey(contextDir string, strict bool, content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%s|%t|%s", contextDir, strict, hex.EncodeToString(sum[:]))
}
