package layers

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/armon/go-radix"
)

// RealPathIndex maps absolute real paths back to their scanned FileInfo using
// a compressed trie, giving O(k) reverse lookups and cheap "everything under
// this real subtree" queries. Like every index in this package it is rebuilt
// wholesale from a snapshot, never patched.
type RealPathIndex struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

// NewRealPathIndex creates an empty reverse index.
func NewRealPathIndex() *RealPathIndex {
	return &RealPathIndex{tree: radix.New()}
}

// Rebuild replaces the whole index with the entries of a snapshot.
func (idx *RealPathIndex) Rebuild(files Snapshot) {
	tree := radix.New()
	for _, fi := range files {
		tree.Insert(normalizeRealPath(fi.RealPath), fi)
	}

	idx.mu.Lock()
	idx.tree = tree
	idx.mu.Unlock()

	slog.Debug("real-path index rebuilt", "entries", tree.Len())
}

// Lookup finds the snapshot entry for an exact real path.
func (idx *RealPathIndex) Lookup(realPath string) (*FileInfo, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	value, found := idx.tree.Get(normalizeRealPath(realPath))
	if !found {
		return nil, false
	}
	return value.(*FileInfo), true
}

// UnderPrefix returns every snapshot entry whose real path lives under the
// given directory prefix, in trie (lexicographic) order.
func (idx *RealPathIndex) UnderPrefix(prefix string) []*FileInfo {
	normalized := normalizeRealPath(prefix)
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var results []*FileInfo
	idx.tree.WalkPrefix(normalized, func(key string, value interface{}) bool {
		if fi, ok := value.(*FileInfo); ok {
			results = append(results, fi)
		}
		return false
	})
	return results
}

// Len returns the number of indexed entries.
func (idx *RealPathIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}

// Clear removes all entries.
func (idx *RealPathIndex) Clear() {
	idx.mu.Lock()
	idx.tree = radix.New()
	idx.mu.Unlock()
}

// normalizeRealPath ensures consistent key formatting for the trie.
func normalizeRealPath(path string) string {
	normalized := filepath.ToSlash(filepath.Clean(path))
	if len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}
