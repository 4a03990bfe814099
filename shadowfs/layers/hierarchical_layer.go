package layers

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// node is the recursive index structure of a hierarchical layer: every level
// above the classifier-chain depth is a branch, the level at the depth is a
// leaf bucket. Using a closed union instead of a sentinel map key makes a
// branch-where-leaf-expected index unrepresentable; resolve and list still
// type-check defensively so a mismatch degrades to not-found.
type node interface {
	isNode()
}

// branch maps a category name to the node one level deeper.
type branch map[string]node

func (branch) isNode() {}

// leaf is the terminal file bucket at the deepest level.
type leaf []*FileInfo

func (leaf) isNode() {}

// HierarchicalLayer is the N-level view: an ordered chain of classifiers
// produces one nested index of fixed depth. Classification is all-or-nothing
// per file - a file that fails any step of the chain is indexed nowhere.
type HierarchicalLayer struct {
	name  string
	chain []Classifier

	mu   sync.RWMutex
	root branch
}

// NewHierarchicalLayer creates an N-level classification layer. The chain
// depth is fixed at construction; an empty chain is a configuration error.
func NewHierarchicalLayer(name string, chain ...Classifier) (*HierarchicalLayer, error) {
	if name == "" {
		return nil, ErrEmptyLayerName
	}
	if len(chain) == 0 {
		return nil, ErrNoClassifiers
	}
	for _, classify := range chain {
		if classify == nil {
			return nil, ErrNilClassifier
		}
	}
	return &HierarchicalLayer{
		name:  name,
		chain: chain,
		root:  make(branch),
	}, nil
}

// Name returns the stable identity of the layer.
func (hl *HierarchicalLayer) Name() string { return hl.name }

// Depth returns the fixed number of classification levels.
func (hl *HierarchicalLayer) Depth() int { return len(hl.chain) }

// BuildIndex rebuilds the nested index from scratch. Each file is classified
// by every chain step in order; the first error or empty category drops the
// whole file without touching the rest of the snapshot.
func (hl *HierarchicalLayer) BuildIndex(files Snapshot) {
	root := make(branch)
	indexed, skipped := 0, 0

	for _, fi := range files {
		if !fi.IsFile() {
			continue
		}
		categories, ok := hl.classifyAll(fi)
		if !ok {
			skipped++
			continue
		}
		insert(root, categories, fi)
		indexed++
	}

	hl.mu.Lock()
	hl.root = root
	hl.mu.Unlock()

	slog.Debug("hierarchical layer index rebuilt",
		"layer", hl.name,
		"depth", len(hl.chain),
		"indexed", indexed,
		"skipped", skipped)
}

// classifyAll runs the whole chain for one file, stopping at the first
// rejection.
func (hl *HierarchicalLayer) classifyAll(fi *FileInfo) ([]string, bool) {
	categories := make([]string, 0, len(hl.chain))
	for _, classify := range hl.chain {
		category, err := classify(fi)
		if err != nil {
			slog.Debug("chain classifier rejected file",
				"layer", hl.name,
				"level", len(categories),
				"path", fi.RealPath,
				"error", err)
			return nil, false
		}
		if category == "" {
			return nil, false
		}
		categories = append(categories, category)
	}
	return categories, true
}

// insert descends the branch levels for categories[0..N-2] and appends the
// file to the leaf bucket keyed by categories[N-1].
func insert(root branch, categories []string, fi *FileInfo) {
	current := root
	for _, category := range categories[:len(categories)-1] {
		next, exists := current[category]
		if !exists {
			child := make(branch)
			current[category] = child
			current = child
			continue
		}
		child, ok := next.(branch)
		if !ok {
			// Cannot happen with a fixed-depth chain; guard anyway so a
			// broken classifier never corrupts sibling subtrees.
			return
		}
		current = child
	}
	last := categories[len(categories)-1]
	bucket, _ := current[last].(leaf)
	current[last] = append(bucket, fi)
}

// Resolve maps "c1/.../cN/filename" to a real path. The path must have
// exactly N+1 non-empty segments; any missing intermediate node, structural
// mismatch, or absent filename is a plain not-found.
func (hl *HierarchicalLayer) Resolve(virtualPath string) (string, bool) {
	segments := splitSegments(virtualPath)
	if len(segments) != len(hl.chain)+1 {
		return "", false
	}

	hl.mu.RLock()
	defer hl.mu.RUnlock()

	current := node(hl.root)
	for _, segment := range segments[:len(segments)-1] {
		b, ok := current.(branch)
		if !ok {
			return "", false
		}
		current, ok = b[segment]
		if !ok {
			return "", false
		}
	}

	bucket, ok := current.(leaf)
	if !ok {
		return "", false
	}
	filename := segments[len(segments)-1]
	for _, fi := range bucket {
		if fi.Name == filename {
			return fi.RealPath, true
		}
	}
	return "", false
}

// ListDirectory lists sorted branch keys above the chain depth and sorted
// filenames at the chain depth. Anything structurally off returns empty.
func (hl *HierarchicalLayer) ListDirectory(subpath string) []string {
	segments := splitSegments(subpath)
	if len(segments) > len(hl.chain) {
		return []string{}
	}

	hl.mu.RLock()
	defer hl.mu.RUnlock()

	current := node(hl.root)
	for _, segment := range segments {
		b, ok := current.(branch)
		if !ok {
			return []string{}
		}
		current, ok = b[segment]
		if !ok {
			return []string{}
		}
	}

	switch n := current.(type) {
	case branch:
		names := make([]string, 0, len(n))
		for name := range n {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	case leaf:
		names := make([]string, 0, len(n))
		for _, fi := range n {
			names = append(names, fi.Name)
		}
		sort.Strings(names)
		return names
	default:
		return []string{}
	}
}

// Refresh performs a full rebuild.
func (hl *HierarchicalLayer) Refresh(files Snapshot) { hl.BuildIndex(files) }

// splitSegments splits a virtual path into its non-empty segments; an empty
// or all-separator path yields none.
func splitSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
