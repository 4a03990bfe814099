package layers

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// ClassifierLayer is the single-level view: one classification function maps
// every regular file to a flat category -> files index.
type ClassifierLayer struct {
	name     string
	classify Classifier

	mu    sync.RWMutex
	index map[string][]*FileInfo
}

// NewClassifierLayer creates a flat classification layer driven by a single
// classifier function.
func NewClassifierLayer(name string, classify Classifier) (*ClassifierLayer, error) {
	if name == "" {
		return nil, ErrEmptyLayerName
	}
	if classify == nil {
		return nil, ErrNilClassifier
	}
	return &ClassifierLayer{
		name:     name,
		classify: classify,
		index:    make(map[string][]*FileInfo),
	}, nil
}

// Name returns the stable identity of the layer.
func (cl *ClassifierLayer) Name() string { return cl.name }

// BuildIndex rebuilds the category index from scratch. A classifier error or
// an empty category skips that one file; every other file still gets indexed.
func (cl *ClassifierLayer) BuildIndex(files Snapshot) {
	index := make(map[string][]*FileInfo)
	skipped := 0

	for _, fi := range files {
		if !fi.IsFile() {
			continue
		}
		category, err := cl.classify(fi)
		if err != nil {
			slog.Debug("classifier rejected file",
				"layer", cl.name,
				"path", fi.RealPath,
				"error", err)
			skipped++
			continue
		}
		if category == "" {
			skipped++
			continue
		}
		index[category] = append(index[category], fi)
	}

	cl.mu.Lock()
	cl.index = index
	cl.mu.Unlock()

	slog.Debug("classifier layer index rebuilt",
		"layer", cl.name,
		"categories", len(index),
		"skipped", skipped)
}

// Resolve maps "category/filename" to a real path. The split happens on the
// first separator only; filenames must not contain the separator themselves.
// When two indexed files share a name within one category the first inserted
// one wins - a documented ambiguity, not a tie-break policy.
func (cl *ClassifierLayer) Resolve(virtualPath string) (string, bool) {
	category, filename, ok := strings.Cut(virtualPath, "/")
	if !ok || category == "" || filename == "" {
		return "", false
	}

	cl.mu.RLock()
	defer cl.mu.RUnlock()

	for _, fi := range cl.index[category] {
		if fi.Name == filename {
			return fi.RealPath, true
		}
	}
	return "", false
}

// ListDirectory lists sorted category names at the root, or sorted file names
// within one category. Unknown categories yield an empty slice.
func (cl *ClassifierLayer) ListDirectory(subpath string) []string {
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	if subpath == "" {
		names := make([]string, 0, len(cl.index))
		for category := range cl.index {
			names = append(names, category)
		}
		sort.Strings(names)
		return names
	}

	files, exists := cl.index[subpath]
	if !exists {
		return []string{}
	}
	names := make([]string, 0, len(files))
	for _, fi := range files {
		names = append(names, fi.Name)
	}
	sort.Strings(names)
	return names
}

// Refresh performs a full rebuild.
func (cl *ClassifierLayer) Refresh(files Snapshot) { cl.BuildIndex(files) }
