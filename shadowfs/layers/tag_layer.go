package layers

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// TagLayer is the many-to-many view: every extractor contributes candidate
// tags for a file, and the file is listed under each distinct valid tag. A
// file with k tags deliberately occupies k directory listings.
type TagLayer struct {
	name       string
	extractors []TagExtractor

	mu    sync.RWMutex
	index map[string][]*FileInfo
}

// NewTagLayer creates a tagging layer from an ordered list of extractors.
func NewTagLayer(name string, extractors ...TagExtractor) (*TagLayer, error) {
	if name == "" {
		return nil, ErrEmptyLayerName
	}
	if len(extractors) == 0 {
		return nil, ErrNoExtractors
	}
	for _, extract := range extractors {
		if extract == nil {
			return nil, ErrNilExtractor
		}
	}
	return &TagLayer{
		name:       name,
		extractors: extractors,
		index:      make(map[string][]*FileInfo),
	}, nil
}

// Name returns the stable identity of the layer.
func (tl *TagLayer) Name() string { return tl.name }

// BuildIndex rebuilds the tag index from scratch. Extractors run in order and
// fail in isolation: one erroring extractor never silences the others, and
// one unclassifiable file never affects its neighbors. Candidate tags are
// deduplicated across extractors and whitespace-only values are dropped.
func (tl *TagLayer) BuildIndex(files Snapshot) {
	index := make(map[string][]*FileInfo)
	indexed := 0

	for _, fi := range files {
		if !fi.IsFile() {
			continue
		}
		tags := tl.tagsFor(fi)
		if len(tags) == 0 {
			continue
		}
		for _, tag := range tags {
			index[tag] = append(index[tag], fi)
		}
		indexed++
	}

	tl.mu.Lock()
	tl.index = index
	tl.mu.Unlock()

	slog.Debug("tag layer index rebuilt",
		"layer", tl.name,
		"tags", len(index),
		"files", indexed)
}

// tagsFor collects the deduplicated tag set for one file, in first-seen
// order.
func (tl *TagLayer) tagsFor(fi *FileInfo) []string {
	seen := make(map[string]bool)
	var tags []string

	for _, extract := range tl.extractors {
		candidates, err := extract(fi)
		if err != nil {
			slog.Debug("tag extractor failed",
				"layer", tl.name,
				"path", fi.RealPath,
				"error", err)
			continue
		}
		for _, candidate := range candidates {
			tag := strings.TrimSpace(candidate)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// Resolve maps "tag/filename" to a real path, first-inserted-wins on
// duplicate filenames within one tag.
func (tl *TagLayer) Resolve(virtualPath string) (string, bool) {
	tag, filename, ok := strings.Cut(virtualPath, "/")
	if !ok || tag == "" || filename == "" {
		return "", false
	}

	tl.mu.RLock()
	defer tl.mu.RUnlock()

	for _, fi := range tl.index[tag] {
		if fi.Name == filename {
			return fi.RealPath, true
		}
	}
	return "", false
}

// ListDirectory lists sorted tag names at the root, or sorted file names
// under one tag. Unknown tags yield an empty slice.
func (tl *TagLayer) ListDirectory(subpath string) []string {
	tl.mu.RLock()
	defer tl.mu.RUnlock()

	if subpath == "" {
		names := make([]string, 0, len(tl.index))
		for tag := range tl.index {
			names = append(names, tag)
		}
		sort.Strings(names)
		return names
	}

	files, exists := tl.index[subpath]
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
func (tl *TagLayer) Refresh(files Snapshot) { tl.BuildIndex(files) }
