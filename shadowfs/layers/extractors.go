package layers

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SidecarExtractor reads tags from a plain-text sidecar sitting next to the
// file ("photo.jpg" + suffix ".tags" -> "photo.jpg.tags"), split on commas
// and newlines. A missing sidecar yields no tags; a read failure is an
// extractor error.
func SidecarExtractor(suffix string) TagExtractor {
	return func(fi *FileInfo) ([]string, error) {
		data, err := os.ReadFile(fi.RealPath + suffix)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("reading sidecar: %w", err)
		}
		var tags []string
		for _, line := range strings.Split(string(data), "\n") {
			for _, field := range strings.Split(line, ",") {
				tags = append(tags, strings.TrimSpace(field))
			}
		}
		return tags, nil
	}
}

// JSONSidecarExtractor reads tags from a JSON sidecar holding a flat array of
// strings.
func JSONSidecarExtractor(suffix string) TagExtractor {
	return func(fi *FileInfo) ([]string, error) {
		data, err := os.ReadFile(fi.RealPath + suffix)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("reading sidecar: %w", err)
		}
		var tags []string
		if err := json.Unmarshal(data, &tags); err != nil {
			return nil, fmt.Errorf("parsing sidecar %s%s: %w", fi.RealPath, suffix, err)
		}
		return tags, nil
	}
}

// GlobTagsExtractor maps glob patterns over the source-relative path to tag
// lists; every matching pattern contributes its tags.
func GlobTagsExtractor(table map[string][]string) TagExtractor {
	return func(fi *FileInfo) ([]string, error) {
		var tags []string
		for pattern, patternTags := range table {
			matched, err := doublestar.Match(pattern, fi.Path)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if matched {
				tags = append(tags, patternTags...)
			}
		}
		return tags, nil
	}
}

// ExtensionTagsExtractor maps extensions (without the leading dot) to tag
// lists.
func ExtensionTagsExtractor(table map[string][]string) TagExtractor {
	normalized := make(map[string][]string, len(table))
	for ext, tags := range table {
		normalized[strings.ToLower(strings.TrimPrefix(ext, "."))] = tags
	}
	return func(fi *FileInfo) ([]string, error) {
		ext := strings.ToLower(strings.TrimPrefix(fi.Extension, "."))
		if ext == "" {
			return nil, nil
		}
		return normalized[ext], nil
	}
}
