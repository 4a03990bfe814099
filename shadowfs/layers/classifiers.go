package layers

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Size bucket thresholds for SizeClassifier.
const (
	sizeThresholdSmall  = 1e3
	sizeThresholdMedium = 1e6

	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// ExtensionClassifier buckets files by extension without the leading dot;
// files with no extension are left unindexed.
func ExtensionClassifier(fi *FileInfo) (string, error) {
	if fi.Extension == "" {
		return "", nil
	}
	return strings.ToLower(strings.TrimPrefix(fi.Extension, ".")), nil
}

// SizeClassifier buckets files into small/medium/large using fixed
// thresholds.
func SizeClassifier(fi *FileInfo) (string, error) {
	switch {
	case fi.Size > sizeThresholdMedium:
		return SizeLarge, nil
	case fi.Size > sizeThresholdSmall:
		return SizeMedium, nil
	default:
		return SizeSmall, nil
	}
}

// SizeRange is one labeled bucket for SizeRangeClassifier. Max < 0 means
// unbounded above.
type SizeRange struct {
	Label string
	Min   int64
	Max   int64
}

// SizeRangeClassifier buckets files by the first configured range that
// contains their size; files outside every range are left unindexed.
func SizeRangeClassifier(ranges []SizeRange) Classifier {
	return func(fi *FileInfo) (string, error) {
		for _, r := range ranges {
			if fi.Size < r.Min {
				continue
			}
			if r.Max >= 0 && fi.Size > r.Max {
				continue
			}
			return r.Label, nil
		}
		return "", nil
	}
}

// ExtensionGroupClassifier buckets files by named extension groups, e.g.
// {"documents": ["md", "txt", "pdf"]}. Extensions are matched without the
// leading dot, case-insensitively; ungrouped extensions are left unindexed.
func ExtensionGroupClassifier(groups map[string][]string) Classifier {
	byExt := make(map[string]string, len(groups)*4)
	for group, exts := range groups {
		for _, ext := range exts {
			byExt[strings.ToLower(strings.TrimPrefix(ext, "."))] = group
		}
	}
	return func(fi *FileInfo) (string, error) {
		ext := strings.ToLower(strings.TrimPrefix(fi.Extension, "."))
		if ext == "" {
			return "", nil
		}
		return byExt[ext], nil
	}
}

// PathComponentClassifier buckets files by the index-th component of their
// source-relative path. Files whose path has no such directory component
// (e.g. files sitting directly in the root for index 0) are left unindexed.
func PathComponentClassifier(index int) Classifier {
	return func(fi *FileInfo) (string, error) {
		if index < 0 {
			return "", fmt.Errorf("invalid path component index %d", index)
		}
		components := splitSegments(fi.Path)
		// The last component is the filename, never a category.
		if index >= len(components)-1 {
			return "", nil
		}
		return components[index], nil
	}
}

// PatternRule maps one glob pattern to a category for PatternClassifier.
type PatternRule struct {
	Glob     string
	Category string
}

// PatternClassifier buckets files by the first rule whose glob matches the
// source-relative path. Malformed patterns surface as classification errors,
// which drop only the file under evaluation.
func PatternClassifier(rules []PatternRule) Classifier {
	return func(fi *FileInfo) (string, error) {
		for _, rule := range rules {
			matched, err := doublestar.Match(rule.Glob, fi.Path)
			if err != nil {
				return "", fmt.Errorf("bad pattern %q: %w", rule.Glob, err)
			}
			if matched {
				return rule.Category, nil
			}
		}
		return "", nil
	}
}

// ModTimeYearClassifier buckets files by modification year ("2006"). Files
// with a zero modification time are left unindexed, as are the month and day
// variants below.
func ModTimeYearClassifier(fi *FileInfo) (string, error) {
	if fi.ModTime.IsZero() {
		return "", nil
	}
	return fi.ModTime.Format("2006"), nil
}

// ModTimeMonthClassifier buckets files by zero-padded modification month.
func ModTimeMonthClassifier(fi *FileInfo) (string, error) {
	if fi.ModTime.IsZero() {
		return "", nil
	}
	return fi.ModTime.Format("01"), nil
}

// ModTimeDayClassifier buckets files by zero-padded modification day.
func ModTimeDayClassifier(fi *FileInfo) (string, error) {
	if fi.ModTime.IsZero() {
		return "", nil
	}
	return fi.ModTime.Format("02"), nil
}
