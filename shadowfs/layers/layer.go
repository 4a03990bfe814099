package layers

// VirtualLayer is one organizational view over the scanned file set. Each
// implementation owns a variant-specific index keyed from file metadata and
// exposes the same four operations; the layer's name doubles as the first
// segment of every virtual path routed to it.
//
// Index invariants shared by all variants:
//   - only regular files are ever indexed
//   - BuildIndex replaces the whole index; readers never observe a partially
//     built state because implementations build a fresh index value and swap
//     the reference under lock
//   - Resolve and ListDirectory are pure reads and safe for concurrent use
type VirtualLayer interface {
	// Name returns the stable identity of the layer.
	Name() string

	// BuildIndex rebuilds the index from scratch over the given snapshot.
	// Files that are not regular, or that any classification step rejects,
	// are skipped in isolation.
	BuildIndex(files Snapshot)

	// Resolve maps a layer-relative virtual path to the real path of exactly
	// one file. Absence is an ordinary outcome, not an error.
	Resolve(virtualPath string) (string, bool)

	// ListDirectory returns the lexicographically sorted names visible at
	// the given layer-relative subpath. Unknown paths yield an empty slice.
	ListDirectory(subpath string) []string

	// Refresh re-synchronizes the layer with a snapshot. The default
	// behavior is a full rebuild; overrides must leave the index in a state
	// identical to BuildIndex on the same input.
	Refresh(files Snapshot)
}

// Classifier maps one file's metadata to a single category label. Returning
// an empty label or an error excludes the file from the index; neither
// outcome affects any other file.
type Classifier func(*FileInfo) (string, error)

// TagExtractor derives zero or more tag labels for a file from some metadata
// source. Errors are isolated per extractor: the remaining extractors still
// run for the same file.
type TagExtractor func(*FileInfo) ([]string, error)
