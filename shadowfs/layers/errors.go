package layers

import "errors"

// Configuration-time misuse is the only failure class that propagates to the
// caller; per-file classification failures are swallowed during indexing and
// unknown virtual paths are reported as plain not-found results.
var (
	ErrNoClassifiers  = errors.New("hierarchical layer requires at least one classifier")
	ErrNoExtractors   = errors.New("tag layer requires at least one extractor")
	ErrNilClassifier  = errors.New("classifier cannot be nil")
	ErrNilExtractor   = errors.New("extractor cannot be nil")
	ErrEmptyLayerName = errors.New("layer name cannot be empty")
)
