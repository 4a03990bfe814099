package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andronics/shadowfs/shadowfs/layers"
)

func TestBuildLayer(t *testing.T) {
	t.Run("classifier layer", func(t *testing.T) {
		layer, err := BuildLayer(LayerConfig{
			Name:       "by-ext",
			Type:       "classifier",
			Classifier: &ClassifierConfig{Kind: "extension"},
		})
		require.NoError(t, err)
		assert.Equal(t, "by-ext", layer.Name())
		assert.IsType(t, &layers.ClassifierLayer{}, layer)
	})

	t.Run("classifier layer without classifier", func(t *testing.T) {
		_, err := BuildLayer(LayerConfig{Name: "broken", Type: "classifier"})
		assert.Error(t, err)
	})

	t.Run("hierarchical layer", func(t *testing.T) {
		layer, err := BuildLayer(LayerConfig{
			Name: "by-kind-size",
			Type: "hierarchical",
			Classifiers: []ClassifierConfig{
				{Kind: "extensionGroup", Groups: map[string][]string{"docs": {"md"}}},
				{Kind: "size"},
			},
		})
		require.NoError(t, err)
		hl, ok := layer.(*layers.HierarchicalLayer)
		require.True(t, ok)
		assert.Equal(t, 2, hl.Depth())
	})

	t.Run("hierarchical layer without classifiers", func(t *testing.T) {
		_, err := BuildLayer(LayerConfig{Name: "empty", Type: "hierarchical"})
		assert.ErrorIs(t, err, layers.ErrNoClassifiers)
	})

	t.Run("tag layer", func(t *testing.T) {
		layer, err := BuildLayer(LayerConfig{
			Name: "tags",
			Type: "tag",
			Extractors: []ExtractorConfig{
				{Kind: "sidecar", Suffix: ".tags"},
				{Kind: "glob", Globs: map[string][]string{"**/*.go": {"golang"}}},
			},
		})
		require.NoError(t, err)
		assert.IsType(t, &layers.TagLayer{}, layer)
	})

	t.Run("date layer", func(t *testing.T) {
		layer, err := BuildLayer(LayerConfig{Name: "by-date", Type: "date", Resolution: "month"})
		require.NoError(t, err)
		dl, ok := layer.(*layers.DateLayer)
		require.True(t, ok)
		assert.Equal(t, layers.ResolutionMonth, dl.Resolution())
	})

	t.Run("date layer with bad resolution", func(t *testing.T) {
		_, err := BuildLayer(LayerConfig{Name: "by-date", Type: "date", Resolution: "century"})
		assert.Error(t, err)
	})

	t.Run("unknown layer type", func(t *testing.T) {
		_, err := BuildLayer(LayerConfig{Name: "mystery", Type: "quantum"})
		assert.Error(t, err)
	})
}

func TestBuildClassifierKinds(t *testing.T) {
	known := []ClassifierConfig{
		{Kind: "extension"},
		{Kind: "size"},
		{Kind: "sizeRange", Ranges: []SizeRangeConfig{{Label: "all", Min: 0, Max: -1}}},
		{Kind: "extensionGroup", Groups: map[string][]string{"docs": {"md"}}},
		{Kind: "pathComponent", Component: 0},
		{Kind: "pattern", Patterns: []PatternRuleConfig{{Glob: "**/*.go", Category: "code"}}},
		{Kind: "modYear"},
		{Kind: "modMonth"},
		{Kind: "modDay"},
	}
	for _, cc := range known {
		t.Run(cc.Kind, func(t *testing.T) {
			classify, err := buildClassifier(cc)
			require.NoError(t, err)
			assert.NotNil(t, classify)
		})
	}

	t.Run("unknown kind", func(t *testing.T) {
		_, err := buildClassifier(ClassifierConfig{Kind: "entropy"})
		assert.Error(t, err)
	})
}

func TestBuildExtractorKinds(t *testing.T) {
	t.Run("sidecar requires suffix", func(t *testing.T) {
		_, err := buildExtractor(ExtractorConfig{Kind: "sidecar"})
		assert.Error(t, err)
	})

	t.Run("jsonSidecar requires suffix", func(t *testing.T) {
		_, err := buildExtractor(ExtractorConfig{Kind: "jsonSidecar"})
		assert.Error(t, err)
	})

	t.Run("xattr requires attr", func(t *testing.T) {
		_, err := buildExtractor(ExtractorConfig{Kind: "xattr"})
		assert.Error(t, err)
	})

	t.Run("known kinds", func(t *testing.T) {
		known := []ExtractorConfig{
			{Kind: "sidecar", Suffix: ".tags"},
			{Kind: "jsonSidecar", Suffix: ".meta.json"},
			{Kind: "xattr", Attr: "user.tags"},
			{Kind: "glob", Globs: map[string][]string{"**/*.md": {"docs"}}},
			{Kind: "extension", Extensions: map[string][]string{"go": {"golang"}}},
		}
		for _, ec := range known {
			extract, err := buildExtractor(ec)
			require.NoError(t, err, ec.Kind)
			assert.NotNil(t, extract, ec.Kind)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := buildExtractor(ExtractorConfig{Kind: "telepathy"})
		assert.Error(t, err)
	})
}

func TestBuildManager(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		dir := t.TempDir()
		cfg := &Config{ShadowFS: ShadowFSConfig{
			Sources: []string{dir},
			Scan:    ScanConfig{MaxWorkers: 4},
			Layers: []LayerConfig{
				{Name: "by-ext", Type: "classifier", Classifier: &ClassifierConfig{Kind: "extension"}},
				{Name: "by-date", Type: "date", Resolution: "year"},
			},
		}}

		manager, err := BuildManager(cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{"by-date", "by-ext"}, manager.ListLayers())
		assert.Len(t, manager.Sources(), 1)
	})

	t.Run("missing source fails", func(t *testing.T) {
		cfg := &Config{ShadowFS: ShadowFSConfig{
			Sources: []string{"/definitely/not/a/real/path"},
		}}
		_, err := BuildManager(cfg)
		assert.Error(t, err)
	})

	t.Run("bad layer declaration fails", func(t *testing.T) {
		cfg := &Config{ShadowFS: ShadowFSConfig{
			Layers: []LayerConfig{{Name: "broken", Type: "classifier"}},
		}}
		_, err := BuildManager(cfg)
		assert.Error(t, err)
	})
}
