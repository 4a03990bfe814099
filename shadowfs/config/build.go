package config

import (
	"fmt"

	"github.com/andronics/shadowfs/shadowfs/layers"
	"github.com/andronics/shadowfs/shadowfs/vfs"
)

// BuildManager turns a loaded Config into a ready Manager: sources added,
// layers constructed and registered. Nothing is scanned yet - that is the
// caller's first ScanSources/RebuildIndexes cycle.
func BuildManager(cfg *Config) (*vfs.Manager, error) {
	var scanOpts []vfs.ScannerOption
	if cfg.ShadowFS.Scan.MaxWorkers > 0 {
		scanOpts = append(scanOpts, vfs.WithMaxWorkers(cfg.ShadowFS.Scan.MaxWorkers))
	}
	if cfg.ShadowFS.IgnoreFile != "" {
		scanOpts = append(scanOpts, vfs.WithIgnoreFile(cfg.ShadowFS.IgnoreFile))
	}

	manager := vfs.NewManager(vfs.WithScanner(vfs.NewScanner(scanOpts...)))

	for _, source := range cfg.ShadowFS.Sources {
		if err := manager.AddSource(source); err != nil {
			return nil, fmt.Errorf("adding source %s: %w", source, err)
		}
	}

	for _, lc := range cfg.ShadowFS.Layers {
		layer, err := BuildLayer(lc)
		if err != nil {
			return nil, fmt.Errorf("building layer %s: %w", lc.Name, err)
		}
		if err := manager.AddLayer(layer); err != nil {
			return nil, err
		}
	}

	return manager, nil
}

// BuildLayer constructs one layer variant from its declaration.
func BuildLayer(lc LayerConfig) (layers.VirtualLayer, error) {
	switch lc.Type {
	case "classifier":
		if lc.Classifier == nil {
			return nil, fmt.Errorf("classifier layer %s needs a classifier", lc.Name)
		}
		classify, err := buildClassifier(*lc.Classifier)
		if err != nil {
			return nil, err
		}
		return layers.NewClassifierLayer(lc.Name, classify)

	case "hierarchical":
		chain := make([]layers.Classifier, 0, len(lc.Classifiers))
		for _, cc := range lc.Classifiers {
			classify, err := buildClassifier(cc)
			if err != nil {
				return nil, err
			}
			chain = append(chain, classify)
		}
		return layers.NewHierarchicalLayer(lc.Name, chain...)

	case "tag":
		extractors := make([]layers.TagExtractor, 0, len(lc.Extractors))
		for _, ec := range lc.Extractors {
			extract, err := buildExtractor(ec)
			if err != nil {
				return nil, err
			}
			extractors = append(extractors, extract)
		}
		return layers.NewTagLayer(lc.Name, extractors...)

	case "date":
		resolution, err := layers.ParseDateResolution(lc.Resolution)
		if err != nil {
			return nil, err
		}
		return layers.NewDateLayer(lc.Name, resolution)

	default:
		return nil, fmt.Errorf("unknown layer type %q", lc.Type)
	}
}

func buildClassifier(cc ClassifierConfig) (layers.Classifier, error) {
	switch cc.Kind {
	case "extension":
		return layers.ExtensionClassifier, nil
	case "size":
		return layers.SizeClassifier, nil
	case "sizeRange":
		ranges := make([]layers.SizeRange, 0, len(cc.Ranges))
		for _, r := range cc.Ranges {
			ranges = append(ranges, layers.SizeRange{Label: r.Label, Min: r.Min, Max: r.Max})
		}
		return layers.SizeRangeClassifier(ranges), nil
	case "extensionGroup":
		return layers.ExtensionGroupClassifier(cc.Groups), nil
	case "pathComponent":
		return layers.PathComponentClassifier(cc.Component), nil
	case "pattern":
		rules := make([]layers.PatternRule, 0, len(cc.Patterns))
		for _, p := range cc.Patterns {
			rules = append(rules, layers.PatternRule{Glob: p.Glob, Category: p.Category})
		}
		return layers.PatternClassifier(rules), nil
	case "modYear":
		return layers.ModTimeYearClassifier, nil
	case "modMonth":
		return layers.ModTimeMonthClassifier, nil
	case "modDay":
		return layers.ModTimeDayClassifier, nil
	default:
		return nil, fmt.Errorf("unknown classifier kind %q", cc.Kind)
	}
}

func buildExtractor(ec ExtractorConfig) (layers.TagExtractor, error) {
	switch ec.Kind {
	case "sidecar":
		if ec.Suffix == "" {
			return nil, fmt.Errorf("sidecar extractor needs a suffix")
		}
		return layers.SidecarExtractor(ec.Suffix), nil
	case "jsonSidecar":
		if ec.Suffix == "" {
			return nil, fmt.Errorf("jsonSidecar extractor needs a suffix")
		}
		return layers.JSONSidecarExtractor(ec.Suffix), nil
	case "xattr":
		if ec.Attr == "" {
			return nil, fmt.Errorf("xattr extractor needs an attribute name")
		}
		return layers.XattrExtractor(ec.Attr), nil
	case "glob":
		return layers.GlobTagsExtractor(ec.Globs), nil
	case "extension":
		return layers.ExtensionTagsExtractor(ec.Extensions), nil
	default:
		return nil, fmt.Errorf("unknown extractor kind %q", ec.Kind)
	}
}
