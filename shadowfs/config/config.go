package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	internal "github.com/andronics/shadowfs/shadowfs"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ShadowFS ShadowFSConfig `mapstructure:"shadowfs"`
}

// ShadowFSConfig stores the source roots, scan behavior and the declarative
// layer set.
type ShadowFSConfig struct {
	Sources    []string      `mapstructure:"sources"`
	IgnoreFile string        `mapstructure:"ignoreFile"`
	Scan       ScanConfig    `mapstructure:"scan"`
	Watch      WatchConfig   `mapstructure:"watch"`
	Layers     []LayerConfig `mapstructure:"layers"`
}

// ScanConfig bounds the concurrent scanner.
type ScanConfig struct {
	MaxWorkers int `mapstructure:"maxWorkers"`
}

// WatchConfig controls the optional rescan-on-change watcher.
type WatchConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	DebounceMillis int  `mapstructure:"debounceMillis"`
	MaxDelayMillis int  `mapstructure:"maxDelayMillis"`
}

// LayerConfig declares one virtual layer. Type selects the variant
// (classifier, hierarchical, tag, date); the remaining fields apply per
// variant.
type LayerConfig struct {
	Name        string             `mapstructure:"name"`
	Type        string             `mapstructure:"type"`
	Classifier  *ClassifierConfig  `mapstructure:"classifier"`  // classifier layers
	Classifiers []ClassifierConfig `mapstructure:"classifiers"` // hierarchical layers
	Extractors  []ExtractorConfig  `mapstructure:"extractors"`  // tag layers
	Resolution  string             `mapstructure:"resolution"`  // date layers
}

// ClassifierConfig declares one classification function and its parameter
// table.
type ClassifierConfig struct {
	Kind      string              `mapstructure:"kind"`
	Component int                 `mapstructure:"component"` // pathComponent
	Groups    map[string][]string `mapstructure:"groups"`    // extensionGroup
	Ranges    []SizeRangeConfig   `mapstructure:"ranges"`    // sizeRange
	Patterns  []PatternRuleConfig `mapstructure:"patterns"`  // pattern
}

// SizeRangeConfig is one labeled size bucket; max -1 means unbounded.
type SizeRangeConfig struct {
	Label string `mapstructure:"label"`
	Min   int64  `mapstructure:"min"`
	Max   int64  `mapstructure:"max"`
}

// PatternRuleConfig maps one glob to a category.
type PatternRuleConfig struct {
	Glob     string `mapstructure:"glob"`
	Category string `mapstructure:"category"`
}

// ExtractorConfig declares one tag extraction function.
type ExtractorConfig struct {
	Kind       string              `mapstructure:"kind"`
	Suffix     string              `mapstructure:"suffix"`     // sidecar, jsonSidecar
	Attr       string              `mapstructure:"attr"`       // xattr
	Globs      map[string][]string `mapstructure:"globs"`      // glob
	Extensions map[string][]string `mapstructure:"extensions"` // extension
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("shadowfs.ignoreFile", internal.DefaultIgnoreFile)
	viper.SetDefault("shadowfs.scan.maxWorkers", 0) // 0 lets the scanner size itself
	viper.SetDefault("shadowfs.watch.enabled", false)
	viper.SetDefault("shadowfs.watch.debounceMillis", 500)
	viper.SetDefault("shadowfs.watch.maxDelayMillis", 5000)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // shadowfs.ignoreFile becomes SHADOWFS_IGNOREFILE

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
