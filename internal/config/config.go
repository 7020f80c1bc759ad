// Package config loads the analysis engine's tunable parameters from a
// YAML file. Thresholds here are calibration constants, not correctness
// invariants: callers may adjust them without changing engine semantics.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the name of the informes configuration file.
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the informes configuration directory.
const ConfigDirName = ".informes"

// Config holds all engine configuration.
type Config struct {
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Correlation CorrelationConfig `yaml:"correlation"`
	Trends      TrendsConfig      `yaml:"trends"`
	Text        TextConfig        `yaml:"text"`
}

// AnalysisConfig holds thresholds gating which facts become insights.
type AnalysisConfig struct {
	// MinCompleteness is the minimum non-missing fraction a category needs
	// before its metrics produce pattern insights.
	MinCompleteness float64 `yaml:"min_completeness"`

	// ConcentrationAnomaly is the fraction of all records in a single
	// temporal bucket that triggers an anomaly insight.
	ConcentrationAnomaly float64 `yaml:"concentration_anomaly"`

	// GeoConcentration is the single-commune share that triggers a
	// territorial diversification recommendation.
	GeoConcentration float64 `yaml:"geo_concentration"`
}

// CorrelationConfig holds the correlation tier cutoffs and the minimum
// jointly-defined sample count per metric pair.
type CorrelationConfig struct {
	Strong     float64 `yaml:"strong"`
	Moderate   float64 `yaml:"moderate"`
	Weak       float64 `yaml:"weak"`
	MinSamples int     `yaml:"min_samples"`
}

// TrendsConfig holds temporal trend analysis parameters.
type TrendsConfig struct {
	// Granularity is the bucket width: daily, weekly or monthly.
	Granularity string `yaml:"granularity"`

	// DeltaThreshold is the relative bucket-to-bucket change (against the
	// previous bucket's count) required for a trend insight.
	DeltaThreshold float64 `yaml:"delta_threshold"`
}

// TextConfig holds free-text signal extraction parameters.
type TextConfig struct {
	// TopKeywords is the number of ranked keywords kept per text column.
	TopKeywords int `yaml:"top_keywords"`
}

// ErrConfigNotFound is returned when no config file can be found.
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .informes/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(filepath.Join(configDir, ConfigFileName))
}

// FindConfigDir locates the .informes directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .informes directory under workDir if it does
// not exist and returns its path.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return configDir, nil
}

// Validate checks that the merged configuration is usable.
func Validate(c *Config) error {
	if c.Correlation.Weak <= 0 || c.Correlation.Moderate < c.Correlation.Weak ||
		c.Correlation.Strong < c.Correlation.Moderate {
		return fmt.Errorf("%w: correlation thresholds must satisfy 0 < weak <= moderate <= strong", ErrInvalidConfig)
	}
	if c.Correlation.MinSamples < 2 {
		return fmt.Errorf("%w: correlation min_samples must be at least 2", ErrInvalidConfig)
	}
	if !IsValidGranularity(c.Trends.Granularity) {
		return fmt.Errorf("%w: unknown trend granularity %q", ErrInvalidConfig, c.Trends.Granularity)
	}
	if c.Analysis.MinCompleteness < 0 || c.Analysis.MinCompleteness > 1 {
		return fmt.Errorf("%w: min_completeness must be in [0, 1]", ErrInvalidConfig)
	}
	return nil
}

// ValidGranularities lists the accepted trend bucket widths.
var ValidGranularities = []string{"daily", "weekly", "monthly"}

// IsValidGranularity checks if the given granularity value is valid.
func IsValidGranularity(g string) bool {
	for _, valid := range ValidGranularities {
		if g == valid {
			return true
		}
	}
	return false
}
