package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when the
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			MinCompleteness:      0.30,
			ConcentrationAnomaly: 0.30,
			GeoConcentration:     0.60,
		},
		Correlation: CorrelationConfig{
			Strong:     0.70,
			Moderate:   0.40,
			Weak:       0.20,
			MinSamples: 3,
		},
		Trends: TrendsConfig{
			Granularity:    "weekly",
			DeltaThreshold: 0.50,
		},
		Text: TextConfig{
			TopKeywords: 5,
		},
	}
}

// LoadFromPath reads config from a specific path, merges it with defaults
// and validates the result. A missing file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge merges loaded config with defaults. Values from the loaded config
// take precedence; zero values fall back to the defaults.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}
	result.Analysis = mergeAnalysisConfig(loaded.Analysis, defaults.Analysis)
	result.Correlation = mergeCorrelationConfig(loaded.Correlation, defaults.Correlation)
	result.Trends = mergeTrendsConfig(loaded.Trends, defaults.Trends)
	result.Text = mergeTextConfig(loaded.Text, defaults.Text)
	return result
}

func mergeAnalysisConfig(loaded, defaults AnalysisConfig) AnalysisConfig {
	result := AnalysisConfig{}
	if loaded.MinCompleteness != 0 {
		result.MinCompleteness = loaded.MinCompleteness
	} else {
		result.MinCompleteness = defaults.MinCompleteness
	}
	if loaded.ConcentrationAnomaly != 0 {
		result.ConcentrationAnomaly = loaded.ConcentrationAnomaly
	} else {
		result.ConcentrationAnomaly = defaults.ConcentrationAnomaly
	}
	if loaded.GeoConcentration != 0 {
		result.GeoConcentration = loaded.GeoConcentration
	} else {
		result.GeoConcentration = defaults.GeoConcentration
	}
	return result
}

func mergeCorrelationConfig(loaded, defaults CorrelationConfig) CorrelationConfig {
	result := CorrelationConfig{}
	if loaded.Strong != 0 {
		result.Strong = loaded.Strong
	} else {
		result.Strong = defaults.Strong
	}
	if loaded.Moderate != 0 {
		result.Moderate = loaded.Moderate
	} else {
		result.Moderate = defaults.Moderate
	}
	if loaded.Weak != 0 {
		result.Weak = loaded.Weak
	} else {
		result.Weak = defaults.Weak
	}
	if loaded.MinSamples != 0 {
		result.MinSamples = loaded.MinSamples
	} else {
		result.MinSamples = defaults.MinSamples
	}
	return result
}

func mergeTrendsConfig(loaded, defaults TrendsConfig) TrendsConfig {
	result := TrendsConfig{}
	if loaded.Granularity != "" {
		result.Granularity = loaded.Granularity
	} else {
		result.Granularity = defaults.Granularity
	}
	if loaded.DeltaThreshold != 0 {
		result.DeltaThreshold = loaded.DeltaThreshold
	} else {
		result.DeltaThreshold = defaults.DeltaThreshold
	}
	return result
}

func mergeTextConfig(loaded, defaults TextConfig) TextConfig {
	result := TextConfig{}
	if loaded.TopKeywords != 0 {
		result.TopKeywords = loaded.TopKeywords
	} else {
		result.TopKeywords = defaults.TopKeywords
	}
	return result
}
