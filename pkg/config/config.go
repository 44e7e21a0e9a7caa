// Package config handles loading and managing Recipescope configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/recipescope/recipescope/pkg/metrics"
)

// Config is the top-level configuration for Recipescope.
type Config struct {
	Criteria CriteriaConfig `yaml:"criteria"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
}

// ThresholdConfig configures one quality category.
type ThresholdConfig struct {
	Threshold    float64 `yaml:"threshold"`
	MarkUnstable bool    `yaml:"mark_unstable"`
}

// ComplexityConfig adds the complexity level to a threshold.
type ComplexityConfig struct {
	ThresholdConfig `yaml:",inline"`
	Level           int `yaml:"level"`
}

// CriteriaConfig holds the quality thresholds.
type CriteriaConfig struct {
	Cache            ThresholdConfig  `yaml:"cache"`
	CodeViolations   ThresholdConfig  `yaml:"code_violations"`
	Comments         ThresholdConfig  `yaml:"comments"`
	Complexity       ComplexityConfig `yaml:"complexity"`
	Coverage         ThresholdConfig  `yaml:"coverage"`
	Duplications     ThresholdConfig  `yaml:"duplications"`
	MutationTests    ThresholdConfig  `yaml:"mutation_tests"`
	RecipeViolations ThresholdConfig  `yaml:"recipe_violations"`
	Tests            ThresholdConfig  `yaml:"tests"`
	Overall          float64          `yaml:"overall"`
}

// StorageConfig selects where reports and results are kept.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // local, s3, gcs
	Path     string `yaml:"path"`    // local backend only
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // S3-compatible endpoint override
}

// ServerConfig controls the upload target and the daemon listener.
type ServerConfig struct {
	Port   string `yaml:"port"`
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Criteria: criteriaConfigFrom(metrics.DefaultCriteria()),
		Storage: StorageConfig{
			Backend: "local",
			Path:    "data",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

func criteriaConfigFrom(c metrics.Criteria) CriteriaConfig {
	t := func(th metrics.Threshold) ThresholdConfig {
		return ThresholdConfig{Threshold: th.Value, MarkUnstable: th.MarkUnstable}
	}
	return CriteriaConfig{
		Cache:            t(c.Cache),
		CodeViolations:   t(c.CodeViolations),
		Comments:         t(c.Comments),
		Complexity:       ComplexityConfig{ThresholdConfig: t(c.Complexity), Level: c.ComplexityLevel},
		Coverage:         t(c.Coverage),
		Duplications:     t(c.Duplications),
		MutationTests:    t(c.MutationTests),
		RecipeViolations: t(c.RecipeViolations),
		Tests:            t(c.Tests),
		Overall:          c.Overall,
	}
}

// MetricsCriteria converts the configured thresholds for the metrics engine.
func (c *Config) MetricsCriteria() metrics.Criteria {
	t := func(tc ThresholdConfig) metrics.Threshold {
		return metrics.Threshold{Value: tc.Threshold, MarkUnstable: tc.MarkUnstable}
	}
	cc := c.Criteria
	return metrics.Criteria{
		Cache:            t(cc.Cache),
		CodeViolations:   t(cc.CodeViolations),
		Comments:         t(cc.Comments),
		Complexity:       t(cc.Complexity.ThresholdConfig),
		Coverage:         t(cc.Coverage),
		Duplications:     t(cc.Duplications),
		MutationTests:    t(cc.MutationTests),
		RecipeViolations: t(cc.RecipeViolations),
		Tests:            t(cc.Tests),
		ComplexityLevel:  cc.Complexity.Level,
		Overall:          cc.Overall,
	}
}

// Validate checks that every threshold is a ratio and the complexity level
// is not negative.
func (c *Config) Validate() error {
	var errs []error
	criteria := c.MetricsCriteria()
	for _, cat := range metrics.Categories() {
		if v := criteria.For(cat).Value; v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("criteria.%s.threshold: %v is outside [0, 1]", cat, v))
		}
	}
	if criteria.Overall < 0 || criteria.Overall > 1 {
		errs = append(errs, fmt.Errorf("criteria.overall: %v is outside [0, 1]", criteria.Overall))
	}
	if criteria.ComplexityLevel < 0 {
		errs = append(errs, fmt.Errorf("criteria.complexity.level: %d is negative", criteria.ComplexityLevel))
	}
	switch c.Storage.Backend {
	case "", "local", "s3", "gcs":
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	return errors.Join(errs...)
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// FindConfigFile looks for .recipescope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".recipescope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns the per-user cache directory for a project.
// Uses ~/.cache/recipescope/<project>/ to avoid polluting the build tree.
func CacheDir(project string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "recipescope", projectSlug(project))
}

// ResultDir returns where the CLI keeps evaluation results for a project.
func ResultDir(project string) string {
	return filepath.Join(CacheDir(project), "results")
}

// projectSlug makes a filesystem-safe directory name from a project name.
func projectSlug(project string) string {
	out := make([]rune, 0, len(project))
	for _, r := range project {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "default"
	}
	return string(out)
}
