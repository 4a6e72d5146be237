// Package config loads ccpr configuration from file and environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// Config represents the application configuration.
// Repository and branch context is derived from git, not configuration.
type Config struct {
	AWS      AWSConfig      `mapstructure:"aws" toml:"aws"`
	Cache    CacheConfig    `mapstructure:"cache" toml:"cache"`
	Git      GitConfig      `mapstructure:"git" toml:"git"`
	Diff     DiffConfig     `mapstructure:"diff" toml:"diff"`
	Merge    MergeConfig    `mapstructure:"merge" toml:"merge"`
	Grep     GrepConfig     `mapstructure:"grep" toml:"grep"`
	Pipeline PipelineConfig `mapstructure:"pipeline" toml:"pipeline"`
}

// AWSConfig holds optional overrides for the SDK credential/region chain.
// Empty values defer entirely to the standard AWS environment variables and
// shared config files.
type AWSConfig struct {
	Profile string `mapstructure:"profile" toml:"profile"` // Optional named profile (AWS_PROFILE takes precedence)
	Region  string `mapstructure:"region" toml:"region"`   // Optional region override (AWS_REGION takes precedence)
}

// CacheConfig holds API response cache configuration.
type CacheConfig struct {
	Dir            string `mapstructure:"dir" toml:"dir"`                           // Cache directory (default: $TMPDIR/ccpr)
	TTLSeconds     int    `mapstructure:"ttl_seconds" toml:"ttl_seconds"`           // Default response TTL (CCPR_CACHE_SECS env overrides)
	BlobTTLSeconds int    `mapstructure:"blob_ttl_seconds" toml:"blob_ttl_seconds"` // TTL for grep blob fetches
}

// GitConfig holds optional git context overrides.
type GitConfig struct {
	DefaultBranch string `mapstructure:"default_branch" toml:"default_branch"` // Branch used by grep/pipeline when none given
}

// DiffConfig holds diff rendering configuration.
type DiffConfig struct {
	Context          int      `mapstructure:"context" toml:"context"`                     // Context lines around changes
	BinaryExtensions []string `mapstructure:"binary_extensions" toml:"binary_extensions"` // Extensions listed but never diffed
}

// MergeConfig holds merge command configuration.
type MergeConfig struct {
	DefaultStrategy string `mapstructure:"default_strategy" toml:"default_strategy"` // "squash", "fast_forward", "three_way"
}

// GrepConfig holds remote grep configuration.
type GrepConfig struct {
	Workers int `mapstructure:"workers" toml:"workers"` // Concurrent blob fetches
}

// PipelineConfig holds pipeline lookup configuration.
type PipelineConfig struct {
	NameFormat string `mapstructure:"name_format" toml:"name_format"` // Pipeline name template, %s placeholders for repo and branch
}

// ValidMergeStrategies is the list of supported CodeCommit merge strategies.
var ValidMergeStrategies = []string{"squash", "fast_forward", "three_way"}

// ValidateMergeStrategy validates that a merge strategy is supported.
func ValidateMergeStrategy(strategy string) error {
	if strategy == "" {
		return nil // Empty is allowed, will use default
	}
	for _, valid := range ValidMergeStrategies {
		if strategy == valid {
			return nil
		}
	}
	return errors.Newf("invalid merge strategy %q: must be one of: squash, fast_forward, three_way", strategy)
}

// Load loads the configuration from file and environment variables.
func Load() (*Config, error) {
	config := &Config{}

	setDefaults()

	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := expandPaths(config); err != nil {
		return nil, errors.Wrap(err, "failed to expand paths")
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return config, nil
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	if err := ValidateMergeStrategy(c.Merge.DefaultStrategy); err != nil {
		return errors.Wrap(err, "merge.default_strategy")
	}
	if c.Diff.Context < 0 {
		return errors.Newf("diff.context must not be negative, got %d", c.Diff.Context)
	}
	if c.Grep.Workers < 1 {
		return errors.Newf("grep.workers must be at least 1, got %d", c.Grep.Workers)
	}
	return nil
}

// CacheTTLSeconds returns the effective response cache TTL, honoring the
// CCPR_CACHE_SECS environment override. Zero disables caching.
func (c *Config) CacheTTLSeconds() int {
	if v := os.Getenv("CCPR_CACHE_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return secs
		}
	}
	return c.Cache.TTLSeconds
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("aws.profile", "")
	viper.SetDefault("aws.region", "")

	viper.SetDefault("cache.dir", filepath.Join(os.TempDir(), "ccpr"))
	viper.SetDefault("cache.ttl_seconds", 20)
	viper.SetDefault("cache.blob_ttl_seconds", 120)

	viper.SetDefault("git.default_branch", "master")

	viper.SetDefault("diff.context", 3)
	viper.SetDefault("diff.binary_extensions", []string{".zip", ".docx", ".pptx"})

	viper.SetDefault("merge.default_strategy", "squash")

	viper.SetDefault("grep.workers", 5)

	viper.SetDefault("pipeline.name_format", "%s_%s")
}

// expandPaths expands ~ in configured paths.
func expandPaths(config *Config) error {
	var err error
	config.Cache.Dir, err = expandPath(config.Cache.Dir)
	return err
}

// expandPath expands ~ to home directory.
func expandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, path[1:]), nil
}
