package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gookit/validate"

	"github.com/suykerbuyk/x-heatmap/internal/archive"
	"github.com/suykerbuyk/x-heatmap/internal/tweets"
)

// Config holds all x-heatmap configuration.
type Config struct {
	// Timezone is an IANA name, "UTC", or "Local" (the host zone).
	Timezone string `toml:"timezone"`

	Archive     ArchiveConfig     `toml:"archive"`
	Aggregation AggregationConfig `toml:"aggregation"`
	Logging     LoggingConfig     `toml:"logging"`
	Cache       CacheConfig       `toml:"cache"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Export      ExportConfig      `toml:"export"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

type ArchiveConfig struct {
	CandidatePaths []string `toml:"candidate_paths" validate:"required"`
	RecordPrefixes []string `toml:"record_prefixes" validate:"required"`
	MaxSizeMB      int      `toml:"max_size_mb" validate:"min:0"`
}

type AggregationConfig struct {
	Workers int `toml:"workers" validate:"min:0"`
}

type LoggingConfig struct {
	Level  string `toml:"level" validate:"required|in:trace,debug,info,warn,error"`
	Format string `toml:"format" validate:"required|in:console,json"`
}

type CacheConfig struct {
	Enabled    bool `toml:"enabled"`
	SizeMB     int  `toml:"size_mb" validate:"min:1"`
	TTLSeconds int  `toml:"ttl_seconds" validate:"min:0"`
}

type MetricsConfig struct {
	Enabled  bool   `toml:"enabled"`
	Textfile string `toml:"textfile"`
}

type ExportConfig struct {
	Dir string `toml:"dir" validate:"required"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timezone: "Local",
		Archive: ArchiveConfig{
			CandidatePaths: append([]string(nil), archive.DefaultCandidatePaths...),
			RecordPrefixes: append([]string(nil), tweets.DefaultPrefixes...),
			MaxSizeMB:      2048,
		},
		Aggregation: AggregationConfig{
			Workers: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Cache: CacheConfig{
			Enabled:    false,
			SizeMB:     64,
			TTLSeconds: 3600,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Export: ExportConfig{
			Dir: "~/.local/share/x-heatmap",
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	cfg := DefaultConfig()
	cfg.expand()
	return cfg, cfg.Validate()
}

// LoadFile reads config from path on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Path = path
	cfg.expand()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) expand() {
	c.Export.Dir = expandHome(c.Export.Dir)
	c.Metrics.Textfile = expandHome(c.Metrics.Textfile)
}

// Validate checks field rules and that the timezone resolves.
func (c Config) Validate() error {
	sections := []any{&c.Archive, &c.Aggregation, &c.Logging, &c.Cache, &c.Export}
	for _, s := range sections {
		v := validate.Struct(s)
		if !v.Validate() {
			return v.Errors
		}
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return errors.New("metrics.textfile is required when metrics are enabled")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Empty and "Local" map to the host zone.
func (c Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	case "UTC", "utc":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MaxArchiveBytes returns the archive size limit in bytes, 0 for unlimited.
func (c Config) MaxArchiveBytes() int64 {
	return int64(c.Archive.MaxSizeMB) << 20
}

// TTL returns the cache entry lifetime, 0 for entries that never expire.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(max(c.TTLSeconds, 0)) * time.Second
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "x-heatmap", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "x-heatmap", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
