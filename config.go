package tiled

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pelletier/go-toml"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v2"

	"github.com/qri-io/tiled-go/cache"
)

// Config is the configuration of a tiled process.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel    string         `toml:"log-level" yaml:"log_level"`
	ObjectCache CacheConfig    `toml:"object-cache" yaml:"object_cache"`
	Sequence    SequenceConfig `toml:"sequence" yaml:"sequence"`
}

// CacheConfig bounds the object cache. AvailableBytes of at least 1 is a
// byte count, between 0 and 1 a fraction of system memory. With both
// bounds zero the cache retains nothing.
type CacheConfig struct {
	AvailableBytes Capacity `toml:"available-bytes" yaml:"available_bytes"`
	MaxEntries     int      `toml:"max-entries" yaml:"max_entries"`
}

// Capacity is a byte count or a fraction of system memory. It accepts TOML
// integers as well as floats.
type Capacity float64

var _ toml.Unmarshaler = (*Capacity)(nil)

func (c *Capacity) UnmarshalTOML(v interface{}) error {
	switch n := v.(type) {
	case int64:
		*c = Capacity(n)
	case float64:
		*c = Capacity(n)
	default:
		return fmt.Errorf("capacity must be a number, got %T", v)
	}
	return nil
}

type SequenceConfig struct {
	Extensions         []string `toml:"extensions" yaml:"extensions"`
	Compression        string   `toml:"compression" yaml:"compression"`
	MaxOutliers        int      `toml:"max-outliers" yaml:"max_outliers"`
	MaxOutlierFraction float64  `toml:"max-outlier-fraction" yaml:"max_outlier_fraction"`
	Concurrency        int      `toml:"concurrency" yaml:"concurrency"`
	StatFingerprint    bool     `toml:"stat-fingerprint" yaml:"stat_fingerprint"`
}

// DefaultConfig caches up to a tenth of system memory and sniffs TIFF
// sequences with the default thresholds.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		ObjectCache: CacheConfig{
			AvailableBytes: 0.1,
		},
		Sequence: SequenceConfig{
			Extensions:         append([]string(nil), DefaultExtensions...),
			MaxOutliers:        DefaultMaxOutliers,
			MaxOutlierFraction: DefaultMaxOutlierFraction,
			Concurrency:        DefaultConcurrency,
		},
	}
}

// LoadConfig reads a TOML or YAML file, chosen by extension, over the
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.levelOption(); err != nil {
		return err
	}
	if c.ObjectCache.AvailableBytes < 0 {
		return fmt.Errorf("object cache available bytes must not be negative")
	}
	if c.ObjectCache.MaxEntries < 0 {
		return fmt.Errorf("object cache max entries must not be negative")
	}
	s := c.Sequence
	if s.MaxOutliers < 0 {
		return fmt.Errorf("sequence max outliers must not be negative")
	}
	if s.MaxOutlierFraction < 0 || s.MaxOutlierFraction > 1 {
		return fmt.Errorf("sequence max outlier fraction must be within [0, 1], got %v", s.MaxOutlierFraction)
	}
	for _, ext := range s.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("sequence extension %q must start with a dot", ext)
		}
	}
	return ValidateCompression(s.Compression)
}

func (c *Config) levelOption() (level.Option, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	}
	return nil, fmt.Errorf("unknown log level %q", c.LogLevel)
}

// Logger filters l by the configured level.
func (c *Config) Logger(l log.Logger) (log.Logger, error) {
	opt, err := c.levelOption()
	if err != nil {
		return nil, err
	}
	return level.NewFilter(l, opt), nil
}

// NewCache constructs the object cache. A nil registerer skips metrics
// registration.
func (c *Config) NewCache(reg prometheus.Registerer, logger log.Logger) (*cache.Cache, error) {
	n, err := cache.ResolveAvailableBytes(float64(c.ObjectCache.AvailableBytes))
	if err != nil {
		return nil, err
	}
	return cache.New(cache.Options{
		MaxEntries:     c.ObjectCache.MaxEntries,
		AvailableBytes: n,
		Logger:         logger,
		Registerer:     reg,
	})
}

// SequenceOptions converts the sequence section into reader options.
func (c *Config) SequenceOptions(oc *cache.Cache, logger log.Logger) SequenceOptions {
	s := c.Sequence
	return SequenceOptions{
		Extensions:         append([]string(nil), s.Extensions...),
		Compression:        s.Compression,
		MaxOutliers:        s.MaxOutliers,
		MaxOutlierFraction: s.MaxOutlierFraction,
		Concurrency:        s.Concurrency,
		StatFingerprint:    s.StatFingerprint,
		Cache:              oc,
		Logger:             logger,
	}
}
