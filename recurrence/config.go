package recurrence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// Cache configuration
	CacheEnabled bool        `yaml:"cache_enabled"`
	Cache        CacheConfig `yaml:"cache"`

	// MaxProbeOccurrences bounds the rule occurrences HasOccurrenceInRange
	// inspects before giving up; 0 means no bound.
	MaxProbeOccurrences int `yaml:"max_probe_occurrences"`

	// Expansion is the default for callers that do not pick their own
	// ExpansionOptions, such as the command line tool.
	Expansion ExpansionOptions `yaml:"expansion"`
}

// DefaultEngineConfig provides sensible defaults for production use
var DefaultEngineConfig = EngineConfig{
	CacheEnabled: true,
	Cache:        DefaultCacheConfig,

	MaxProbeOccurrences: 100,
	Expansion:           DefaultExpansionOptions,
}

// HighPerformanceConfig is optimized for high-traffic scenarios
var HighPerformanceConfig = EngineConfig{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             30 * time.Minute, // Longer cache TTL
		MaxEntries:      5000,             // More cache entries
		CleanupInterval: 10 * time.Minute, // Less frequent cleanup
	},

	MaxProbeOccurrences: 50, // Fewer occurrences checked for speed
	Expansion: ExpansionOptions{
		MaxOccurrences: 500,
		MaxTimeSpan:    365 * 24 * time.Hour,
	},
}

// LowMemoryConfig is optimized for memory-constrained environments
var LowMemoryConfig = EngineConfig{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             5 * time.Minute, // Shorter cache TTL
		MaxEntries:      100,             // Fewer cache entries
		CleanupInterval: 2 * time.Minute, // More frequent cleanup
	},

	MaxProbeOccurrences: 200, // More thorough checking
	Expansion: ExpansionOptions{
		MaxOccurrences: 200,
		MaxTimeSpan:    180 * 24 * time.Hour,
	},
}

// DisabledCacheConfig turns off caching entirely
var DisabledCacheConfig = EngineConfig{
	CacheEnabled: false,

	MaxProbeOccurrences: 1000, // More thorough without cache
	Expansion:           DefaultExpansionOptions,
}

// Validate reports settings the engine cannot run with.
func (c EngineConfig) Validate() error {
	if c.MaxProbeOccurrences < 0 {
		return fmt.Errorf("max_probe_occurrences must not be negative, got %d", c.MaxProbeOccurrences)
	}
	if c.Expansion.MaxOccurrences < 0 || c.Expansion.MaxTimeSpan < 0 {
		return errors.New("expansion limits must not be negative")
	}
	if !c.CacheEnabled {
		return nil
	}
	if c.Cache.TTL <= 0 || c.Cache.CleanupInterval <= 0 {
		return errors.New("cache ttl and cleanup_interval must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	return nil
}

// LoadConfig reads a YAML engine configuration. Keys missing from the file
// keep their DefaultEngineConfig value; unknown keys are an error.
// Durations are written as Go duration strings, e.g. "15m".
func LoadConfig(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for an in-memory document.
func ParseConfig(data []byte) (EngineConfig, error) {
	config := DefaultEngineConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return EngineConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return EngineConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}
