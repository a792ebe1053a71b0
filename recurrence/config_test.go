package recurrence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	for name, config := range map[string]EngineConfig{
		"default":          DefaultEngineConfig,
		"high performance": HighPerformanceConfig,
		"low memory":       LowMemoryConfig,
		"disabled cache":   DisabledCacheConfig,
	} {
		assert.NoError(t, config.Validate(), name)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func() EngineConfig
		wantErr bool
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			want: func() EngineConfig { return DefaultEngineConfig },
		},
		{
			name: "partial override",
			yaml: "cache:\n  ttl: 1h\nexpansion:\n  max_occurrences: 10\n",
			want: func() EngineConfig {
				c := DefaultEngineConfig
				c.Cache.TTL = time.Hour
				c.Expansion.MaxOccurrences = 10
				return c
			},
		},
		{
			name: "full document",
			yaml: `
cache_enabled: false
max_probe_occurrences: 7
expansion:
  max_occurrences: 0
  max_time_span: 720h
`,
			want: func() EngineConfig {
				c := DefaultEngineConfig
				c.CacheEnabled = false
				c.MaxProbeOccurrences = 7
				c.Expansion = ExpansionOptions{MaxTimeSpan: 720 * time.Hour}
				return c
			},
		},
		{name: "unknown key", yaml: "cache_size: 3\n", wantErr: true},
		{name: "bad duration", yaml: "cache:\n  ttl: soon\n", wantErr: true},
		{name: "zero ttl with cache", yaml: "cache:\n  ttl: 0s\n", wantErr: true},
		{name: "negative probe", yaml: "max_probe_occurrences: -1\n", wantErr: true},
		{name: "zero ttl without cache", yaml: "cache_enabled: false\ncache:\n  ttl: 0s\n", want: func() EngineConfig {
			c := DefaultEngineConfig
			c.CacheEnabled = false
			c.Cache.TTL = 0
			return c
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_probe_occurrences: 42\n"), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 42, config.MaxProbeOccurrences)
	assert.Equal(t, DefaultCacheConfig, config.Cache)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
