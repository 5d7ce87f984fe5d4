package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, GetDefault(), *cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, STORE_PATH, cfg.StorePath)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skipkv.yaml")
	data := `
store_path: /tmp/kv
max_level: 12
trace_level: debug
bench:
  threads: 4
  distribution: zipf
  zipf_s: 1.5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kv", cfg.StorePath)
	assert.Equal(t, 12, cfg.MaxLevel)
	assert.Equal(t, 4, cfg.Bench.Threads)
	assert.Equal(t, "zipf", cfg.Bench.Distribution)
	assert.Equal(t, 1.5, cfg.Bench.ZipfS)
	// 未指定的欄位保留預設值
	assert.Equal(t, INSERT_TIMES, cfg.Bench.InsertTimes)
	assert.Equal(t, tracing.LevelDebug, cfg.Level())
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skipkv.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_levle: 3\n"), 0o644))
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	broken := []func(*Config){
		func(c *Config) { c.MaxLevel = 33 },
		func(c *Config) { c.MaxLevel = -1 },
		func(c *Config) { c.TraceLevel = "loud" },
		func(c *Config) { c.Color = "sometimes" },
		func(c *Config) { c.Bench.Threads = 0 },
		func(c *Config) { c.Bench.KeyLength = 0 },
		func(c *Config) { c.Bench.SearchTimes = -5 },
		func(c *Config) { c.Bench.Distribution = "normal" },
		func(c *Config) { c.Bench.Distribution = "zipf"; c.Bench.ZipfS = 1 },
	}
	for i, mutate := range broken {
		cfg := GetDefault()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.validate(), ErrInvalidConfig, "case %d", i)
	}
	cfg := GetDefault()
	assert.NoError(t, cfg.validate())
}

func TestDumpRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetDefault()
	cfg.Seed = 99
	cfg.Bench.Threads = 8
	require.NoError(t, cfg.Dump(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}
