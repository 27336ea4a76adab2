package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2048, cfg.ChunkCapacity)
	assert.Equal(t, ":8123", cfg.Addr)
	assert.EqualValues(t, 64<<20, cfg.MemoryLimit)
	assert.GreaterOrEqual(t, cfg.Threads, 1)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvThreads:        "3",
		EnvChunkCapacity:  " 16 ",
		EnvMemoryLimit:    "2MiB",
		EnvMaxStringBytes: "128",
		EnvAddr:           "127.0.0.1:9000",
		EnvLogLevel:       "debug",
		EnvLogFormat:      "json",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Threads)
	assert.Equal(t, 16, cfg.ChunkCapacity)
	assert.EqualValues(t, 2<<20, cfg.MemoryLimit)
	assert.Equal(t, 128, cfg.MaxStringBytes)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	opts := cfg.EngineOptions()
	assert.Equal(t, 3, opts.Threads)
	assert.EqualValues(t, 2<<20, opts.MemoryLimit)
}

func TestApplyEnvEmptyKeepsDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{EnvThreads: ""})))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnvErrors(t *testing.T) {
	for env, v := range map[string]string{
		EnvThreads:        "many",
		EnvChunkCapacity:  "1.5",
		EnvMemoryLimit:    "lots",
		EnvMaxStringBytes: "-1",
	} {
		cfg := Default()
		err := cfg.ApplyEnv(envMap(map[string]string{env: v}))
		assert.ErrorContains(t, err, env)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threads", func(c *Config) { c.Threads = 0 }},
		{"chunk capacity", func(c *Config) { c.ChunkCapacity = 0 }},
		{"memory limit", func(c *Config) { c.MemoryLimit = -1 }},
		{"string bytes", func(c *Config) { c.MaxStringBytes = -1 }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseBytes(t *testing.T) {
	tests := map[string]int64{
		"0":     0,
		"4096":  4096,
		"1KiB":  1024,
		"64MiB": 64 << 20,
		"1 GiB": 1 << 30,
		"2MB":   2000000,
		"512b":  512,
		" 3kb ": 3000,
	}
	for in, want := range tests {
		got, err := ParseBytes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "MiB", "-5", "1.5GB"} {
		_, err := ParseBytes(in)
		assert.Error(t, err, in)
	}
}
