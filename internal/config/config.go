// Package config holds the runtime settings of granuletvf. Values come from
// defaults, then GRANULETVF_* environment variables, then command-line flags.
package config

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/log"
)

// Environment variable names.
const (
	EnvThreads        = "GRANULETVF_THREADS"
	EnvChunkCapacity  = "GRANULETVF_CHUNK_CAPACITY"
	EnvMemoryLimit    = "GRANULETVF_MEMORY_LIMIT"
	EnvMaxStringBytes = "GRANULETVF_MAX_STRING_BYTES"
	EnvAddr           = "GRANULETVF_ADDR"
	EnvLogLevel       = "GRANULETVF_LOG_LEVEL"
	EnvLogFormat      = "GRANULETVF_LOG_FORMAT"
)

// Config is the full runtime configuration.
type Config struct {
	Threads        int
	ChunkCapacity  int
	MemoryLimit    int64 // bytes; 0 means unlimited
	MaxStringBytes int
	Addr           string
	Log            log.Config
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Threads:        runtime.NumCPU(),
		ChunkCapacity:  2048,
		MemoryLimit:    64 << 20,
		MaxStringBytes: 1 << 20,
		Addr:           ":8123",
		Log:            *log.DefaultConfig(),
	}
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		env string
		dst *int
	}{
		{EnvThreads, &c.Threads},
		{EnvChunkCapacity, &c.ChunkCapacity},
	}
	for _, f := range ints {
		v, ok := lookup(f.env)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s", f.env)
		}
		*f.dst = n
	}

	if v, ok := lookup(EnvMemoryLimit); ok && v != "" {
		n, err := ParseBytes(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvMemoryLimit)
		}
		c.MemoryLimit = n
	}
	if v, ok := lookup(EnvMaxStringBytes); ok && v != "" {
		n, err := ParseBytes(v)
		if err != nil {
			return errors.Wrapf(err, "%s", EnvMaxStringBytes)
		}
		c.MaxStringBytes = int(n)
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Threads < 1:
		return errors.Newf("threads must be at least 1, got %d", c.Threads)
	case c.ChunkCapacity < 1:
		return errors.Newf("chunk capacity must be at least 1, got %d", c.ChunkCapacity)
	case c.MemoryLimit < 0:
		return errors.Newf("memory limit must not be negative, got %d", c.MemoryLimit)
	case c.MaxStringBytes < 0:
		return errors.Newf("max string bytes must not be negative, got %d", c.MaxStringBytes)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Newf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Newf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// EngineOptions returns the engine settings of c.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		Threads:        c.Threads,
		ChunkCapacity:  c.ChunkCapacity,
		MaxStringBytes: c.MaxStringBytes,
		MemoryLimit:    c.MemoryLimit,
	}
}

var byteSuffixes = []struct {
	suffix string
	mult   int64
}{
	{"KIB", 1 << 10},
	{"MIB", 1 << 20},
	{"GIB", 1 << 30},
	{"KB", 1000},
	{"MB", 1000 * 1000},
	{"GB", 1000 * 1000 * 1000},
	{"B", 1},
}

// ParseBytes parses a byte count such as "4096", "64MiB" or "1GB".
func ParseBytes(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	mult := int64(1)
	for _, b := range byteSuffixes {
		if strings.HasSuffix(s, b.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, b.suffix))
			mult = b.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "invalid byte count")
	}
	if n < 0 {
		return 0, errors.Newf("negative byte count %d", n)
	}
	return n * mult, nil
}
