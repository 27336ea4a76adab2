package main

import (
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/harshithgowdakt/granuletvf/internal/config"
	"github.com/harshithgowdakt/granuletvf/internal/engine"
	"github.com/harshithgowdakt/granuletvf/internal/hello"
	"github.com/harshithgowdakt/granuletvf/internal/log"
	"github.com/harshithgowdakt/granuletvf/internal/processor"
	"github.com/harshithgowdakt/granuletvf/internal/tablefunc"
)

// Version information set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "granuletvf",
	Short:         "Streaming table functions behind a small SQL engine",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("granuletvf version {{.Version}}\n")

	f := rootCmd.PersistentFlags()
	f.Int("threads", 0, "Workers offered to each table function scan (default: number of CPUs)")
	f.Int("chunk-capacity", 0, "Rows per produced chunk (default 2048)")
	f.String("memory-limit", "", "Memory budget for bound arguments, e.g. 64MiB; 0 is unlimited")
	f.String("max-string-bytes", "", "Largest string a table function may produce, e.g. 1MiB")
	f.String("log-level", "", "Log level: debug, info, warn, error")
	f.String("log-format", "", "Log format: text or json")
}

// loadConfig builds the configuration.
// Priority: CLI flags > environment variables > defaults
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("threads") {
		cfg.Threads, _ = flags.GetInt("threads")
	}
	if flags.Changed("chunk-capacity") {
		cfg.ChunkCapacity, _ = flags.GetInt("chunk-capacity")
	}
	if flags.Changed("memory-limit") {
		v, _ := flags.GetString("memory-limit")
		n, err := config.ParseBytes(v)
		if err != nil {
			return cfg, errors.Wrap(err, "--memory-limit")
		}
		cfg.MemoryLimit = n
	}
	if flags.Changed("max-string-bytes") {
		v, _ := flags.GetString("max-string-bytes")
		n, err := config.ParseBytes(v)
		if err != nil {
			return cfg, errors.Wrap(err, "--max-string-bytes")
		}
		cfg.MaxStringBytes = int(n)
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := flags.GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}

	return cfg, cfg.Validate()
}

// newEngine registers the built-in table functions and wires the
// processor pipeline as the SELECT executor.
func newEngine(cfg config.Config, logger *slog.Logger) (*engine.Engine, error) {
	registry := tablefunc.NewRegistry()
	if err := hello.Register(registry); err != nil {
		return nil, err
	}
	e := engine.New(registry, cfg.EngineOptions(), logger)
	e.SelectExecutor = processor.ExecuteSelect
	return e, nil
}

// setup loads the configuration and builds a logger and an engine from it.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, *engine.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cfg, nil, nil, err
	}
	logger := log.Init(&cfg.Log)
	e, err := newEngine(cfg, logger)
	return cfg, logger, e, err
}
