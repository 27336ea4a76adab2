package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harshithgowdakt/granuletvf/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP query server",
	Long: `Serves queries over HTTP:

  GET  /?query=<sql>[&format=JSON|CSV|Native][&compress=1]
  POST /            (query in the body)
  GET  /ping`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, e, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("starting granuletvf",
			"version", Version,
			"threads", cfg.Threads,
			"memory_limit", cfg.MemoryLimit,
			"functions", len(e.Functions().Functions()))
		return server.New(e, logger).Run(ctx, cfg.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default :8123)")
}
