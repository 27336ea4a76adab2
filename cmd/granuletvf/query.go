package main

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/harshithgowdakt/granuletvf/internal/server"
)

var queryCmd = &cobra.Command{
	Use:   "query [SQL]",
	Short: "Run one query and print the result",
	Long: `Runs a single statement and writes the result to stdout. Without an
argument the statement is read from stdin.

  granuletvf query "SELECT greetings FROM hello('Alice', count => 3)"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, e, err := setup(cmd)
		if err != nil {
			return err
		}

		sql, err := readQuery(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := e.ExecuteSQL(ctx, sql)
		if err != nil {
			if hints := errors.FlattenHints(err); hints != "" {
				return errors.Newf("%v\nhint: %s", err, hints)
			}
			return err
		}

		formatName, _ := cmd.Flags().GetString("format")
		out := bufio.NewWriter(cmd.OutOrStdout())
		if err := server.FormatResult(out, result, server.ParseFormat(formatName)); err != nil {
			return err
		}
		return out.Flush()
	},
}

func readQuery(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(err, "read query from stdin")
	}
	sql := strings.TrimSpace(string(data))
	if sql == "" {
		return "", errors.New("empty query")
	}
	return sql, nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringP("format", "f", "TabSeparated", "Output format: TabSeparated, CSV, JSON")
}
