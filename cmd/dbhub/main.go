package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bgunnarsson/dbhub/internal/app"
	"github.com/bgunnarsson/dbhub/internal/print"
)

var (
	format  string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "dbhub",
		Short:         "Run ad-hoc SQL against Postgres, MySQL or SQLite",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: table or json (default: table on a TTY, json otherwise)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log connection lifecycle to stderr")

	root.AddCommand(newQueryCommand(), newTablesCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func outputFormat() string {
	if format != "" {
		return format
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "table"
	}
	return "json"
}

func newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <conn-string> <sql>",
		Short: "Execute a SQL statement and print the result set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args[0], args[1])
		},
	}
}

func runQuery(ctx context.Context, connString, sqlText string) error {
	logger := newLogger()

	core := app.New()
	defer core.Close()

	handle, err := core.Connect(ctx, connString)
	if err != nil {
		return err
	}
	logger.Debug("connected", "handle", handle)

	rows, err := core.Execute(ctx, handle, sqlText)
	if err != nil {
		return err
	}
	logger.Debug("query finished", "rows", len(rows))

	if outputFormat() == "json" {
		return print.RenderJSON(os.Stdout, rows)
	}
	print.RenderTable(os.Stdout, rows)
	return nil
}

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <conn-string>",
		Short: "List user tables for a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd.Context(), args[0])
		},
	}
}

func runTables(ctx context.Context, connString string) error {
	logger := newLogger()

	core := app.New()
	defer core.Close()

	handle, err := core.Connect(ctx, connString)
	if err != nil {
		return err
	}
	logger.Debug("connected", "handle", handle)

	names, err := core.ListTables(ctx, handle)
	if err != nil {
		return err
	}

	if outputFormat() == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	}
	print.RenderNames(os.Stdout, names)
	return nil
}
