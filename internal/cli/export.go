package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/partdb/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
}

// ExportResult is the JSON payload of export.
type ExportResult struct {
	Database string `json:"database"`
	Table    string `json:"table"`
	Rows     int    `json:"rows"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the records into a SQLite database",
		Long: `Copy the records into a table of a SQLite database for ad-hoc SQL.

The table is named after the schema and is replaced on every export.
The data file is not modified.

Example:
  partdb export --db parts.db
  sqlite3 parts.db 'SELECT NAME, RETAILPRICE FROM part ORDER BY seq'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts.RootOptions, cmd, true)
	if err != nil {
		return err
	}

	db, err := export.Open(opts.Database)
	if err != nil {
		_ = sess.formatter.Error(ErrCodeExport, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			sess.logger.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	n, err := db.WriteCollection(ctx, sess.schema, sess.store.Records())
	if err != nil {
		_ = sess.formatter.Error(ErrCodeExport, err.Error(), nil)
		return WrapExitError(ExitFailure, "export failed", err)
	}
	sess.logger.Info("exported", "db", opts.Database, "table", sess.schema.Name, "rows", n)

	if sess.formatter.Format == "json" {
		return sess.formatter.Success(ExportResult{Database: opts.Database, Table: sess.schema.Name, Rows: n})
	}
	fmt.Fprintf(sess.formatter.Writer, "exported %d record(s) to %s (table %s)\n", n, opts.Database, sess.schema.Name)
	return nil
}
