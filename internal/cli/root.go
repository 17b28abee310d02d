package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/IANDYI/maternal-care-service/internal/config"
	"github.com/IANDYI/maternal-care-service/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
}

// NewRootCommand creates the root command of the operator CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gestivactl",
		Short: "Operator tooling for the maternal care service",
		Long: `Operator tooling for the maternal care service.

Evaluates symptom snapshots offline, applies database migrations and
seeds the doctor directory.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewEvaluateCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedDoctorsCommand(opts))

	return cmd
}

// commandLogger logs to stderr so JSON output on stdout stays parseable
func commandLogger(opts *RootOptions, cmd *cobra.Command) *logrus.Logger {
	return logger.NewWithOutput(opts.LogLevel, "gestivactl", cmd.ErrOrStderr())
}

// openDatabase connects once without retries; operators rerun on failure
var openDatabase = func(ctx context.Context, dsn string, log *logrus.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("--db is required")
	}
	return config.ConnectDatabase(dsn, 1, 0, log)
}
