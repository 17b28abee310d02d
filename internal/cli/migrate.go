package cli

import (
	"github.com/IANDYI/maternal-care-service/internal/config"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := commandLogger(rootOpts, cmd)
			db, err := openDatabase(cmd.Context(), dsn, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := config.RunMigrations(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "db", "", "PostgreSQL connection string")
	return cmd
}
