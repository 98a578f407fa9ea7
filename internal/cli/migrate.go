package cli

import (
	"fmt"

	"github.com/isdelr/contactbook/internal/config"
	"github.com/isdelr/contactbook/internal/database"
	"github.com/spf13/cobra"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.EnvFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runMigrate(cmd, cfg.DatabasePath)
		},
	}
}

func runMigrate(cmd *cobra.Command, path string) error {
	db, err := database.New(path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	version, err := database.SchemaVersion(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d applied to %s\n", version, path)
	return nil
}
