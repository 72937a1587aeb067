package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/artist-booking/internal/config"
	"github.com/example/artist-booking/internal/persistence/sqlite"
	"github.com/example/artist-booking/internal/persistence/sqlite/migration"
)

func newMigrateCommand(flags *globalFlags) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQLite migrations",
		Long: `Apply every pending embedded migration to the configured SQLite database.
With --status, print applied and pending versions without changing anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if cfg.StorageDriver != config.DriverSQLite {
				return fmt.Errorf("migrate requires storage_driver %q, got %q", config.DriverSQLite, cfg.StorageDriver)
			}

			storage, err := sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLiteDSN), logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			out := cmd.OutOrStdout()
			if statusOnly {
				status, err := storage.MigrationStatus(cmd.Context())
				if err != nil {
					return err
				}
				printStatus(out, status)
				return nil
			}

			applied, err := storage.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				yellow.Fprintln(out, "database is up to date")
				return nil
			}
			for _, m := range applied {
				green.Fprintf(out, "applied %s", m.Version)
				fmt.Fprintf(out, " %s\n", m.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "print applied and pending migrations only")
	return cmd
}

func printStatus(out io.Writer, status migration.Status) {
	current := status.CurrentVersion
	if current == "" {
		current = "none"
	}
	cyan.Fprintf(out, "current version: %s\n", current)
	for _, m := range status.Applied {
		green.Fprintf(out, "  applied  %s", m.Version)
		fmt.Fprintf(out, "  %s\n", m.AppliedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	for _, m := range status.Pending {
		yellow.Fprintf(out, "  pending  %s", m.Version)
		fmt.Fprintf(out, "  %s\n", m.Description)
	}
}
