package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/artist-booking/internal/bootstrap"
	"github.com/example/artist-booking/internal/config"
)

func newSeedCommand(flags *globalFlags) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, artists, slots and moments from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open seed file: %w", err)
			}
			defer f.Close()

			file, err := bootstrap.ParseSeed(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.StorageDriver == config.DriverMemory {
				yellow.Fprintln(out, "storage_driver is memory: seeded data will be discarded on exit")
			}

			store, err := bootstrap.OpenStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			services := bootstrap.NewServices(store, bootstrap.Dependencies{
				Logger:      logger,
				MaxPageSize: cfg.MaxPageSize,
			})
			report, err := bootstrap.Seed(cmd.Context(), services, file)
			if err != nil {
				return err
			}

			green.Fprintf(out, "seeded %d categories, %d artists, %d slots, %d moments\n",
				report.Categories, report.Artists, report.Slots, report.Moments)
			if report.Warnings > 0 {
				yellow.Fprintf(out, "%d moments overlap another moment of the same artist\n", report.Warnings)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "seed YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
