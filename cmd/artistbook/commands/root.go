// Package commands implements the artistbook command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/artist-booking/internal/config"
	"github.com/example/artist-booking/internal/logging"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "path to a YAML config file (default $ARTISTBOOK_CONFIG)")
	fs.StringVar(&g.logLevel, "log-level", "", "override log_level (debug, info, warn, error)")
}

// load reads the configuration and builds the process logger writing to w.
func (g *globalFlags) load(w io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	logger, err := logging.New(w, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// NewRootCommand assembles the artistbook command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "artistbook",
		Short: "Artist booking and availability service",
		Long: `artistbook manages artists, their availability slots and confirmed bookings
("moments"), and answers which slots are still free once bookings are subtracted.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	flags.register(root.PersistentFlags())

	root.AddCommand(
		newServeCommand(flags),
		newMigrateCommand(flags),
		newSeedCommand(flags),
		newHashTokenCommand(),
	)
	return root
}

// PrintError reports a command failure on w.
func PrintError(w io.Writer, err error) {
	red.Fprintf(w, "error: ")
	fmt.Fprintln(w, err)
}

func init() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}
