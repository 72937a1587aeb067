package main

import (
	"os"

	"github.com/example/artist-booking/cmd/artistbook/commands"
)

// Version information, set during build.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	root := commands.NewRootCommand(os.Stdout, os.Stderr)
	root.Version = version + " (commit: " + commit + ")"
	if err := root.Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
