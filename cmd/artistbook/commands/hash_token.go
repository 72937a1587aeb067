package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/artist-booking/internal/access"
)

func newHashTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token <token>",
		Short: "Print the argon2id hash of an API token for the tokens config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := access.HashToken(args[0], access.DefaultArgon2idParams)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
