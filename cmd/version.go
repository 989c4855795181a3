package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/content"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "neuroveil", version)
		pack, err := content.Default()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "story pack", pack.Version)
		return nil
	},
}
