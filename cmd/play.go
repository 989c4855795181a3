package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Jump straight into a focus session",
	RunE: func(cmd *cobra.Command, args []string) error {
		fast, _ := cmd.Flags().GetBool("fast")
		return runApp(cmd, app.Options{
			SkipIntro:    true,
			StartSession: true,
			Fast:         fast,
		})
	},
}

func init() {
	playCmd.Flags().Bool("fast", false, "Run the short test cycle instead of a full session")
}
