package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/app"
	"github.com/abhisek/neuroveil/internal/profile"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset stability, score and story progress",
	Long: "Backs up the stored profile as a snapshot, then restores defaults.\n" +
		"Use --restore to bring back the most recent snapshot instead.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		restore, _ := cmd.Flags().GetBool("restore")

		cfg, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		out := cmd.OutOrStdout()
		if restore {
			snap, err := st.SnapshotRepo().Latest(ctx)
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}
			if snap == nil {
				return fmt.Errorf("no snapshot to restore")
			}
			if err := st.KV().Set(ctx, profile.DefaultKey, snap.Data.Profile); err != nil {
				return fmt.Errorf("restore profile: %w", err)
			}
			fmt.Fprintf(out, "Restored profile from %s (%s).\n",
				snap.Timestamp.Local().Format("2006-01-02 15:04:05"), snap.Data.Reason)
			return nil
		}

		rt, err := app.Bootstrap(ctx, cfg, st)
		if err != nil {
			return err
		}
		if err := rt.Snapshot(ctx, "cli reset"); err != nil {
			return fmt.Errorf("back up profile: %w", err)
		}
		rt.Engine.Reset(ctx)
		fmt.Fprintln(out, "Profile reset. Run `neuroveil reset --restore` to undo.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("restore", false, "Restore the most recent profile snapshot")
}
