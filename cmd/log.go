package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/store"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print the persisted system log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")
		severity, _ := cmd.Flags().GetString("severity")

		_, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		lines, err := st.EventRepo().QueryLog(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query log: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(lines) == 0 {
			fmt.Fprintln(out, "Log is empty.")
			return nil
		}

		// Newest first from the store; print oldest first like the console.
		for i := len(lines) - 1; i >= 0; i-- {
			l := lines[i]
			if severity != "" && l.Severity != severity {
				continue
			}
			fmt.Fprintf(out, "%s  %-7s  %s\n",
				l.Timestamp.Local().Format("2006-01-02 15:04:05"), l.Severity, l.Text)
		}
		return nil
	},
}

func init() {
	logCmd.Flags().Int("limit", 50, "Number of recent lines to show (0 = all)")
	logCmd.Flags().String("severity", "", "Only show lines of this severity (info, success, warning)")
}
