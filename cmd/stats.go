package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/app"
	"github.com/abhisek/neuroveil/internal/store"
	"github.com/abhisek/neuroveil/internal/timer"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stability, scores and per-concept accuracy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		rt, err := app.Bootstrap(ctx, cfg, st)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		sep := strings.Repeat("─", 48)

		p := rt.Tracker.Profile()
		score := "—"
		if p.HasScore() {
			score = fmt.Sprintf("%d%%", *p.LastScore)
		}
		missed := "none"
		if len(p.MissedConcepts) > 0 {
			missed = strings.Join(p.MissedConcepts, ", ")
		}
		fmt.Fprintf(out, "Scene:      %s\n", p.CurrentSceneID)
		fmt.Fprintf(out, "Stability:  %d\n", p.Stability)
		fmt.Fprintf(out, "Last score: %s\n", score)
		fmt.Fprintf(out, "Missed:     %s\n", missed)

		stats, err := rt.Events.ConceptStats(ctx)
		if err != nil {
			return fmt.Errorf("query concept stats: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-20s  %8s  %8s  %8s\n", "Concept", "Answered", "Correct", "Accuracy")
		fmt.Fprintln(out, sep)
		if len(stats) == 0 {
			fmt.Fprintln(out, "No answers recorded yet.")
		}
		for _, s := range stats {
			fmt.Fprintf(out, "%-20s  %8d  %8d  %7.0f%%\n", s.Concept, s.Attempts, s.Correct, s.Accuracy()*100)
		}

		quizzes, err := rt.Events.QueryQuizzes(ctx, true, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query quizzes: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-19s  %7s  %5s  %s\n", "Finished", "Correct", "Score", "Missed")
		fmt.Fprintln(out, sep)
		if len(quizzes) == 0 {
			fmt.Fprintln(out, "No knowledge checks completed yet.")
		}
		for _, q := range quizzes {
			fmt.Fprintf(out, "%-19s  %3d/%-3d  %4d%%  %s\n",
				q.Timestamp.Local().Format("2006-01-02 15:04:05"),
				q.Correct, q.Total, q.Percent, strings.Join(q.Missed, ", "))
		}

		sessions, err := rt.Events.QuerySessions(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-19s  %-7s  %-5s  %s\n", "When", "Action", "Mode", "Remaining")
		fmt.Fprintln(out, sep)
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No focus sessions recorded yet.")
		}
		for _, s := range sessions {
			mode := "full"
			if s.Fast {
				mode = "fast"
			}
			fmt.Fprintf(out, "%-19s  %-7s  %-5s  %s\n",
				s.Timestamp.Local().Format("2006-01-02 15:04:05"),
				s.Action, mode, timer.Format(time.Duration(s.RemainingSecs)*time.Second))
		}

		snap, err := st.SnapshotRepo().Latest(ctx)
		if err != nil {
			return fmt.Errorf("query snapshots: %w", err)
		}
		if snap != nil {
			fmt.Fprintf(out, "\nLast backup: %s (%s)\n",
				snap.Timestamp.Local().Format("2006-01-02 15:04:05"), snap.Data.Reason)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 10, "Number of recent knowledge checks and sessions to show")
}
