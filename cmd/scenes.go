package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/content"
	"github.com/abhisek/neuroveil/internal/narrative"
)

var scenesCmd = &cobra.Command{
	Use:   "scenes",
	Short: "Browse and check the story graph",
}

var scenesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every scene",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%-20s  %-44s  %s\n", "ID", "Title", "Choices")
		fmt.Fprintln(out, strings.Repeat("─", 76))

		scenes := g.Scenes()
		for _, s := range scenes {
			title := s.Title
			if len(title) > 44 {
				title = title[:41] + "..."
			}
			fmt.Fprintf(out, "%-20s  %-44s  %d\n", s.ID, title, len(s.Choices))
		}
		fmt.Fprintf(out, "\n%d scenes\n", len(scenes))
		return nil
	},
}

var scenesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a scene and where its choices lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		s, ok := g.Scene(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", narrative.ErrUnknownScene, args[0])
		}
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, s.Title)
		if s.Kicker != "" {
			fmt.Fprintln(out, s.Kicker)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, s.Body)
		fmt.Fprintln(out)
		if s.Terminal() {
			fmt.Fprintln(out, "(terminal scene)")
		}
		for i, c := range s.Choices {
			fmt.Fprintf(out, "  %d. %s\n", i+1, c)
		}
		return nil
	},
}

var scenesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every scene reference resolves",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph()
		if err != nil {
			return err
		}
		if err := narrative.Validate(g); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, id := range narrative.Unreachable(g) {
			fmt.Fprintf(out, "warning: scene %q is unreachable\n", id)
		}
		fmt.Fprintf(out, "%d scenes OK\n", len(g.Scenes()))
		return nil
	},
}

func init() {
	scenesCmd.AddCommand(scenesListCmd)
	scenesCmd.AddCommand(scenesShowCmd)
	scenesCmd.AddCommand(scenesValidateCmd)
}

func loadGraph() (*narrative.Graph, error) {
	pack, err := content.Default()
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return narrative.FromPack(pack), nil
}
