package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/app"
	"github.com/abhisek/neuroveil/internal/config"
	"github.com/abhisek/neuroveil/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "neuroveil",
	Short: "Story-driven study timer for neuroanatomy",
	Long: "NEUROVEIL is a terminal story where Pomodoro sessions, knowledge checks\n" +
		"and scene choices train your recall of brain structures.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		noIntro, _ := cmd.Flags().GetBool("no-intro")
		return runApp(cmd, app.Options{SkipIntro: noIntro})
	},
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides NEUROVEIL_DB env var)")
	rootCmd.Flags().Bool("no-intro", false, "Skip the boot sequence")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(scenesCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then NEUROVEIL_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		p = cfg.DBPath
	}
	if p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore loads config and opens the migrated store it points at.
func openStore(cmd *cobra.Command) (config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, st, nil
}
