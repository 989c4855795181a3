package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/config"
	"github.com/abhisek/neuroveil/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *store.Migrator) error {
			if err := m.Up(); err != nil {
				if errors.Is(err, store.ErrNoChange) {
					fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
					return nil
				}
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *store.Migrator) error {
			if err := m.Down(); err != nil {
				if errors.Is(err, store.ErrNoChange) {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back.")
					return nil
				}
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *store.Migrator) error {
			return printVersion(cmd, m)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

// withMigrator opens the database without migrating it and runs fn.
func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	db, err := store.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := store.NewMigrator(db)
	if err != nil {
		return err
	}
	return fn(m)
}

func printVersion(cmd *cobra.Command, m *store.Migrator) error {
	v, dirty, ok, err := m.Version()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case !ok:
		fmt.Fprintln(out, "Schema version: none")
	case dirty:
		fmt.Fprintf(out, "Schema version: %d (dirty)\n", v)
	default:
		fmt.Fprintf(out, "Schema version: %d\n", v)
	}
	return nil
}
