package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Manage the database schema with the dialect-specific migrations
under KLMWIKI_DATABASE_MIGRATIONS_PATH.

Subcommands:
  up       - Apply pending migrations
  down     - Roll back the last migration
  goto     - Migrate up or down to a version
  version  - Print the current version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return a.db.RunMigrations(a.cfg.Database.MigrationsPath)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return a.db.MigrateDown(a.cfg.Database.MigrationsPath)
		})
	},
}

var migrateGotoCmd = &cobra.Command{
	Use:   "goto VERSION",
	Short: "Migrate to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withApp(func(a *app) error {
			return a.db.MigrateToVersion(a.cfg.Database.MigrationsPath, uint(version))
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			version, dirty, err := a.db.MigrationVersion(a.cfg.Database.MigrationsPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateGotoCmd, migrateVersionCmd)
}

// withApp runs fn against a bootstrapped app and closes it afterwards
func withApp(fn func(a *app) error) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
