package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/config"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/database"
	"github.com/VaclavOrsag/bakalarka-rozpocet/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the embedded schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE:  withMigrator(migrateUp),
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back the last N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  withMigrator(migrateDown),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE:  withMigrator(migrateVersion),
		},
	)
	return root
}

type migrateFunc func(cmd *cobra.Command, m *migrate.Migrate, args []string) error

// withMigrator opens the configured database's migrator around fn.
func withMigrator(fn migrateFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger.Init(cfg.Env)
		defer logger.Sync()

		m, err := database.NewMigrator(database.NewConfig(cfg))
		if err != nil {
			return err
		}
		defer func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				logger.Get().Warnw("migrate source close error", "error", srcErr)
			}
			if dbErr != nil {
				logger.Get().Warnw("migrate database close error", "error", dbErr)
			}
		}()

		logger.Get().Debugw("migrator opened", "driver", cfg.DBDriver)
		return fn(cmd, m, args)
	}
}

func migrateUp(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return nil
}

func migrateDown(cmd *cobra.Command, m *migrate.Migrate, args []string) error {
	steps := 1
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		steps = n
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s)\n", steps)
	return nil
}

func migrateVersion(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Version: %d, Dirty: %v\n", version, dirty)
	return nil
}
