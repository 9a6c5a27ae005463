// Command migrate applies the SQL migrations to the postgres database.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"pennywise/internal/config"
	"pennywise/internal/database"
	"pennywise/internal/logger"
)

func main() {
	logger.Init(os.Getenv("PENNYWISE_ENV"))
	defer logger.Sync()

	if err := rootCmd().Execute(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func rootCmd() *cobra.Command {
	var configPath, source string
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the pennywise postgres schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("PENNYWISE_CONFIG"), "path to the config file")
	root.PersistentFlags().StringVar(&source, "source", "file://migrations", "migration source URL")

	// withMigrate opens a migrate instance for fn and closes it afterwards.
	withMigrate := func(fn func(m *migrate.Migrate, args []string) error) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Server.Database.Driver != "postgres" {
				return errors.New("SQL migrations target postgres; sqlite is auto-migrated by the API")
			}
			m, err := migrate.New(source, database.MigrateURL(cfg.Server.Database))
			if err != nil {
				return fmt.Errorf("failed to create migrate instance: %w", err)
			}
			defer func() {
				if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
					logger.Get().Warnw("closing migrate", "source_error", srcErr, "db_error", dbErr)
				}
			}()
			return fn(m, args)
		}
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration up failed: %w", err)
			}
			logger.Get().Info("Migrations applied successfully")
			return nil
		}),
	}

	down := &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: withMigrate(func(m *migrate.Migrate, args []string) error {
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
			logger.Get().Infof("Rolled back %d migration(s)", steps)
			return nil
		}),
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Get().Info("No migrations applied")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			logger.Get().Infow("schema version", "version", v, "dirty", dirty)
			return nil
		}),
	}

	force := &cobra.Command{
		Use:   "force <version>",
		Short: "Mark a version as applied and clear the dirty flag",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrate(func(m *migrate.Migrate, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			if err := m.Force(v); err != nil {
				return fmt.Errorf("force failed: %w", err)
			}
			logger.Get().Infof("Forced version %d", v)
			return nil
		}),
	}

	root.AddCommand(up, down, version, force)
	return root
}
