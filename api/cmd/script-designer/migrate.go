package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrationsPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or inspect database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to run (database is up to date)")
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		log.Info("migrations applied")
		return nil
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate down: %w", err)
		}
		log.Info("rollback completed")
		return nil
	}),
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: withMigrate(func(m *migrate.Migrate, _ []string) error {
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("no migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrate version: %w", err)
		}
		log.Info("current version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	}),
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Set the schema version without running migrations",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrate(func(m *migrate.Migrate, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version number: %w", err)
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("migrate force: %w", err)
		}
		log.Info("forced version", zap.Int("version", v))
		return nil
	}),
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "migrations directory (default MIGRATIONS_PATH)")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateForceCmd)
}

func withMigrate(fn func(m *migrate.Migrate, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
		path := migrationsPath
		if path == "" {
			path = cfg.MigrationsPath
		}
		log.Debug("connecting to database", zap.String("migrations_path", path))

		m, err := migrate.New(fmt.Sprintf("file://%s", path), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create migration instance: %w", err)
		}
		defer m.Close()
		return fn(m, args)
	}
}
