package postgres

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies every pending up migration found at migrationsPath
// (for example "file://migrations"). No pending migrations is not an error.
func RunMigrations(databaseURL, migrationsPath string, logger *slog.Logger) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty, cannot run migrations")
	}
	if migrationsPath == "" {
		return fmt.Errorf("migrations path is empty")
	}

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("Failed to close migrator", "sourceError", srcErr, "dbError", dbErr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to run migrations up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	logger.Info("Database migrations applied", "version", version, "dirty", dirty)
	return nil
}
