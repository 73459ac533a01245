package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// source driver

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

// newMigrator opens a dedicated connection and builds a migrate instance
// over the given migrations directory. The caller owns closing the db.
func newMigrator(cfg Config, migrationsPath string) (*migrate.Migrate, *sql.DB, string, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, nil, "", fmt.Errorf("open database connection: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, "", fmt.Errorf("create postgres driver: %w", err)
	}

	if absPath, absErr := filepath.Abs(migrationsPath); absErr == nil {
		migrationsPath = absPath
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		_ = db.Close()
		return nil, nil, "", fmt.Errorf("create migrate instance: %w", err)
	}

	return m, db, migrationsPath, nil
}

// RunMigrations applies all pending migrations.
func RunMigrations(cfg Config, migrationsPath string, log logger.Logger) error {
	m, db, path, err := newMigrator(cfg, migrationsPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No pending migrations",
				logger.String("migrations_path", path),
			)
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info("Migrations applied successfully",
		logger.String("migrations_path", path),
	)

	return nil
}

// MigrateDown rolls back N migrations (default: 1).
func MigrateDown(cfg Config, migrationsPath string, steps int, log logger.Logger) error {
	m, db, path, err := newMigrator(cfg, migrationsPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if steps <= 0 {
		steps = 1
	}

	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No migrations to rollback",
				logger.String("migrations_path", path),
			)
			return nil
		}
		return fmt.Errorf("rollback migrations: %w", err)
	}

	log.Info("Migrations rolled back successfully",
		logger.String("migrations_path", path),
		logger.Int("steps", steps),
	)

	return nil
}

// MigrationVersion returns the current migration version and dirty flag.
func MigrationVersion(cfg Config, migrationsPath string) (uint, bool, error) {
	m, db, _, err := newMigrator(cfg, migrationsPath)
	if err != nil {
		return 0, false, err
	}
	defer db.Close()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get migration version: %w", err)
	}

	return version, dirty, nil
}
