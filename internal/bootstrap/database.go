package bootstrap

import (
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/config"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/database"
	infralogger "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

// DatabaseComponents holds the database connection and repositories.
type DatabaseComponents struct {
	DB        *sqlx.DB
	Products  *database.ProductRepository
	Drafts    *database.DraftRepository
	Snapshots *database.StatusSnapshotRepository
}

// SetupDatabase creates the database connection and repositories.
func SetupDatabase(cfg *config.Config, logger infralogger.Logger) (*DatabaseComponents, error) {
	dbConfig := databaseConfig(cfg)

	logger.Info("Connecting to PostgreSQL database",
		infralogger.String("host", dbConfig.Host),
		infralogger.String("port", dbConfig.Port),
		infralogger.String("database", dbConfig.DBName),
	)

	db, err := database.NewPostgresConnection(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database connected successfully")

	return &DatabaseComponents{
		DB:        db,
		Products:  database.NewProductRepository(db),
		Drafts:    database.NewDraftRepository(db),
		Snapshots: database.NewStatusSnapshotRepository(db),
	}, nil
}

// databaseConfig maps the service config onto the database package config,
// filling the gaps a missing config file leaves.
func databaseConfig(cfg *config.Config) database.Config {
	dbPort := strconv.Itoa(cfg.Database.Port)
	if cfg.Database.Port == 0 {
		dbPort = "5432"
	}

	dbConfig := database.Config{
		Host:            cfg.Database.Host,
		Port:            dbPort,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	if dbConfig.Host == "" {
		dbConfig.Host = "localhost"
	}
	if dbConfig.User == "" {
		dbConfig.User = "postgres"
	}
	if dbConfig.DBName == "" {
		dbConfig.DBName = "producthub"
	}
	if dbConfig.SSLMode == "" {
		dbConfig.SSLMode = "disable"
	}

	return dbConfig
}

// RunMigrations applies pending schema migrations before a service starts.
func RunMigrations(cfg *config.Config, logger infralogger.Logger) error {
	return database.RunMigrations(databaseConfig(cfg), migrationsPath(cfg), logger)
}

// RollbackMigrations rolls back the given number of schema migrations.
func RollbackMigrations(cfg *config.Config, steps int, logger infralogger.Logger) error {
	return database.MigrateDown(databaseConfig(cfg), migrationsPath(cfg), steps, logger)
}

// MigrationVersion reports the current schema version and dirty flag.
func MigrationVersion(cfg *config.Config) (uint, bool, error) {
	return database.MigrationVersion(databaseConfig(cfg), migrationsPath(cfg))
}

func migrationsPath(cfg *config.Config) string {
	if cfg.Database.MigrationsPath != "" {
		return cfg.Database.MigrationsPath
	}
	return "migrations"
}
