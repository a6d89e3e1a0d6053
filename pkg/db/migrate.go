package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // Register file source driver
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"go.uber.org/zap"
)

// MigrationsSource is where cmd/migrate finds the numbered
// NNNNNN_name.{up,down}.sql files, relative to the repository root.
const MigrationsSource = "file://migrations"

// migrationsTable keeps the schema version apart from the app tables.
const migrationsTable = "mentormatch_schema_migrations"

// RunMigrations brings the schema up to the newest file in source and
// returns the resulting version. An up-to-date schema is not an error;
// a dirty one is, since it needs a manual force first.
func RunMigrations(poolCfg PoolConfig, source string) (uint, error) {
	conn, err := openMigrationDB(poolCfg)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	driver, err := postgres.WithInstance(conn, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations from %s: %w", source, err)
	}

	before, _, _ := m.Version() //nolint:errcheck // ErrNilVersion on an empty schema
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	logger.Info("Schema migrated",
		zap.Uint("from_version", before),
		zap.Uint("version", version))
	return version, nil
}

// openMigrationDB opens a database/sql handle with the same TLS settings
// the pgx pool uses.
func openMigrationDB(poolCfg PoolConfig) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(poolCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	tlsConfig, err := configureTLS(poolCfg.URL, poolCfg.CACertPath, poolCfg.ServerName)
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}
	if tlsConfig != nil {
		connConfig.TLSConfig = tlsConfig
	}

	conn := stdlib.OpenDB(*connConfig)
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}
