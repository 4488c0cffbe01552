package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	instance *sql.DB
	once     sync.Once
	initErr  error
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// Get returns the singleton DuckDB connection with the schema applied.
func Get(cfg Config) (*sql.DB, error) {
	once.Do(func() {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create duckdb directory: %w", err)
			return
		}

		dbPath := filepath.Join(duckdbDir, cfg.DBName+".duckdb")
		instance, initErr = sql.Open("duckdb", dbPath)
		if initErr != nil {
			return
		}

		initErr = Migrate(context.Background(), instance)
	})
	return instance, initErr
}

// Close closes the database connection.
func Close() error {
	if instance != nil {
		return instance.Close()
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS construction_sites (
		id          VARCHAR PRIMARY KEY,
		title       VARCHAR NOT NULL DEFAULT '',
		description VARCHAR NOT NULL DEFAULT '',
		map         VARCHAR NOT NULL DEFAULT '{}',
		acl         VARCHAR NOT NULL DEFAULT '',
		created_by  VARCHAR NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS areas (
		id                   VARCHAR PRIMARY KEY,
		construction_site_id VARCHAR NOT NULL,
		title                VARCHAR NOT NULL DEFAULT '',
		description          VARCHAR NOT NULL DEFAULT '',
		map                  VARCHAR NOT NULL DEFAULT '{}',
		acl                  VARCHAR NOT NULL DEFAULT '',
		created_by           VARCHAR NOT NULL DEFAULT '',
		created_at           TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id          VARCHAR PRIMARY KEY,
		area_id     VARCHAR NOT NULL,
		title       VARCHAR NOT NULL DEFAULT '',
		description VARCHAR NOT NULL DEFAULT '',
		map         VARCHAR NOT NULL DEFAULT '{}',
		acl         VARCHAR NOT NULL DEFAULT '',
		created_by  VARCHAR NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL DEFAULT current_timestamp,
		status      VARCHAR NOT NULL DEFAULT 'creating'
	)`,
	`CREATE TABLE IF NOT EXISTS image_points (
		id             VARCHAR PRIMARY KEY,
		measurement_id VARCHAR NOT NULL,
		longitude      DOUBLE NOT NULL,
		latitude       DOUBLE NOT NULL
	)`,
}

// Migrate creates the item tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
