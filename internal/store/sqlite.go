// Package store persists finished runs into SQLite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitSQLite opens the database at dbPath and creates the run tables.
func InitSQLite(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; the history of a run is written in one transaction.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := createSchemas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schemas: %w", err)
	}
	return db, nil
}

func createSchemas(db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			config_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			susceptible INTEGER NOT NULL,
			exposed INTEGER NOT NULL,
			infectious INTEGER NOT NULL,
			recovered INTEGER NOT NULL,
			deceased INTEGER NOT NULL,
			PRIMARY KEY (run_id, step),
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}

	for _, query := range schemas {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
