package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"logoden/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version; bump it when adding
// a migration.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/logoden.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.logoden.
func Init(baseDir string) (*sql.DB, error) {
	// Base directory is owner-only: it holds image payloads
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Best-effort chmod for pre-existing directories
	_ = os.Chmod(baseDir, 0700)

	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Pragmas ride the DSN so every pooled connection gets them
	dbPath := filepath.Join(baseDir, "logoden.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(database); err != nil {
		database.Close()
		return nil, err
	}

	if err := migrate(database); err != nil {
		database.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return database, nil
}

// ConfigurePool applies connection pool limits from config. Zero values
// leave the driver defaults in place.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// 0 -> 1: initial schema
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS logos (
		  id               TEXT PRIMARY KEY,
		  owner_id         TEXT NOT NULL,
		  name             TEXT NOT NULL DEFAULT 'Untitled',
		  created_at       INTEGER NOT NULL,
		  params_json      TEXT,
		  is_revision      INTEGER NOT NULL DEFAULT 0,
		  original_logo_id TEXT,
		  revision_number  INTEGER,
		  image_data_uri   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_logos_owner_created
		ON logos(owner_id, created_at DESC)
		WHERE is_revision = 0;

		CREATE UNIQUE INDEX IF NOT EXISTS idx_logos_revision_number
		ON logos(original_logo_id, revision_number)
		WHERE original_logo_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS catalog_entries (
		  logo_id      TEXT PRIMARY KEY,
		  catalog_code TEXT NOT NULL UNIQUE,
		  company_name TEXT,
		  added_at     INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that the WAL pragma in the DSN actually took.
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
