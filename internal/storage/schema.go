package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createCollectionsTable(tx); err != nil {
			return err
		}
		if err := createDocumentsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Snapshot schema initialized",
			"version", currentSchemaVersion,
		)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Snapshot schema is up to date",
			"version", version,
		)
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("snapshot schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	// Version 0 means the file predates version tracking; recreate the tables.
	return db.initializeSchema()
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

func createCollectionsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create collections table: %w", err)
	}
	return nil
}

// documents holds one zstd-compressed Extended JSON body per row; seq keeps
// the source store's order.
func createDocumentsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		seq INTEGER NOT NULL,
		body BLOB NOT NULL,
		PRIMARY KEY (collection, seq)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear schema version: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var version int
	if err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		// No row or no table: the file predates version tracking.
		return 0, nil
	}
	return version, nil
}
