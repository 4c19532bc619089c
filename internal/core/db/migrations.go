package db

import (
	"fmt"
)

// runMigrations applies database migrations for existing databases
func (db *DB) runMigrations() error {
	// Migration 1: early databases were created without updated_at
	if err := db.migration001AddUpdatedAt(); err != nil {
		return fmt.Errorf("migration 001: %w", err)
	}

	return nil
}

// migration001AddUpdatedAt adds the updated_at column and backfills it from created_at
func (db *DB) migration001AddUpdatedAt() error {
	var hasUpdatedAt bool
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info('stats')
		WHERE name='updated_at'
	`).Scan(&hasUpdatedAt)
	if err != nil {
		return err
	}

	if hasUpdatedAt {
		return nil
	}

	// SQLite rejects non-constant defaults on ADD COLUMN, so backfill instead
	_, err = db.conn.Exec(`ALTER TABLE stats ADD COLUMN updated_at TIMESTAMP;`)
	if err != nil {
		return fmt.Errorf("add updated_at column: %w", err)
	}

	_, err = db.conn.Exec(`UPDATE stats SET updated_at = COALESCE(created_at, CURRENT_TIMESTAMP) WHERE updated_at IS NULL;`)
	if err != nil {
		return fmt.Errorf("backfill updated_at: %w", err)
	}

	return nil
}
