// ABOUTME: Database connection management and initialization
// ABOUTME: Handles SQLite connection and schema creation

package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// InitDB initializes the database connection and creates schema.
func InitDB(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Every pooled connection waits on locks held by concurrent writers
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// GetDefaultDBPath returns the default database path following XDG standards.
func GetDefaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "vkattach", "vkattach.db")
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		remote_id INTEGER NOT NULL DEFAULT 0,
		peer_id INTEGER NOT NULL DEFAULT 0,
		sender_id INTEGER NOT NULL DEFAULT 0,
		text TEXT NOT NULL DEFAULT '',
		raw TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		imported_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payloads (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		stored_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_peer ON messages(peer_id);
	CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
	`

	_, err := db.Exec(schema)
	return err
}
