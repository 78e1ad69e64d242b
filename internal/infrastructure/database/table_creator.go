// Package database provides schema bootstrap for the application database.
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the database schema at startup.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and
// indexes. Every statement is idempotent, so running it against an existing
// database is safe.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (username TEXT PRIMARY KEY, password_hash TEXT NOT NULL, email TEXT, created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP, last_login TIMESTAMP, preferences TEXT DEFAULT '{}', remember_token TEXT, token_expires TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS user_history (id INTEGER PRIMARY KEY AUTOINCREMENT, username TEXT NOT NULL, brand_data TEXT NOT NULL, scan_type TEXT DEFAULT 'manual', confidence REAL DEFAULT 1.0, image_hash TEXT, scanned_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP, FOREIGN KEY (username) REFERENCES users (username))`,
	`CREATE TABLE IF NOT EXISTS user_favorites (username TEXT NOT NULL, brand_id TEXT NOT NULL, added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP, notes TEXT DEFAULT '', PRIMARY KEY (username, brand_id), FOREIGN KEY (username) REFERENCES users (username))`,
	`CREATE TABLE IF NOT EXISTS analytics (id INTEGER PRIMARY KEY AUTOINCREMENT, username TEXT, action TEXT NOT NULL, data TEXT, timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_user_history_username ON user_history(username)`,
	`CREATE INDEX IF NOT EXISTS idx_user_history_scanned_at ON user_history(scanned_at)`,
	`CREATE INDEX IF NOT EXISTS idx_user_favorites_username ON user_favorites(username)`,
	`CREATE INDEX IF NOT EXISTS idx_users_remember_token ON users(remember_token)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_username ON analytics(username)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_action ON analytics(action)`,
	`CREATE INDEX IF NOT EXISTS idx_analytics_timestamp ON analytics(timestamp)`,
}
