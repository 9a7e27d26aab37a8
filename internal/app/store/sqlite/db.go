package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN and applies the schema.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// migrate applies an idempotent set of CREATE TABLE / CREATE INDEX statements
// matching the postgres schema.
func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(50) PRIMARY KEY,
			username VARCHAR(100) NOT NULL,
			display_name VARCHAR(100),
			is_active BOOLEAN DEFAULT TRUE,
			created_date BIGINT NOT NULL DEFAULT 0,
			modified_date BIGINT NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS groups (
			id VARCHAR(120) PRIMARY KEY,
			group_name VARCHAR(120) NOT NULL DEFAULT 'Group Chat',
			created_date BIGINT NOT NULL DEFAULT 0,
			modified_date BIGINT NOT NULL DEFAULT 0
		);`,
		// rowid serves as the insertion-order tiebreaker.
		`CREATE TABLE IF NOT EXISTS messages (
			id VARCHAR(50) UNIQUE NOT NULL,
			message TEXT,
			sender_id VARCHAR(50),
			group_id VARCHAR(120) NOT NULL,
			created_date BIGINT NOT NULL,
			seen BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		`CREATE INDEX IF NOT EXISTS index_get ON messages (group_id, created_date DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
