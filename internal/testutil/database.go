package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Holding table: currently held instruments
		CREATE TABLE IF NOT EXISTS holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			instrument_id INTEGER NOT NULL UNIQUE,
			quantity INTEGER NOT NULL
		);

		-- Currency pair table: configured rate quote sources
		CREATE TABLE IF NOT EXISTS currency_pair (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			instrument_id INTEGER NOT NULL UNIQUE,
			name VARCHAR(10) NOT NULL
		);

		-- Holdings snapshot table: date-keyed log of what was held when
		CREATE TABLE IF NOT EXISTS holdings_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			date DATE NOT NULL,
			instrument_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			currency VARCHAR(3) NOT NULL,
			CONSTRAINT unique_snapshot_row UNIQUE (date, instrument_id)
		);
		CREATE INDEX IF NOT EXISTS idx_holdings_snapshot_date ON holdings_snapshot(date);

		-- Balance table: one formatted total per day
		CREATE TABLE IF NOT EXISTS balance (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			date DATE NOT NULL UNIQUE,
			total VARCHAR(100) NOT NULL,
			is_partial BOOLEAN DEFAULT FALSE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_balance_date ON balance(date);

		-- Setting table: runtime-tunable settings
		CREATE TABLE IF NOT EXISTS setting (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			"key" VARCHAR(50) NOT NULL UNIQUE,
			value TEXT NOT NULL,
			updated_at DATETIME
		);
	`

	_, err := db.Exec(schema)
	return err
}
