// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY SQLITE?
// The whole system is a single-process app over a shared store — an
// embedded database that lives in one file is exactly the right weight.
// No server to run, and ":memory:" gives every test a fresh, isolated DB.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite — no CGo, no C toolchain, easy
// cross-compilation. The driver registers itself under the name "sqlite"
// via the blank import below.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface (PlantRepository, WateringLogRepository, UserRepository,
// ReminderRunRepository). One store, one struct — the server hands the
// same *DB to each service under the interface it needs.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" in tests for a throwaway in-memory database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path fails here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in flight — the
	// dashboard and the reminder job can hit the store at the same time.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; watering_events
	// references plants, so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer this right after
// New so the WAL is flushed and the file lock released on shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent — safe to run on every startup.
//
// last_watered is TEXT in "YYYY-MM-DD" form ('' = never watered) and
// watered_at is TEXT in "YYYY-MM-DD HH:MM:SS" form. Storing the wire
// format directly keeps the DB readable and matches the date-only
// semantics of the scheduler.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			email         TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS plants (
			id            TEXT PRIMARY KEY,
			owner         TEXT NOT NULL,
			name          TEXT NOT NULL,
			interval_days INTEGER NOT NULL CHECK (interval_days >= 1),
			last_watered  TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_plants_owner ON plants(owner);
	`)
	if err != nil {
		return fmt.Errorf("creating plants table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS watering_events (
			id         TEXT PRIMARY KEY,
			plant_id   TEXT NOT NULL REFERENCES plants(id) ON DELETE CASCADE,
			watered_by TEXT NOT NULL,
			watered_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_watering_events_plant
			ON watering_events(plant_id, watered_at);
	`)
	if err != nil {
		return fmt.Errorf("creating watering_events table: %w", err)
	}

	// One row per calendar date on which a reminder batch was sent.
	// The UNIQUE constraint is what makes the once-per-day claim work:
	// two concurrent triggers race on the INSERT and exactly one wins.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS reminder_runs (
			run_date TEXT PRIMARY KEY,
			ran_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating reminder_runs table: %w", err)
	}

	return nil
}
