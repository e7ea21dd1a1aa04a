// Package db is the SQLite persistence layer used by the command-line tools.
// It stores encoded calibration sets under caller-chosen keys; the detection
// engine itself never touches it.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/jumpshot/internal/timeutil"
)

// DB wraps the SQLite handle.
type DB struct {
	*sql.DB
	clock timeutil.Clock
}

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
}

// NewDB opens (creating if needed) the database at path and applies all
// pending migrations.
func NewDB(path string) (*DB, error) {
	return NewDBWithClock(path, timeutil.RealClock{})
}

// NewDBWithClock is NewDB with an injectable clock for update timestamps.
func NewDBWithClock(path string, clock timeutil.Clock) (*DB, error) {
	db, err := openDB(path, clock)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenDB opens the database without running migrations, for the migrate
// command which manages the schema itself.
func OpenDB(path string) (*DB, error) {
	return openDB(path, timeutil.RealClock{})
}

func openDB(path string, clock timeutil.Clock) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	return &DB{DB: sqlDB, clock: clock}, nil
}
