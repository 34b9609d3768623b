// Package store provides the SQLite-backed diagram library. The library is
// stored in .erd/library.db and holds saved diagrams as canonical XML plus a
// bounded history of snapshots per diagram.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store manages the library.db SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the library database at the given path.
// It initializes the schema if the database is new.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open library db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}

	// Initialize schema
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// DB returns the underlying database connection for advanced operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Stats returns library statistics.
type Stats struct {
	DiagramCount  int64
	SnapshotCount int64
}

// GetStats returns statistics about the library contents.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats

	err := s.db.QueryRow("SELECT COUNT(*) FROM diagrams").Scan(&stats.DiagramCount)
	if err != nil {
		return nil, fmt.Errorf("count diagrams: %w", err)
	}

	err = s.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&stats.SnapshotCount)
	if err != nil {
		return nil, fmt.Errorf("count snapshots: %w", err)
	}

	return &stats, nil
}
