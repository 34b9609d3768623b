package store

// schemaSQL defines the SQLite schema for the library database.
// Tables:
//   - diagrams: saved diagrams, content is the canonical standard-dialect XML
//   - snapshots: per-diagram history, pruned to a configured retention count
const schemaSQL = `
CREATE TABLE IF NOT EXISTS diagrams (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    diagram_id TEXT NOT NULL REFERENCES diagrams(id) ON DELETE CASCADE,
    content TEXT NOT NULL,
    taken_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_diagrams_updated ON diagrams(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_snapshots_diagram ON snapshots(diagram_id, id DESC);
`

// initSchema creates the database tables and indexes if they don't exist.
func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
