package store

import (
	"database/sql"
	"fmt"
	"time"
)

// DiagramEntry is a saved diagram row. Content holds the canonical
// standard-dialect XML document.
type DiagramEntry struct {
	ID        string
	Name      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveDiagram inserts or updates a diagram. A new row gets both timestamps;
// an update keeps created_at and bumps updated_at.
func (s *Store) SaveDiagram(id, name, content string) error {
	now := time.Now().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO diagrams (id, name, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			content = excluded.content,
			updated_at = excluded.updated_at`,
		id, name, content, now, now,
	)
	if err != nil {
		return fmt.Errorf("save diagram %s: %w", id, err)
	}
	return nil
}

// LoadDiagram retrieves a diagram by id.
// Returns sql.ErrNoRows if the diagram does not exist.
func (s *Store) LoadDiagram(id string) (*DiagramEntry, error) {
	var entry DiagramEntry
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, name, content, created_at, updated_at
		FROM diagrams WHERE id = ?`,
		id).Scan(&entry.ID, &entry.Name, &entry.Content, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("load diagram %s: %w", id, err)
	}
	entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	entry.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &entry, nil
}

// ListDiagrams retrieves all diagrams ordered by most recently updated.
// Content is not loaded; use LoadDiagram for the document itself.
func (s *Store) ListDiagrams() ([]DiagramEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at, updated_at
		FROM diagrams ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query diagrams: %w", err)
	}
	defer rows.Close()

	var entries []DiagramEntry
	for rows.Next() {
		var entry DiagramEntry
		var createdAt, updatedAt string
		err := rows.Scan(&entry.ID, &entry.Name, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entry.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// DeleteDiagram removes a diagram and, through the foreign key cascade, its
// snapshots. Deleting an unknown id is not an error.
func (s *Store) DeleteDiagram(id string) error {
	_, err := s.db.Exec("DELETE FROM diagrams WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete diagram %s: %w", id, err)
	}
	return nil
}
