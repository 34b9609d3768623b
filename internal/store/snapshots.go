package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SnapshotEntry is one history row for a diagram.
type SnapshotEntry struct {
	ID        int64
	DiagramID string
	Content   string
	TakenAt   time.Time
}

// Snapshot records a history entry for a diagram and prunes the diagram's
// history down to keep rows, oldest first. keep <= 0 disables pruning.
func (s *Store) Snapshot(diagramID, content string, keep int) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO snapshots (diagram_id, content, taken_at)
		VALUES (?, ?, ?)`,
		diagramID, content, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("insert snapshot for %s: %w", diagramID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("snapshot id: %w", err)
	}

	if keep > 0 {
		_, err = tx.Exec(`
			DELETE FROM snapshots
			WHERE diagram_id = ? AND id NOT IN (
				SELECT id FROM snapshots
				WHERE diagram_id = ?
				ORDER BY id DESC LIMIT ?
			)`,
			diagramID, diagramID, keep,
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("prune snapshots for %s: %w", diagramID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}

// ListSnapshots retrieves a diagram's history, newest first.
// Content is not loaded; use LoadSnapshot for the document itself.
func (s *Store) ListSnapshots(diagramID string) ([]SnapshotEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, diagram_id, taken_at
		FROM snapshots WHERE diagram_id = ? ORDER BY id DESC`,
		diagramID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var entries []SnapshotEntry
	for rows.Next() {
		var entry SnapshotEntry
		var takenAt string
		err := rows.Scan(&entry.ID, &entry.DiagramID, &takenAt)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		entry.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// LoadSnapshot retrieves one history entry including its content.
// Returns sql.ErrNoRows if the snapshot does not exist.
func (s *Store) LoadSnapshot(id int64) (*SnapshotEntry, error) {
	var entry SnapshotEntry
	var takenAt string
	err := s.db.QueryRow(`
		SELECT id, diagram_id, content, taken_at
		FROM snapshots WHERE id = ?`,
		id).Scan(&entry.ID, &entry.DiagramID, &entry.Content, &takenAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("load snapshot %d: %w", id, err)
	}
	entry.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	return &entry, nil
}
