package store

import (
	"time"
)

// MarkDeleting records that a delete request for fileID is in flight. The
// mark keeps the document pinned to "deleting" in the display list until a
// poll snapshot no longer lists it.
func (s *Store) MarkDeleting(fileID string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO deletion_marks (file_id, marked_at) VALUES (?, ?)",
		fileID, time.Now(),
	)
	return err
}

// UnmarkDeleting drops the mark for fileID. Called when a snapshot omits
// the file, or to revert after a failed delete call.
func (s *Store) UnmarkDeleting(fileID string) error {
	_, err := s.db.Exec("DELETE FROM deletion_marks WHERE file_id = ?", fileID)
	return err
}

// DeletionMarks returns all in-flight deletion marks keyed by file ID.
func (s *Store) DeletionMarks() (map[string]time.Time, error) {
	rows, err := s.db.Query("SELECT file_id, marked_at FROM deletion_marks")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	marks := make(map[string]time.Time)
	for rows.Next() {
		var fileID string
		var markedAt time.Time
		if err := rows.Scan(&fileID, &markedAt); err != nil {
			return nil, err
		}
		marks[fileID] = markedAt
	}
	return marks, rows.Err()
}
