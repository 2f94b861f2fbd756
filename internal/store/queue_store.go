package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/util"
)

const queueColumns = `id, file_path, display_name, size_bytes, status, progress, error, file_id, routing, title, author, doc_date, tags, collection, notes, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQueueEntry(row rowScanner) (*models.QueueEntry, error) {
	var e models.QueueEntry
	var errMsg, fileID, routing sql.NullString
	var title, author, docDate, tags, collection, notes sql.NullString
	err := row.Scan(
		&e.ID, &e.FilePath, &e.DisplayName, &e.SizeBytes, &e.Status, &e.Progress,
		&errMsg, &fileID, &routing,
		&title, &author, &docDate, &tags, &collection, &notes,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Error = errMsg.String
	e.FileID = fileID.String
	e.Routing = routing.String
	if title.String != "" || author.String != "" || docDate.String != "" ||
		tags.String != "" || collection.String != "" || notes.String != "" {
		md := &models.DocumentMetadata{
			Title:      title.String,
			Author:     author.String,
			Date:       docDate.String,
			Collection: collection.String,
			Notes:      notes.String,
		}
		if tags.String != "" {
			md.Tags = strings.Split(tags.String, ",")
		}
		e.Metadata = md
	}
	e.SizeLabel = util.FormatBytes(e.SizeBytes)
	return &e, nil
}

// InsertQueueEntry adds one attached file to the upload journal.
func (s *Store) InsertQueueEntry(e *models.QueueEntry) error {
	var title, author, docDate, tags, collection, notes string
	if md := e.Metadata; md != nil {
		title = md.Title
		author = md.Author
		docDate = md.Date
		tags = strings.Join(md.Tags, ",")
		collection = md.Collection
		notes = md.Notes
	}
	query := `
        INSERT INTO upload_queue
        (` + queueColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.Exec(query,
		e.ID, e.FilePath, e.DisplayName, e.SizeBytes, e.Status, e.Progress,
		e.Error, e.FileID, e.Routing,
		title, author, docDate, tags, collection, notes,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert queue entry: %w", err)
	}
	return nil
}

// GetQueueEntries returns the whole journal, newest first.
func (s *Store) GetQueueEntries() ([]models.QueueEntry, error) {
	query := `SELECT ` + queueColumns + ` FROM upload_queue ORDER BY created_at DESC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// GetQueueEntry retrieves a single journal row by its local ID.
func (s *Store) GetQueueEntry(id string) (*models.QueueEntry, error) {
	query := `SELECT ` + queueColumns + ` FROM upload_queue WHERE id = ?`
	return scanQueueEntry(s.db.QueryRow(query, id))
}

// GetQueueEntriesByStatus returns journal rows in the given status, oldest
// first so uploads drain in attach order.
func (s *Store) GetQueueEntriesByStatus(status string) ([]models.QueueEntry, error) {
	query := `SELECT ` + queueColumns + ` FROM upload_queue WHERE status = ? ORDER BY created_at ASC`
	rows, err := s.db.Query(query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.QueueEntry
	for rows.Next() {
		e, err := scanQueueEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// UpdateQueueEntryStatus changes an entry's status and message.
func (s *Store) UpdateQueueEntryStatus(id, status, message string) error {
	_, err := s.db.Exec("UPDATE upload_queue SET status = ?, error = ? WHERE id = ?", status, message, id)
	return err
}

// UpdateQueueEntryProgress records upload progress for an entry.
func (s *Store) UpdateQueueEntryProgress(id string, progress int) error {
	_, err := s.db.Exec("UPDATE upload_queue SET progress = ? WHERE id = ?", progress, id)
	return err
}

// SetQueueEntryUploaded records a successful upload: the backend-assigned
// file ID, the routing decision, and full progress.
func (s *Store) SetQueueEntryUploaded(id, fileID, routing string) error {
	query := `
        UPDATE upload_queue
        SET status = ?, progress = 100, error = '', file_id = ?, routing = ?
        WHERE id = ?
    `
	_, err := s.db.Exec(query, models.StatusUploaded, fileID, routing, id)
	return err
}

// ResetInterruptedUploads moves rows stuck in "uploading" to "failed" with
// an explanatory message. Called once at startup; re-sending automatically
// could duplicate server-side work.
func (s *Store) ResetInterruptedUploads() (int64, error) {
	res, err := s.db.Exec(
		"UPDATE upload_queue SET status = ?, error = ? WHERE status = ?",
		models.StatusFailed, "upload interrupted", models.StatusUploading,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PruneConfirmed removes uploaded journal rows whose file ID the backend
// now lists. The backend record carries the entry from here on.
func (s *Store) PruneConfirmed(fileIDs []string) (int64, error) {
	if len(fileIDs) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(fileIDs))
	placeholders = placeholders[:len(placeholders)-1]
	query := fmt.Sprintf(
		"DELETE FROM upload_queue WHERE status = ? AND file_id IN (%s)", placeholders,
	)
	args := make([]interface{}, 0, len(fileIDs)+1)
	args = append(args, models.StatusUploaded)
	for _, id := range fileIDs {
		args = append(args, id)
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RemoveQueueEntry deletes a single journal row. Removing an unknown ID is
// a no-op.
func (s *Store) RemoveQueueEntry(id string) error {
	_, err := s.db.Exec("DELETE FROM upload_queue WHERE id = ?", id)
	return err
}

// ClearCompleted removes all uploaded rows from the journal.
func (s *Store) ClearCompleted() (int64, error) {
	res, err := s.db.Exec("DELETE FROM upload_queue WHERE status = ?", models.StatusUploaded)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearPending removes rows that never made it to the backend: pending and
// failed ones. In-flight uploads are left alone.
func (s *Store) ClearPending() (int64, error) {
	res, err := s.db.Exec(
		"DELETE FROM upload_queue WHERE status IN (?, ?)",
		models.StatusPending, models.StatusFailed,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
