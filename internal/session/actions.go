package session

import (
	"context"
	"fmt"
	"log"

	"github.com/scandesk/scandesk/internal/backend"
	"github.com/scandesk/scandesk/internal/models"
)

// Delete asks the backend to delete a document. The file is marked
// "deleting" before the call, which pins its displayed status no matter
// what stale snapshots or cached details claim. The mark is reverted only
// if the call fails; on success it stays until a poll snapshot confirms
// the file is gone.
func (s *Session) Delete(ctx context.Context, fileID string, permanent bool) error {
	if err := s.store.MarkDeleting(fileID); err != nil {
		return fmt.Errorf("failed to record deletion mark: %w", err)
	}
	s.setDeleting(fileID, true)
	s.broadcastSnapshot()

	if err := s.client.Delete(ctx, fileID, permanent); err != nil {
		if uerr := s.store.UnmarkDeleting(fileID); uerr != nil {
			log.Printf("Failed to revert deletion mark for %s: %v", fileID, uerr)
		}
		s.setDeleting(fileID, false)
		s.broadcastSnapshot()
		return fmt.Errorf("failed to delete %s: %w", fileID, err)
	}
	return nil
}

// setDeleting flips the client-side deleting flag on the working snapshot,
// replacing the slice so concurrent readers keep a consistent view.
func (s *Session) setDeleting(fileID string, deleting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.Document, len(s.remote))
	copy(next, s.remote)
	for i := range next {
		if next[i].FileID == fileID {
			next[i].Deleting = deleting
		}
	}
	s.remote = next
}

// Restore brings a recycled document back into the working list. Any
// leftover deletion mark is dropped first: a file restored before the next
// poll confirmed its deletion must not come back pinned as "deleting".
func (s *Session) Restore(ctx context.Context, fileID string) error {
	if err := s.client.Restore(ctx, fileID); err != nil {
		return fmt.Errorf("failed to restore %s: %w", fileID, err)
	}
	if err := s.store.UnmarkDeleting(fileID); err != nil {
		log.Printf("Failed to clear deletion mark for restored %s: %v", fileID, err)
	}
	if err := s.RefreshList(ctx); err != nil {
		log.Printf("Restored %s but could not refresh the list: %v", fileID, err)
	}
	return nil
}

// DeleteMany deletes each file independently; one failure never stops the
// rest.
func (s *Session) DeleteMany(ctx context.Context, fileIDs []string, permanent bool) BulkResult {
	var result BulkResult
	for _, fileID := range fileIDs {
		if err := s.Delete(ctx, fileID, permanent); err != nil {
			result.fail(fileID, err)
		} else {
			result.ok(fileID)
		}
	}
	return result
}

// RestoreMany restores each file independently.
func (s *Session) RestoreMany(ctx context.Context, fileIDs []string) BulkResult {
	var result BulkResult
	for _, fileID := range fileIDs {
		if err := s.Restore(ctx, fileID); err != nil {
			result.fail(fileID, err)
		} else {
			result.ok(fileID)
		}
	}
	return result
}

// Document fetches one record fresh from the backend, bypassing caches.
func (s *Session) Document(ctx context.Context, fileID string, finalized bool) (*models.Document, error) {
	if finalized {
		return s.client.GetFinalizedDocument(ctx, fileID)
	}
	return s.client.GetDocument(ctx, fileID)
}

// Finalize locks in a text layer for a processed document and drops the
// file's cached detail, which the finalization just made stale.
func (s *Session) Finalize(ctx context.Context, fileID string, freq backend.FinalizeRequest) error {
	if err := s.client.Finalize(ctx, fileID, freq); err != nil {
		return err
	}
	s.invalidateDetail(fileID)
	s.broadcastSnapshot()
	return nil
}

// EditOCRText replaces a document's edited-text layer.
func (s *Session) EditOCRText(ctx context.Context, fileID, text string) error {
	if err := s.client.EditOCRText(ctx, fileID, text); err != nil {
		return err
	}
	s.invalidateDetail(fileID)
	s.broadcastSnapshot()
	return nil
}

// EditFinalizedText rewrites the finalized text of a document.
func (s *Session) EditFinalizedText(ctx context.Context, fileID string, freq backend.EditFinalizedRequest) error {
	if err := s.client.EditFinalized(ctx, fileID, freq); err != nil {
		return err
	}
	s.invalidateDetail(fileID)
	s.broadcastSnapshot()
	return nil
}

func (s *Session) invalidateDetail(fileID string) {
	s.mu.Lock()
	s.details = s.details.Without(fileID)
	s.mu.Unlock()
}

// RecycleBin lists soft-deleted documents.
func (s *Session) RecycleBin(ctx context.Context) ([]models.RecycleBinEntry, error) {
	return s.client.RecycleBin(ctx)
}

// SearchArchive runs a full-text search over the finalized archive.
func (s *Session) SearchArchive(ctx context.Context, opts backend.SearchOptions) ([]models.SearchResult, error) {
	return s.client.Search(ctx, opts)
}

// RemoveEntry drops one journal row by user request.
func (s *Session) RemoveEntry(entryID string) error {
	if err := s.store.RemoveQueueEntry(entryID); err != nil {
		return err
	}
	s.broadcastSnapshot()
	return nil
}

// ClearCompleted drops all uploaded journal rows.
func (s *Session) ClearCompleted() (int64, error) {
	cleared, err := s.store.ClearCompleted()
	if err != nil {
		return 0, err
	}
	s.broadcastSnapshot()
	return cleared, nil
}

// ClearPending drops all pending and failed journal rows.
func (s *Session) ClearPending() (int64, error) {
	cleared, err := s.store.ClearPending()
	if err != nil {
		return 0, err
	}
	s.broadcastSnapshot()
	return cleared, nil
}
