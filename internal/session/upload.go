package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/scandesk/scandesk/internal/backend"
	"github.com/scandesk/scandesk/internal/models"
)

// Upload pushes one journal entry to the backend, streaming progress as
// the body goes out. The entry moves pending -> uploading -> uploaded, or
// to failed with the backend's message.
func (s *Session) Upload(ctx context.Context, entryID string) error {
	entry, err := s.store.GetQueueEntry(entryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("no queue entry %s", entryID)
		}
		return err
	}
	if entry.Status != models.StatusPending && entry.Status != models.StatusFailed {
		return fmt.Errorf("entry %s is %s; only pending or failed entries can be uploaded", entryID, entry.Status)
	}

	if err := s.store.UpdateQueueEntryStatus(entryID, models.StatusUploading, ""); err != nil {
		return err
	}
	s.broadcastProgress(models.UploadProgress{
		EntryID:  entryID,
		FileName: entry.DisplayName,
		Status:   models.StatusUploading,
	})

	lastPct := -1
	receipt, err := s.client.Upload(ctx, backend.UploadRequest{
		FilePath: entry.FilePath,
		FileName: entry.DisplayName,
		Metadata: entry.Metadata,
		Progress: func(pct float64) {
			if int(pct) == lastPct {
				return
			}
			lastPct = int(pct)
			if err := s.store.UpdateQueueEntryProgress(entryID, lastPct); err != nil {
				log.Printf("Failed to record upload progress for %s: %v", entryID, err)
			}
			s.broadcastProgress(models.UploadProgress{
				EntryID:  entryID,
				FileName: entry.DisplayName,
				Progress: pct,
				Status:   models.StatusUploading,
			})
		},
	})
	if err != nil {
		message := err.Error()
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			message = apiErr.Message
		}
		if uerr := s.store.UpdateQueueEntryStatus(entryID, models.StatusFailed, message); uerr != nil {
			log.Printf("Failed to record upload failure for %s: %v", entryID, uerr)
		}
		s.broadcastProgress(models.UploadProgress{
			EntryID:  entryID,
			FileName: entry.DisplayName,
			Status:   models.StatusFailed,
			Message:  message,
			Done:     true,
		})
		s.broadcastSnapshot()
		return fmt.Errorf("upload of %s failed: %w", entry.DisplayName, err)
	}

	if err := s.store.SetQueueEntryUploaded(entryID, receipt.FileID, receipt.Routing); err != nil {
		return fmt.Errorf("upload succeeded but journal update failed: %w", err)
	}
	s.noteDeployment(receipt.DeploymentInfo)
	s.broadcastProgress(models.UploadProgress{
		EntryID:  entryID,
		FileID:   receipt.FileID,
		FileName: entry.DisplayName,
		Progress: 100,
		Status:   models.StatusUploaded,
		Done:     true,
	})

	// Short-batch jobs finish in seconds; poll hard until they do.
	if receipt.Routing == models.RouteShortBatch && s.burst != nil {
		s.burst(receipt.FileID)
	}
	s.broadcastSnapshot()
	return nil
}

// UploadPending drains the journal's pending entries in attach order, then
// retries failed ones.
func (s *Session) UploadPending(ctx context.Context) (BulkResult, error) {
	var result BulkResult
	pending, err := s.store.GetQueueEntriesByStatus(models.StatusPending)
	if err != nil {
		return result, fmt.Errorf("failed to load pending uploads: %w", err)
	}
	failed, err := s.store.GetQueueEntriesByStatus(models.StatusFailed)
	if err != nil {
		return result, fmt.Errorf("failed to load failed uploads: %w", err)
	}
	for _, entry := range append(pending, failed...) {
		if err := s.Upload(ctx, entry.ID); err != nil {
			result.fail(entry.ID, err)
		} else {
			result.ok(entry.ID)
		}
	}
	return result, nil
}
