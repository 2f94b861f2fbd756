package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/scandesk/scandesk/internal/models"
	"github.com/scandesk/scandesk/internal/reconcile"
)

// RefreshList fetches the authoritative document list and replaces the
// working snapshot. Records the backend already marked deleted are treated
// as absent: they belong to the recycle bin, not the working list. Deletion
// marks are re-applied to surviving records and cleared for files the
// snapshot no longer lists; this is the only place a mark may be cleared.
func (s *Session) RefreshList(ctx context.Context) error {
	docs, err := s.client.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh document list: %w", err)
	}
	marks, err := s.store.DeletionMarks()
	if err != nil {
		return fmt.Errorf("failed to load deletion marks: %w", err)
	}

	kept := make([]models.Document, 0, len(docs))
	present := make(map[string]struct{}, len(docs))
	fileIDs := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Status == models.StatusDeleted {
			continue
		}
		if _, marked := marks[doc.FileID]; marked {
			doc.Deleting = true
		}
		kept = append(kept, doc)
		if doc.FileID != "" {
			present[doc.FileID] = struct{}{}
			fileIDs = append(fileIDs, doc.FileID)
		}
	}

	for fileID := range marks {
		if _, still := present[fileID]; !still {
			if err := s.store.UnmarkDeleting(fileID); err != nil {
				log.Printf("Failed to clear deletion mark for %s: %v", fileID, err)
			}
		}
	}

	s.mu.Lock()
	s.remote = kept
	s.mu.Unlock()

	// The backend now carries these files; their journal rows have served
	// their purpose. Pruning after the snapshot replace means no window
	// where a file is in neither collection.
	if _, err := s.store.PruneConfirmed(fileIDs); err != nil {
		log.Printf("Failed to prune confirmed uploads: %v", err)
	}

	s.broadcastSnapshot()
	return nil
}

// RefreshDetails refetches detailed statuses for long-batch files still in
// flight. Cache entries younger than their tier's window are left alone:
// 10s normally, the aggressive detail-poll interval once the status carries
// an "In progress" marker. Fetch failures keep the stale entry; the next
// tick retries.
func (s *Session) RefreshDetails(ctx context.Context) {
	now := s.now()
	aggressive := time.Duration(s.cfg.Poll.DetailInterval) * time.Second

	s.mu.Lock()
	var due []string
	for _, doc := range s.remote {
		if doc.FileID == "" || doc.Deleting {
			continue
		}
		if doc.Status != models.StatusProcessing && doc.Status != models.StatusUploaded {
			delete(s.refreshes, doc.FileID)
			continue
		}
		if doc.ProcessingType != models.RouteLongBatch {
			continue
		}
		entry, cached := s.details[doc.FileID]
		window := reconcile.DetailTTL
		if cached && reconcile.HasProgressMarker(entry.Status) {
			window = aggressive
		}
		if cached && now.Sub(entry.FetchedAt) <= window {
			continue
		}
		if s.refreshes[doc.FileID] >= detailRefreshCeiling {
			continue
		}
		due = append(due, doc.FileID)
	}
	s.mu.Unlock()

	refreshed := false
	for _, fileID := range due {
		doc, err := s.client.GetDocument(ctx, fileID)
		if err != nil {
			log.Printf("Failed to refresh detailed status for %s: %v", fileID, err)
			continue
		}
		s.mu.Lock()
		s.details = s.details.With(fileID, doc.Status, s.now())
		s.refreshes[fileID]++
		if s.refreshes[fileID] == detailRefreshCeiling {
			log.Printf("Detail polling ceiling reached for %s; leaving it to the list poll", fileID)
		}
		s.mu.Unlock()
		refreshed = true
	}
	if refreshed {
		s.broadcastSnapshot()
	}
}

// RefreshDetail force-fetches one file's detailed status, ignoring cache
// freshness. It reports whether the file has reached a terminal status so
// burst pollers can stop early.
func (s *Session) RefreshDetail(ctx context.Context, fileID string) (bool, error) {
	doc, err := s.client.GetDocument(ctx, fileID)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	s.details = s.details.With(fileID, doc.Status, s.now())
	s.mu.Unlock()
	s.broadcastSnapshot()
	return reconcile.IsTerminal(doc.Status), nil
}

// ForceRefresh is the manual refresh: the detail cache and refresh budgets
// reset, then the list is refetched.
func (s *Session) ForceRefresh(ctx context.Context) error {
	s.mu.Lock()
	s.details = reconcile.DetailCache{}
	s.refreshes = make(map[string]int)
	s.mu.Unlock()
	return s.RefreshList(ctx)
}
