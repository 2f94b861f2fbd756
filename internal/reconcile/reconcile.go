// Package reconcile merges the three views of the upload pipeline - the
// local upload journal, the polled backend document list, and the per-file
// detailed-status cache - into the single deduplicated, sorted list shown
// to the user. Everything here is pure: callers hand in snapshots and get
// a projection back, so the functions need no locks and never touch I/O.
package reconcile

import (
	"sort"
	"time"

	"github.com/scandesk/scandesk/internal/models"
)

// DetailTTL is how long a cached detailed status is trusted before the
// record's own base status takes over again.
const DetailTTL = 10 * time.Second

// DetailEntry is the last-known detailed status for one long-running job.
type DetailEntry struct {
	Status    string
	FetchedAt time.Time
}

// DetailCache maps file IDs to detail entries. Owners replace the whole map
// on write (With/Without return copies), so a snapshot handed to Reconcile
// is never mutated underneath it.
type DetailCache map[string]DetailEntry

// Fresh returns the cached detailed status for fileID if the entry is
// younger than DetailTTL.
func (c DetailCache) Fresh(fileID string, now time.Time) (string, bool) {
	e, ok := c[fileID]
	if !ok || e.Status == "" {
		return "", false
	}
	if now.Sub(e.FetchedAt) > DetailTTL {
		return "", false
	}
	return e.Status, true
}

// With returns a copy of the cache with an entry added or replaced.
func (c DetailCache) With(fileID, status string, fetchedAt time.Time) DetailCache {
	next := make(DetailCache, len(c)+1)
	for k, v := range c {
		next[k] = v
	}
	next[fileID] = DetailEntry{Status: status, FetchedAt: fetchedAt}
	return next
}

// Without returns a copy of the cache with one entry removed.
func (c DetailCache) Without(fileID string) DetailCache {
	next := make(DetailCache, len(c))
	for k, v := range c {
		if k != fileID {
			next[k] = v
		}
	}
	return next
}

// Reconcile produces the display list from snapshots of the local queue,
// the backend document list and the detail cache:
//
//  1. Local entries that are pending/uploading/failed are always kept and
//     win over a backend record with the same file ID - those statuses
//     cannot exist server-side yet.
//  2. Uploaded local entries are kept only until the backend lists the
//     same file ID; after that the backend record supersedes them.
//  3. A backend record marked Deleting resolves to "deleting" no matter
//     what its snapshot status or the detail cache says. Otherwise records
//     in processing/uploaded state take a fresh cached detailed status
//     when one exists.
//  4. The combined list sorts descending by best timestamp (upload time,
//     or local creation time), ties keeping input order.
//
// Malformed records degrade to defaults instead of failing: a document
// with no name shows as "Unknown file" with size 0 and status pending.
func Reconcile(local []models.QueueEntry, remote []models.Document, details DetailCache, now time.Time) []models.DisplayDocument {
	remoteIDs := make(map[string]struct{}, len(remote))
	for _, doc := range remote {
		if doc.FileID != "" {
			remoteIDs[doc.FileID] = struct{}{}
		}
	}

	display := make([]models.DisplayDocument, 0, len(local)+len(remote))
	localWins := make(map[string]struct{})

	for _, entry := range local {
		status := entry.Status
		if status == "" {
			status = models.StatusPending
		}
		switch status {
		case models.StatusPending, models.StatusUploading, models.StatusFailed:
			if entry.FileID != "" {
				localWins[entry.FileID] = struct{}{}
			}
		default:
			if entry.FileID != "" {
				if _, confirmed := remoteIDs[entry.FileID]; confirmed {
					continue
				}
			}
		}
		display = append(display, localDisplay(entry, status))
	}

	for _, doc := range remote {
		if doc.FileID != "" {
			if _, suppressed := localWins[doc.FileID]; suppressed {
				continue
			}
		}
		display = append(display, remoteDisplay(doc, details, now))
	}

	sort.SliceStable(display, func(i, j int) bool {
		return display[i].Timestamp.After(display[j].Timestamp)
	})
	return display
}

// resolveStatus applies the one rule that must never break: a document
// mid-deletion stays "deleting" regardless of what a stale poll snapshot
// or cached detail claims.
func resolveStatus(doc models.Document, details DetailCache, now time.Time) string {
	if doc.Deleting {
		return models.StatusDeleting
	}
	base := doc.Status
	if base == "" {
		base = models.StatusPending
	}
	if base == models.StatusProcessing || base == models.StatusUploaded {
		if detailed, ok := details.Fresh(doc.FileID, now); ok {
			return detailed
		}
	}
	return base
}

func localDisplay(entry models.QueueEntry, status string) models.DisplayDocument {
	name := entry.DisplayName
	if name == "" {
		name = "Unknown file"
	}
	size := entry.SizeBytes
	if size < 0 {
		size = 0
	}
	return models.DisplayDocument{
		QueueID:        entry.ID,
		FileID:         entry.FileID,
		Name:           name,
		SizeBytes:      size,
		Status:         status,
		Label:          StatusLabel(status),
		Progress:       ProgressPercent(status),
		ProcessingType: entry.Routing,
		FromProcessed:  false,
		Error:          entry.Error,
		Timestamp:      entry.CreatedAt,
		Metadata:       entry.Metadata,
	}
}

func remoteDisplay(doc models.Document, details DetailCache, now time.Time) models.DisplayDocument {
	status := resolveStatus(doc, details, now)
	name := doc.FileName
	if name == "" {
		name = "Unknown file"
	}
	size := doc.FileSize
	if size < 0 {
		size = 0
	}
	var ts time.Time
	if doc.UploadedAt != nil {
		ts = *doc.UploadedAt
	}
	return models.DisplayDocument{
		FileID:         doc.FileID,
		Name:           name,
		SizeBytes:      size,
		Status:         status,
		Label:          StatusLabel(status),
		Progress:       ProgressPercent(status),
		ProcessingType: doc.ProcessingType,
		FromProcessed:  true,
		Finalized:      doc.Finalized,
		Timestamp:      ts,
		Metadata:       doc.Metadata,
	}
}
