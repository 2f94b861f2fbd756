package reconcile

import "github.com/scandesk/scandesk/internal/models"

// CountStatuses buckets a display list into the five summary counters in a
// single pass. Buckets are mutually exclusive; deleting is checked first so
// a document mid-deletion is never counted under the status a stale
// snapshot reports.
func CountStatuses(docs []models.DisplayDocument) models.StatusCounts {
	var counts models.StatusCounts
	for _, d := range docs {
		switch {
		case d.Status == models.StatusDeleting:
			counts.Deleting++
		case d.Status == models.StatusFailed:
			counts.Failed++
		case d.Status == models.StatusCompleted,
			d.Status == models.StatusProcessed,
			d.Status == models.StatusFinalized:
			counts.Completed++
		case d.Status == models.StatusPending:
			counts.Attached++
		default:
			// uploading, uploaded, processing, "In progress ..." strings
			// and anything unrecognized are all in-flight.
			counts.Queued++
		}
	}
	return counts
}
