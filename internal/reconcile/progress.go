package reconcile

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/scandesk/scandesk/internal/models"
)

// percentRe extracts the percentage out of a detailed status such as
// "In progress 42.5% - Refining text". Fractional values are allowed.
var percentRe = regexp.MustCompile(`(?i)in progress\s+([0-9]+(?:\.[0-9]+)?)\s*%`)

// HasProgressMarker reports whether status is a detailed long-running-job
// status ("In progress ...") rather than a coarse vocabulary value.
func HasProgressMarker(status string) bool {
	return strings.Contains(strings.ToLower(status), "in progress")
}

// ProgressPercent maps a raw status value to 0-100. An embedded percentage
// wins and is rounded half up (42.5 -> 43); otherwise a fixed vocabulary
// applies, and anything unrecognized is 0.
func ProgressPercent(status string) int {
	if m := percentRe.FindStringSubmatch(status); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if v < 0 {
				v = 0
			}
			if v > 100 {
				v = 100
			}
			return int(math.Floor(v + 0.5))
		}
	}
	switch status {
	case models.StatusUploading:
		return 15
	case models.StatusUploaded:
		return 30
	case models.StatusProcessing:
		return 60
	case models.StatusProcessed, models.StatusCompleted, models.StatusFinalized:
		return 100
	default:
		// pending, failed, deleting and anything unknown
		return 0
	}
}

// IsTerminal reports whether a status is one the backend will never move
// past: pollers can stop watching the file.
func IsTerminal(status string) bool {
	switch status {
	case models.StatusProcessed, models.StatusCompleted, models.StatusFinalized,
		models.StatusDeleted, models.StatusFailed:
		return true
	}
	return false
}

// statusLabels is the display vocabulary for coarse statuses.
var statusLabels = map[string]string{
	models.StatusPending:    "Attached",
	models.StatusUploading:  "Uploading",
	models.StatusUploaded:   "In Queue",
	models.StatusProcessing: "Processing",
	models.StatusProcessed:  "Processed",
	models.StatusCompleted:  "Completed",
	models.StatusFinalized:  "Finalized",
	models.StatusFailed:     "Failed",
	models.StatusDeleting:   "Deleting",
	models.StatusDeleted:    "Deleted",
}

// StatusLabel returns the human display string for a status. Detailed
// "In progress" statuses pass through verbatim so the embedded phase text
// stays visible; unknown statuses fall back to the raw value.
func StatusLabel(status string) string {
	if HasProgressMarker(status) {
		return status
	}
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}
