package models

import "time"

// DisplayDocument is the reconciled projection shown to the user: a local
// queue entry or a backend record, plus any detailed-status override, with
// the final status resolved. It is derived on demand and never persisted.
type DisplayDocument struct {
	QueueID        string            `json:"queue_id,omitempty"` // set for local entries
	FileID         string            `json:"file_id,omitempty"`
	Name           string            `json:"name"`
	SizeBytes      int64             `json:"size_bytes"`
	Status         string            `json:"status"` // resolved raw status
	Label          string            `json:"label"`  // human display string
	Progress       int               `json:"progress"`
	ProcessingType string            `json:"processing_type,omitempty"`
	FromProcessed  bool              `json:"from_processed"` // backend-confirmed vs purely local
	Finalized      bool              `json:"finalized,omitempty"`
	Error          string            `json:"error,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
	Metadata       *DocumentMetadata `json:"metadata,omitempty"`
}

// StatusCounts buckets a display list for the summary badges. Buckets are
// mutually exclusive per document.
type StatusCounts struct {
	Attached  int `json:"attached"`
	Queued    int `json:"queued"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Deleting  int `json:"deleting"`
}

// Total returns the number of documents across all buckets.
func (c StatusCounts) Total() int {
	return c.Attached + c.Queued + c.Completed + c.Failed + c.Deleting
}
