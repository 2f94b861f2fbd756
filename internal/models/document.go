// This file defines the core data structures (models) for the application.
// These structs represent the documents tracked by the digitization backend
// and the client-side projections derived from them.

package models

import "time"

// Processing statuses reported by the backend. Long-running jobs may also
// report a free-text status such as "In progress 42% - Refining text",
// which is carried verbatim in Document.Status.
const (
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusCompleted  = "completed"
	StatusFinalized  = "finalized"
	StatusDeleted    = "deleted"

	// StatusDeleting is a client-side annotation for documents whose delete
	// request is in flight. The backend never reports it.
	StatusDeleting = "deleting"
)

// Processing routes assigned by the backend at upload time.
const (
	RouteShortBatch = "short-batch"
	RouteLongBatch  = "long-batch"
)

// Document is the authoritative record owned by the backend. The client
// never creates or destroys one; it only observes snapshots via polling.
type Document struct {
	FileID          string            `json:"file_id"`
	FileName        string            `json:"file_name"`
	FileSize        int64             `json:"file_size"`
	Status          string            `json:"processing_status"`
	ProcessingType  string            `json:"processing_type"`
	Metadata        *DocumentMetadata `json:"metadata,omitempty"`
	OCR             *OCRResult        `json:"ocr_results,omitempty"`
	FinalizedResult *FinalizedResult  `json:"finalized_results,omitempty"`
	Finalized       bool              `json:"finalized"`
	TextAnalysis    *TextAnalysis     `json:"text_analysis,omitempty"`
	UploadedAt      *time.Time        `json:"uploaded_at,omitempty"`
	ProcessedAt     *time.Time        `json:"processed_at,omitempty"`
	FinalizedAt     *time.Time        `json:"finalized_at,omitempty"`

	// Deleting marks a document whose delete call has been issued but not
	// yet confirmed by a poll snapshot. Set by the client, never decoded
	// from the wire.
	Deleting bool `json:"deleting,omitempty"`
}

// DocumentMetadata is the user-supplied metadata block attached at upload.
type DocumentMetadata struct {
	Title      string   `json:"title,omitempty"`
	Author     string   `json:"author,omitempty"`
	Date       string   `json:"date,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Collection string   `json:"collection,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// OCRResult holds the extracted text for a processed document.
type OCRResult struct {
	RawText       string  `json:"raw_text,omitempty"`
	FormattedText string  `json:"formatted_text,omitempty"`
	EditedText    string  `json:"edited_text,omitempty"`
	Confidence    float64 `json:"confidence,omitempty"`
	PageCount     int     `json:"page_count,omitempty"`
}

// FinalizedResult is the locked-in text version chosen by the user.
type FinalizedResult struct {
	Text        string          `json:"text"`
	TextSource  string          `json:"text_source"` // "ocr", "formatted" or "edited"
	Notes       string          `json:"notes,omitempty"`
	FinalizedAt *time.Time      `json:"finalized_at,omitempty"`
	EditHistory []FinalizedEdit `json:"edit_history,omitempty"`
}

// FinalizedEdit is one entry in a finalized document's edit history.
type FinalizedEdit struct {
	Reason       string     `json:"reason"`
	PreviousText string     `json:"previous_text,omitempty"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
}

// TextAnalysis carries the backend's quality assessment of the OCR output.
type TextAnalysis struct {
	QualityScore float64 `json:"quality_score"`
	WordCount    int     `json:"word_count,omitempty"`
	CharCount    int     `json:"char_count,omitempty"`
}

// RecycleBinEntry is a soft-deleted document awaiting restore or purge.
type RecycleBinEntry struct {
	FileID    string     `json:"file_id"`
	FileName  string     `json:"file_name"`
	FileSize  int64      `json:"file_size"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// SearchResult is a single archive search hit returned by the backend.
type SearchResult struct {
	FileID      string  `json:"file_id"`
	FileName    string  `json:"file_name"`
	Title       string  `json:"title,omitempty"`
	Author      string  `json:"author,omitempty"`
	Publication string  `json:"publication,omitempty"`
	Year        int     `json:"year,omitempty"`
	Snippet     string  `json:"snippet,omitempty"`
	Score       float64 `json:"score,omitempty"`
}
