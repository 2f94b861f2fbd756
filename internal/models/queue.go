package models

import "time"

// Statuses a local queue entry moves through. These exist only on the
// client; once the backend lists the entry's file ID the journal row is
// pruned and the backend's status takes over.
const (
	StatusPending   = "pending"
	StatusUploading = "uploading"
	StatusUploaded  = "uploaded"
	StatusFailed    = "failed"
)

// QueueEntry is one row of the local upload journal. It is created when a
// file is attached, mutated as the upload proceeds, and removed once the
// backend confirms the file or the user clears it.
type QueueEntry struct {
	ID          string            `json:"id"` // locally generated uuid
	FilePath    string            `json:"file_path"`
	DisplayName string            `json:"display_name"`
	SizeBytes   int64             `json:"size_bytes"`
	SizeLabel   string            `json:"size_label"`
	Status      string            `json:"status"`
	Progress    int               `json:"progress"` // upload progress, 0-100
	Metadata    *DocumentMetadata `json:"metadata,omitempty"`
	FileID      string            `json:"file_id,omitempty"` // assigned by the backend on upload
	Routing     string            `json:"routing,omitempty"` // short-batch or long-batch
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// UploadReceipt is what the backend hands back for one uploaded file.
type UploadReceipt struct {
	FileID         string          `json:"file_id"`
	Routing        string          `json:"routing"`
	DeploymentInfo *DeploymentInfo `json:"deployment_info,omitempty"`
}

// DeploymentInfo identifies the backend deployment that served an upload.
type DeploymentInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment,omitempty"`
}
