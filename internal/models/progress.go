package models

import "time"

// UploadProgress is broadcast over the websocket while an upload streams.
type UploadProgress struct {
	EntryID  string  `json:"entry_id"`
	FileID   string  `json:"file_id,omitempty"`
	FileName string  `json:"file_name"`
	Progress float64 `json:"progress"`
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Done     bool    `json:"done"`
}

// QueueSnapshot is broadcast after every state-changing operation and every
// poll tick so dashboard clients can re-render without refetching.
type QueueSnapshot struct {
	Documents []DisplayDocument `json:"documents"`
	Counts    StatusCounts      `json:"counts"`
	At        time.Time         `json:"at"`
}
