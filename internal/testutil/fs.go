package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// CreateScanFile is a helper function that creates a file of the given size
// under dir. It's useful for testing attach validation and the inbox
// watcher.
func CreateScanFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	filePath := filepath.Join(dir, name)
	data := bytes.Repeat([]byte{0x25}, size) // '%', the first byte of a PDF header
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		t.Fatalf("Failed to create test scan file: %v", err)
	}
	return filePath
}
