package util

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidateFolderPath checks that a directory is usable as a drop folder:
// it exists (or can be created) and is writable. Relative paths are
// resolved against the working directory.
func ValidateFolderPath(folderPath string) error {
	if folderPath == "" {
		return fmt.Errorf("folder path cannot be empty")
	}

	// Reject directory traversal outright rather than resolving it.
	if strings.Contains(folderPath, "..") {
		return fmt.Errorf("folder path contains invalid directory traversal")
	}

	fullPath, err := filepath.Abs(filepath.Clean(folderPath))
	if err != nil {
		return fmt.Errorf("cannot resolve path: %w", err)
	}

	info, err := os.Stat(fullPath)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", fullPath)
		}
		if err := checkWritePermission(fullPath); err != nil {
			return fmt.Errorf("no write permission for directory: %w", err)
		}
		return nil
	}
	if os.IsNotExist(err) {
		return checkCanCreatePath(fullPath)
	}
	return fmt.Errorf("cannot access path: %w", err)
}

// checkWritePermission probes a directory by creating and removing a
// scratch file.
func checkWritePermission(dirPath string) error {
	probe := filepath.Join(dirPath, ".scandesk_write_check")
	file, err := os.Create(probe)
	if err != nil {
		return err
	}
	file.Close()
	os.Remove(probe)
	return nil
}

// checkCanCreatePath verifies a missing directory could be created, by
// creating it and removing it again.
func checkCanCreatePath(fullPath string) error {
	parentDir := filepath.Dir(fullPath)
	if info, err := os.Stat(parentDir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access parent directory: %w", err)
		}
		if err := os.MkdirAll(parentDir, 0755); err != nil {
			return fmt.Errorf("cannot create parent directory: %w", err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("parent path exists but is not a directory: %s", parentDir)
	}

	if err := checkWritePermission(parentDir); err != nil {
		return fmt.Errorf("no write permission for parent directory: %w", err)
	}
	if err := os.MkdirAll(fullPath, 0755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	os.RemoveAll(fullPath)
	return nil
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	invalidChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// SanitizeFileName removes characters that cannot appear in file names on
// common filesystems. Use it on names received from outside, like the
// filename field of a dashboard upload.
func SanitizeFileName(name string) string {
	if name == "" {
		return ""
	}

	safe := controlChars.ReplaceAllString(name, "")
	safe = invalidChars.ReplaceAllString(safe, "-")

	// Windows rejects leading/trailing spaces and dots.
	safe = strings.Trim(safe, " .")
	safe = dashRuns.ReplaceAllString(safe, "-")
	safe = strings.Trim(safe, "-")

	// Windows also reserves a handful of device names.
	base := strings.ToUpper(strings.TrimSuffix(safe, filepath.Ext(safe)))
	switch base {
	case "CON", "PRN", "AUX", "NUL",
		"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
		"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9":
		safe = "_" + safe
	}
	return safe
}
