package util

import (
	"path/filepath"
	"strings"
)

// HasAllowedExtension reports whether path's extension appears in allowed.
// Entries are compared case-insensitively, with or without a leading dot.
func HasAllowedExtension(path string, allowed []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, a := range allowed {
		if ext == strings.ToLower(strings.TrimPrefix(a, ".")) {
			return true
		}
	}
	return false
}
