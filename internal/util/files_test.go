package util

import "testing"

func TestHasAllowedExtension(t *testing.T) {
	allowed := []string{"pdf", ".PNG", "jpg"}
	testCases := []struct {
		path     string
		expected bool
	}{
		{"scan.pdf", true},
		{"scan.PDF", true},
		{"photo.png", true},
		{"photo.jpeg", false},
		{"dir/nested/page.jpg", true},
		{"noextension", false},
		{"archive.pdf.zip", false},
	}
	for _, tc := range testCases {
		if got := HasAllowedExtension(tc.path, allowed); got != tc.expected {
			t.Errorf("HasAllowedExtension(%q) = %v; want %v", tc.path, got, tc.expected)
		}
	}
}
