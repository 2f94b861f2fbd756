package util

import "testing"

func TestNaturalSortLess(t *testing.T) {
	testCases := []struct {
		s1, s2   string
		expected bool
	}{
		{"scan_2.pdf", "scan_10.pdf", true},
		{"scan_10.pdf", "scan_2.pdf", false},
		{"page 2", "page 10", true},
		{"letter-1890", "letter-1912", true},
		{"a", "b", true},
		{"b", "a", false},
		{"scan", "scan1", true},
		{"scan1", "scan", false},
		{"box1/doc2", "box1/doc10", true},
	}
	for _, tc := range testCases {
		if result := NaturalSortLess(tc.s1, tc.s2); result != tc.expected {
			t.Errorf("NaturalSortLess(%q, %q) = %v; want %v", tc.s1, tc.s2, result, tc.expected)
		}
	}
}

func TestNaturalSortLessEqual(t *testing.T) {
	for _, s := range []string{"ledger 1", "scan_01.tif", "v1.0"} {
		if NaturalSortLess(s, s) {
			t.Errorf("NaturalSortLess(%q, %q) = true; want false (equal case)", s, s)
		}
	}
	// Leading zeros do not change the numeric value.
	if NaturalSortLess("scan_01", "scan_1") || NaturalSortLess("scan_1", "scan_01") {
		t.Error("scan_01 and scan_1 should compare equal")
	}
}

func TestNaturalSortLessCaseInsensitive(t *testing.T) {
	testCases := []struct {
		s1, s2   string
		expected bool
	}{
		{"Scan1", "scan2", true},
		{"SCAN10", "scan2", false},
		{"Archive", "archive", false},
	}
	for _, tc := range testCases {
		if result := NaturalSortLess(tc.s1, tc.s2); result != tc.expected {
			t.Errorf("NaturalSortLess(%q, %q) = %v; want %v", tc.s1, tc.s2, result, tc.expected)
		}
	}
}
