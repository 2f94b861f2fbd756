package util

import "strings"

// NaturalSortLess compares two strings so that embedded digit runs are
// ordered numerically: "scan_2.pdf" sorts before "scan_10.pdf". Letters are
// compared case-insensitively.
func NaturalSortLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			ai, bj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[ai:i], "0")
			nb := strings.TrimLeft(b[bj:j], "0")
			// A longer digit run (after stripping zeros) is the larger number.
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		ca, cb := lowerByte(a[i]), lowerByte(b[j])
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	// Shorter string first when one is a prefix of the other.
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
