package text

import "strings"

// Truncate cuts s to at most max runes and marks the cut with "...".
// max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}

// Preview collapses whitespace runs to single spaces and truncates, so a raw
// request body fits on one log line.
func Preview(s string, max int) string {
	return Truncate(strings.Join(strings.Fields(s), " "), max)
}
