package util

import "strings"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization for search-text comparison
// (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeKey normalizes a display name for use as a join key. Only ASCII
// letters and digits survive, so punctuation and spacing differences between
// two independently maintained sources still match. Idempotent and total.
func NormalizeKey(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return ""
	}

	var builder strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// FileKey derives a join key from a file name: the trailing extension (final
// '.' and everything after it) is stripped before the usual key normalization.
func FileKey(name string) string {
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[:idx]
	}
	return NormalizeKey(name)
}

// Initials returns up to two uppercase initials from the first two
// whitespace-separated words of a display name. Used for the placeholder
// avatar once every photo strategy is exhausted.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) > 2 {
		fields = fields[:2]
	}

	var builder strings.Builder
	for _, f := range fields {
		runes := []rune(f)
		if len(runes) == 0 {
			continue
		}
		builder.WriteString(strings.ToUpper(string(runes[0])))
	}
	return builder.String()
}

// ContainsFold reports whether substr occurs in s, case-insensitively.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
