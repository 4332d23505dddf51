package util

import "time"

// DateDisplayLayout is the human-readable layout used on profile cards and
// the detail view. Raw source dates never leak past the mapper.
const DateDisplayLayout = "Jan 2, 2006"

var dateParseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate parses a date string using the layouts seen in list exports.
// Returns the zero time and false when nothing matches.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateParseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a time in the display layout.
func FormatDate(t time.Time) string {
	return t.Format(DateDisplayLayout)
}
