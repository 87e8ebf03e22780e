// api/utils/format.go
package utils

import "time"

// Sentinel display strings for timestamps that cannot be rendered.
const (
	NotAvailable = "Not available"
	InvalidDate  = "Invalid date"
)

// displayOffset is a fixed timezone adjustment applied to every rendered
// timestamp. It is hard-coded on purpose: the dashboard's audience sits five
// hours ahead of the UTC-equivalent values the game client writes.
const displayOffset = 5 * time.Hour

const timestampLayout = "15:04:05 2006-01-02"

// FormatTimestamp renders an epoch-millisecond value as "HH:MM:SS
// YYYY-MM-DD" shifted by the fixed display offset. Zero (the missing-value
// convention in the store) renders as NotAvailable; values outside the
// calendar range render as InvalidDate. It never fails.
func FormatTimestamp(ms int64) string {
	if ms == 0 {
		return NotAvailable
	}
	if ms < 0 {
		return InvalidDate
	}
	t := time.UnixMilli(ms).UTC().Add(displayOffset)
	if y := t.Year(); y < 1 || y > 9999 {
		return InvalidDate
	}
	return t.Format(timestampLayout)
}
