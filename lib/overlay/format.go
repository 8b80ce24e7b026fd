package overlay

import (
	"fmt"
	"time"
)

// FormatTimeRange renders a session's schedule as wall-clock text:
// "HH:MM - HH:MM" for a closed range, "HH:MM" alone for an open end,
// empty when the start is unknown. Times are epoch milliseconds rendered
// in loc.
func FormatTimeRange(start, end *int64, loc *time.Location) string {
	if start == nil {
		return ""
	}
	s := formatClock(*start, loc)
	if end == nil {
		return s
	}
	return s + " - " + formatClock(*end, loc)
}

func formatClock(ms int64, loc *time.Location) string {
	t := time.UnixMilli(ms).In(loc)
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
