package jellyfin

import (
	"fmt"
	"strconv"
	"strings"
)

// Jellyfin uses 100-nanosecond ticks
const ticksPerSecond = 10_000_000

// FormatBytes renders a byte count with a decimal unit
func FormatBytes(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.2f GB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.2f MB", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.2f KB", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatSeconds renders a duration like "1h 2m 5s", dropping zero hours and minutes
func FormatSeconds(secs int64) string {
	hours := secs / 3600
	minutes := secs / 60 % 60
	seconds := secs % 60

	var b strings.Builder
	if hours > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dm ", minutes)
	}
	fmt.Fprintf(&b, "%ds", seconds)
	return b.String()
}

// ticksToSeconds truncates to whole seconds
func ticksToSeconds(ticks int64) int64 {
	return ticks / ticksPerSecond
}

// formatRating prints a score the way the server UI does: 8 -> "8.0", 7.25 -> "7.25"
func formatRating(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
