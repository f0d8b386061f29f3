package format

import (
	"fmt"
	"time"
)

// FmtConfidence renders a 0..1 confidence score as a percentage.
func FmtConfidence(score float64) string {
	return fmt.Sprintf("%.0f%%", score*100)
}

// FmtDuration formats a duration as "Xm Ys", "Ys", or milliseconds below a
// second.
func FmtDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	s := int(d.Seconds())
	if s >= 60 {
		return fmt.Sprintf("%dm %ds", s/60, s%60)
	}
	return fmt.Sprintf("%ds", s)
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// StatusMark returns "✓" for a completed run and "…" for an exhausted one.
func StatusMark(exhausted bool) string {
	if exhausted {
		return "…"
	}
	return "✓"
}
