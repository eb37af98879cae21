package departures

import (
	"fmt"
	"time"
)

// FormatLeavingIn formats d as minutes:seconds. Minutes are truncated toward
// zero and may be negative; seconds never go below zero.
func FormatLeavingIn(d time.Duration) string {
	total := int64(d / time.Second)
	minutes := total / 60
	seconds := total - minutes*60
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
