package stats

import (
	"fmt"
	"time"
)

// FormatTime renders seconds as "m:ss", or "h:mm:ss" from one hour up.
// Negative input renders as "0:00".
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatDuration is FormatTime for a duration, truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	return FormatTime(int(d / time.Second))
}
