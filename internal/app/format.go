// ABOUTME: Clock-style rendering of playback positions
// ABOUTME: Shared by the TUI, the headless player and the probe command
package app

import (
	"fmt"
	"time"
)

// FormatDuration renders d as h:mm:ss, or m:ss under an hour
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
