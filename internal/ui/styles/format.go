package styles

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// FormatChangeSummary renders "+added -removed" line counts.
// Returns empty string when nothing changed.
func FormatChangeSummary(added, removed int) string {
	if added == 0 && removed == 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(DiffAddedColor).Render(fmt.Sprintf("+%d", added)) +
		" " +
		lipgloss.NewStyle().Foreground(DiffRemovedColor).Render(fmt.Sprintf("-%d", removed))
}

// FormatDuration renders a run duration with millisecond precision below
// one second and tenths of a second above.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
