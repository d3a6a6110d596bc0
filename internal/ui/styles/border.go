// Package styles contains Lip Gloss style definitions.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderWithTitleBorder renders content in a rounded box of exactly width x
// height cells with titles embedded in the top border:
//
//	╭─ Left ───────────── Right ─╮
//
// Pass "" to omit a title. Titles may carry their own styling.
func RenderWithTitleBorder(content, leftTitle, rightTitle string, width, height int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		borderColor = BorderFocusedColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(TextPrimaryColor).Bold(focused)

	innerWidth := max(width-2, 1)
	contentHeight := max(height-2, 1)

	constrained := lipgloss.NewStyle().Width(innerWidth).Height(contentHeight).Render(content)
	contentLines := strings.Split(constrained, "\n")

	var b strings.Builder
	b.WriteString(topBorder(leftTitle, rightTitle, innerWidth, borderStyle, titleStyle))
	for i := range contentHeight {
		var line string
		if i < len(contentLines) {
			line = truncate.String(contentLines[i], uint(innerWidth))
		}
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(borderVertical) + line + borderStyle.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

// topBorder lays out "─ left ─…─ right ─" in innerWidth cells. The right
// title is dropped first when space runs out, then the left one is truncated.
func topBorder(left, right string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	plain := func() string {
		return borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}
	if left == "" && right == "" {
		return plain()
	}

	// "─ " + title + " " on the left, " " + title + " ─" on the right,
	// with at least one dash between.
	part := func(title string) int {
		if title == "" {
			return 0
		}
		return 3 + lipgloss.Width(title)
	}

	if right != "" && part(left)+part(right)+1 > innerWidth {
		right = ""
	}
	if right == "" && left != "" && part(left)+1 > innerWidth {
		if innerWidth < 5 {
			return plain()
		}
		left = TruncateString(left, innerWidth-4)
	}
	if left == "" && right == "" {
		return plain()
	}

	used := part(left) + part(right)
	dashes := max(innerWidth-used, 1)

	var b strings.Builder
	b.WriteString(borderStyle.Render(borderTopLeft))
	if left != "" {
		b.WriteString(borderStyle.Render(borderHorizontal + " "))
		b.WriteString(titleStyle.Render(left))
		b.WriteString(borderStyle.Render(" "))
	}
	b.WriteString(borderStyle.Render(strings.Repeat(borderHorizontal, dashes)))
	if right != "" {
		b.WriteString(borderStyle.Render(" "))
		b.WriteString(titleStyle.Render(right))
		b.WriteString(borderStyle.Render(" " + borderHorizontal))
	}
	b.WriteString(borderStyle.Render(borderTopRight))
	return b.String()
}

// TruncateString truncates s to fit within maxWidth cells, adding an
// ellipsis if needed. ANSI sequences are preserved.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return truncate.StringWithTail(s, uint(maxWidth), "...")
}
