package styles

import "github.com/charmbracelet/lipgloss"

// Color tokens. Adaptive colors pick the light or dark variant from the
// terminal background.
var (
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"}
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#424A53", Dark: "#B1BAC4"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#6E7781", Dark: "#7D8590"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#30363D"}
	BorderFocusedColor = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#6E7681"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}

	DiffAddedColor   = StatusSuccessColor
	DiffRemovedColor = StatusErrorColor
)

var (
	SelectionIndicatorStyle = lipgloss.NewStyle().Foreground(OverlayTitleColor).Bold(true)

	// ButtonStyle renders an enabled toolbar button.
	ButtonStyle = lipgloss.NewStyle().
			Foreground(TextPrimaryColor).
			Border(lipgloss.NormalBorder(), false, true).
			BorderForeground(BorderFocusedColor).
			Padding(0, 1)

	// ButtonDisabledStyle renders a disabled toolbar button.
	ButtonDisabledStyle = ButtonStyle.
				Foreground(TextMutedColor).
				BorderForeground(BorderDefaultColor)

	HintStyle = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true)
)
