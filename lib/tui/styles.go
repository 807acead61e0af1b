package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor  = lipgloss.Color("#60A5FA")
	mutedColor   = lipgloss.Color("#9CA3AF")
	surfaceColor = lipgloss.Color("#374151")
	textColor    = lipgloss.Color("#F3F4F6")
	badgeColor   = lipgloss.Color("#FACC15")
	errorColor   = lipgloss.Color("#F87171")

	subtitleStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(textColor).Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	focusedStyle  = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	hintStyle     = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#2563EB")).
			Padding(0, 2)

	disabledButtonStyle = buttonStyle.
				Background(lipgloss.Color("#6B7280"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(surfaceColor).
			Padding(0, 1).
			Width(60)

	selectedCardStyle = cardStyle.
				BorderForeground(accentColor)

	skeletonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(surfaceColor).
			Foreground(surfaceColor).
			Padding(0, 1).
			Width(60)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(badgeColor).
			Bold(true).
			Padding(0, 1)

	platformStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)
)
