package logs

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("14")  // cyan
	colorMuted  = lipgloss.Color("242") // gray
	colorError  = lipgloss.Color("196") // red
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	headerInfoStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
