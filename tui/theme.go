package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header      lipgloss.Style
	user        lipgloss.Style
	assistant   lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	inputPanel  lipgloss.Style
	help        lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("#7d56f4")
	mint := lipgloss.Color("#05ffa1")
	pink := lipgloss.Color("#ff71ce")
	muted := lipgloss.Color("#9ca3d8")

	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(accent).
			Padding(0, 1),
		user:        lipgloss.NewStyle().Foreground(mint).Bold(true),
		assistant:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		status:      lipgloss.NewStyle().Foreground(muted),
		errorStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		help: lipgloss.NewStyle().Foreground(muted),
	}
}
