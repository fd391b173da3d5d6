package main

import "github.com/charmbracelet/lipgloss"

// Color palette shared by every subcommand.
var (
	ColorSuccess = lipgloss.Color("#8BC34A") // Lime Green
	ColorError   = lipgloss.Color("#e53935") // Red
	ColorWarning = lipgloss.Color("#FFC107") // Yellow
	ColorInfo    = lipgloss.Color("#2196F3") // Blue
	ColorMuted   = lipgloss.Color("#6b7280") // Gray
)

var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorWarning)
	infoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// paint renders s with the given style unless color output is disabled.
func paint(style lipgloss.Style, s string) string {
	if cfg != nil && !cfg.Output.Color {
		return s
	}
	return style.Render(s)
}
