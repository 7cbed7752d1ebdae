package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha subset.
const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface0 lipgloss.Color = "#313244"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorMauve)
	labelStyle   = lipgloss.NewStyle().Foreground(colorOverlay1).Width(10)
	valueStyle   = lipgloss.NewStyle().Foreground(colorText)
	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	stoppedStyle = lipgloss.NewStyle().Foreground(colorRed)
	verboseStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPeach)
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorLavender).Padding(0, 1)
	footerStyle  = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 2)
	statusStyle  = lipgloss.NewStyle().Foreground(colorTeal)
)
