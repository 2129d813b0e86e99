package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext1 lipgloss.Color = "#bac2de"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorAccent  = colorPink
	colorBrand   = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)

	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 2)

	bannerStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	urlStyle     = lipgloss.NewStyle().Foreground(colorFocus).Underline(true)
	hintKeyStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	hintStyle    = lipgloss.NewStyle().Foreground(colorSubtext0)
	pendingStyle = lipgloss.NewStyle().Foreground(colorOverlay1).Italic(true)

	responseStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			PaddingLeft(2)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).PaddingLeft(2)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)

	pickerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface0).
			Padding(0, 2)
	statusErrStyle  = statusBarStyle.Foreground(colorError)
	statusInfoStyle = statusBarStyle.Foreground(colorInfo)
)
