package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Screen chrome
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			MarginBottom(1)

	BodyStyle = lipgloss.NewStyle().
			Padding(0, 2)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(1, 4)
)

// Status lines under forms and tables
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Success)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Warning)

	InfoStyle = lipgloss.NewStyle().
			Foreground(palette.TextSecondary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)

// Trading
var (
	BuyStyle = lipgloss.NewStyle().
			Foreground(palette.Buy).
			Bold(true)

	SellStyle = lipgloss.NewStyle().
			Foreground(palette.Sell).
			Bold(true)
)

// FormWidth caps form inputs on wide terminals.
func FormWidth(width int) int {
	if width < 68 {
		return width - 8 // Leave some margin on narrow screens
	}
	return 60
}
