package screen

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/kass/go-city-map/pkg/models"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1A1A2E")).
			Padding(0, 1).
			MarginBottom(1)

	loadingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1A1A2E")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CC0000")).
			Padding(0, 3)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	mapStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#BD93F9"))

	gridStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44475A"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4285F4"))

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Background(lipgloss.Color("#F0F0F5")).
			Padding(0, 2).
			MarginRight(1)

	chipActiveStyle = chipStyle.
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1A1A2E"))
)

var tintColors = map[models.Tint]lipgloss.Color{
	models.TintGreen:  lipgloss.Color("#50FA7B"),
	models.TintBlue:   lipgloss.Color("#8BE9FD"),
	models.TintRed:    lipgloss.Color("#FF5555"),
	models.TintYellow: lipgloss.Color("#F1FA8C"),
	models.TintPurple: lipgloss.Color("#BD93F9"),
	models.TintOrange: lipgloss.Color("#FFB86C"),
}

func tintStyle(t models.Tint) lipgloss.Style {
	c, ok := tintColors[t]
	if !ok {
		c = tintColors[models.TintRed]
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
