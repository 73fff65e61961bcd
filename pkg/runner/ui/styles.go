package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	accent = lipgloss.Color("212")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("219"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	accentStyle   = lipgloss.NewStyle().Foreground(accent)
	urgentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("99")).Padding(0, 1)
)

// Celebration gradient endpoints.
var (
	gradientFrom, _ = colorful.Hex("#FF5FAF")
	gradientTo, _   = colorful.Hex("#5FD7FF")
)

// gradient renders s bold with a left to right color blend.
func gradient(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := gradientFrom.BlendLuv(gradientTo, t).Clamped()
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return b.String()
}
