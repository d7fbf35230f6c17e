package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Shared colors.
var (
	colorAccent   = lipgloss.Color("229")
	colorSelected = lipgloss.Color("57")
	colorBorder   = lipgloss.Color("240")
	colorMuted    = lipgloss.Color("241")
	colorGold     = lipgloss.Color("220")
)

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	bannerCelebrateStyle = bannerStyle.
				BorderForeground(colorGold).
				Bold(true)

	bannerLabelStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Bold(true)

	bannerValueStyle = lipgloss.NewStyle().
				Foreground(colorAccent)

	bannerEmptyStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Italic(true)

	bannerNoteStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

const (
	// Border and padding on each side of the banner.
	bannerChrome   = 4
	minBannerWidth = 12
	ellipsis       = "…"
)

// renderBanner draws the shared banner panel.
func renderBanner(s shell, celebrating bool, width int) string {
	if width < minBannerWidth {
		width = minBannerWidth
	}
	inner := width - bannerChrome

	label := strings.ToUpper(s.label)
	if celebrating {
		label = "★ " + label
	}

	value := bannerValueStyle.Render(truncate(s.text, inner))
	if s.empty {
		value = bannerEmptyStyle.Render(truncate(s.text, inner))
	}

	lines := []string{
		bannerLabelStyle.Render(truncate(label, inner)),
		value,
		bannerNoteStyle.Render(truncate(s.note, inner)),
	}

	style := bannerStyle
	if celebrating {
		style = bannerCelebrateStyle
	}
	return style.MaxWidth(width).Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// centerText pads text on the left to center it within width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
