package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/moodtrend/pkg/mood"
)

// Color palette "Blue Moon" from https://gogh-co.github.io/Gogh/
const (
	colorGray     = "#353b52"
	colorWhite    = "#ffffff"
	colorGreen    = "#acfab4"
	colorGreenDim = "#b4c4b4"
	colorRed      = "#e61f44"
	colorRedDim   = "#d06178"
	colorYellow   = "#ffcb6b"
	colorPurple   = "#b9a3eb"
	colorBlue     = "#89ddff"

	marqueeTickDuration = time.Duration(time.Second / 20)
	marqueeGap          = 4
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue)).
			Background(lipgloss.Color(colorGray)).
			Padding(0, 2).Align(lipgloss.Center)
	subtitleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color(colorBlue))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorGray)).
			Background(lipgloss.Color(colorGreen))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorBlue))
	listStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPurple))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray))
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color(colorGray)).
			Padding(0, 2)
)

// statusStyle colors a roster status the same way the report does.
func statusStyle(s mood.Status) lipgloss.Style {
	switch s {
	case mood.StatusCritical:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorRed))
	case mood.StatusMonitoring:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow))
	case mood.StatusImproving:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim))
	}
}

func moodStyle(c mood.Category) lipgloss.Style {
	switch c.Score() {
	case 5:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen))
	case 1:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed))
	case 2:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colorRedDim))
	default:
		return inactiveStyle
	}
}

// marquee scrolls text that does not fit into width by offset runes.
func marquee(text string, width, offset int) string {
	r := []rune(text)
	if width <= 0 || len(r) <= width {
		return text
	}
	padded := append(append(append([]rune{}, r...), []rune(strings.Repeat(" ", marqueeGap))...), r...)
	start := offset % (len(r) + marqueeGap)
	return string(padded[start : start+width])
}

// truncate shortens text to width runes with a trailing "..".
func truncate(text string, width int) string {
	r := []rune(text)
	if width <= 3 || len(r) <= width {
		return text
	}
	return string(r[:width-2]) + ".."
}
