package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ASCII Art Logo
const asciiLogo = `
       _      _                     _
 _ __ (_)_ __| |__   ___ _ __   ___| |__
| '_ \| | '__| '_ \ / _ \ '_ \ / __| '_ \
| |_) | | |  | |_) |  __/ | | | (__| | | |
| .__/|_|_|  |_.__/ \___|_| |_|\___|_| |_|
|_|
`

var gradient = []string{"#00BFFF", "#1E90FF", "#4169E1", "#6A5ACD", "#8A2BE2", "#FF00FF"}

var (
	logoOnce sync.Once
	logo     string
)

// GenerateLogo returns the gradient styled logo
func GenerateLogo() string {
	logoOnce.Do(func() {
		lines := strings.Split(strings.Trim(asciiLogo, "\n"), "\n")
		coloredLines := make([]string, 0, len(lines))
		for i, line := range lines {
			color := "#FFF"
			if i < len(gradient) {
				color = gradient[i]
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
			coloredLines = append(coloredLines, style.Render(line))
		}
		logo = LogoContainerStyle.Render(strings.Join(coloredLines, "\n"))
	})
	return logo
}

// LogoContainerStyle container
var LogoContainerStyle = lipgloss.NewStyle().
	MarginBottom(1).
	Padding(0, 1).
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62")) // Purple-ish border
