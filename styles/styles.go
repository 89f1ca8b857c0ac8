// Package styles is the rmxsynth palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Width of every document. The terminal width only truncates.
const Width = 72

var (
	Ink    = lipgloss.AdaptiveColor{Light: "#1B1B2F", Dark: "#E8E6F0"}
	Muted  = lipgloss.AdaptiveColor{Light: "#6B6880", Dark: "#8F8BA6"}
	Panel  = lipgloss.AdaptiveColor{Light: "#E4E1EE", Dark: "#2A2838"}
	Rec    = lipgloss.Color("#E2453C")
	Play   = lipgloss.Color("#2FA37C")
	Hold   = lipgloss.Color("#D9A13B")
	Border = lipgloss.Color("#5A567A")

	BoldStyle = lipgloss.NewStyle().Foreground(Ink).Bold(true)

	// Frame around tables.
	BaseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	// Player status line: a colored state badge followed by the track name.
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Play).
			Bold(true).
			Padding(0, 1).
			MarginRight(1)
	PausedStyle = StatusStyle.Copy().Background(Hold)
	StatusText  = lipgloss.NewStyle().Foreground(Ink).Background(Panel).Padding(0, 1)

	MessageText = lipgloss.NewStyle().Foreground(Muted)
	HelpMenu    = lipgloss.NewStyle().PaddingTop(1)
	DocStyle    = lipgloss.NewStyle().Padding(1, 2)
)

// RenderError prefixes msg with an error badge.
func RenderError(msg string) string {
	badge := lipgloss.NewStyle().Background(Rec).Foreground(lipgloss.Color("#FFFFFF")).Bold(true).Padding(0, 1).Render("Error")
	return badge + lipgloss.NewStyle().Foreground(Rec).Padding(0, 1).Render(msg)
}
