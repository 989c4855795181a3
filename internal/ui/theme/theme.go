package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette: teal glyphs on black glass, red for alarms.
var (
	Primary   = lipgloss.Color("#2DD4BF") // Glyph teal
	Secondary = lipgloss.Color("#38BDF8") // Lattice blue
	Accent    = lipgloss.Color("#FBBF24") // Amber console
	Success   = lipgloss.Color("#34D399") // Stable green
	Error     = lipgloss.Color("#F43F5E") // Alarm red
	Warning   = lipgloss.Color("#FB923C") // Misfire orange
	Text      = lipgloss.Color("#E2E8F0") // Pale glass
	TextDim   = lipgloss.Color("#64748B") // Slate
	BgDark    = lipgloss.Color("#05080D") // Black glass
	BgCard    = lipgloss.Color("#0F1720") // Chamber
	Border    = lipgloss.Color("#1F3A3D") // Dim teal
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Kicker = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

// Log severities
var (
	LogInfo    = lipgloss.NewStyle().Foreground(TextDim)
	LogSuccess = lipgloss.NewStyle().Foreground(Success)
	LogWarning = lipgloss.NewStyle().Foreground(Warning)
)

// Chip renders a small header badge.
func Chip(label, value string, fg color.Color) string {
	return lipgloss.NewStyle().Foreground(TextDim).Render(label+" ") +
		lipgloss.NewStyle().Foreground(fg).Bold(true).Render(value)
}
