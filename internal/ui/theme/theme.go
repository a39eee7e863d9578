package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette: field-guide greens and earth tones.
var (
	Primary   = lipgloss.Color("#2F855A") // Forest
	Secondary = lipgloss.Color("#38B2AC") // Teal
	Accent    = lipgloss.Color("#DD6B20") // Robin orange
	Success   = lipgloss.Color("#48BB78") // Leaf
	Error     = lipgloss.Color("#E53E3E") // Cardinal
	Text      = lipgloss.Color("#F7FAFC")
	TextDim   = lipgloss.Color("#A0AEC0")
	BgCard    = lipgloss.Color("#1A202C")
	Border    = lipgloss.Color("#4A5568")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(16)

	Value = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)
