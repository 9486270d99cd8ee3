package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorHeader   = lipgloss.Color("39")  // blue
	ColorBorder   = lipgloss.Color("240") // grey
	ColorLabel    = lipgloss.Color("245")
	ColorValue    = lipgloss.Color("255")
	ColorMuted    = lipgloss.Color("241")
	ColorOK       = lipgloss.Color("42")  // green
	ColorCritical = lipgloss.Color("196") // red
	ColorWarning  = lipgloss.Color("214") // orange
	ColorButton   = lipgloss.Color("63")  // indigo
)

// Layout constants.
const (
	defaultWidth  = 80
	defaultHeight = 24
	borderPadding = 2
	cardGap       = 1
	minCardWidth  = 26
	footerHeight  = 1
)

// Styles shared by the dashboard views.
//
//nolint:gochecknoglobals // Lip Gloss styles are immutable values reused across renders.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeader)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHeader).
			MarginBottom(1)

	LabelStyle = lipgloss.NewStyle().Foreground(ColorLabel)

	ValueStyle = lipgloss.NewStyle().Foreground(ColorValue)

	SubtleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	InfoStyle = lipgloss.NewStyle().Foreground(ColorHeader)

	PositiveStyle = lipgloss.NewStyle().Foreground(ColorOK).Bold(true)

	NegativeStyle = lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)

	CriticalStyle = lipgloss.NewStyle().Foreground(ColorCritical)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ButtonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(ColorButton).
			Padding(0, 2)

	ButtonDisabledStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Background(lipgloss.Color("236")).
				Padding(0, 2)
)
