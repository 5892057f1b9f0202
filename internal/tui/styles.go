package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/justestif/valora/internal/questionnaire"
)

var (
	colorAccent = lipgloss.Color("#1DB954")
	colorDanger = lipgloss.Color("#FF5252")
	colorMuted  = lipgloss.Color("#8C8C8C")
	colorWhite  = lipgloss.Color("#EEEEEE")
	colorSnow   = lipgloss.Color("#DDE6F0")
)

var (
	styleTitle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	styleItem = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	styleOption = lipgloss.NewStyle().
			Foreground(colorWhite).
			Padding(0, 1)

	styleSelected = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04110A")).
			Background(colorAccent).
			Bold(true).
			Padding(0, 1)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleError = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	styleEncourage = lipgloss.NewStyle().
			Foreground(colorAccent).
			Italic(true)

	styleSnow = lipgloss.NewStyle().
			Foreground(colorSnow)

	styleBody = lipgloss.NewStyle().
			Padding(1, 2)
)

// moodColors tints the result screen like the web background.
var moodColors = map[questionnaire.Mood]lipgloss.Color{
	questionnaire.MoodHappy: lipgloss.Color("#F59E0B"),
	questionnaire.MoodCalm:  lipgloss.Color("#14B8A6"),
	questionnaire.MoodAngry: lipgloss.Color("#EF4444"),
	questionnaire.MoodSad:   lipgloss.Color("#6366F1"),
}
