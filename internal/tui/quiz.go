// Package tui runs the questionnaire in the terminal.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justestif/valora/internal/questionnaire"
	"github.com/justestif/valora/internal/snow"
)

const (
	frameInterval = time.Second / 15
	snowRows      = 5
	defaultWidth  = 80
	defaultHeight = 24
)

var valenceLabels = []string{"Very unpleasant", "Unpleasant", "Neutral", "Pleasant", "Very pleasant"}

type tickMsg time.Time

// Rand feeds both the item shuffle and the snow.
type Rand interface {
	questionnaire.Rand
	snow.Rand
}

// Model is the questionnaire screen.
type Model struct {
	keys  KeyMap
	rand  Rand
	nav   *questionnaire.Navigator
	state questionnaire.State
	snow  *snow.Field

	width, height int
	arousal       int
	message       string
	mood          questionnaire.Mood
	quitting      bool
}

// NewModel starts a fresh questionnaire. r may be nil.
func NewModel(r Rand) *Model {
	m := &Model{
		keys:   DefaultKeyMap(),
		rand:   r,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.start()
	m.snow = m.newSnow(m.width)
	return m
}

func (m *Model) start() {
	var qr questionnaire.Rand
	if m.rand != nil {
		qr = m.rand
	}
	m.nav = questionnaire.Start(qr,
		func(mood questionnaire.Mood) { m.mood = mood },
		questionnaire.ObserverFunc(func(s questionnaire.State) { m.state = s }),
	)
	m.arousal = questionnaire.NoSelection
	m.message = ""
}

func (m *Model) newSnow(width int) *snow.Field {
	var sr snow.Rand
	if m.rand != nil {
		sr = m.rand
	}
	return snow.NewField(float64(width), snowRows, snow.Inner, sr)
}

// Mood returns the result once the questionnaire is complete.
func (m *Model) Mood() (questionnaire.Mood, bool) {
	return m.mood, m.mood != ""
}

// Init starts the snow.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles keys, resizes and animation frames.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.snow.Step()
		return m, tick()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.snow.Resize(float64(msg.Width), snowRows)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		m.start()
		return m, nil
	}

	var err error
	switch m.state.Stage {
	case questionnaire.StageItems:
		switch {
		case key.Matches(msg, m.keys.Rate):
			err = m.nav.Rate(digit(msg))
		case key.Matches(msg, m.keys.Next):
			err = m.nav.Proceed()
		default:
			return m, nil
		}

	case questionnaire.StageValence:
		if !key.Matches(msg, m.keys.Rate) {
			return m, nil
		}
		err = m.nav.SelectValence(questionnaire.ValenceOptions[digit(msg)-1])

	case questionnaire.StageArousal:
		switch {
		case key.Matches(msg, m.keys.Scale):
			m.arousal = digit(msg)
			m.message = ""
			return m, nil
		case key.Matches(msg, m.keys.Next):
			_, err = m.nav.Submit(m.arousal)
		default:
			return m, nil
		}

	default:
		return m, nil
	}

	if err != nil {
		m.message = hint(m.state, err)
		return m, nil
	}
	m.message = ""
	if m.mood != "" {
		return m, tea.Quit
	}
	return m, nil
}

// digit returns the value of a single digit key.
func digit(msg tea.KeyMsg) int {
	s := msg.String()
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return questionnaire.NoSelection
	}
	return int(s[0] - '0')
}

// hint turns a rejected key press into a message.
func hint(s questionnaire.State, err error) string {
	switch {
	case errors.Is(err, questionnaire.ErrInvariant):
		return "A valence score is missing. Press r to restart."
	case errors.Is(err, questionnaire.ErrIncomplete) && s.Stage == questionnaire.StageArousal:
		return "Please select a rating for your energy level."
	case errors.Is(err, questionnaire.ErrIncomplete) && s.CanProceed():
		return "Please select a rating for the last question."
	case errors.Is(err, questionnaire.ErrIncomplete):
		return "Rate every word first."
	default:
		return "Please choose one of the options."
	}
}

// View renders the snow band above the current step.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderSnow())
	b.WriteString("\n")

	var body string
	switch m.state.Stage {
	case questionnaire.StageItems:
		body = m.viewItem()
	case questionnaire.StageValence:
		body = m.viewValence()
	case questionnaire.StageArousal:
		body = m.viewArousal()
	case questionnaire.StageComplete:
		body = m.viewResult()
	}
	if m.message != "" {
		body += "\n\n" + styleError.Render(m.message)
	}
	b.WriteString(styleBody.Render(body))
	b.WriteString("\n")
	b.WriteString(styleMuted.Render("  " + m.help()))
	return b.String()
}

func (m *Model) renderSnow() string {
	width := max(m.width, 1)
	grid := make([][]rune, snowRows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}
	for _, c := range m.snow.Cells(width, snowRows) {
		grid[c.Row][c.Col] = c.Glyph
	}

	lines := make([]string, snowRows)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return styleSnow.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewItem() string {
	pos, total := m.state.Progress()
	it, _ := m.state.CurrentItem()
	rating, _ := m.state.CurrentRating()

	var b strings.Builder
	b.WriteString(styleTitle.Render("How do you feel right now?"))
	b.WriteString("\n")
	b.WriteString(styleMuted.Render(fmt.Sprintf("%s %d / %d", progressBar(pos, total, 20), pos, total)))
	b.WriteString("\n\n")
	b.WriteString("I feel: " + styleItem.Render(it.Label))
	b.WriteString("\n\n")

	options := make([]string, 0, questionnaire.MaxRating)
	for v := questionnaire.MinRating; v <= questionnaire.MaxRating; v++ {
		options = append(options, option(fmt.Sprint(v), v == rating))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, options...))
	b.WriteString("\n")
	b.WriteString(styleMuted.Render("1 = very slightly or not at all, 5 = extremely"))

	if e := m.state.Encouragement(); e != "" {
		b.WriteString("\n\n" + styleEncourage.Render(e))
	}
	if m.state.CanProceed() {
		b.WriteString("\n\n" + styleMuted.Render("Press enter to continue."))
	}
	return b.String()
}

func (m *Model) viewValence() string {
	options := make([]string, len(valenceLabels))
	for i, label := range valenceLabels {
		options[i] = option(fmt.Sprintf("%d %s", i+1, label), false)
	}
	return styleTitle.Render("How pleasant do you feel?") + "\n\n" +
		lipgloss.JoinVertical(lipgloss.Left, options...)
}

func (m *Model) viewArousal() string {
	options := make([]string, 0, questionnaire.MaxArousal)
	for v := questionnaire.MinArousal; v <= questionnaire.MaxArousal; v++ {
		options = append(options, option(fmt.Sprint(v), v == m.arousal))
	}
	return styleTitle.Render("How energetic do you feel?") + "\n\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, options...) + "\n" +
		styleMuted.Render("1 = calm, 9 = excited. Press enter to submit.")
}

func (m *Model) viewResult() string {
	style := styleTitle
	if c, ok := moodColors[m.mood]; ok {
		style = style.Foreground(c)
	}
	return "Your mood: " + style.Render(string(m.mood))
}

func (m *Model) help() string {
	var bindings []key.Binding
	switch m.state.Stage {
	case questionnaire.StageItems:
		bindings = []key.Binding{m.keys.Rate, m.keys.Next}
	case questionnaire.StageValence:
		bindings = []key.Binding{m.keys.Rate}
	case questionnaire.StageArousal:
		bindings = []key.Binding{m.keys.Scale, m.keys.Next}
	}
	bindings = append(bindings, m.keys.Restart, m.keys.Quit)

	parts := make([]string, len(bindings))
	for i, kb := range bindings {
		h := kb.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, " · ")
}

func option(label string, selected bool) string {
	if selected {
		return styleSelected.Render(label)
	}
	return styleOption.Render(label)
}

func progressBar(pos, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := pos * width / total
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
