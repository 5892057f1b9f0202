package tui

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justestif/valora/internal/questionnaire"
)

func newTestModel() *Model {
	return NewModel(rand.New(rand.NewPCG(7, 11)))
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

// press sends keys and returns the last command.
func press(m *Model, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func repeat(k tea.KeyMsg, n int) []tea.KeyMsg {
	keys := make([]tea.KeyMsg, n)
	for i := range keys {
		keys[i] = k
	}
	return keys
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_FullFlow(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	press(m, repeat(runeKey('3'), questionnaire.ItemCount)...)
	if !m.state.CanProceed() {
		t.Fatal("cannot proceed after rating every item")
	}

	press(m, enterKey)
	if m.state.Stage != questionnaire.StageValence {
		t.Fatalf("stage = %s, want valence", m.state.Stage)
	}

	press(m, runeKey('4'))
	if m.state.Stage != questionnaire.StageArousal {
		t.Fatalf("stage = %s, want arousal", m.state.Stage)
	}

	press(m, runeKey('9'))
	if m.arousal != 9 {
		t.Errorf("arousal = %d, want 9", m.arousal)
	}

	cmd := press(m, enterKey)
	if !isQuit(cmd) {
		t.Error("completing the questionnaire should quit")
	}

	mood, ok := m.Mood()
	if !ok || mood != questionnaire.MoodHappy {
		t.Errorf("Mood() = %q, %v, want %q", mood, ok, questionnaire.MoodHappy)
	}
	if !strings.Contains(m.View(), string(questionnaire.MoodHappy)) {
		t.Error("result view does not show the mood")
	}
}

func TestModel_RejectedKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keys    []tea.KeyMsg
		message string
		stage   questionnaire.Stage
	}{
		{
			name:    "enter before last item",
			keys:    []tea.KeyMsg{runeKey('2'), enterKey},
			message: "Rate every word first.",
			stage:   questionnaire.StageItems,
		},
		{
			name:    "enter on unrated last item",
			keys:    append(repeat(runeKey('2'), questionnaire.ItemCount-1), enterKey),
			message: "Please select a rating for the last question.",
			stage:   questionnaire.StageItems,
		},
		{
			name: "submit without energy level",
			keys: append(repeat(runeKey('2'), questionnaire.ItemCount),
				enterKey, runeKey('1'), enterKey),
			message: "Please select a rating for your energy level.",
			stage:   questionnaire.StageArousal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newTestModel()
			press(m, tt.keys...)

			if m.message != tt.message {
				t.Errorf("message = %q, want %q", m.message, tt.message)
			}
			if m.state.Stage != tt.stage {
				t.Errorf("stage = %s, want %s", m.state.Stage, tt.stage)
			}
			if !strings.Contains(m.View(), tt.message) {
				t.Error("message not rendered")
			}
		})
	}
}

func TestModel_IgnoresOutOfRangeKeys(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	press(m, runeKey('7'), runeKey('x'))

	if pos, _ := m.state.Progress(); pos != 1 {
		t.Errorf("position = %d after ignored keys, want 1", pos)
	}
	if m.message != "" {
		t.Errorf("message = %q, want none", m.message)
	}
}

func TestModel_LastItemRatingCanChange(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	press(m, repeat(runeKey('1'), questionnaire.ItemCount)...)
	press(m, runeKey('5'))

	if r, _ := m.state.CurrentRating(); r != 5 {
		t.Errorf("last rating = %d, want 5", r)
	}
}

func TestModel_Restart(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	press(m, runeKey('3'), runeKey('3'), runeKey('r'))

	if pos, _ := m.state.Progress(); pos != 1 {
		t.Errorf("position = %d after restart, want 1", pos)
	}
	if len(m.state.Responses.Ratings) != 0 {
		t.Errorf("ratings survived restart: %v", m.state.Responses.Ratings)
	}
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})

	if !isQuit(cmd) {
		t.Error("ctrl+c should quit")
	}
	if _, ok := m.Mood(); ok {
		t.Error("aborted questionnaire reported a mood")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestModel_SnowAnimates(t *testing.T) {
	t.Parallel()

	m := newTestModel()
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if m.snow.Width != 40 {
		t.Fatalf("snow width = %v, want 40", m.snow.Width)
	}

	before := m.snow.Flakes[0].Y
	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next frame")
	}
	if m.snow.Flakes[0].Y == before {
		t.Error("flakes did not move")
	}

	lines := strings.Split(m.renderSnow(), "\n")
	if len(lines) != snowRows {
		t.Errorf("snow band has %d lines, want %d", len(lines), snowRows)
	}
}

func TestDigit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  tea.KeyMsg
		want int
	}{
		{runeKey('1'), 1},
		{runeKey('9'), 9},
		{runeKey('a'), questionnaire.NoSelection},
		{enterKey, questionnaire.NoSelection},
	}
	for _, tt := range tests {
		if got := digit(tt.msg); got != tt.want {
			t.Errorf("digit(%q) = %d, want %d", tt.msg.String(), got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()

	if got := progressBar(10, 20, 10); got != "█████░░░░░" {
		t.Errorf("progressBar(10, 20, 10) = %q", got)
	}
	if got := progressBar(1, 0, 10); got != "" {
		t.Errorf("progressBar with zero total = %q", got)
	}
}
