package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justestif/valora/internal/questionnaire"
)

// ErrAborted is returned when the user quits before finishing.
var ErrAborted = errors.New("questionnaire aborted")

// NewProgram creates a BubbleTea program for the model.
// The program uses the alternate screen buffer.
func NewProgram(ctx context.Context, m *Model, opts ...tea.ProgramOption) *tea.Program {
	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	allOpts = append(allOpts, opts...)
	return tea.NewProgram(m, allOpts...)
}

// Run shows the questionnaire until it is complete and returns the mood.
func Run(ctx context.Context, r Rand, opts ...tea.ProgramOption) (questionnaire.Mood, error) {
	m := NewModel(r)
	if _, err := NewProgram(ctx, m, opts...).Run(); err != nil {
		return "", fmt.Errorf("TUI error: %w", err)
	}

	mood, ok := m.Mood()
	if !ok {
		return "", ErrAborted
	}
	return mood, nil
}
