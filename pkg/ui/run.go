package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xaionaro-go/avcompare/pkg/session"
)

// Run blocks until the user quits or ctx is done.
func Run(
	ctx context.Context,
	s *session.Session,
	prompt string,
) error {
	p := tea.NewProgram(NewModel(ctx, s, prompt), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run the terminal UI: %w", err)
	}
	return nil
}
