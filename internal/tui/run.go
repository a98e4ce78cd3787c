package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Runner is the background loop that feeds the menu, usually a
// menusync.Synchronizer
type Runner interface {
	Run(ctx context.Context) error
}

// Run starts the runner and the program and returns when the user quits
// or ctx is done. The runner is stopped before Run returns.
func Run(ctx context.Context, m *Model, runner Runner) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The model's management actions must not outlive the program
	m.ctx = ctx

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	cancel()
	runErr := <-done

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		return err
	}
	return runErr
}
