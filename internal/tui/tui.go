// Package tui is a mouse-driven terminal desktop over a session loop.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/session"
)

// Run shows the desktop of loop in the terminal until the user quits, ctx is
// cancelled or the loop stops. cell is the screen size of one terminal cell.
func Run(ctx context.Context, loop *session.Loop, cell geometry.Extent) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if cell.Width <= 0 || cell.Height <= 0 {
		return fmt.Errorf("invalid cell size %s", cell)
	}

	p := tea.NewProgram(newModel(loop, cell),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
