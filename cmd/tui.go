/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/allbin/serialterm"
	"github.com/allbin/serialterm/internal/tui/models"
	tea "github.com/charmbracelet/bubbletea"
)

// runTUI drives an open session from the full screen interface
func runTUI(ctx context.Context, session *serial.Session) error {
	defer session.Close()

	model := models.NewSessionModel(session, serial.DefaultQuitCommand)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("interface: %w", err)
	}
	return nil
}
