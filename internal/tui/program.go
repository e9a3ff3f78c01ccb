package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"tts2sv-shell/internal/bridge"
	"tts2sv-shell/internal/dialogs"
	"tts2sv-shell/internal/domain"
)

// Run starts the terminal UI on the alternate screen and blocks until quit.
// A run still in flight when the user quits is left to finish on its own.
func Run(conv bridge.Conversion, picker dialogs.Bridge, form domain.FormInput) error {
	m := New(conv, picker, form)
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
