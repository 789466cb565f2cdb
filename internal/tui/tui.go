// Package tui is the interactive terminal front-end: config settings,
// effect control and the live stacking order of a running daemon.
package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/ipc"
)

// Run starts the TUI. ctl is normally an ipc.Client; the TUI still works as
// an offline config editor when the daemon is not running.
func Run(configPath string, ctl ipc.Controller) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(configPath, ctl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// editorDoneMsg is sent when the external editor exits.
type editorDoneMsg struct{ err error }

// editConfig suspends the TUI and opens the config file in $EDITOR.
func editConfig(configPath string) tea.Cmd {
	path := configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return func() tea.Msg { return editorDoneMsg{err: err} }
		}
		path = p
	}

	cmd := exec.Command(editorCommand()[0], append(editorCommand()[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorDoneMsg{err: err}
	})
}

func editorCommand() []string {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return []string{"vi"}
	}
	return parts
}
