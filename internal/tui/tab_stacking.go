package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/stratum/internal/ipc"
	"github.com/1broseidon/stratum/internal/window"
	"github.com/1broseidon/stratum/internal/workspace"
)

// windowItem implements list.Item for the stacking list.
type windowItem struct {
	entry workspace.StackEntry
}

func (i windowItem) Title() string {
	prefix := "  "
	if i.entry.Active {
		prefix = "* "
	}
	name := i.entry.Class
	if name == "" {
		name = i.entry.Type
	}
	title := fmt.Sprintf("%s0x%07x %-8s %s", prefix, i.entry.ID, i.entry.Layer, name)
	if i.entry.Deleted {
		title += " (closing)"
	}
	return title
}

func (i windowItem) Description() string { return "" }
func (i windowItem) FilterValue() string { return i.entry.Class + " " + i.entry.Title }

// StackingTab shows the stacking order, topmost first, and raises or
// lowers the selected window.
type StackingTab struct {
	list list.Model
	ctl  ipc.Controller

	connected  bool
	statusText string

	width  int
	height int
	ready  bool
}

// NewStackingTab creates a new StackingTab sub-model.
func NewStackingTab(ctl ipc.Controller) StackingTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Stacking order (top first)"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	st := StackingTab{list: l, ctl: ctl}
	st.refresh()
	return st
}

// buildWindowItems reverses the bottom-to-top order so the list reads like
// the screen.
func buildWindowItems(stack []workspace.StackEntry) []list.Item {
	items := make([]list.Item, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		items = append(items, windowItem{entry: stack[i]})
	}
	return items
}

func (st *StackingTab) refresh() {
	if st.ctl == nil {
		st.connected = false
		return
	}
	stack, err := st.ctl.Stack()
	if err != nil {
		st.connected = false
		return
	}
	st.connected = true

	// keep the cursor on the same window when it moves
	var sel uint32
	if item, ok := st.list.SelectedItem().(windowItem); ok {
		sel = item.entry.ID
	}
	items := buildWindowItems(stack)
	st.list.SetItems(items)
	for i, it := range items {
		if it.(windowItem).entry.ID == sel {
			st.list.Select(i)
			break
		}
	}
}

// Update implements tea.Model.
func (st StackingTab) Update(msg tea.Msg) (StackingTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		st.width = msg.Width
		st.height = msg.Height
		listHeight := st.height - 2
		if listHeight < 1 {
			listHeight = 1
		}
		st.list.SetSize(st.listWidth(), listHeight)
		st.ready = true
		return st, nil

	case statusMsg:
		st.statusText = msg.text
		return st, clearStatusAfter()

	case clearStatusMsg:
		st.statusText = ""
		return st, nil

	case refreshMsg:
		st.refresh()
		return st, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return st.run("raised", ipc.Controller.Raise)
		case "l":
			return st.run("lowered", ipc.Controller.Lower)
		}
	}

	var cmd tea.Cmd
	st.list, cmd = st.list.Update(msg)
	return st, cmd
}

func (st StackingTab) run(verb string, op func(ipc.Controller, uint32) error) (StackingTab, tea.Cmd) {
	item, ok := st.list.SelectedItem().(windowItem)
	if !ok {
		return st, nil
	}
	if !st.connected {
		st.statusText = "daemon not connected"
		return st, clearStatusAfter()
	}
	if err := op(st.ctl, item.entry.ID); err != nil {
		st.statusText = fmt.Sprintf("error: %v", err)
	} else {
		st.statusText = fmt.Sprintf("%s 0x%x", verb, item.entry.ID)
		st.refresh()
	}
	return st, clearStatusAfter()
}

func (st StackingTab) listWidth() int {
	lw := st.width * 55 / 100
	if lw < 30 {
		lw = 30
	}
	return lw
}

// View implements tea.Model.
func (st StackingTab) View() string {
	if !st.ready || st.width == 0 || st.height == 0 {
		return ""
	}
	if !st.connected {
		return lipgloss.NewStyle().
			Width(st.width).
			Height(st.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("Daemon not running: start it with 'stratum daemon'")
	}

	lw := st.listWidth()
	left := lipgloss.NewStyle().Width(lw).Height(st.height - 2).Render(st.list.View())
	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", st.height-2))
	columns := lipgloss.JoinHorizontal(lipgloss.Top, left, " "+sep, st.renderDetail())

	return lipgloss.JoinVertical(lipgloss.Left, columns,
		renderTabStatus(st.statusText, "r:raise  l:lower", st.width))
}

func (st StackingTab) renderDetail() string {
	item, ok := st.list.SelectedItem().(windowItem)
	if !ok {
		return ""
	}
	e := item.entry
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(14)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	row := func(l, v string) string { return " " + label.Render(l) + value.Render(v) }

	desktop := fmt.Sprint(e.Desktop)
	if e.Desktop == window.AllDesktops {
		desktop = "all"
	}
	var states []string
	for _, s := range []struct {
		on   bool
		name string
	}{
		{e.Active, "active"},
		{e.KeepAbove, "keep-above"},
		{e.KeepBelow, "keep-below"},
		{e.FullScreen, "fullscreen"},
		{e.Deleted, "closing"},
	} {
		if s.on {
			states = append(states, s.name)
		}
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render(" " + displayOrDefault(e.Title, e.Class)),
		"",
		row("Window", fmt.Sprintf("0x%x", e.ID)),
		row("Class", displayOrDefault(e.Class, "-")),
		row("Type", e.Type),
		row("Layer", e.Layer),
		row("Desktop", desktop),
		row("State", displayOrDefault(strings.Join(states, " "), "-")),
	}
	if e.TransientFor != 0 {
		lines = append(lines, row("Transient for", fmt.Sprintf("0x%x", e.TransientFor)))
	}
	return strings.Join(lines, "\n")
}
