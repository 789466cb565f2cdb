package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/ipc"
)

// effectItem implements list.Item for the effect list.
type effectItem struct {
	status effects.Status
}

func (i effectItem) Title() string {
	prefix := "  "
	switch {
	case i.status.Active:
		prefix = "* "
	case i.status.Loaded:
		prefix = "+ "
	}
	return prefix + i.status.Name
}

func (i effectItem) Description() string { return "" }
func (i effectItem) FilterValue() string { return i.status.Name }

// statusMsg is sent after an IPC action completes.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// refreshMsg asks the daemon-backed tabs to fetch fresh state.
type refreshMsg struct{}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// EffectsTab lists known effects and loads, unloads or triggers them.
type EffectsTab struct {
	list list.Model
	ctl  ipc.Controller
	cfg  *config.Config

	connected  bool
	statusText string

	width  int
	height int
	ready  bool
}

// NewEffectsTab creates a new EffectsTab sub-model.
func NewEffectsTab(ctl ipc.Controller, cfg *config.Config) EffectsTab {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Effects"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	et := EffectsTab{list: l, ctl: ctl, cfg: cfg}
	et.refresh()
	return et
}

func buildEffectItems(statuses []effects.Status) []list.Item {
	items := make([]list.Item, 0, len(statuses))
	for _, st := range statuses {
		items = append(items, effectItem{status: st})
	}
	return items
}

func (et *EffectsTab) refresh() {
	if et.ctl == nil {
		et.connected = false
		return
	}
	statuses, err := et.ctl.Effects()
	if err != nil {
		et.connected = false
		return
	}
	et.connected = true
	et.list.SetItems(buildEffectItems(statuses))
}

// Update implements tea.Model.
func (et EffectsTab) Update(msg tea.Msg) (EffectsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		et.width = msg.Width
		et.height = msg.Height
		et.updateListSize()
		et.ready = true
		return et, nil

	case statusMsg:
		et.statusText = msg.text
		return et, clearStatusAfter()

	case clearStatusMsg:
		et.statusText = ""
		return et, nil

	case refreshMsg:
		et.refresh()
		return et, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", " ":
			return et.run("toggled", func(c ipc.Controller, name string) error { return c.ToggleEffect(name) })
		case "t":
			return et.run("triggered", func(c ipc.Controller, name string) error { return c.TriggerEffect(name) })
		case "r":
			return et.run("reconfigured", func(c ipc.Controller, name string) error { return c.ReconfigureEffect(name) })
		case "u":
			return et.run("unloaded", func(c ipc.Controller, name string) error { return c.UnloadEffect(name) })
		}
	}

	var cmd tea.Cmd
	et.list, cmd = et.list.Update(msg)
	return et, cmd
}

func (et EffectsTab) selected() (effects.Status, bool) {
	item, ok := et.list.SelectedItem().(effectItem)
	if !ok {
		return effects.Status{}, false
	}
	return item.status, true
}

// run applies op to the selected effect and refreshes the list.
func (et EffectsTab) run(verb string, op func(ipc.Controller, string) error) (EffectsTab, tea.Cmd) {
	st, ok := et.selected()
	if !ok {
		return et, nil
	}
	if !et.connected {
		et.statusText = "daemon not connected"
		return et, clearStatusAfter()
	}
	if err := op(et.ctl, st.Name); err != nil {
		et.statusText = fmt.Sprintf("error: %v", err)
	} else {
		et.statusText = fmt.Sprintf("%s: %s", verb, st.Name)
		et.refresh()
	}
	return et, clearStatusAfter()
}

func (et *EffectsTab) updateListSize() {
	listHeight := et.height - 2
	if listHeight < 1 {
		listHeight = 1
	}
	et.list.SetSize(et.sidebarWidth(), listHeight)
}

func (et EffectsTab) sidebarWidth() int {
	sw := et.width * 35 / 100
	if sw < 20 {
		sw = 20
	}
	if sw > 40 {
		sw = 40
	}
	return sw
}

// View implements tea.Model.
func (et EffectsTab) View() string {
	if !et.ready || et.width == 0 || et.height == 0 {
		return ""
	}
	if !et.connected {
		return lipgloss.NewStyle().
			Width(et.width).
			Height(et.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center).
			Render("Daemon not running: start it with 'stratum daemon'")
	}

	sidebarWidth := et.sidebarWidth()
	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(et.height - 2).
		Render(et.list.View())

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", et.height-2))

	detail := et.renderDetail(et.width - sidebarWidth - 3)
	columns := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, detail)

	return lipgloss.JoinVertical(lipgloss.Left, columns,
		renderTabStatus(et.statusText, "enter:toggle  t:trigger  r:reconfigure  u:unload", et.width))
}

func (et EffectsTab) renderDetail(width int) string {
	st, ok := et.selected()
	if !ok {
		return ""
	}
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(20)
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	row := func(l, v string) string { return " " + label.Render(l) + value.Render(v) }

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Render(" " + st.Name)
	lines := []string{title}
	if st.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("247")).Width(width).Render(" "+st.Description))
	}
	lines = append(lines, "",
		row("Loaded", yesNo(st.Loaded)),
		row("Active", yesNo(st.Active)),
		row("Enabled by default", yesNo(st.EnabledByDefault)),
		row("Supported", yesNo(st.Supported)),
		row("Triggerable", yesNo(st.Triggerable)),
	)

	if et.cfg != nil {
		g := et.cfg.Effect(st.Name)
		if keys := g.Keys(); len(keys) > 0 {
			lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(" Settings"))
			for _, k := range keys {
				lines = append(lines, row(k, fmt.Sprint(config.ReadEntry[any](g, k, nil))))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// renderTabStatus renders the per-tab status line: the last action on the
// left and key help on the right.
func renderTabStatus(statusText, help string, width int) string {
	left := ""
	if statusText != "" {
		color := lipgloss.Color("42")
		if strings.HasPrefix(statusText, "error") {
			color = lipgloss.Color("196")
		}
		left = lipgloss.NewStyle().Foreground(color).Render(statusText)
	}
	right := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(help)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}
