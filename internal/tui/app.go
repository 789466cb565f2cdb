package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/ipc"
)

// model is the root bubbletea model for the TUI.
type model struct {
	configPath string
	result     *config.LoadResult
	loadErr    error
	ctl        ipc.Controller

	// Tab navigation
	activeTab Tab

	// Sub-models
	generalTab  GeneralTab
	effectsTab  EffectsTab
	stackingTab StackingTab

	// Save overlay
	originalConfig *config.Config
	saveOverlay    SaveOverlay

	// Daemon state
	daemonConnected bool
	status          *ipc.StatusData

	// Terminal dimensions
	width  int
	height int
}

func newModel(configPath string, ctl ipc.Controller) model {
	m := model{
		configPath: configPath,
		ctl:        ctl,
		activeTab:  TabGeneral,
	}

	m.loadConfig()

	// Snapshot original config for diff preview on save
	if m.result != nil {
		m.originalConfig = cloneConfig(m.result.Config)
	}

	m.refreshDaemonStatus()

	var cfg *config.Config
	if m.result != nil {
		cfg = m.result.Config
	}
	m.generalTab = NewGeneralTab(cfg)
	m.effectsTab = NewEffectsTab(ctl, cfg)
	m.stackingTab = NewStackingTab(ctl)

	return m
}

func (m *model) loadConfig() {
	var res *config.LoadResult
	var err error

	if m.configPath == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(m.configPath)
	}

	if err != nil {
		m.loadErr = err
		return
	}
	m.result = res
	m.loadErr = nil
}

func (m *model) refreshDaemonStatus() {
	if m.ctl == nil {
		return
	}
	st, err := m.ctl.Status()
	if err != nil {
		m.daemonConnected = false
		m.status = nil
		return
	}
	m.daemonConnected = true
	m.status = st
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height
	subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
	m.generalTab, _ = m.generalTab.Update(subMsg)
	m.effectsTab, _ = m.effectsTab.Update(subMsg)
	m.stackingTab, _ = m.stackingTab.Update(subMsg)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Save overlay captures all input when active
	if m.saveOverlay.Active() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			prevPhase := m.saveOverlay.phase
			m.saveOverlay = m.saveOverlay.Update(msg, m.result.Config, m.configPath, m.ctl, m.daemonConnected)
			if prevPhase == savePreview && m.saveOverlay.SaveSucceeded() {
				m.originalConfig = cloneConfig(m.result.Config)
				m.refreshAll()
			}
		case tea.WindowSizeMsg:
			m.resize(msg.Width, msg.Height)
		}
		return m, nil
	}

	// ctrl+s triggers save overlay from any context (including form editing)
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+s" {
		if m.result != nil && m.result.Config != nil {
			m.saveOverlay.Show(m.originalConfig, m.result.Config)
		}
		return m, nil
	}

	// The general tab's form consumes keys while editing; only ctrl+c
	// escapes to quit.
	if m.activeTab == TabGeneral && m.generalTab.editing {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		case tea.WindowSizeMsg:
			m.resize(msg.Width, msg.Height)
			return m, nil
		}
		var cmd tea.Cmd
		m.generalTab, cmd = m.generalTab.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabGeneral
			return m, nil
		case "2":
			m.activeTab = TabEffects
			return m, nil
		case "3":
			m.activeTab = TabStacking
			return m, nil
		case "ctrl+r":
			m.refreshAll()
			return m, nil
		case "ctrl+e":
			return m, editConfig(m.configPath)
		}

	case editorDoneMsg:
		m.reloadConfig()
		if msg.err != nil {
			m.effectsTab, _ = m.effectsTab.Update(statusMsg{text: "error: editor failed: " + msg.err.Error()})
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabGeneral:
		m.generalTab, cmd = m.generalTab.Update(msg)
	case TabEffects:
		m.effectsTab, cmd = m.effectsTab.Update(msg)
		m.refreshDaemonStatus()
	case TabStacking:
		m.stackingTab, cmd = m.stackingTab.Update(msg)
	}
	return m, cmd
}

// reloadConfig re-reads the files after an external edit. Unsaved form
// changes are discarded.
func (m *model) reloadConfig() {
	m.loadConfig()
	if m.result == nil {
		return
	}
	m.originalConfig = cloneConfig(m.result.Config)
	m.generalTab.SetConfig(m.result.Config)
	m.effectsTab.cfg = m.result.Config
}

// refreshAll re-reads daemon state for the status bar and both daemon tabs.
func (m *model) refreshAll() {
	m.refreshDaemonStatus()
	m.effectsTab, _ = m.effectsTab.Update(refreshMsg{})
	m.stackingTab, _ = m.stackingTab.Update(refreshMsg{})
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.daemonConnected, m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabGeneral:
			if m.result == nil && m.loadErr != nil {
				content = renderPlaceholder("Config error: "+m.loadErr.Error(), m.width, contentHeight)
			} else {
				content = m.generalTab.View()
			}
		case TabEffects:
			content = m.effectsTab.View()
		case TabStacking:
			content = m.stackingTab.View()
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
