package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/stratum/internal/config"
)

// GeneralTab is the sub-model for the General settings tab.
type GeneralTab struct {
	cfg *config.Config

	// Display dimensions
	width  int
	height int

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fRefreshRate         string
	fBackground          string
	fUnredirect          bool
	fRefreshContents     bool
	fSameApplication     string
	fSeparateScreenFocus bool
	fRaiseOrLower        string
	fLower               string
	fLogLevel            string
}

// NewGeneralTab creates a GeneralTab from the loaded config.
func NewGeneralTab(cfg *config.Config) GeneralTab {
	return GeneralTab{cfg: cfg}
}

// SetConfig updates the config reference.
func (g *GeneralTab) SetConfig(cfg *config.Config) {
	g.cfg = cfg
}

// Init implements tea.Model.
func (g GeneralTab) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (g GeneralTab) Update(msg tea.Msg) (GeneralTab, tea.Cmd) {
	if g.editing {
		return g.updateEditing(msg)
	}
	return g.updateDisplay(msg)
}

func (g GeneralTab) updateDisplay(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "e" {
			g.startEditing()
			return g, g.form.Init()
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}
	return g, nil
}

func (g GeneralTab) updateEditing(msg tea.Msg) (GeneralTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			g.editing = false
			g.form = nil
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.applyForm()
		g.editing = false
		g.form = nil
		return g, nil
	}

	return g, cmd
}

func (g *GeneralTab) startEditing() {
	cfg := g.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	g.fRefreshRate = strconv.Itoa(cfg.Compositing.RefreshRate)
	g.fBackground = cfg.Compositing.Background
	g.fUnredirect = cfg.Compositing.UnredirectFullscreen
	g.fRefreshContents = cfg.Compositing.RefreshContents
	g.fSameApplication = displayOrDefault(cfg.Stacking.SameApplication, config.SameApplicationDefault)
	g.fSeparateScreenFocus = cfg.Stacking.SeparateScreenFocus
	g.fRaiseOrLower = cfg.Hotkeys.RaiseOrLower
	g.fLower = cfg.Hotkeys.Lower
	g.fLogLevel = displayOrDefault(cfg.Logging.Level, "info")

	w := g.width - 4
	if w < 40 {
		w = 40
	}

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("refresh_rate").
				Title("Refresh Rate").
				Description("Target frames per second").
				Validate(validateRefreshRate).
				Value(&g.fRefreshRate),

			huh.NewInput().
				Key("background").
				Title("Background").
				Description("Root fill colour as #RRGGBB").
				Validate(validateBackground).
				Value(&g.fBackground),

			huh.NewConfirm().
				Key("unredirect_fullscreen").
				Title("Unredirect Fullscreen").
				Description("Stop compositing under an opaque fullscreen window").
				Value(&g.fUnredirect),

			huh.NewConfirm().
				Key("refresh_contents").
				Title("Refresh Contents").
				Description("Re-read window contents every frame instead of on damage").
				Value(&g.fRefreshContents),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("same_application").
				Title("Same Application").
				Description("Which windows raise and lower together").
				Options(
					huh.NewOption("default (transients, groups, pid and class)", config.SameApplicationDefault),
					huh.NewOption("strict (transients and groups)", config.SameApplicationStrict),
				).
				Value(&g.fSameApplication),

			huh.NewConfirm().
				Key("separate_screen_focus").
				Title("Separate Screen Focus").
				Description("Fullscreen windows on other screens keep their layer").
				Value(&g.fSeparateScreenFocus),

			huh.NewInput().
				Key("raise_or_lower").
				Title("Raise or Lower Hotkey").
				Value(&g.fRaiseOrLower),

			huh.NewInput().
				Key("lower").
				Title("Lower Hotkey").
				Value(&g.fLower),

			huh.NewSelect[string]().
				Key("log_level").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&g.fLogLevel),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	g.editing = true
}

func validateRefreshRate(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateBackground(s string) error {
	c := config.CompositingConfig{Background: strings.TrimSpace(s)}
	_, err := c.BackgroundColor()
	return err
}

func (g *GeneralTab) applyForm() {
	if g.cfg == nil {
		return
	}

	if v, err := strconv.Atoi(strings.TrimSpace(g.fRefreshRate)); err == nil && v > 0 {
		g.cfg.Compositing.RefreshRate = v
	}
	if validateBackground(g.fBackground) == nil {
		g.cfg.Compositing.Background = strings.TrimSpace(g.fBackground)
	}
	g.cfg.Compositing.UnredirectFullscreen = g.fUnredirect
	g.cfg.Compositing.RefreshContents = g.fRefreshContents
	g.cfg.Stacking.SameApplication = g.fSameApplication
	g.cfg.Stacking.SeparateScreenFocus = g.fSeparateScreenFocus
	g.cfg.Hotkeys.RaiseOrLower = strings.TrimSpace(g.fRaiseOrLower)
	g.cfg.Hotkeys.Lower = strings.TrimSpace(g.fLower)
	g.cfg.Logging.Level = g.fLogLevel
}

// View implements tea.Model.
func (g GeneralTab) View() string {
	if g.editing && g.form != nil {
		return g.viewEditing()
	}
	return g.viewDisplay()
}

func (g GeneralTab) viewDisplay() string {
	cfg := g.cfg
	if cfg == nil {
		style := lipgloss.NewStyle().
			Width(g.width).
			Height(g.height).
			Foreground(lipgloss.Color("241")).
			Align(lipgloss.Center, lipgloss.Center)
		return style.Render("No config loaded")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(24).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}

	effectKeys := make([]string, 0, len(cfg.Hotkeys.Effects))
	for name, key := range cfg.Hotkeys.Effects {
		if key != "" {
			effectKeys = append(effectKeys, name+"="+key)
		}
	}
	sort.Strings(effectKeys)

	corners := cfg.ScreenEdges.Corners()
	edges := make([]string, 0, len(corners))
	for corner, effect := range corners {
		edges = append(edges, corner+"="+effect)
	}
	sort.Strings(edges)

	lines := []string{
		"",
		row("Refresh Rate", strconv.Itoa(cfg.Compositing.RefreshRate)+" Hz"),
		row("Background", cfg.Compositing.Background),
		row("Unredirect Fullscreen", onOff(cfg.Compositing.UnredirectFullscreen)),
		row("Refresh Contents", onOff(cfg.Compositing.RefreshContents)),
		"",
		row("Same Application", displayOrDefault(cfg.Stacking.SameApplication, config.SameApplicationDefault)),
		row("Separate Screen Focus", onOff(cfg.Stacking.SeparateScreenFocus)),
		"",
		row("Raise or Lower", displayOrDefault(cfg.Hotkeys.RaiseOrLower, "(disabled)")),
		row("Lower", displayOrDefault(cfg.Hotkeys.Lower, "(disabled)")),
		row("Effect Hotkeys", displayOrDefault(strings.Join(effectKeys, " "), "(none)")),
		row("Screen Edges", displayOrDefault(strings.Join(edges, " "), "(none)")),
		"",
		row("Log Level", displayOrDefault(cfg.Logging.Level, "info")),
		row("D-Bus", displayOrDefault(dbusSummary(cfg.DBus), "(disabled)")),
		"",
		dimStyle.Render("  Press 'e' to edit settings"),
	}

	content := strings.Join(lines, "\n")

	contentStyle := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return contentStyle.Render(content)
}

func (g GeneralTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing General Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	formView := g.form.View()

	content := header + "\n\n" + formView

	style := lipgloss.NewStyle().
		Width(g.width).
		Height(g.height).
		Padding(1, 2)

	return style.Render(content)
}

func dbusSummary(d config.DBusConfig) string {
	if !d.Enabled {
		return ""
	}
	return displayOrDefault(d.Bus, "session") + " " + displayOrDefault(d.Name, config.DefaultBusName)
}

func displayOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
