package config

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultRefreshRate = 60
	DefaultBackground  = "#000000"
	DefaultBusName     = "io.github.stratum"
)

// Same-application modes for stacking.same_application.
const (
	SameApplicationDefault = "default" // transients, groups, and pid+class matches
	SameApplicationStrict  = "strict"  // transients and groups only
)

// CompositingConfig controls the paint loop.
type CompositingConfig struct {
	// RefreshRate is the target frame rate in Hz.
	RefreshRate int `yaml:"refresh_rate"`
	// UnredirectFullscreen stops compositing while an opaque fullscreen
	// window covers the display and no effect is active.
	UnredirectFullscreen bool `yaml:"unredirect_fullscreen"`
	// Background is the root fill colour as #RRGGBB.
	Background string `yaml:"background"`
	// RefreshContents re-reads every window's content on each frame instead
	// of relying on damage events.
	RefreshContents bool `yaml:"refresh_contents"`
}

type StackingConfig struct {
	SeparateScreenFocus bool   `yaml:"separate_screen_focus"`
	SameApplication     string `yaml:"same_application"`
}

// HotkeysConfig binds keys using xgbutil keybind syntax (e.g. "Mod4-Tab").
// An empty binding is disabled.
type HotkeysConfig struct {
	RaiseOrLower string `yaml:"raise_or_lower,omitempty"`
	Lower        string `yaml:"lower,omitempty"`
	// Effects maps an effect name to the key that triggers it. An empty key
	// disables a default binding.
	Effects map[string]string `yaml:"effects,omitempty"`
}

// ScreenEdgesConfig maps screen corners to effect names.
type ScreenEdgesConfig struct {
	TopLeft     string `yaml:"top_left,omitempty"`
	TopRight    string `yaml:"top_right,omitempty"`
	BottomLeft  string `yaml:"bottom_left,omitempty"`
	BottomRight string `yaml:"bottom_right,omitempty"`
}

// Corners returns the configured corners keyed by name.
func (s ScreenEdgesConfig) Corners() map[string]string {
	out := make(map[string]string, 4)
	for name, effect := range map[string]string{
		"top_left":     s.TopLeft,
		"top_right":    s.TopRight,
		"bottom_left":  s.BottomLeft,
		"bottom_right": s.BottomRight,
	} {
		if strings.TrimSpace(effect) != "" {
			out[name] = effect
		}
	}
	return out
}

type LoggingConfig struct {
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File, when set, receives log output instead of stderr.
	File string `yaml:"file,omitempty"`
}

type DBusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bus     string `yaml:"bus,omitempty"` // session or system
	Name    string `yaml:"name,omitempty"`
}

// Config is the effective daemon configuration.
type Config struct {
	Include IncludeList `yaml:"include,omitempty"`

	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`

	Compositing CompositingConfig `yaml:"compositing"`
	Stacking    StackingConfig    `yaml:"stacking"`
	// Effects holds one free-form group per effect. Each effect reads its own
	// keys with ReadEntry; "enabled" overrides the effect's default.
	Effects     map[string]Group  `yaml:"effects"`
	Hotkeys     HotkeysConfig     `yaml:"hotkeys"`
	ScreenEdges ScreenEdgesConfig `yaml:"screen_edges"`
	Logging     LoggingConfig     `yaml:"logging"`
	DBus        DBusConfig        `yaml:"dbus"`
}

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Compositing: CompositingConfig{
			RefreshRate:          DefaultRefreshRate,
			UnredirectFullscreen: true,
			Background:           DefaultBackground,
			RefreshContents:      false,
		},
		Stacking: StackingConfig{
			SameApplication: SameApplicationDefault,
		},
		Effects: map[string]Group{},
		Hotkeys: HotkeysConfig{
			RaiseOrLower: "Mod4-Page_Up",
			Lower:        "Mod4-Page_Down",
			Effects: map[string]string{
				"presentwindows": "Mod4-Tab",
			},
		},
		ScreenEdges: ScreenEdgesConfig{
			TopLeft: "presentwindows",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		DBus: DBusConfig{
			Enabled: true,
			Bus:     "session",
			Name:    DefaultBusName,
		},
	}
}

// Effect returns the group for the named effect. Missing effects yield an
// empty group.
func (c *Config) Effect(name string) Group {
	if c == nil {
		return Group{}
	}
	return c.Effects[name]
}

// EffectEnabled reports the "enabled" entry of an effect group, or def when
// the key is absent.
func (c *Config) EffectEnabled(name string, def bool) bool {
	return ReadEntry(c.Effect(name), "enabled", def)
}

// EffectNames returns the names of effects with a config group, sorted.
func (c *Config) EffectNames() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Effects))
	for name := range c.Effects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackgroundColor parses compositing.background.
func (c *Config) BackgroundColor() (color.RGBA, error) {
	return c.Compositing.BackgroundColor()
}

func (c CompositingConfig) BackgroundColor() (color.RGBA, error) {
	return parseHexColor(c.Background)
}

// SlogLevel maps logging.level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.Compositing.RefreshRate < 1 || c.Compositing.RefreshRate > 240 {
		return &ValidationError{Path: "compositing.refresh_rate", Err: fmt.Errorf("refresh_rate must be between 1 and 240")}
	}
	if _, err := parseHexColor(c.Compositing.Background); err != nil {
		return &ValidationError{Path: "compositing.background", Err: err}
	}
	switch c.Stacking.SameApplication {
	case SameApplicationDefault, SameApplicationStrict:
	default:
		return &ValidationError{Path: "stacking.same_application", Err: fmt.Errorf("same_application must be one of: default, strict")}
	}
	if c.Effects == nil {
		return &ValidationError{Path: "effects", Err: fmt.Errorf("effects must not be null")}
	}
	for name := range c.Effects {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "effects", Err: fmt.Errorf("effects contains an empty effect name")}
		}
	}
	for name := range c.Hotkeys.Effects {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "hotkeys.effects", Err: fmt.Errorf("hotkeys.effects contains an empty effect name")}
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	if c.DBus.Enabled {
		switch c.DBus.Bus {
		case "session", "system":
		default:
			return &ValidationError{Path: "dbus.bus", Err: fmt.Errorf("bus must be one of: session, system")}
		}
		if strings.TrimSpace(c.DBus.Name) == "" {
			return &ValidationError{Path: "dbus.name", Err: fmt.Errorf("name is required when dbus is enabled")}
		}
	}
	return nil
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	save := *c
	save.Include = nil

	data, err := yaml.Marshal(&save)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("colour %q must be #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q must be #RRGGBB", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
