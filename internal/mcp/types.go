package mcp

import (
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/workspace"
)

// EffectInput is the input for the tools that act on one effect.
type EffectInput struct {
	Name string `json:"name" jsonschema:"required,Effect name as listed by list_effects (e.g. fade, presentwindows)"`
}

// EffectOutput reports the effect's state after the operation.
type EffectOutput struct {
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
	Active bool   `json:"active"`
}

// ListEffectsInput is the input for the list_effects tool.
type ListEffectsInput struct {
	LoadedOnly bool `json:"loaded_only,omitempty" jsonschema:"When true, only list effects that are currently loaded"`
}

// ListEffectsOutput is the output for the list_effects tool.
type ListEffectsOutput struct {
	Effects []effects.Status `json:"effects"`
}

// StackInput is the input for the get_stacking_order tool.
type StackInput struct {
	Desktop *int `json:"desktop,omitempty" jsonschema:"Only list windows on this desktop (windows on all desktops are always included)"`
}

// StackOutput lists windows bottom to top.
type StackOutput struct {
	Windows []workspace.StackEntry `json:"windows"`
}

// WindowInput is the input for raise_window and lower_window.
type WindowInput struct {
	Window uint32 `json:"window,omitempty" jsonschema:"X11 window id; omit or 0 for the active window"`
}

// WindowOutput reports where the window ended up.
type WindowOutput struct {
	Window uint32 `json:"window"`
	// Position is the window's index in the stacking order, 0 is bottom.
	Position int `json:"position"`
	Total    int `json:"total"`
}

// StatusInput is the input for the get_status tool.
type StatusInput struct{}

// ReloadInput is the input for the reload_config tool.
type ReloadInput struct{}

// ReloadOutput is the output for the reload_config tool.
type ReloadOutput struct {
	Reloaded bool `json:"reloaded"`
}
