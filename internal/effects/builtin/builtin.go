// Package builtin holds the effects shipped with stratum.
package builtin

import (
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/scene"
)

// Chain ordering; lower runs first.
const (
	orderDimScreen      = 10
	orderFade           = 20
	orderSlideBack      = 30
	orderPresentWindows = 40
)

// Factories returns every built-in effect.
func Factories() []effects.Factory {
	return []effects.Factory{
		{
			Name:             "dimscreen",
			Description:      "Darken everything behind authentication dialogs",
			Ordering:         orderDimScreen,
			EnabledByDefault: false,
			Create:           newDimScreen,
		},
		{
			Name:             "fade",
			Description:      "Fade windows in and out, cross-fade on resize",
			Ordering:         orderFade,
			EnabledByDefault: true,
			Create:           newFade,
		},
		{
			Name:             "slideback",
			Description:      "Slide covering windows away when a window is raised",
			Ordering:         orderSlideBack,
			EnabledByDefault: false,
			Create:           newSlideBack,
		},
		{
			Name:             "presentwindows",
			Description:      "Show all windows side by side",
			Ordering:         orderPresentWindows,
			EnabledByDefault: true,
			Create:           newPresentWindows,
		},
	}
}

// Register adds the built-in effects to r.
func Register(r *effects.Registry) error {
	for _, f := range Factories() {
		if err := r.Register(f); err != nil {
			return err
		}
	}
	return nil
}

func readDuration(g config.Group, key string, def time.Duration) time.Duration {
	ms := config.ReadEntry(g, key, int(def/time.Millisecond))
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// usable reports a window on the current desktop that a user works with.
func usable(w *scene.Window) bool {
	tw := w.Toplevel()
	return !tw.Deleted() && !tw.IsSpecial() && tw.IsShown() && tw.IsOnCurrentDesktop()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
