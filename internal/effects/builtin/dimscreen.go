package builtin

import (
	"strings"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/scene"
)

var defaultDimClasses = []string{
	"polkit-gnome-authentication-agent-1",
	"polkit-kde-authentication-agent-1",
	"gcr-prompter",
	"pinentry",
	"kdesu",
}

// DimScreen darkens every other window while an authentication dialog is
// active.
type DimScreen struct {
	h *effects.Handler

	brightness float64
	classes    []string
	timeline   *effects.Timeline

	running bool
	focus   *scene.Window
}

func newDimScreen(h *effects.Handler, cfg config.Group) (effects.Effect, error) {
	d := &DimScreen{h: h, timeline: effects.NewTimeline(0, effects.InOutQuad)}
	d.Reconfigure(cfg)
	if w := h.ActiveWindow(); w != nil {
		d.WindowActivated(w)
	}
	return d, nil
}

func (d *DimScreen) Reconfigure(cfg config.Group) {
	d.brightness = clamp01(config.ReadEntry(cfg, "brightness", 0.67))
	d.classes = config.ReadEntry(cfg, "classes", defaultDimClasses)
	d.timeline.SetDuration(readDuration(cfg, "duration_ms", 300*time.Millisecond))
}

func (d *DimScreen) IsActive() bool { return d.running }

func (d *DimScreen) matches(w *scene.Window) bool {
	tw := w.Toplevel()
	for _, c := range d.classes {
		if strings.EqualFold(c, tw.Class()) || strings.EqualFold(c, tw.Instance()) {
			return true
		}
	}
	return false
}

func (d *DimScreen) WindowActivated(w *scene.Window) {
	if w != nil && d.matches(w) {
		d.focus = w
		d.running = true
		d.timeline.SetDirection(effects.Forward)
		d.h.AddRepaintFull()
		return
	}
	if d.running {
		d.timeline.SetDirection(effects.Backward)
		d.h.AddRepaintFull()
	}
}

func (d *DimScreen) WindowDeleted(w *scene.Window) {
	if w == d.focus {
		d.focus = nil
		d.timeline.SetDirection(effects.Backward)
	}
}

func (d *DimScreen) PrePaintScreen(h *effects.Handler, data *scene.ScreenPrePaintData, elapsed time.Duration) {
	d.timeline.Update(elapsed)
	h.PrePaintScreen(data, elapsed)
}

// spared reports windows left at full brightness: the dialog and its own
// transients.
func (d *DimScreen) spared(w *scene.Window) bool {
	if d.focus == nil {
		return false
	}
	if w == d.focus {
		return true
	}
	return d.h.Table().HasTransient(d.focus.Handle(), w.Handle(), true)
}

func (d *DimScreen) PaintWindow(h *effects.Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	if !d.spared(w) {
		data.Brightness *= 1 - (1-d.brightness)*d.timeline.Value()
	}
	h.PaintWindow(w, mask, region, data)
}

func (d *DimScreen) PostPaintScreen(h *effects.Handler) {
	switch {
	case d.timeline.Direction() == effects.Backward && d.timeline.Done():
		d.running = false
		d.focus = nil
		h.AddRepaintFull()
	case !d.timeline.Done():
		h.AddRepaintFull()
	}
	h.PostPaintScreen()
}
