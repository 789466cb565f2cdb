package builtin

import (
	"image"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/scene"
)

type fadeKind int

const (
	fadeIn fadeKind = iota
	fadeOut
	crossFade
)

type fadeAnim struct {
	kind     fadeKind
	timeline *effects.Timeline
}

// Fade fades windows in when they appear and out when they close, and
// cross-fades the old and new contents when a window is resized.
type Fade struct {
	h *effects.Handler

	fadeIn    time.Duration
	fadeOut   time.Duration
	crossFade time.Duration

	anims map[*scene.Window]*fadeAnim
}

func newFade(h *effects.Handler, cfg config.Group) (effects.Effect, error) {
	f := &Fade{h: h, anims: make(map[*scene.Window]*fadeAnim)}
	f.Reconfigure(cfg)
	return f, nil
}

func (f *Fade) Reconfigure(cfg config.Group) {
	f.fadeIn = readDuration(cfg, "fade_in_ms", 150*time.Millisecond)
	f.fadeOut = readDuration(cfg, "fade_out_ms", 150*time.Millisecond)
	f.crossFade = readDuration(cfg, "cross_fade_ms", 150*time.Millisecond)
	if !config.ReadEntry(cfg, "cross_fade", true) {
		f.crossFade = 0
	}
}

func (f *Fade) IsActive() bool { return len(f.anims) > 0 }

func (f *Fade) ignored(w *scene.Window) bool {
	return w.Toplevel().IsDesktop()
}

func (f *Fade) WindowAdded(w *scene.Window) {
	if f.fadeIn == 0 || f.ignored(w) {
		return
	}
	f.anims[w] = &fadeAnim{kind: fadeIn, timeline: effects.NewTimeline(f.fadeIn, effects.OutCubic)}
	f.h.AddRepaintFull()
}

func (f *Fade) WindowClosed(w *scene.Window) {
	if f.fadeOut == 0 || f.ignored(w) {
		return
	}
	tl := effects.NewTimeline(f.fadeOut, effects.OutCubic)
	if a, ok := f.anims[w]; ok {
		switch a.kind {
		case fadeIn:
			// continue from the current opacity
			tl = a.timeline
			tl.SetDuration(f.fadeOut)
		case crossFade:
			w.UnreferencePreviousPixmap()
		}
	}
	tl.SetDirection(effects.Backward)
	f.h.RefWindow(w)
	f.anims[w] = &fadeAnim{kind: fadeOut, timeline: tl}
	f.h.AddRepaintFull()
}

func (f *Fade) WindowDeleted(w *scene.Window) {
	delete(f.anims, w)
}

func (f *Fade) WindowGeometryChanged(w *scene.Window, old image.Rectangle) {
	if f.crossFade == 0 || old.Size() == w.Size() || w.Toplevel().Deleted() {
		return
	}
	if a, ok := f.anims[w]; ok {
		if a.kind != crossFade {
			return
		}
		// the previous generation is already referenced
		a.timeline.Reset()
		return
	}
	if w.PreviousPixmap() == nil {
		return
	}
	w.ReferencePreviousPixmap()
	f.anims[w] = &fadeAnim{kind: crossFade, timeline: effects.NewTimeline(f.crossFade, effects.Linear)}
	f.h.AddRepaintFull()
}

func (f *Fade) PrePaintScreen(h *effects.Handler, data *scene.ScreenPrePaintData, elapsed time.Duration) {
	for _, a := range f.anims {
		a.timeline.Update(elapsed)
	}
	h.PrePaintScreen(data, elapsed)
}

func (f *Fade) PrePaintWindow(h *effects.Handler, w *scene.Window, data *scene.WindowPrePaintData, elapsed time.Duration) {
	if a, ok := f.anims[w]; ok {
		data.SetTranslucent()
		if a.kind == fadeOut {
			w.EnablePainting(scene.PaintDisabledByDelete)
		}
	}
	h.PrePaintWindow(w, data, elapsed)
}

func (f *Fade) PaintWindow(h *effects.Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	if a, ok := f.anims[w]; ok {
		switch a.kind {
		case fadeIn, fadeOut:
			data.Opacity *= a.timeline.Value()
		case crossFade:
			data.CrossFadeProgress = a.timeline.Value()
		}
	}
	h.PaintWindow(w, mask, region, data)
}

func (f *Fade) PostPaintScreen(h *effects.Handler) {
	for w, a := range f.anims {
		if !a.timeline.Done() {
			continue
		}
		delete(f.anims, w)
		switch a.kind {
		case fadeOut:
			h.UnrefWindow(w)
		case crossFade:
			w.UnreferencePreviousPixmap()
		}
	}
	if len(f.anims) > 0 {
		h.AddRepaintFull()
	}
	h.PostPaintScreen()
}

// Close drops every reference the effect holds.
func (f *Fade) Close() {
	for w, a := range f.anims {
		delete(f.anims, w)
		switch a.kind {
		case fadeOut:
			f.h.UnrefWindow(w)
		case crossFade:
			w.UnreferencePreviousPixmap()
		}
	}
}
