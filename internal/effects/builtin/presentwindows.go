package builtin

import (
	"image"
	"math"
	"slices"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/scene"
)

// PresentWindows lays every window of the current desktop out in a grid.
// It takes the full-screen slot, intercepts the pointer, and grabs the
// keyboard while shown.
type PresentWindows struct {
	h *effects.Handler

	spacing   int
	showFrame bool
	timeline  *effects.Timeline

	shown   bool // requested state
	running bool // painting, including the closing animation
	grabbed bool

	order    []*scene.Window
	slots    map[*scene.Window]image.Rectangle
	cols     int
	selected *scene.Window
	frame    *scene.EffectFrame
}

func newPresentWindows(h *effects.Handler, cfg config.Group) (effects.Effect, error) {
	p := &PresentWindows{
		h:        h,
		timeline: effects.NewTimeline(0, effects.InOutQuad),
		slots:    make(map[*scene.Window]image.Rectangle),
	}
	if s := h.Scene(); s != nil {
		p.frame = s.NewEffectFrame()
	}
	p.Reconfigure(cfg)
	return p, nil
}

func (p *PresentWindows) Reconfigure(cfg config.Group) {
	p.spacing = max(0, config.ReadEntry(cfg, "spacing", 16))
	p.showFrame = config.ReadEntry(cfg, "show_frame", true)
	p.timeline.SetDuration(readDuration(cfg, "duration_ms", 250*time.Millisecond))
}

func (p *PresentWindows) IsActive() bool { return p.running }

// Shown reports whether the overview is open or opening.
func (p *PresentWindows) Shown() bool { return p.shown }

// Selected returns the highlighted window.
func (p *PresentWindows) Selected() *scene.Window { return p.selected }

// Slot returns the grid cell w is moved to.
func (p *PresentWindows) Slot(w *scene.Window) (image.Rectangle, bool) {
	r, ok := p.slots[w]
	return r, ok
}

// Trigger opens or closes the overview.
func (p *PresentWindows) Trigger() {
	p.SetShown(!p.shown)
}

func (p *PresentWindows) SetShown(show bool) {
	if show == p.shown {
		return
	}
	if !show {
		p.shown = false
		p.timeline.SetDirection(effects.Backward)
		p.releaseInput()
		p.h.AddRepaintFull()
		return
	}

	if fs := p.h.ActiveFullScreenEffect(); fs != nil && fs != effects.Effect(p) {
		p.h.Logger().Debug("present windows blocked by full-screen effect")
		return
	}
	var windows []*scene.Window
	for _, w := range p.h.StackingOrder() {
		if usable(w) {
			windows = append(windows, w)
		}
	}
	if len(windows) == 0 {
		return
	}

	p.shown = true
	p.running = true
	p.layout(windows)
	p.selected = p.h.ActiveWindow()
	if _, ok := p.slots[p.selected]; !ok {
		p.selected = p.order[0]
	}
	p.h.SetActiveFullScreenEffect(p)
	p.h.StartMouseInterception(p)
	p.grabbed = p.h.GrabKeyboard(p)
	p.timeline.SetDirection(effects.Forward)
	p.h.AddRepaintFull()
}

func (p *PresentWindows) releaseInput() {
	p.h.StopMouseInterception(p)
	if p.grabbed {
		p.h.UngrabKeyboard(p)
		p.grabbed = false
	}
}

// layout places windows in a near-square grid sorted by position, scaled
// down to fit their cells and never scaled up.
func (p *PresentWindows) layout(windows []*scene.Window) {
	for _, w := range p.order {
		w.DiscardQuads()
	}
	clear(p.slots)

	windows = slices.Clone(windows)
	slices.SortStableFunc(windows, func(a, b *scene.Window) int {
		ca, cb := center(a.Geometry()), center(b.Geometry())
		if ca.Y != cb.Y {
			return ca.Y - cb.Y
		}
		return ca.X - cb.X
	})
	p.order = windows
	if len(windows) == 0 {
		p.cols = 0
		return
	}

	area := p.h.Scene().Display()
	n := len(windows)
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	p.cols = cols
	cellW := max(1, (area.Dx()-p.spacing*(cols+1))/cols)
	cellH := max(1, (area.Dy()-p.spacing*(rows+1))/rows)

	for i, w := range windows {
		col, row := i%cols, i/cols
		cell := image.Rect(0, 0, cellW, cellH).Add(image.Pt(
			area.Min.X+p.spacing+col*(cellW+p.spacing),
			area.Min.Y+p.spacing+row*(cellH+p.spacing),
		))
		size := w.Size()
		scale := 1.0
		if size.X > 0 && size.Y > 0 {
			scale = min(1, float64(cellW)/float64(size.X), float64(cellH)/float64(size.Y))
		}
		sw := int(math.Round(float64(size.X) * scale))
		sh := int(math.Round(float64(size.Y) * scale))
		origin := image.Pt(cell.Min.X+(cellW-sw)/2, cell.Min.Y+(cellH-sh)/2)
		p.slots[w] = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(sw, sh))}
		w.DiscardQuads()
	}
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

// current returns where w is drawn at animation value v.
func current(w *scene.Window, slot image.Rectangle, v float64) image.Rectangle {
	g := w.Geometry()
	lerp := func(a, b int) int { return int(math.Round(float64(a) + float64(b-a)*v)) }
	return image.Rect(lerp(g.Min.X, slot.Min.X), lerp(g.Min.Y, slot.Min.Y), lerp(g.Max.X, slot.Max.X), lerp(g.Max.Y, slot.Max.Y))
}

func (p *PresentWindows) PrePaintScreen(h *effects.Handler, data *scene.ScreenPrePaintData, elapsed time.Duration) {
	p.timeline.Update(elapsed)
	data.Mask |= scene.PaintScreenWithTransformedWindows
	h.PrePaintScreen(data, elapsed)
}

func (p *PresentWindows) PrePaintWindow(h *effects.Handler, w *scene.Window, data *scene.WindowPrePaintData, elapsed time.Duration) {
	if _, ok := p.slots[w]; ok {
		data.SetTransformed()
	} else if !w.Toplevel().IsDesktop() {
		data.SetTranslucent()
	}
	h.PrePaintWindow(w, data, elapsed)
}

func (p *PresentWindows) PaintWindow(h *effects.Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	v := p.timeline.Value()
	slot, ok := p.slots[w]
	if !ok {
		if !w.Toplevel().IsDesktop() {
			data.Opacity *= 1 - v
		}
		h.PaintWindow(w, mask, region, data)
		return
	}

	g := w.Geometry()
	if g.Dx() > 0 && g.Dy() > 0 {
		data.XScale *= 1 + (float64(slot.Dx())/float64(g.Dx())-1)*v
		data.YScale *= 1 + (float64(slot.Dy())/float64(g.Dy())-1)*v
	}
	data.XTranslate += float64(slot.Min.X-g.Min.X) * v
	data.YTranslate += float64(slot.Min.Y-g.Min.Y) * v

	if w == p.selected && p.showFrame && p.frame != nil {
		p.frame.Geometry = current(w, slot, v).Inset(-p.spacing / 4)
		p.frame.Render(scene.InfiniteRegion(), v, 0.6)
	}
	h.PaintWindow(w, mask, region, data)
}

func (p *PresentWindows) BuildQuads(h *effects.Handler, w *scene.Window, quads *scene.QuadList) {
	if _, ok := p.slots[w]; ok {
		*quads = quads.Filter(scene.QuadDecoration)
	}
	h.BuildQuads(w, quads)
}

func (p *PresentWindows) PostPaintScreen(h *effects.Handler) {
	switch {
	case !p.shown && p.timeline.Done():
		p.finish()
		h.AddRepaintFull()
	case !p.timeline.Done():
		h.AddRepaintFull()
	}
	h.PostPaintScreen()
}

// finish ends the closing animation.
func (p *PresentWindows) finish() {
	p.running = false
	for _, w := range p.order {
		w.DiscardQuads()
	}
	p.order = nil
	clear(p.slots)
	p.selected = nil
	if p.h.ActiveFullScreenEffect() == effects.Effect(p) {
		p.h.SetActiveFullScreenEffect(nil)
	}
}

func (p *PresentWindows) windowAt(pt image.Point) *scene.Window {
	for i := len(p.order) - 1; i >= 0; i-- {
		w := p.order[i]
		if pt.In(p.slots[w]) {
			return w
		}
	}
	return nil
}

func (p *PresentWindows) MouseEvent(ev effects.MouseEvent) {
	if !p.shown {
		return
	}
	switch ev.Kind {
	case effects.MouseMotion:
		if w := p.windowAt(ev.Pos); w != nil && w != p.selected {
			p.selected = w
			p.h.AddRepaintFull()
		}
	case effects.MousePress:
		w := p.windowAt(ev.Pos)
		if ev.Button == 1 && w != nil {
			p.h.ActivateWindow(w)
		}
		p.SetShown(false)
	}
}

func (p *PresentWindows) KeyEvent(ev effects.KeyEvent) {
	if !ev.Pressed || !p.shown {
		return
	}
	switch ev.Key {
	case "Escape":
		p.SetShown(false)
	case "Return", "KP_Enter", "space":
		if p.selected != nil {
			p.h.ActivateWindow(p.selected)
		}
		p.SetShown(false)
	case "Left":
		p.moveSelection(-1)
	case "Right":
		p.moveSelection(1)
	case "Up":
		p.moveSelection(-p.cols)
	case "Down":
		p.moveSelection(p.cols)
	}
}

func (p *PresentWindows) moveSelection(delta int) {
	i := slices.Index(p.order, p.selected)
	if i < 0 {
		return
	}
	j := i + delta
	if j < 0 || j >= len(p.order) {
		return
	}
	p.selected = p.order[j]
	p.h.AddRepaintFull()
}

// WindowClosed re-lays the grid without the closed window.
func (p *PresentWindows) WindowClosed(w *scene.Window) {
	if !p.running {
		return
	}
	if _, ok := p.slots[w]; !ok {
		return
	}
	rest := slices.DeleteFunc(slices.Clone(p.order), func(o *scene.Window) bool { return o == w })
	if p.selected == w {
		p.selected = nil
	}
	p.layout(rest)
	if p.selected == nil && len(p.order) > 0 {
		p.selected = p.order[0]
	}
	if len(p.order) == 0 {
		p.SetShown(false)
	}
	p.h.AddRepaintFull()
}

func (p *PresentWindows) Close() {
	if p.shown {
		p.releaseInput()
		p.shown = false
	}
	p.finish()
}
