// Package scene implements the window paint protocol: per-window pixmap
// generations and quads, and screen painting in stacking order through the
// effects chain down to a Renderer.
//
// A Scene is driven from the compositor's paint loop and is not safe for
// concurrent use.
package scene

import (
	"image"
	"log/slog"
	"time"

	"github.com/1broseidon/stratum/internal/window"
)

type Scene struct {
	renderer Renderer
	effects  Effects
	log      *slog.Logger

	display image.Rectangle

	windows  map[window.Handle]*Window
	stacking []*Window

	lastPaint  time.Time
	timeDiff   time.Duration
	screenData ScreenPaintData
	now        func() time.Time
}

func New(renderer Renderer, display image.Rectangle, logger *slog.Logger) *Scene {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scene{
		renderer: renderer,
		log:      logger,
		display:  display,
		windows:  make(map[window.Handle]*Window),
		now:      time.Now,
	}
	s.effects = direct{s}
	return s
}

// SetEffects attaches the effects chain. A nil chain paints directly.
func (s *Scene) SetEffects(e Effects) {
	if e == nil {
		s.effects = direct{s}
		return
	}
	s.effects = e
}

func (s *Scene) Display() image.Rectangle { return s.display }

// SetDisplay resizes the screen.
func (s *Scene) SetDisplay(r image.Rectangle) { s.display = r }

// AddWindow starts tracking w.
func (s *Scene) AddWindow(w *window.Window) *Window {
	if sw, ok := s.windows[w.Handle()]; ok {
		return sw
	}
	sw := &Window{scene: s, win: w}
	s.windows[w.Handle()] = sw
	return sw
}

// RemoveWindow stops tracking h and releases its pixmaps.
func (s *Scene) RemoveWindow(h window.Handle) {
	sw, ok := s.windows[h]
	if !ok {
		return
	}
	sw.releasePixmaps()
	delete(s.windows, h)
	for i, w := range s.stacking {
		if w == sw {
			s.stacking = append(s.stacking[:i], s.stacking[i+1:]...)
			break
		}
	}
}

func (s *Scene) Window(h window.Handle) (*Window, bool) {
	w, ok := s.windows[h]
	return w, ok
}

// SetStackingOrder sets the paint order, bottom to top. Unknown handles are
// skipped.
func (s *Scene) SetStackingOrder(order []window.Handle) {
	s.stacking = s.stacking[:0]
	for _, h := range order {
		if w, ok := s.windows[h]; ok {
			s.stacking = append(s.stacking, w)
		}
	}
}

// StackingOrder returns the paint order, bottom to top.
func (s *Scene) StackingOrder() []*Window {
	out := make([]*Window, len(s.stacking))
	copy(out, s.stacking)
	return out
}

// HasWindowRepaints reports pending per-window repaints.
func (s *Scene) HasWindowRepaints() bool {
	for _, w := range s.stacking {
		if !w.repaints.IsEmpty() {
			return true
		}
	}
	return false
}

// ResetPaintClock makes the next paint report zero elapsed time. Used after
// the screen was idle so that animations do not jump.
func (s *Scene) ResetPaintClock() { s.lastPaint = time.Time{} }

// Paint runs one paint cycle over damage and returns the region that was
// painted.
func (s *Scene) Paint(damage Region) Region {
	now := s.now()
	elapsed := time.Duration(0)
	if !s.lastPaint.IsZero() {
		elapsed = now.Sub(s.lastPaint)
	}
	s.lastPaint = now

	mask := PaintScreenRegion
	if damage.Equal(RegionOf(s.display)) {
		mask = 0
	}
	return s.PaintScreen(&mask, damage, elapsed)
}

// PaintScreen runs the screen hooks: prepaint, paint, and postpaint.
func (s *Scene) PaintScreen(mask *PaintMask, damage Region, elapsed time.Duration) Region {
	displayRegion := RegionOf(s.display)
	s.timeDiff = elapsed
	s.effects.StartPaint()
	defer s.effects.EndPaint()

	pdata := ScreenPrePaintData{Mask: *mask, Paint: damage}
	s.effects.PrePaintScreen(&pdata, elapsed)
	*mask = pdata.Mask
	region := pdata.Paint

	switch {
	case mask.Has(PaintScreenTransformed | PaintScreenWithTransformedWindows):
		// Damage does not match transformed positions.
		*mask &^= PaintScreenRegion
		region = InfiniteRegion()
	case mask.Has(PaintScreenRegion):
		region = region.IntersectRect(s.display)
	default:
		region = displayRegion
	}

	if mask.Has(PaintScreenBackgroundFirst) {
		s.renderer.PaintBackground(region)
	}

	data := NewScreenPaintData()
	s.effects.PaintScreen(*mask, region, &data)

	for _, w := range s.StackingOrder() {
		s.effects.PostPaintWindow(w)
	}
	s.effects.PostPaintScreen()

	return region.IntersectRect(s.display)
}

// FinalPaintScreen ends the PaintScreen chain.
func (s *Scene) FinalPaintScreen(mask PaintMask, region Region, data *ScreenPaintData) {
	s.screenData = *data
	if mask.Has(PaintScreenTransformed | PaintScreenWithTransformedWindows) {
		s.paintGenericScreen(mask)
		return
	}
	s.paintSimpleScreen(mask, region)
}

type phase2 struct {
	w      *Window
	region Region
	clip   Region
	mask   PaintMask
	quads  QuadList
}

func (s *Scene) prePaintData(w *Window, mask PaintMask) WindowPrePaintData {
	data := WindowPrePaintData{Mask: mask}
	if w.IsOpaque() {
		data.Mask |= PaintWindowOpaque
	} else {
		data.Mask |= PaintWindowTranslucent
	}
	return data
}

// paintGenericScreen paints every window bottom to top without clipping.
func (s *Scene) paintGenericScreen(mask PaintMask) {
	if !mask.Has(PaintScreenBackgroundFirst) {
		s.renderer.PaintBackground(InfiniteRegion())
	}
	var list []phase2
	for _, w := range s.StackingOrder() {
		w.resetRepaints()
		pd := s.prePaintData(w, mask)
		w.ResetPaintingEnabled()
		pd.Paint = InfiniteRegion()
		pd.Quads = w.BuildQuads(false)
		s.effects.PrePaintWindow(w, &pd, s.elapsed())
		if !w.IsPaintingEnabled() {
			continue
		}
		list = append(list, phase2{w: w, region: InfiniteRegion(), clip: pd.Clip, mask: pd.Mask, quads: pd.Quads})
	}
	for _, p := range list {
		s.paintWindow(p.w, p.mask, p.region, p.quads)
	}
}

// paintSimpleScreen paints only region, skipping whatever opaque windows
// above would cover.
func (s *Scene) paintSimpleScreen(mask PaintMask, region Region) {
	var list []phase2
	dirty := region
	for _, w := range s.StackingOrder() {
		pd := s.prePaintData(w, mask)
		w.ResetPaintingEnabled()
		pd.Paint = region.Union(w.repaints)
		w.resetRepaints()
		if w.IsOpaque() {
			pd.Clip = w.ClientShape().Translate(w.Pos())
		}
		pd.Quads = w.BuildQuads(false)
		s.effects.PrePaintWindow(w, &pd, s.elapsed())
		if !w.IsPaintingEnabled() {
			continue
		}
		dirty = dirty.Union(pd.Paint)
		list = append(list, phase2{w: w, region: pd.Paint, clip: pd.Clip, mask: pd.Mask, quads: pd.Quads})
	}

	displayRegion := RegionOf(s.display)
	dirty = dirty.IntersectRect(s.display)
	fullRepaint := dirty.Equal(displayRegion)

	// Occlusion culling, top to bottom.
	var allClips, upperTranslucent Region
	for i := len(list) - 1; i >= 0; i-- {
		p := &list[i]
		if fullRepaint {
			p.region = displayRegion
		} else {
			p.region = p.region.Union(upperTranslucent)
		}
		p.region = p.region.Subtract(allClips)
		if !p.clip.IsEmpty() && !p.mask.Has(PaintWindowTransformed) {
			allClips = allClips.Union(p.clip)
			if !fullRepaint {
				upperTranslucent = upperTranslucent.Union(p.region.Subtract(p.clip))
			}
		} else if !fullRepaint {
			upperTranslucent = upperTranslucent.Union(p.region)
		}
	}

	var painted Region
	if !mask.Has(PaintScreenBackgroundFirst) {
		painted = dirty.Subtract(allClips)
		s.renderer.PaintBackground(painted)
	}
	for i := range list {
		p := &list[i]
		painted = painted.Union(p.region)
		s.paintWindow(p.w, p.mask, painted, p.quads)
	}
}

func (s *Scene) elapsed() time.Duration { return s.timeDiff }

// ScreenData returns the screen transform of the current paint pass.
func (s *Scene) ScreenData() ScreenPaintData { return s.screenData }

func (s *Scene) paintWindow(w *Window, mask PaintMask, region Region, quads QuadList) {
	region = region.IntersectRect(s.display)
	if region.IsEmpty() {
		return
	}
	data := NewWindowPaintData(w)
	data.Quads = quads
	s.effects.PaintWindow(w, mask, region, &data)
}

// FinalPaintWindow ends the PaintWindow chain.
func (s *Scene) FinalPaintWindow(w *Window, mask PaintMask, region Region, data *WindowPaintData) {
	s.effects.DrawWindow(w, mask, region, data)
}

// FinalDrawWindow ends the DrawWindow chain.
func (s *Scene) FinalDrawWindow(w *Window, mask PaintMask, region Region, data *WindowPaintData) {
	s.renderer.PerformPaint(w, mask, region, data)
}

// FinalPaintEffectFrame ends the PaintEffectFrame chain.
func (s *Scene) FinalPaintEffectFrame(f *EffectFrame, region Region, opacity, frameOpacity float64) {
	s.renderer.PaintEffectFrame(f, region, opacity, frameOpacity)
}
