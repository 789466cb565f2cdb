package builtin

import (
	"image"
	"slices"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/scene"
)

type slide struct {
	timeline *effects.Timeline
	offset   image.Point
}

// SlideBack moves the windows that covered a newly raised window out of the
// way and back underneath it.
type SlideBack struct {
	h *effects.Handler

	duration time.Duration
	prev     []*scene.Window
	slides   map[*scene.Window]*slide
}

func newSlideBack(h *effects.Handler, cfg config.Group) (effects.Effect, error) {
	s := &SlideBack{h: h, slides: make(map[*scene.Window]*slide)}
	s.Reconfigure(cfg)
	s.prev = s.order()
	return s, nil
}

func (s *SlideBack) Reconfigure(cfg config.Group) {
	s.duration = readDuration(cfg, "duration_ms", 250*time.Millisecond)
}

func (s *SlideBack) IsActive() bool { return len(s.slides) > 0 }

// order is the stacking order without the windows this or any other effect
// elevated, so that elevation does not look like a restack.
func (s *SlideBack) order() []*scene.Window {
	elevated := s.h.ElevatedWindows()
	return slices.DeleteFunc(s.h.StackingOrder(), func(w *scene.Window) bool {
		return slices.Contains(elevated, w)
	})
}

func topUsable(order []*scene.Window) *scene.Window {
	for i := len(order) - 1; i >= 0; i-- {
		if usable(order[i]) {
			return order[i]
		}
	}
	return nil
}

func (s *SlideBack) StackingOrderChanged() {
	prev := s.prev
	cur := s.order()
	s.prev = cur
	if s.duration == 0 || s.h.HasActiveFullScreenEffect() {
		return
	}

	active := s.h.ActiveWindow()
	if active == nil || topUsable(cur) != active || topUsable(prev) == active {
		return
	}
	i := slices.Index(prev, active)
	if i < 0 {
		return
	}
	ag := active.Geometry()
	for _, c := range prev[i+1:] {
		if !usable(c) || !c.Geometry().Overlaps(ag) {
			continue
		}
		if _, ok := s.slides[c]; ok {
			continue
		}
		s.slides[c] = &slide{
			timeline: effects.NewTimeline(s.duration, effects.InOutQuad),
			offset:   escape(c.Geometry(), ag),
		}
		s.h.ElevateWindow(s, c, true)
	}
	if len(s.slides) > 0 {
		s.h.AddRepaintFull()
	}
}

// escape returns the shortest move along one axis that takes c clear of a.
func escape(c, a image.Rectangle) image.Point {
	moves := []image.Point{
		{X: a.Min.X - c.Max.X},
		{X: a.Max.X - c.Min.X},
		{Y: a.Min.Y - c.Max.Y},
		{Y: a.Max.Y - c.Min.Y},
	}
	best := moves[0]
	for _, m := range moves[1:] {
		if abs(m.X)+abs(m.Y) < abs(best.X)+abs(best.Y) {
			best = m
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (s *SlideBack) WindowDeleted(w *scene.Window) {
	if _, ok := s.slides[w]; ok {
		delete(s.slides, w)
		s.h.ElevateWindow(s, w, false)
	}
	s.prev = slices.DeleteFunc(s.prev, func(o *scene.Window) bool { return o == w })
}

func (s *SlideBack) PrePaintScreen(h *effects.Handler, data *scene.ScreenPrePaintData, elapsed time.Duration) {
	for _, sl := range s.slides {
		sl.timeline.Update(elapsed)
	}
	data.Mask |= scene.PaintScreenWithTransformedWindows
	h.PrePaintScreen(data, elapsed)
}

func (s *SlideBack) PrePaintWindow(h *effects.Handler, w *scene.Window, data *scene.WindowPrePaintData, elapsed time.Duration) {
	if _, ok := s.slides[w]; ok {
		data.SetTransformed()
	}
	h.PrePaintWindow(w, data, elapsed)
}

func (s *SlideBack) PaintWindow(h *effects.Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	if sl, ok := s.slides[w]; ok {
		v := sl.timeline.Value()
		data.XTranslate += float64(sl.offset.X) * v
		data.YTranslate += float64(sl.offset.Y) * v
	}
	h.PaintWindow(w, mask, region, data)
}

// PostPaintScreen turns a slide around at its far end. On the way back
// the window is painted at its real stacking position, below the raised one.
func (s *SlideBack) PostPaintScreen(h *effects.Handler) {
	for w, sl := range s.slides {
		if !sl.timeline.Done() {
			continue
		}
		if sl.timeline.Direction() == effects.Forward {
			h.ElevateWindow(s, w, false)
			sl.timeline.SetDirection(effects.Backward)
			continue
		}
		delete(s.slides, w)
	}
	if len(s.slides) > 0 {
		h.AddRepaintFull()
	}
	h.PostPaintScreen()
}

func (s *SlideBack) Close() {
	for w := range s.slides {
		s.h.ElevateWindow(s, w, false)
	}
	clear(s.slides)
}
