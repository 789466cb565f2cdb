package effects

import (
	"time"

	"github.com/1broseidon/stratum/internal/scene"
)

type hook int

const (
	hookPrePaintScreen hook = iota
	hookPaintScreen
	hookPostPaintScreen
	hookPrePaintWindow
	hookPaintWindow
	hookPostPaintWindow
	hookDrawWindow
	hookBuildQuads
	hookPaintEffectFrame
	numHooks
)

var _ scene.Effects = (*Handler)(nil)

// nextEffect advances k's cursor past the next active effect implementing
// T. The caller restores the cursor to start once the effect returns, so a
// later call at the same depth sees the same chain.
//
// One cursor per hook means a hook must not be re-entered from outside its
// own chain while that chain is running.
func nextEffect[T any](h *Handler, k hook) (e T, start int, ok bool) {
	start = h.cursor[k]
	for i := start; i < len(h.active); i++ {
		if e, ok = h.active[i].(T); ok {
			h.cursor[k] = i + 1
			return e, start, true
		}
	}
	return e, start, false
}

// StartPaint snapshots the active effects for one paint cycle.
func (h *Handler) StartPaint() {
	h.painting = true
	h.active = h.active[:0]
	for _, le := range h.loaded {
		if le.effect.IsActive() {
			h.active = append(h.active, le.effect)
		}
	}
	h.cursor = [numHooks]int{}
}

// EndPaint closes the cycle and runs loads and unloads requested during it.
func (h *Handler) EndPaint() {
	h.painting = false
	h.active = h.active[:0]
	pending := h.pending
	h.pending = nil
	for _, fn := range pending {
		fn()
	}
}

func (h *Handler) PrePaintScreen(data *scene.ScreenPrePaintData, elapsed time.Duration) {
	e, start, ok := nextEffect[ScreenPrePainter](h, hookPrePaintScreen)
	if !ok {
		return
	}
	e.PrePaintScreen(h, data, elapsed)
	h.cursor[hookPrePaintScreen] = start
}

func (h *Handler) PaintScreen(mask scene.PaintMask, region scene.Region, data *scene.ScreenPaintData) {
	e, start, ok := nextEffect[ScreenPainter](h, hookPaintScreen)
	if !ok {
		h.scene.FinalPaintScreen(mask, region, data)
		return
	}
	e.PaintScreen(h, mask, region, data)
	h.cursor[hookPaintScreen] = start
}

func (h *Handler) PostPaintScreen() {
	e, start, ok := nextEffect[ScreenPostPainter](h, hookPostPaintScreen)
	if !ok {
		return
	}
	e.PostPaintScreen(h)
	h.cursor[hookPostPaintScreen] = start
}

func (h *Handler) PrePaintWindow(w *scene.Window, data *scene.WindowPrePaintData, elapsed time.Duration) {
	e, start, ok := nextEffect[WindowPrePainter](h, hookPrePaintWindow)
	if !ok {
		return
	}
	e.PrePaintWindow(h, w, data, elapsed)
	h.cursor[hookPrePaintWindow] = start
}

func (h *Handler) PaintWindow(w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	e, start, ok := nextEffect[WindowPainter](h, hookPaintWindow)
	if !ok {
		h.scene.FinalPaintWindow(w, mask, region, data)
		return
	}
	e.PaintWindow(h, w, mask, region, data)
	h.cursor[hookPaintWindow] = start
}

func (h *Handler) PostPaintWindow(w *scene.Window) {
	e, start, ok := nextEffect[WindowPostPainter](h, hookPostPaintWindow)
	if !ok {
		return
	}
	e.PostPaintWindow(h, w)
	h.cursor[hookPostPaintWindow] = start
}

func (h *Handler) DrawWindow(w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	e, start, ok := nextEffect[WindowDrawer](h, hookDrawWindow)
	if !ok {
		h.scene.FinalDrawWindow(w, mask, region, data)
		return
	}
	e.DrawWindow(h, w, mask, region, data)
	h.cursor[hookDrawWindow] = start
}

func (h *Handler) BuildQuads(w *scene.Window, quads *scene.QuadList) {
	e, start, ok := nextEffect[QuadBuilder](h, hookBuildQuads)
	if !ok {
		return
	}
	e.BuildQuads(h, w, quads)
	h.cursor[hookBuildQuads] = start
}

func (h *Handler) PaintEffectFrame(f *scene.EffectFrame, region scene.Region, opacity, frameOpacity float64) {
	e, start, ok := nextEffect[FramePainter](h, hookPaintEffectFrame)
	if !ok {
		h.scene.FinalPaintEffectFrame(f, region, opacity, frameOpacity)
		return
	}
	e.PaintEffectFrame(h, f, region, opacity, frameOpacity)
	h.cursor[hookPaintEffectFrame] = start
}
