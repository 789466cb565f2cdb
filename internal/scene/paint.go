package scene

import "time"

// PaintMask carries flags through one paint pass.
type PaintMask int

const (
	// PaintWindowOpaque marks a window painted without blending.
	PaintWindowOpaque PaintMask = 1 << iota
	// PaintWindowTranslucent marks a window that needs blending.
	PaintWindowTranslucent
	// PaintWindowTransformed marks a window drawn somewhere other than its
	// geometry, which disables clipping for it.
	PaintWindowTransformed
	// PaintScreenRegion limits the pass to the damaged region.
	PaintScreenRegion
	// PaintScreenTransformed marks a transformed screen.
	PaintScreenTransformed
	// PaintScreenWithTransformedWindows forces the generic painting path.
	PaintScreenWithTransformedWindows
	// PaintScreenBackgroundFirst paints the background before any window.
	PaintScreenBackgroundFirst
	// PaintDecorationOnly skips window contents.
	PaintDecorationOnly
)

func (m PaintMask) Has(f PaintMask) bool { return m&f != 0 }

// DisableReason explains why a window is not painted this pass.
type DisableReason int

const (
	PaintDisabled DisableReason = 1 << iota
	PaintDisabledByDelete
	PaintDisabledByDesktop
	PaintDisabledByMinimize
)

type ScreenPrePaintData struct {
	Mask  PaintMask
	Paint Region
}

// ScreenPaintData transforms the whole screen.
type ScreenPaintData struct {
	XScale, YScale         float64
	XTranslate, YTranslate float64
}

func NewScreenPaintData() ScreenPaintData {
	return ScreenPaintData{XScale: 1, YScale: 1}
}

// Transformed reports whether the data moves or scales anything.
func (d ScreenPaintData) Transformed() bool {
	return d.XScale != 1 || d.YScale != 1 || d.XTranslate != 0 || d.YTranslate != 0
}

type WindowPrePaintData struct {
	Mask PaintMask
	// Paint is the region the window wants repainted.
	Paint Region
	// Clip is the region the window fully covers; windows below it are not
	// painted there.
	Clip  Region
	Quads QuadList
}

// SetTranslucent drops opacity and the clip.
func (d *WindowPrePaintData) SetTranslucent() {
	d.Mask |= PaintWindowTranslucent
	d.Mask &^= PaintWindowOpaque
	d.Clip = Region{}
}

// SetTransformed disables clipping for the window.
func (d *WindowPrePaintData) SetTransformed() {
	d.Mask |= PaintWindowTransformed
}

type WindowPaintData struct {
	Opacity    float64
	Brightness float64
	Saturation float64

	XScale, YScale         float64
	XTranslate, YTranslate float64

	Quads QuadList

	// CrossFadeProgress blends from the previous pixmap (0) to the current
	// one (1).
	CrossFadeProgress float64
}

func NewWindowPaintData(w *Window) WindowPaintData {
	return WindowPaintData{
		Opacity:           w.Toplevel().Opacity(),
		Brightness:        1,
		Saturation:        1,
		XScale:            1,
		YScale:            1,
		CrossFadeProgress: 1,
	}
}

// Transformed reports whether the window is moved or scaled.
func (d *WindowPaintData) Transformed() bool {
	return d.XScale != 1 || d.YScale != 1 || d.XTranslate != 0 || d.YTranslate != 0
}

// Effects is the hook chain the scene paints through. Every hook forwards to
// the next active effect and eventually to the scene's Final methods.
type Effects interface {
	StartPaint()
	EndPaint()
	PrePaintScreen(data *ScreenPrePaintData, elapsed time.Duration)
	PaintScreen(mask PaintMask, region Region, data *ScreenPaintData)
	PostPaintScreen()
	PrePaintWindow(w *Window, data *WindowPrePaintData, elapsed time.Duration)
	PaintWindow(w *Window, mask PaintMask, region Region, data *WindowPaintData)
	PostPaintWindow(w *Window)
	DrawWindow(w *Window, mask PaintMask, region Region, data *WindowPaintData)
	BuildQuads(w *Window, quads *QuadList)
	PaintEffectFrame(f *EffectFrame, region Region, opacity, frameOpacity float64)
}

// Renderer turns paint calls into pixels.
type Renderer interface {
	CreateWindowPixmap(w *Window) Pixmap
	PaintBackground(region Region)
	PerformPaint(w *Window, mask PaintMask, region Region, data *WindowPaintData)
	PaintEffectFrame(f *EffectFrame, region Region, opacity, frameOpacity float64)
}

// direct paints without effects; used until an effects chain is attached.
type direct struct{ s *Scene }

func (d direct) StartPaint()                                       {}
func (d direct) EndPaint()                                         {}
func (d direct) PrePaintScreen(*ScreenPrePaintData, time.Duration) {}
func (d direct) PaintScreen(mask PaintMask, region Region, data *ScreenPaintData) {
	d.s.FinalPaintScreen(mask, region, data)
}
func (d direct) PostPaintScreen()                                           {}
func (d direct) PrePaintWindow(*Window, *WindowPrePaintData, time.Duration) {}
func (d direct) PaintWindow(w *Window, mask PaintMask, region Region, data *WindowPaintData) {
	d.s.FinalPaintWindow(w, mask, region, data)
}
func (d direct) PostPaintWindow(*Window) {}
func (d direct) DrawWindow(w *Window, mask PaintMask, region Region, data *WindowPaintData) {
	d.s.FinalDrawWindow(w, mask, region, data)
}
func (d direct) BuildQuads(*Window, *QuadList) {}
func (d direct) PaintEffectFrame(f *EffectFrame, region Region, opacity, frameOpacity float64) {
	d.s.FinalPaintEffectFrame(f, region, opacity, frameOpacity)
}
