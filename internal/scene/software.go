package scene

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
)

// ContentSource supplies the pixels of a window's frame.
type ContentSource interface {
	WindowImage(xid uint32, size image.Point) (*image.RGBA, error)
}

// SoftwarePixmap holds a snapshot of a window's content in memory.
type SoftwarePixmap struct {
	w         *Window
	source    ContentSource
	log       *slog.Logger
	img       *image.RGBA
	discarded bool
}

func (p *SoftwarePixmap) Create() {
	tl := p.w.Toplevel()
	if p.img != nil || tl.Deleted() {
		return
	}
	size := tl.Frame().Size()
	img, err := p.source.WindowImage(tl.XID, size)
	if err != nil {
		p.log.Debug("creating window pixmap failed", "window", tl.XID, "error", err)
		return
	}
	if img.Bounds().Size() != size {
		p.log.Debug("window pixmap size mismatch", "window", tl.XID, "got", img.Bounds().Size(), "want", size)
		return
	}
	p.img = img
}

// Refresh re-reads the content of a valid, current pixmap. A failed read
// keeps the old content.
func (p *SoftwarePixmap) Refresh() {
	tl := p.w.Toplevel()
	if p.img == nil || p.discarded || tl.Deleted() {
		return
	}
	size := tl.Frame().Size()
	img, err := p.source.WindowImage(tl.XID, size)
	if err != nil || img.Bounds().Size() != size {
		return
	}
	p.img = img
}

func (p *SoftwarePixmap) IsValid() bool     { return p.img != nil }
func (p *SoftwarePixmap) MarkAsDiscarded()  { p.discarded = true }
func (p *SoftwarePixmap) IsDiscarded() bool { return p.discarded }
func (p *SoftwarePixmap) Release()          { p.img = nil }

// Image returns the content, nil when invalid.
func (p *SoftwarePixmap) Image() *image.RGBA { return p.img }

// SoftwareRenderer composites into an in-memory RGBA buffer.
type SoftwareRenderer struct {
	target     *image.RGBA
	source     ContentSource
	background color.RGBA
	log        *slog.Logger
}

func NewSoftwareRenderer(display image.Rectangle, source ContentSource, background color.RGBA, logger *slog.Logger) *SoftwareRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SoftwareRenderer{
		target:     image.NewRGBA(display),
		source:     source,
		background: background,
		log:        logger,
	}
}

// Target is the composited frame.
func (r *SoftwareRenderer) Target() *image.RGBA { return r.target }

// Resize reallocates the frame buffer.
func (r *SoftwareRenderer) Resize(display image.Rectangle) {
	r.target = image.NewRGBA(display)
}

func (r *SoftwareRenderer) SetBackground(c color.RGBA) { r.background = c }

func (r *SoftwareRenderer) CreateWindowPixmap(w *Window) Pixmap {
	return &SoftwarePixmap{w: w, source: r.source, log: r.log}
}

func (r *SoftwareRenderer) PaintBackground(region Region) {
	bg := image.NewUniform(r.background)
	for _, rect := range region.IntersectRect(r.target.Bounds()).Rects() {
		draw.Draw(r.target, rect, bg, image.Point{}, draw.Src)
	}
}

func (r *SoftwareRenderer) PerformPaint(w *Window, mask PaintMask, region Region, data *WindowPaintData) {
	opacity := data.Opacity
	if opacity <= 0 {
		return
	}
	quads := data.Quads
	if mask.Has(PaintDecorationOnly) {
		quads = quads.Filter(QuadContents)
	}
	cur, _ := w.WindowPixmap().(*SoftwarePixmap)
	if data.CrossFadeProgress < 1 {
		if prev, ok := w.PreviousPixmap().(*SoftwarePixmap); ok && prev != cur && prev.img != nil {
			r.drawImage(w, prev.img, quads, region, data, opacity*(1-data.CrossFadeProgress))
		}
		opacity *= data.CrossFadeProgress
	}
	if cur != nil && cur.img != nil {
		r.drawImage(w, cur.img, quads, region, data, opacity)
	}
	if data.Brightness < 1 {
		r.dim(w, quads, region, data, (1-data.Brightness)*data.Opacity)
	}
}

func (r *SoftwareRenderer) drawImage(w *Window, img *image.RGBA, quads QuadList, region Region, data *WindowPaintData, opacity float64) {
	size := w.Size()
	if size.X <= 0 || size.Y <= 0 {
		return
	}
	sx := float64(img.Bounds().Dx()) / float64(size.X)
	sy := float64(img.Bounds().Dy()) / float64(size.Y)
	var opts *draw.Options
	if opacity < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(alpha(opacity))}
	}
	for _, q := range quads {
		src := image.Rect(
			int(math.Round(float64(q.Rect.Min.X)*sx)), int(math.Round(float64(q.Rect.Min.Y)*sy)),
			int(math.Round(float64(q.Rect.Max.X)*sx)), int(math.Round(float64(q.Rect.Max.Y)*sy)),
		).Add(img.Bounds().Min)
		dst := r.transform(w, q.Rect, data)
		if dst.Empty() || src.Empty() {
			continue
		}
		var scaler draw.Scaler = draw.ApproxBiLinear
		if dst.Size() == src.Size() {
			scaler = draw.NearestNeighbor
		}
		for _, clip := range region.IntersectRect(dst).IntersectRect(r.target.Bounds()).Rects() {
			sub := r.target.SubImage(clip).(*image.RGBA)
			scaler.Scale(sub, dst, img, src, draw.Over, opts)
		}
	}
}

func (r *SoftwareRenderer) dim(w *Window, quads QuadList, region Region, data *WindowPaintData, amount float64) {
	if amount <= 0 {
		return
	}
	shade := image.NewUniform(alpha(amount))
	for _, q := range quads {
		dst := r.transform(w, q.Rect, data)
		for _, clip := range region.IntersectRect(dst).IntersectRect(r.target.Bounds()).Rects() {
			draw.DrawMask(r.target, clip, image.Black, image.Point{}, shade, image.Point{}, draw.Over)
		}
	}
}

// transform maps a window-local rectangle to the screen.
func (r *SoftwareRenderer) transform(w *Window, local image.Rectangle, data *WindowPaintData) image.Rectangle {
	pos := w.Pos()
	sd := NewScreenPaintData()
	if w.scene != nil {
		sd = w.scene.ScreenData()
	}
	tx := func(x float64) int {
		x = float64(pos.X) + data.XTranslate + x*data.XScale
		return int(math.Round(x*sd.XScale + sd.XTranslate))
	}
	ty := func(y float64) int {
		y = float64(pos.Y) + data.YTranslate + y*data.YScale
		return int(math.Round(y*sd.YScale + sd.YTranslate))
	}
	return image.Rect(
		tx(float64(local.Min.X)), ty(float64(local.Min.Y)),
		tx(float64(local.Max.X)), ty(float64(local.Max.Y)),
	)
}

func (r *SoftwareRenderer) PaintEffectFrame(f *EffectFrame, region Region, opacity, frameOpacity float64) {
	a := opacity * frameOpacity
	if a <= 0 {
		return
	}
	fill := image.NewUniform(f.Color)
	mask := image.NewUniform(alpha(a))
	for _, clip := range region.IntersectRect(f.Geometry).IntersectRect(r.target.Bounds()).Rects() {
		draw.DrawMask(r.target, clip, fill, image.Point{}, mask, image.Point{}, draw.Over)
	}
}

func alpha(a float64) color.Alpha16 {
	if a > 1 {
		a = 1
	}
	if a < 0 {
		a = 0
	}
	return color.Alpha16{A: uint16(math.Round(a * 0xffff))}
}
