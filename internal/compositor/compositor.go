// Package compositor drives the scene: it collects damage, applies the
// effective stacking order, paints on each tick and hands the frame to the
// output. It also decides when a full-screen window may bypass compositing.
//
// A Compositor belongs to the daemon loop and is not safe for concurrent use.
package compositor

import (
	"image"
	"image/color"
	"log/slog"
	"slices"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/window"
)

// Output shows composited frames and switches windows in and out of
// compositing.
type Output interface {
	Present(frame *image.RGBA, region scene.Region) error
	// Unredirect lets the window draw straight to the screen.
	Unredirect(xid uint32) error
	// Redirect undoes Unredirect.
	Redirect(xid uint32) error
}

// Renderer is the scene renderer whose frame buffer is presented.
type Renderer interface {
	scene.Renderer
	Target() *image.RGBA
	SetBackground(c color.RGBA)
}

// refresher is implemented by pixmaps that can re-read their content.
type refresher interface {
	Refresh()
}

type Options struct {
	Scene    *scene.Scene
	Renderer Renderer
	Effects  *effects.Handler
	Output   Output
	Config   config.CompositingConfig
	Logger   *slog.Logger
}

// Stats describes the compositor for status queries.
type Stats struct {
	Frames       uint64 `json:"frames"`
	RefreshRate  int    `json:"refresh_rate"`
	Unredirected uint32 `json:"unredirected,omitempty"`
}

type Compositor struct {
	scene    *scene.Scene
	renderer Renderer
	fx       *effects.Handler
	out      Output
	cfg      config.CompositingConfig
	log      *slog.Logger

	base   []window.Handle
	damage scene.Region
	idle   bool

	unredirected *scene.Window
	frames       uint64
}

// New creates a compositor and attaches it to the effects handler.
func New(opts Options) *Compositor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Compositor{
		scene:    opts.Scene,
		renderer: opts.Renderer,
		fx:       opts.Effects,
		out:      opts.Output,
		log:      logger,
		idle:     true,
	}
	c.applyConfig(opts.Config)
	if c.fx != nil {
		c.fx.SetCompositor(c)
	}
	c.AddRepaintFull()
	return c
}

// Reconfigure applies a new compositing section.
func (c *Compositor) Reconfigure(cfg config.CompositingConfig) {
	c.applyConfig(cfg)
	c.CheckUnredirect()
	c.AddRepaintFull()
}

func (c *Compositor) applyConfig(cfg config.CompositingConfig) {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = config.DefaultRefreshRate
	}
	c.cfg = cfg
	if c.renderer == nil {
		return
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		c.log.Warn("invalid background colour", "background", cfg.Background, "error", err)
		return
	}
	c.renderer.SetBackground(bg)
}

// Interval is the time between paint ticks.
func (c *Compositor) Interval() time.Duration {
	return time.Second / time.Duration(c.cfg.RefreshRate)
}

func (c *Compositor) Stats() Stats {
	st := Stats{Frames: c.frames, RefreshRate: c.cfg.RefreshRate}
	if c.unredirected != nil {
		st.Unredirected = c.unredirected.Toplevel().XID
	}
	return st
}

func (c *Compositor) AddRepaintFull() {
	c.damage = scene.RegionOf(c.scene.Display())
}

// AddRepaint schedules region, in root coordinates.
func (c *Compositor) AddRepaint(region scene.Region) {
	c.damage = c.damage.Union(region)
}

// SetStackingOrder takes the constrained order, bottom to top.
func (c *Compositor) SetStackingOrder(order []window.Handle) {
	c.base = slices.Clone(order)
	c.applyStackingOrder()
	c.AddRepaintFull()
}

// StackingOrder is the paint order: the constrained order with elevated
// windows moved to the top in the order they were elevated.
func (c *Compositor) StackingOrder() []window.Handle {
	var elevated []window.Handle
	if c.fx != nil {
		for _, w := range c.fx.ElevatedWindows() {
			elevated = append(elevated, w.Handle())
		}
	}
	out := make([]window.Handle, 0, len(c.base))
	for _, h := range c.base {
		if !slices.Contains(elevated, h) {
			out = append(out, h)
		}
	}
	for _, h := range elevated {
		if slices.Contains(c.base, h) {
			out = append(out, h)
		}
	}
	return out
}

func (c *Compositor) applyStackingOrder() {
	c.scene.SetStackingOrder(c.StackingOrder())
}

// WindowShown schedules the area of a newly visible window.
func (c *Compositor) WindowShown(w *scene.Window) {
	c.AddRepaint(scene.RegionOf(w.Geometry()))
}

// WindowGeometryChanged retires the old content of a resized window before
// effects are told, so that they can still reference it.
func (c *Compositor) WindowGeometryChanged(w *scene.Window, old image.Rectangle) {
	if old.Size() != w.Size() {
		w.DiscardPixmap()
	}
	w.DiscardQuads()
	c.AddRepaint(scene.RegionOf(old, w.Geometry()))
	if c.fx != nil {
		c.fx.NotifyWindowGeometryChanged(w, old)
	}
	c.CheckUnredirect()
}

// WindowDamaged reports new content in w.
func (c *Compositor) WindowDamaged(w *scene.Window) {
	if p, ok := w.WindowPixmap().(refresher); ok {
		p.Refresh()
	}
	w.AddRepaintFull()
}

// CheckUnredirect unredirects the topmost window when it is an opaque
// full-screen window and no full-screen effect runs, and redirects the
// previous one when that stops being true.
func (c *Compositor) CheckUnredirect() {
	var candidate *scene.Window
	if c.out != nil && c.cfg.UnredirectFullscreen && (c.fx == nil || !c.fx.HasActiveFullScreenEffect()) {
		candidate = c.fullScreenTop()
	}
	if candidate == c.unredirected {
		return
	}
	if prev := c.unredirected; prev != nil {
		if err := c.out.Redirect(prev.Toplevel().XID); err != nil {
			c.log.Warn("redirect failed", "window", prev.Toplevel().XID, "error", err)
		}
		c.log.Debug("window redirected", "window", prev.Toplevel().XID)
	}
	c.unredirected = candidate
	if candidate != nil {
		if err := c.out.Unredirect(candidate.Toplevel().XID); err != nil {
			c.log.Warn("unredirect failed", "window", candidate.Toplevel().XID, "error", err)
			c.unredirected = nil
		} else {
			c.log.Debug("window unredirected", "window", candidate.Toplevel().XID)
		}
	}
	c.AddRepaintFull()
}

// Unredirected returns the window currently bypassing compositing.
func (c *Compositor) Unredirected() *scene.Window { return c.unredirected }

func (c *Compositor) fullScreenTop() *scene.Window {
	order := c.scene.StackingOrder()
	display := c.scene.Display()
	for i := len(order) - 1; i >= 0; i-- {
		tw := order[i].Toplevel()
		if tw.Deleted() {
			// still painted by a close animation
			return nil
		}
		if !tw.IsShown() || !tw.IsOnCurrentDesktop() {
			continue
		}
		if tw.FullScreen() && order[i].IsOpaque() && display.In(tw.Frame()) {
			return order[i]
		}
		return nil
	}
	return nil
}

// Tick paints one frame if anything needs painting and reports whether it
// did.
func (c *Compositor) Tick() bool {
	if c.unredirected != nil {
		c.damage = scene.Region{}
		c.idle = true
		return false
	}
	if c.cfg.RefreshContents {
		// without damage tracking every frame may have new content
		c.AddRepaintFull()
	}
	if c.damage.IsEmpty() && !c.scene.HasWindowRepaints() {
		c.idle = true
		return false
	}
	if c.idle {
		c.scene.ResetPaintClock()
		c.idle = false
	}

	c.applyStackingOrder()
	if c.cfg.RefreshContents {
		for _, w := range c.scene.StackingOrder() {
			if p, ok := w.WindowPixmap().(refresher); ok {
				p.Refresh()
			}
		}
	}

	damage := c.damage
	c.damage = scene.Region{}
	painted := c.scene.Paint(damage)
	c.frames++

	if c.out != nil && c.renderer != nil {
		if err := c.out.Present(c.renderer.Target(), painted); err != nil {
			c.log.Warn("presenting frame failed", "error", err)
		}
	}
	return true
}
