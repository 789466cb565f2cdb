package scene

import (
	"image"

	"github.com/1broseidon/stratum/internal/window"
)

// Window is the scene's view of a managed or deleted window.
type Window struct {
	scene *Scene
	win   *window.Window

	current  Pixmap
	previous Pixmap
	// prevRefs counts holders of the previous pixmap. The window holds one
	// itself from discard until a newer pixmap has been created.
	prevRefs int
	ownRef   bool

	quads      QuadList
	quadsValid bool

	disabled DisableReason
	repaints Region

	data map[DataRole]any
}

// DataRole keys per-window data attached by effects.
type DataRole int

const (
	// RoleElevated is set while an effect elevates the window.
	RoleElevated DataRole = iota
	// RoleEffectBase and later roles are free for effects.
	RoleEffectBase DataRole = 100
)

// Toplevel returns the underlying window.
func (w *Window) Toplevel() *window.Window { return w.win }

func (w *Window) Handle() window.Handle { return w.win.Handle() }

func (w *Window) Scene() *Scene { return w.scene }

// Geometry is the frame rectangle in root coordinates.
func (w *Window) Geometry() image.Rectangle { return w.win.Frame() }

func (w *Window) Pos() image.Point { return w.win.Frame().Min }

func (w *Window) Size() image.Point { return w.win.Frame().Size() }

// Shape is the frame in window-local coordinates.
func (w *Window) Shape() Region {
	return RegionOf(image.Rectangle{Max: w.Size()})
}

// ClientShape is the client area in window-local coordinates.
func (w *Window) ClientShape() Region {
	c := w.win.Client().Sub(w.Pos())
	return RegionOf(c.Intersect(image.Rectangle{Max: w.Size()}))
}

// IsOpaque reports whether the window hides everything beneath it.
func (w *Window) IsOpaque() bool {
	return w.win.Opaque() && w.win.Opacity() >= 1
}

// WindowPixmap returns the content to draw: the current pixmap if it is, or
// can be made, valid, otherwise the previous generation (possibly nil).
func (w *Window) WindowPixmap() Pixmap {
	if w.current == nil {
		w.current = w.scene.renderer.CreateWindowPixmap(w)
		if w.current == nil {
			return w.previous
		}
	}
	if w.current.IsValid() {
		return w.current
	}
	w.current.Create()
	if w.current.IsValid() {
		if w.ownRef {
			w.ownRef = false
			w.UnreferencePreviousPixmap()
		}
		return w.current
	}
	return w.previous
}

// PreviousPixmap returns the discarded generation, if any.
func (w *Window) PreviousPixmap() Pixmap { return w.previous }

// DiscardPixmap retires the current pixmap. A valid one becomes the previous
// generation until a newer one exists; an invalid one is dropped.
func (w *Window) DiscardPixmap() {
	if w.current == nil {
		return
	}
	if !w.current.IsValid() {
		w.current.Release()
		w.current = nil
		return
	}
	if w.previous != nil {
		w.previous.Release()
		if w.ownRef {
			w.prevRefs--
		}
	}
	w.previous = w.current
	w.previous.MarkAsDiscarded()
	w.current = nil
	w.prevRefs++
	w.ownRef = true
}

// ReferencePreviousPixmap keeps the previous generation alive, typically
// for a cross-fade.
func (w *Window) ReferencePreviousPixmap() {
	if w.previous != nil && w.previous.IsDiscarded() {
		w.prevRefs++
	}
}

// UnreferencePreviousPixmap drops a reference; the last one releases the
// previous generation.
func (w *Window) UnreferencePreviousPixmap() {
	if w.previous == nil || !w.previous.IsDiscarded() {
		return
	}
	w.prevRefs--
	if w.prevRefs <= 0 {
		w.previous.Release()
		w.previous = nil
		w.prevRefs = 0
		w.ownRef = false
	}
}

// PixmapState reports the lifecycle state.
func (w *Window) PixmapState() PixmapState {
	switch {
	case w.previous != nil && w.previous.IsDiscarded() && (w.current == nil || !w.current.IsValid()):
		return PixmapDiscardedPendingUnref
	case w.current != nil && w.current.IsValid():
		return PixmapValid
	}
	return NoPixmap
}

func (w *Window) releasePixmaps() {
	if w.current != nil {
		w.current.Release()
		w.current = nil
	}
	if w.previous != nil {
		w.previous.Release()
		w.previous = nil
	}
	w.prevRefs = 0
	w.ownRef = false
}

// BuildQuads splits the window into a contents quad and decoration quads
// and runs them through the effects chain. The result is cached until the
// geometry changes or force is set.
func (w *Window) BuildQuads(force bool) QuadList {
	if w.quadsValid && !force {
		return w.quads
	}
	var quads QuadList
	client := w.ClientShape()
	if client.Equal(w.Shape()) {
		quads = makeQuads(QuadContents, w.Shape())
	} else {
		quads = makeQuads(QuadContents, client)
		quads = append(quads, makeQuads(QuadDecoration, w.Shape().Subtract(client))...)
	}
	w.scene.effects.BuildQuads(w, &quads)
	w.quads = quads
	w.quadsValid = true
	return quads
}

// DiscardQuads drops the quad cache.
func (w *Window) DiscardQuads() { w.quadsValid = false }

func (w *Window) IsPaintingEnabled() bool { return w.disabled == 0 }

func (w *Window) EnablePainting(reason DisableReason) { w.disabled &^= reason }

func (w *Window) DisablePainting(reason DisableReason) { w.disabled |= reason }

// ResetPaintingEnabled recomputes the reasons the window is hidden.
func (w *Window) ResetPaintingEnabled() {
	w.disabled = 0
	if w.win.Deleted() {
		w.disabled |= PaintDisabledByDelete
	}
	if !w.win.IsOnCurrentDesktop() {
		w.disabled |= PaintDisabledByDesktop
	}
	if w.win.Minimized() {
		w.disabled |= PaintDisabledByMinimize
	}
}

// AddRepaint schedules a repaint of r, in window-local coordinates.
func (w *Window) AddRepaint(r Region) {
	w.repaints = w.repaints.Union(r.Translate(w.Pos()))
}

// AddRepaintFull schedules a repaint of the whole window.
func (w *Window) AddRepaintFull() { w.AddRepaint(w.Shape()) }

// Repaints returns pending repaints in root coordinates.
func (w *Window) Repaints() Region { return w.repaints }

func (w *Window) resetRepaints() { w.repaints = Region{} }

func (w *Window) Data(role DataRole) any {
	return w.data[role]
}

// SetData attaches v under role; a nil v removes it.
func (w *Window) SetData(role DataRole, v any) {
	if v == nil {
		delete(w.data, role)
		return
	}
	if w.data == nil {
		w.data = make(map[DataRole]any)
	}
	w.data[role] = v
}
