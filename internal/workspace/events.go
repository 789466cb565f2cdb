package workspace

import (
	"image"

	"github.com/1broseidon/stratum/internal/platform"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/window"
)

const (
	stateAbove      = "_NET_WM_STATE_ABOVE"
	stateBelow      = "_NET_WM_STATE_BELOW"
	stateFullScreen = "_NET_WM_STATE_FULLSCREEN"
	stateModal      = "_NET_WM_STATE_MODAL"
	stateHidden     = "_NET_WM_STATE_HIDDEN"
)

// watchedProperties are the client properties that change a window's
// entry in the table.
var watchedProperties = map[string]bool{
	"_NET_WM_STATE":          true,
	"_NET_WM_WINDOW_TYPE":    true,
	"_NET_WM_DESKTOP":        true,
	"_NET_WM_WINDOW_OPACITY": true,
	"_NET_FRAME_EXTENTS":     true,
	"_NET_WM_NAME":           true,
	"_NET_WM_PID":            true,
	"WM_TRANSIENT_FOR":       true,
	"WM_HINTS":               true,
	"WM_CLASS":               true,
	"WM_NAME":                true,
}

// HandleEvent applies one windowing-system event.
func (w *Workspace) HandleEvent(ev platform.Event) {
	switch ev.Kind {
	case platform.WindowMapped:
		w.manage(ev.Window)
	case platform.WindowUnmapped, platform.WindowDestroyed:
		if tw, ok := w.table.Lookup(uint32(ev.Window)); ok {
			w.close(tw)
		}
		delete(w.pending, uint32(ev.Window))
	case platform.WindowConfigured:
		if tw, ok := w.table.Lookup(uint32(ev.Window)); ok {
			w.refresh(tw)
		}
	case platform.WindowPropertyChanged:
		if !watchedProperties[ev.Property] {
			return
		}
		if tw, ok := w.table.Lookup(uint32(ev.Window)); ok {
			w.refresh(tw)
		}
	case platform.WindowDamaged:
		if sw := w.sceneWindow(uint32(ev.Window)); sw != nil {
			w.comp.WindowDamaged(sw)
		}
	case platform.ActiveWindowChanged:
		w.updateActive()
	case platform.CurrentDesktopChanged:
		w.updateDesktop()
	case platform.ScreensChanged:
		w.updateScreens()
	}
}

func (w *Workspace) sceneWindow(xid uint32) *scene.Window {
	tw, ok := w.table.Lookup(xid)
	if !ok {
		return nil
	}
	sw, ok := w.scene.Window(tw.Handle())
	if !ok {
		return nil
	}
	return sw
}

// manage starts managing a mapped client. Unmapped and override-redirect
// windows are ignored.
func (w *Workspace) manage(id platform.WindowID) {
	if _, ok := w.table.Lookup(uint32(id)); ok {
		return
	}
	info, err := w.backend.WindowInfo(id)
	if err != nil {
		w.log.Debug("skipping window", "window", uint32(id), "error", err)
		return
	}
	if !info.Mapped || info.OverrideRedirect {
		return
	}

	tw := w.table.Add(uint32(id), window.TypeFromAtoms(info.Types))
	w.apply(tw, info)
	if err := w.backend.Watch(id); err != nil {
		w.log.Debug("watching window failed", "window", tw.XID, "error", err)
	}
	if w.tracker != nil {
		if err := w.tracker.TrackWindow(tw.XID); err != nil {
			w.log.Warn("tracking window content failed", "window", tw.XID, "error", err)
		}
	}
	sw := w.scene.AddWindow(tw)
	w.stack.Batch(func() {
		w.stack.Add(tw.Handle())
		w.resolvePending(tw)
	})
	w.fx.NotifyWindowAdded(sw)
	w.comp.WindowShown(sw)
	w.log.Debug("window managed", "window", tw.XID, "type", tw.Type(), "class", tw.Class())
}

// apply copies info into tw.
func (w *Workspace) apply(tw *window.Window, info platform.WindowInfo) {
	tw.SetType(window.TypeFromAtoms(info.Types))
	tw.SetClass(info.Class, info.Instance)
	tw.SetTitle(info.Title)
	tw.SetPID(info.PID)
	tw.SetDesktop(info.Desktop)
	tw.SetScreen(info.Screen)
	tw.SetGeometry(info.Frame, info.Client)
	tw.SetOpacity(info.Opacity)
	tw.SetOpaque(info.Opaque)

	above := info.HasState(stateAbove)
	tw.SetKeepAbove(above)
	tw.SetKeepBelow(info.HasState(stateBelow) && !above)
	if fs := info.HasState(stateFullScreen); fs != tw.FullScreen() {
		tw.SetFullScreen(fs)
	}
	tw.SetModal(info.HasState(stateModal))
	tw.SetMinimized(info.HasState(stateHidden))

	w.table.SetGroupLeader(tw.Handle(), uint32(info.GroupLeader))
	w.applyTransient(tw, info.TransientFor)
}

// applyTransient resolves WM_TRANSIENT_FOR. A transient for the root window
// is a group transient; one for a window that is not managed yet waits in
// pending until that window appears.
func (w *Workspace) applyTransient(tw *window.Window, parent platform.WindowID) {
	h := tw.Handle()
	delete(w.pending, tw.XID)
	switch {
	case parent == 0 || uint32(parent) == tw.XID:
		w.table.SetGroupTransient(h, false)
		w.table.SetTransientFor(h, window.None)
	case parent == w.backend.Root():
		w.table.SetGroupTransient(h, true)
	default:
		p, ok := w.table.Lookup(uint32(parent))
		if !ok {
			w.table.SetGroupTransient(h, false)
			w.table.SetTransientFor(h, window.None)
			w.pending[tw.XID] = uint32(parent)
			return
		}
		w.table.SetTransientFor(h, p.Handle())
	}
}

// resolvePending attaches transients that were waiting for parent.
func (w *Workspace) resolvePending(parent *window.Window) {
	for child, p := range w.pending {
		if p != parent.XID {
			continue
		}
		delete(w.pending, child)
		if c, ok := w.table.Lookup(child); ok {
			w.table.SetTransientFor(c.Handle(), parent.Handle())
		}
	}
	w.stack.UpdateStackingOrder(false)
}

// refresh re-reads a managed window and reports the changes to the
// compositor and the stack.
func (w *Workspace) refresh(tw *window.Window) {
	info, err := w.backend.WindowInfo(platform.WindowID(tw.XID))
	if err != nil {
		w.log.Debug("refreshing window failed", "window", tw.XID, "error", err)
		return
	}
	oldFrame := tw.Frame()
	oldOpacity := tw.Opacity()
	wasShown := tw.IsShown() && tw.IsOnCurrentDesktop()

	w.apply(tw, info)

	if sw, ok := w.scene.Window(tw.Handle()); ok {
		if tw.Frame() != oldFrame {
			w.comp.WindowGeometryChanged(sw, oldFrame)
		}
		shown := tw.IsShown() && tw.IsOnCurrentDesktop()
		if tw.Opacity() != oldOpacity || shown != wasShown {
			w.comp.AddRepaint(scene.RegionOf(tw.Frame()))
			w.comp.CheckUnredirect()
		}
	}
	w.stack.UpdateStackingOrder(false)
}

// close turns tw into a deleted placeholder. Effects that want to animate
// the close take a reference in WindowClosed; the placeholder is released
// with the last reference.
func (w *Workspace) close(tw *window.Window) {
	h := tw.Handle()
	w.table.MarkDeleted(h)
	w.stack.Closed(h)
	if w.tracker != nil {
		w.tracker.UntrackWindow(tw.XID)
	}
	if sw, ok := w.scene.Window(h); ok {
		w.fx.NotifyWindowClosed(sw)
	}
	w.comp.AddRepaint(scene.RegionOf(tw.Frame()))
	w.log.Debug("window closed", "window", tw.XID)
	if tw.UnrefWindow() {
		w.release(tw)
	}
}

// release drops a deleted window everywhere.
func (w *Workspace) release(tw *window.Window) {
	h := tw.Handle()
	if sw, ok := w.scene.Window(h); ok {
		w.fx.NotifyWindowDeleted(sw)
		w.comp.AddRepaint(scene.RegionOf(sw.Geometry()))
	}
	w.scene.RemoveWindow(h)
	w.stack.Remove(h)
	w.table.Remove(h)
	w.comp.CheckUnredirect()
}

func (w *Workspace) updateActive() {
	id, err := w.backend.ActiveWindow()
	if err != nil {
		w.log.Debug("active window unknown", "error", err)
		return
	}
	tw, ok := w.table.Lookup(uint32(id))
	if !ok {
		w.table.SetActive(window.None)
		w.stack.UpdateStackingOrder(false)
		return
	}
	if w.table.Active() == tw.Handle() {
		return
	}
	w.table.SetActive(tw.Handle())
	w.stack.Raise(tw.Handle())
	if sw, ok := w.scene.Window(tw.Handle()); ok {
		w.fx.NotifyWindowActivated(sw)
	}
}

func (w *Workspace) updateDesktop() {
	d, err := w.backend.CurrentDesktop()
	if err != nil {
		w.log.Debug("current desktop unknown", "error", err)
		return
	}
	if d == w.table.CurrentDesktop() {
		return
	}
	w.table.SetCurrentDesktop(d)
	w.comp.AddRepaintFull()
	w.comp.CheckUnredirect()
	w.stack.UpdateStackingOrder(false)
}

// resizer is implemented by renderers with a resizable frame buffer.
type resizer interface {
	Resize(display image.Rectangle)
}

func (w *Workspace) updateScreens() {
	bounds, err := w.backend.ScreenBounds()
	if err != nil {
		w.log.Warn("reading screen bounds failed", "error", err)
		return
	}
	if bounds != w.scene.Display() {
		w.scene.SetDisplay(bounds)
		if r, ok := w.renderer.(resizer); ok {
			r.Resize(bounds)
		}
		w.log.Info("screen resized", "bounds", bounds)
	}
	for _, tw := range w.table.Managed() {
		w.refresh(tw)
	}
	w.comp.AddRepaintFull()
}
