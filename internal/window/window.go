// Package window holds the managed-window table that the stacking solver and
// the compositor share.
//
// Windows refer to each other through Handles. A Handle whose window has been
// removed simply fails to resolve, so stale references never dangle.
// Nothing in this package is safe for concurrent use.
package window

import "image"

// Handle identifies a window inside a Table. The zero Handle is never issued.
type Handle uint32

// None is the empty handle.
const None Handle = 0

// AllDesktops marks a window that is visible on every virtual desktop.
const AllDesktops = -1

// Window is one managed (or recently closed) top-level window.
type Window struct {
	handle Handle
	table  *Table
	seq    uint64

	// XID is the windowing-system identifier of the client window.
	XID uint32

	typ      Type
	class    string
	instance string
	pid      int
	title    string

	frame  image.Rectangle
	client image.Rectangle

	screen  int
	desktop int

	keepAbove  bool
	keepBelow  bool
	fullScreen bool
	modal      bool
	minimized  bool
	hidden     bool
	opaque     bool
	opacity    float64

	transientFor   Handle
	groupTransient bool
	group          *Group

	deleted bool
	refs    int

	layer      Layer
	layerValid bool
}

func (w *Window) Handle() Handle   { return w.handle }
func (w *Window) Type() Type       { return w.typ }
func (w *Window) Class() string    { return w.class }
func (w *Window) Instance() string { return w.instance }
func (w *Window) PID() int         { return w.pid }
func (w *Window) Title() string    { return w.title }
func (w *Window) Screen() int      { return w.screen }
func (w *Window) Desktop() int     { return w.desktop }
func (w *Window) KeepAbove() bool  { return w.keepAbove }
func (w *Window) KeepBelow() bool  { return w.keepBelow }
func (w *Window) FullScreen() bool { return w.fullScreen }
func (w *Window) Modal() bool      { return w.modal }
func (w *Window) Minimized() bool  { return w.minimized }
func (w *Window) Group() *Group    { return w.group }
func (w *Window) Deleted() bool    { return w.deleted }

// Frame is the outer geometry, decorations included, in root coordinates.
func (w *Window) Frame() image.Rectangle { return w.frame }

// Client is the client area in root coordinates. It equals Frame for
// undecorated windows.
func (w *Window) Client() image.Rectangle { return w.client }

// Opaque reports whether the window content has no alpha channel.
func (w *Window) Opaque() bool { return w.opaque }

// Opacity is the _NET_WM_WINDOW_OPACITY value in [0,1].
func (w *Window) Opacity() float64 { return w.opacity }

func (w *Window) IsDesktop() bool { return w.typ == TypeDesktop }
func (w *Window) IsDock() bool    { return w.typ == TypeDock }
func (w *Window) IsSplash() bool  { return w.typ == TypeSplash }
func (w *Window) IsDialog() bool  { return w.typ == TypeDialog }

// IsSpecial reports desktop, dock, splash and toolbar windows. They never
// become the most recently raised window.
func (w *Window) IsSpecial() bool {
	switch w.typ {
	case TypeDesktop, TypeDock, TypeSplash, TypeToolbar:
		return true
	}
	return false
}

// IsActive reports whether the window is the table's active window.
func (w *Window) IsActive() bool {
	return w.table != nil && w.table.active == w.handle
}

// IsShown reports whether the window is mapped and not minimized.
func (w *Window) IsShown() bool {
	return !w.deleted && !w.minimized && !w.hidden
}

func (w *Window) IsOnDesktop(d int) bool {
	return w.desktop == AllDesktops || d == AllDesktops || w.desktop == d
}

func (w *Window) IsOnCurrentDesktop() bool {
	if w.table == nil {
		return true
	}
	return w.IsOnDesktop(w.table.currentDesktop)
}

// TransientFor returns the parent handle of a single-parent transient.
func (w *Window) TransientFor() Handle { return w.transientFor }

// GroupTransient reports a transient for its whole group.
func (w *Window) GroupTransient() bool { return w.groupTransient }

// IsTransient reports either kind of transiency.
func (w *Window) IsTransient() bool {
	return w.transientFor != None || w.groupTransient
}

func (w *Window) SetTitle(title string) { w.title = title }

func (w *Window) SetClass(class, instance string) {
	w.class = class
	w.instance = instance
}

func (w *Window) SetPID(pid int) { w.pid = pid }

func (w *Window) SetType(t Type) {
	if w.typ == t {
		return
	}
	w.typ = t
	w.InvalidateLayer()
}

// SetKeepAbove sets keep-above; it clears keep-below when enabled.
func (w *Window) SetKeepAbove(on bool) {
	w.keepAbove = on
	if on {
		w.keepBelow = false
	}
	w.InvalidateLayer()
}

// SetKeepBelow sets keep-below; it clears keep-above when enabled.
func (w *Window) SetKeepBelow(on bool) {
	w.keepBelow = on
	if on {
		w.keepAbove = false
	}
	w.InvalidateLayer()
}

func (w *Window) SetFullScreen(on bool) {
	w.fullScreen = on
	w.InvalidateLayer()
}

func (w *Window) SetModal(on bool) { w.modal = on }

func (w *Window) SetMinimized(on bool) { w.minimized = on }

// SetHidden marks a window unmapped without being closed, for example while
// it sits on another desktop.
func (w *Window) SetHidden(on bool) { w.hidden = on }

func (w *Window) SetOpaque(on bool) { w.opaque = on }

func (w *Window) SetOpacity(o float64) {
	if o < 0 {
		o = 0
	}
	if o > 1 {
		o = 1
	}
	w.opacity = o
}

// SetGeometry updates frame and client rectangles.
func (w *Window) SetGeometry(frame, client image.Rectangle) {
	w.frame = frame
	if client.Empty() {
		client = frame
	}
	w.client = client
}

// SetScreen moves the window to another output. The active-fullscreen rule
// compares screens, so every cached layer is dropped.
func (w *Window) SetScreen(screen int) {
	if w.screen == screen {
		return
	}
	w.screen = screen
	if w.table != nil {
		w.table.InvalidateLayers()
	}
}

func (w *Window) SetDesktop(d int) { w.desktop = d }

// RefWindow keeps a deleted window alive, typically for a close animation.
func (w *Window) RefWindow() { w.refs++ }

// UnrefWindow drops a reference and reports whether it was the last one.
func (w *Window) UnrefWindow() bool {
	if w.refs > 0 {
		w.refs--
	}
	return w.refs == 0
}

// Refs returns the number of outstanding references.
func (w *Window) Refs() int { return w.refs }
