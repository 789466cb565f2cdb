package platform

import "image"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds image.Rectangle
}

// WindowInfo is what the window table needs to know about a client.
type WindowInfo struct {
	ID WindowID
	// Types are _NET_WM_WINDOW_TYPE atom names, most preferred first.
	Types []string
	// States are _NET_WM_STATE atom names.
	States       []string
	TransientFor WindowID
	GroupLeader  WindowID
	Class        string
	Instance     string
	Title        string
	PID          int
	// Desktop is -1 for windows on all desktops.
	Desktop int
	// Screen is the index of the display holding the window centre.
	Screen  int
	Frame   image.Rectangle
	Client  image.Rectangle
	Opacity float64
	// Opaque is false for windows with an alpha channel.
	Opaque           bool
	Mapped           bool
	OverrideRedirect bool
}

// HasState reports whether state is among the window's states.
func (w WindowInfo) HasState(state string) bool {
	for _, s := range w.States {
		if s == state {
			return true
		}
	}
	return false
}

type EventKind int

const (
	WindowMapped EventKind = iota
	WindowUnmapped
	WindowDestroyed
	WindowConfigured
	// WindowPropertyChanged carries the property name.
	WindowPropertyChanged
	// WindowDamaged reports new window content.
	WindowDamaged
	ActiveWindowChanged
	CurrentDesktopChanged
	ScreensChanged
)

func (k EventKind) String() string {
	switch k {
	case WindowMapped:
		return "mapped"
	case WindowUnmapped:
		return "unmapped"
	case WindowDestroyed:
		return "destroyed"
	case WindowConfigured:
		return "configured"
	case WindowPropertyChanged:
		return "property"
	case WindowDamaged:
		return "damaged"
	case ActiveWindowChanged:
		return "active-window"
	case CurrentDesktopChanged:
		return "current-desktop"
	case ScreensChanged:
		return "screens"
	default:
		return "unknown"
	}
}

// Event is a change reported by the windowing system.
type Event struct {
	Kind     EventKind
	Window   WindowID
	Property string
}

// Backend abstracts the window-system operations of the stacking and
// compositing core. Restack, SetClientList and SetClientListStacking make
// every Backend a stacking propagator.
type Backend interface {
	// Root is the root window; a transient for it belongs to its group.
	Root() WindowID
	Displays() ([]Display, error)
	ScreenBounds() (image.Rectangle, error)
	ActiveWindow() (WindowID, error)
	CurrentDesktop() (int, error)
	// ClientList returns the top-level windows, bottom to top. Windows that
	// are unmapped or override-redirect are included; callers filter them
	// with WindowInfo.
	ClientList() ([]WindowID, error)
	WindowInfo(id WindowID) (WindowInfo, error)
	// Watch starts property tracking for a client.
	Watch(id WindowID) error
	Activate(id WindowID) error

	Restack(topToBottom []uint32) error
	SetClientList(ids []uint32) error
	SetClientListStacking(bottomToTop []uint32) error
}
