//go:build linux

package platform

import (
	"fmt"
	"image"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/stratum/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn     *x11.Connection
	monitors []x11.Monitor
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Connection returns the underlying X11 connection for X11-specific operations.
func (b *LinuxBackend) Connection() *x11.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}

func (b *LinuxBackend) Root() WindowID {
	if b == nil || b.conn == nil {
		return 0
	}
	return WindowID(b.conn.Root)
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	b.monitors = monitors

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{ID: m.ID, Name: m.Name, Bounds: m.Rect()})
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

func (b *LinuxBackend) ScreenBounds() (image.Rectangle, error) {
	conn, err := b.connection()
	if err != nil {
		return image.Rectangle{}, err
	}
	return conn.ScreenBounds()
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

func (b *LinuxBackend) CurrentDesktop() (int, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	return conn.CurrentDesktop()
}

func (b *LinuxBackend) ClientList() ([]WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	clients, err := conn.TopLevels()
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, len(clients))
	for i, c := range clients {
		ids[i] = WindowID(c)
	}
	return ids, nil
}

func (b *LinuxBackend) WindowInfo(id WindowID) (WindowInfo, error) {
	conn, err := b.connection()
	if err != nil {
		return WindowInfo{}, err
	}
	p, err := conn.WindowProps(xproto.Window(id))
	if err != nil {
		return WindowInfo{}, fmt.Errorf("window 0x%x: %w", uint32(id), err)
	}
	if b.monitors == nil {
		if _, err := b.Displays(); err != nil {
			b.monitors = []x11.Monitor{}
		}
	}
	return WindowInfo{
		ID:               id,
		Types:            p.Types,
		States:           p.States,
		TransientFor:     WindowID(p.TransientFor),
		GroupLeader:      WindowID(p.GroupLeader),
		Class:            p.Class,
		Instance:         p.Instance,
		Title:            p.Title,
		PID:              p.PID,
		Desktop:          p.Desktop,
		Screen:           x11.MonitorIndex(b.monitors, p.Frame),
		Frame:            p.Frame,
		Client:           p.Client,
		Opacity:          p.Opacity,
		Opaque:           !p.ARGB,
		Mapped:           p.Mapped,
		OverrideRedirect: p.OverrideRedirect,
	}, nil
}

func (b *LinuxBackend) Watch(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SelectClientEvents(xproto.Window(id))
}

func (b *LinuxBackend) Activate(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Activate(xproto.Window(id))
}

func (b *LinuxBackend) Restack(topToBottom []uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Restack(toWindows(topToBottom))
}

func (b *LinuxBackend) SetClientList(ids []uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetClientList(toWindows(ids))
}

func (b *LinuxBackend) SetClientListStacking(bottomToTop []uint32) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetClientListStacking(toWindows(bottomToTop))
}

// Subscribe selects root events and delivers them to fn. fn runs on the X
// event goroutine.
func (b *LinuxBackend) Subscribe(fn func(Event)) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if err := conn.SelectRootEvents(); err != nil {
		return err
	}
	xu := conn.XUtil
	root := conn.Root

	xevent.MapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		fn(Event{Kind: WindowMapped, Window: WindowID(ev.Window)})
	}).Connect(xu, root)
	xevent.UnmapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		fn(Event{Kind: WindowUnmapped, Window: WindowID(ev.Window)})
	}).Connect(xu, root)
	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		fn(Event{Kind: WindowDestroyed, Window: WindowID(ev.Window)})
	}).Connect(xu, root)
	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if ev.Window == root {
			b.monitors = nil
			fn(Event{Kind: ScreensChanged})
			return
		}
		fn(Event{Kind: WindowConfigured, Window: WindowID(ev.Window)})
	}).Connect(xu, root)

	// Property changes arrive for the root and for every watched client.
	xevent.HookFun(func(xu *xgbutil.XUtil, ev interface{}) bool {
		pn, ok := ev.(xproto.PropertyNotifyEvent)
		if !ok {
			return true
		}
		if name, err := xprop.AtomName(xu, pn.Atom); err == nil {
			fn(propertyEvent(pn.Window, root, name))
		}
		return true
	}).Connect(xu)
	return nil
}

func propertyEvent(win, root xproto.Window, name string) Event {
	if win == root {
		switch name {
		case "_NET_ACTIVE_WINDOW":
			return Event{Kind: ActiveWindowChanged, Property: name}
		case "_NET_CURRENT_DESKTOP":
			return Event{Kind: CurrentDesktopChanged, Property: name}
		}
	}
	return Event{Kind: WindowPropertyChanged, Window: WindowID(win), Property: name}
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func toWindows(ids []uint32) []xproto.Window {
	out := make([]xproto.Window, len(ids))
	for i, id := range ids {
		out[i] = xproto.Window(id)
	}
	return out
}
