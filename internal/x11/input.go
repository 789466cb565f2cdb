package x11

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/stratum/internal/effects"
)

// InputHandlers receive the input collected for effects. Any may be nil.
type InputHandlers struct {
	Mouse func(effects.MouseEvent)
	Key   func(effects.KeyEvent)
	// Edge is called with the corner name when the pointer enters a screen
	// edge window.
	Edge func(corner string)
}

// Input owns the windows effects use to take input: a full-screen
// input-only window for pointer interception, a hidden window that receives
// grabbed key events and 1px screen-edge windows in the corners.
type Input struct {
	conn     *Connection
	handlers InputHandlers
	log      *slog.Logger

	intercept      xproto.Window
	interceptShown bool

	grabWindow         xproto.Window
	keyHandlerAttached bool

	edges map[xproto.Window]string
}

var _ effects.InputController = (*Input)(nil)

func NewInput(conn *Connection, handlers InputHandlers, logger *slog.Logger) *Input {
	if logger == nil {
		logger = slog.Default()
	}
	return &Input{
		conn:     conn,
		handlers: handlers,
		log:      logger,
		edges:    make(map[xproto.Window]string),
	}
}

func (in *Input) ShowInterceptionWindow() error {
	if err := in.ensureInterceptWindow(); err != nil {
		return err
	}
	bounds, err := in.conn.ScreenBounds()
	if err != nil {
		return err
	}
	xproto.ConfigureWindow(in.conn.XUtil.Conn(), in.intercept,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(bounds.Min.X), uint32(bounds.Min.Y), uint32(bounds.Dx()), uint32(bounds.Dy())},
	)
	xproto.MapWindow(in.conn.XUtil.Conn(), in.intercept)
	in.interceptShown = true
	in.RaiseInterceptionWindow()
	return nil
}

func (in *Input) HideInterceptionWindow() {
	if in.intercept == 0 || !in.interceptShown {
		return
	}
	xproto.UnmapWindow(in.conn.XUtil.Conn(), in.intercept)
	in.interceptShown = false
}

// RaiseInterceptionWindow puts the interception window above all clients
// and the edge windows above it.
func (in *Input) RaiseInterceptionWindow() {
	if in.interceptShown {
		in.conn.RaiseWindow(in.intercept)
	}
	for wid := range in.edges {
		in.conn.RaiseWindow(wid)
	}
}

func (in *Input) ensureInterceptWindow() error {
	if in.intercept != 0 {
		return nil
	}
	wid, err := in.createInputOnly(image.Rect(0, 0, 1, 1),
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion)
	if err != nil {
		return fmt.Errorf("failed to create interception window: %w", err)
	}
	xu := in.conn.XUtil
	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		in.mouse(effects.MousePress, ev.RootX, ev.RootY, ev.Detail)
	}).Connect(xu, wid)
	xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
		in.mouse(effects.MouseRelease, ev.RootX, ev.RootY, ev.Detail)
	}).Connect(xu, wid)
	xevent.MotionNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		in.mouse(effects.MouseMotion, ev.RootX, ev.RootY, 0)
	}).Connect(xu, wid)
	in.intercept = wid
	return nil
}

func (in *Input) mouse(kind effects.MouseEventKind, x, y int16, button xproto.Button) {
	if in.handlers.Mouse == nil {
		return
	}
	in.handlers.Mouse(effects.MouseEvent{
		Kind:   kind,
		Pos:    image.Pt(int(x), int(y)),
		Button: int(button),
		Time:   time.Now(),
	})
}

// GrabKeyboard grabs the keyboard and sets up key event handling
func (in *Input) GrabKeyboard() error {
	xu := in.conn.XUtil
	if err := in.ensureGrabWindow(); err != nil {
		return err
	}

	grab := func() (*xproto.GrabKeyboardReply, error) {
		cookie := xproto.GrabKeyboard(
			xu.Conn(),
			false,                  // owner_events (report events to grab_window)
			in.conn.Root,           // grab_window (must be viewable)
			xproto.TimeCurrentTime, // time
			xproto.GrabModeAsync,   // pointer_mode
			xproto.GrabModeAsync,   // keyboard_mode
		)
		return cookie.Reply()
	}

	reply, err := grab()
	if err != nil {
		return err
	}

	// An effect triggered from a global hotkey starts while the passive grab
	// of that key is still active. Ungrab and retry.
	if reply.Status == xproto.GrabStatusAlreadyGrabbed {
		xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
		reply, err = grab()
		if err != nil {
			return err
		}
	}

	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("keyboard grab failed with status %d", reply.Status)
	}

	xevent.RedirectKeyEvents(xu, in.grabWindow)

	if !in.keyHandlerAttached {
		xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			in.key(xu, ev.State, ev.Detail, true)
		}).Connect(xu, in.grabWindow)
		xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
			in.key(xu, ev.State, ev.Detail, false)
		}).Connect(xu, in.grabWindow)
		in.keyHandlerAttached = true
	}

	in.log.Debug("keyboard grabbed")
	return nil
}

// UngrabKeyboard releases the keyboard grab
func (in *Input) UngrabKeyboard() {
	xu := in.conn.XUtil

	xproto.UngrabKeyboard(xu.Conn(), xproto.TimeCurrentTime)
	xevent.RedirectKeyEvents(xu, 0)

	if in.keyHandlerAttached && in.grabWindow != 0 {
		xevent.Detach(xu, in.grabWindow)
		in.keyHandlerAttached = false
	}

	in.log.Debug("keyboard released")
}

func (in *Input) key(xu *xgbutil.XUtil, state uint16, keycode xproto.Keycode, pressed bool) {
	if in.handlers.Key == nil {
		return
	}
	in.handlers.Key(effects.KeyEvent{
		Key:       keybind.LookupString(xu, state, keycode),
		Modifiers: state,
		Pressed:   pressed,
	})
}

func (in *Input) ensureGrabWindow() error {
	if in.grabWindow != 0 {
		return nil
	}
	// Never mapped on screen in a visible way; only a target for key
	// callbacks while the keyboard is grabbed.
	wid, err := in.createInputOnly(image.Rect(-1, -1, 0, 0),
		xproto.EventMaskKeyPress|xproto.EventMaskKeyRelease)
	if err != nil {
		return err
	}
	xproto.MapWindow(in.conn.XUtil.Conn(), wid)
	in.grabWindow = wid
	return nil
}

// SetEdges replaces the screen-edge windows with one per named corner:
// top_left, top_right, bottom_left or bottom_right.
func (in *Input) SetEdges(corners []string) error {
	xu := in.conn.XUtil
	for wid := range in.edges {
		xevent.Detach(xu, wid)
		xproto.DestroyWindow(xu.Conn(), wid)
	}
	clear(in.edges)
	if len(corners) == 0 {
		return nil
	}

	bounds, err := in.conn.ScreenBounds()
	if err != nil {
		return err
	}
	for _, corner := range corners {
		r, ok := cornerRect(bounds, corner)
		if !ok {
			return fmt.Errorf("unknown screen corner %q", corner)
		}
		wid, err := in.createInputOnly(r, xproto.EventMaskEnterWindow)
		if err != nil {
			return fmt.Errorf("failed to create edge window: %w", err)
		}
		name := corner
		xevent.EnterNotifyFun(func(*xgbutil.XUtil, xevent.EnterNotifyEvent) {
			if in.handlers.Edge != nil {
				in.handlers.Edge(name)
			}
		}).Connect(xu, wid)
		xproto.MapWindow(xu.Conn(), wid)
		in.conn.RaiseWindow(wid)
		in.edges[wid] = corner
	}
	return nil
}

func cornerRect(bounds image.Rectangle, corner string) (image.Rectangle, bool) {
	var p image.Point
	switch corner {
	case "top_left":
		p = bounds.Min
	case "top_right":
		p = image.Pt(bounds.Max.X-1, bounds.Min.Y)
	case "bottom_left":
		p = image.Pt(bounds.Min.X, bounds.Max.Y-1)
	case "bottom_right":
		p = bounds.Max.Sub(image.Pt(1, 1))
	default:
		return image.Rectangle{}, false
	}
	return image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}, true
}

// createInputOnly creates an unmapped override-redirect input-only window.
func (in *Input) createInputOnly(r image.Rectangle, mask uint32) (xproto.Window, error) {
	conn := in.conn.XUtil.Conn()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		0, // depth (must be 0 for InputOnly)
		wid,
		in.conn.Root,
		int16(r.Min.X), int16(r.Min.Y),
		uint16(r.Dx()), uint16(r.Dy()),
		0, // border_width
		xproto.WindowClassInputOnly,
		xproto.Visualid(0), // CopyFromParent
		// Value list order follows the bit positions of the mask.
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{1, mask},
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

// Close destroys the input windows.
func (in *Input) Close() {
	_ = in.SetEdges(nil)
	conn := in.conn.XUtil.Conn()
	for _, wid := range []xproto.Window{in.intercept, in.grabWindow} {
		if wid != 0 {
			xevent.Detach(in.conn.XUtil, wid)
			xproto.DestroyWindow(conn, wid)
		}
	}
	in.intercept, in.grabWindow = 0, 0
}
