package x11

import (
	"fmt"
	"image"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowProps are the client properties the stacking rules read.
type WindowProps struct {
	Types        []string
	States       []string
	TransientFor xproto.Window
	GroupLeader  xproto.Window
	Class        string
	Instance     string
	Title        string
	PID          int
	// Desktop is -1 for windows on all desktops.
	Desktop int
	// Frame includes decorations, Client does not; both in root coordinates.
	Frame  image.Rectangle
	Client image.Rectangle
	// Opacity is 1 unless _NET_WM_WINDOW_OPACITY says otherwise.
	Opacity float64
	// ARGB windows have an alpha channel and never hide what is below.
	ARGB             bool
	Mapped           bool
	OverrideRedirect bool
}

// WindowProps reads the properties of windowID. Missing optional properties
// take their defaults; only an unreachable window is an error.
func (c *Connection) WindowProps(windowID xproto.Window) (WindowProps, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return WindowProps{}, fmt.Errorf("failed to get window attributes: %w", err)
	}
	client, depth, err := c.windowRect(windowID)
	if err != nil {
		return WindowProps{}, err
	}

	p := WindowProps{
		Mapped:           attrs.MapState == xproto.MapStateViewable,
		OverrideRedirect: attrs.OverrideRedirect,
		Client:           client,
		Frame:            client,
		Opacity:          1,
		Desktop:          -1,
		ARGB:             depth == 32,
	}

	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		p.Types = types
	}
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		p.States = states
	}
	if parent, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil {
		p.TransientFor = parent
	}
	if hints, err := icccm.WmHintsGet(c.XUtil, windowID); err == nil && hints.Flags&icccm.HintWindowGroup != 0 {
		p.GroupLeader = hints.WindowGroup
	}
	if class, err := icccm.WmClassGet(c.XUtil, windowID); err == nil {
		p.Class = strings.TrimSpace(class.Class)
		p.Instance = strings.TrimSpace(class.Instance)
	}
	p.Title = c.windowTitle(windowID)
	if pid, err := ewmh.WmPidGet(c.XUtil, windowID); err == nil {
		p.PID = int(pid)
	}
	if desktop, err := c.WindowDesktop(windowID); err == nil {
		p.Desktop = desktop
	}
	if left, right, top, bottom, err := c.GetFrameExtents(windowID); err == nil {
		p.Frame = image.Rect(client.Min.X-left, client.Min.Y-top, client.Max.X+right, client.Max.Y+bottom)
	}
	if opacity, err := ewmh.WmWindowOpacityGet(c.XUtil, windowID); err == nil {
		p.Opacity = opacity
	}
	return p, nil
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int, err error) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		// No frame extents available, return zeros
		return 0, 0, 0, 0, nil
	}

	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom), nil
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// TopLevels returns the children of the root window, bottom to top.
func (c *Connection) TopLevels() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query tree: %w", err)
	}
	return tree.Children, nil
}

func (c *Connection) windowRect(windowID xproto.Window) (image.Rectangle, byte, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return image.Rectangle{}, 0, fmt.Errorf("failed to get window geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return image.Rectangle{}, 0, fmt.Errorf("failed to translate window coordinates: %w", err)
	}

	x, y := int(translate.DstX), int(translate.DstY)
	return image.Rect(x, y, x+int(geom.Width), y+int(geom.Height)), geom.Depth, nil
}

func (c *Connection) windowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return strings.TrimSpace(title)
	}

	return ""
}
