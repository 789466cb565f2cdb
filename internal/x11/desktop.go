package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// allDesktops is the _NET_WM_DESKTOP value of a sticky window.
const allDesktops = 0xFFFFFFFF

// CurrentDesktop reads _NET_CURRENT_DESKTOP.
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// WindowDesktop reads _NET_WM_DESKTOP. Sticky windows report -1.
func (c *Connection) WindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == allDesktops {
		return -1, nil
	}
	return int(desktop), nil
}

// Activate asks the window manager to focus and raise windowID. The
// _NET_ACTIVE_WINDOW message is built by hand; the ewmh helper of this
// xgbutil version panics on its own type assertion.
func (c *Connection) Activate(windowID xproto.Window) error {
	atom, err := c.Atom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}

	// source indication 2: a pager acting for the user
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{2, xproto.TimeCurrentTime, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
