package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Restack applies topToBottom to the server: every window is put directly
// below its predecessor. The first window keeps its position.
func (c *Connection) Restack(topToBottom []xproto.Window) error {
	for i := 1; i < len(topToBottom); i++ {
		err := xproto.ConfigureWindowChecked(
			c.XUtil.Conn(),
			topToBottom[i],
			xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
			[]uint32{uint32(topToBottom[i-1]), xproto.StackModeBelow},
		).Check()
		if err != nil {
			return fmt.Errorf("failed to restack window 0x%x: %w", uint32(topToBottom[i]), err)
		}
	}
	return nil
}

// RaiseWindow puts windowID on top of its siblings.
func (c *Connection) RaiseWindow(windowID xproto.Window) {
	xproto.ConfigureWindow(c.XUtil.Conn(), windowID, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

// SetClientList publishes _NET_CLIENT_LIST.
func (c *Connection) SetClientList(ids []xproto.Window) error {
	if err := ewmh.ClientListSet(c.XUtil, ids); err != nil {
		return fmt.Errorf("failed to set _NET_CLIENT_LIST: %w", err)
	}
	return nil
}

// SetClientListStacking publishes _NET_CLIENT_LIST_STACKING, bottom to top.
func (c *Connection) SetClientListStacking(bottomToTop []xproto.Window) error {
	if err := ewmh.ClientListStackingSet(c.XUtil, bottomToTop); err != nil {
		return fmt.Errorf("failed to set _NET_CLIENT_LIST_STACKING: %w", err)
	}
	return nil
}
