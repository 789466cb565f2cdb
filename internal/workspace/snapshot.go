package workspace

import (
	"fmt"

	"github.com/1broseidon/stratum/internal/window"
)

// StackEntry describes one window of the stacking order.
type StackEntry struct {
	ID           uint32 `json:"id"`
	Class        string `json:"class,omitempty"`
	Title        string `json:"title,omitempty"`
	Type         string `json:"type"`
	Layer        string `json:"layer"`
	Desktop      int    `json:"desktop"`
	Active       bool   `json:"active,omitempty"`
	KeepAbove    bool   `json:"keep_above,omitempty"`
	KeepBelow    bool   `json:"keep_below,omitempty"`
	FullScreen   bool   `json:"fullscreen,omitempty"`
	TransientFor uint32 `json:"transient_for,omitempty"`
	Deleted      bool   `json:"deleted,omitempty"`
}

// Snapshot returns the stacking order, bottom to top. Deleted placeholders
// still being painted are included.
func (w *Workspace) Snapshot() []StackEntry {
	order := w.stack.Order()
	out := make([]StackEntry, 0, len(order))
	for _, h := range order {
		tw, ok := w.table.Get(h)
		if !ok {
			continue
		}
		e := StackEntry{
			ID:         tw.XID,
			Class:      tw.Class(),
			Title:      tw.Title(),
			Type:       tw.Type().String(),
			Layer:      tw.Layer().String(),
			Desktop:    tw.Desktop(),
			Active:     tw.IsActive(),
			KeepAbove:  tw.KeepAbove(),
			KeepBelow:  tw.KeepBelow(),
			FullScreen: tw.FullScreen(),
			Deleted:    tw.Deleted(),
		}
		if p, ok := w.table.Get(tw.TransientFor()); ok {
			e.TransientFor = p.XID
		}
		out = append(out, e)
	}
	return out
}

func (w *Workspace) lookup(xid uint32) (*window.Window, error) {
	if xid == 0 {
		h := w.table.Active()
		if tw, ok := w.table.Get(h); ok {
			return tw, nil
		}
		return nil, fmt.Errorf("no active window")
	}
	tw, ok := w.table.Lookup(xid)
	if !ok {
		return nil, fmt.Errorf("window 0x%x is not managed", xid)
	}
	return tw, nil
}

// RaiseWindow raises a managed window; id 0 means the active window.
func (w *Workspace) RaiseWindow(xid uint32) error {
	tw, err := w.lookup(xid)
	if err != nil {
		return err
	}
	w.stack.Raise(tw.Handle())
	return nil
}

// LowerWindow lowers a managed window; id 0 means the active window.
func (w *Workspace) LowerWindow(xid uint32) error {
	tw, err := w.lookup(xid)
	if err != nil {
		return err
	}
	w.stack.Lower(tw.Handle())
	return nil
}

// RaiseOrLowerWindow lowers the window when it is already the topmost on
// its desktop and raises it otherwise.
func (w *Workspace) RaiseOrLowerWindow(xid uint32) error {
	tw, err := w.lookup(xid)
	if err != nil {
		return err
	}
	w.stack.RaiseOrLower(tw.Handle())
	return nil
}

// Trigger starts a loaded effect. It lets key bindings reach effects
// without going through the effect handler.
func (w *Workspace) Trigger(effect string) error {
	return w.fx.Trigger(effect)
}
