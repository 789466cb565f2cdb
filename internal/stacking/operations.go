package stacking

import (
	"slices"

	"github.com/1broseidon/stratum/internal/assert"
	"github.com/1broseidon/stratum/internal/window"
)

// Raise moves h to the top of its layer. A transient first raises the
// windows it is transient for, parent before grandparent.
func (s *Stack) Raise(h window.Handle) { s.raise(h, false) }

// RaiseSingle raises h without touching its transient ancestry.
func (s *Stack) RaiseSingle(h window.Handle) { s.raise(h, true) }

func (s *Stack) raise(h window.Handle, nogroup bool) {
	w, ok := s.table.Get(h)
	if !ok {
		return
	}
	s.Batch(func() {
		if !nogroup && w.IsTransient() {
			var ancestry []window.Handle
			for p := w.TransientFor(); p != window.None; {
				pw, ok := s.table.Get(p)
				if !ok || pw.Deleted() {
					break
				}
				ancestry = append(ancestry, p)
				p = pw.TransientFor()
			}
			for _, p := range ancestry {
				s.raise(p, true)
			}
		}
		s.unconstrained.Append(h)
		if !w.IsSpecial() {
			s.mostRecentlyRaised = h
		}
	})
}

// Lower moves h to the bottom of its layer. A transient then lowers the
// rest of its group below it, keeping their relative order.
func (s *Stack) Lower(h window.Handle) { s.lower(h, false) }

// LowerSingle lowers h alone.
func (s *Stack) LowerSingle(h window.Handle) { s.lower(h, true) }

func (s *Stack) lower(h window.Handle, nogroup bool) {
	w, ok := s.table.Get(h)
	if !ok {
		return
	}
	s.Batch(func() {
		s.unconstrained.Prepend(h)
		if !nogroup && w.IsTransient() && w.Group() != nil {
			wins := s.ensureStackingOrder(w.Group().Members())
			for i := len(wins) - 1; i >= 0; i-- {
				if wins[i] != h {
					s.lower(wins[i], true)
				}
			}
		}
		if s.mostRecentlyRaised == h {
			s.mostRecentlyRaised = window.None
		}
	})
}

// ensureStackingOrder sorts handles by their constrained position. Handles
// not yet stacked go last.
func (s *Stack) ensureStackingOrder(handles []window.Handle) []window.Handle {
	out := slices.Clone(handles)
	pos := func(h window.Handle) int {
		if i := slices.Index(s.stacking, h); i >= 0 {
			return i
		}
		return len(s.stacking)
	}
	slices.SortStableFunc(out, func(a, b window.Handle) int { return pos(a) - pos(b) })
	return out
}

// RaiseWithinApplication puts h directly above the topmost other window of
// its application. It never lowers h.
func (s *Stack) RaiseWithinApplication(h window.Handle) {
	if _, ok := s.table.Get(h); !ok {
		return
	}
	s.Batch(func() {
		order := s.unconstrained.Handles()
		for i := len(order) - 1; i >= 0; i-- {
			other := order[i]
			if other == h {
				return
			}
			if s.opts.SameApplication(s.table, other, h) {
				s.unconstrained.Remove(h)
				s.unconstrained.Insert(s.unconstrained.Index(other)+1, h)
				return
			}
		}
	})
}

// LowerWithinApplication puts h directly below the bottommost other window of
// its application, or at the very bottom.
func (s *Stack) LowerWithinApplication(h window.Handle) {
	if _, ok := s.table.Get(h); !ok {
		return
	}
	s.Batch(func() {
		s.unconstrained.Remove(h)
		for i, other := range s.unconstrained.Handles() {
			if s.opts.SameApplication(s.table, other, h) {
				s.unconstrained.Insert(i, h)
				return
			}
		}
		s.unconstrained.Prepend(h)
	})
}

// Restack places h directly beneath under. When under belongs to another
// application, the anchor becomes the bottommost window of under's
// application in h's layer so that application's windows stay together.
func (s *Stack) Restack(h, under window.Handle) {
	if !assert.That(s.unconstrained.Contains(under), s.log, "restack anchor not stacked", "window", h, "under", under) {
		return
	}
	w, ok := s.table.Get(h)
	if !ok {
		return
	}
	if !s.opts.SameApplication(s.table, under, h) {
		for _, other := range s.unconstrained.Handles() {
			ow, ok := s.table.Get(other)
			if !ok || ow.Layer() != w.Layer() {
				continue
			}
			if s.opts.SameApplication(s.table, under, other) {
				if other == h {
					under = window.None
				} else {
					under = other
				}
				break
			}
		}
	}
	if under != window.None {
		s.unconstrained.Remove(h)
		s.unconstrained.Insert(s.unconstrained.Index(under), h)
	}
	s.UpdateStackingOrder(false)
}

// RestackUnderActive stacks h beneath the active window, or raises it when
// there is none.
func (s *Stack) RestackUnderActive(h window.Handle) {
	active := s.table.Active()
	if active == window.None || active == h || !s.unconstrained.Contains(active) {
		s.Raise(h)
		return
	}
	s.Restack(h, active)
}

// RaiseOrLower lowers h when it is already the topmost window of interest
// and raises it otherwise.
func (s *Stack) RaiseOrLower(h window.Handle) {
	w, ok := s.table.Get(h)
	if !ok {
		return
	}
	topmost := window.None
	if mr, ok := s.table.Get(s.mostRecentlyRaised); ok &&
		slices.Contains(s.stacking, s.mostRecentlyRaised) && mr.IsShown() && w.IsOnCurrentDesktop() {
		topmost = s.mostRecentlyRaised
	} else {
		desktop := w.Desktop()
		if desktop == window.AllDesktops {
			desktop = s.table.CurrentDesktop()
		}
		screen := -1
		if s.opts.SeparateScreenFocus {
			screen = w.Screen()
		}
		topmost = s.TopWindowOnDesktop(desktop, screen)
	}
	if topmost == h {
		s.Lower(h)
	} else {
		s.Raise(h)
	}
}

// TopWindowOnDesktop returns the topmost shown, focusable window on desktop,
// restricted to screen unless screen is negative.
func (s *Stack) TopWindowOnDesktop(desktop, screen int) window.Handle {
	for i := len(s.stacking) - 1; i >= 0; i-- {
		w, ok := s.table.Get(s.stacking[i])
		if !ok || w.Deleted() {
			continue
		}
		if !w.IsOnDesktop(desktop) || !w.IsShown() {
			continue
		}
		if screen >= 0 && w.Screen() != screen {
			continue
		}
		if w.IsSpecial() {
			continue
		}
		if t := w.Type(); t == window.TypeNormal || t == window.TypeDialog {
			return w.Handle()
		}
	}
	return window.None
}
