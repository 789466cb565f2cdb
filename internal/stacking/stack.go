// Package stacking keeps the window stacking order.
//
// Stack records raise and lower requests in an unconstrained order and
// derives the constrained order from it with Constrain: windows grouped by
// layer, transients above the windows they belong to. Every change is pushed
// to the windowing system, the compositor and registered observers.
//
// A Stack is driven from a single event loop and is not safe for concurrent
// use.
package stacking

import (
	"log/slog"
	"slices"

	"github.com/1broseidon/stratum/internal/assert"
	"github.com/1broseidon/stratum/internal/window"
)

// Propagator publishes the stacking order to the windowing system.
type Propagator interface {
	// Restack stacks client windows top to bottom.
	Restack(topToBottom []uint32) error
	// SetClientList publishes managed windows in creation order.
	SetClientList(ids []uint32) error
	// SetClientListStacking publishes managed windows bottom to top.
	SetClientListStacking(bottomToTop []uint32) error
}

// Repainter schedules compositor repaints.
type Repainter interface {
	AddRepaintFull()
}

// InputStacker re-raises input-only helper windows after a batch of
// stacking changes.
type InputStacker interface {
	CheckInputWindowStacking()
}

// SameApplicationFunc decides whether two windows belong to one application.
type SameApplicationFunc func(t *window.Table, a, b window.Handle) bool

type Options struct {
	Propagator   Propagator
	Repainter    Repainter
	InputStacker InputStacker

	// SameApplication defaults to window.SameApplication.
	SameApplication SameApplicationFunc

	// SeparateScreenFocus restricts RaiseOrLower's top-window lookup to the
	// window's own screen.
	SeparateScreenFocus bool

	Logger *slog.Logger
}

// Stack coordinates the unconstrained and constrained stacking orders.
type Stack struct {
	table *window.Table
	opts  Options
	log   *slog.Logger

	unconstrained Order
	stacking      []window.Handle

	blocked               int
	blockedPropagatingNew bool
	forceRestacking       bool

	mostRecentlyRaised window.Handle

	observers []func()
}

func New(t *window.Table, opts Options) *Stack {
	if opts.SameApplication == nil {
		opts.SameApplication = window.SameApplication
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Stack{table: t, opts: opts, log: logger}
}

// SetSeparateScreenFocus toggles per-screen top-window lookup.
func (s *Stack) SetSeparateScreenFocus(on bool) { s.opts.SeparateScreenFocus = on }

// SetSameApplication replaces the same-application predicate; nil restores
// the default.
func (s *Stack) SetSameApplication(fn SameApplicationFunc) {
	if fn == nil {
		fn = window.SameApplication
	}
	s.opts.SameApplication = fn
}

// OnStackingOrderChanged registers fn to run after every propagated change.
func (s *Stack) OnStackingOrderChanged(fn func()) {
	s.observers = append(s.observers, fn)
}

// Order returns the constrained stacking order, bottom to top.
func (s *Stack) Order() []window.Handle { return slices.Clone(s.stacking) }

// Unconstrained returns the raise history, bottom to top.
func (s *Stack) Unconstrained() []window.Handle { return s.unconstrained.Handles() }

// MostRecentlyRaised returns the last raised non-special window.
func (s *Stack) MostRecentlyRaised() window.Handle { return s.mostRecentlyRaised }

// Add stacks a newly managed window on top and announces it.
func (s *Stack) Add(h window.Handle) {
	s.unconstrained.Append(h)
	if !slices.Contains(s.stacking, h) {
		s.stacking = append(s.stacking, h)
	}
	s.UpdateStackingOrder(true)
}

// Closed records that h became a deleted placeholder. It stays stacked but
// leaves the client lists.
func (s *Stack) Closed(h window.Handle) {
	if s.mostRecentlyRaised == h {
		s.mostRecentlyRaised = window.None
	}
	s.UpdateStackingOrder(true)
}

// Remove drops h from both orders.
func (s *Stack) Remove(h window.Handle) {
	s.unconstrained.Remove(h)
	s.stacking = slices.DeleteFunc(s.stacking, func(x window.Handle) bool { return x == h })
	if s.mostRecentlyRaised == h {
		s.mostRecentlyRaised = window.None
	}
	s.UpdateStackingOrder(true)
}

// BlockStackingUpdates defers recomputation while the block count is
// positive. The final unblock recomputes once, announcing new windows if any
// blocked update asked for it, then re-raises input-only helper windows.
func (s *Stack) BlockStackingUpdates(block bool) {
	if block {
		if s.blocked == 0 {
			s.blockedPropagatingNew = false
		}
		s.blocked++
		return
	}
	if !assert.That(s.blocked > 0, s.log, "unbalanced stacking unblock") {
		return
	}
	s.blocked--
	if s.blocked == 0 {
		s.UpdateStackingOrder(s.blockedPropagatingNew)
		if s.opts.InputStacker != nil {
			s.opts.InputStacker.CheckInputWindowStacking()
		}
	}
}

// Batch runs fn with stacking updates blocked.
func (s *Stack) Batch(fn func()) {
	s.BlockStackingUpdates(true)
	defer s.BlockStackingUpdates(false)
	fn()
}

// ForceRestacking propagates the order even when it did not change.
func (s *Stack) ForceRestacking() {
	s.forceRestacking = true
	s.Batch(func() {})
}

// UpdateStackingOrder recomputes the constrained order and propagates it if
// it changed, a restack was forced, or new windows must be announced.
func (s *Stack) UpdateStackingOrder(propagateNew bool) {
	if s.blocked > 0 {
		if propagateNew {
			s.blockedPropagatingNew = true
		}
		return
	}
	next := Constrain(s.table, s.unconstrained.Handles())
	changed := s.forceRestacking || !slices.Equal(next, s.stacking)
	s.forceRestacking = false
	s.stacking = next
	if !changed && !propagateNew {
		return
	}
	s.propagate(propagateNew)
	for _, fn := range s.observers {
		fn()
	}
	if s.opts.Repainter != nil {
		s.opts.Repainter.AddRepaintFull()
	}
}

func (s *Stack) propagate(propagateNew bool) {
	p := s.opts.Propagator
	if p == nil {
		return
	}
	topToBottom := make([]uint32, 0, len(s.stacking))
	bottomToTop := make([]uint32, 0, len(s.stacking))
	for i := len(s.stacking) - 1; i >= 0; i-- {
		if w, ok := s.table.Get(s.stacking[i]); ok && !w.Deleted() {
			topToBottom = append(topToBottom, w.XID)
		}
	}
	for i := len(topToBottom) - 1; i >= 0; i-- {
		bottomToTop = append(bottomToTop, topToBottom[i])
	}
	if err := p.Restack(topToBottom); err != nil {
		s.log.Warn("restack failed", "error", err)
	}
	if propagateNew {
		if err := p.SetClientList(s.clientList()); err != nil {
			s.log.Warn("setting client list failed", "error", err)
		}
	}
	if err := p.SetClientListStacking(bottomToTop); err != nil {
		s.log.Warn("setting stacking client list failed", "error", err)
	}
}

// clientList lists managed windows in creation order, desktops first.
func (s *Stack) clientList() []uint32 {
	managed := s.table.Managed()
	out := make([]uint32, 0, len(managed))
	for _, w := range managed {
		if w.IsDesktop() {
			out = append(out, w.XID)
		}
	}
	for _, w := range managed {
		if !w.IsDesktop() {
			out = append(out, w.XID)
		}
	}
	return out
}
