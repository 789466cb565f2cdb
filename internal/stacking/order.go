package stacking

import (
	"slices"

	"github.com/1broseidon/stratum/internal/window"
)

// Order is the unconstrained stacking history: bottom first, every window at
// most once, no layer semantics.
type Order struct {
	handles []window.Handle
}

// Handles returns a copy, bottom to top.
func (o *Order) Handles() []window.Handle { return slices.Clone(o.handles) }

func (o *Order) Len() int { return len(o.handles) }

func (o *Order) Index(h window.Handle) int { return slices.Index(o.handles, h) }

func (o *Order) Contains(h window.Handle) bool { return o.Index(h) >= 0 }

// Remove drops h and reports whether it was present.
func (o *Order) Remove(h window.Handle) bool {
	i := o.Index(h)
	if i < 0 {
		return false
	}
	o.handles = slices.Delete(o.handles, i, i+1)
	return true
}

// Append moves h to the top.
func (o *Order) Append(h window.Handle) {
	o.Remove(h)
	o.handles = append(o.handles, h)
}

// Prepend moves h to the bottom.
func (o *Order) Prepend(h window.Handle) {
	o.Remove(h)
	o.handles = slices.Insert(o.handles, 0, h)
}

// Insert places h at index i, counted after h has been removed.
func (o *Order) Insert(i int, h window.Handle) {
	o.Remove(h)
	if i < 0 {
		i = 0
	}
	if i > len(o.handles) {
		i = len(o.handles)
	}
	o.handles = slices.Insert(o.handles, i, h)
}
