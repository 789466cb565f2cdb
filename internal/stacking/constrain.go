package stacking

import (
	"slices"

	"github.com/1broseidon/stratum/internal/assert"
	"github.com/1broseidon/stratum/internal/window"
)

// Constrain derives the constrained stacking order, bottom to top, from the
// unconstrained one. Windows are grouped into layers in encounter order, then
// transients are lifted above the windows they belong to. Handles that no
// longer resolve are dropped.
func Constrain(t *window.Table, unconstrained []window.Handle) []window.Handle {
	var buckets [window.NumLayers][]window.Handle
	minimum := make(map[int]map[*window.Group]window.Layer)

	for _, h := range unconstrained {
		w, ok := t.Get(h)
		if !ok {
			continue
		}
		l := w.Layer()
		if g := w.Group(); g != nil {
			perScreen := minimum[w.Screen()]
			if perScreen == nil {
				perScreen = make(map[*window.Group]window.Layer)
				minimum[w.Screen()] = perScreen
			}
			// A window stacked above a fullscreen member of its group
			// stays above it.
			if prev, ok := perScreen[g]; ok && prev == window.LayerActive && l > window.LayerBelow {
				l = window.LayerActive
			}
			perScreen[g] = l
		}
		buckets[l] = append(buckets[l], h)
	}

	stacking := make([]window.Handle, 0, len(unconstrained))
	for _, b := range buckets {
		stacking = append(stacking, b...)
	}
	return liftTransients(t, stacking)
}

func liftTransients(t *window.Table, stacking []window.Handle) []window.Handle {
	for i := len(stacking) - 1; i >= 0; {
		current, ok := t.Get(stacking[i])
		if !ok || current.Deleted() || !current.IsTransient() {
			i--
			continue
		}
		i2 := anchorIndex(t, stacking, i, current)
		if i2 < 0 {
			i--
			continue
		}
		h, anchor := stacking[i], stacking[i2]
		stacking = slices.Delete(stacking, i, i+1)
		i--
		i2--
		if len(t.Transients(h)) > 0 {
			// It may now sit above its own transients; rescan from here.
			i = i2
		}
		stacking = slices.Insert(stacking, i2+1, h)
		assert.That(stacking[i2] == anchor && stacking[i2+1] == h, nil,
			"transient not directly above its anchor", "transient", h, "anchor", anchor)
	}
	return stacking
}

// anchorIndex finds, scanning from the top, the window the transient at i
// must be kept above. It returns -1 when the transient is reached first.
func anchorIndex(t *window.Table, stacking []window.Handle, i int, current *window.Window) int {
	for i2 := len(stacking) - 1; i2 >= 0; i2-- {
		if stacking[i2] == stacking[i] {
			return -1
		}
		if current.GroupTransient() {
			if t.HasTransient(stacking[i2], stacking[i], true) && KeepTransientAbove(t, stacking[i2], stacking[i]) {
				return i2
			}
			continue
		}
		if stacking[i2] == current.TransientFor() && KeepTransientAbove(t, stacking[i2], stacking[i]) {
			return i2
		}
	}
	return -1
}

// KeepTransientAbove reports whether transient must be stacked above parent.
func KeepTransientAbove(t *window.Table, parent, transient window.Handle) bool {
	p, ok := t.Get(parent)
	if !ok || p.Deleted() {
		return false
	}
	c, ok := t.Get(transient)
	if !ok {
		return false
	}
	// Splash screens do not cover dialogs.
	if c.IsSplash() && p.IsDialog() {
		return false
	}
	// Non-modal dialogs that are transient for the whole group behave like
	// independent windows.
	if c.IsDialog() && !c.Modal() && c.GroupTransient() {
		return false
	}
	// Docks are kept high already; their transients would end up too high.
	if p.IsDock() {
		return false
	}
	return true
}
