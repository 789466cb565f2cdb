package window

// SetTransientFor makes h a transient of parent. Parent None clears the
// relation; a parent that would create a cycle is ignored.
func (t *Table) SetTransientFor(h, parent Handle) {
	w, ok := t.windows[h]
	if !ok || w.deleted {
		return
	}
	if parent != None {
		p, ok := t.windows[parent]
		if !ok || p.deleted || parent == h {
			return
		}
		for a := p; a != nil; a = t.parent(a) {
			if a.handle == h {
				return
			}
		}
		w.groupTransient = false
	}
	w.transientFor = parent
}

// SetGroupTransient makes h a transient for every other member of its group.
func (t *Table) SetGroupTransient(h Handle, on bool) {
	w, ok := t.windows[h]
	if !ok || w.deleted {
		return
	}
	w.groupTransient = on
	if on {
		w.transientFor = None
	}
}

func (t *Table) parent(w *Window) *Window {
	if w.transientFor == None {
		return nil
	}
	p, ok := t.windows[w.transientFor]
	if !ok {
		return nil
	}
	return p
}

// Transients returns the direct transients of h: windows naming it as
// parent, plus group transients of its group that h owns.
func (t *Table) Transients(h Handle) []Handle {
	w, ok := t.windows[h]
	if !ok || w.deleted {
		return nil
	}
	var out []Handle
	for _, c := range t.Managed() {
		if c.handle != h && t.hasDirectTransient(w, c) {
			out = append(out, c.handle)
		}
	}
	return out
}

// HasTransient reports whether c is a transient of h. With indirect set,
// transients of transients count as well.
func (t *Table) HasTransient(h, c Handle, indirect bool) bool {
	w, ok := t.windows[h]
	if !ok || w.deleted {
		return false
	}
	cw, ok := t.windows[c]
	if !ok || cw.deleted {
		return false
	}
	if !indirect {
		return t.hasDirectTransient(w, cw)
	}
	return t.hasTransientVia(w, cw, map[Handle]bool{})
}

func (t *Table) hasTransientVia(w, c *Window, seen map[Handle]bool) bool {
	if seen[w.handle] {
		return false
	}
	seen[w.handle] = true
	if t.hasDirectTransient(w, c) {
		return true
	}
	for _, th := range t.Transients(w.handle) {
		if tw, ok := t.windows[th]; ok && t.hasTransientVia(tw, c, seen) {
			return true
		}
	}
	return false
}

// hasDirectTransient decides ownership. A group transient belongs to every
// other group member that is neither a group transient itself nor one of
// its own transients.
func (t *Table) hasDirectTransient(w, c *Window) bool {
	if w == c || w.deleted || c.deleted {
		return false
	}
	if c.transientFor == w.handle {
		return true
	}
	if !c.groupTransient || c.group == nil || c.group != w.group {
		return false
	}
	if w.groupTransient {
		return false
	}
	for a := t.parent(w); a != nil; a = t.parent(a) {
		if a == c {
			return false
		}
	}
	return true
}

// MainWindows returns the windows h is directly transient for.
func (t *Table) MainWindows(h Handle) []Handle {
	w, ok := t.windows[h]
	if !ok || w.deleted {
		return nil
	}
	if p := t.parent(w); p != nil {
		return []Handle{p.handle}
	}
	if !w.groupTransient || w.group == nil {
		return nil
	}
	var out []Handle
	for _, m := range w.group.members {
		if mw, ok := t.windows[m]; ok && t.hasDirectTransient(mw, w) {
			out = append(out, m)
		}
	}
	return out
}

// SameApplication is the default same-application predicate: identity,
// transiency in either direction, a shared group, or a shared process and
// WM_CLASS.
func SameApplication(t *Table, a, b Handle) bool {
	if SameApplicationStrict(t, a, b) {
		return true
	}
	wa, okA := t.Get(a)
	wb, okB := t.Get(b)
	if !okA || !okB || wa.deleted || wb.deleted {
		return false
	}
	if wa.pid == 0 || wb.pid == 0 || wa.pid != wb.pid {
		return false
	}
	return wa.class == wb.class && wa.class != ""
}

// SameApplicationStrict only follows transiency and groups.
func SameApplicationStrict(t *Table, a, b Handle) bool {
	if a == b {
		return true
	}
	wa, ok := t.Get(a)
	if !ok || wa.deleted {
		return false
	}
	wb, ok := t.Get(b)
	if !ok || wb.deleted {
		return false
	}
	switch {
	case wa.IsTransient() && t.HasTransient(b, a, true):
		return true
	case wb.IsTransient() && t.HasTransient(a, b, true):
		return true
	}
	return wa.group != nil && wa.group == wb.group
}
