package window

import "slices"

// Group is the set of windows sharing a WM group leader.
type Group struct {
	leader  uint32
	members []Handle
}

// Leader returns the windowing-system id of the group leader.
func (g *Group) Leader() uint32 { return g.leader }

// Members returns the group members in join order.
func (g *Group) Members() []Handle { return slices.Clone(g.members) }

// Table is the arena of windows.
type Table struct {
	next    Handle
	seq     uint64
	windows map[Handle]*Window
	byXID   map[uint32]Handle
	groups  map[uint32]*Group

	active         Handle
	currentDesktop int
}

func NewTable() *Table {
	return &Table{
		windows:        make(map[Handle]*Window),
		byXID:          make(map[uint32]Handle),
		groups:         make(map[uint32]*Group),
		currentDesktop: 0,
	}
}

// Add registers a new window. The window starts in a group led by itself.
func (t *Table) Add(xid uint32, typ Type) *Window {
	t.next++
	t.seq++
	w := &Window{
		handle:  t.next,
		table:   t,
		seq:     t.seq,
		XID:     xid,
		typ:     typ,
		opacity: 1,
		opaque:  true,
	}
	t.windows[w.handle] = w
	if xid != 0 {
		t.byXID[xid] = w.handle
	}
	t.joinGroup(w, xid)
	return w
}

// Get resolves a handle. Removed windows are not found.
func (t *Table) Get(h Handle) (*Window, bool) {
	w, ok := t.windows[h]
	return w, ok
}

// Lookup resolves a managed window by windowing-system id. Deleted
// placeholders are not returned.
func (t *Table) Lookup(xid uint32) (*Window, bool) {
	h, ok := t.byXID[xid]
	if !ok {
		return nil, false
	}
	return t.Get(h)
}

// Len returns the number of windows, placeholders included.
func (t *Table) Len() int { return len(t.windows) }

// Managed returns live windows in creation order.
func (t *Table) Managed() []*Window {
	out := make([]*Window, 0, len(t.windows))
	for _, w := range t.windows {
		if !w.deleted {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b *Window) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

// MarkDeleted turns a window into a placeholder: it keeps its layer,
// geometry and stacking slot but leaves its group and stops being a
// transient or an anchor for transients. The caller holds one reference.
func (t *Table) MarkDeleted(h Handle) {
	w, ok := t.windows[h]
	if !ok || w.deleted {
		return
	}
	w.Layer()
	t.leaveGroup(w)
	w.transientFor = None
	for _, c := range t.windows {
		if c.transientFor == h {
			c.transientFor = None
		}
	}
	w.groupTransient = false
	w.deleted = true
	w.refs = 1
	if t.byXID[w.XID] == h {
		delete(t.byXID, w.XID)
	}
	if t.active == h {
		t.active = None
		t.InvalidateLayers()
	}
}

// Remove drops the window from the table.
func (t *Table) Remove(h Handle) {
	w, ok := t.windows[h]
	if !ok {
		return
	}
	if !w.deleted {
		t.leaveGroup(w)
	}
	if t.byXID[w.XID] == h {
		delete(t.byXID, w.XID)
	}
	for _, other := range t.windows {
		if other.transientFor == h {
			other.transientFor = None
		}
	}
	delete(t.windows, h)
	if t.active == h {
		t.active = None
		t.InvalidateLayers()
	}
	w.table = nil
}

// Active returns the most recently activated window.
func (t *Table) Active() Handle { return t.active }

// SetActive records the most recently activated window. Fullscreen layers
// depend on it, so every cached layer is dropped.
func (t *Table) SetActive(h Handle) {
	if t.active == h {
		return
	}
	t.active = h
	t.InvalidateLayers()
}

func (t *Table) CurrentDesktop() int { return t.currentDesktop }

func (t *Table) SetCurrentDesktop(d int) { t.currentDesktop = d }

// InvalidateLayers drops every cached layer of live windows.
func (t *Table) InvalidateLayers() {
	for _, w := range t.windows {
		w.InvalidateLayer()
	}
}

// SetGroupLeader moves the window into the group led by leader. A zero
// leader puts the window back into its own group.
func (t *Table) SetGroupLeader(h Handle, leader uint32) {
	w, ok := t.windows[h]
	if !ok || w.deleted {
		return
	}
	if leader == 0 {
		leader = w.XID
	}
	if w.group != nil && w.group.leader == leader {
		return
	}
	t.leaveGroup(w)
	t.joinGroup(w, leader)
	t.InvalidateLayers()
}

func (t *Table) joinGroup(w *Window, leader uint32) {
	g, ok := t.groups[leader]
	if !ok || leader == 0 {
		g = &Group{leader: leader}
		if leader != 0 {
			t.groups[leader] = g
		}
	}
	g.members = append(g.members, w.handle)
	w.group = g
}

func (t *Table) leaveGroup(w *Window) {
	g := w.group
	if g == nil {
		return
	}
	g.members = slices.DeleteFunc(g.members, func(m Handle) bool { return m == w.handle })
	if len(g.members) == 0 && t.groups[g.leader] == g {
		delete(t.groups, g.leader)
	}
	w.group = nil
}
