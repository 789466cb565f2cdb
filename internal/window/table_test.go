package window

import (
	"slices"
	"testing"
)

func TestRemovedHandleDoesNotResolve(t *testing.T) {
	tbl := NewTable()
	w := tbl.Add(10, TypeNormal)
	tbl.Remove(w.Handle())
	if _, ok := tbl.Get(w.Handle()); ok {
		t.Fatalf("removed handle still resolves")
	}
	if _, ok := tbl.Lookup(10); ok {
		t.Fatalf("removed xid still resolves")
	}
	if tbl.Transients(w.Handle()) != nil {
		t.Fatalf("transients of removed window")
	}
}

func TestGroupsFollowMembership(t *testing.T) {
	tbl := NewTable()
	a := tbl.Add(10, TypeNormal)
	b := tbl.Add(11, TypeNormal)
	tbl.SetGroupLeader(b.Handle(), 10)
	if a.Group() != b.Group() {
		t.Fatalf("windows not grouped")
	}
	if got := a.Group().Members(); !slices.Equal(got, []Handle{a.Handle(), b.Handle()}) {
		t.Fatalf("members = %v", got)
	}
	tbl.SetGroupLeader(b.Handle(), 0)
	if a.Group() == b.Group() {
		t.Fatalf("window still grouped after leaving")
	}
}

func TestTransientOwnership(t *testing.T) {
	tbl := NewTable()
	main := tbl.Add(10, TypeNormal)
	child := tbl.Add(11, TypeDialog)
	tbl.SetTransientFor(child.Handle(), main.Handle())
	gt := tbl.Add(12, TypeDialog)
	tbl.SetGroupLeader(child.Handle(), 10)
	tbl.SetGroupLeader(gt.Handle(), 10)
	tbl.SetGroupTransient(gt.Handle(), true)

	if got := tbl.Transients(main.Handle()); !slices.Equal(got, []Handle{child.Handle(), gt.Handle()}) {
		t.Fatalf("Transients(main) = %v", got)
	}
	if !tbl.HasTransient(main.Handle(), gt.Handle(), false) {
		t.Fatalf("main does not own group transient")
	}
	if !tbl.HasTransient(child.Handle(), gt.Handle(), false) {
		t.Fatalf("child does not own group transient")
	}
	if tbl.HasTransient(gt.Handle(), gt.Handle(), true) {
		t.Fatalf("window is its own transient")
	}
	if got := tbl.MainWindows(gt.Handle()); !slices.Equal(got, []Handle{main.Handle(), child.Handle()}) {
		t.Fatalf("MainWindows(gt) = %v", got)
	}
}

func TestTransientCycleRejected(t *testing.T) {
	tbl := NewTable()
	a := tbl.Add(1, TypeNormal)
	b := tbl.Add(2, TypeDialog)
	tbl.SetTransientFor(b.Handle(), a.Handle())
	tbl.SetTransientFor(a.Handle(), b.Handle())
	if a.TransientFor() != None {
		t.Fatalf("cycle accepted")
	}
}

func TestSameApplication(t *testing.T) {
	tbl := NewTable()
	a := tbl.Add(1, TypeNormal)
	a.SetPID(100)
	a.SetClass("konsole", "konsole")
	b := tbl.Add(2, TypeNormal)
	b.SetPID(100)
	b.SetClass("konsole", "konsole")
	c := tbl.Add(3, TypeNormal)
	c.SetPID(200)
	c.SetClass("konsole", "konsole")
	d := tbl.Add(4, TypeDialog)
	tbl.SetTransientFor(d.Handle(), c.Handle())

	cases := []struct {
		x, y Handle
		want bool
	}{
		{a.Handle(), a.Handle(), true},
		{a.Handle(), b.Handle(), true},
		{a.Handle(), c.Handle(), false},
		{c.Handle(), d.Handle(), true},
		{d.Handle(), c.Handle(), true},
		{a.Handle(), d.Handle(), false},
	}
	for _, tc := range cases {
		if got := SameApplication(tbl, tc.x, tc.y); got != tc.want {
			t.Errorf("SameApplication(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestSameApplicationStrictIgnoresProcess(t *testing.T) {
	tbl := NewTable()
	a := tbl.Add(1, TypeNormal)
	a.SetPID(100)
	a.SetClass("konsole", "konsole")
	b := tbl.Add(2, TypeNormal)
	b.SetPID(100)
	b.SetClass("konsole", "konsole")
	d := tbl.Add(3, TypeDialog)
	tbl.SetTransientFor(d.Handle(), a.Handle())

	if SameApplicationStrict(tbl, a.Handle(), b.Handle()) {
		t.Fatal("pid and class matched in strict mode")
	}
	if !SameApplicationStrict(tbl, a.Handle(), d.Handle()) {
		t.Fatal("transient not matched in strict mode")
	}
	tbl.SetGroupLeader(b.Handle(), 1)
	if !SameApplicationStrict(tbl, a.Handle(), b.Handle()) {
		t.Fatal("group member not matched in strict mode")
	}
}

func TestMarkDeletedDetachesTransients(t *testing.T) {
	tbl := NewTable()
	main := tbl.Add(10, TypeNormal)
	child := tbl.Add(11, TypeDialog)
	tbl.SetTransientFor(child.Handle(), main.Handle())

	tbl.MarkDeleted(main.Handle())
	if child.TransientFor() != None || child.IsTransient() {
		t.Fatalf("child transient for %v after parent closed", child.TransientFor())
	}
	if got := tbl.MainWindows(child.Handle()); len(got) != 0 {
		t.Fatalf("MainWindows(child) = %v", got)
	}
}
