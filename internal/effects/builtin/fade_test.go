package builtin

import (
	"image"
	"slices"
	"testing"
	"time"

	"github.com/1broseidon/stratum/internal/window"
)

var smallDisplay = image.Rect(0, 0, 100, 100)

func TestFadeIn(t *testing.T) {
	f := newFixture(t, smallDisplay, map[string]map[string]any{
		"fade": {"fade_in_ms": 100},
	})
	e := f.load("fade")
	w := f.addWindow(image.Rect(0, 0, 40, 40))
	f.h.NotifyWindowAdded(w)
	if !e.IsActive() {
		t.Fatal("fade inactive after window added")
	}

	steps := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0},
		{50 * time.Millisecond, 0.875},
		{50 * time.Millisecond, 1},
	}
	for i, s := range steps {
		f.paint(s.elapsed)
		if got := f.painted(w).Opacity; !near(got, s.want) {
			t.Fatalf("step %d: opacity = %v, want %v", i, got, s.want)
		}
	}
	if e.IsActive() {
		t.Fatal("fade still active after the animation")
	}
}

func TestFadeIgnoresDesktop(t *testing.T) {
	f := newFixture(t, smallDisplay, nil)
	e := f.load("fade")
	tw := f.tbl.Add(99, window.TypeDesktop)
	tw.SetGeometry(smallDisplay, smallDisplay)
	f.h.NotifyWindowAdded(f.s.AddWindow(tw))
	if e.IsActive() {
		t.Fatal("desktop window faded in")
	}
}

func TestFadeOutKeepsClosedWindowUntilDone(t *testing.T) {
	f := newFixture(t, smallDisplay, map[string]map[string]any{
		"fade": {"fade_in_ms": 0, "fade_out_ms": 100},
	})
	f.load("fade")
	w := f.addWindow(image.Rect(0, 0, 40, 40))

	// close as the workspace does: the table reference is dropped after
	// observers had their chance to take one
	f.tbl.MarkDeleted(w.Handle())
	f.h.NotifyWindowClosed(w)
	f.h.UnrefWindow(w)
	if len(f.released) != 0 {
		t.Fatal("window released while fading out")
	}

	f.paint(0)
	if got := f.painted(w).Opacity; !near(got, 1) {
		t.Fatalf("opacity = %v, want 1", got)
	}
	f.paint(50 * time.Millisecond)
	if got := f.painted(w).Opacity; !near(got, 0.875) {
		t.Fatalf("opacity = %v, want 0.875", got)
	}
	f.paint(50 * time.Millisecond)
	if !slices.Equal(f.released, []*window.Window{w.Toplevel()}) {
		t.Fatalf("released = %v", f.released)
	}
}

func TestFadeOutContinuesFromFadeIn(t *testing.T) {
	f := newFixture(t, smallDisplay, map[string]map[string]any{
		"fade": {"fade_in_ms": 100, "fade_out_ms": 200},
	})
	f.load("fade")
	w := f.addWindow(image.Rect(0, 0, 40, 40))
	f.h.NotifyWindowAdded(w)
	f.paint(0)
	f.paint(50 * time.Millisecond)
	before := f.painted(w).Opacity

	f.tbl.MarkDeleted(w.Handle())
	f.h.NotifyWindowClosed(w)
	f.h.UnrefWindow(w)
	f.paint(0)
	if got := f.painted(w).Opacity; !near(got, before) {
		t.Fatalf("opacity jumped from %v to %v", before, got)
	}
}

func TestCrossFadeOnResize(t *testing.T) {
	f := newFixture(t, smallDisplay, map[string]map[string]any{
		"fade": {"fade_in_ms": 0, "cross_fade_ms": 100},
	})
	e := f.load("fade")
	w := f.addWindow(image.Rect(0, 0, 40, 40))
	w.WindowPixmap()

	// a move alone does not cross-fade
	old := w.Geometry()
	w.Toplevel().SetGeometry(image.Rect(10, 10, 50, 50), image.Rect(10, 10, 50, 50))
	f.h.NotifyWindowGeometryChanged(w, old)
	if e.IsActive() {
		t.Fatal("cross-fade started on a move")
	}

	old = w.Geometry()
	w.DiscardPixmap()
	w.Toplevel().SetGeometry(image.Rect(10, 10, 70, 70), image.Rect(10, 10, 70, 70))
	f.h.NotifyWindowGeometryChanged(w, old)
	if !e.IsActive() {
		t.Fatal("cross-fade not started on resize")
	}

	f.paint(0)
	if got := f.painted(w).CrossFadeProgress; !near(got, 0) {
		t.Fatalf("progress = %v, want 0", got)
	}
	f.paint(100 * time.Millisecond)
	if got := f.painted(w).CrossFadeProgress; !near(got, 1) {
		t.Fatalf("progress = %v, want 1", got)
	}
	if e.IsActive() {
		t.Fatal("cross-fade still active")
	}

	// with the effect's reference gone, a new pixmap retires the old one
	w.WindowPixmap()
	if w.PreviousPixmap() != nil {
		t.Fatal("previous pixmap still referenced")
	}
}

func TestFadeUnloadReleasesClosedWindows(t *testing.T) {
	f := newFixture(t, smallDisplay, map[string]map[string]any{
		"fade": {"fade_in_ms": 0},
	})
	f.load("fade")
	w := f.addWindow(image.Rect(0, 0, 40, 40))
	f.tbl.MarkDeleted(w.Handle())
	f.h.NotifyWindowClosed(w)
	f.h.UnrefWindow(w)

	f.h.UnloadEffect("fade")
	if len(f.released) != 1 {
		t.Fatalf("released %d windows, want 1", len(f.released))
	}
}
