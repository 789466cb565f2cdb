package builtin

import (
	"image"
	"slices"
	"testing"
	"time"

	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/window"
)

type presentFixture struct {
	*fixture
	p          *PresentWindows
	w1, w2, w3 *scene.Window
}

func newPresentFixture(t *testing.T) *presentFixture {
	t.Helper()
	f := newFixture(t, image.Rect(0, 0, 1000, 800), map[string]map[string]any{
		"presentwindows": {"spacing": 0, "duration_ms": 250},
	})
	pf := &presentFixture{fixture: f}
	pf.p = f.load("presentwindows").(*PresentWindows)
	pf.w1 = f.addWindow(image.Rect(0, 0, 400, 300))
	pf.w2 = f.addWindow(image.Rect(600, 0, 1000, 300))
	pf.w3 = f.addWindow(image.Rect(0, 500, 400, 800))
	f.tbl.SetActive(pf.w2.Handle())
	return pf
}

func (f *presentFixture) key(name string) {
	f.h.DispatchKeyEvent(effects.KeyEvent{Key: name, Pressed: true})
}

func TestPresentWindowsLayout(t *testing.T) {
	f := newPresentFixture(t)
	if err := f.h.Trigger("presentwindows"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	want := map[*scene.Window]image.Rectangle{
		f.w1: image.Rect(50, 50, 450, 350),
		f.w2: image.Rect(550, 50, 950, 350),
		f.w3: image.Rect(50, 450, 450, 750),
	}
	for w, r := range want {
		if got, ok := f.p.Slot(w); !ok || got != r {
			t.Errorf("slot(%d) = %v, want %v", w.Handle(), got, r)
		}
	}
	if f.p.Selected() != f.w2 {
		t.Fatal("active window not selected")
	}
	if f.h.ActiveFullScreenEffect() != effects.Effect(f.p) {
		t.Fatal("full-screen slot not taken")
	}
	if f.input.shown != 1 || f.input.grabs != 1 {
		t.Fatalf("input shown=%d grabs=%d, want 1 and 1", f.input.shown, f.input.grabs)
	}
	if f.comp.unredirectChecks != 1 {
		t.Fatalf("unredirect checks = %d, want 1", f.comp.unredirectChecks)
	}
}

func TestPresentWindowsLayoutScalesDown(t *testing.T) {
	f := newFixture(t, image.Rect(0, 0, 200, 100), map[string]map[string]any{
		"presentwindows": {"spacing": 0},
	})
	p := f.load("presentwindows").(*PresentWindows)
	big := f.addWindow(image.Rect(0, 0, 400, 400))
	p.Trigger()

	if got, _ := p.Slot(big); got != image.Rect(50, 0, 150, 100) {
		t.Fatalf("slot = %v", got)
	}
}

func TestPresentWindowsAnimatesIntoSlots(t *testing.T) {
	f := newPresentFixture(t)
	f.p.Trigger()

	f.paint(0)
	if d := f.painted(f.w2); !near(d.XTranslate, 0) || !near(d.YTranslate, 0) {
		t.Fatalf("translate at start = %v,%v", d.XTranslate, d.YTranslate)
	}
	f.paint(250 * time.Millisecond)
	d := f.painted(f.w2)
	if !near(d.XTranslate, -50) || !near(d.YTranslate, 50) {
		t.Fatalf("translate = %v,%v, want -50,50", d.XTranslate, d.YTranslate)
	}
	if !near(d.XScale, 1) || !near(d.YScale, 1) {
		t.Fatalf("scale = %v,%v, want 1,1", d.XScale, d.YScale)
	}
	if n := len(f.r.frames); n == 0 || f.r.frames[n-1] != image.Rect(550, 50, 950, 350) {
		t.Fatalf("selection frames = %v", f.r.frames)
	}
}

func TestPresentWindowsKeyboard(t *testing.T) {
	f := newPresentFixture(t)
	f.p.Trigger()
	f.paint(0)
	f.paint(250 * time.Millisecond)

	f.key("Left")
	if f.p.Selected() != f.w1 {
		t.Fatal("Left did not select the previous window")
	}
	f.key("Left")
	if f.p.Selected() != f.w1 {
		t.Fatal("selection moved past the first window")
	}
	f.key("Down")
	if f.p.Selected() != f.w3 {
		t.Fatal("Down did not select the window below")
	}
	f.key("Return")

	if !slices.Equal(f.activated, []*window.Window{f.w3.Toplevel()}) {
		t.Fatalf("activated = %v", f.activated)
	}
	if f.p.Shown() {
		t.Fatal("overview still shown")
	}
	if f.input.ungrabs != 1 || f.input.hidden != 1 {
		t.Fatalf("ungrabs=%d hidden=%d, want 1 and 1", f.input.ungrabs, f.input.hidden)
	}
	if !f.p.IsActive() {
		t.Fatal("closing animation skipped")
	}

	f.paint(250 * time.Millisecond)
	if f.p.IsActive() {
		t.Fatal("still active after closing")
	}
	if f.h.HasActiveFullScreenEffect() {
		t.Fatal("full-screen slot not released")
	}
}

func TestPresentWindowsEscapeActivatesNothing(t *testing.T) {
	f := newPresentFixture(t)
	f.p.Trigger()
	f.key("Escape")
	if f.p.Shown() || len(f.activated) != 0 {
		t.Fatalf("shown=%v activated=%v", f.p.Shown(), f.activated)
	}
}

func TestPresentWindowsMouse(t *testing.T) {
	f := newPresentFixture(t)
	f.p.Trigger()

	f.h.DispatchMouseEvent(effects.MouseEvent{Kind: effects.MouseMotion, Pos: image.Pt(100, 100)})
	if f.p.Selected() != f.w1 {
		t.Fatal("hover did not select")
	}
	f.h.DispatchMouseEvent(effects.MouseEvent{Kind: effects.MousePress, Pos: image.Pt(100, 500), Button: 1})
	if !slices.Equal(f.activated, []*window.Window{f.w3.Toplevel()}) {
		t.Fatalf("activated = %v", f.activated)
	}
	if f.p.Shown() {
		t.Fatal("click did not close the overview")
	}

	f.paint(0)
	f.paint(250 * time.Millisecond)
	f.p.Trigger()
	f.h.DispatchMouseEvent(effects.MouseEvent{Kind: effects.MousePress, Pos: image.Pt(990, 790), Button: 1})
	if len(f.activated) != 1 || f.p.Shown() {
		t.Fatalf("click on empty space: activated=%v shown=%v", f.activated, f.p.Shown())
	}
}

func TestPresentWindowsRelayoutOnClose(t *testing.T) {
	f := newPresentFixture(t)
	f.p.Trigger()

	f.tbl.MarkDeleted(f.w3.Handle())
	f.h.NotifyWindowClosed(f.w3)

	if _, ok := f.p.Slot(f.w3); ok {
		t.Fatal("closed window kept its slot")
	}
	if got, _ := f.p.Slot(f.w1); got != image.Rect(50, 250, 450, 550) {
		t.Fatalf("slot = %v", got)
	}
}

func TestPresentWindowsUnloadWhileShown(t *testing.T) {
	f := newPresentFixture(t)
	f.p.Trigger()
	f.h.UnloadEffect("presentwindows")
	if f.h.HasKeyboardGrab() || f.h.IsMouseInterception() || f.h.HasActiveFullScreenEffect() {
		t.Fatal("unload left input or the full-screen slot held")
	}
}
