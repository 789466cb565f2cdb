package builtin

import (
	"image"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/window"
)

type fakePixmap struct{ valid, discarded bool }

func (p *fakePixmap) Create()           { p.valid = true }
func (p *fakePixmap) IsValid() bool     { return p.valid }
func (p *fakePixmap) MarkAsDiscarded()  { p.discarded = true }
func (p *fakePixmap) IsDiscarded() bool { return p.discarded }
func (p *fakePixmap) Release()          { p.valid = false }

// recordingRenderer keeps the paint data each window was last drawn with.
type recordingRenderer struct {
	data   map[window.Handle]scene.WindowPaintData
	frames []image.Rectangle
}

func (r *recordingRenderer) CreateWindowPixmap(*scene.Window) scene.Pixmap { return &fakePixmap{} }
func (r *recordingRenderer) PaintBackground(scene.Region)                  {}
func (r *recordingRenderer) PerformPaint(w *scene.Window, _ scene.PaintMask, _ scene.Region, data *scene.WindowPaintData) {
	r.data[w.Handle()] = *data
}
func (r *recordingRenderer) PaintEffectFrame(f *scene.EffectFrame, _ scene.Region, _, _ float64) {
	r.frames = append(r.frames, f.Geometry)
}

type fakeInput struct {
	shown, hidden, grabs, ungrabs int
}

func (i *fakeInput) ShowInterceptionWindow() error { i.shown++; return nil }
func (i *fakeInput) HideInterceptionWindow()       { i.hidden++ }
func (i *fakeInput) RaiseInterceptionWindow()      {}
func (i *fakeInput) GrabKeyboard() error           { i.grabs++; return nil }
func (i *fakeInput) UngrabKeyboard()               { i.ungrabs++ }

type fakeCompositor struct{ unredirectChecks int }

func (c *fakeCompositor) AddRepaintFull()  {}
func (c *fakeCompositor) CheckUnredirect() { c.unredirectChecks++ }

type fixture struct {
	t         *testing.T
	h         *effects.Handler
	s         *scene.Scene
	tbl       *window.Table
	r         *recordingRenderer
	input     *fakeInput
	comp      *fakeCompositor
	activated []*window.Window
	released  []*window.Window
}

// newFixture builds a handler with the built-in effects registered and
// groups as their config. Nothing is loaded.
func newFixture(t *testing.T, display image.Rectangle, groups map[string]map[string]any) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	for name, values := range groups {
		g, err := config.NewGroup(values)
		if err != nil {
			t.Fatalf("group %s: %v", name, err)
		}
		cfg.Effects[name] = g
	}
	reg := effects.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	f := &fixture{
		t:     t,
		tbl:   window.NewTable(),
		r:     &recordingRenderer{data: make(map[window.Handle]scene.WindowPaintData)},
		input: &fakeInput{},
		comp:  &fakeCompositor{},
	}
	f.s = scene.New(f.r, display, nil)
	f.h = effects.New(effects.Options{
		Scene:      f.s,
		Table:      f.tbl,
		Registry:   reg,
		Config:     cfg,
		Input:      f.input,
		Compositor: f.comp,
		Activate:   func(w *window.Window) { f.activated = append(f.activated, w) },
		Release:    func(w *window.Window) { f.released = append(f.released, w) },
	})
	return f
}

func (f *fixture) load(name string) effects.Effect {
	f.t.Helper()
	if !f.h.LoadEffect(name) {
		f.t.Fatalf("load %s failed", name)
	}
	e, _ := f.h.Effect(name)
	return e
}

func (f *fixture) addWindow(frame image.Rectangle) *scene.Window {
	tw := f.tbl.Add(uint32(f.tbl.Len()+1), window.TypeNormal)
	tw.SetGeometry(frame, frame)
	sw := f.s.AddWindow(tw)
	order := f.handles()
	f.s.SetStackingOrder(append(order, tw.Handle()))
	return sw
}

func (f *fixture) handles() []window.Handle {
	var out []window.Handle
	for _, w := range f.s.StackingOrder() {
		out = append(out, w.Handle())
	}
	return out
}

func (f *fixture) restack(ws ...*scene.Window) {
	var order []window.Handle
	for _, w := range ws {
		order = append(order, w.Handle())
	}
	f.s.SetStackingOrder(order)
	f.h.NotifyStackingOrderChanged()
}

func (f *fixture) activate(w *scene.Window) {
	f.tbl.SetActive(w.Handle())
	f.h.NotifyWindowActivated(w)
}

// paint runs a full-screen cycle elapsed after the previous one.
func (f *fixture) paint(elapsed time.Duration) {
	clear(f.r.data)
	mask := scene.PaintMask(0)
	f.s.PaintScreen(&mask, scene.RegionOf(f.s.Display()), elapsed)
}

func (f *fixture) painted(w *scene.Window) scene.WindowPaintData {
	f.t.Helper()
	d, ok := f.r.data[w.Handle()]
	if !ok {
		f.t.Fatalf("window %d not painted", w.Handle())
	}
	return d
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRegisterRejectsDuplicates(t *testing.T) {
	reg := effects.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	want := []string{"dimscreen", "fade", "presentwindows", "slideback"}
	if got := reg.Names(); !slices.Equal(got, want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	if err := Register(reg); err == nil {
		t.Fatal("second Register succeeded")
	}
}

func TestDefaultConfigLoadsDefaultEffects(t *testing.T) {
	f := newFixture(t, image.Rect(0, 0, 100, 100), nil)
	f.h.Reconfigure(config.DefaultConfig())
	want := []string{"fade", "presentwindows"}
	if got := f.h.LoadedEffects(); !slices.Equal(got, want) {
		t.Fatalf("LoadedEffects = %v, want %v", got, want)
	}
}

func TestReadDuration(t *testing.T) {
	g, err := config.NewGroup(map[string]any{"a": 40, "neg": -5, "bad": "x"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		key  string
		want time.Duration
	}{
		{"a", 40 * time.Millisecond},
		{"neg", 0},
		{"bad", time.Second},
		{"missing", time.Second},
	}
	for _, tt := range tests {
		if got := readDuration(g, tt.key, time.Second); got != tt.want {
			t.Errorf("readDuration(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
