package workspace

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/platform"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/window"
)

const root platform.WindowID = 1

var display = image.Rect(0, 0, 400, 300)

type fakeBackend struct {
	windows map[platform.WindowID]platform.WindowInfo
	order   []platform.WindowID
	active  platform.WindowID
	desktop int

	restacks  [][]uint32
	clients   []uint32
	stacking  []uint32
	watched   []platform.WindowID
	activated []platform.WindowID
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{windows: make(map[platform.WindowID]platform.WindowInfo)}
}

func (b *fakeBackend) add(info platform.WindowInfo) {
	if info.Frame.Empty() {
		info.Frame = image.Rect(0, 0, 100, 100)
		info.Client = info.Frame
	}
	if info.Opacity == 0 {
		info.Opacity = 1
	}
	b.windows[info.ID] = info
	b.order = append(b.order, info.ID)
}

func (b *fakeBackend) remove(id platform.WindowID) {
	delete(b.windows, id)
	b.order = slices.DeleteFunc(b.order, func(x platform.WindowID) bool { return x == id })
}

func (b *fakeBackend) Root() platform.WindowID { return root }
func (b *fakeBackend) Displays() ([]platform.Display, error) {
	return []platform.Display{{ID: 0, Name: "fake", Bounds: display}}, nil
}
func (b *fakeBackend) ScreenBounds() (image.Rectangle, error)   { return display, nil }
func (b *fakeBackend) ActiveWindow() (platform.WindowID, error) { return b.active, nil }
func (b *fakeBackend) CurrentDesktop() (int, error)             { return b.desktop, nil }
func (b *fakeBackend) ClientList() ([]platform.WindowID, error) { return slices.Clone(b.order), nil }
func (b *fakeBackend) Watch(id platform.WindowID) error {
	b.watched = append(b.watched, id)
	return nil
}
func (b *fakeBackend) SetClientList(ids []uint32) error         { b.clients = ids; return nil }
func (b *fakeBackend) SetClientListStacking(ids []uint32) error { b.stacking = ids; return nil }
func (b *fakeBackend) Restack(topToBottom []uint32) error {
	b.restacks = append(b.restacks, topToBottom)
	return nil
}
func (b *fakeBackend) Activate(id platform.WindowID) error {
	b.activated = append(b.activated, id)
	return nil
}
func (b *fakeBackend) WindowInfo(id platform.WindowID) (platform.WindowInfo, error) {
	info, ok := b.windows[id]
	if !ok {
		return platform.WindowInfo{}, errors.New("bad window")
	}
	return info, nil
}

type fakePixmap struct{ valid bool }

func (p *fakePixmap) Create()           { p.valid = true }
func (p *fakePixmap) IsValid() bool     { return p.valid }
func (p *fakePixmap) MarkAsDiscarded()  {}
func (p *fakePixmap) IsDiscarded() bool { return false }
func (p *fakePixmap) Release()          { p.valid = false }

type fakeRenderer struct {
	target *image.RGBA
	resize []image.Rectangle
}

func (r *fakeRenderer) CreateWindowPixmap(*scene.Window) scene.Pixmap { return &fakePixmap{} }
func (r *fakeRenderer) PaintBackground(scene.Region)                  {}
func (r *fakeRenderer) PerformPaint(*scene.Window, scene.PaintMask, scene.Region, *scene.WindowPaintData) {
}
func (r *fakeRenderer) PaintEffectFrame(*scene.EffectFrame, scene.Region, float64, float64) {}
func (r *fakeRenderer) Target() *image.RGBA                                                 { return r.target }
func (r *fakeRenderer) SetBackground(color.RGBA)                                            {}
func (r *fakeRenderer) Resize(d image.Rectangle)                                            { r.resize = append(r.resize, d) }

type fakeTracker struct{ tracked map[uint32]bool }

func (t *fakeTracker) TrackWindow(xid uint32) error { t.tracked[xid] = true; return nil }
func (t *fakeTracker) UntrackWindow(xid uint32)     { delete(t.tracked, xid) }

// holder keeps closed windows alive until released by the test.
type holder struct {
	h    *effects.Handler
	held []*scene.Window
}

func (e *holder) IsActive() bool { return len(e.held) > 0 }

func (e *holder) WindowClosed(w *scene.Window) {
	e.h.RefWindow(w)
	e.held = append(e.held, w)
}

func (e *holder) releaseAll() {
	for _, w := range e.held {
		e.h.UnrefWindow(w)
	}
	e.held = nil
}

type fixture struct {
	t       *testing.T
	b       *fakeBackend
	r       *fakeRenderer
	tracker *fakeTracker
	reg     *effects.Registry
	ws      *Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		t:       t,
		b:       newFakeBackend(),
		r:       &fakeRenderer{target: image.NewRGBA(display)},
		tracker: &fakeTracker{tracked: make(map[uint32]bool)},
		reg:     effects.NewRegistry(),
	}
}

func (f *fixture) start(cfg *config.Config) {
	f.t.Helper()
	ws, err := New(Options{
		Backend:  f.b,
		Renderer: f.r,
		Tracker:  f.tracker,
		Registry: f.reg,
		Config:   cfg,
	})
	if err != nil {
		f.t.Fatal(err)
	}
	f.ws = ws
	if err := ws.Sync(); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fixture) window(id platform.WindowID) *window.Window {
	f.t.Helper()
	tw, ok := f.ws.Table().Lookup(uint32(id))
	if !ok {
		f.t.Fatalf("window %d not managed", id)
	}
	return tw
}

// order returns the stacking order as window ids, bottom to top.
func (f *fixture) order() []uint32 {
	var out []uint32
	for _, h := range f.ws.Stack().Order() {
		if tw, ok := f.ws.Table().Get(h); ok {
			out = append(out, tw.XID)
		}
	}
	return out
}

func normal(id platform.WindowID) platform.WindowInfo {
	return platform.WindowInfo{ID: id, Types: []string{"_NET_WM_WINDOW_TYPE_NORMAL"}, Mapped: true, Opaque: true}
}

func TestNewRequiresBackendAndRenderer(t *testing.T) {
	if _, err := New(Options{Renderer: &fakeRenderer{}}); err == nil {
		t.Fatal("New without backend succeeded")
	}
	if _, err := New(Options{Backend: newFakeBackend()}); err == nil {
		t.Fatal("New without renderer succeeded")
	}
}

func TestSyncManagesMappedClients(t *testing.T) {
	f := newFixture(t)
	f.b.add(normal(10))
	override := normal(11)
	override.OverrideRedirect = true
	f.b.add(override)
	unmapped := normal(12)
	unmapped.Mapped = false
	f.b.add(unmapped)
	f.b.add(normal(13))
	f.start(nil)

	if got, want := f.order(), []uint32{10, 13}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if !f.tracker.tracked[10] || !f.tracker.tracked[13] || f.tracker.tracked[11] {
		t.Fatalf("tracked = %v", f.tracker.tracked)
	}
	if got := len(f.b.restacks); got != 1 {
		t.Fatalf("restacks = %d, want 1 for the batched sync", got)
	}
	if want := []uint32{13, 10}; !slices.Equal(f.b.restacks[0], want) {
		t.Fatalf("restack = %v, want %v", f.b.restacks[0], want)
	}
	if want := []uint32{10, 13}; !slices.Equal(f.b.clients, want) || !slices.Equal(f.b.stacking, want) {
		t.Fatalf("client lists = %v / %v", f.b.clients, f.b.stacking)
	}
	if _, ok := f.ws.Scene().Window(f.window(10).Handle()); !ok {
		t.Fatal("managed window has no scene window")
	}
}

func TestMapEventManagesWindow(t *testing.T) {
	f := newFixture(t)
	f.start(nil)

	f.b.add(normal(20))
	f.ws.HandleEvent(platform.Event{Kind: platform.WindowMapped, Window: 20})
	f.ws.HandleEvent(platform.Event{Kind: platform.WindowMapped, Window: 20})

	if got := f.order(); !slices.Equal(got, []uint32{20}) {
		t.Fatalf("order = %v", got)
	}
	if !slices.Equal(f.b.watched, []platform.WindowID{20}) {
		t.Fatalf("watched = %v", f.b.watched)
	}
}

func TestKeepAbovePropertyChangesOrder(t *testing.T) {
	f := newFixture(t)
	f.b.add(normal(10))
	f.b.add(normal(11))
	f.start(nil)

	info := f.b.windows[10]
	info.States = []string{"_NET_WM_STATE_ABOVE"}
	f.b.windows[10] = info
	f.ws.HandleEvent(platform.Event{Kind: platform.WindowPropertyChanged, Window: 10, Property: "_NET_WM_STATE"})

	if got, want := f.order(), []uint32{11, 10}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestUnwatchedPropertyIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.b.add(normal(10))
	f.start(nil)

	info := f.b.windows[10]
	info.Title = "changed"
	f.b.windows[10] = info
	f.ws.HandleEvent(platform.Event{Kind: platform.WindowPropertyChanged, Window: 10, Property: "_NET_WM_ICON"})

	if got := f.window(10).Title(); got == "changed" {
		t.Fatal("unwatched property refreshed the window")
	}
}

func TestTransientWaitsForParent(t *testing.T) {
	f := newFixture(t)
	dialog := normal(21)
	dialog.Types = []string{"_NET_WM_WINDOW_TYPE_DIALOG"}
	dialog.TransientFor = 20
	f.b.add(dialog)
	f.start(nil)

	if f.window(21).IsTransient() {
		t.Fatal("transient resolved before its parent was managed")
	}

	f.b.add(normal(20))
	f.ws.HandleEvent(platform.Event{Kind: platform.WindowMapped, Window: 20})

	parent := f.window(20)
	child := f.window(21)
	if !f.ws.Table().HasTransient(parent.Handle(), child.Handle(), false) {
		t.Fatal("pending transient not attached to its parent")
	}
	if got, want := f.order(), []uint32{20, 21}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestTransientForRootIsGroupTransient(t *testing.T) {
	f := newFixture(t)
	main := normal(30)
	main.GroupLeader = 30
	f.b.add(main)
	dialog := normal(31)
	dialog.TransientFor = root
	dialog.GroupLeader = 30
	f.b.add(dialog)
	f.start(nil)

	m, d := f.window(30), f.window(31)
	if !f.ws.Table().HasTransient(m.Handle(), d.Handle(), false) {
		t.Fatal("group transient not owned by its group")
	}

	// raising the main window keeps the group transient above it
	f.b.add(normal(32))
	f.ws.HandleEvent(platform.Event{Kind: platform.WindowMapped, Window: 32})
	f.ws.Stack().Raise(m.Handle())
	if got, want := f.order(), []uint32{32, 30, 31}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestCloseReleasesWithoutEffects(t *testing.T) {
	f := newFixture(t)
	f.b.add(normal(10))
	f.b.add(normal(11))
	f.start(nil)
	h := f.window(10).Handle()

	f.b.remove(10)
	f.ws.HandleEvent(platform.Event{Kind: platform.WindowDestroyed, Window: 10})

	if _, ok := f.ws.Table().Get(h); ok {
		t.Fatal("closed window still in the table")
	}
	if _, ok := f.ws.Scene().Window(h); ok {
		t.Fatal("closed window still in the scene")
	}
	if got := f.order(); !slices.Equal(got, []uint32{11}) {
		t.Fatalf("order = %v", got)
	}
	if f.tracker.tracked[10] {
		t.Fatal("closed window still tracked")
	}
}

func TestCloseKeepsPlaceholderWhileReferenced(t *testing.T) {
	f := newFixture(t)
	e := &holder{}
	if err := f.reg.Register(effects.Factory{
		Name:             "holder",
		EnabledByDefault: true,
		Create: func(h *effects.Handler, _ config.Group) (effects.Effect, error) {
			e.h = h
			return e, nil
		},
	}); err != nil {
		t.Fatal(err)
	}
	f.b.add(normal(10))
	f.b.add(normal(11))
	f.start(nil)
	h := f.window(10).Handle()

	f.b.remove(10)
	f.ws.HandleEvent(platform.Event{Kind: platform.WindowUnmapped, Window: 10})

	tw, ok := f.ws.Table().Get(h)
	if !ok || !tw.Deleted() {
		t.Fatal("placeholder missing while an effect holds it")
	}
	if got := f.order(); !slices.Equal(got, []uint32{10, 11}) {
		t.Fatalf("placeholder lost its slot: %v", got)
	}
	if _, ok := f.ws.Table().Lookup(10); ok {
		t.Fatal("placeholder still resolvable by id")
	}

	e.releaseAll()
	if _, ok := f.ws.Table().Get(h); ok {
		t.Fatal("placeholder not released after the last reference")
	}
	if got := f.order(); !slices.Equal(got, []uint32{11}) {
		t.Fatalf("order = %v", got)
	}
}

func TestReconcileDropsVanishedWindows(t *testing.T) {
	f := newFixture(t)
	f.b.add(normal(10))
	f.b.add(normal(11))
	f.start(nil)

	f.b.remove(11)
	dropped, err := f.ws.Reconcile()
	if err != nil {
		t.Fatal(err)
	}
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if got := f.order(); !slices.Equal(got, []uint32{10}) {
		t.Fatalf("order = %v", got)
	}
}

func TestActiveWindowIsRaised(t *testing.T) {
	f := newFixture(t)
	f.b.add(normal(10))
	f.b.add(normal(11))
	f.start(nil)

	f.b.active = 10
	f.ws.HandleEvent(platform.Event{Kind: platform.ActiveWindowChanged, Window: root})

	if got := f.ws.Table().Active(); got != f.window(10).Handle() {
		t.Fatalf("active = %v", got)
	}
	if got, want := f.order(), []uint32{11, 10}; !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestDesktopChange(t *testing.T) {
	f := newFixture(t)
	on1 := normal(10)
	on1.Desktop = 1
	f.b.add(on1)
	f.start(nil)

	if f.window(10).IsOnCurrentDesktop() {
		t.Fatal("window on desktop 1 shown on desktop 0")
	}
	f.b.desktop = 1
	f.ws.HandleEvent(platform.Event{Kind: platform.CurrentDesktopChanged, Window: root})
	if !f.window(10).IsOnCurrentDesktop() {
		t.Fatal("desktop change not applied")
	}
}

func TestScreensChangedResizesRenderer(t *testing.T) {
	f := newFixture(t)
	f.start(nil)
	f.ws.Scene().SetDisplay(image.Rect(0, 0, 10, 10))

	f.ws.HandleEvent(platform.Event{Kind: platform.ScreensChanged, Window: root})

	if got := f.ws.Scene().Display(); got != display {
		t.Fatalf("display = %v, want %v", got, display)
	}
	if !slices.Equal(f.r.resize, []image.Rectangle{display}) {
		t.Fatalf("resize = %v", f.r.resize)
	}
}

func TestStrictSameApplication(t *testing.T) {
	f := newFixture(t)
	a := normal(10)
	a.PID, a.Class = 7, "term"
	f.b.add(a)
	f.b.add(normal(11))
	b := normal(12)
	b.PID, b.Class = 7, "term"
	f.b.add(b)
	f.start(nil)

	// the default rule matches windows of one process and class
	f.ws.Stack().RaiseWithinApplication(f.window(10).Handle())
	if got, want := f.order(), []uint32{11, 12, 10}; !slices.Equal(got, want) {
		t.Fatalf("default order = %v, want %v", got, want)
	}

	cfg := config.DefaultConfig()
	cfg.Stacking.SameApplication = config.SameApplicationStrict
	f.ws.Reconfigure(cfg)
	f.ws.Stack().RaiseWithinApplication(f.window(12).Handle())
	if got, want := f.order(), []uint32{11, 12, 10}; !slices.Equal(got, want) {
		t.Fatalf("strict order = %v, want %v", got, want)
	}
}

func TestSnapshotAndRaiseLower(t *testing.T) {
	f := newFixture(t)
	a := normal(10)
	a.Class, a.Title = "term", "shell"
	f.b.add(a)
	dialog := normal(11)
	dialog.Types = []string{"_NET_WM_WINDOW_TYPE_DIALOG"}
	dialog.TransientFor = 10
	f.b.add(dialog)
	f.b.add(normal(12))
	f.start(nil)

	snap := f.ws.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap[0].ID != 10 || snap[0].Class != "term" || snap[0].Layer != "normal" {
		t.Fatalf("bottom entry = %+v", snap[0])
	}
	if snap[1].TransientFor != 10 || snap[1].Type != "dialog" {
		t.Fatalf("dialog entry = %+v", snap[1])
	}

	if err := f.ws.RaiseWindow(10); err != nil {
		t.Fatal(err)
	}
	if got, want := f.order(), []uint32{12, 10, 11}; !slices.Equal(got, want) {
		t.Fatalf("after raise = %v, want %v", got, want)
	}
	if err := f.ws.LowerWindow(12); err != nil {
		t.Fatal(err)
	}
	if got := f.order(); got[0] != 12 {
		t.Fatalf("after lower = %v", got)
	}
	if err := f.ws.RaiseWindow(99); err == nil {
		t.Fatal("raising an unmanaged window succeeded")
	}
	if err := f.ws.LowerWindow(0); err == nil {
		t.Fatal("lowering without an active window succeeded")
	}
}
