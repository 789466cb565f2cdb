package effects

import (
	"errors"
	"image"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/window"
)

type fakePixmap struct{ valid bool }

func (p *fakePixmap) Create()           { p.valid = true }
func (p *fakePixmap) IsValid() bool     { return p.valid }
func (p *fakePixmap) MarkAsDiscarded()  {}
func (p *fakePixmap) IsDiscarded() bool { return false }
func (p *fakePixmap) Release()          { p.valid = false }

type fakeRenderer struct {
	paints []window.Handle
	frames int
}

func (r *fakeRenderer) CreateWindowPixmap(*scene.Window) scene.Pixmap { return &fakePixmap{} }
func (r *fakeRenderer) PaintBackground(scene.Region)                  {}
func (r *fakeRenderer) PerformPaint(w *scene.Window, _ scene.PaintMask, _ scene.Region, _ *scene.WindowPaintData) {
	r.paints = append(r.paints, w.Handle())
}
func (r *fakeRenderer) PaintEffectFrame(*scene.EffectFrame, scene.Region, float64, float64) {
	r.frames++
}

type fakeInput struct {
	shown, hidden, raised int
	grabs, ungrabs        int
	grabErr               error
}

func (i *fakeInput) ShowInterceptionWindow() error { i.shown++; return nil }
func (i *fakeInput) HideInterceptionWindow()       { i.hidden++ }
func (i *fakeInput) RaiseInterceptionWindow()      { i.raised++ }
func (i *fakeInput) GrabKeyboard() error {
	if i.grabErr != nil {
		return i.grabErr
	}
	i.grabs++
	return nil
}
func (i *fakeInput) UngrabKeyboard() { i.ungrabs++ }

type fakeCompositor struct {
	repaints, unredirectChecks int
}

func (c *fakeCompositor) AddRepaintFull()  { c.repaints++ }
func (c *fakeCompositor) CheckUnredirect() { c.unredirectChecks++ }

type fixture struct {
	h     *Handler
	r     *fakeRenderer
	tbl   *window.Table
	input *fakeInput
	comp  *fakeCompositor
	reg   *Registry
	log   []string
}

var display = image.Rect(0, 0, 100, 100)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		r:     &fakeRenderer{},
		tbl:   window.NewTable(),
		input: &fakeInput{},
		comp:  &fakeCompositor{},
		reg:   NewRegistry(),
	}
	s := scene.New(f.r, display, nil)
	f.h = New(Options{
		Scene:      s,
		Table:      f.tbl,
		Registry:   f.reg,
		Input:      f.input,
		Compositor: f.comp,
	})
	return f
}

// addWindow adds a window on top of the scene's stacking order.
func (f *fixture) addWindow(frame image.Rectangle) *scene.Window {
	tw := f.tbl.Add(uint32(f.tbl.Len()+1), window.TypeNormal)
	tw.SetGeometry(frame, frame)
	s := f.h.Scene()
	sw := s.AddWindow(tw)
	var order []window.Handle
	for _, w := range s.StackingOrder() {
		order = append(order, w.Handle())
	}
	s.SetStackingOrder(append(order, tw.Handle()))
	return sw
}

func (f *fixture) paint() {
	f.h.Scene().Paint(scene.RegionOf(display))
}

// register adds a factory that creates e.
func (f *fixture) register(t *testing.T, name string, ordering int, e Effect) {
	t.Helper()
	if err := f.reg.Register(Factory{
		Name:     name,
		Ordering: ordering,
		Create:   func(*Handler, config.Group) (Effect, error) { return e, nil },
	}); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
}

// recorder logs its hooks into the fixture and always continues the chain.
type recorder struct {
	name   string
	f      *fixture
	active bool
}

func (e *recorder) IsActive() bool { return e.active }

func (e *recorder) PaintWindow(h *Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	e.f.log = append(e.f.log, e.name)
	h.PaintWindow(w, mask, region, data)
}

// swallower paints nothing and stops the chain.
type swallower struct {
	f *fixture
}

func (e *swallower) IsActive() bool { return true }

func (e *swallower) PaintWindow(*Handler, *scene.Window, scene.PaintMask, scene.Region, *scene.WindowPaintData) {
	e.f.log = append(e.f.log, "swallow")
}

func TestPaintWithoutEffectsFallsThrough(t *testing.T) {
	f := newFixture(t)
	a := f.addWindow(image.Rect(0, 0, 40, 40))
	b := f.addWindow(image.Rect(50, 50, 90, 90))

	f.paint()

	want := []window.Handle{a.Handle(), b.Handle()}
	if !slices.Equal(f.r.paints, want) {
		t.Fatalf("paints = %v, want %v", f.r.paints, want)
	}
}

func TestChainRunsInOrderingThenLoadOrder(t *testing.T) {
	f := newFixture(t)
	f.register(t, "late", 10, &recorder{name: "late", f: f, active: true})
	f.register(t, "first", 5, &recorder{name: "first", f: f, active: true})
	f.register(t, "second", 5, &recorder{name: "second", f: f, active: true})
	for _, name := range []string{"late", "first", "second"} {
		if !f.h.LoadEffect(name) {
			t.Fatalf("load %s failed", name)
		}
	}
	if got := strings.Join(f.h.LoadedEffects(), ","); got != "first,second,late" {
		t.Fatalf("loaded order = %s", got)
	}

	a := f.addWindow(image.Rect(0, 0, 40, 40))
	b := f.addWindow(image.Rect(50, 50, 90, 90))
	f.paint()

	want := "first,second,late,first,second,late"
	if got := strings.Join(f.log, ","); got != want {
		t.Fatalf("chain = %s, want %s", got, want)
	}
	if !slices.Equal(f.r.paints, []window.Handle{a.Handle(), b.Handle()}) {
		t.Fatalf("paints = %v", f.r.paints)
	}
}

func TestChainStopsWithoutContinuation(t *testing.T) {
	f := newFixture(t)
	f.register(t, "rec", 0, &recorder{name: "rec", f: f, active: true})
	f.register(t, "swallow", 1, &swallower{f: f})
	f.h.LoadEffect("rec")
	f.h.LoadEffect("swallow")

	f.addWindow(image.Rect(0, 0, 40, 40))
	f.addWindow(image.Rect(50, 50, 90, 90))
	f.paint()

	if len(f.r.paints) != 0 {
		t.Fatalf("renderer painted %v", f.r.paints)
	}
	// The cursor is restored after each window, so both windows see the
	// whole chain.
	if got := strings.Join(f.log, ","); got != "rec,swallow,rec,swallow" {
		t.Fatalf("chain = %s", got)
	}
}

func TestInactiveEffectsAreSkipped(t *testing.T) {
	f := newFixture(t)
	f.register(t, "idle", 0, &recorder{name: "idle", f: f})
	f.h.LoadEffect("idle")
	w := f.addWindow(image.Rect(0, 0, 40, 40))

	f.paint()

	if len(f.log) != 0 {
		t.Fatalf("inactive effect ran: %v", f.log)
	}
	if !slices.Equal(f.r.paints, []window.Handle{w.Handle()}) {
		t.Fatalf("paints = %v", f.r.paints)
	}
	if len(f.h.ActiveEffects()) != 0 {
		t.Fatalf("active effects = %v", f.h.ActiveEffects())
	}
}

// deactivator switches its peer off during the screen prepaint.
type deactivator struct {
	peer *recorder
}

func (e *deactivator) IsActive() bool { return true }

func (e *deactivator) PrePaintScreen(h *Handler, data *scene.ScreenPrePaintData, elapsed time.Duration) {
	e.peer.active = false
	h.PrePaintScreen(data, elapsed)
}

func TestActiveSnapshotHoldsForTheCycle(t *testing.T) {
	f := newFixture(t)
	peer := &recorder{name: "peer", f: f, active: true}
	f.register(t, "deactivator", 0, &deactivator{peer: peer})
	f.register(t, "peer", 1, peer)
	f.h.LoadEffect("deactivator")
	f.h.LoadEffect("peer")
	f.addWindow(image.Rect(0, 0, 40, 40))

	f.paint()
	if got := strings.Join(f.log, ","); got != "peer" {
		t.Fatalf("first cycle chain = %q", got)
	}

	f.log = nil
	f.paint()
	if len(f.log) != 0 {
		t.Fatalf("second cycle chain = %v", f.log)
	}
}

// paintDraw records both window hooks to show their cursors are separate.
type paintDraw struct {
	f *fixture
}

func (e *paintDraw) IsActive() bool { return true }

func (e *paintDraw) PaintWindow(h *Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	e.f.log = append(e.f.log, "paint")
	h.PaintWindow(w, mask, region, data)
	e.f.log = append(e.f.log, "paint-done")
}

func (e *paintDraw) DrawWindow(h *Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData) {
	e.f.log = append(e.f.log, "draw")
	data.Opacity = 0.5
	h.DrawWindow(w, mask, region, data)
}

func TestHooksHaveIndependentCursors(t *testing.T) {
	f := newFixture(t)
	f.register(t, "pd", 0, &paintDraw{f: f})
	f.h.LoadEffect("pd")
	w := f.addWindow(image.Rect(0, 0, 40, 40))

	f.paint()

	if got := strings.Join(f.log, ","); got != "paint,draw,paint-done" {
		t.Fatalf("chain = %s", got)
	}
	if !slices.Equal(f.r.paints, []window.Handle{w.Handle()}) {
		t.Fatalf("paints = %v", f.r.paints)
	}
}

// quadTrimmer drops decoration quads.
type quadTrimmer struct{}

func (e *quadTrimmer) IsActive() bool { return true }

func (e *quadTrimmer) BuildQuads(h *Handler, w *scene.Window, quads *scene.QuadList) {
	*quads = quads.Filter(scene.QuadDecoration)
	h.BuildQuads(w, quads)
}

func TestBuildQuadsChain(t *testing.T) {
	f := newFixture(t)
	f.register(t, "trim", 0, &quadTrimmer{})
	f.h.LoadEffect("trim")
	w := f.addWindow(image.Rect(10, 10, 50, 60))
	w.Toplevel().SetGeometry(image.Rect(10, 10, 50, 60), image.Rect(12, 30, 48, 58))

	f.h.StartPaint()
	quads := w.BuildQuads(true)
	f.h.EndPaint()

	if len(quads) != 1 || quads[0].Type != scene.QuadContents {
		t.Fatalf("quads = %v", quads)
	}
}

// framer draws an effect frame during the screen paint.
type framer struct {
	frame *scene.EffectFrame
	seen  int
}

func (e *framer) IsActive() bool { return true }

func (e *framer) PaintScreen(h *Handler, mask scene.PaintMask, region scene.Region, data *scene.ScreenPaintData) {
	h.PaintScreen(mask, region, data)
	e.frame.Render(region, 1, 1)
}

func (e *framer) PaintEffectFrame(h *Handler, fr *scene.EffectFrame, region scene.Region, opacity, frameOpacity float64) {
	e.seen++
	h.PaintEffectFrame(fr, region, opacity, frameOpacity)
}

func TestPaintEffectFrameFallsThrough(t *testing.T) {
	f := newFixture(t)
	fr := f.h.Scene().NewEffectFrame()
	fr.Geometry = image.Rect(10, 10, 20, 20)
	e := &framer{frame: fr}
	f.register(t, "framer", 0, e)
	f.h.LoadEffect("framer")

	f.paint()

	if e.seen != 1 || f.r.frames != 1 {
		t.Fatalf("frame hook seen %d, rendered %d", e.seen, f.r.frames)
	}
}

type lifecycleEffect struct {
	closed      int
	reconfigs   []int
	triggered   int
	added       []window.Handle
	stackEvents int
}

func (e *lifecycleEffect) IsActive() bool { return false }
func (e *lifecycleEffect) Close()         { e.closed++ }
func (e *lifecycleEffect) Reconfigure(g config.Group) {
	e.reconfigs = append(e.reconfigs, config.ReadEntry(g, "level", 0))
}
func (e *lifecycleEffect) Trigger()                    { e.triggered++ }
func (e *lifecycleEffect) WindowAdded(w *scene.Window) { e.added = append(e.added, w.Handle()) }
func (e *lifecycleEffect) StackingOrderChanged()       { e.stackEvents++ }

func TestLoadEffect(t *testing.T) {
	f := newFixture(t)
	creates := 0
	if err := f.reg.Register(Factory{
		Name: "counted",
		Create: func(*Handler, config.Group) (Effect, error) {
			creates++
			return &lifecycleEffect{}, nil
		},
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.reg.Register(Factory{
		Name:      "unsupported",
		Supported: func() bool { return false },
		Create:    func(*Handler, config.Group) (Effect, error) { return &lifecycleEffect{}, nil },
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.reg.Register(Factory{
		Name:   "broken",
		Create: func(*Handler, config.Group) (Effect, error) { return nil, errors.New("no gpu") },
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if f.h.LoadEffect("missing") {
		t.Fatalf("unknown effect loaded")
	}
	if f.h.LoadEffect("unsupported") || f.h.LoadEffect("broken") {
		t.Fatalf("unloadable effect reported loaded")
	}
	if !f.h.LoadEffect("counted") || !f.h.LoadEffect("counted") {
		t.Fatalf("load counted failed")
	}
	if creates != 1 {
		t.Fatalf("double load created %d effects", creates)
	}
	if got := f.h.LoadedEffects(); !slices.Equal(got, []string{"counted"}) {
		t.Fatalf("loaded = %v", got)
	}
	if got := f.h.ListOfEffects(); !slices.Equal(got, []string{"broken", "counted", "unsupported"}) {
		t.Fatalf("list = %v", got)
	}
	if err := f.reg.Register(Factory{Name: "counted", Create: func(*Handler, config.Group) (Effect, error) { return nil, nil }}); err == nil {
		t.Fatalf("duplicate register accepted")
	}
}

type greedy struct {
	mouse []MouseEvent
	keys  []KeyEvent
}

func (e *greedy) IsActive() bool           { return true }
func (e *greedy) MouseEvent(ev MouseEvent) { e.mouse = append(e.mouse, ev) }
func (e *greedy) KeyEvent(ev KeyEvent)     { e.keys = append(e.keys, ev) }

func TestUnloadEffectReleasesEverything(t *testing.T) {
	f := newFixture(t)
	g := &greedy{}
	f.register(t, "greedy", 0, g)
	f.h.LoadEffect("greedy")
	w := f.addWindow(image.Rect(0, 0, 10, 10))

	f.h.StartMouseInterception(g)
	if !f.h.GrabKeyboard(g) {
		t.Fatalf("grab failed")
	}
	f.h.SetActiveFullScreenEffect(g)
	f.h.ElevateWindow(g, w, true)
	if w.Data(scene.RoleElevated) != true {
		t.Fatalf("elevation not marked on window")
	}

	if !f.h.UnloadEffect("greedy") {
		t.Fatalf("unload reported not loaded")
	}
	if f.h.IsEffectLoaded("greedy") {
		t.Fatalf("effect still loaded")
	}
	if f.h.IsMouseInterception() || f.input.hidden != 1 {
		t.Fatalf("interception not released: hidden=%d", f.input.hidden)
	}
	if f.h.HasKeyboardGrab() || f.input.ungrabs != 1 {
		t.Fatalf("keyboard not released")
	}
	if f.h.ActiveFullScreenEffect() != nil {
		t.Fatalf("full-screen slot not cleared")
	}
	if len(f.h.ElevatedWindows()) != 0 || w.Data(scene.RoleElevated) != nil {
		t.Fatalf("elevation not cleared")
	}
	if f.h.UnloadEffect("greedy") {
		t.Fatalf("second unload reported success")
	}
}

func TestUnloadCallsClose(t *testing.T) {
	f := newFixture(t)
	e := &lifecycleEffect{}
	f.register(t, "life", 0, e)
	f.h.LoadEffect("life")
	f.h.UnloadEffect("life")
	if e.closed != 1 {
		t.Fatalf("closed %d times", e.closed)
	}
}

// selfUnloader unloads itself and loads a peer from inside the paint.
type selfUnloader struct {
	loadedDuringPaint bool
}

func (e *selfUnloader) IsActive() bool { return true }

func (e *selfUnloader) PaintScreen(h *Handler, mask scene.PaintMask, region scene.Region, data *scene.ScreenPaintData) {
	h.UnloadEffect("self")
	h.LoadEffect("peer")
	e.loadedDuringPaint = h.IsEffectLoaded("self") && !h.IsEffectLoaded("peer")
	h.PaintScreen(mask, region, data)
}

func TestLoadUnloadDeferredDuringPaint(t *testing.T) {
	f := newFixture(t)
	e := &selfUnloader{}
	f.register(t, "self", 0, e)
	f.register(t, "peer", 1, &lifecycleEffect{})
	f.h.LoadEffect("self")

	f.paint()

	if !e.loadedDuringPaint {
		t.Fatalf("load/unload took effect mid-paint")
	}
	if got := f.h.LoadedEffects(); !slices.Equal(got, []string{"peer"}) {
		t.Fatalf("loaded after paint = %v", got)
	}
	if f.h.Painting() {
		t.Fatalf("still painting")
	}
}

func TestMouseInterception(t *testing.T) {
	f := newFixture(t)
	a, b := &greedy{}, &greedy{}

	f.h.CheckInputWindowStacking()
	if f.input.raised != 0 {
		t.Fatalf("raised without interception")
	}
	if f.h.DispatchMouseEvent(MouseEvent{Kind: MousePress}) {
		t.Fatalf("event intercepted without interceptors")
	}

	f.h.StartMouseInterception(a)
	f.h.StartMouseInterception(a)
	f.h.StartMouseInterception(b)
	if f.input.shown != 1 {
		t.Fatalf("input window shown %d times", f.input.shown)
	}

	ev := MouseEvent{Kind: MousePress, Pos: image.Pt(5, 5), Button: 1}
	if !f.h.DispatchMouseEvent(ev) {
		t.Fatalf("event not intercepted")
	}
	if len(a.mouse) != 1 || len(b.mouse) != 1 || a.mouse[0] != ev {
		t.Fatalf("events a=%v b=%v", a.mouse, b.mouse)
	}

	f.h.CheckInputWindowStacking()
	if f.input.raised != 1 {
		t.Fatalf("raised %d times", f.input.raised)
	}

	f.h.StopMouseInterception(a)
	if f.input.hidden != 0 || !f.h.IsMouseInterception() {
		t.Fatalf("hidden while b still intercepts")
	}
	f.h.StopMouseInterception(a)
	f.h.StopMouseInterception(b)
	if f.input.hidden != 1 || f.h.IsMouseInterception() {
		t.Fatalf("hidden=%d after last stop", f.input.hidden)
	}
}

func TestKeyboardGrabIsExclusive(t *testing.T) {
	f := newFixture(t)
	a, b := &greedy{}, &greedy{}

	if f.h.DispatchKeyEvent(KeyEvent{Key: "Escape", Pressed: true}) {
		t.Fatalf("key grabbed without holder")
	}
	if !f.h.GrabKeyboard(a) {
		t.Fatalf("first grab failed")
	}
	if f.h.GrabKeyboard(b) || f.h.GrabKeyboard(a) {
		t.Fatalf("second grab succeeded")
	}
	if f.input.grabs != 1 {
		t.Fatalf("grabbed %d times", f.input.grabs)
	}

	ev := KeyEvent{Key: "Return", Pressed: true}
	if !f.h.DispatchKeyEvent(ev) {
		t.Fatalf("key not delivered")
	}
	if len(a.keys) != 1 || len(b.keys) != 0 {
		t.Fatalf("keys a=%v b=%v", a.keys, b.keys)
	}

	f.h.UngrabKeyboard(a)
	if f.h.HasKeyboardGrab() || f.input.ungrabs != 1 {
		t.Fatalf("ungrab failed")
	}
	if !f.h.GrabKeyboard(b) {
		t.Fatalf("grab after release failed")
	}
}

func TestKeyboardGrabRefused(t *testing.T) {
	f := newFixture(t)
	f.input.grabErr = errors.New("already grabbed")
	if f.h.GrabKeyboard(&greedy{}) {
		t.Fatalf("grab succeeded despite refusal")
	}
	if f.h.HasKeyboardGrab() {
		t.Fatalf("holder recorded after refusal")
	}
}

func TestReconfigure(t *testing.T) {
	f := newFixture(t)
	on := &lifecycleEffect{}
	if err := f.reg.Register(Factory{
		Name:             "on",
		EnabledByDefault: true,
		Create:           func(*Handler, config.Group) (Effect, error) { return on, nil },
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	f.register(t, "off", 0, &lifecycleEffect{})

	f.h.Reconfigure(config.DefaultConfig())
	if got := f.h.LoadedEffects(); !slices.Equal(got, []string{"on"}) {
		t.Fatalf("loaded with defaults = %v", got)
	}

	cfg := config.DefaultConfig()
	level, err := config.NewGroup(map[string]any{"level": 3})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	cfg.Effects["on"] = level
	f.h.Reconfigure(cfg)
	if !slices.Equal(on.reconfigs, []int{3}) {
		t.Fatalf("reconfigs = %v", on.reconfigs)
	}

	cfg = config.DefaultConfig()
	disable, _ := config.NewGroup(map[string]any{"enabled": false})
	enable, _ := config.NewGroup(map[string]any{"enabled": true})
	cfg.Effects["on"] = disable
	cfg.Effects["off"] = enable
	f.h.Reconfigure(cfg)
	if got := f.h.LoadedEffects(); !slices.Equal(got, []string{"off"}) {
		t.Fatalf("loaded after swap = %v", got)
	}
	if on.closed != 1 {
		t.Fatalf("disabled effect not closed")
	}
}

func TestToggleAndTrigger(t *testing.T) {
	f := newFixture(t)
	e := &lifecycleEffect{}
	f.register(t, "life", 0, e)
	f.register(t, "plain", 0, &greedy{})

	if err := f.h.Trigger("life"); err == nil {
		t.Fatalf("trigger of unloaded effect succeeded")
	}
	if !f.h.ToggleEffect("life") {
		t.Fatalf("toggle did not load")
	}
	if err := f.h.Trigger("life"); err != nil || e.triggered != 1 {
		t.Fatalf("trigger: %v, count %d", err, e.triggered)
	}
	f.h.LoadEffect("plain")
	if err := f.h.Trigger("plain"); err == nil {
		t.Fatalf("non-triggerable effect triggered")
	}
	if f.h.ToggleEffect("life") || f.h.IsEffectLoaded("life") {
		t.Fatalf("toggle did not unload")
	}
}

func TestFullScreenEffectChecksUnredirect(t *testing.T) {
	f := newFixture(t)
	e := &greedy{}
	f.h.SetActiveFullScreenEffect(e)
	f.h.SetActiveFullScreenEffect(e)
	if f.comp.unredirectChecks != 1 || f.h.ActiveFullScreenEffect() != e {
		t.Fatalf("checks = %d", f.comp.unredirectChecks)
	}
	f.h.SetActiveFullScreenEffect(nil)
	if f.comp.unredirectChecks != 2 || f.h.HasActiveFullScreenEffect() {
		t.Fatalf("clear did not check unredirect")
	}
}

func TestElevateWindow(t *testing.T) {
	f := newFixture(t)
	owner := &greedy{}
	a := f.addWindow(image.Rect(0, 0, 10, 10))
	b := f.addWindow(image.Rect(10, 10, 20, 20))

	f.h.ElevateWindow(owner, b, true)
	f.h.ElevateWindow(owner, a, true)
	f.h.ElevateWindow(owner, a, true)
	if got := f.h.ElevatedWindows(); len(got) != 2 || got[0] != b || got[1] != a {
		t.Fatalf("elevated = %v", got)
	}
	f.h.ElevateWindow(owner, b, false)
	if got := f.h.ElevatedWindows(); len(got) != 1 || got[0] != a {
		t.Fatalf("elevated after drop = %v", got)
	}
	f.h.NotifyWindowDeleted(a)
	if len(f.h.ElevatedWindows()) != 0 {
		t.Fatalf("deleted window still elevated")
	}
}

func TestNotificationsReachLoadedEffects(t *testing.T) {
	f := newFixture(t)
	loaded, unloaded := &lifecycleEffect{}, &lifecycleEffect{}
	f.register(t, "loaded", 0, loaded)
	f.register(t, "unloaded", 0, unloaded)
	f.h.LoadEffect("loaded")

	w := f.addWindow(image.Rect(0, 0, 10, 10))
	f.h.NotifyWindowAdded(w)
	f.h.NotifyStackingOrderChanged()

	if !slices.Equal(loaded.added, []window.Handle{w.Handle()}) || loaded.stackEvents != 1 {
		t.Fatalf("loaded effect saw added=%v stack=%d", loaded.added, loaded.stackEvents)
	}
	if len(unloaded.added) != 0 || unloaded.stackEvents != 0 {
		t.Fatalf("unloaded effect was notified")
	}
}

func TestStatuses(t *testing.T) {
	f := newFixture(t)
	f.register(t, "life", 0, &lifecycleEffect{})
	f.register(t, "plain", 0, &greedy{})
	f.h.LoadEffect("plain")

	st := f.h.Statuses()
	if len(st) != 2 || st[0].Name != "life" || st[0].Loaded || !st[0].Supported {
		t.Fatalf("statuses = %+v", st)
	}
	if !st[1].Loaded || !st[1].Active || st[1].Triggerable {
		t.Fatalf("plain status = %+v", st[1])
	}
}
