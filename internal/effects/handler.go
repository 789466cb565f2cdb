package effects

import (
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sort"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/window"
)

// InputController owns the windowing-system side of effect input.
type InputController interface {
	// ShowInterceptionWindow maps the full-screen input-only window and
	// raises it above clients but below screen-edge windows.
	ShowInterceptionWindow() error
	HideInterceptionWindow()
	RaiseInterceptionWindow()
	GrabKeyboard() error
	UngrabKeyboard()
}

// Compositor is what the handler needs from the paint loop.
type Compositor interface {
	AddRepaintFull()
	// CheckUnredirect re-evaluates full-screen unredirection.
	CheckUnredirect()
}

type Options struct {
	Scene    *scene.Scene
	Table    *window.Table
	Registry *Registry
	Config   *config.Config

	// Input and Compositor may be nil when running headless.
	Input      InputController
	Compositor Compositor
	// Activate focuses a window on behalf of an effect.
	Activate func(w *window.Window)
	// Release drops a closed window once no effect references it.
	Release func(w *window.Window)

	Logger *slog.Logger
}

type loadedEffect struct {
	name     string
	ordering int
	seq      int
	effect   Effect
}

type elevation struct {
	w     *scene.Window
	owner Effect
}

// Handler owns the loaded effects and dispatches paint hooks through the
// active ones. Effects must be pointer types; the handler compares them by
// identity.
type Handler struct {
	scene    *scene.Scene
	table    *window.Table
	registry *Registry
	cfg      *config.Config
	input    InputController
	comp     Compositor
	activate func(w *window.Window)
	release  func(w *window.Window)
	log      *slog.Logger

	loaded []loadedEffect
	seq    int

	// active is the snapshot taken by StartPaint; cursor holds one position
	// per hook into it.
	active   []Effect
	cursor   [numHooks]int
	painting bool
	pending  []func()

	fullScreen Effect
	mouse      []Effect
	keyboard   Effect
	elevated   []elevation
}

// New creates a handler and attaches it to opts.Scene.
func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	h := &Handler{
		scene:    opts.Scene,
		table:    opts.Table,
		registry: registry,
		cfg:      cfg,
		input:    opts.Input,
		comp:     opts.Compositor,
		activate: opts.Activate,
		release:  opts.Release,
		log:      logger,
	}
	if h.scene != nil {
		h.scene.SetEffects(h)
	}
	return h
}

func (h *Handler) Scene() *scene.Scene    { return h.scene }
func (h *Handler) Table() *window.Table   { return h.table }
func (h *Handler) Registry() *Registry    { return h.registry }
func (h *Handler) Logger() *slog.Logger   { return h.log }
func (h *Handler) Config() *config.Config { return h.cfg }

// SetCompositor attaches the paint loop once it exists.
func (h *Handler) SetCompositor(c Compositor) { h.comp = c }

// Painting reports whether a paint cycle is in progress.
func (h *Handler) Painting() bool { return h.painting }

// StackingOrder returns the scene windows bottom to top.
func (h *Handler) StackingOrder() []*scene.Window {
	if h.scene == nil {
		return nil
	}
	return h.scene.StackingOrder()
}

// ActiveWindow returns the scene window of the active client, or nil.
func (h *Handler) ActiveWindow() *scene.Window {
	if h.table == nil || h.scene == nil {
		return nil
	}
	sw, ok := h.scene.Window(h.table.Active())
	if !ok {
		return nil
	}
	return sw
}

// ActivateWindow asks the window manager to focus w.
func (h *Handler) ActivateWindow(w *scene.Window) {
	if w == nil || h.activate == nil {
		return
	}
	h.activate(w.Toplevel())
}

// RefWindow keeps a closed window painted until the matching UnrefWindow.
func (h *Handler) RefWindow(w *scene.Window) { w.Toplevel().RefWindow() }

// UnrefWindow drops a reference taken with RefWindow. The last reference on
// a closed window releases it.
func (h *Handler) UnrefWindow(w *scene.Window) {
	tw := w.Toplevel()
	if tw.UnrefWindow() && tw.Deleted() && h.release != nil {
		h.release(tw)
	}
}

// AddRepaintFull schedules a repaint of the whole screen.
func (h *Handler) AddRepaintFull() {
	if h.comp != nil {
		h.comp.AddRepaintFull()
	}
}

// deferred queues fn until the current paint cycle ends. It reports false
// when no cycle is running and fn should run now.
func (h *Handler) deferred(fn func()) bool {
	if !h.painting {
		return false
	}
	h.pending = append(h.pending, fn)
	return true
}

func (h *Handler) find(name string) (int, bool) {
	for i, le := range h.loaded {
		if le.name == name {
			return i, true
		}
	}
	return -1, false
}

// LoadEffect creates and loads the named effect. Loading an already loaded
// effect succeeds without creating another. Unknown or failing effects are
// logged and reported as false. During a paint cycle the load is queued and
// the result reports only whether the name is known.
func (h *Handler) LoadEffect(name string) bool {
	if h.deferred(func() { h.LoadEffect(name) }) {
		_, known := h.registry.Lookup(name)
		return known
	}
	if _, ok := h.find(name); ok {
		h.log.Debug("effect already loaded", "effect", name)
		return true
	}
	f, ok := h.registry.Lookup(name)
	if !ok {
		h.log.Warn("unknown effect", "effect", name)
		return false
	}
	if f.Supported != nil && !f.Supported() {
		h.log.Warn("effect not supported", "effect", name)
		return false
	}
	e, err := f.Create(h, h.cfg.Effect(name))
	if err != nil {
		h.log.Warn("failed to create effect", "effect", name, "error", err)
		return false
	}
	if e == nil {
		h.log.Warn("effect constructor returned nothing", "effect", name)
		return false
	}

	h.seq++
	h.loaded = append(h.loaded, loadedEffect{name: name, ordering: f.Ordering, seq: h.seq, effect: e})
	h.effectsChanged()
	h.log.Info("effect loaded", "effect", name)
	return true
}

// UnloadEffect removes the named effect and everything it holds: the
// full-screen slot, mouse interception, the keyboard grab, and elevated
// windows. Unloading an effect that is not loaded does nothing.
func (h *Handler) UnloadEffect(name string) bool {
	if h.deferred(func() { h.UnloadEffect(name) }) {
		return h.IsEffectLoaded(name)
	}
	i, ok := h.find(name)
	if !ok {
		h.log.Debug("effect not loaded", "effect", name)
		return false
	}
	e := h.loaded[i].effect

	if c, ok := e.(Closer); ok {
		c.Close()
	}
	if h.fullScreen == e {
		h.SetActiveFullScreenEffect(nil)
	}
	h.StopMouseInterception(e)
	if h.keyboard == e {
		h.UngrabKeyboard(e)
	}
	h.elevated = slices.DeleteFunc(h.elevated, func(el elevation) bool {
		if el.owner != e {
			return false
		}
		el.w.SetData(scene.RoleElevated, nil)
		return true
	})

	// find again; Close may have unloaded other effects
	if i, ok = h.find(name); ok {
		h.loaded = slices.Delete(h.loaded, i, i+1)
	}
	h.effectsChanged()
	h.log.Info("effect unloaded", "effect", name)
	return true
}

// ToggleEffect loads or unloads name and returns whether it is loaded
// afterwards.
func (h *Handler) ToggleEffect(name string) bool {
	if h.IsEffectLoaded(name) {
		h.UnloadEffect(name)
		return false
	}
	return h.LoadEffect(name)
}

// ReconfigureEffect hands the effect its current config group.
func (h *Handler) ReconfigureEffect(name string) bool {
	i, ok := h.find(name)
	if !ok {
		return false
	}
	if r, ok := h.loaded[i].effect.(Reconfigurer); ok {
		r.Reconfigure(h.cfg.Effect(name))
	}
	h.AddRepaintFull()
	return true
}

// Reconfigure applies cfg: effects load or unload according to their
// "enabled" entry or their factory default, and loaded effects re-read
// their groups.
func (h *Handler) Reconfigure(cfg *config.Config) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if h.deferred(func() { h.Reconfigure(cfg) }) {
		return
	}
	h.cfg = cfg
	for _, f := range h.registry.Factories() {
		want := cfg.EffectEnabled(f.Name, f.EnabledByDefault)
		loaded := h.IsEffectLoaded(f.Name)
		switch {
		case want && !loaded:
			h.LoadEffect(f.Name)
		case !want && loaded:
			h.UnloadEffect(f.Name)
		case loaded:
			h.ReconfigureEffect(f.Name)
		}
	}
	for _, name := range cfg.EffectNames() {
		if _, ok := h.registry.Lookup(name); !ok {
			h.log.Warn("config names unknown effect", "effect", name)
		}
	}
}

// Trigger starts a triggerable effect.
func (h *Handler) Trigger(name string) error {
	i, ok := h.find(name)
	if !ok {
		return fmt.Errorf("effect %q is not loaded", name)
	}
	t, ok := h.loaded[i].effect.(Triggerable)
	if !ok {
		return fmt.Errorf("effect %q cannot be triggered", name)
	}
	t.Trigger()
	h.AddRepaintFull()
	return nil
}

func (h *Handler) IsEffectLoaded(name string) bool {
	_, ok := h.find(name)
	return ok
}

// Effect returns the loaded effect called name.
func (h *Handler) Effect(name string) (Effect, bool) {
	i, ok := h.find(name)
	if !ok {
		return nil, false
	}
	return h.loaded[i].effect, true
}

// LoadedEffects returns loaded effect names in chain order.
func (h *Handler) LoadedEffects() []string {
	out := make([]string, 0, len(h.loaded))
	for _, le := range h.loaded {
		out = append(out, le.name)
	}
	return out
}

// ActiveEffects returns the names of loaded effects that are active right
// now, in chain order.
func (h *Handler) ActiveEffects() []string {
	var out []string
	for _, le := range h.loaded {
		if le.effect.IsActive() {
			out = append(out, le.name)
		}
	}
	return out
}

// ListOfEffects returns every known effect name.
func (h *Handler) ListOfEffects() []string { return h.registry.Names() }

// Status describes one known effect.
type Status struct {
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Loaded           bool   `json:"loaded"`
	Active           bool   `json:"active"`
	EnabledByDefault bool   `json:"enabled_by_default"`
	Supported        bool   `json:"supported"`
	Triggerable      bool   `json:"triggerable"`
}

// Statuses describes every registered effect, sorted by name.
func (h *Handler) Statuses() []Status {
	out := make([]Status, 0, len(h.registry.factories))
	for _, f := range h.registry.Factories() {
		st := Status{
			Name:             f.Name,
			Description:      f.Description,
			EnabledByDefault: f.EnabledByDefault,
			Supported:        f.Supported == nil || f.Supported(),
		}
		if e, ok := h.Effect(f.Name); ok {
			st.Loaded = true
			st.Active = e.IsActive()
			_, st.Triggerable = e.(Triggerable)
		}
		out = append(out, st)
	}
	return out
}

// SetActiveFullScreenEffect claims the single full-screen slot. A nil
// effect clears it.
func (h *Handler) SetActiveFullScreenEffect(e Effect) {
	if h.fullScreen == e {
		return
	}
	h.fullScreen = e
	if h.comp != nil {
		h.comp.CheckUnredirect()
	}
}

func (h *Handler) ActiveFullScreenEffect() Effect { return h.fullScreen }

func (h *Handler) HasActiveFullScreenEffect() bool { return h.fullScreen != nil }

// ElevateWindow paints w above everything else while elevate is set. The
// owner loses its elevations when it is unloaded.
func (h *Handler) ElevateWindow(owner Effect, w *scene.Window, elevate bool) {
	i := slices.IndexFunc(h.elevated, func(el elevation) bool { return el.w == w })
	if elevate {
		if i >= 0 {
			return
		}
		h.elevated = append(h.elevated, elevation{w: w, owner: owner})
		w.SetData(scene.RoleElevated, true)
	} else {
		if i < 0 {
			return
		}
		h.elevated = slices.Delete(h.elevated, i, i+1)
		w.SetData(scene.RoleElevated, nil)
	}
	h.AddRepaintFull()
}

// ElevatedWindows returns elevated windows in elevation order.
func (h *Handler) ElevatedWindows() []*scene.Window {
	out := make([]*scene.Window, 0, len(h.elevated))
	for _, el := range h.elevated {
		out = append(out, el.w)
	}
	return out
}

// effectsChanged restores chain order after a load or unload.
func (h *Handler) effectsChanged() {
	sort.SliceStable(h.loaded, func(i, j int) bool {
		if h.loaded[i].ordering != h.loaded[j].ordering {
			return h.loaded[i].ordering < h.loaded[j].ordering
		}
		return h.loaded[i].seq < h.loaded[j].seq
	})
	h.AddRepaintFull()
}

func (h *Handler) loadedEffects() []Effect {
	out := make([]Effect, 0, len(h.loaded))
	for _, le := range h.loaded {
		out = append(out, le.effect)
	}
	return out
}

func (h *Handler) NotifyWindowAdded(w *scene.Window) {
	for _, e := range h.loadedEffects() {
		if o, ok := e.(WindowAddedObserver); ok {
			o.WindowAdded(w)
		}
	}
}

func (h *Handler) NotifyWindowClosed(w *scene.Window) {
	for _, e := range h.loadedEffects() {
		if o, ok := e.(WindowClosedObserver); ok {
			o.WindowClosed(w)
		}
	}
}

// NotifyWindowDeleted runs before w leaves the scene; it also drops any
// elevation of w.
func (h *Handler) NotifyWindowDeleted(w *scene.Window) {
	for _, e := range h.loadedEffects() {
		if o, ok := e.(WindowDeletedObserver); ok {
			o.WindowDeleted(w)
		}
	}
	h.elevated = slices.DeleteFunc(h.elevated, func(el elevation) bool { return el.w == w })
}

func (h *Handler) NotifyWindowActivated(w *scene.Window) {
	for _, e := range h.loadedEffects() {
		if o, ok := e.(WindowActivatedObserver); ok {
			o.WindowActivated(w)
		}
	}
}

func (h *Handler) NotifyWindowGeometryChanged(w *scene.Window, old image.Rectangle) {
	for _, e := range h.loadedEffects() {
		if o, ok := e.(WindowGeometryObserver); ok {
			o.WindowGeometryChanged(w, old)
		}
	}
}

func (h *Handler) NotifyStackingOrderChanged() {
	for _, e := range h.loadedEffects() {
		if o, ok := e.(StackingObserver); ok {
			o.StackingOrderChanged()
		}
	}
}
