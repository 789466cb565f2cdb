// Package workspace is the daemon's context object. It owns the window
// table and wires the stacking order, the effects handler, the scene and
// the compositor to one windowing-system backend.
//
// A Workspace is driven from a single loop and is not safe for concurrent
// use.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/stratum/internal/compositor"
	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/platform"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/stacking"
	"github.com/1broseidon/stratum/internal/window"
)

// Tracker follows content changes of client windows.
type Tracker interface {
	TrackWindow(xid uint32) error
	UntrackWindow(xid uint32)
}

type Options struct {
	Backend  platform.Backend
	Renderer compositor.Renderer

	// Output, Input and Tracker may be nil when running headless.
	Output  compositor.Output
	Input   effects.InputController
	Tracker Tracker

	Registry *effects.Registry
	Config   *config.Config
	Logger   *slog.Logger
}

type Workspace struct {
	backend  platform.Backend
	renderer compositor.Renderer
	tracker  Tracker
	cfg      *config.Config
	log      *slog.Logger

	table *window.Table
	stack *stacking.Stack
	scene *scene.Scene
	fx    *effects.Handler
	comp  *compositor.Compositor

	// pending maps a transient to a parent that is not managed yet.
	pending map[uint32]uint32
}

func New(opts Options) (*Workspace, error) {
	if opts.Backend == nil {
		return nil, errors.New("workspace: backend is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("workspace: renderer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	bounds, err := opts.Backend.ScreenBounds()
	if err != nil {
		return nil, fmt.Errorf("failed to read screen bounds: %w", err)
	}

	w := &Workspace{
		backend:  opts.Backend,
		renderer: opts.Renderer,
		tracker:  opts.Tracker,
		cfg:      cfg,
		log:      logger,
		table:    window.NewTable(),
		pending:  make(map[uint32]uint32),
	}
	w.scene = scene.New(opts.Renderer, bounds, logger.With("component", "scene"))
	w.fx = effects.New(effects.Options{
		Scene:    w.scene,
		Table:    w.table,
		Registry: opts.Registry,
		Config:   cfg,
		Input:    opts.Input,
		Activate: w.activate,
		Release:  w.release,
		Logger:   logger.With("component", "effects"),
	})
	w.comp = compositor.New(compositor.Options{
		Scene:    w.scene,
		Renderer: opts.Renderer,
		Effects:  w.fx,
		Output:   opts.Output,
		Config:   cfg.Compositing,
		Logger:   logger.With("component", "compositor"),
	})
	w.stack = stacking.New(w.table, stacking.Options{
		Propagator:          opts.Backend,
		Repainter:           w.comp,
		InputStacker:        w.fx,
		SameApplication:     sameApplication(cfg.Stacking.SameApplication),
		SeparateScreenFocus: cfg.Stacking.SeparateScreenFocus,
		Logger:              logger.With("component", "stacking"),
	})
	w.stack.OnStackingOrderChanged(w.stackingOrderChanged)

	w.fx.Reconfigure(cfg)
	return w, nil
}

func sameApplication(mode string) stacking.SameApplicationFunc {
	if mode == config.SameApplicationStrict {
		return window.SameApplicationStrict
	}
	return window.SameApplication
}

func (w *Workspace) Table() *window.Table               { return w.table }
func (w *Workspace) Stack() *stacking.Stack             { return w.stack }
func (w *Workspace) Scene() *scene.Scene                { return w.scene }
func (w *Workspace) Effects() *effects.Handler          { return w.fx }
func (w *Workspace) Compositor() *compositor.Compositor { return w.comp }
func (w *Workspace) Config() *config.Config             { return w.cfg }

func (w *Workspace) stackingOrderChanged() {
	w.comp.SetStackingOrder(w.stack.Order())
	w.fx.NotifyStackingOrderChanged()
	w.comp.CheckUnredirect()
}

// Reconfigure applies a reloaded configuration to every component.
func (w *Workspace) Reconfigure(cfg *config.Config) {
	if cfg == nil {
		return
	}
	w.cfg = cfg
	w.stack.SetSeparateScreenFocus(cfg.Stacking.SeparateScreenFocus)
	w.stack.SetSameApplication(sameApplication(cfg.Stacking.SameApplication))
	w.comp.Reconfigure(cfg.Compositing)
	w.fx.Reconfigure(cfg)
	w.stack.UpdateStackingOrder(false)
}

// Tick paints one frame if needed.
func (w *Workspace) Tick() bool { return w.comp.Tick() }

// Sync manages every client the backend lists. It runs once at startup,
// with the stacking updates batched.
func (w *Workspace) Sync() error {
	if d, err := w.backend.CurrentDesktop(); err == nil {
		w.table.SetCurrentDesktop(d)
	} else {
		w.log.Debug("current desktop unknown", "error", err)
	}
	ids, err := w.backend.ClientList()
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}
	w.stack.Batch(func() {
		for _, id := range ids {
			w.manage(id)
		}
	})
	w.updateActive()
	w.log.Info("workspace synced", "windows", len(w.table.Managed()))
	return nil
}

// Reconcile releases windows the backend no longer lists, for clients that
// vanished without an event. It returns the number of windows dropped.
func (w *Workspace) Reconcile() (int, error) {
	ids, err := w.backend.ClientList()
	if err != nil {
		return 0, fmt.Errorf("failed to list clients: %w", err)
	}
	alive := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		alive[uint32(id)] = true
	}
	dropped := 0
	w.stack.Batch(func() {
		for _, tw := range w.table.Managed() {
			if !alive[tw.XID] {
				w.log.Info("dropping vanished window", "window", tw.XID)
				w.close(tw)
				dropped++
			}
		}
	})
	return dropped, nil
}

func (w *Workspace) activate(tw *window.Window) {
	if err := w.backend.Activate(platform.WindowID(tw.XID)); err != nil {
		w.log.Warn("activating window failed", "window", tw.XID, "error", err)
	}
}
