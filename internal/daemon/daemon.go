// Package daemon runs the stratum workspace: the loop that serialises all
// work, the control surface the IPC, D-Bus and MCP front-ends call, config
// reloads and the periodic reconciler.
package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/ipc"
	"github.com/1broseidon/stratum/internal/platform"
	"github.com/1broseidon/stratum/internal/workspace"
)

// Loader reads the configuration from disk.
type Loader func() (*config.LoadResult, error)

type Options struct {
	Loader Loader
	// ConfigPath is reported in status output.
	ConfigPath string
	Logger     *slog.Logger
}

// Daemon is the in-process control surface. Every method is safe for
// concurrent use; work on the workspace is posted to the loop.
type Daemon struct {
	loop    *Loop
	ws      *workspace.Workspace
	backend platform.Backend
	load    Loader
	path    string
	log     *slog.Logger
	started time.Time

	// reloaded runs on the loop after a new config was applied.
	reloaded []func(res *config.LoadResult)
}

var _ ipc.Controller = (*Daemon)(nil)

func New(loop *Loop, ws *workspace.Workspace, backend platform.Backend, opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	load := opts.Loader
	if load == nil {
		load = config.LoadWithSources
	}
	return &Daemon{
		loop:    loop,
		ws:      ws,
		backend: backend,
		load:    load,
		path:    opts.ConfigPath,
		log:     logger,
		started: time.Now(),
	}
}

// OnReload registers fn to run on the loop after each successful reload.
// It must be called before the loop starts.
func (d *Daemon) OnReload(fn func(res *config.LoadResult)) {
	d.reloaded = append(d.reloaded, fn)
}

// Reload reads the configuration again and applies it. An invalid file
// leaves the running configuration untouched.
func (d *Daemon) Reload() error {
	res, err := d.load()
	if err != nil {
		d.log.Warn("config reload failed", "error", err)
		return fmt.Errorf("failed to reload config: %w", err)
	}
	err = d.loop.Call(func() {
		d.ws.Reconfigure(res.Config)
		for _, fn := range d.reloaded {
			fn(res)
		}
	})
	if err != nil {
		return err
	}
	d.log.Info("config reloaded", "files", len(res.Files))
	return nil
}

func (d *Daemon) Status() (*ipc.StatusData, error) {
	var st ipc.StatusData
	err := d.loop.Call(func() {
		fx := d.ws.Effects()
		st = ipc.StatusData{
			UptimeSeconds: int64(time.Since(d.started).Seconds()),
			DaemonRunning: true,
			Windows:       len(d.ws.Table().Managed()),
			Loaded:        fx.LoadedEffects(),
			Active:        fx.ActiveEffects(),
			Compositor:    d.ws.Compositor().Stats(),
			ConfigPath:    d.path,
		}
		if tw, ok := d.ws.Table().Get(d.ws.Table().Active()); ok {
			st.ActiveWindow = tw.XID
		}
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (d *Daemon) Monitors() (*ipc.MonitorsData, error) {
	var (
		displays []platform.Display
		err      error
	)
	if callErr := d.loop.Call(func() { displays, err = d.backend.Displays() }); callErr != nil {
		return nil, callErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monitors: %w", err)
	}
	data := &ipc.MonitorsData{Monitors: make([]ipc.MonitorInfo, len(displays))}
	for i, disp := range displays {
		data.Monitors[i] = ipc.MonitorInfo{
			ID:     disp.ID,
			Name:   disp.Name,
			X:      disp.Bounds.Min.X,
			Y:      disp.Bounds.Min.Y,
			Width:  disp.Bounds.Dx(),
			Height: disp.Bounds.Dy(),
		}
	}
	return data, nil
}

func (d *Daemon) Effects() ([]effects.Status, error) {
	var list []effects.Status
	if err := d.loop.Call(func() { list = d.ws.Effects().Statuses() }); err != nil {
		return nil, err
	}
	return list, nil
}

// effectOp runs a boolean effect operation and turns false into err.
func (d *Daemon) effectOp(name string, op func(*effects.Handler, string) bool, failure string) error {
	var ok bool
	if err := d.loop.Call(func() { ok = op(d.ws.Effects(), name) }); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("effect %q %s", name, failure)
	}
	return nil
}

func (d *Daemon) LoadEffect(name string) error {
	return d.effectOp(name, (*effects.Handler).LoadEffect, "could not be loaded")
}

func (d *Daemon) UnloadEffect(name string) error {
	return d.effectOp(name, (*effects.Handler).UnloadEffect, "is not loaded")
}

// ToggleEffect fails only when the effect was not loaded and loading it
// failed.
func (d *Daemon) ToggleEffect(name string) error {
	return d.effectOp(name, func(h *effects.Handler, name string) bool {
		was := h.IsEffectLoaded(name)
		return h.ToggleEffect(name) || was
	}, "could not be loaded")
}

func (d *Daemon) ReconfigureEffect(name string) error {
	return d.effectOp(name, (*effects.Handler).ReconfigureEffect, "is not loaded")
}

func (d *Daemon) TriggerEffect(name string) error {
	var err error
	if callErr := d.loop.Call(func() { err = d.ws.Effects().Trigger(name) }); callErr != nil {
		return callErr
	}
	return err
}

func (d *Daemon) Stack() ([]workspace.StackEntry, error) {
	var list []workspace.StackEntry
	if err := d.loop.Call(func() { list = d.ws.Snapshot() }); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *Daemon) Raise(window uint32) error {
	var err error
	if callErr := d.loop.Call(func() { err = d.ws.RaiseWindow(window) }); callErr != nil {
		return callErr
	}
	return err
}

func (d *Daemon) Lower(window uint32) error {
	var err error
	if callErr := d.loop.Call(func() { err = d.ws.LowerWindow(window) }); callErr != nil {
		return callErr
	}
	return err
}
