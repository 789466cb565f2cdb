package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/daemon"
	"github.com/1broseidon/stratum/internal/dbusctl"
	"github.com/1broseidon/stratum/internal/effects"
	"github.com/1broseidon/stratum/internal/effects/builtin"
	"github.com/1broseidon/stratum/internal/hotkeys"
	"github.com/1broseidon/stratum/internal/ipc"
	"github.com/1broseidon/stratum/internal/platform"
	"github.com/1broseidon/stratum/internal/runtimepath"
	"github.com/1broseidon/stratum/internal/scene"
	"github.com/1broseidon/stratum/internal/workspace"
	"github.com/1broseidon/stratum/internal/x11"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/stratum/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: stratum daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the compositor in the foreground. SIGHUP reloads the config.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	load := func() (*config.LoadResult, error) { return loadConfig(*path) }
	res, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logger, closeLog, err := newLogger(res.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()

	if err := serve(logger, res, load, *path); err != nil {
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

// newLogger writes to logging.file when set, stderr otherwise.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.SlogLevel()})), closeFn, nil
}

func serve(logger *slog.Logger, res *config.LoadResult, load daemon.Loader, path string) error {
	cfg := res.Config
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}

	conn, err := x11.NewConnectionDisplay(cfg.Display)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer conn.Close()

	backend := platform.NewLinuxBackend(conn)
	bounds, err := backend.ScreenBounds()
	if err != nil {
		return err
	}
	background, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}

	registry := effects.NewRegistry()
	if err := builtin.Register(registry); err != nil {
		return err
	}

	composite := x11.NewComposite(conn, logger.With("component", "composite"))
	renderer := scene.NewSoftwareRenderer(bounds, composite, background, logger.With("component", "renderer"))

	// X handlers run bracketed by the loop, so they use ws directly.
	var ws *workspace.Workspace
	edges := cfg.ScreenEdges.Corners()
	input := x11.NewInput(conn, x11.InputHandlers{
		Mouse: func(ev effects.MouseEvent) { ws.Effects().DispatchMouseEvent(ev) },
		Key:   func(ev effects.KeyEvent) { ws.Effects().DispatchKeyEvent(ev) },
		Edge: func(corner string) {
			name, ok := edges[corner]
			if !ok {
				return
			}
			if err := ws.Trigger(name); err != nil {
				logger.Warn("screen edge trigger failed", "corner", corner, "effect", name, "error", err)
			}
		},
	}, logger.With("component", "input"))
	defer input.Close()

	ws, err = workspace.New(workspace.Options{
		Backend:  backend,
		Renderer: renderer,
		Output:   composite,
		Input:    input,
		Tracker:  composite,
		Registry: registry,
		Config:   cfg,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if err := composite.Start(func(xid uint32) {
		ws.HandleEvent(platform.Event{Kind: platform.WindowDamaged, Window: platform.WindowID(xid)})
	}); err != nil {
		return fmt.Errorf("failed to start compositing: %w", err)
	}
	defer composite.Stop()

	if err := backend.Subscribe(ws.HandleEvent); err != nil {
		return err
	}
	if err := ws.Sync(); err != nil {
		return err
	}

	keys := hotkeys.NewHandler(conn, ws, logger.With("component", "hotkeys"))
	if err := keys.Register(cfg.Hotkeys); err != nil {
		logger.Warn("some hotkeys were not registered", "error", err)
	}
	if err := input.SetEdges(cornerNames(edges)); err != nil {
		logger.Warn("screen edges unavailable", "error", err)
	}

	configPath := path
	if configPath == "" {
		configPath, _ = config.DefaultConfigPath()
	}

	loop := daemon.NewLoop(logger.With("component", "loop"))
	d := daemon.New(loop, ws, backend, daemon.Options{
		Loader:     load,
		ConfigPath: configPath,
		Logger:     logger,
	})

	watcher, err := daemon.NewConfigWatcher(func() { _ = d.Reload() }, logger.With("component", "watcher"))
	if err != nil {
		return err
	}
	watchFiles := func(files []string) {
		if err := watcher.SetFiles(append(slices.Clone(files), configPath)); err != nil {
			logger.Warn("config watch failed", "error", err)
		}
	}
	watchFiles(res.Files)

	d.OnReload(func(res *config.LoadResult) {
		if err := keys.Register(res.Config.Hotkeys); err != nil {
			logger.Warn("some hotkeys were not registered", "error", err)
		}
		edges = res.Config.ScreenEdges.Corners()
		if err := input.SetEdges(cornerNames(edges)); err != nil {
			logger.Warn("screen edges unavailable", "error", err)
		}
		watchFiles(res.Files)
	})

	ipcServer, err := ipc.NewServer(d, logger.With("component", "ipc"))
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer ipcServer.Stop()

	if cfg.DBus.Enabled {
		svc, err := dbusctl.Start(cfg.DBus, dbusctl.NewEffects(d, logger), logger.With("component", "dbus"))
		if err != nil {
			logger.Warn("D-Bus interface unavailable", "error", err)
		} else {
			defer svc.Stop()
		}
	}

	if pidPath, err := runtimepath.PIDPath(); err == nil {
		if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
			logger.Warn("failed to write pid file", "error", err)
		} else {
			defer os.Remove(pidPath)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				_ = d.Reload()
			}
		}
	}()

	go watcher.Run(ctx)

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger.With("component", "reconciler"),
	}, loop, ws.Reconcile)
	go func() {
		// the first pass drops windows that vanished while starting up
		if err := reconciler.ReconcileNow(); err != nil {
			return
		}
		reconciler.Run(ctx)
	}()

	logger.Info("stratum daemon started", "display", cfg.Display, "windows", len(ws.Table().Managed()))
	err = loop.Run(ctx, daemon.LoopOptions{
		Events:   conn,
		Interval: ws.Compositor().Interval,
		Tick:     func() { ws.Tick() },
	})
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down stratum daemon")
		return nil
	}
	return err
}

func cornerNames(edges map[string]string) []string {
	names := make([]string, 0, len(edges))
	for corner := range edges {
		names = append(names, corner)
	}
	slices.Sort(names)
	return names
}
