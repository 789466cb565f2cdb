package daemon

import (
	"context"
	"log/slog"
	"time"
)

// ReconcileFunc drops windows that vanished and reports how many it dropped.
type ReconcileFunc func() (int, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks the window table against the windowing
// system and drops entries whose windows disappeared without an event.
type Reconciler struct {
	interval  time.Duration
	loop      *Loop
	reconcile ReconcileFunc
	logger    *slog.Logger
}

// NewReconciler creates a new reconciler. Passes run on loop.
func NewReconciler(cfg ReconcilerConfig, loop *Loop, reconcile ReconcileFunc) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:  interval,
		loop:      loop,
		reconcile: reconcile,
		logger:    logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			if err := r.loop.Call(r.pass); err != nil {
				r.logger.Info("reconciler stopped", "reason", err)
				return
			}
		}
	}
}

// pass performs a single reconciliation pass.
func (r *Reconciler) pass() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	dropped, err := r.reconcile()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}
	if dropped > 0 {
		r.logger.Info("reconciler: dropped vanished windows", "count", dropped)
	}
}

// ReconcileNow runs a pass on the loop and waits for it.
func (r *Reconciler) ReconcileNow() error {
	return r.loop.Call(r.pass)
}
