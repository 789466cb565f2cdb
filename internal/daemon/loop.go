package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrStopped is returned by Call once the loop has exited.
var ErrStopped = errors.New("daemon loop stopped")

// EventPump runs X event handlers in step with the loop. Each event is
// bracketed by a receive on before and after.
type EventPump interface {
	MainPing() (before, after, quit chan struct{})
}

type LoopOptions struct {
	// Events may be nil when no windowing system is attached.
	Events EventPump
	// Interval returns the paint period; it is read again after every tick.
	Interval func() time.Duration
	Tick     func()
}

// Loop owns the goroutine that touches the workspace. X event handlers,
// paint ticks, control calls and config reloads all run on it, one at a
// time.
type Loop struct {
	calls chan func()
	done  chan struct{}
	log   *slog.Logger
}

func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		calls: make(chan func()),
		done:  make(chan struct{}),
		log:   logger,
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.calls <- wrapped:
	case <-l.done:
		return ErrStopped
	}
	<-finished
	return nil
}

// Post runs fn on the loop without waiting. It reports false when the loop
// has exited.
func (l *Loop) Post(fn func()) bool {
	go func() {
		select {
		case l.calls <- fn:
		case <-l.done:
		}
	}()
	select {
	case <-l.done:
		return false
	default:
		return true
	}
}

// Run processes events, calls and ticks until ctx is cancelled or the event
// pump quits.
func (l *Loop) Run(ctx context.Context, opts LoopOptions) error {
	defer close(l.done)

	var before, after, quit chan struct{}
	if opts.Events != nil {
		before, after, quit = opts.Events.MainPing()
	}

	interval := func() time.Duration {
		if opts.Interval == nil {
			return time.Second / 60
		}
		if d := opts.Interval(); d > 0 {
			return d
		}
		return time.Second / 60
	}
	ticker := time.NewTimer(interval())
	defer ticker.Stop()

	l.log.Debug("daemon loop started")
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("daemon loop stopped")
			return ctx.Err()
		case <-quit:
			l.log.Info("X event loop quit")
			return nil
		case <-before:
			// the X handler runs now; wait until it is done
			<-after
		case fn := <-l.calls:
			l.run(fn)
		case <-ticker.C:
			if opts.Tick != nil {
				l.run(opts.Tick)
			}
			ticker.Reset(interval())
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.log.Error("daemon loop panic recovered", "error", err)
		}
	}()
	fn()
}
