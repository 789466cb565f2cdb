package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/x11"
)

// Actions are the operations hotkeys invoke. Window id 0 means the active
// window.
type Actions interface {
	RaiseOrLowerWindow(xid uint32) error
	LowerWindow(xid uint32) error
	Trigger(effect string) error
}

// Binding is one key sequence and what it does.
type Binding struct {
	Key    string
	Action string
	// Effect is set for effect triggers.
	Effect string
}

const (
	ActionRaiseOrLower = "raise_or_lower"
	ActionLower        = "lower"
	ActionTrigger      = "trigger"
)

// Bindings lists the enabled bindings of cfg in a stable order.
func Bindings(cfg config.HotkeysConfig) []Binding {
	var out []Binding
	if cfg.RaiseOrLower != "" {
		out = append(out, Binding{Key: cfg.RaiseOrLower, Action: ActionRaiseOrLower})
	}
	if cfg.Lower != "" {
		out = append(out, Binding{Key: cfg.Lower, Action: ActionLower})
	}
	names := make([]string, 0, len(cfg.Effects))
	for name, key := range cfg.Effects {
		if key != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, Binding{Key: cfg.Effects[name], Action: ActionTrigger, Effect: name})
	}
	return out
}

// Run performs the binding's action.
func (b Binding) Run(a Actions) error {
	switch b.Action {
	case ActionRaiseOrLower:
		return a.RaiseOrLowerWindow(0)
	case ActionLower:
		return a.LowerWindow(0)
	case ActionTrigger:
		return a.Trigger(b.Effect)
	}
	return fmt.Errorf("unknown hotkey action %q", b.Action)
}

// Handler manages global keyboard shortcuts. Callbacks run on the X event
// goroutine, which the daemon loop keeps in step with everything else.
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
	log     *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(conn *x11.Connection, actions Actions, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &Handler{
		xu:      conn.XUtil,
		root:    conn.Root,
		actions: actions,
		log:     logger,
	}
}

// Register grabs every binding of cfg, replacing earlier ones. Bindings
// that fail to grab are reported together; the others stay active.
func (h *Handler) Register(cfg config.HotkeysConfig) error {
	keybind.Detach(h.xu, h.root)

	var errs []error
	for _, b := range Bindings(cfg) {
		b := b
		err := h.RegisterFunc(b.Key, func() {
			if err := b.Run(h.actions); err != nil {
				h.log.Warn("hotkey action failed", "key", b.Key, "action", b.Action, "effect", b.Effect, "error", err)
			}
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to register %s hotkey %q: %w", b.Action, b.Key, err))
			continue
		}
		h.log.Debug("hotkey registered", "key", b.Key, "action", b.Action, "effect", b.Effect)
	}
	return errors.Join(errs...)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the lock modifiers, including
// none. Zero and duplicate masks are skipped.
func ignoreMasks(locks ...uint16) []uint16 {
	var base []uint16
	for _, m := range locks {
		if m == 0 {
			continue
		}
		dup := false
		for _, b := range base {
			dup = dup || b == m
		}
		if !dup {
			base = append(base, m)
		}
	}

	unique := make(map[uint16]struct{})
	unique[0] = struct{}{}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
