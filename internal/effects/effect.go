// Package effects runs visual effects as a chain over the scene's paint
// hooks. Effects implement only the hooks they care about; the Handler walks
// the active ones in order and falls through to the scene at the end of each
// chain.
//
// The Handler is owned by the daemon loop and is not safe for concurrent use.
package effects

import (
	"image"
	"time"

	"github.com/1broseidon/stratum/internal/config"
	"github.com/1broseidon/stratum/internal/scene"
)

// Effect is the minimum an effect implements. Every other capability is an
// optional interface checked per hook.
type Effect interface {
	// IsActive reports whether the effect takes part in the next paint
	// cycle.
	IsActive() bool
}

type ScreenPrePainter interface {
	PrePaintScreen(h *Handler, data *scene.ScreenPrePaintData, elapsed time.Duration)
}

type ScreenPainter interface {
	PaintScreen(h *Handler, mask scene.PaintMask, region scene.Region, data *scene.ScreenPaintData)
}

type ScreenPostPainter interface {
	PostPaintScreen(h *Handler)
}

type WindowPrePainter interface {
	PrePaintWindow(h *Handler, w *scene.Window, data *scene.WindowPrePaintData, elapsed time.Duration)
}

type WindowPainter interface {
	PaintWindow(h *Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData)
}

type WindowPostPainter interface {
	PostPaintWindow(h *Handler, w *scene.Window)
}

type WindowDrawer interface {
	DrawWindow(h *Handler, w *scene.Window, mask scene.PaintMask, region scene.Region, data *scene.WindowPaintData)
}

type QuadBuilder interface {
	BuildQuads(h *Handler, w *scene.Window, quads *scene.QuadList)
}

type FramePainter interface {
	PaintEffectFrame(h *Handler, f *scene.EffectFrame, region scene.Region, opacity, frameOpacity float64)
}

// Reconfigurer re-reads the effect's config group.
type Reconfigurer interface {
	Reconfigure(cfg config.Group)
}

// Triggerable effects can be started by hotkey, screen edge, or IPC.
type Triggerable interface {
	Trigger()
}

// Closer releases resources when the effect is unloaded.
type Closer interface {
	Close()
}

type MouseHandler interface {
	MouseEvent(ev MouseEvent)
}

type KeyboardHandler interface {
	KeyEvent(ev KeyEvent)
}

// Window notifications. Every loaded effect implementing one is told,
// active or not.
type (
	WindowAddedObserver interface {
		WindowAdded(w *scene.Window)
	}
	// WindowClosedObserver sees the window while its deleted placeholder is
	// still painted.
	WindowClosedObserver interface {
		WindowClosed(w *scene.Window)
	}
	WindowDeletedObserver interface {
		WindowDeleted(w *scene.Window)
	}
	// WindowActivatedObserver gets nil when nothing is active.
	WindowActivatedObserver interface {
		WindowActivated(w *scene.Window)
	}
	WindowGeometryObserver interface {
		WindowGeometryChanged(w *scene.Window, old image.Rectangle)
	}
	StackingObserver interface {
		StackingOrderChanged()
	}
)

type MouseEventKind int

const (
	MouseMotion MouseEventKind = iota
	MousePress
	MouseRelease
)

// MouseEvent is a pointer event in root coordinates.
type MouseEvent struct {
	Kind   MouseEventKind
	Pos    image.Point
	Button int
	Time   time.Time
}

// KeyEvent carries a key in xgbutil keybind notation, e.g. "Escape" or
// "Return".
type KeyEvent struct {
	Key       string
	Modifiers uint16
	Pressed   bool
}
