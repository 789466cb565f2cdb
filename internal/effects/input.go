package effects

import (
	"slices"

	"github.com/1broseidon/stratum/internal/assert"
)

// StartMouseInterception routes pointer events to e through a full-screen
// input-only window. The window is shown for the first interceptor; calling
// again for the same effect does nothing.
func (h *Handler) StartMouseInterception(e Effect) {
	if slices.Contains(h.mouse, e) {
		return
	}
	h.mouse = append(h.mouse, e)
	if len(h.mouse) == 1 && h.input != nil {
		if err := h.input.ShowInterceptionWindow(); err != nil {
			h.log.Warn("failed to show input window", "error", err)
		}
	}
}

// StopMouseInterception ends e's interception; the window goes away with
// the last interceptor.
func (h *Handler) StopMouseInterception(e Effect) {
	i := slices.Index(h.mouse, e)
	if i < 0 {
		return
	}
	h.mouse = slices.Delete(h.mouse, i, i+1)
	if len(h.mouse) == 0 && h.input != nil {
		h.input.HideInterceptionWindow()
	}
}

func (h *Handler) IsMouseInterception() bool { return len(h.mouse) > 0 }

// DispatchMouseEvent delivers ev to every intercepting effect. It reports
// whether the event was intercepted.
func (h *Handler) DispatchMouseEvent(ev MouseEvent) bool {
	if len(h.mouse) == 0 {
		return false
	}
	for _, e := range slices.Clone(h.mouse) {
		if m, ok := e.(MouseHandler); ok {
			m.MouseEvent(ev)
		}
	}
	return true
}

// CheckInputWindowStacking keeps the interception window on top after a
// restack.
func (h *Handler) CheckInputWindowStacking() {
	if len(h.mouse) == 0 || h.input == nil {
		return
	}
	h.input.RaiseInterceptionWindow()
}

// GrabKeyboard gives e every key event. Only one effect holds the grab at a
// time; it fails if another holds it or the windowing system refuses.
func (h *Handler) GrabKeyboard(e Effect) bool {
	if h.keyboard != nil {
		return false
	}
	if h.input != nil {
		if err := h.input.GrabKeyboard(); err != nil {
			h.log.Warn("keyboard grab failed", "error", err)
			return false
		}
	}
	h.keyboard = e
	return true
}

// UngrabKeyboard releases e's grab. e must hold it.
func (h *Handler) UngrabKeyboard(e Effect) {
	if !assert.That(h.keyboard != nil && h.keyboard == e, h.log, "keyboard ungrab by effect not holding the grab") {
		return
	}
	if h.input != nil {
		h.input.UngrabKeyboard()
	}
	h.keyboard = nil
}

func (h *Handler) HasKeyboardGrab() bool { return h.keyboard != nil }

// DispatchKeyEvent delivers ev to the grabbing effect and reports whether
// one holds the grab.
func (h *Handler) DispatchKeyEvent(ev KeyEvent) bool {
	if h.keyboard == nil {
		return false
	}
	if k, ok := h.keyboard.(KeyboardHandler); ok {
		k.KeyEvent(ev)
	}
	return true
}
