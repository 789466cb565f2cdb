package window

// Layer is a stacking band. Every window belongs to exactly one layer and
// layers stack in declaration order.
type Layer int

const (
	LayerDesktop Layer = iota
	LayerBelow
	LayerNormal
	LayerDock
	LayerAbove
	LayerActive

	NumLayers = int(LayerActive) + 1
)

func (l Layer) String() string {
	switch l {
	case LayerDesktop:
		return "desktop"
	case LayerBelow:
		return "below"
	case LayerNormal:
		return "normal"
	case LayerDock:
		return "dock"
	case LayerAbove:
		return "above"
	case LayerActive:
		return "active"
	default:
		return "unknown"
	}
}

// Layer returns the window's memoised layer, recomputing it after an
// invalidation. Deleted windows keep the layer they had when they closed.
func (w *Window) Layer() Layer {
	if !w.layerValid {
		w.layer = w.belongsToLayer()
		w.layerValid = true
	}
	return w.layer
}

// InvalidateLayer drops the cached layer.
func (w *Window) InvalidateLayer() {
	if w.deleted {
		return
	}
	w.layerValid = false
}

func (w *Window) belongsToLayer() Layer {
	switch {
	case w.typ == TypeDesktop:
		return LayerDesktop
	case w.typ == TypeSplash:
		// splash screens stay with normal windows so they do not cover
		// dialogs raised on top of them
		return LayerNormal
	case w.typ == TypeDock:
		if w.keepBelow {
			return LayerNormal
		}
		if w.keepAbove {
			return LayerAbove
		}
		return LayerDock
	case w.keepBelow:
		return LayerBelow
	case w.isActiveFullScreen():
		return LayerActive
	case w.keepAbove:
		return LayerAbove
	}
	return LayerNormal
}

// isActiveFullScreen reports whether a fullscreen window should cover docks.
// That holds while it, or a window of its group, is the most recently
// activated window, and also while the active window lives on another screen.
func (w *Window) isActiveFullScreen() bool {
	if !w.fullScreen || w.table == nil {
		return false
	}
	ac, ok := w.table.Get(w.table.active)
	if !ok {
		return false
	}
	return ac == w || ac.group == w.group || ac.screen != w.screen
}
