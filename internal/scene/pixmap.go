package scene

// Pixmap is one generation of a window's content.
type Pixmap interface {
	// Create binds the content. It is a no-op on a valid pixmap and may
	// fail, leaving the pixmap invalid.
	Create()
	IsValid() bool
	// MarkAsDiscarded flags a generation replaced by a newer one.
	MarkAsDiscarded()
	IsDiscarded() bool
	// Release frees the underlying resources.
	Release()
}

// PixmapState describes where a window is in its pixmap lifecycle.
type PixmapState int

const (
	NoPixmap PixmapState = iota
	PixmapValid
	PixmapDiscardedPendingUnref
)

func (s PixmapState) String() string {
	switch s {
	case PixmapValid:
		return "valid"
	case PixmapDiscardedPendingUnref:
		return "discarded"
	}
	return "none"
}
