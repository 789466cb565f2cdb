package scene

import "image"

type QuadType int

const (
	QuadContents QuadType = iota
	QuadDecoration
)

// Quad is a rectangle of a window, in frame-local coordinates, that is drawn
// as one piece.
type Quad struct {
	Type QuadType
	Rect image.Rectangle
}

type QuadList []Quad

// Select returns the quads of type t.
func (l QuadList) Select(t QuadType) QuadList {
	var out QuadList
	for _, q := range l {
		if q.Type == t {
			out = append(out, q)
		}
	}
	return out
}

// Filter returns the quads not of type t.
func (l QuadList) Filter(t QuadType) QuadList {
	var out QuadList
	for _, q := range l {
		if q.Type != t {
			out = append(out, q)
		}
	}
	return out
}

func (l QuadList) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, q := range l {
		b = b.Union(q.Rect)
	}
	return b
}

func makeQuads(t QuadType, r Region) QuadList {
	out := make(QuadList, 0, len(r.rects))
	for _, rect := range r.rects {
		out = append(out, Quad{Type: t, Rect: rect})
	}
	return out
}
