package scene

import "image"

// Region is a set of pixels stored as non-overlapping rectangles. Values are
// immutable; every operation returns a new Region.
type Region struct {
	rects []image.Rectangle
}

const infinite = 1 << 28

// InfiniteRegion covers every representable pixel.
func InfiniteRegion() Region {
	return Region{rects: []image.Rectangle{image.Rect(-infinite, -infinite, infinite, infinite)}}
}

// RegionOf builds a region from possibly overlapping rectangles.
func RegionOf(rs ...image.Rectangle) Region {
	var r Region
	for _, rect := range rs {
		r = r.UnionRect(rect)
	}
	return r
}

func (r Region) IsEmpty() bool { return len(r.rects) == 0 }

// Rects returns the disjoint rectangles making up r.
func (r Region) Rects() []image.Rectangle {
	out := make([]image.Rectangle, len(r.rects))
	copy(out, r.rects)
	return out
}

func (r Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, rect := range r.rects {
		b = b.Union(rect)
	}
	return b
}

// Area returns the number of pixels covered.
func (r Region) Area() int {
	n := 0
	for _, rect := range r.rects {
		n += rect.Dx() * rect.Dy()
	}
	return n
}

func (r Region) Contains(p image.Point) bool {
	for _, rect := range r.rects {
		if p.In(rect) {
			return true
		}
	}
	return false
}

// Equal compares covered pixels, not the decomposition.
func (r Region) Equal(o Region) bool {
	return r.Subtract(o).IsEmpty() && o.Subtract(r).IsEmpty()
}

func (r Region) UnionRect(rect image.Rectangle) Region {
	if rect.Empty() {
		return r
	}
	pieces := []image.Rectangle{rect}
	for _, have := range r.rects {
		pieces = subtractAll(pieces, have)
		if len(pieces) == 0 {
			return r
		}
	}
	out := make([]image.Rectangle, 0, len(r.rects)+len(pieces))
	out = append(out, r.rects...)
	out = append(out, pieces...)
	return Region{rects: out}
}

func (r Region) Union(o Region) Region {
	out := r
	for _, rect := range o.rects {
		out = out.UnionRect(rect)
	}
	return out
}

func (r Region) SubtractRect(rect image.Rectangle) Region {
	if rect.Empty() || r.IsEmpty() {
		return r
	}
	return Region{rects: subtractAll(r.rects, rect)}
}

func (r Region) Subtract(o Region) Region {
	out := r
	for _, rect := range o.rects {
		out = out.SubtractRect(rect)
	}
	return out
}

func (r Region) IntersectRect(rect image.Rectangle) Region {
	var out []image.Rectangle
	for _, have := range r.rects {
		if in := have.Intersect(rect); !in.Empty() {
			out = append(out, in)
		}
	}
	return Region{rects: out}
}

func (r Region) Intersect(o Region) Region {
	var out []image.Rectangle
	for _, a := range r.rects {
		for _, b := range o.rects {
			if in := a.Intersect(b); !in.Empty() {
				out = append(out, in)
			}
		}
	}
	return Region{rects: out}
}

func (r Region) Translate(p image.Point) Region {
	out := make([]image.Rectangle, len(r.rects))
	for i, rect := range r.rects {
		out[i] = rect.Add(p)
	}
	return Region{rects: out}
}

func subtractAll(rs []image.Rectangle, cut image.Rectangle) []image.Rectangle {
	out := make([]image.Rectangle, 0, len(rs))
	for _, rect := range rs {
		out = append(out, subtract(rect, cut)...)
	}
	return out
}

// subtract splits a around b into at most four bands.
func subtract(a, b image.Rectangle) []image.Rectangle {
	in := a.Intersect(b)
	if in.Empty() {
		return []image.Rectangle{a}
	}
	var out []image.Rectangle
	if a.Min.Y < in.Min.Y {
		out = append(out, image.Rect(a.Min.X, a.Min.Y, a.Max.X, in.Min.Y))
	}
	if in.Max.Y < a.Max.Y {
		out = append(out, image.Rect(a.Min.X, in.Max.Y, a.Max.X, a.Max.Y))
	}
	if a.Min.X < in.Min.X {
		out = append(out, image.Rect(a.Min.X, in.Min.Y, in.Min.X, in.Max.Y))
	}
	if in.Max.X < a.Max.X {
		out = append(out, image.Rect(in.Max.X, in.Min.Y, a.Max.X, in.Max.Y))
	}
	return out
}
