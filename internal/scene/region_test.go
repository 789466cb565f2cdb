package scene

import (
	"image"
	"testing"
)

func TestRegionAlgebra(t *testing.T) {
	a := RegionOf(image.Rect(0, 0, 10, 10))
	b := RegionOf(image.Rect(5, 5, 15, 15))

	if got := a.Union(b).Area(); got != 175 {
		t.Fatalf("union area = %d, want 175", got)
	}
	if got := a.Intersect(b).Area(); got != 25 {
		t.Fatalf("intersection area = %d, want 25", got)
	}
	if got := a.Subtract(b).Area(); got != 75 {
		t.Fatalf("difference area = %d, want 75", got)
	}
	if !a.Subtract(a).IsEmpty() {
		t.Fatalf("a - a not empty")
	}
	if !RegionOf(image.Rect(0, 0, 10, 5), image.Rect(0, 5, 10, 10)).Equal(a) {
		t.Fatalf("split region not equal to whole")
	}
	if got := a.Union(b).Bounds(); got != image.Rect(0, 0, 15, 15) {
		t.Fatalf("bounds = %v", got)
	}
	if !a.Translate(image.Pt(20, 0)).Contains(image.Pt(25, 5)) {
		t.Fatalf("translated region misses point")
	}
}

func TestRegionRectsDisjoint(t *testing.T) {
	r := RegionOf(
		image.Rect(0, 0, 10, 10),
		image.Rect(5, 0, 20, 10),
		image.Rect(0, 5, 30, 8),
	)
	rects := r.Rects()
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Overlaps(rects[j]) {
				t.Fatalf("rects %v and %v overlap", rects[i], rects[j])
			}
		}
	}
	if got := r.Area(); got != 10*20+10*3 {
		t.Fatalf("area = %d", got)
	}
}

func TestInfiniteRegionClamp(t *testing.T) {
	display := image.Rect(0, 0, 640, 480)
	if got := InfiniteRegion().IntersectRect(display); !got.Equal(RegionOf(display)) {
		t.Fatalf("clamped infinite region = %v", got.Rects())
	}
}
