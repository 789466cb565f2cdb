package x11

import (
	"image"
	"image/color"
	"testing"
)

func TestBGRARoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetRGBA(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 40})

	data := toBGRA(img, img.Bounds())
	if got := data[:4]; got[0] != 3 || got[1] != 2 || got[2] != 1 || got[3] != 255 {
		t.Fatalf("first pixel = %v, want [3 2 1 255]", got)
	}

	back := fromBGRA(data, image.Pt(3, 2), true)
	if got := back.RGBAAt(2, 1); got != (color.RGBA{R: 10, G: 20, B: 30, A: 40}) {
		t.Fatalf("pixel = %v", got)
	}
	opaque := fromBGRA(data, image.Pt(3, 2), false)
	if got := opaque.RGBAAt(2, 1).A; got != 0xff {
		t.Fatalf("alpha without alpha channel = %d, want 255", got)
	}
}

func TestToBGRASubRect(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 3, color.RGBA{R: 9, A: 255})
	data := toBGRA(img, image.Rect(2, 3, 4, 4))
	if len(data) != 8 {
		t.Fatalf("len = %d, want 8", len(data))
	}
	if data[2] != 9 {
		t.Fatalf("red channel = %d, want 9", data[2])
	}
}

func TestCornerRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)
	tests := []struct {
		corner string
		want   image.Rectangle
	}{
		{"top_left", image.Rect(0, 0, 1, 1)},
		{"top_right", image.Rect(99, 0, 100, 1)},
		{"bottom_left", image.Rect(0, 49, 1, 50)},
		{"bottom_right", image.Rect(99, 49, 100, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.corner, func(t *testing.T) {
			got, ok := cornerRect(bounds, tt.corner)
			if !ok || got != tt.want {
				t.Fatalf("cornerRect = %v, %v; want %v", got, ok, tt.want)
			}
		})
	}
	if _, ok := cornerRect(bounds, "middle"); ok {
		t.Fatal("unknown corner accepted")
	}
}

func TestMonitorIndex(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Width: 100, Height: 100},
		{ID: 1, X: 100, Width: 100, Height: 100},
	}
	if got := MonitorIndex(monitors, image.Rect(120, 10, 180, 50)); got != 1 {
		t.Fatalf("MonitorIndex = %d, want 1", got)
	}
	if got := MonitorIndex(monitors, image.Rect(500, 500, 600, 600)); got != 0 {
		t.Fatalf("MonitorIndex off screen = %d, want 0", got)
	}
}
