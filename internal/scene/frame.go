package scene

import (
	"image"
	"image/color"
)

// EffectFrame is a box an effect draws on top of the scene, such as a
// selection highlight.
type EffectFrame struct {
	scene *Scene

	Geometry image.Rectangle
	Color    color.RGBA
	Text     string
}

// NewEffectFrame creates a frame drawn through s's effects chain.
func (s *Scene) NewEffectFrame() *EffectFrame {
	return &EffectFrame{scene: s, Color: color.RGBA{R: 0x3d, G: 0xae, B: 0xe9, A: 0xff}}
}

// Render paints the frame into region.
func (f *EffectFrame) Render(region Region, opacity, frameOpacity float64) {
	if f.Geometry.Empty() {
		return
	}
	f.scene.effects.PaintEffectFrame(f, region, opacity, frameOpacity)
}
