// Package camera owns the viewport transform mapping simulation-space
// coordinates to screen space: screen = sim*scale + translate.
//
// Rendering and hit-testing must both go through the same Camera value in a
// given frame; applying different transforms to the two is the defect class
// this package exists to prevent.
package camera

import "math"

// Scale bounds enforced after every mutation.
const (
	MinScale = 0.5
	MaxScale = 3.0
)

// Camera is the affine viewport transform.
type Camera struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// New returns the identity transform.
func New() Camera {
	return Camera{Scale: 1}
}

// Apply maps a simulation-space point to screen space.
func (c Camera) Apply(x, y float64) (float64, float64) {
	return x*c.Scale + c.TranslateX, y*c.Scale + c.TranslateY
}

// Invert maps a screen-space point back to simulation space.
func (c Camera) Invert(sx, sy float64) (float64, float64) {
	return (sx - c.TranslateX) / c.Scale, (sy - c.TranslateY) / c.Scale
}

// Pan adds a continuous pointer movement delta to the translation.
func (c *Camera) Pan(dx, dy float64) {
	c.TranslateX += dx
	c.TranslateY += dy
}

// ZoomBy adjusts scale from a vertical movement delta (the pinch proxy:
// upward movement zooms in). The factor is bounded so a single wild delta
// cannot flip or explode the scale, and the result is clamped.
func (c *Camera) ZoomBy(dy float64) {
	factor := 1 - math.Max(-0.5, math.Min(0.5, dy/500))
	c.Scale *= factor
	c.clamp()
}

// Reset restores the identity transform.
func (c *Camera) Reset() {
	c.Scale = 1
	c.TranslateX = 0
	c.TranslateY = 0
}

func (c *Camera) clamp() {
	if c.Scale < MinScale {
		c.Scale = MinScale
	}
	if c.Scale > MaxScale {
		c.Scale = MaxScale
	}
}
