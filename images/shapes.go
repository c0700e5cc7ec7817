// Package images - Image buffers and region geometry.
package images

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Rect is an axis-aligned region described by its origin corner and size.
//
// The same type carries both normalized boxes (unit square, origin at the
// bottom-left) and pixel boxes (origin at the top-left); the field holding a
// Rect documents which space it is in.
type Rect struct {
	X      float32 `json:"x"      yaml:"x"`
	Y      float32 `json:"y"      yaml:"y"`
	Width  float32 `json:"width"  yaml:"width"`
	Height float32 `json:"height" yaml:"height"`
}

// X2 returns the far horizontal edge of the rectangle.
func (r Rect) X2() float32 {
	return r.X + r.Width
}

// Y2 returns the far vertical edge of the rectangle.
func (r Rect) Y2() float32 {
	return r.Y + r.Height
}

// Area returns the area of the rectangle, zero for degenerate rectangles.
func (r Rect) Area() float32 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool {
	return r.Area() == 0
}

// Canon returns a copy of r with every field finite and sizes non-negative.
// NaN and infinite coordinates collapse to zero, negative sizes to zero.
func (r Rect) Canon() Rect {
	return Rect{
		X:      finite(r.X),
		Y:      finite(r.Y),
		Width:  math32.Max(finite(r.Width), 0),
		Height: math32.Max(finite(r.Height), 0),
	}
}

// Clamp restricts the rectangle to [0, width] × [0, height].
//
// The rectangle is first canonicalised, then intersected with the bounds. A
// rectangle lying entirely outside the bounds collapses onto the nearest edge
// with zero size rather than disappearing.
//
// Arguments:
//   - width: The horizontal extent of the bounds.
//   - height: The vertical extent of the bounds.
//
// Returns:
//   - Rect: The clamped rectangle.
func (r Rect) Clamp(width, height float32) Rect {
	c := r.Canon()
	x1 := Clamp(c.X, 0, width)
	y1 := Clamp(c.Y, 0, height)
	x2 := Clamp(c.X2(), 0, width)
	y2 := Clamp(c.Y2(), 0, height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x1 := math32.Min(r.X, o.X)
	y1 := math32.Min(r.Y, o.Y)
	x2 := math32.Max(r.X2(), o.X2())
	y2 := math32.Max(r.Y2(), o.Y2())
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f, %.2f) %.2fx%.2f", r.X, r.Y, r.Width, r.Height)
}

// CalculateIoU returns the intersection-over-union of two rectangles.
//
//	IoU = Area of Intersection / Area of Union
//
// A value of 1.0 means the rectangles are identical, 0.0 that they do not
// overlap at all. Touching edges and degenerate rectangles produce 0.
//
// The intersection corner is the maximum of the two origin corners and the
// far corner the minimum of the two far corners; if either extent is not
// positive the rectangles do not overlap. The union follows from
// inclusion-exclusion: Area(A) + Area(B) - Area(A ∩ B).
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value in [0, 1].
//
// Example Usage:
// ```go
//
//	rect1 := Rect{X: 0, Y: 0, Width: 10, Height: 10}
//	rect2 := Rect{X: 5, Y: 5, Width: 10, Height: 10}
//
//	iouScore := CalculateIoU(rect1, rect2) // 25 / 175 = 0.142857
//
// ```
func CalculateIoU(r, o Rect) float32 {
	ix1 := math32.Max(r.X, o.X)
	iy1 := math32.Max(r.Y, o.Y)
	ix2 := math32.Min(r.X2(), o.X2())
	iy2 := math32.Min(r.Y2(), o.Y2())

	interW := ix2 - ix1
	interH := iy2 - iy1
	if !(interW > 0) || !(interH > 0) {
		return 0.0
	}
	interArea := interW * interH

	unionArea := r.Area() + o.Area() - interArea
	if !(unionArea > 0) {
		return 0.0
	}

	return Clamp(interArea/unionArea, 0, 1)
}

// Clamp restricts a value to [lo, hi]. NaN maps to lo.
//
// @example
// clamped := Clamp(300.5, 0, 255) // Returns 255
// clamped := Clamp(-10.0, 0, 255) // Returns 0
func Clamp(value, lo, hi float32) float32 {
	if math32.IsNaN(value) || value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func finite(v float32) float32 {
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 0
	}
	return v
}
