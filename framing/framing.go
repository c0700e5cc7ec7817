// Package framing - Center framing of detected canvas regions.
//
// The framing transform translates the frame so that the union of all
// detected regions sits at the origin, then scales it up uniformly until the
// region fills the frame along its tighter axis. Transforms are eased in with
// a Smoother so the view drifts rather than jumps between frames.
package framing

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/nvr-ai/go-canvas/images"
	"github.com/nvr-ai/go-canvas/models/postprocess"
)

// DefaultLerpFactor is the fraction of the remaining distance covered per Step.
const DefaultLerpFactor float32 = 0.001

// Transform is a translation followed by a uniform scale, applied to the frame.
type Transform struct {
	X     float32 `json:"x"     yaml:"x"`
	Y     float32 `json:"y"     yaml:"y"`
	Scale float32 `json:"scale" yaml:"scale"`
}

// Identity returns the transform that leaves the frame unchanged.
func Identity() Transform {
	return Transform{Scale: 1}
}

// Lerp moves a towards b by the fraction t.
func Lerp(a, b Transform, t float32) Transform {
	return Transform{
		X:     a.X + (b.X-a.X)*t,
		Y:     a.Y + (b.Y-a.Y)*t,
		Scale: a.Scale + (b.Scale-a.Scale)*t,
	}
}

// Union returns the smallest rectangle containing every detection. It reports
// false when there are no detections.
func Union(detections []postprocess.Detection) (images.Rect, bool) {
	if len(detections) == 0 {
		return images.Rect{}, false
	}
	u := detections[0].BoundingBox
	for _, d := range detections[1:] {
		u = u.Union(d.BoundingBox)
	}
	return u, true
}

// Target computes the framing transform for a width×height frame.
//
// The union of the detections is clamped to the frame. If it covers a
// positive area the target translates its origin to (0, 0) and scales by
// min(width/w, height/h); otherwise the identity is returned.
//
// Arguments:
//   - detections: The detections in the frame's pixel space.
//   - width: The frame width.
//   - height: The frame height.
//
// Returns:
//   - Transform: The target transform.
func Target(detections []postprocess.Detection, width, height int) Transform {
	u, ok := Union(detections)
	if !ok || width <= 0 || height <= 0 {
		return Identity()
	}

	fw := float32(width)
	fh := float32(height)
	r := u.Clamp(fw, fh)
	if !(r.Width > 0 && r.Height > 0) {
		return Identity()
	}

	return Transform{
		X:     -r.X,
		Y:     -r.Y,
		Scale: math32.Min(fw/r.Width, fh/r.Height),
	}
}

// Smoother eases a transform towards successive targets. It is safe for
// concurrent use.
type Smoother struct {
	mu      sync.Mutex
	current Transform
	factor  float32
}

// NewSmoother returns a smoother at the identity. A factor outside (0, 1]
// falls back to DefaultLerpFactor.
func NewSmoother(factor float32) *Smoother {
	if !(factor > 0 && factor <= 1) {
		factor = DefaultLerpFactor
	}
	return &Smoother{
		current: Identity(),
		factor:  factor,
	}
}

// Step moves the current transform towards target and returns it.
func (s *Smoother) Step(target Transform) Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Lerp(s.current, target, s.factor)
	return s.current
}

// Current returns the current transform.
func (s *Smoother) Current() Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reset returns the smoother to the identity.
func (s *Smoother) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Identity()
}
