package postprocess

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-canvas/images"
	"github.com/stretchr/testify/assert"
)

func TestToPixel(t *testing.T) {
	tests := []struct {
		name     string
		box      images.Rect
		expected images.Rect
	}{
		{"Full frame", images.Rect{X: 0, Y: 0, Width: 1, Height: 1}, images.Rect{X: 0, Y: 0, Width: 200, Height: 100}},
		{"Bottom left quarter", images.Rect{X: 0, Y: 0, Width: 0.5, Height: 0.5}, images.Rect{X: 0, Y: 50, Width: 100, Height: 50}},
		{"Top right quarter", images.Rect{X: 0.5, Y: 0.5, Width: 0.5, Height: 0.5}, images.Rect{X: 100, Y: 0, Width: 100, Height: 50}},
		{"Overflowing top", images.Rect{X: 0.5, Y: 0.75, Width: 0.25, Height: 0.5}, images.Rect{X: 100, Y: 0, Width: 50, Height: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToPixel(tt.box, 200, 100))
		})
	}
}

func TestToNormalized_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 1000; i++ {
		w := rng.Float32() * 0.9
		h := rng.Float32() * 0.9
		box := images.Rect{
			X:      rng.Float32() * (1 - w),
			Y:      rng.Float32() * (1 - h),
			Width:  w,
			Height: h,
		}
		width := 1 + rng.Intn(3840)
		height := 1 + rng.Intn(2160)

		back := ToNormalized(ToPixel(box, width, height), width, height)

		assert.InDelta(t, box.X, back.X, 1e-5)
		assert.InDelta(t, box.Y, back.Y, 1e-5)
		assert.InDelta(t, box.Width, back.Width, 1e-5)
		assert.InDelta(t, box.Height, back.Height, 1e-5)
	}
}

func TestSanitize(t *testing.T) {
	c := Sanitize(RawCandidate{Box: images.Rect{X: -0.5, Y: 0.5, Width: 1, Height: -1}, Score: 2})
	assert.Equal(t, float32(1), c.Score)
	assert.Equal(t, images.Rect{X: 0, Y: 0.5, Width: 0.5, Height: 0}, c.Box)
}

func TestThreshold(t *testing.T) {
	in := []RawCandidate{{Score: 0.2}, {Score: 0.5}, {Score: 0.9}, {Score: 0.4}}
	out := Threshold(in, 0.4)
	assert.Equal(t, []RawCandidate{{Score: 0.5}, {Score: 0.9}, {Score: 0.4}}, out)
}

func TestSuppress(t *testing.T) {
	a := Detection{BoundingBox: images.Rect{X: 0, Y: 0, Width: 10, Height: 10}, Confidence: 0.6}
	b := Detection{BoundingBox: images.Rect{X: 5, Y: 0, Width: 10, Height: 10}, Confidence: 0.9}
	c := Detection{BoundingBox: images.Rect{X: 50, Y: 50, Width: 10, Height: 10}, Confidence: 0.7}

	// IoU(a, b) = 50 / 150 = 0.333
	assert.Equal(t, []Detection{b, c}, Suppress([]Detection{a, b, c}, 0.3))
	assert.Equal(t, []Detection{b, c, a}, Suppress([]Detection{a, b, c}, 0.34))
	assert.Equal(t, []Detection{}, Suppress(nil, 0.5))
}
