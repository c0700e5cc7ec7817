package images

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIoU_Correctness validates the IoU implementation against known test cases
func TestIoU_Correctness(t *testing.T) {
	tests := []struct {
		name     string
		r1       Rect
		r2       Rect
		expected float32
		epsilon  float32
	}{
		{
			name:     "Identical rectangles",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{0, 0, 100, 100},
			expected: 1.0,
			epsilon:  0.001,
		},
		{
			name:     "No overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{200, 200, 100, 100},
			expected: 0.0,
			epsilon:  0.001,
		},
		{
			name:     "Touching edges",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{100, 0, 100, 100},
			expected: 0.0,
			epsilon:  0.001,
		},
		{
			name:     "Half overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{50, 50, 100, 100},
			expected: 0.142857, // 2500 / (10000+10000-2500)
			epsilon:  0.001,
		},
		{
			name:     "Small overlap",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{90, 90, 100, 100},
			expected: 0.005025, // 100 / 19900
			epsilon:  0.001,
		},
		{
			name:     "One inside other",
			r1:       Rect{0, 0, 100, 100},
			r2:       Rect{25, 25, 50, 50},
			expected: 0.25,
			epsilon:  0.001,
		},
		{
			name:     "Normalized boxes",
			r1:       Rect{0.1, 0.1, 0.4, 0.4},
			r2:       Rect{0.1, 0.1, 0.4, 0.2},
			expected: 0.5,
			epsilon:  0.0001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateIoU(tt.r1, tt.r2)
			assert.InDelta(t, tt.expected, result, float64(tt.epsilon))

			// IoU(A, B) should equal IoU(B, A)
			reverse := CalculateIoU(tt.r2, tt.r1)
			assert.InDelta(t, result, reverse, float64(tt.epsilon), "IoU not symmetric")
		})
	}
}

// TestIoU_vs_ImageRectangle compares our implementation against image.Rectangle
func TestIoU_vs_ImageRectangle(t *testing.T) {
	testCases := []struct {
		name string
		r1   image.Rectangle
		r2   image.Rectangle
	}{
		{"No overlap", image.Rect(0, 0, 100, 100), image.Rect(200, 200, 300, 300)},
		{"Partial overlap", image.Rect(0, 0, 100, 100), image.Rect(50, 50, 150, 150)},
		{"Full overlap", image.Rect(50, 50, 150, 150), image.Rect(50, 50, 150, 150)},
		{"One inside other", image.Rect(0, 0, 100, 100), image.Rect(25, 25, 75, 75)},
		{"Large boxes", image.Rect(0, 0, 1920, 1080), image.Rect(960, 540, 1920, 1080)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			customResult := CalculateIoU(fromRectangle(tc.r1), fromRectangle(tc.r2))
			imageResult := imageRectangleIoU(tc.r1, tc.r2)
			assert.InDelta(t, imageResult, customResult, 0.0001)
		})
	}
}

func fromRectangle(r image.Rectangle) Rect {
	return Rect{X: float32(r.Min.X), Y: float32(r.Min.Y), Width: float32(r.Dx()), Height: float32(r.Dy())}
}

// imageRectangleIoU implements IoU using Go's standard library image.Rectangle
func imageRectangleIoU(r1, r2 image.Rectangle) float32 {
	intersect := r1.Intersect(r2)
	if intersect.Empty() {
		return 0.0
	}

	intersectArea := intersect.Dx() * intersect.Dy()
	r1Area := r1.Dx() * r1.Dy()
	r2Area := r2.Dx() * r2.Dy()
	union := r1Area + r2Area - intersectArea

	return float32(intersectArea) / float32(union)
}

// TestIoU_EdgeCases tests edge cases and boundary conditions
func TestIoU_EdgeCases(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name string
		r1   Rect
		r2   Rect
	}{
		{"Zero area rectangle 1", Rect{0, 0, 0, 0}, Rect{0, 0, 100, 100}},
		{"Zero area rectangle 2", Rect{0, 0, 100, 100}, Rect{50, 50, 0, 0}},
		{"Both zero area", Rect{0, 0, 0, 0}, Rect{10, 10, 0, 0}},
		{"Negative coordinates", Rect{-100, -100, 100, 100}, Rect{-50, -50, 100, 100}},
		{"Negative size", Rect{0, 0, -10, -10}, Rect{-5, -5, 10, 10}},
		{"NaN coordinates", Rect{nan, 0, 10, 10}, Rect{0, 0, 10, 10}},
		{"Very large coordinates", Rect{0, 0, 999999, 999999}, Rect{500000, 500000, 499999, 499999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateIoU(tt.r1, tt.r2)
			assert.GreaterOrEqual(t, result, float32(0))
			assert.LessOrEqual(t, result, float32(1))

			reverseResult := CalculateIoU(tt.r2, tt.r1)
			assert.GreaterOrEqual(t, reverseResult, float32(0))
			assert.LessOrEqual(t, reverseResult, float32(1))
		})
	}
}

func TestRect_Clamp(t *testing.T) {
	inf := float32(math.Inf(1))
	tests := []struct {
		name     string
		in       Rect
		expected Rect
	}{
		{"Inside", Rect{10, 10, 20, 20}, Rect{10, 10, 20, 20}},
		{"Overflows right and bottom", Rect{90, 90, 20, 20}, Rect{90, 90, 10, 10}},
		{"Negative origin", Rect{-10, -5, 20, 20}, Rect{0, 0, 10, 15}},
		{"Fully outside", Rect{150, 150, 20, 20}, Rect{100, 100, 0, 0}},
		{"Negative size", Rect{10, 10, -5, -5}, Rect{10, 10, 0, 0}},
		{"Infinite width", Rect{10, 10, inf, 5}, Rect{10, 10, 0, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.Clamp(100, 100))
		})
	}
}

func TestRect_Union(t *testing.T) {
	u := Rect{10, 10, 10, 10}.Union(Rect{30, 5, 10, 10})
	assert.Equal(t, Rect{10, 5, 30, 15}, u)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(255), Clamp(300.5, 0, 255))
	assert.Equal(t, float32(0), Clamp(-10, 0, 255))
	assert.Equal(t, float32(0), Clamp(float32(math.NaN()), 0, 1))
	assert.Equal(t, float32(0.5), Clamp(0.5, 0, 1))
}
