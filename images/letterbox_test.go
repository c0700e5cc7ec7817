package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLetterbox(t *testing.T) {
	tests := []struct {
		name     string
		srcW     int
		srcH     int
		expected Letterbox
	}{
		{
			name: "Landscape 1080p",
			srcW: 1920, srcH: 1080,
			expected: Letterbox{
				SourceWidth: 1920, SourceHeight: 1080, Width: 640, Height: 640,
				Scale: 1.0 / 3.0, OffsetX: 0, OffsetY: 140, ScaledWidth: 640, ScaledHeight: 360,
			},
		},
		{
			name: "Portrait",
			srcW: 720, srcH: 1280,
			expected: Letterbox{
				SourceWidth: 720, SourceHeight: 1280, Width: 640, Height: 640,
				Scale: 0.5, OffsetX: 140, OffsetY: 0, ScaledWidth: 360, ScaledHeight: 640,
			},
		},
		{
			name: "Square upscale",
			srcW: 320, srcH: 320,
			expected: Letterbox{
				SourceWidth: 320, SourceHeight: 320, Width: 640, Height: 640,
				Scale: 2, OffsetX: 0, OffsetY: 0, ScaledWidth: 640, ScaledHeight: 640,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lb := NewLetterbox(tt.srcW, tt.srcH, 640, 640)
			assert.InDelta(t, tt.expected.Scale, lb.Scale, 1e-9)
			lb.Scale = tt.expected.Scale
			assert.Equal(t, tt.expected, lb)
		})
	}
}

func TestLetterbox_RoundTrip(t *testing.T) {
	lb := NewLetterbox(1920, 1080, 640, 640)
	src := Rect{X: 704.0625, Y: 52.5, Width: 744.375, Height: 973.5}

	back := lb.ToSource(lb.FromSource(src))

	assert.InDelta(t, src.X, back.X, 1e-3)
	assert.InDelta(t, src.Y, back.Y, 1e-3)
	assert.InDelta(t, src.Width, back.Width, 1e-3)
	assert.InDelta(t, src.Height, back.Height, 1e-3)
}

func TestLetterbox_ToSourcePadding(t *testing.T) {
	lb := NewLetterbox(1920, 1080, 640, 640)

	// The top padding band lies above the frame.
	r := lb.ToSource(Rect{X: 0, Y: 0, Width: 640, Height: 140})
	assert.InDelta(t, -420, r.Y, 1e-3)
	assert.InDelta(t, 420, r.Height, 1e-3)
	assert.InDelta(t, 1920, r.Width, 1e-3)
}

func TestLetterbox_Apply(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	lb := NewLetterbox(200, 100, 64, 64)
	out := lb.Apply(src)

	require.Equal(t, image.Rect(0, 0, 64, 64), out.Bounds())
	assert.Equal(t, 16, lb.OffsetY)
	assert.Equal(t, LetterboxFill, out.RGBAAt(32, 2), "padding should be gray")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(32, 32), "content should be red")
}
