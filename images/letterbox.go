package images

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
)

// LetterboxFill is the padding color used around a letterboxed frame.
var LetterboxFill = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// Letterbox describes how a source frame is scaled into a fixed model input
// while keeping its aspect ratio. The scaled frame is centred and the
// remaining border is padded.
type Letterbox struct {
	// SourceWidth, SourceHeight are the dimensions of the original frame.
	SourceWidth, SourceHeight int
	// Width, Height are the dimensions of the model input.
	Width, Height int
	// Scale is the uniform factor applied to the source frame.
	Scale float64
	// OffsetX, OffsetY are the whole-pixel padding before the scaled frame.
	OffsetX, OffsetY int
	// ScaledWidth, ScaledHeight are the dimensions of the scaled frame.
	ScaledWidth, ScaledHeight int
}

// NewLetterbox computes the letterbox geometry for fitting a srcW×srcH frame
// into a dstW×dstH input.
//
// Arguments:
//   - srcW, srcH: The source frame dimensions. Must be positive.
//   - dstW, dstH: The model input dimensions. Must be positive.
//
// Returns:
//   - Letterbox: The geometry, with offsets and scaled size truncated to whole pixels.
//
// @example
// lb := NewLetterbox(1920, 1080, 640, 640)
// // lb.Scale = 0.3333, lb.OffsetX = 0, lb.OffsetY = 140, lb.ScaledWidth = 640, lb.ScaledHeight = 360
func NewLetterbox(srcW, srcH, dstW, dstH int) Letterbox {
	scale := math.Min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))

	scaledW := float64(srcW) * scale
	scaledH := float64(srcH) * scale

	return Letterbox{
		SourceWidth:  srcW,
		SourceHeight: srcH,
		Width:        dstW,
		Height:       dstH,
		Scale:        scale,
		OffsetX:      int((float64(dstW) - scaledW) / 2),
		OffsetY:      int((float64(dstH) - scaledH) / 2),
		ScaledWidth:  int(scaledW),
		ScaledHeight: int(scaledH),
	}
}

// Apply renders src into a new Width×Height RGBA image, padded with
// LetterboxFill.
//
// Arguments:
//   - src: The source frame. Its size should match SourceWidth×SourceHeight.
//
// Returns:
//   - *image.RGBA: The letterboxed frame.
func (l Letterbox) Apply(src image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: LetterboxFill}, image.Point{}, draw.Src)

	if l.ScaledWidth <= 0 || l.ScaledHeight <= 0 {
		return dst
	}

	scaled := resize.Resize(uint(l.ScaledWidth), uint(l.ScaledHeight), src, resize.Bilinear)
	target := image.Rect(l.OffsetX, l.OffsetY, l.OffsetX+l.ScaledWidth, l.OffsetY+l.ScaledHeight)
	draw.Draw(dst, target, scaled, scaled.Bounds().Min, draw.Src)

	return dst
}

// ToSource maps a pixel rectangle in letterbox space back to source-frame
// pixels. The result is not clamped; padding regions map outside the frame.
func (l Letterbox) ToSource(r Rect) Rect {
	s := float32(l.Scale)
	if s == 0 {
		return Rect{}
	}
	return Rect{
		X:      (r.X - float32(l.OffsetX)) / s,
		Y:      (r.Y - float32(l.OffsetY)) / s,
		Width:  r.Width / s,
		Height: r.Height / s,
	}
}

// FromSource maps a source-frame pixel rectangle into letterbox space.
func (l Letterbox) FromSource(r Rect) Rect {
	s := float32(l.Scale)
	return Rect{
		X:      r.X*s + float32(l.OffsetX),
		Y:      r.Y*s + float32(l.OffsetY),
		Width:  r.Width * s,
		Height: r.Height * s,
	}
}
