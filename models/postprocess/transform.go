package postprocess

import (
	"github.com/nvr-ai/go-canvas/images"
)

// Sanitize returns a copy of the candidate with every field finite and in
// range. NaN scores become 0 and other scores are clamped to [0, 1]; the box
// is canonicalised and clamped to the unit square.
func Sanitize(c RawCandidate) RawCandidate {
	return RawCandidate{
		Box:   c.Box.Clamp(1, 1),
		Score: images.Clamp(c.Score, 0, 1),
	}
}

// ToPixel converts a normalized box with the origin at the bottom-left into a
// pixel box with the origin at the top-left, clamped to the image bounds.
//
//	x = nx * W
//	y = (1 - ny - nh) * H
//	w = nw * W
//	h = nh * H
//
// Arguments:
//   - box: The normalized box.
//   - width: The image width in pixels.
//   - height: The image height in pixels.
//
// Returns:
//   - images.Rect: The pixel box.
func ToPixel(box images.Rect, width, height int) images.Rect {
	w := float32(width)
	h := float32(height)
	return images.Rect{
		X:      box.X * w,
		Y:      (1 - box.Y - box.Height) * h,
		Width:  box.Width * w,
		Height: box.Height * h,
	}.Clamp(w, h)
}

// ToNormalized is the inverse of ToPixel.
func ToNormalized(box images.Rect, width, height int) images.Rect {
	if width <= 0 || height <= 0 {
		return images.Rect{}
	}
	w := float32(width)
	h := float32(height)
	nh := box.Height / h
	return images.Rect{
		X:      box.X / w,
		Y:      1 - box.Y/h - nh,
		Width:  box.Width / w,
		Height: nh,
	}
}
