// Package images - Image definition for processing utilities.
package images

import (
	"fmt"
	"image"
	"image/draw"
)

// PixelFormat identifies the byte layout of a 4-channel pixel buffer.
type PixelFormat string

const (
	// PixelFormatBGRA is blue, green, red, alpha (or padding) per pixel, as
	// produced by BGRX render targets.
	PixelFormatBGRA PixelFormat = "bgra"
	// PixelFormatRGBA is red, green, blue, alpha per pixel.
	PixelFormatRGBA PixelFormat = "rgba"
)

// BytesPerPixel is the size of one pixel in every supported format.
const BytesPerPixel = 4

// Image is a tightly packed pixel buffer and its dimensions.
type Image struct {
	// The layout of each pixel in Data.
	Format PixelFormat `json:"format" yaml:"format"`
	// The pixel data, row-major, Width*BytesPerPixel bytes per row.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// NewImage allocates a zeroed buffer of the given format and size.
func NewImage(format PixelFormat, width, height int) *Image {
	return &Image{
		Format: format,
		Data:   make([]byte, width*height*BytesPerPixel),
		Width:  width,
		Height: height,
	}
}

// FromImage copies any image.Image into an RGBA pixel buffer.
//
// Arguments:
//   - src: The image to copy.
//
// Returns:
//   - *Image: A new buffer with origin at src.Bounds().Min.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return &Image{
		Format: PixelFormatRGBA,
		Data:   rgba.Pix,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// Validate checks the buffer is large enough for the declared dimensions and
// the format is known.
func (img *Image) Validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("invalid image dimensions: %dx%d", img.Width, img.Height)
	}
	switch img.Format {
	case PixelFormatBGRA, PixelFormatRGBA:
	default:
		return fmt.Errorf("unsupported pixel format %q", img.Format)
	}
	if want := img.Width * img.Height * BytesPerPixel; len(img.Data) < want {
		return fmt.Errorf("pixel buffer holds %d bytes, %dx%d needs %d",
			len(img.Data), img.Width, img.Height, want)
	}
	return nil
}

// ToRGBA returns an *image.RGBA view of the buffer. RGBA buffers are shared
// without copying; BGRA buffers are converted into a new, opaque buffer since
// BGRX render targets leave the fourth byte undefined.
//
// The caller must Validate the image first.
func (img *Image) ToRGBA() *image.RGBA {
	rect := image.Rect(0, 0, img.Width, img.Height)
	stride := img.Width * BytesPerPixel
	n := img.Height * stride

	if img.Format == PixelFormatRGBA {
		return &image.RGBA{Pix: img.Data[:n], Stride: stride, Rect: rect}
	}

	pix := make([]byte, n)
	for i := 0; i < n; i += BytesPerPixel {
		pix[i+0] = img.Data[i+2]
		pix[i+1] = img.Data[i+1]
		pix[i+2] = img.Data[i+0]
		pix[i+3] = 0xff
	}
	return &image.RGBA{Pix: pix, Stride: stride, Rect: rect}
}
