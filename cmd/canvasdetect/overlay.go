package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nvr-ai/go-canvas/scheduler"
	"gocv.io/x/gocv"
)

var overlayColor = color.RGBA{G: 255, A: 255}

// overlay draws the most recent detections onto the frame.
func overlay(frame *gocv.Mat, r scheduler.Result) {
	for _, d := range r.Detections {
		b := d.BoundingBox
		rect := image.Rect(int(b.X), int(b.Y), int(b.X+b.Width), int(b.Y+b.Height))
		gocv.Rectangle(frame, rect, overlayColor, 2)
		gocv.PutText(frame, fmt.Sprintf("%.2f", d.Confidence),
			image.Pt(rect.Min.X, rect.Min.Y+20), gocv.FontHersheyPlain, 1.5, overlayColor, 2)
	}
}
