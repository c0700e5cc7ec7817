// Package postprocess - Postprocessing of raw model output into detections.
package postprocess

import "github.com/nvr-ai/go-canvas/images"

// RawCandidate is one unfiltered region proposal produced by the model.
type RawCandidate struct {
	// The proposed region, normalized to the unit square with the origin at
	// the bottom-left corner.
	Box images.Rect
	// The raw model score. May lie outside [0, 1] or be non-finite.
	Score float32
}

// Detection is a located canvas region in the caller's pixel space.
type Detection struct {
	// The region in pixels with the origin at the top-left corner.
	BoundingBox images.Rect `json:"bounding_box" yaml:"bounding_box"`
	// The confidence of the detection in [0, 1].
	Confidence float32 `json:"confidence" yaml:"confidence"`
}

// Config holds the filtering thresholds applied by Process.
type Config struct {
	// Candidates scoring below this value are discarded.
	MinConfidence float32 `json:"min_confidence" yaml:"min_confidence"`
	// A candidate is kept only if its IoU with every kept region is below
	// this value.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
}

// DefaultConfig returns the thresholds used when none are configured.
func DefaultConfig() Config {
	return Config{
		MinConfidence: 0.5,
		IoUThreshold:  0.45,
	}
}
