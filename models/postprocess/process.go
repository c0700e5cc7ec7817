package postprocess

// Process turns raw model candidates into deduplicated detections in pixel
// space.
//
// Candidates scoring below cfg.MinConfidence are dropped on their raw score.
// The rest are sanitized, converted into the image's pixel space and reduced
// with greedy suppression at cfg.IoUThreshold. A NaN score never passes the
// threshold; other malformed fields are repaired rather than rejected.
//
// Arguments:
//   - candidates: The raw candidates, in model order.
//   - width: The image width in pixels.
//   - height: The image height in pixels.
//   - cfg: The thresholds to apply.
//
// Returns:
//   - []Detection: A fresh slice sorted by descending confidence, ties in
//     candidate order. Empty, never nil, when nothing survives.
//
// @example
// dets := Process([]RawCandidate{{Box: images.Rect{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5}, Score: 0.9}}, 1920, 1080, DefaultConfig())
// // dets[0].BoundingBox = (480, 270) 960x540
func Process(candidates []RawCandidate, width, height int, cfg Config) []Detection {
	if width <= 0 || height <= 0 || len(candidates) == 0 {
		return []Detection{}
	}

	kept := Threshold(candidates, cfg.MinConfidence)
	detections := make([]Detection, 0, len(kept))
	for _, c := range kept {
		c = Sanitize(c)
		detections = append(detections, Detection{
			BoundingBox: ToPixel(c.Box, width, height),
			Confidence:  c.Score,
		})
	}

	return Suppress(detections, cfg.IoUThreshold)
}
