package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-canvas/images"
)

// Threshold returns the candidates whose score is at least minConfidence,
// preserving their order. NaN scores are dropped.
func Threshold(candidates []RawCandidate, minConfidence float32) []RawCandidate {
	kept := make([]RawCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score >= minConfidence {
			kept = append(kept, c)
		}
	}
	return kept
}

// Suppress performs greedy Non-Maximum Suppression.
//
// Detections are stably sorted by descending confidence so that ties keep
// their input order. Each detection is then accepted only if its IoU with
// every already accepted detection is strictly below iouThreshold.
//
// Arguments:
//   - detections: The detections to filter. The slice is not modified.
//   - iouThreshold: The overlap at or above which a detection is suppressed.
//
// Returns:
//   - []Detection: The kept detections in descending confidence order. Never nil.
func Suppress(detections []Detection, iouThreshold float32) []Detection {
	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	for _, candidate := range sorted {
		suppressed := false
		for _, anchor := range kept {
			if images.CalculateIoU(anchor.BoundingBox, candidate.BoundingBox) >= iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, candidate)
		}
	}

	return kept
}
