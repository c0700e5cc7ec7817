package detectors

import (
	"fmt"
	"image"

	"github.com/nvr-ai/go-canvas/images"
	"github.com/nvr-ai/go-canvas/models/postprocess"
	"gorgonia.org/tensor"
)

// PackCHW writes a letterboxed frame into dst as planar float32 channels in
// blue, green, red order with raw 0..255 values.
//
// Arguments:
//   - frame: The letterboxed model input.
//   - dst: The input tensor backing, at least 3*W*H floats.
//
// Returns:
//   - error: An error if dst is too small.
func PackCHW(frame *image.RGBA, dst []float32) error {
	w := frame.Rect.Dx()
	h := frame.Rect.Dy()
	channelSize := w * h
	if len(dst) < channelSize*3 {
		return fmt.Errorf("destination tensor only holds %d floats, needs %d", len(dst), channelSize*3)
	}

	blue := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	red := dst[channelSize*2 : channelSize*3]

	i := 0
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4]
			red[i] = float32(px[0])
			green[i] = float32(px[1])
			blue[i] = float32(px[2])
			i++
		}
	}
	return nil
}

// Decode turns the model outputs into raw candidates in the source frame.
//
// The confidence output holds candidates×classes scores; the score of a
// candidate is its best class. The coordinates output holds candidates×4
// values (centre-x, centre-y, width, height) normalized to the model input
// with the origin at the top-left. Boxes are mapped out of the letterbox and
// normalized to the source frame with the origin at the bottom-left.
//
// Arguments:
//   - confidence: The confidence output backing.
//   - coordinates: The coordinates output backing.
//   - candidates: The number of candidates.
//   - classes: The number of classes.
//   - lb: The letterbox used to prepare the input.
//
// Returns:
//   - []postprocess.RawCandidate: One candidate per model row, in model order.
//   - error: An error if the outputs do not match the declared shape.
func Decode(
	confidence, coordinates []float32,
	candidates, classes int,
	lb images.Letterbox,
) ([]postprocess.RawCandidate, error) {
	if candidates <= 0 || classes <= 0 {
		return nil, fmt.Errorf("invalid output shape %dx%d", candidates, classes)
	}
	if len(confidence) < candidates*classes {
		return nil, fmt.Errorf("confidence output holds %d values, needs %d", len(confidence), candidates*classes)
	}
	if len(coordinates) < candidates*4 {
		return nil, fmt.Errorf("coordinates output holds %d values, needs %d", len(coordinates), candidates*4)
	}

	scores := confidence[:candidates]
	if classes > 1 {
		conf := tensor.New(
			tensor.WithShape(candidates, classes),
			tensor.WithBacking(confidence[:candidates*classes]),
		)
		best, err := conf.Max(1)
		if err != nil {
			return nil, fmt.Errorf("reducing class scores: %w", err)
		}
		scores = best.Data().([]float32)
	}

	inW := float32(lb.Width)
	inH := float32(lb.Height)

	out := make([]postprocess.RawCandidate, candidates)
	for i := 0; i < candidates; i++ {
		c := coordinates[i*4 : i*4+4]
		cx, cy, w, h := c[0], c[1], c[2], c[3]

		input := images.Rect{
			X:      (cx - w/2) * inW,
			Y:      (cy - h/2) * inH,
			Width:  w * inW,
			Height: h * inH,
		}

		out[i] = postprocess.RawCandidate{
			Box:   postprocess.ToNormalized(lb.ToSource(input), lb.SourceWidth, lb.SourceHeight),
			Score: scores[i],
		}
	}

	return out, nil
}
