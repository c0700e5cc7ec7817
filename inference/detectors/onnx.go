package detectors

import (
	"context"

	"github.com/nvr-ai/go-canvas/images"
	"github.com/nvr-ai/go-canvas/inference"
	"github.com/nvr-ai/go-canvas/inference/providers"
	"github.com/nvr-ai/go-canvas/models/postprocess"
	"github.com/pkg/errors"
)

// ONNXAdapter runs the canvas model through ONNX Runtime.
//
// It is not safe for concurrent use.
type ONNXAdapter struct {
	config  Config
	session *providers.Session
}

var _ inference.Adapter = (*ONNXAdapter)(nil)

// NewONNXAdapter loads the model and creates its session. This is expensive
// and should happen once per detector.
//
// Arguments:
//   - config: The detector configuration. ModelPath is required.
//
// Returns:
//   - *ONNXAdapter: The adapter. The caller must Close it.
//   - error: An error if the configuration is invalid or the session cannot be created.
func NewONNXAdapter(config Config) (*ONNXAdapter, error) {
	if config.ModelPath == "" {
		return nil, errors.New("model_path is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	w := int64(config.InputShape.X)
	h := int64(config.InputShape.Y)
	n := int64(config.Candidates)

	session, err := providers.NewSession(config.Provider, providers.NewSessionArgs{
		ModelPath: config.ModelPath,
		Inputs: []providers.TensorSpec{
			{Name: config.InputName, Shape: []int64{1, 3, h, w}},
		},
		Outputs: []providers.TensorSpec{
			{Name: config.ConfidenceOutput, Shape: []int64{1, n, int64(config.Classes)}},
			{Name: config.CoordinatesOutput, Shape: []int64{1, n, 4}},
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading model %s", config.ModelPath)
	}

	return &ONNXAdapter{
		config:  config,
		session: session,
	}, nil
}

// Infer runs the model over one frame.
//
// Arguments:
//   - ctx: Checked before preprocessing and before the engine run.
//   - img: The frame. Its buffer must hold Width*Height*4 bytes.
//
// Returns:
//   - []postprocess.RawCandidate: The raw candidates in model order.
//   - error: A KindInferenceFailed *inference.Error, or the context error.
func (a *ONNXAdapter) Infer(ctx context.Context, img *images.Image) ([]postprocess.RawCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "before preprocessing")
	}
	if img == nil {
		return nil, inference.NewInferenceError("nil image", nil)
	}
	if err := img.Validate(); err != nil {
		return nil, inference.NewInferenceError("malformed pixel buffer", err)
	}

	lb := images.NewLetterbox(img.Width, img.Height, a.config.InputShape.X, a.config.InputShape.Y)
	frame := lb.Apply(img.ToRGBA())
	if err := PackCHW(frame, a.session.Input(0).GetData()); err != nil {
		return nil, inference.NewInferenceError("preparing input", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "before inference")
	}
	if err := a.session.Run(); err != nil {
		return nil, inference.NewInferenceError("engine run", err)
	}

	candidates, err := Decode(
		a.session.Output(0).GetData(),
		a.session.Output(1).GetData(),
		a.config.Candidates,
		a.config.Classes,
		lb,
	)
	if err != nil {
		return nil, inference.NewInferenceError("decoding output", err)
	}
	return candidates, nil
}

// Stats returns the session's run statistics.
func (a *ONNXAdapter) Stats() providers.Stats {
	return a.session.Stats()
}

// Close releases the session.
func (a *ONNXAdapter) Close() error {
	return a.session.Close()
}
