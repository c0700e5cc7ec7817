// Package inference - Inference adapter contract and error taxonomy.
package inference

import (
	"context"

	"github.com/nvr-ai/go-canvas/images"
	"github.com/nvr-ai/go-canvas/models/postprocess"
)

// Adapter runs a detection model over one frame.
//
// Implementations own an inference session and are not required to be safe
// for concurrent use; the detector serialises calls.
type Adapter interface {
	// Infer returns the raw candidates for img in model order. The result may
	// be empty. A malformed buffer or an engine failure is reported as a
	// KindInferenceFailed *Error; a cancelled context as the context error.
	Infer(ctx context.Context, img *images.Image) ([]postprocess.RawCandidate, error)
	// Close releases the session.
	Close() error
}

// AdapterFunc adapts a plain function into an Adapter with a no-op Close.
type AdapterFunc func(ctx context.Context, img *images.Image) ([]postprocess.RawCandidate, error)

// Infer calls f(ctx, img).
func (f AdapterFunc) Infer(ctx context.Context, img *images.Image) ([]postprocess.RawCandidate, error) {
	return f(ctx, img)
}

// Close does nothing.
func (f AdapterFunc) Close() error {
	return nil
}
