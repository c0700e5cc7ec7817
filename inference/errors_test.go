package inference

import (
	"context"
	"fmt"
	"testing"

	"github.com/nvr-ai/go-canvas/images"
	"github.com/nvr-ai/go-canvas/models/postprocess"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		kind   Kind
	}{
		{"Validation", NewValidationError("width must be positive, got %d", 0), ErrValidation, KindValidation},
		{"Inference", NewInferenceError("engine run", errors.New("boom")), ErrInferenceFailed, KindInferenceFailed},
		{"Busy", &Error{Kind: KindBusy}, ErrBusy, KindBusy},
		{"Closed", &Error{Kind: KindClosed}, ErrClosed, KindClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.target)
			assert.Equal(t, tt.kind, KindOf(tt.err))

			wrapped := errors.Wrap(tt.err, "detect")
			assert.ErrorIs(t, wrapped, tt.target)
			assert.Equal(t, tt.kind, KindOf(wrapped))

			for _, other := range []error{ErrValidation, ErrInferenceFailed, ErrBusy, ErrClosed} {
				if other != tt.target {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	err := NewInferenceError("pixel buffer too short", fmt.Errorf("have 3 bytes"))
	assert.Equal(t, "inference failed: pixel buffer too short: have 3 bytes", err.Error())

	assert.Equal(t, "busy", ErrBusy.Error())
	assert.Equal(t, "validation: nil image", NewValidationError("nil image").Error())
}

func TestError_UnwrapCause(t *testing.T) {
	cause := errors.New("session destroyed")
	err := NewInferenceError("engine run", cause)
	assert.ErrorIs(t, err, cause)
}

func TestKindOf_Foreign(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(context.Canceled))
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestAdapterFunc(t *testing.T) {
	want := []postprocess.RawCandidate{{Score: 0.7}}
	var a Adapter = AdapterFunc(func(_ context.Context, img *images.Image) ([]postprocess.RawCandidate, error) {
		require.Equal(t, 2, img.Width)
		return want, nil
	})

	got, err := a.Infer(context.Background(), images.NewImage(images.PixelFormatRGBA, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NoError(t, a.Close())
}
