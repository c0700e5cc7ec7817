// Package detector - Canvas detection facade over an inference adapter.
package detector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nvr-ai/go-canvas/images"
	"github.com/nvr-ai/go-canvas/inference"
	"github.com/nvr-ai/go-canvas/inference/detectors"
	"github.com/nvr-ai/go-canvas/models/postprocess"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// State is the activity state of a Detector.
type State int32

const (
	// StateIdle means no call is in flight.
	StateIdle State = iota
	// StateBusy means a call holds the inference session.
	StateBusy
)

func (s State) String() string {
	if s == StateBusy {
		return "busy"
	}
	return "idle"
}

// Detector locates canvas regions in frames. It owns one inference adapter
// and serialises access to it.
//
// Detect may be called from any goroutine. Overlapping calls are rejected
// with inference.ErrBusy, or wait their turn under BusyPolicyBlock.
type Detector struct {
	adapter inference.Adapter
	config  Config
	logger  *zap.Logger

	// slot holds one token while a call or Close owns the adapter.
	slot  chan struct{}
	state atomic.Int32

	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New wraps an adapter. The Detector takes ownership and closes the adapter
// in Close.
//
// Arguments:
//   - adapter: The inference adapter.
//   - config: Thresholds and busy policy.
//   - opts: Optional settings such as WithLogger.
//
// Returns:
//   - *Detector: The detector, Idle.
//   - error: An error if the adapter is nil or the configuration is invalid.
func New(adapter inference.Adapter, config Config, opts ...Option) (*Detector, error) {
	if adapter == nil {
		return nil, errors.New("adapter is required")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid detector config")
	}
	if config.BusyPolicy == "" {
		config.BusyPolicy = inference.BusyPolicyReject
	}

	d := &Detector{
		adapter: adapter,
		config:  config,
		logger:  zap.NewNop(),
		slot:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Open loads the ONNX canvas model described by cfg and wraps it. The adapter
// is closed again if the detector cannot be built.
func Open(cfg detectors.Config, opts ...Option) (*Detector, error) {
	adapter, err := detectors.NewONNXAdapter(cfg)
	if err != nil {
		return nil, err
	}
	d, err := New(adapter, ConfigFrom(cfg), opts...)
	if err != nil {
		return nil, multierr.Append(err, adapter.Close())
	}
	return d, nil
}

// State reports whether a call is in flight.
func (d *Detector) State() State {
	return State(d.state.Load())
}

// Config returns the detector's configuration.
func (d *Detector) Config() Config {
	return d.config
}

// Detect locates canvas regions in img.
//
// Arguments:
//   - ctx: Cancels a blocked wait and is passed to the adapter.
//   - img: The frame. Width and height must be positive.
//
// Returns:
//   - []postprocess.Detection: Regions in img's pixel space, highest confidence
//     first. Empty when nothing is found.
//   - error: An *inference.Error of kind Validation, InferenceFailed, Busy or
//     Closed, or the context error.
func (d *Detector) Detect(ctx context.Context, img *images.Image) ([]postprocess.Detection, error) {
	if d.closed.Load() {
		return nil, inference.ErrClosed
	}
	if err := validate(img); err != nil {
		return nil, err
	}

	if err := d.acquire(ctx); err != nil {
		return nil, err
	}
	defer d.release()

	start := time.Now()
	raw, err := d.adapter.Infer(ctx, img)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		if inference.KindOf(err) != inference.KindInferenceFailed {
			err = inference.NewInferenceError("adapter", err)
		}
		d.logger.Warn("inference failed",
			zap.Int("width", img.Width),
			zap.Int("height", img.Height),
			zap.Error(err),
		)
		return nil, err
	}

	detections := postprocess.Process(raw, img.Width, img.Height, d.config.Config)

	d.logger.Debug("detect",
		zap.Int("candidates", len(raw)),
		zap.Int("detections", len(detections)),
		zap.Duration("latency", time.Since(start)),
	)
	return detections, nil
}

func validate(img *images.Image) error {
	if img == nil {
		return inference.NewValidationError("nil image")
	}
	if img.Width <= 0 {
		return inference.NewValidationError("width must be positive, got %d", img.Width)
	}
	if img.Height <= 0 {
		return inference.NewValidationError("height must be positive, got %d", img.Height)
	}
	return nil
}

func (d *Detector) acquire(ctx context.Context) error {
	if d.config.BusyPolicy == inference.BusyPolicyBlock {
		select {
		case d.slot <- struct{}{}:
		case <-d.done:
			return inference.ErrClosed
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "waiting for detector")
		}
	} else {
		select {
		case d.slot <- struct{}{}:
		default:
			if d.closed.Load() {
				return inference.ErrClosed
			}
			return inference.ErrBusy
		}
	}

	// Close may have won the race while this call was waiting.
	if d.closed.Load() {
		<-d.slot
		return inference.ErrClosed
	}
	d.state.Store(int32(StateBusy))
	return nil
}

func (d *Detector) release() {
	d.state.Store(int32(StateIdle))
	<-d.slot
}

// Close waits for an in-flight call to finish, then closes the adapter.
// Later calls to Detect fail with inference.ErrClosed. Close is idempotent and
// returns the adapter's close error on every call.
func (d *Detector) Close() error {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		// The token is never returned.
		d.slot <- struct{}{}
		d.closeErr = d.adapter.Close()
		d.logger.Debug("detector closed", zap.Error(d.closeErr))
	})
	return d.closeErr
}
