package detector

import (
	"fmt"

	"github.com/nvr-ai/go-canvas/inference"
	"github.com/nvr-ai/go-canvas/inference/detectors"
	"github.com/nvr-ai/go-canvas/models/postprocess"
	"go.uber.org/zap"
)

// Config holds the per-call behaviour of a Detector.
type Config struct {
	// Thresholds handed to the post-processor.
	postprocess.Config
	// What to do when Detect overlaps an in-flight call.
	BusyPolicy inference.BusyPolicy
}

// DefaultConfig returns the default thresholds with the reject policy.
func DefaultConfig() Config {
	return Config{
		Config:     postprocess.DefaultConfig(),
		BusyPolicy: inference.BusyPolicyReject,
	}
}

// ConfigFrom extracts the facade settings from a detector configuration.
func ConfigFrom(c detectors.Config) Config {
	return Config{
		Config:     c.Postprocess(),
		BusyPolicy: c.BusyPolicy,
	}
}

// Validate checks thresholds are in range and the policy is known.
func (c Config) Validate() error {
	if !(c.MinConfidence >= 0 && c.MinConfidence <= 1) {
		return fmt.Errorf("min confidence must be in [0, 1], got %v", c.MinConfidence)
	}
	if !(c.IoUThreshold > 0 && c.IoUThreshold <= 1) {
		return fmt.Errorf("iou threshold must be in (0, 1], got %v", c.IoUThreshold)
	}
	return c.BusyPolicy.Validate()
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}
