// Package detectors - ONNX canvas detector configuration and adapter.
package detectors

import (
	"fmt"
	"image"
	"os"

	"github.com/nvr-ai/go-canvas/inference"
	"github.com/nvr-ai/go-canvas/inference/providers"
	"github.com/nvr-ai/go-canvas/models/postprocess"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration of the canvas detector: the model and
// how to run it, and the thresholds applied to its output.
type Config struct {
	// ModelPath specifies the path to the ONNX model file.
	ModelPath string `json:"model_path" yaml:"model_path"`

	// MinConfidence filters candidates below this confidence level.
	MinConfidence float32 `json:"min_confidence" yaml:"min_confidence"`

	// IoUThreshold controls the Non-Maximum Suppression overlap threshold.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`

	// BusyPolicy decides how overlapping Detect calls are handled.
	BusyPolicy inference.BusyPolicy `json:"busy_policy" yaml:"busy_policy"`

	// InputShape defines the model input dimensions (width, height).
	InputShape image.Point `json:"input_shape" yaml:"input_shape"`

	// Candidates is the number of region proposals the model emits.
	Candidates int `json:"candidates" yaml:"candidates"`

	// Classes is the number of class scores per proposal.
	Classes int `json:"classes" yaml:"classes"`

	// Tensor names bound on the session.
	InputName         string `json:"input_name"         yaml:"input_name"`
	ConfidenceOutput  string `json:"confidence_output"  yaml:"confidence_output"`
	CoordinatesOutput string `json:"coordinates_output" yaml:"coordinates_output"`

	// Provider selects the execution provider.
	Provider providers.Config `json:"provider" yaml:"provider"`
}

// DefaultConfig returns a configuration for the 640×640 single-class canvas
// model on the CPU provider.
//
// Returns:
//   - Config: The default configuration. ModelPath must still be set.
//
// @example
// config := DefaultConfig()
// config.ModelPath = "path/to/canvas.onnx"
// adapter, err := NewONNXAdapter(config)
func DefaultConfig() Config {
	return Config{
		MinConfidence:     0.5,
		IoUThreshold:      0.45,
		BusyPolicy:        inference.BusyPolicyReject,
		InputShape:        image.Point{X: 640, Y: 640},
		Candidates:        8400,
		Classes:           1,
		InputName:         "image",
		ConfidenceOutput:  "confidence",
		CoordinatesOutput: "coordinates",
		Provider:          providers.DefaultConfig(),
	}
}

// LoadConfig reads a YAML configuration file over DefaultConfig and validates
// the result.
//
// Arguments:
//   - path: The path of the YAML file.
//
// Returns:
//   - Config: The loaded configuration.
//   - error: An error if the file cannot be read, parsed or is invalid.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}

	return cfg, nil
}

// Validate checks that thresholds are in range and shapes are positive.
func (c Config) Validate() error {
	if !(c.MinConfidence >= 0 && c.MinConfidence <= 1) {
		return fmt.Errorf("min_confidence must be in [0, 1], got %v", c.MinConfidence)
	}
	if !(c.IoUThreshold > 0 && c.IoUThreshold <= 1) {
		return fmt.Errorf("iou_threshold must be in (0, 1], got %v", c.IoUThreshold)
	}
	if err := c.BusyPolicy.Validate(); err != nil {
		return err
	}
	if c.InputShape.X <= 0 || c.InputShape.Y <= 0 {
		return fmt.Errorf("input_shape must be positive, got %dx%d", c.InputShape.X, c.InputShape.Y)
	}
	if c.Candidates <= 0 {
		return fmt.Errorf("candidates must be positive, got %d", c.Candidates)
	}
	if c.Classes <= 0 {
		return fmt.Errorf("classes must be positive, got %d", c.Classes)
	}
	return c.Provider.Validate()
}

// Postprocess returns the thresholds for the result post-processor.
func (c Config) Postprocess() postprocess.Config {
	return postprocess.Config{
		MinConfidence: c.MinConfidence,
		IoUThreshold:  c.IoUThreshold,
	}
}
