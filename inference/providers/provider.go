// Package providers - ONNX Runtime sessions and execution providers.
package providers

import (
	"fmt"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ProviderBackend names an ONNX Runtime execution provider.
type ProviderBackend string

// ExecutionProvider represents the contract that all execution providers must implement.
type ExecutionProvider interface {
	// Backend returns the backend the provider configures.
	Backend() ProviderBackend
	// Apply registers the provider on the session options.
	Apply(options *ort.SessionOptions) error
}

// Config selects the execution provider and threading for a session.
type Config struct {
	// Backend specifies the backend to use.
	Backend ProviderBackend `json:"backend" yaml:"backend"`
	// IntraOpThreads sets threads for parallelizing ops. Zero lets the runtime decide.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`
	// InterOpThreads sets threads for parallelizing independent ops. Zero lets the runtime decide.
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`
	// ParallelExecution runs independent graph branches concurrently.
	ParallelExecution bool `json:"parallel_execution" yaml:"parallel_execution"`

	// Backend specific options. Only the block matching Backend is used.
	CoreML   CoreMLOptions   `json:"coreml"   yaml:"coreml"`
	CUDA     CUDAOptions     `json:"cuda"     yaml:"cuda"`
	OpenVINO OpenVINOOptions `json:"openvino" yaml:"openvino"`
}

// DefaultConfig returns a CPU configuration with runtime-chosen threading.
func DefaultConfig() Config {
	return Config{
		Backend: CPUProviderBackend,
		OpenVINO: OpenVINOOptions{
			DeviceType: "CPU",
		},
	}
}

// Validate checks the configuration names a known backend and sane thread counts.
func (c Config) Validate() error {
	switch c.Backend {
	case CPUProviderBackend, CoreMLProviderBackend, CUDAProviderBackend, OpenVINOProviderBackend:
	case "":
		return errors.New("provider backend is required")
	default:
		return fmt.Errorf("unknown provider backend %q", c.Backend)
	}
	if c.IntraOpThreads < 0 {
		return fmt.Errorf("intra_op_threads must be >= 0, got %d", c.IntraOpThreads)
	}
	if c.InterOpThreads < 0 {
		return fmt.Errorf("inter_op_threads must be >= 0, got %d", c.InterOpThreads)
	}
	return nil
}

// NewProvider creates the execution provider selected by the configuration.
//
// Arguments:
//   - cfg: The provider configuration.
//
// Returns:
//   - ExecutionProvider: The provider for cfg.Backend.
//   - error: An error if the backend is unknown.
func NewProvider(cfg Config) (ExecutionProvider, error) {
	switch cfg.Backend {
	case CPUProviderBackend, "":
		return NewCPUProvider(), nil
	case CoreMLProviderBackend:
		return NewCoreMLProvider(cfg.CoreML), nil
	case CUDAProviderBackend:
		return NewCUDAProvider(cfg.CUDA), nil
	case OpenVINOProviderBackend:
		return NewOpenVINOProvider(cfg.OpenVINO), nil
	default:
		return nil, fmt.Errorf("no matching provider backend registered: %s", cfg.Backend)
	}
}

// NewSessionOptions builds session options from the configuration and
// registers the execution provider on them.
//
// **The caller must Destroy the returned options.**
func NewSessionOptions(cfg Config, provider ExecutionProvider) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	err = firstErr(
		options.SetIntraOpNumThreads(cfg.IntraOpThreads),
		options.SetInterOpNumThreads(cfg.InterOpThreads),
		options.SetExecutionMode(executionMode(cfg)),
		options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended),
	)
	if err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "error configuring ORT session options")
	}

	if err := provider.Apply(options); err != nil {
		options.Destroy()
		return nil, errors.Wrapf(err, "error enabling %s execution provider", provider.Backend())
	}

	return options, nil
}

func executionMode(cfg Config) ort.ExecutionMode {
	if cfg.ParallelExecution {
		return ort.ExecutionMode(ort.ExecutionModeParallel)
	}
	return ort.ExecutionMode(ort.ExecutionModeSequential)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
