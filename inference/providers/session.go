package providers

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/multierr"
)

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment loads the native library and prepares the ONNX Runtime
// environment. It runs at most once per process.
func initEnvironment(libPath string) error {
	envOnce.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		envErr = errors.Wrap(ort.InitializeEnvironment(), "error initializing ORT environment")
	})
	return envErr
}

// TensorSpec names a model input or output and its fixed shape.
type TensorSpec struct {
	Name  string
	Shape []int64
}

// NewSessionArgs represents the arguments for creating a new session.
type NewSessionArgs struct {
	// The path to the ONNX model file.
	ModelPath string
	// The inputs of the model, in binding order.
	Inputs []TensorSpec
	// The outputs of the model, in binding order.
	Outputs []TensorSpec
}

// Stats summarises the inference runs performed by a session.
type Stats struct {
	Runs    int64
	Total   time.Duration
	Average time.Duration
}

// Session represents a model session from the onnxruntime with its
// preallocated input and output tensors.
type Session struct {
	session *ort.AdvancedSession
	inputs  []*ort.Tensor[float32]
	outputs []*ort.Tensor[float32]

	runs  atomic.Int64
	total atomic.Int64
}

// NewSession creates a new ONNX Runtime session.
//
// Order of operations:
//  1. Library path check: Ensures native runtime is accessible.
//  2. Environment setup: Prepares ONNX Runtime internals, once per process.
//  3. Tensor allocation: Prepares fixed-shape buffers for input/output data.
//  4. Session options: Threading, optimization level and the execution provider.
//  5. Session creation: Loads the model and binds the tensors.
//
// Arguments:
//   - cfg: The execution provider configuration.
//   - args: The model path and tensor bindings.
//
// Returns:
//   - *Session: The session. The caller must Close it.
//   - error: An error if the session creation fails.
func NewSession(cfg Config, args NewSessionArgs) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	libPath := SharedLibPath()
	if _, err := os.Stat(libPath); err != nil {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s (set %s)", libPath, SharedLibEnv)
	}
	if _, err := os.Stat(args.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model not found at %s", args.ModelPath)
	}
	if err := initEnvironment(libPath); err != nil {
		return nil, err
	}

	s := &Session{}

	inputs := make([]ort.ArbitraryTensor, 0, len(args.Inputs))
	inputNames := make([]string, 0, len(args.Inputs))
	for _, spec := range args.Inputs {
		t, err := ort.NewEmptyTensor[float32](ort.NewShape(spec.Shape...))
		if err != nil {
			return nil, multierr.Append(errors.Wrapf(err, "error creating input tensor %s", spec.Name), s.Close())
		}
		s.inputs = append(s.inputs, t)
		inputs = append(inputs, t)
		inputNames = append(inputNames, spec.Name)
	}

	outputs := make([]ort.ArbitraryTensor, 0, len(args.Outputs))
	outputNames := make([]string, 0, len(args.Outputs))
	for _, spec := range args.Outputs {
		t, err := ort.NewEmptyTensor[float32](ort.NewShape(spec.Shape...))
		if err != nil {
			return nil, multierr.Append(errors.Wrapf(err, "error creating output tensor %s", spec.Name), s.Close())
		}
		s.outputs = append(s.outputs, t)
		outputs = append(outputs, t)
		outputNames = append(outputNames, spec.Name)
	}

	options, err := NewSessionOptions(cfg, provider)
	if err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	defer options.Destroy()

	session, err := ort.NewAdvancedSession(args.ModelPath, inputNames, outputNames, inputs, outputs, options)
	if err != nil {
		return nil, multierr.Append(errors.Wrap(err, "error creating ORT session"), s.Close())
	}
	s.session = session

	return s, nil
}

// Input returns the i-th preallocated input tensor.
func (s *Session) Input(i int) *ort.Tensor[float32] {
	return s.inputs[i]
}

// Output returns the i-th preallocated output tensor.
func (s *Session) Output(i int) *ort.Tensor[float32] {
	return s.outputs[i]
}

// Run executes the model on the current contents of the input tensors.
func (s *Session) Run() error {
	if s.session == nil {
		return errors.New("session is closed")
	}
	start := time.Now()
	err := s.session.Run()
	s.runs.Add(1)
	s.total.Add(int64(time.Since(start)))
	return errors.Wrap(err, "error running ORT session")
}

// Stats returns the number of runs and their cumulative duration.
func (s *Session) Stats() Stats {
	stats := Stats{
		Runs:  s.runs.Load(),
		Total: time.Duration(s.total.Load()),
	}
	if stats.Runs > 0 {
		stats.Average = stats.Total / time.Duration(stats.Runs)
	}
	return stats
}

// Close releases the native session and its tensors. It is safe to call more
// than once.
func (s *Session) Close() error {
	var err error
	if s.session != nil {
		err = multierr.Append(err, errors.Wrap(s.session.Destroy(), "error destroying ORT session"))
		s.session = nil
	}
	for _, t := range s.inputs {
		err = multierr.Append(err, t.Destroy())
	}
	s.inputs = nil
	for _, t := range s.outputs {
		err = multierr.Append(err, t.Destroy())
	}
	s.outputs = nil
	return err
}
