package providers

import ort "github.com/yalue/onnxruntime_go"

const (
	// CPUProviderBackend uses the default ONNX Runtime CPU kernels.
	CPUProviderBackend ProviderBackend = "cpu"
)

// CPUProvider is the default execution provider. It needs no registration.
type CPUProvider struct{}

// NewCPUProvider creates a new CPU provider.
func NewCPUProvider() *CPUProvider {
	return &CPUProvider{}
}

// Backend returns the backend of the CPU provider.
func (p *CPUProvider) Backend() ProviderBackend {
	return CPUProviderBackend
}

// Apply is a no-op; CPU kernels are always available.
func (p *CPUProvider) Apply(*ort.SessionOptions) error {
	return nil
}
