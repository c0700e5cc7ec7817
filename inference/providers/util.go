package providers

import (
	"os"
	"runtime"
)

// SharedLibEnv names the environment variable that overrides the ONNX Runtime
// shared library location.
const SharedLibEnv = "ONNXRUNTIME_LIB"

// SharedLibPath returns the path to the ONNX Runtime shared library for the
// current platform, honouring the ONNXRUNTIME_LIB override.
//
// Returns:
//   - string: The path to the shared library.
func SharedLibPath() string {
	if path := os.Getenv(SharedLibEnv); path != "" {
		return path
	}
	return defaultSharedLibPath(runtime.GOOS, runtime.GOARCH)
}

func defaultSharedLibPath(goos, goarch string) string {
	switch goos {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.1.21.0.dylib"
	default:
		if goarch == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
}
