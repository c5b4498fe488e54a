// Package providers - Execution providers for the ONNX Runtime backend.
package providers

import "fmt"

// ProviderBackend represents different ONNX Runtime execution providers.
type ProviderBackend string

// ProviderOptions is a marker interface for provider-specific config.
type ProviderOptions interface {
	isProviderOptions()
}

// ExecutionProvider represents the contract that all execution providers
// must implement.
type ExecutionProvider interface {
	Backend() ProviderBackend
	Options() ProviderOptions
}

// NewProvider creates a new provider based on the supplied options.
//
// Arguments:
//   - options: The options for the provider.
//
// Returns:
//   - ExecutionProvider: The new provider.
//   - error: An error if the options type is not supported.
func NewProvider(options ProviderOptions) (ExecutionProvider, error) {
	switch opts := options.(type) {
	case CPUOptions:
		return NewCPUProvider(opts), nil
	case CUDAOptions:
		return NewCUDAProvider(opts), nil
	default:
		return nil, fmt.Errorf("unsupported provider options type: %T", opts)
	}
}

// FromBackend resolves a backend name to a provider with default options.
//
// Arguments:
//   - backend: The backend name, e.g. "cpu" or "cuda".
//
// Returns:
//   - ExecutionProvider: The provider for the backend.
//   - error: An error if no provider is registered for the backend.
func FromBackend(backend ProviderBackend) (ExecutionProvider, error) {
	switch backend {
	case CPUProviderBackend, "":
		return NewCPUProvider(CPUOptions{}), nil
	case CUDAProviderBackend:
		return NewCUDAProvider(CUDAOptions{}), nil
	default:
		return nil, fmt.Errorf("no matching provider backend registered: %s", backend)
	}
}
