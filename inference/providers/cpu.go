// Package providers - CPU based execution provider.
package providers

const (
	// CPUProviderBackend runs inference on the host CPU.
	CPUProviderBackend ProviderBackend = "cpu"
)

// CPUProvider implements the ExecutionProvider interface.
type CPUProvider struct {
	options CPUOptions
}

// CPUOptions contains arguments for the CPU provider.
type CPUOptions struct {
	// IntraOpNumThreads sets threads for parallelizing ops. Zero lets the
	// runtime decide.
	IntraOpNumThreads int `json:"intraOpNumThreads" yaml:"intraOpNumThreads"`
	// InterOpNumThreads sets threads for parallel execution of independent
	// graph nodes. Zero lets the runtime decide.
	InterOpNumThreads int `json:"interOpNumThreads" yaml:"interOpNumThreads"`
}

func (CPUOptions) isProviderOptions() {}

// Backend returns the backend of the CPU provider.
func (p *CPUProvider) Backend() ProviderBackend {
	return CPUProviderBackend
}

// Options returns the options of the CPU provider.
func (p *CPUProvider) Options() ProviderOptions {
	return p.options
}

// NewCPUProvider creates a new CPU provider.
func NewCPUProvider(options CPUOptions) *CPUProvider {
	return &CPUProvider{
		options: options,
	}
}
