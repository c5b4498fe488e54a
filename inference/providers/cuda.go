// Package providers - CUDA based execution provider.
package providers

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	// CUDAProviderBackend uses NVIDIA CUDA for inference acceleration.
	CUDAProviderBackend ProviderBackend = "cuda"
)

// CUDAProvider implements the ExecutionProvider interface.
type CUDAProvider struct {
	options CUDAOptions
}

// CUDAOptions contains arguments for the CUDA provider.
// See:
// https://onnxruntime.ai/docs/execution-providers/CUDA-ExecutionProvider.html#configuration-options
type CUDAOptions struct {
	// The device ID.
	DeviceID int `json:"deviceID"              yaml:"deviceID"`
	// The size limit of the device memory arena in bytes. This size limit is
	// only for the execution provider's arena; total device memory usage may
	// be higher.
	GPUMemLimit int64 `json:"gpuMemLimit"           yaml:"gpuMemLimit"`
	// Whether to do copies in the default stream or use separate streams.
	// The recommended setting is true.
	DoCopyInDefaultStream bool `json:"doCopyInDefaultStream" yaml:"doCopyInDefaultStream"`
	// The strategy for extending the device memory arena.
	// 0: kNextPowerOfTwo, 1: kSameAsRequested.
	ArenaExtendStrategy int `json:"arenaExtendStrategy"   yaml:"arenaExtendStrategy"`
	// TF32 math mode for float32 matmuls/convolutions on Ampere and newer.
	UseTF32 int `json:"useTF32"               yaml:"useTF32"`
}

// ToNativeProviderOptions converts the CUDA options to native provider
// options for handing to the runtime.
func (o *CUDAOptions) ToNativeProviderOptions() (*ort.CUDAProviderOptions, error) {
	opts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return nil, err
	}

	err = opts.Update(map[string]string{
		"device_id":                 fmt.Sprintf("%d", o.DeviceID),
		"gpu_mem_limit":             fmt.Sprintf("%d", o.GPUMemLimit),
		"do_copy_in_default_stream": fmt.Sprintf("%t", o.DoCopyInDefaultStream),
		"arena_extend_strategy":     fmt.Sprintf("%d", o.ArenaExtendStrategy),
		"use_tf32":                  fmt.Sprintf("%d", o.UseTF32),
	})
	if err != nil {
		opts.Destroy()
		return nil, err
	}

	return opts, nil
}

func (CUDAOptions) isProviderOptions() {}

// Backend returns the backend of the CUDA provider.
func (p *CUDAProvider) Backend() ProviderBackend {
	return CUDAProviderBackend
}

// Options returns the options of the CUDA provider.
func (p *CUDAProvider) Options() ProviderOptions {
	return p.options
}

// NewCUDAProvider creates a new CUDA provider.
func NewCUDAProvider(options CUDAOptions) *CUDAProvider {
	return &CUDAProvider{
		options: options,
	}
}
