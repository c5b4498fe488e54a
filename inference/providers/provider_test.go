package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBackend(t *testing.T) {
	cpu, err := FromBackend(CPUProviderBackend)
	require.NoError(t, err)
	assert.Equal(t, CPUProviderBackend, cpu.Backend())

	// Empty backend falls back to CPU.
	fallback, err := FromBackend("")
	require.NoError(t, err)
	assert.Equal(t, CPUProviderBackend, fallback.Backend())

	cuda, err := FromBackend(CUDAProviderBackend)
	require.NoError(t, err)
	assert.Equal(t, CUDAProviderBackend, cuda.Backend())

	_, err = FromBackend("tpu")
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	cpu, err := NewProvider(CPUOptions{IntraOpNumThreads: 2})
	require.NoError(t, err)
	opts, ok := cpu.Options().(CPUOptions)
	require.True(t, ok)
	assert.Equal(t, 2, opts.IntraOpNumThreads)

	cuda, err := NewProvider(CUDAOptions{DeviceID: 1})
	require.NoError(t, err)
	cudaOpts, ok := cuda.Options().(CUDAOptions)
	require.True(t, ok)
	assert.Equal(t, 1, cudaOpts.DeviceID)

	_, err = NewProvider(nil)
	assert.Error(t, err)
}
