package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeValidate(t *testing.T) {
	vol := &Volume{
		Data: make([]float32, 2*3*4),
		Dims: [3]int{2, 3, 4},
	}
	assert.NoError(t, vol.Validate())

	vol.Data = vol.Data[:5]
	assert.Error(t, vol.Validate())

	vol = &Volume{Data: nil, Dims: [3]int{0, 3, 4}}
	assert.Error(t, vol.Validate())

	var nilVol *Volume
	assert.Error(t, nilVol.Validate())
}

func TestVolumeAt(t *testing.T) {
	vol := &Volume{
		Data: make([]float32, 2*3*4),
		Dims: [3]int{2, 3, 4},
	}
	for i := range vol.Data {
		vol.Data[i] = float32(i)
	}

	assert.Equal(t, float32(0), vol.At(0, 0, 0))
	assert.Equal(t, float32(3), vol.At(0, 0, 3))
	assert.Equal(t, float32(4), vol.At(0, 1, 0))
	assert.Equal(t, float32(12), vol.At(1, 0, 0))
	assert.Equal(t, float32(23), vol.At(1, 2, 3))
}

func TestHeaderValidate(t *testing.T) {
	hdr := IdentityHeader()
	require.NoError(t, hdr.Validate())

	zeroSpacing := hdr
	zeroSpacing.Spacing[1] = 0
	assert.Error(t, zeroSpacing.Validate())

	zeroRow := hdr
	zeroRow.Transform[2] = [3]float64{0, 0, 0}
	assert.Error(t, zeroRow.Validate())

	// A completely unpopulated header fails on every check.
	var empty Header
	assert.Error(t, empty.Validate())

	var nilHdr *Header
	assert.Error(t, nilHdr.Validate())
}

func TestIdentityHeader(t *testing.T) {
	hdr := IdentityHeader()
	assert.Equal(t, [3]float64{0, 0, 0}, hdr.Origin)
	assert.Equal(t, [3]float64{1, 1, 1}, hdr.Spacing)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.0
			if r == c {
				want = 1.0
			}
			assert.Equal(t, want, hdr.Transform[r][c])
		}
	}
}
