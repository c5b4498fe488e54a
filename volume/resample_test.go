package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampVolume builds a cube where every voxel holds its own flat index, so
// resampled values are easy to predict.
func rampVolume(n int) *Volume {
	vol := &Volume{
		Data: make([]float32, n*n*n),
		Dims: [3]int{n, n, n},
	}
	for i := range vol.Data {
		vol.Data[i] = float32(i)
	}
	return vol
}

func TestExtractPatchIdentityGrid(t *testing.T) {
	vol := rampVolume(9)
	hdr := IdentityHeader()

	// Unit pitch on an identity header lands every sample exactly on a
	// voxel, so the patch is a plain crop around the center.
	patch, err := ExtractPatch(vol, &hdr, [3]float64{4, 4, 4}, [3]int{3, 3, 3}, [3]float64{1, 1, 1}, Trilinear)
	require.NoError(t, err)
	require.Equal(t, []int{3, 3, 3}, []int(patch.Shape()))

	data := patch.Data().([]float32)
	idx := 0
	for z := 3; z <= 5; z++ {
		for y := 3; y <= 5; y++ {
			for x := 3; x <= 5; x++ {
				assert.Equal(t, vol.At(z, y, x), data[idx], "voxel (%d,%d,%d)", z, y, x)
				idx++
			}
		}
	}
}

func TestExtractPatchShapeIsExact(t *testing.T) {
	vol := rampVolume(9)
	hdr := IdentityHeader()

	shapes := [][3]int{
		{16, 64, 64},
		{1, 64, 64},
		{2, 3, 5},
	}
	for _, shape := range shapes {
		patch, err := ExtractPatch(vol, &hdr, [3]float64{4, 4, 4}, shape, [3]float64{0.78125, 0.78125, 0.78125}, Trilinear)
		require.NoError(t, err)
		assert.Equal(t, []int{shape[0], shape[1], shape[2]}, []int(patch.Shape()))
	}
}

func TestExtractPatchSpacing(t *testing.T) {
	vol := rampVolume(9)
	hdr := IdentityHeader()
	hdr.Spacing = [3]float64{2, 2, 2}

	// World pitch 2 with voxel spacing 2 advances exactly one voxel per
	// sample.
	patch, err := ExtractPatch(vol, &hdr, [3]float64{8, 8, 8}, [3]int{3, 3, 3}, [3]float64{2, 2, 2}, Trilinear)
	require.NoError(t, err)

	data := patch.Data().([]float32)
	assert.Equal(t, vol.At(3, 3, 3), data[0])
	assert.Equal(t, vol.At(4, 4, 4), data[13])
	assert.Equal(t, vol.At(5, 5, 5), data[26])
}

func TestExtractPatchOrigin(t *testing.T) {
	vol := rampVolume(9)
	hdr := IdentityHeader()
	hdr.Origin = [3]float64{100, -50, 10}

	patch, err := ExtractPatch(vol, &hdr, [3]float64{104, -46, 14}, [3]int{1, 1, 1}, [3]float64{1, 1, 1}, Nearest)
	require.NoError(t, err)
	assert.Equal(t, vol.At(4, 4, 4), patch.Data().([]float32)[0])
}

func TestExtractPatchAxisSwapTransform(t *testing.T) {
	vol := rampVolume(9)
	hdr := IdentityHeader()
	// Swap the Y and X voxel axes in world space.
	hdr.Transform = [3][3]float64{
		{1, 0, 0},
		{0, 0, 1},
		{0, 1, 0},
	}

	patch, err := ExtractPatch(vol, &hdr, [3]float64{2, 3, 5}, [3]int{1, 1, 1}, [3]float64{1, 1, 1}, Nearest)
	require.NoError(t, err)
	// World (2,3,5) maps back to voxel (2,5,3) under the swap.
	assert.Equal(t, vol.At(2, 5, 3), patch.Data().([]float32)[0])
}

func TestExtractPatchTrilinearBlends(t *testing.T) {
	vol := &Volume{
		Data: []float32{0, 10, 100, 110, 1000, 1010, 1100, 1110},
		Dims: [3]int{2, 2, 2},
	}
	hdr := IdentityHeader()

	patch, err := ExtractPatch(vol, &hdr, [3]float64{0.5, 0.5, 0.5}, [3]int{1, 1, 1}, [3]float64{1, 1, 1}, Trilinear)
	require.NoError(t, err)
	// Dead center of the cube averages all eight corners.
	assert.InDelta(t, 555.0, float64(patch.Data().([]float32)[0]), 1e-3)
}

func TestExtractPatchNearestRounds(t *testing.T) {
	vol := rampVolume(4)
	hdr := IdentityHeader()

	patch, err := ExtractPatch(vol, &hdr, [3]float64{1.3, 1.3, 2.6}, [3]int{1, 1, 1}, [3]float64{1, 1, 1}, Nearest)
	require.NoError(t, err)
	assert.Equal(t, vol.At(1, 1, 3), patch.Data().([]float32)[0])
}

func TestExtractPatchOutOfBoundsFill(t *testing.T) {
	vol := rampVolume(4)
	hdr := IdentityHeader()

	// Candidate far outside the volume: every sample reads the fill value.
	far := [3]float64{1000, 1000, 1000}
	patch, err := ExtractPatch(vol, &hdr, far, [3]int{2, 2, 2}, [3]float64{1, 1, 1}, Trilinear)
	require.NoError(t, err)
	for _, v := range patch.Data().([]float32) {
		assert.Equal(t, FillValue, v)
	}

	// Same input twice yields identical output.
	again, err := ExtractPatch(vol, &hdr, far, [3]int{2, 2, 2}, [3]float64{1, 1, 1}, Trilinear)
	require.NoError(t, err)
	assert.Equal(t, patch.Data().([]float32), again.Data().([]float32))
}

func TestExtractPatchEdgeStraddle(t *testing.T) {
	vol := rampVolume(4)
	hdr := IdentityHeader()

	// Patch centered on a corner voxel: in-bounds samples keep their
	// values, out-of-bounds samples read the fill value.
	patch, err := ExtractPatch(vol, &hdr, [3]float64{0, 0, 0}, [3]int{3, 3, 3}, [3]float64{1, 1, 1}, Nearest)
	require.NoError(t, err)

	data := patch.Data().([]float32)
	assert.Equal(t, FillValue, data[0])
	center := 1*9 + 1*3 + 1
	assert.Equal(t, vol.At(0, 0, 0), data[center])
}

func TestExtractPatchDegenerateTransform(t *testing.T) {
	vol := rampVolume(4)
	hdr := IdentityHeader()
	// Two identical rows make the world matrix singular.
	hdr.Transform[1] = hdr.Transform[0]

	_, err := ExtractPatch(vol, &hdr, [3]float64{1, 1, 1}, [3]int{1, 1, 1}, [3]float64{1, 1, 1}, Trilinear)
	require.Error(t, err)

	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}

func TestExtractPatchInvalidInputs(t *testing.T) {
	vol := rampVolume(4)
	hdr := IdentityHeader()

	_, err := ExtractPatch(vol, &hdr, [3]float64{1, 1, 1}, [3]int{0, 1, 1}, [3]float64{1, 1, 1}, Trilinear)
	assert.Error(t, err)

	_, err = ExtractPatch(vol, &hdr, [3]float64{1, 1, 1}, [3]int{1, 1, 1}, [3]float64{0, 1, 1}, Trilinear)
	assert.Error(t, err)

	badHdr := hdr
	badHdr.Spacing[0] = 0
	_, err = ExtractPatch(vol, &badHdr, [3]float64{1, 1, 1}, [3]int{1, 1, 1}, [3]float64{1, 1, 1}, Trilinear)
	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)

	short := &Volume{Data: make([]float32, 3), Dims: [3]int{4, 4, 4}}
	_, err = ExtractPatch(short, &hdr, [3]float64{1, 1, 1}, [3]int{1, 1, 1}, [3]float64{1, 1, 1}, Trilinear)
	assert.ErrorAs(t, err, &extractionErr)
}
