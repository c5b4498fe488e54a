package volume

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// Interpolation selects how fractional voxel indices are sampled.
type Interpolation int

const (
	// Nearest rounds to the closest voxel.
	Nearest Interpolation = iota
	// Trilinear blends the eight surrounding voxels.
	Trilinear
)

// FillValue is the constant written for sample positions that fall outside
// the source volume. Matches the reference resampler's constant-fill
// default, so edge-of-volume patches reproduce bit-for-bit.
const FillValue float32 = 0

// ExtractPatch resamples a fixed-shape patch from vol around a world-space
// coordinate.
//
// The output grid is a regular, axis-aligned lattice in world space,
// centered at coord, with shape samples per axis spaced at pitch
// millimeters. Each lattice position is mapped back into fractional voxel
// indices through the inverse of the header's voxel-to-world transform and
// sampled with the requested interpolation. Out-of-bounds positions read
// FillValue.
//
// The returned tensor is always Float32 with exactly the requested shape,
// regardless of the source sample type.
func ExtractPatch(
	vol *Volume,
	hdr *Header,
	coord [3]float64,
	shape [3]int,
	pitch [3]float64,
	interp Interpolation,
) (*tensor.Dense, error) {
	if err := vol.Validate(); err != nil {
		return nil, &ExtractionError{Reason: "invalid volume", Err: err}
	}
	if err := hdr.Validate(); err != nil {
		return nil, &ExtractionError{Reason: "invalid header", Err: err}
	}
	for axis, n := range shape {
		if n <= 0 {
			return nil, errors.Errorf("patch shape axis %d must be positive, got %d", axis, n)
		}
		if pitch[axis] <= 0 {
			return nil, errors.Errorf("voxel pitch axis %d must be positive, got %f", axis, pitch[axis])
		}
	}

	inv, err := invertWorldMatrix(hdr)
	if err != nil {
		return nil, err
	}

	data := make([]float32, shape[0]*shape[1]*shape[2])
	half := [3]float64{
		float64(shape[0]-1) / 2,
		float64(shape[1]-1) / 2,
		float64(shape[2]-1) / 2,
	}

	idx := 0
	for k := 0; k < shape[0]; k++ {
		wz := coord[0] + (float64(k)-half[0])*pitch[0] - hdr.Origin[0]
		for j := 0; j < shape[1]; j++ {
			wy := coord[1] + (float64(j)-half[1])*pitch[1] - hdr.Origin[1]
			for i := 0; i < shape[2]; i++ {
				wx := coord[2] + (float64(i)-half[2])*pitch[2] - hdr.Origin[2]

				vz := inv[0][0]*wz + inv[0][1]*wy + inv[0][2]*wx
				vy := inv[1][0]*wz + inv[1][1]*wy + inv[1][2]*wx
				vx := inv[2][0]*wz + inv[2][1]*wy + inv[2][2]*wx

				if interp == Nearest {
					data[idx] = sampleNearest(vol, vz, vy, vx)
				} else {
					data[idx] = sampleTrilinear(vol, vz, vy, vx)
				}
				idx++
			}
		}
	}

	return tensor.New(
		tensor.WithShape(shape[0], shape[1], shape[2]),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(data),
	), nil
}

// invertWorldMatrix inverts Transform * diag(Spacing), the matrix that
// carries voxel indices into world offsets.
func invertWorldMatrix(hdr *Header) ([3][3]float64, error) {
	w := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			w.Set(r, c, hdr.Transform[r][c]*hdr.Spacing[c])
		}
	}

	var winv mat.Dense
	if err := winv.Inverse(w); err != nil {
		return [3][3]float64{}, &ExtractionError{Reason: "degenerate voxel-to-world transform", Err: err}
	}

	var out [3][3]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = winv.At(r, c)
		}
	}
	return out, nil
}

func sampleNearest(vol *Volume, z, y, x float64) float32 {
	zi := int(math.Round(z))
	yi := int(math.Round(y))
	xi := int(math.Round(x))
	if zi < 0 || zi >= vol.Dims[0] || yi < 0 || yi >= vol.Dims[1] || xi < 0 || xi >= vol.Dims[2] {
		return FillValue
	}
	return vol.At(zi, yi, xi)
}

func sampleTrilinear(vol *Volume, z, y, x float64) float32 {
	z0 := math.Floor(z)
	y0 := math.Floor(y)
	x0 := math.Floor(x)
	fz := z - z0
	fy := y - y0
	fx := x - x0

	var acc float64
	for dz := 0; dz < 2; dz++ {
		wz := 1 - fz
		if dz == 1 {
			wz = fz
		}
		if wz == 0 {
			continue
		}
		for dy := 0; dy < 2; dy++ {
			wy := 1 - fy
			if dy == 1 {
				wy = fy
			}
			if wy == 0 {
				continue
			}
			for dx := 0; dx < 2; dx++ {
				wx := 1 - fx
				if dx == 1 {
					wx = fx
				}
				if wx == 0 {
					continue
				}
				acc += wz * wy * wx * float64(sampleCorner(vol, int(z0)+dz, int(y0)+dy, int(x0)+dx))
			}
		}
	}
	return float32(acc)
}

func sampleCorner(vol *Volume, z, y, x int) float32 {
	if z < 0 || z >= vol.Dims[0] || y < 0 || y >= vol.Dims[1] || x < 0 || x >= vol.Dims[2] {
		return FillValue
	}
	return vol.At(z, y, x)
}
