// Package volume - CT volume geometry and world-space patch resampling.
package volume

import "fmt"

// Volume is a 3D array of intensity samples in (Z, Y, X) axis order.
//
// Samples are Hounsfield-like units promoted to float32. The volume is
// owned by the caller and treated as immutable for the duration of a
// prediction request.
type Volume struct {
	// Data is the raw samples, flattened Z-major: len = Dims[0]*Dims[1]*Dims[2].
	Data []float32
	// Dims is the number of samples along each axis (Z, Y, X).
	Dims [3]int
}

// At returns the sample at an integral voxel index. The index must be in
// bounds; callers handle the out-of-bounds fill policy themselves.
func (v *Volume) At(z, y, x int) float32 {
	return v.Data[(z*v.Dims[1]+y)*v.Dims[2]+x]
}

// Validate checks that the sample buffer matches the declared dimensions.
func (v *Volume) Validate() error {
	if v == nil {
		return fmt.Errorf("volume is nil")
	}
	for axis, n := range v.Dims {
		if n <= 0 {
			return fmt.Errorf("volume axis %d has non-positive extent %d", axis, n)
		}
	}
	want := v.Dims[0] * v.Dims[1] * v.Dims[2]
	if len(v.Data) != want {
		return fmt.Errorf("volume data holds %d samples, dims %v need %d", len(v.Data), v.Dims, want)
	}
	return nil
}

// Header carries the voxel-to-world geometry of a volume.
//
// World coordinates follow the same (Z, Y, X) axis convention as the
// volume itself. A world position is reconstructed from a voxel index as
// Origin + Transform * diag(Spacing) * index.
type Header struct {
	// Origin is the world position of voxel (0, 0, 0) in millimeters.
	Origin [3]float64 `json:"origin" yaml:"origin"`
	// Spacing is the physical distance between adjacent voxels per axis.
	Spacing [3]float64 `json:"spacing" yaml:"spacing"`
	// Transform maps voxel axes to world axes, row-major. Identity for
	// axis-aligned acquisitions; handles rotated/anisotropic scans.
	Transform [3][3]float64 `json:"transform" yaml:"transform"`
}

// IdentityHeader returns a header with zero origin, unit spacing and an
// identity transform.
func IdentityHeader() Header {
	return Header{
		Spacing: [3]float64{1, 1, 1},
		Transform: [3][3]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	}
}

// Validate checks that the header carries a usable geometry. A zero-valued
// spacing axis or an all-zero transform row means the header was never
// populated by the reader.
func (h *Header) Validate() error {
	if h == nil {
		return fmt.Errorf("header is nil")
	}
	for axis, s := range h.Spacing {
		if s == 0 {
			return fmt.Errorf("header spacing axis %d is zero", axis)
		}
	}
	for row := range h.Transform {
		if h.Transform[row][0] == 0 && h.Transform[row][1] == 0 && h.Transform[row][2] == 0 {
			return fmt.Errorf("header transform row %d is zero", row)
		}
	}
	return nil
}

// ExtractionError indicates malformed volume or header geometry that makes
// resampling impossible. Fatal for the request.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
