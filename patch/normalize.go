// Package patch - Classifier-ready normalization of resampled CT patches.
package patch

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nodule-ai/go-malignancy/models/model"
)

// Hounsfield clamp window applied before scaling to unit range. Global
// constants of the preprocessing contract, never per-request.
const (
	ClipMin float32 = -1000
	ClipMax float32 = 400
)

// Channels is the pseudo-color channel count fed to every classifier
// variant. The single intensity channel is replicated to match the
// encoders' 3-channel input stem.
const Channels = 3

// Stats returns the per-channel normalization constants for a mode. The 2D
// path keeps the natural-image statistics its encoder was pretrained with;
// the 3D path uses CT statistics. Pure function of mode, never of content.
func Stats(mode model.Mode) (mean, std [Channels]float32) {
	if mode == model.Mode2D {
		return [Channels]float32{0.485, 0.456, 0.406}, [Channels]float32{0.229, 0.224, 0.225}
	}
	return [Channels]float32{0.45, 0.45, 0.45}, [Channels]float32{0.225, 0.225, 0.225}
}

// ClipScale clamps intensities to [ClipMin, ClipMax] and rescales them to
// [0, 1] in place.
func ClipScale(data []float32) {
	scale := ClipMax - ClipMin
	for i, v := range data {
		v = math32.Min(math32.Max(v, ClipMin), ClipMax)
		data[i] = (v - ClipMin) / scale
	}
}

// Normalize converts one raw resampled patch into the classifier-ready
// layout. The steps run in a fixed order: clip-and-scale, channel
// replication, per-channel standardization, axis layout. The normalization
// statistics assume prior clipping, so the order must not change.
//
// The input shape is (depth, H, W); 2D mode requires depth == 1. The output
// is (Channels, depth, H, W) for 3D mode and (Channels, H, W) for 2D mode.
// The input tensor is never mutated and the result is deterministic.
func Normalize(raw *tensor.Dense, mode model.Mode) (*tensor.Dense, error) {
	shape := raw.Shape()
	if len(shape) != 3 {
		return nil, errors.Errorf("raw patch must have 3 axes (depth, H, W), got shape %v", shape)
	}
	if mode == model.Mode2D && shape[0] != 1 {
		return nil, errors.Errorf("2D patch must have a single slice, got depth %d", shape[0])
	}

	src, ok := raw.Data().([]float32)
	if !ok {
		return nil, errors.Errorf("raw patch must be Float32, got %v", raw.Dtype())
	}

	plane := shape[0] * shape[1] * shape[2]
	scaled := make([]float32, plane)
	copy(scaled, src)
	ClipScale(scaled)

	mean, std := Stats(mode)
	out := make([]float32, Channels*plane)
	for c := 0; c < Channels; c++ {
		base := c * plane
		for i, v := range scaled {
			out[base+i] = (v - mean[c]) / std[c]
		}
	}

	if mode == model.Mode2D {
		// Depth axis collapses: (Channels, H, W).
		return tensor.New(
			tensor.WithShape(Channels, shape[1], shape[2]),
			tensor.Of(tensor.Float32),
			tensor.WithBacking(out),
		), nil
	}

	// Channel leads depth: (Channels, depth, H, W).
	return tensor.New(
		tensor.WithShape(Channels, shape[0], shape[1], shape[2]),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(out),
	), nil
}
