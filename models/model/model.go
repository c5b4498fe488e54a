// Package model - Shared definitions for malignancy classifier variants.
package model

import (
	"path/filepath"

	"gorgonia.org/tensor"

	"github.com/nodule-ai/go-malignancy/inference/providers"
)

// Mode is the dimensionality of the classifier input.
type Mode string

const (
	// Mode2D classifies a single axial slice per candidate.
	Mode2D Mode = "2D"
	// Mode3D classifies a sub-volume per candidate.
	Mode3D Mode = "3D"
)

// Variant identifies one concrete classifier architecture/weight-set
// combination. The set is closed: exactly these three exist.
type Variant string

const (
	// VariantHiera3D is the Hiera encoder over 3D sub-volumes.
	VariantHiera3D Variant = "hiera-3d"
	// VariantHiera2D is the Hiera encoder over single slices.
	VariantHiera2D Variant = "hiera-2d"
	// VariantViT2D is the vision transformer over single slices.
	VariantViT2D Variant = "vit-2d"
)

// CheckpointFile is the fixed artifact name inside a model directory.
const CheckpointFile = "best_metric_model.pth"

// CheckpointPath returns the well-known checkpoint location for a model
// name: <root>/<name>/best_metric_model.pth. The convention is fixed, not
// per-call configurable.
func CheckpointPath(root, name string) string {
	return filepath.Join(root, name, CheckpointFile)
}

// Scorer runs a forward pass over one batch of normalized patches and
// returns one raw logit per batch item. Implementations load their
// checkpoint on every call; nothing here depends on caching.
type Scorer interface {
	// Variant reports which classifier this scorer executes.
	Variant() Variant
	// InputShape returns the batch tensor shape for n patches.
	InputShape(n int) []int
	// Score executes a single forward pass with gradients disabled.
	Score(batch *tensor.Dense) ([]float32, error)
	// Close releases any resources held by the scorer.
	Close() error
}

// NewScorerArgs is the arguments for constructing a scorer.
type NewScorerArgs struct {
	// ModelRoot is the directory holding one subdirectory per model name.
	ModelRoot string `json:"modelRoot" yaml:"modelRoot"`
	// ModelName keys the checkpoint directory under ModelRoot.
	ModelName string `json:"modelName" yaml:"modelName"`
	// SizePx is the in-plane patch extent in samples.
	SizePx int `json:"sizePx" yaml:"sizePx"`
	// DepthPx is the depth extent in samples (3D variants only).
	DepthPx int `json:"depthPx" yaml:"depthPx"`
	// Provider selects the execution device for the forward pass.
	Provider providers.ExecutionProvider `json:"-" yaml:"-"`
}
