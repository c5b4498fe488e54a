// Package hiera - Hiera encoder variants fine-tuned for nodule malignancy.
package hiera

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/nodule-ai/go-malignancy/inference"
	"github.com/nodule-ai/go-malignancy/inference/providers"
	"github.com/nodule-ai/go-malignancy/models/model"
)

// Options is the options for the Hiera variants.
type Options struct {
	ModelRoot string `json:"modelRoot" yaml:"modelRoot"`
	ModelName string `json:"modelName" yaml:"modelName"`
	SizePx    int    `json:"sizePx"    yaml:"sizePx"`
	DepthPx   int    `json:"depthPx"   yaml:"depthPx"`

	provider providers.ExecutionProvider
}

// Hiera3D scores batches of (Channels, depth, H, W) sub-volume patches.
type Hiera3D struct {
	options Options
}

// NewHiera3D creates the 3D Hiera scorer.
func NewHiera3D(args model.NewScorerArgs) (*Hiera3D, error) {
	if args.DepthPx <= 0 || args.SizePx <= 0 {
		return nil, fmt.Errorf("hiera-3d needs positive patch extents, got depth=%d size=%d", args.DepthPx, args.SizePx)
	}
	return &Hiera3D{
		options: Options{
			ModelRoot: args.ModelRoot,
			ModelName: args.ModelName,
			SizePx:    args.SizePx,
			DepthPx:   args.DepthPx,
			provider:  args.Provider,
		},
	}, nil
}

// Variant reports which classifier this scorer executes.
func (m *Hiera3D) Variant() model.Variant { return model.VariantHiera3D }

// InputShape returns the batch tensor shape for n patches.
func (m *Hiera3D) InputShape(n int) []int {
	return []int{n, 3, m.options.DepthPx, m.options.SizePx, m.options.SizePx}
}

// Score loads the checkpoint, runs one forward pass over the batch, and
// releases the session before returning.
func (m *Hiera3D) Score(batch *tensor.Dense) ([]float32, error) {
	return score(batch, m.InputShape(batch.Shape()[0]), &m.options)
}

// Close releases resources. Hiera3D holds none between calls.
func (m *Hiera3D) Close() error { return nil }

// Hiera2D scores batches of (Channels, H, W) single-slice patches.
type Hiera2D struct {
	options Options
}

// NewHiera2D creates the 2D Hiera scorer.
func NewHiera2D(args model.NewScorerArgs) (*Hiera2D, error) {
	if args.SizePx <= 0 {
		return nil, fmt.Errorf("hiera-2d needs a positive patch extent, got size=%d", args.SizePx)
	}
	return &Hiera2D{
		options: Options{
			ModelRoot: args.ModelRoot,
			ModelName: args.ModelName,
			SizePx:    args.SizePx,
			provider:  args.Provider,
		},
	}, nil
}

// Variant reports which classifier this scorer executes.
func (m *Hiera2D) Variant() model.Variant { return model.VariantHiera2D }

// InputShape returns the batch tensor shape for n patches.
func (m *Hiera2D) InputShape(n int) []int {
	return []int{n, 3, m.options.SizePx, m.options.SizePx}
}

// Score loads the checkpoint, runs one forward pass over the batch, and
// releases the session before returning.
func (m *Hiera2D) Score(batch *tensor.Dense) ([]float32, error) {
	return score(batch, m.InputShape(batch.Shape()[0]), &m.options)
}

// Close releases resources. Hiera2D holds none between calls.
func (m *Hiera2D) Close() error { return nil }

// score is the shared forward-pass path. The session is scoped to the call
// so the accelerator is released on every exit path.
func score(batch *tensor.Dense, want []int, opts *Options) ([]float32, error) {
	if err := checkBatchShape(batch, want); err != nil {
		return nil, err
	}
	n := batch.Shape()[0]

	sess, err := inference.NewSession(inference.NewSessionArgs{
		CheckpointPath: model.CheckpointPath(opts.ModelRoot, opts.ModelName),
		InputShape:     toInt64(want),
		OutputShape:    []int64{int64(n), 1},
		Provider:       opts.provider,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	logits, err := sess.Run(batch.Data().([]float32))
	if err != nil {
		return nil, err
	}
	if len(logits) != n {
		return nil, fmt.Errorf("expected %d logits, model produced %d", n, len(logits))
	}
	return logits, nil
}

func checkBatchShape(batch *tensor.Dense, want []int) error {
	got := batch.Shape()
	if len(got) != len(want) {
		return fmt.Errorf("batch has %d axes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("batch shape %v does not match expected %v", got, want)
		}
	}
	return nil
}

func toInt64(shape []int) []int64 {
	out := make([]int64, len(shape))
	for i, v := range shape {
		out[i] = int64(v)
	}
	return out
}
