// Package vit - Vision transformer variant fine-tuned for nodule malignancy.
package vit

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/nodule-ai/go-malignancy/inference"
	"github.com/nodule-ai/go-malignancy/inference/providers"
	"github.com/nodule-ai/go-malignancy/models/model"
)

// Options is the options for the ViT variant.
type Options struct {
	ModelRoot string `json:"modelRoot" yaml:"modelRoot"`
	ModelName string `json:"modelName" yaml:"modelName"`
	SizePx    int    `json:"sizePx"    yaml:"sizePx"`

	provider providers.ExecutionProvider
}

// ViT2D scores batches of (Channels, H, W) single-slice patches.
type ViT2D struct {
	options Options
}

// NewViT2D creates the 2D vision transformer scorer.
func NewViT2D(args model.NewScorerArgs) (*ViT2D, error) {
	if args.SizePx <= 0 {
		return nil, fmt.Errorf("vit-2d needs a positive patch extent, got size=%d", args.SizePx)
	}
	return &ViT2D{
		options: Options{
			ModelRoot: args.ModelRoot,
			ModelName: args.ModelName,
			SizePx:    args.SizePx,
			provider:  args.Provider,
		},
	}, nil
}

// Variant reports which classifier this scorer executes.
func (m *ViT2D) Variant() model.Variant { return model.VariantViT2D }

// InputShape returns the batch tensor shape for n patches.
func (m *ViT2D) InputShape(n int) []int {
	return []int{n, 3, m.options.SizePx, m.options.SizePx}
}

// Score loads the checkpoint, runs one forward pass over the batch, and
// releases the session before returning.
func (m *ViT2D) Score(batch *tensor.Dense) ([]float32, error) {
	want := m.InputShape(batch.Shape()[0])
	got := batch.Shape()
	if len(got) != len(want) {
		return nil, fmt.Errorf("batch has %d axes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return nil, fmt.Errorf("batch shape %v does not match expected %v", got, want)
		}
	}
	n := got[0]

	sess, err := inference.NewSession(inference.NewSessionArgs{
		CheckpointPath: model.CheckpointPath(m.options.ModelRoot, m.options.ModelName),
		InputShape:     []int64{int64(n), 3, int64(m.options.SizePx), int64(m.options.SizePx)},
		OutputShape:    []int64{int64(n), 1},
		Provider:       m.options.provider,
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

// Close releases resources. ViT2D holds none between calls.
func (m *ViT2D) Close() error { return nil }
