// Package processor - Batched malignancy inference over candidate nodules.
//
// A Processor turns world-space candidate coordinates on a chest CT volume
// into calibrated malignancy probabilities: resample a patch per candidate,
// normalize, batch, run the selected classifier variant, squash logits.
// The pipeline is sequential and synchronous; a Processor is not safe for
// concurrent use because the forward pass holds the accelerator.
package processor

import (
	"fmt"

	"github.com/chewxy/math32"
	"gorgonia.org/tensor"

	"github.com/nodule-ai/go-malignancy/inference/providers"
	"github.com/nodule-ai/go-malignancy/models"
	"github.com/nodule-ai/go-malignancy/models/model"
	"github.com/nodule-ai/go-malignancy/patch"
	"github.com/nodule-ai/go-malignancy/volume"
)

// Default patch geometry: a 50 mm field of view rendered at 64 samples per
// in-plane axis, 16 samples deep in 3D mode. Exposed in Config for
// testability; the derived voxel pitch SizeMM/SizePx is mode-independent.
const (
	DefaultSizePx  = 64
	DefaultSizeMM  = 50
	DefaultDepthPx = 16
)

// DefaultModelRoot is where the deployment mounts model checkpoints.
const DefaultModelRoot = "/opt/app/resources"

// ConfigurationError indicates an invalid (mode, model name) combination or
// an incomplete header. Detected eagerly, fatal, surfaced before any
// compute work begins.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Config is the construction surface of a Processor.
type Config struct {
	// Mode selects the dimensionality, "2D" or "3D".
	Mode model.Mode `json:"mode" yaml:"mode"`
	// ModelName keys both variant selection (case-insensitive substring
	// match on "hiera"/"vit") and the checkpoint directory.
	ModelName string `json:"modelName" yaml:"modelName"`
	// SuppressLogs silences diagnostic output. No behavioral effect.
	SuppressLogs bool `json:"suppressLogs" yaml:"suppressLogs"`
	// ModelRoot is the directory holding checkpoint subdirectories.
	// Defaults to DefaultModelRoot.
	ModelRoot string `json:"modelRoot" yaml:"modelRoot"`
	// Provider selects the execution device. Nil falls back to CPU.
	Provider providers.ExecutionProvider `json:"-" yaml:"-"`
	// SizePx, SizeMM, DepthPx override the default patch geometry.
	SizePx  int     `json:"sizePx"  yaml:"sizePx"`
	SizeMM  float64 `json:"sizeMM"  yaml:"sizeMM"`
	DepthPx int     `json:"depthPx" yaml:"depthPx"`
}

// Result holds the per-candidate outputs, aligned index-for-index with the
// input candidate sequence.
type Result struct {
	// Probabilities are the calibrated malignancy probabilities in (0, 1).
	Probabilities []float32
	// Logits are the raw classifier scores the probabilities derive from.
	Logits []float32
}

// Processor predicts nodule malignancy around candidate coordinates. The
// mode and classifier variant are fixed at construction for the lifetime
// of the instance.
type Processor struct {
	cfg     Config
	variant model.Variant
	scorer  model.Scorer
	logger  Logger
}

// Option customizes a Processor beyond its Config.
type Option func(*Processor)

// WithScorer injects an already-constructed scorer, bypassing checkpoint
// wiring. The scorer must match the configured mode's patch shape.
func WithScorer(s model.Scorer) Option {
	return func(p *Processor) { p.scorer = s }
}

// WithLogger injects a diagnostic logger, overriding the SuppressLogs
// default.
func WithLogger(l Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// New validates the configuration and constructs a Processor. An invalid
// (mode, model name) pair fails here with a ConfigurationError; there is no
// partial construction.
func New(cfg Config, opts ...Option) (*Processor, error) {
	if cfg.SizePx == 0 {
		cfg.SizePx = DefaultSizePx
	}
	if cfg.SizeMM == 0 {
		cfg.SizeMM = DefaultSizeMM
	}
	if cfg.DepthPx == 0 {
		cfg.DepthPx = DefaultDepthPx
	}
	if cfg.ModelRoot == "" {
		cfg.ModelRoot = DefaultModelRoot
	}

	variant, err := models.Resolve(cfg.Mode, cfg.ModelName)
	if err != nil {
		return nil, &ConfigurationError{Reason: "unresolvable model variant", Err: err}
	}

	p := &Processor{
		cfg:     cfg,
		variant: variant,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		if cfg.SuppressLogs {
			p.logger = NopLogger{}
		} else {
			p.logger = NewStdLogger()
		}
	}

	p.logger.Printf("initializing the deep learning system")

	if p.scorer == nil {
		scorer, err := models.NewScorer(variant, model.NewScorerArgs{
			ModelRoot: cfg.ModelRoot,
			ModelName: cfg.ModelName,
			SizePx:    cfg.SizePx,
			DepthPx:   cfg.DepthPx,
			Provider:  cfg.Provider,
		})
		if err != nil {
			return nil, &ConfigurationError{Reason: "scorer construction failed", Err: err}
		}
		p.scorer = scorer
	}

	return p, nil
}

// Variant reports the classifier variant selected at construction.
func (p *Processor) Variant() model.Variant { return p.variant }

// PatchShape returns the resampled patch extent (depth, H, W) for the
// configured mode: a single slice in 2D, DepthPx slices in 3D.
func (p *Processor) PatchShape() [3]int {
	if p.cfg.Mode == model.Mode3D {
		return [3]int{p.cfg.DepthPx, p.cfg.SizePx, p.cfg.SizePx}
	}
	return [3]int{1, p.cfg.SizePx, p.cfg.SizePx}
}

// voxelPitch is the physical spacing per output sample, identical on every
// axis and independent of mode.
func (p *Processor) voxelPitch() [3]float64 {
	pitch := p.cfg.SizeMM / float64(p.cfg.SizePx)
	return [3]float64{pitch, pitch, pitch}
}

// Predict runs the full pipeline over one scan: one patch per candidate,
// one batched forward pass, one (probability, logit) pair per candidate in
// input order. All-or-nothing: any failure returns no partial results.
//
// An empty candidate sequence is valid and yields an empty Result without
// touching the model.
func (p *Processor) Predict(vol *volume.Volume, hdr *volume.Header, coords [][3]float64) (*Result, error) {
	if err := hdr.Validate(); err != nil {
		return nil, &ConfigurationError{Reason: "incomplete header", Err: err}
	}

	if len(coords) == 0 {
		return &Result{Probabilities: []float32{}, Logits: []float32{}}, nil
	}

	p.logger.Printf("processing in %s", p.cfg.Mode)

	shape := p.PatchShape()
	pitch := p.voxelPitch()

	patches := make([]*tensor.Dense, 0, len(coords))
	for _, coord := range coords {
		raw, err := volume.ExtractPatch(vol, hdr, coord, shape, pitch, volume.Trilinear)
		if err != nil {
			return nil, err
		}
		normalized, err := patch.Normalize(raw, p.cfg.Mode)
		if err != nil {
			return nil, err
		}
		patches = append(patches, normalized)
	}

	batch, err := stack(patches)
	if err != nil {
		return nil, err
	}

	logits, err := p.scorer.Score(batch)
	if err != nil {
		return nil, err
	}
	if len(logits) != len(coords) {
		return nil, fmt.Errorf("scorer returned %d logits for %d candidates", len(logits), len(coords))
	}

	probabilities := make([]float32, len(logits))
	for i, logit := range logits {
		probabilities[i] = Sigmoid(logit)
	}

	return &Result{Probabilities: probabilities, Logits: logits}, nil
}

// Sigmoid maps a raw logit to a probability in (0, 1). Pure and stateless;
// probability = sigmoid(logit) holds exactly for every returned pair.
func Sigmoid(logit float32) float32 {
	return 1 / (1 + math32.Exp(-logit))
}

// stack concatenates equally-shaped patches along a new leading batch axis.
func stack(patches []*tensor.Dense) (*tensor.Dense, error) {
	first := patches[0].Shape()
	size := 1
	for _, d := range first {
		size *= d
	}

	backing := make([]float32, 0, size*len(patches))
	for i, t := range patches {
		if !t.Shape().Eq(first) {
			return nil, fmt.Errorf("patch %d has shape %v, want %v", i, t.Shape(), first)
		}
		backing = append(backing, t.Data().([]float32)...)
	}

	shape := append([]int{len(patches)}, first...)
	return tensor.New(
		tensor.WithShape(shape...),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(backing),
	), nil
}
