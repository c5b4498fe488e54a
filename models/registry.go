// Package models - Registry and construction-time selection of classifier
// variants.
package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nodule-ai/go-malignancy/models/hiera"
	"github.com/nodule-ai/go-malignancy/models/model"
	"github.com/nodule-ai/go-malignancy/models/vit"
)

// ErrInvalidVariant is returned when a (mode, model name) pair resolves to
// no known variant.
var ErrInvalidVariant = errors.New("invalid mode and/or model name")

// Resolve maps a (mode, model name) pair to its classifier variant.
//
// The mapping is exhaustive over the closed variant set: 3D plus a name
// containing "hiera" selects Hiera3D, 2D plus "hiera" selects Hiera2D, 2D
// plus "vit" selects ViT2D. The name match is a case-insensitive substring.
// Every other combination fails with ErrInvalidVariant; there is no
// default fallback.
//
// Arguments:
//   - mode: The dimensionality mode, "2D" or "3D".
//   - name: The model name, e.g. "finetune-hiera".
//
// Returns:
//   - model.Variant: The selected variant.
//   - error: ErrInvalidVariant for any combination outside the table.
func Resolve(mode model.Mode, name string) (model.Variant, error) {
	lower := strings.ToLower(name)
	switch {
	case mode == model.Mode3D && strings.Contains(lower, "hiera"):
		return model.VariantHiera3D, nil
	case mode == model.Mode2D && strings.Contains(lower, "hiera"):
		return model.VariantHiera2D, nil
	case mode == model.Mode2D && strings.Contains(lower, "vit"):
		return model.VariantViT2D, nil
	default:
		return "", fmt.Errorf("%w: mode=%q name=%q", ErrInvalidVariant, mode, name)
	}
}

// NewScorer creates a scorer for the given variant.
//
// This factory is the single entry point for scorer construction, routing
// to the variant-specific constructors while keeping a unified interface.
//
// Arguments:
//   - variant: The variant to construct, usually from Resolve.
//   - args: Shared construction arguments.
//
// Returns:
//   - model.Scorer: A fully configured scorer.
//   - error: An error if construction fails or the variant is unknown.
func NewScorer(variant model.Variant, args model.NewScorerArgs) (model.Scorer, error) {
	switch variant {
	case model.VariantHiera3D:
		return hiera.NewHiera3D(args)
	case model.VariantHiera2D:
		return hiera.NewHiera2D(args)
	case model.VariantViT2D:
		return vit.NewViT2D(args)
	default:
		return nil, fmt.Errorf("%w: unknown variant %q", ErrInvalidVariant, variant)
	}
}
