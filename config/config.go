// Package config provides configuration loading for the malignancy
// pipeline. It handles loading configuration from YAML files and provides
// default values.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nodule-ai/go-malignancy/inference/providers"
	"github.com/nodule-ai/go-malignancy/models/model"
	"github.com/nodule-ai/go-malignancy/processor"
)

// Config represents the pipeline configuration loaded from YAML.
type Config struct {
	// Model parameters
	Model struct {
		// Root is the directory holding one checkpoint subdirectory per
		// model name.
		Root string `yaml:"root"`

		// Name keys both variant selection and the checkpoint directory.
		Name string `yaml:"name"`

		// Mode selects the dimensionality, "2D" or "3D".
		Mode string `yaml:"mode"`
	} `yaml:"model"`

	// Patch geometry parameters
	Patch struct {
		// SizePx is the number of in-plane samples per axis.
		SizePx int `yaml:"sizePx"`

		// SizeMM is the physical field of view in millimeters.
		SizeMM float64 `yaml:"sizeMM"`

		// DepthPx is the number of samples along depth in 3D mode.
		DepthPx int `yaml:"depthPx"`
	} `yaml:"patch"`

	// Runtime parameters
	Runtime struct {
		// Provider is the execution backend, "cpu" or "cuda".
		Provider string `yaml:"provider"`

		// SuppressLogs silences diagnostic output.
		SuppressLogs bool `yaml:"suppressLogs"`
	} `yaml:"runtime"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Model.Root = processor.DefaultModelRoot
	cfg.Model.Name = "finetune-hiera"
	cfg.Model.Mode = string(model.Mode3D)

	cfg.Patch.SizePx = processor.DefaultSizePx
	cfg.Patch.SizeMM = processor.DefaultSizeMM
	cfg.Patch.DepthPx = processor.DefaultDepthPx

	cfg.Runtime.Provider = string(providers.CPUProviderBackend)
	cfg.Runtime.SuppressLogs = false

	return cfg
}

// LoadConfig loads configuration from a YAML file, filling unset fields
// with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ToProcessorConfig converts the loaded configuration into the processor's
// construction surface.
func (c *Config) ToProcessorConfig() (processor.Config, error) {
	provider, err := providers.FromBackend(providers.ProviderBackend(c.Runtime.Provider))
	if err != nil {
		return processor.Config{}, err
	}

	return processor.Config{
		Mode:         model.Mode(c.Model.Mode),
		ModelName:    c.Model.Name,
		ModelRoot:    c.Model.Root,
		SuppressLogs: c.Runtime.SuppressLogs,
		Provider:     provider,
		SizePx:       c.Patch.SizePx,
		SizeMM:       c.Patch.SizeMM,
		DepthPx:      c.Patch.DepthPx,
	}, nil
}
