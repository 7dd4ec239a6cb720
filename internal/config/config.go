// Package config loads project-level settings from planweave.yml.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig holds project-level settings loaded from planweave.yml.
type ProjectConfig struct {
	// SemanticThreshold gates layer-3 similarity matches. Zero means use the
	// built-in default of 0.3.
	SemanticThreshold float64 `yaml:"semanticThreshold,omitempty"`

	// AllowOrphans accepts zero-edge nodes in inferred DAGs instead of
	// forcing sequential fallback edges.
	AllowOrphans *bool `yaml:"allowOrphans,omitempty"`

	// MaxVariantsPerSample caps augmentation output per plan. Zero means use
	// the built-in default of 10.
	MaxVariantsPerSample int `yaml:"maxVariantsPerSample,omitempty"`

	// Strategies selects augmentation strategies by id. Empty means all.
	Strategies []int `yaml:"strategies,omitempty"`

	// PreserveCriticalPath keeps placeholder/parameter edges untouched by
	// augmentation.
	PreserveCriticalPath bool `yaml:"preserveCriticalPath,omitempty"`

	// Workers bounds plan-level concurrency during batch runs.
	Workers int `yaml:"workers,omitempty"`

	// ToolSchemaPath points at a YAML tool-schema registry; empty means the
	// built-in registry.
	ToolSchemaPath string `yaml:"toolSchemaPath,omitempty"`

	// StorePath points at a KuzuDB directory for persistent corpora; empty
	// means in-memory.
	StorePath string `yaml:"storePath,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`
}

// Load attempts to read planweave.yml or planweave.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"planweave.yml", "planweave.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Threshold returns the configured semantic threshold or the default.
func (c *ProjectConfig) Threshold() float64 {
	if c.SemanticThreshold > 0 {
		return c.SemanticThreshold
	}
	return 0.3
}

// Orphans returns the configured orphan policy; unset means allowed.
func (c *ProjectConfig) Orphans() bool {
	if c.AllowOrphans == nil {
		return true
	}
	return *c.AllowOrphans
}

// MaxVariants returns the configured variant cap or the default.
func (c *ProjectConfig) MaxVariants() int {
	if c.MaxVariantsPerSample > 0 {
		return c.MaxVariantsPerSample
	}
	return 10
}
