// Package toolreg holds the read-only tool-schema registry shared by the
// inference and augmentation engines. The registry is loaded once before any
// engine call and never mutated afterwards: load, then fan out.
package toolreg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Param declares one named, typed input parameter of a tool.
type Param struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Field declares one field of a tool's output shape.
type Field struct {
	Field string `yaml:"field" json:"field"`
	Type  string `yaml:"type" json:"type"`
}

// Schema describes one tool: its declared inputs and outputs, an optional
// decomposition into an ordered sub-tool sequence, and the tools that are
// functionally equivalent to it.
type Schema struct {
	Name             string   `yaml:"name" json:"name"`
	InputParameters  []Param  `yaml:"input_parameters" json:"input_parameters"`
	OutputShape      []Field  `yaml:"output_shape" json:"output_shape"`
	DecomposableInto []string `yaml:"decomposable_into,omitempty" json:"decomposable_into,omitempty"`
	EquivalentTools  []string `yaml:"equivalent_tools,omitempty" json:"equivalent_tools,omitempty"`
}

// Registry maps tool names to schemas. It is immutable after construction and
// safe for concurrent readers.
type Registry struct {
	tools map[string]Schema
}

// New builds a Registry from a schema list. Later duplicates win.
func New(schemas []Schema) *Registry {
	r := &Registry{tools: make(map[string]Schema, len(schemas))}
	for _, s := range schemas {
		r.tools[s.Name] = s
	}
	return r
}

// registryFile is the on-disk YAML layout.
type registryFile struct {
	Tools []Schema `yaml:"tools"`
}

// Load reads a registry from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("toolreg: read %s: %w", path, err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("toolreg: parse %s: %w", path, err)
	}
	if len(file.Tools) == 0 {
		return nil, fmt.Errorf("toolreg: %s declares no tools", path)
	}
	return New(file.Tools), nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

// Lookup returns the schema for a tool name.
func (r *Registry) Lookup(name string) (Schema, bool) {
	s, ok := r.tools[name]
	return s, ok
}

// InputType returns the declared type of a tool's input parameter.
func (r *Registry) InputType(tool, param string) (string, bool) {
	s, ok := r.tools[tool]
	if !ok {
		return "", false
	}
	for _, p := range s.InputParameters {
		if p.Name == param {
			return p.Type, true
		}
	}
	return "", false
}

// HasOutputType reports whether any field of the tool's declared output shape
// has the given type.
func (r *Registry) HasOutputType(tool, typ string) bool {
	s, ok := r.tools[tool]
	if !ok {
		return false
	}
	for _, f := range s.OutputShape {
		if f.Type == typ {
			return true
		}
	}
	return false
}

// HasOutputField reports whether the tool's declared output shape contains
// the named field.
func (r *Registry) HasOutputField(tool, field string) bool {
	s, ok := r.tools[tool]
	if !ok {
		return false
	}
	for _, f := range s.OutputShape {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Equivalent returns the first declared functional equivalent of a tool.
func (r *Registry) Equivalent(tool string) (string, bool) {
	s, ok := r.tools[tool]
	if !ok || len(s.EquivalentTools) == 0 {
		return "", false
	}
	return s.EquivalentTools[0], true
}

// Decomposition returns the ordered sub-tool sequence a tool decomposes
// into, or nil.
func (r *Registry) Decomposition(tool string) []string {
	s, ok := r.tools[tool]
	if !ok {
		return nil
	}
	return s.DecomposableInto
}

// RemapParameters translates parameter names positionally from one tool's
// declared inputs to another's. Parameters without a positional counterpart
// keep their original name.
func (r *Registry) RemapParameters(fromTool, toTool string, params map[string]string) map[string]string {
	from, okF := r.tools[fromTool]
	to, okT := r.tools[toTool]
	if !okF || !okT || params == nil {
		return params
	}

	rename := make(map[string]string)
	for i, p := range from.InputParameters {
		if i < len(to.InputParameters) {
			rename[p.Name] = to.InputParameters[i].Name
		}
	}

	out := make(map[string]string, len(params))
	for k, v := range params {
		if nk, ok := rename[k]; ok {
			out[nk] = v
		} else {
			out[k] = v
		}
	}
	return out
}
