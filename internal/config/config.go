// Package config loads an Astrixa project's optional astrixa.yaml
// file: the stdlib extension allow-list, default build output path,
// and which optimizer passes run (SPEC_FULL §2.3). Absence of the
// file is not an error — defaults apply, so a project with no
// astrixa.yaml builds exactly as one with an empty one.
package config

import (
	"errors"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is an Astrixa project's build configuration.
type Config struct {
	// Output is the default path `astrixa build` writes WAT to when
	// -o is not given. Empty means stdout.
	Output string `yaml:"output"`

	// Stdlib extends the builtin stdlib surface (print, println) with
	// additional host-provided function names the checker and lowerer
	// should accept as CallStd rather than a user-defined Call.
	Stdlib []string `yaml:"stdlib"`

	// Optimize toggles the optimizer passes; both default to true.
	Optimize OptimizePasses `yaml:"optimize"`
}

// OptimizePasses toggles the optimizer's two fixed passes independently.
type OptimizePasses struct {
	ConstantFold *bool `yaml:"constant_fold"`
	DeadCodeElim *bool `yaml:"dead_code_elim"`
}

// ConstantFoldEnabled reports whether constant folding should run,
// defaulting to true when unset.
func (p OptimizePasses) ConstantFoldEnabled() bool {
	return p.ConstantFold == nil || *p.ConstantFold
}

// DeadCodeElimEnabled reports whether dead-code elimination should
// run, defaulting to true when unset.
func (p OptimizePasses) DeadCodeElimEnabled() bool {
	return p.DeadCodeElim == nil || *p.DeadCodeElim
}

// Default returns a Config with both optimizer passes enabled and no
// output path or stdlib extensions.
func Default() Config {
	return Config{}
}

// Load reads and parses path. A missing file is not an error: Load
// returns Default() so callers never need a separate existence check.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
