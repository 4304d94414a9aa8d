// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config defines the YAML benchmark configuration: which
// algorithm families run, over which parameter grids, against which
// datasets, and where results land.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Meta holds run-wide settings shared by every task.
type Meta struct {
	// Lag is the scoring tolerance in cases for matching detected
	// against known change points.
	Lag int `yaml:"f1_lag" validate:"gte=0"`

	// SingleBar switches streaming delivery with one aggregate
	// completion bar instead of per-task bars.
	SingleBar bool `yaml:"single_bar"`

	// WriteEvery is the number of completed tasks between incremental
	// result flushes.
	WriteEvery int `yaml:"write_every" validate:"gte=1"`

	// Workers is the worker goroutine count. Zero means the default
	// (CPU count minus two, floor one).
	Workers int `yaml:"workers" validate:"gte=0"`
}

// Approach configures one algorithm family.
type Approach struct {
	// Enabled toggles the family without deleting its grid.
	Enabled bool `yaml:"enabled"`

	// Function is the registry name of the family's task function.
	Function string `yaml:"function" validate:"required"`

	// MetaParams are fixed values merged into every combination,
	// overriding grid values on key collision.
	MetaParams map[string]any `yaml:"meta-params"`

	// Params maps parameter names to candidate value lists; the grid
	// is their cartesian product.
	Params map[string][]any `yaml:"params" validate:"required,min=1"`
}

// Dataset is one dataset source entry. Exactly one of Path, Dir, or
// GoldStandard is set.
type Dataset struct {
	Path         string `yaml:"path"`
	Dir          string `yaml:"dir"`
	GoldStandard string `yaml:"gold_standard"`
	ChangePoints []int  `yaml:"change_points"`
}

// Output configures where results land.
type Output struct {
	// ResultsFile is the consolidated CSV path. Truncated at run start.
	ResultsFile string `yaml:"results_file" validate:"required"`

	// IntermediateDir is the root for per-task artifact CSVs. Empty
	// disables intermediate artifacts.
	IntermediateDir string `yaml:"intermediate_dir"`
}

// Logging configures the benchmark logger.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Dir enables JSON file logging to the given directory.
	Dir string `yaml:"dir"`

	// JSON switches stderr output to JSON.
	JSON bool `yaml:"json"`
}

// BenchConfig is the root of the benchmark configuration file.
type BenchConfig struct {
	Meta       Meta                `yaml:"meta"`
	Approaches map[string]Approach `yaml:"approaches" validate:"required,min=1,dive"`
	Datasets   []Dataset           `yaml:"datasets" validate:"required,min=1"`
	Output     Output              `yaml:"output"`
	Logging    Logging             `yaml:"logging"`
}

// Default returns the configuration defaults applied before unmarshaling,
// so absent keys fall back instead of zeroing.
func Default() BenchConfig {
	return BenchConfig{
		Meta: Meta{
			Lag:        200,
			WriteEvery: 100,
		},
		Output: Output{
			ResultsFile: "algorithm_results.csv",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads, unmarshals, and validates a benchmark configuration file.
func Load(path string) (BenchConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config %q: %w", path, err)
	}

	for _, ds := range cfg.Datasets {
		set := 0
		for _, field := range []string{ds.Path, ds.Dir, ds.GoldStandard} {
			if field != "" {
				set++
			}
		}
		if set != 1 {
			return cfg, fmt.Errorf("dataset entry must set exactly one of path, dir, gold_standard")
		}
	}
	return cfg, nil
}

// EnabledApproaches returns the names of enabled approaches. Map order is
// not meaningful; callers needing determinism sort the result.
func (c BenchConfig) EnabledApproaches() []string {
	names := make([]string, 0, len(c.Approaches))
	for name, approach := range c.Approaches {
		if approach.Enabled {
			names = append(names, name)
		}
	}
	return names
}
