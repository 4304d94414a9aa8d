// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tasks

import (
	"math/rand"
	"sort"
	"time"
)

// Approach describes one algorithm family in the benchmark configuration.
type Approach struct {
	// Enabled toggles the family without deleting its configuration.
	Enabled bool

	// Function is the registry identifier of the family's task function.
	Function string

	// MetaParams are fixed arguments applied to every parameter
	// combination of this family. They take precedence over grid values
	// on key collisions.
	MetaParams map[string]any

	// Params maps parameter names to candidate value lists. The builder
	// expands the full cartesian product.
	Params map[string][]any
}

// BuildOptions tunes task-list construction.
type BuildOptions struct {
	// Lag is the scoring lag tolerance merged into every task.
	Lag int

	// TestRun truncates the expansion to one parameter combination per
	// family and one dataset, for fast smoke tests of the pipeline.
	TestRun bool

	// Rand supplies the shuffle source. Nil means a time-seeded source.
	Rand *rand.Rand
}

// Build expands approaches into a flat, shuffled task list.
//
// Description:
//
//	For each enabled family the parameter grid is cartesian-expanded
//	(parameter names iterated in sorted order so expansion is
//	deterministic), merged with the family's meta-params, and crossed
//	with every dataset's metadata. The final list is shuffled so
//	expensive and cheap tasks interleave across workers instead of
//	clustering, then each task gets a unique display position.
//
// Inputs:
//   - approaches: family name -> configuration. Disabled families are
//     skipped entirely.
//   - datasets: labeled event logs; one task per (combination, dataset).
//   - opts: lag, test-run truncation, shuffle source.
//
// Outputs:
//   - []Task: shuffled tasks with positions 0..n-1. Never nil.
func Build(approaches map[string]Approach, datasets []Dataset, opts BuildOptions) []Task {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	if opts.TestRun && len(datasets) > 1 {
		datasets = datasets[:1]
	}

	// Family iteration is sorted so positions are reproducible for a
	// seeded shuffle source.
	families := make([]string, 0, len(approaches))
	for name := range approaches {
		families = append(families, name)
	}
	sort.Strings(families)

	list := make([]Task, 0)
	for _, name := range families {
		approach := approaches[name]
		if !approach.Enabled {
			continue
		}

		combos := expandGrid(approach.Params)
		if opts.TestRun && len(combos) > 1 {
			combos = combos[:1]
		}

		for _, combo := range combos {
			for k, v := range approach.MetaParams {
				combo[k] = v
			}
			for _, ds := range datasets {
				args := combo.Clone()
				args[KeyLogPath] = ds.LogPath
				args[KeyLogName] = ds.Name
				args[KeyLogSource] = ds.Group
				args[KeyKnownChangePoints] = ds.ChangePoints
				args[KeyLag] = opts.Lag
				list = append(list, Task{Function: approach.Function, Args: args})
			}
		}
	}

	rng.Shuffle(len(list), func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
	for i := range list {
		list[i].Position = i
	}
	return list
}

// expandGrid returns the cartesian product of the parameter grid. An
// empty grid yields one empty combination so meta-params-only families
// still produce tasks.
func expandGrid(params map[string][]any) []Args {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []Args{{}}
	for _, key := range keys {
		values := params[key]
		next := make([]Args, 0, len(combos)*len(values))
		for _, combo := range combos {
			for _, v := range values {
				expanded := combo.Clone()
				expanded[key] = v
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos
}
