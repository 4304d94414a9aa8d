// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tasks defines the executable unit of a benchmark run: the task
// descriptor, the registry that binds function names to Go callables, and
// the builder that expands a declarative configuration into a shuffled
// task list.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/DriftBench/services/evaluation/results"
)

// Well-known argument keys merged into every task by the builder.
const (
	// KeyLogPath is the event log file path for the task's dataset.
	KeyLogPath = "filepath"

	// KeyLogName is the dataset's display name (file name without the
	// event-log extension).
	KeyLogName = "log_name"

	// KeyLogSource is the dataset group (parent directory name).
	KeyLogSource = "log_source"

	// KeyKnownChangePoints holds the dataset's labeled change-point
	// locations as []int.
	KeyKnownChangePoints = "cp_locations"

	// KeyLag is the scoring lag tolerance in cases.
	KeyLag = "f1_lag"
)

// Sentinel errors shared across the execution pipeline.
var (
	// ErrNotApplicable signals that a task (or one detector run inside
	// it) cannot be applied to its dataset, e.g. the log is shorter than
	// the requested window bounds. It is a skip marker, not a fault.
	ErrNotApplicable = errors.New("analysis not applicable to this log")

	// ErrMissingArg is returned by Args accessors for absent keys.
	ErrMissingArg = errors.New("missing task argument")

	// ErrBadArgType is returned by Args accessors on type mismatches.
	ErrBadArgType = errors.New("task argument has unexpected type")
)

// Progress lets a running task report forward movement. Implementations
// must be safe for use from the single worker goroutine that owns the
// task; the terminal coordination lives behind the implementation.
type Progress interface {
	// SetTotal declares how many steps the task expects to take.
	SetTotal(total int)

	// Step advances the indicator by n steps.
	Step(n int)

	// Done marks the task's indicator as finished.
	Done()
}

// NopProgress is a Progress that discards all updates.
type NopProgress struct{}

func (NopProgress) SetTotal(int) {}
func (NopProgress) Step(int)     {}
func (NopProgress) Done()        {}

// Func is a bound task function. It receives the merged parameter and
// metadata mapping of one task and returns zero or more result rows (most
// families return one; sibling variants computed together return several).
// Returning an error wrapping ErrNotApplicable skips the task without
// contributing rows; any other error is a task fault.
type Func func(ctx context.Context, args Args, prog Progress) ([]results.Row, error)

// Task is one executable descriptor. Immutable once built.
type Task struct {
	// Function is the registry identifier of the bound task function.
	Function string

	// Args is the merged parameter-combination + shared-metadata mapping.
	Args Args

	// Position is the task's display index, assigned after shuffling.
	// Used to key per-task progress bars.
	Position int
}

func (t Task) String() string {
	return fmt.Sprintf("%s[%d](%s)", t.Function, t.Position, t.Args.label())
}

// Dataset is one labeled event log.
type Dataset struct {
	// LogPath is the path to the event log file.
	LogPath string

	// Name is the display name (base name without log extensions).
	Name string

	// Group identifies the dataset collection, typically the parent
	// directory name.
	Group string

	// ChangePoints are the labeled change-point locations, ascending.
	ChangePoints []int
}
