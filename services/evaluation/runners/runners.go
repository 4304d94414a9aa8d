// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package runners binds the reference detectors into registry task
// functions, one per algorithm family. Each runner loads its event log,
// runs the family's detector(s), scores the detections against the
// labeled change points, and returns result rows with the family's
// parameter columns.
package runners

import (
	"errors"
	"fmt"
	"time"

	"github.com/AleutianAI/DriftBench/services/evaluation/detect"
	"github.com/AleutianAI/DriftBench/services/evaluation/eventlog"
	"github.com/AleutianAI/DriftBench/services/evaluation/results"
	"github.com/AleutianAI/DriftBench/services/evaluation/scoring"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

// Family-specific parameter column names. Kept identical to the published
// results tables so outputs stay comparable across tool versions.
const (
	ColWindowSize          = "Window Size"
	ColSWStepSize          = "SW Step Size"
	ColPValue              = "P-Value"
	ColMinAdaptiveWindow   = "Min Adaptive Window"
	ColMaxAdaptiveWindow   = "Max Adaptive Window"
	ColADWINStepSize       = "ADWIN Step Size"
	ColWindowSizes         = "Window Sizes"
	ColAlpha               = "Alpha"
	ColMinSupportWindows   = "Min Support Windows"
	ColMRID                = "MRID"
	ColEpsilon             = "Epsilon"
	ColCompleteWindowSize  = "Complete-Window Size"
	ColDetectionWindowSize = "Detection-Window Size"
	ColStablePeriod        = "Stable Period"
)

// ksSignificance is the fixed KS rejection level for the families that do
// not take a p-value parameter.
const ksSignificance = 0.05

// Registered function names, referenced from benchmark configurations.
const (
	FuncBose                  = "bose"
	FuncMartjushevADWIN       = "martjushev_adwin"
	FuncEarthMover            = "earthmover"
	FuncEarthMoverMultiWindow = "earthmover_multi_window"
	FuncMaaradji              = "maaradji"
	FuncZhengDBSCAN           = "zheng_dbscan"
	FuncLCDD                  = "lcdd"
)

// FamilyDir maps a registered function name to its intermediate artifact
// directory under the intermediate root. Unknown names map to themselves.
func FamilyDir(function string) string {
	switch function {
	case FuncBose:
		return "Bose"
	case FuncMartjushevADWIN:
		return "Martjushev ADWIN"
	case FuncEarthMover:
		return "Earthmover"
	case FuncEarthMoverMultiWindow:
		return "EarthmoverMultiWindow"
	case FuncMaaradji:
		return "Maaradji"
	case FuncZhengDBSCAN:
		return "Zheng"
	case FuncLCDD:
		return "LCDD"
	default:
		return function
	}
}

// Suite holds the shared settings of all family runners.
type Suite struct {
	// IntermediateRoot is the directory under which per-task artifact
	// CSVs are written, one subdirectory per family. Empty disables
	// intermediate artifacts entirely; a missing family subdirectory
	// skips the write silently.
	IntermediateRoot string
}

// RegisterAll binds every family runner into the registry.
func (s *Suite) RegisterAll(reg *tasks.Registry) {
	reg.MustRegister(FuncBose, s.Bose)
	reg.MustRegister(FuncMartjushevADWIN, s.MartjushevADWIN)
	reg.MustRegister(FuncEarthMover, s.EarthMover)
	reg.MustRegister(FuncEarthMoverMultiWindow, s.EarthMoverMultiWindow)
	reg.MustRegister(FuncMaaradji, s.Maaradji)
	reg.MustRegister(FuncZhengDBSCAN, s.ZhengDBSCAN)
	reg.MustRegister(FuncLCDD, s.LCDD)
}

// taskLog bundles the loaded event log with the scoring metadata every
// runner needs.
type taskLog struct {
	log    *eventlog.Log
	name   string
	source string
	known  []int
	lag    int
}

// loadTaskLog resolves the shared metadata keys and loads the event log.
func loadTaskLog(args tasks.Args) (*taskLog, error) {
	path, err := args.String(tasks.KeyLogPath)
	if err != nil {
		return nil, err
	}
	name, err := args.String(tasks.KeyLogName)
	if err != nil {
		return nil, err
	}
	source, err := args.String(tasks.KeyLogSource)
	if err != nil {
		return nil, err
	}
	known, err := args.Ints(tasks.KeyKnownChangePoints)
	if err != nil {
		return nil, err
	}
	lag, err := args.Int(tasks.KeyLag)
	if err != nil {
		return nil, err
	}

	log, err := eventlog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading event log %q: %w", path, err)
	}
	return &taskLog{log: log, name: name, source: source, known: known, lag: lag}, nil
}

// row builds one scored result row.
func (tl *taskLog) row(algorithm string, params map[string]any, detected []int, dur time.Duration) results.Row {
	return results.Row{
		Algorithm: algorithm,
		LogSource: tl.source,
		Log:       tl.name,
		Params:    params,
		Detected:  detected,
		Known:     tl.known,
		Scores: map[string]float64{
			scoring.ColF1:         scoring.F1(detected, tl.known, tl.lag),
			scoring.ColAverageLag: scoring.AverageLag(detected, tl.known, tl.lag),
		},
		Duration:  dur,
		CaseCount: tl.log.CaseCount(),
	}
}

// notApplicable wraps a detector refusal into the skip sentinel.
func notApplicable(err error) ([]results.Row, error) {
	return nil, fmt.Errorf("%w: %v", tasks.ErrNotApplicable, err)
}

// skippable reports whether the detector error means the log simply does
// not fit the requested windows.
func skippable(err error) bool {
	return errors.Is(err, detect.ErrLogTooShort)
}

// intermediate writes the family's per-task artifact. Failures are
// returned to the caller; the runners treat them as task faults because a
// half-written artifact tree is worse than an aborted run.
func (s *Suite) intermediate(family, name string, rows []results.Row) error {
	return results.WriteIntermediate(s.IntermediateRoot, family, name, rows)
}
