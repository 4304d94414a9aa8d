// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package results accumulates heterogeneous result rows into one
// column-superset table and persists it incrementally as CSV.
package results

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Fixed column names shared by every algorithm family. Family-specific
// parameter columns come from Row.Params and differ across families.
const (
	ColAlgorithm      = "Algorithm"
	ColLogSource      = "Log Source"
	ColLog            = "Log"
	ColDetected       = "Detected Changepoints"
	ColKnown          = "Actual Changepoints for Log"
	ColDuration       = "Duration"
	ColDurationSecs   = "Duration (Seconds)"
	ColSecondsPerCase = "Seconds per Case"
)

// Row is one completed analysis result. Produced once per algorithm
// variant per task; immutable after construction.
type Row struct {
	// Algorithm is the variant's display name, e.g. "Bose J".
	Algorithm string

	// LogSource is the dataset group the log came from.
	LogSource string

	// Log is the dataset's display name.
	Log string

	// Params holds the family-specific parameter columns, keyed by
	// final column name (e.g. "Window Size").
	Params map[string]any

	// Detected are the change points the analysis reported, ascending.
	Detected []int

	// Known are the dataset's labeled change points.
	Known []int

	// Scores holds score columns by name; NaN renders as an empty cell.
	Scores map[string]float64

	// Duration is the analysis wall-clock time.
	Duration time.Duration

	// CaseCount is the dataset length, used for per-case normalization.
	CaseCount int
}

// Flatten renders the row into CSV cells keyed by column name.
//
// The duration appears three ways, matching the published results format:
// formatted HH:MM:SS, raw seconds, and seconds normalized per case.
func (r Row) Flatten() map[string]string {
	cells := map[string]string{
		ColAlgorithm:    r.Algorithm,
		ColLogSource:    r.LogSource,
		ColLog:          r.Log,
		ColDetected:     FormatIntList(r.Detected),
		ColKnown:        FormatIntList(r.Known),
		ColDuration:     FormatClock(r.Duration),
		ColDurationSecs: formatFloat(r.Duration.Seconds()),
	}
	if r.CaseCount > 0 {
		cells[ColSecondsPerCase] = formatFloat(r.Duration.Seconds() / float64(r.CaseCount))
	} else {
		cells[ColSecondsPerCase] = ""
	}
	for name, value := range r.Params {
		cells[name] = formatValue(value)
	}
	for name, score := range r.Scores {
		if math.IsNaN(score) {
			cells[name] = ""
			continue
		}
		cells[name] = formatFloat(score)
	}
	return cells
}

// FormatClock formats a duration as HH:MM:SS, flooring sub-second parts.
func FormatClock(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatIntList renders locations as a literal list, e.g. "[999, 1999]".
func FormatIntList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatFloat(t)
	case []int:
		// Multi-window size lists render space-separated.
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
