// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datasets resolves the configured dataset sources into labeled
// event-log entries: fixed files, directory scans, and gold-standard CSV
// catalogs.
package datasets

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/AleutianAI/DriftBench/services/evaluation/eventlog"
	"github.com/AleutianAI/DriftBench/services/evaluation/tasks"
)

// Source is one dataset source from the benchmark configuration.
// Exactly one of Path, Dir, or GoldStandard should be set.
type Source struct {
	// Path points at a single event log; ChangePoints labels it.
	Path string

	// Dir points at a directory whose .xes / .xes.gz files all share
	// the same ChangePoints labels.
	Dir string

	// GoldStandard points at a CSV catalog with log_name and
	// change_point columns; logs are resolved relative to the CSV's
	// directory.
	GoldStandard string

	// ChangePoints labels Path or Dir entries.
	ChangePoints []int
}

// Resolve expands sources into concrete labeled datasets.
//
// Description:
//
//	Directory entries are sorted by name for reproducible task
//	expansion. Malformed gold-standard change-point entries degrade to
//	an empty label list with a warning; they never fail the batch.
//
// Outputs:
//   - []tasks.Dataset: resolved entries, in source order.
//   - error: non-nil when a source cannot be read at all.
func Resolve(sources []Source) ([]tasks.Dataset, error) {
	out := make([]tasks.Dataset, 0)
	for _, src := range sources {
		switch {
		case src.Path != "":
			out = append(out, datasetFor(src.Path, src.ChangePoints))
		case src.Dir != "":
			entries, err := scanDir(src.Dir, src.ChangePoints)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
		case src.GoldStandard != "":
			entries, err := FromGoldStandard(src.GoldStandard)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
		default:
			return nil, fmt.Errorf("dataset source has no path, dir, or gold standard")
		}
	}
	return out, nil
}

func datasetFor(path string, changePoints []int) tasks.Dataset {
	return tasks.Dataset{
		LogPath:      path,
		Name:         eventlog.BaseName(path),
		Group:        filepath.Base(filepath.Dir(path)),
		ChangePoints: changePoints,
	}
}

func scanDir(dir string, changePoints []int) ([]tasks.Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan dataset dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".xes") || strings.HasSuffix(name, ".xes.gz") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]tasks.Dataset, 0, len(names))
	for _, name := range names {
		out = append(out, datasetFor(filepath.Join(dir, name), changePoints))
	}
	return out, nil
}

// FromGoldStandard reads a CSV catalog of logs and their labeled change
// points.
//
// Description:
//
//	The catalog must have log_name and change_point columns; the
//	change_point cell is a literal list such as "[999, 1999]". An
//	unparseable cell yields an empty label list for that log with a
//	warning, matching the recovery policy for malformed ground truth.
func FromGoldStandard(csvPath string) ([]tasks.Dataset, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open gold standard: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read gold standard: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("gold standard %s is empty", csvPath)
	}

	nameCol, cpCol := -1, -1
	for i, col := range records[0] {
		switch strings.TrimSpace(col) {
		case "log_name":
			nameCol = i
		case "change_point":
			cpCol = i
		}
	}
	if nameCol < 0 || cpCol < 0 {
		return nil, fmt.Errorf("gold standard %s lacks log_name/change_point columns", csvPath)
	}

	root := filepath.Dir(csvPath)
	out := make([]tasks.Dataset, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) <= nameCol || len(record) <= cpCol {
			continue
		}
		logName := strings.TrimSpace(record[nameCol])
		changePoints, err := ParseIntList(record[cpCol])
		if err != nil {
			slog.Warn("malformed gold-standard change points, using empty list",
				slog.String("log", logName),
				slog.String("value", record[cpCol]),
			)
			changePoints = []int{}
		}
		out = append(out, datasetFor(filepath.Join(root, logName), changePoints))
	}
	return out, nil
}

// ParseIntList parses a literal integer list such as "[999, 1999]".
// An empty list "[]" is valid.
func ParseIntList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a literal list: %q", s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return []int{}, nil
	}

	parts := strings.Split(body, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad list element %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}
