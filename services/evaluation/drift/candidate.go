// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package drift merges change-point candidates produced by several window
// sizes of the same detector into one deduplicated, support-ranked list.
//
// A change point at index i means "the process changed between case i and
// case i+1". Candidates found by large windows are coarse but reliable;
// candidates found by small windows localize well but are noisy. The
// aggregator collapses fine-grained noise onto coarse anchors and then
// drops anchors that too few window sizes agree on.
package drift

import "sort"

// Candidate is one change-point observation, created per (location, window
// size) pair and mutated only by merging during aggregation.
type Candidate struct {
	// Location is the zero-based case index of the change point.
	Location int

	// WindowSize is the window size of the detector run that produced
	// this candidate (after merging: of the surviving record).
	WindowSize int

	// Support counts how many raw observations were merged into this
	// record, including itself. Always >= 1.
	Support int

	// SupportingWindows is the set of window sizes that contributed.
	SupportingWindows map[int]struct{}
}

// newCandidate builds the initial single-observation record.
func newCandidate(location, windowSize int) Candidate {
	return Candidate{
		Location:          location,
		WindowSize:        windowSize,
		Support:           1,
		SupportingWindows: map[int]struct{}{windowSize: {}},
	}
}

// WindowSizes returns the supporting window sizes in ascending order.
// Useful for stable rendering in logs and result rows.
func (c Candidate) WindowSizes() []int {
	sizes := make([]int, 0, len(c.SupportingWindows))
	for ws := range c.SupportingWindows {
		sizes = append(sizes, ws)
	}
	sort.Ints(sizes)
	return sizes
}
