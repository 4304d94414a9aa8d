// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package drift

import "sort"

// Default aggregation parameters.
const (
	// DefaultAlpha is the proximity factor: a larger window of size W
	// absorbs smaller-window candidates within W*alpha cases.
	DefaultAlpha = 1.0

	// DefaultMinSupportWindows is the minimum number of merged
	// observations a change point needs to survive filtering.
	DefaultMinSupportWindows = 3
)

// Aggregator merges per-window-size candidate lists.
//
// Description:
//
//	Aggregate implements a support-weighted nearest merge. Records are
//	processed coarse-to-fine (window size descending, location ascending);
//	each record either merges into the closest strictly-smaller-window
//	candidate within its tolerance radius, or survives on its own. The
//	merge direction is a correctness invariant, not an optimization:
//	reversing it changes which records survive.
//
// Thread Safety: Aggregator is an immutable value; safe for concurrent use.
type Aggregator struct {
	// Alpha scales the merge tolerance radius. The radius for record a
	// is WindowSize(a) * Alpha. Zero means DefaultAlpha.
	Alpha float64

	// MinSupportWindows filters merged records: only records with
	// Support >= MinSupportWindows appear in Deduplicate output.
	// Zero means DefaultMinSupportWindows.
	MinSupportWindows int
}

func (a Aggregator) alpha() float64 {
	if a.Alpha <= 0 {
		return DefaultAlpha
	}
	return a.Alpha
}

func (a Aggregator) minSupport() int {
	if a.MinSupportWindows <= 0 {
		return DefaultMinSupportWindows
	}
	return a.MinSupportWindows
}

// Aggregate merges candidates across window sizes.
//
// Description:
//
//	Flattens the input into one record per (window size, location) pair,
//	sorts coarse-to-fine, and folds each record into the closest
//	smaller-window record within its tolerance radius. Support and the
//	supporting-window set accumulate along the merge chain, so a record
//	that absorbed coarse observations carries them onward if it later
//	merges into an even finer record. On an exact distance tie the
//	earliest record in sorted order wins; this is a deliberate,
//	documented tie-break (the upstream contract leaves it open).
//
// Inputs:
//   - byWindow: window size -> raw change-point locations. A missing
//     window size simply contributes no candidates; it is the detector's
//     job to refuse windows larger than the dataset.
//
// Outputs:
//   - []Candidate: surviving records with final Support and
//     SupportingWindows, in merge-survivor order. Empty input yields an
//     empty, non-nil slice.
func (a Aggregator) Aggregate(byWindow map[int][]int) []Candidate {
	records := make([]Candidate, 0)
	for ws, locations := range byWindow {
		for _, loc := range locations {
			records = append(records, newCandidate(loc, ws))
		}
	}

	// Coarse before fine; within one window size, left to right.
	sort.Slice(records, func(i, j int) bool {
		if records[i].WindowSize != records[j].WindowSize {
			return records[i].WindowSize > records[j].WindowSize
		}
		return records[i].Location < records[j].Location
	})

	merged := make([]Candidate, 0, len(records))
	tolerance := a.alpha()

	for i := range records {
		rec := &records[i]
		radius := float64(rec.WindowSize) * tolerance

		// Closest strictly-smaller-window record within the radius.
		// Strict < on the distance keeps the earliest candidate on ties.
		var closest *Candidate
		closestDist := 0
		for j := i + 1; j < len(records); j++ {
			other := &records[j]
			if other.WindowSize >= rec.WindowSize {
				continue
			}
			dist := rec.Location - other.Location
			if dist < 0 {
				dist = -dist
			}
			if float64(dist) > radius {
				continue
			}
			if closest == nil || dist < closestDist {
				closest = other
				closestDist = dist
			}
		}

		if closest != nil {
			closest.Support += rec.Support
			for ws := range rec.SupportingWindows {
				closest.SupportingWindows[ws] = struct{}{}
			}
			continue
		}
		merged = append(merged, *rec)
	}

	return merged
}

// Deduplicate aggregates and filters to a final change-point list.
//
// Description:
//
//	Runs Aggregate, drops records whose Support is below
//	MinSupportWindows, and returns the surviving locations in ascending
//	order. Downstream scorers must not depend on the order; ascending is
//	chosen only so result files are stable.
//
// Inputs:
//   - byWindow: window size -> raw change-point locations.
//
// Outputs:
//   - []int: filtered change-point locations. Empty input, or input
//     where no record reaches the support threshold, yields an empty
//     non-nil slice.
func (a Aggregator) Deduplicate(byWindow map[int][]int) []int {
	minSupport := a.minSupport()

	locations := make([]int, 0)
	for _, c := range a.Aggregate(byWindow) {
		if c.Support >= minSupport {
			locations = append(locations, c.Location)
		}
	}
	sort.Ints(locations)
	return locations
}
