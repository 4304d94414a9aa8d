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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAggregateEmptyInput verifies the empty-input law for both entry points.
func TestAggregateEmptyInput(t *testing.T) {
	agg := Aggregator{}

	assert.Empty(t, agg.Aggregate(map[int][]int{}))
	assert.Empty(t, agg.Deduplicate(map[int][]int{}))
	assert.Empty(t, agg.Aggregate(nil))
	assert.Empty(t, agg.Deduplicate(nil))
}

// TestAggregateMergeDirection verifies that the smaller-window candidate
// merges into the larger one, never the reverse.
func TestAggregateMergeDirection(t *testing.T) {
	agg := Aggregator{Alpha: 1.0}

	merged := agg.Aggregate(map[int][]int{
		10: {100},
		3:  {102},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, 100, merged[0].Location)
	assert.Equal(t, 2, merged[0].Support)
	assert.Equal(t, []int{3, 10}, merged[0].WindowSizes())
}

// TestAggregateOutsideRadius keeps far-apart candidates separate.
func TestAggregateOutsideRadius(t *testing.T) {
	agg := Aggregator{Alpha: 1.0}

	merged := agg.Aggregate(map[int][]int{
		10: {100},
		3:  {150},
	})

	require.Len(t, merged, 2)
	for _, c := range merged {
		assert.Equal(t, 1, c.Support)
	}
}

// TestAggregateSupportChains verifies that support accumulated by a record
// travels onward when that record itself merges into a finer one.
func TestAggregateSupportChains(t *testing.T) {
	agg := Aggregator{Alpha: 1.0}

	merged := agg.Aggregate(map[int][]int{
		20: {100},
		10: {105},
		5:  {107},
	})

	require.Len(t, merged, 1)
	assert.Equal(t, 107, merged[0].Location)
	assert.Equal(t, 3, merged[0].Support)
	assert.Equal(t, []int{5, 10, 20}, merged[0].WindowSizes())
}

// TestDeduplicateThresholdBoundary checks the keep/drop boundary around the
// support threshold.
func TestDeduplicateThresholdBoundary(t *testing.T) {
	byWindow := map[int][]int{
		20: {100},
		10: {103},
		5:  {101},
	}

	kept := Aggregator{Alpha: 1.0, MinSupportWindows: 3}.Deduplicate(byWindow)
	assert.Equal(t, []int{101}, kept)

	dropped := Aggregator{Alpha: 1.0, MinSupportWindows: 4}.Deduplicate(byWindow)
	assert.Empty(t, dropped)
}

// TestDeduplicateMonotoneInThreshold verifies that lowering the threshold
// never removes points and raising it never adds them back.
func TestDeduplicateMonotoneInThreshold(t *testing.T) {
	byWindow := map[int][]int{
		40: {50, 400},
		20: {55, 410, 800},
		10: {52, 790},
		5:  {54},
	}

	var previous []int
	for threshold := 5; threshold >= 1; threshold-- {
		current := Aggregator{Alpha: 1.0, MinSupportWindows: threshold}.Deduplicate(byWindow)
		for _, loc := range previous {
			assert.Contains(t, current, loc,
				"point lost when lowering threshold to %d", threshold)
		}
		previous = current
	}
}

// TestDeduplicateSingleWindowIdempotent verifies that a single-window result
// with threshold 1 passes through unchanged.
func TestDeduplicateSingleWindowIdempotent(t *testing.T) {
	locations := []int{10, 250, 999}
	agg := Aggregator{Alpha: 1.0, MinSupportWindows: 1}

	got := agg.Deduplicate(map[int][]int{100: locations})
	assert.Equal(t, locations, got)

	// Re-aggregating the output is a fixed point.
	again := agg.Deduplicate(map[int][]int{100: got})
	assert.Equal(t, got, again)
}

// TestDeduplicateSingleWindowNoCrossSupport drops everything when only one
// window size reported and the threshold requires agreement.
func TestDeduplicateSingleWindowNoCrossSupport(t *testing.T) {
	agg := Aggregator{Alpha: 1.0, MinSupportWindows: 2}
	assert.Empty(t, agg.Deduplicate(map[int][]int{30: {10, 20, 30}}))
}

// TestAggregateClosestWins verifies the nearest candidate absorbs the
// coarse record when several are in range.
func TestAggregateClosestWins(t *testing.T) {
	agg := Aggregator{Alpha: 1.0}

	merged := agg.Aggregate(map[int][]int{
		10: {100},
		3:  {93, 99},
	})

	require.Len(t, merged, 2)
	byLoc := map[int]Candidate{}
	for _, c := range merged {
		byLoc[c.Location] = c
	}
	require.Contains(t, byLoc, 99)
	require.Contains(t, byLoc, 93)
	assert.Equal(t, 2, byLoc[99].Support)
	assert.Equal(t, 1, byLoc[93].Support)
}

// TestAggregateDefaults exercises the zero-value parameter fallbacks.
func TestAggregateDefaults(t *testing.T) {
	agg := Aggregator{}
	assert.Equal(t, DefaultAlpha, agg.alpha())
	assert.Equal(t, DefaultMinSupportWindows, agg.minSupport())
}
