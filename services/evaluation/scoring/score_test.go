// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestF1PerfectDetection(t *testing.T) {
	f1 := F1([]int{999, 1999}, []int{999, 1999}, 200)
	assert.InDelta(t, 1.0, f1, 1e-9)
}

func TestF1WithinLag(t *testing.T) {
	f1 := F1([]int{1050, 1980}, []int{999, 1999}, 200)
	assert.InDelta(t, 1.0, f1, 1e-9)
}

func TestF1FalsePositivesLowerPrecision(t *testing.T) {
	// Two matches out of four detections against two labels:
	// precision 0.5, recall 1.0, F1 = 2/3.
	f1 := F1([]int{100, 999, 1500, 1999}, []int{999, 1999}, 50)
	assert.InDelta(t, 2.0/3.0, f1, 1e-9)
}

func TestF1ZeroDivisionIsNaN(t *testing.T) {
	assert.True(t, math.IsNaN(F1(nil, []int{999}, 200)))
	assert.True(t, math.IsNaN(F1([]int{999}, nil, 200)))
	assert.True(t, math.IsNaN(F1([]int{5000}, []int{999}, 200)), "no match within lag")
}

// TestScoringOrderIndependent verifies the scorer contract relied on by
// the aggregator: input order must not change the score.
func TestScoringOrderIndependent(t *testing.T) {
	known := []int{999, 1999, 2999}
	ordered := []int{1010, 1985, 3050}
	shuffled := []int{3050, 1010, 1985}

	assert.Equal(t, F1(ordered, known, 200), F1(shuffled, known, 200))
	assert.Equal(t, AverageLag(ordered, known, 200), AverageLag(shuffled, known, 200))
}

func TestAverageLag(t *testing.T) {
	// Distances 11 and 14.
	avg := AverageLag([]int{1010, 1985}, []int{999, 1999}, 200)
	assert.InDelta(t, 12.5, avg, 1e-9)
}

func TestAverageLagNoMatches(t *testing.T) {
	assert.True(t, math.IsNaN(AverageLag([]int{1}, []int{5000}, 10)))
}

// TestMatchEachKnownOnce ensures one labeled point cannot absorb several
// detections.
func TestMatchEachKnownOnce(t *testing.T) {
	// Both detections sit near the single label; only one may match.
	f1 := F1([]int{990, 1005}, []int{999}, 50)
	// precision 0.5, recall 1.0 -> F1 = 2/3.
	assert.InDelta(t, 2.0/3.0, f1, 1e-9)
}
