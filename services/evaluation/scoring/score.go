// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scoring measures agreement between detected and labeled change
// points. A detected point matches a labeled one when their distance is
// within a lag tolerance; each labeled point is matched at most once.
package scoring

import (
	"math"
	"sort"
)

// Score column names reported by the task runners.
const (
	ColF1         = "F1-Score"
	ColAverageLag = "Average Lag"
)

// match pairs detected and known change points within the lag tolerance.
//
// Pairs are formed closest-first across the whole input (global greedy),
// each index used at most once. The result does not depend on the order
// of either input list.
func match(detected, known []int, lag int) (pairs int, totalLag int) {
	type pairing struct {
		dist, d, k int
	}
	candidates := make([]pairing, 0)
	for di, d := range detected {
		for ki, k := range known {
			dist := d - k
			if dist < 0 {
				dist = -dist
			}
			if dist <= lag {
				candidates = append(candidates, pairing{dist: dist, d: di, k: ki})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		if candidates[i].k != candidates[j].k {
			return candidates[i].k < candidates[j].k
		}
		return candidates[i].d < candidates[j].d
	})

	usedDetected := make(map[int]bool, len(detected))
	usedKnown := make(map[int]bool, len(known))
	for _, c := range candidates {
		if usedDetected[c.d] || usedKnown[c.k] {
			continue
		}
		usedDetected[c.d] = true
		usedKnown[c.k] = true
		pairs++
		totalLag += c.dist
	}
	return pairs, totalLag
}

// F1 computes the F1 score of detected against known change points.
//
// Outputs:
//   - float64: harmonic mean of precision and recall; NaN when either
//     list is empty (zero division) or when no pair matched.
func F1(detected, known []int, lag int) float64 {
	if len(detected) == 0 || len(known) == 0 {
		return math.NaN()
	}
	pairs, _ := match(detected, known, lag)
	if pairs == 0 {
		return math.NaN()
	}
	precision := float64(pairs) / float64(len(detected))
	recall := float64(pairs) / float64(len(known))
	return 2 * precision * recall / (precision + recall)
}

// AverageLag computes the mean distance of matched pairs.
//
// Outputs:
//   - float64: mean absolute distance between each matched detected and
//     known point; NaN when nothing matched.
func AverageLag(detected, known []int, lag int) float64 {
	pairs, totalLag := match(detected, known, lag)
	if pairs == 0 {
		return math.NaN()
	}
	return float64(totalLag) / float64(pairs)
}
