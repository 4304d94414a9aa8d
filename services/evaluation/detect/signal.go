// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package detect holds the reference change-point detectors bundled with
// the benchmark. Each detector takes an event log and window parameters
// and returns candidate change-point case indices; a log shorter than the
// requested window configuration is refused with ErrLogTooShort rather
// than a fault.
package detect

import (
	"math"
	"strings"

	"github.com/AleutianAI/DriftBench/services/evaluation/eventlog"
)

// JMeasure maps each case to the mean information content of its
// direct-follows pairs under the log-global pair distribution. Cases with
// unusual successions score high; a sustained shift in the signal marks a
// control-flow change.
func JMeasure(log *eventlog.Log) []float64 {
	pairCounts := make(map[[2]string]int)
	total := 0
	for _, c := range log.Cases {
		for i := 1; i < len(c.Activities); i++ {
			pairCounts[[2]string{c.Activities[i-1], c.Activities[i]}]++
			total++
		}
	}

	signal := make([]float64, len(log.Cases))
	if total == 0 {
		return signal
	}
	for idx, c := range log.Cases {
		sum, n := 0.0, 0
		for i := 1; i < len(c.Activities); i++ {
			p := float64(pairCounts[[2]string{c.Activities[i-1], c.Activities[i]}]) / float64(total)
			sum += -math.Log2(p)
			n++
		}
		if n > 0 {
			signal[idx] = sum / float64(n)
		}
	}
	return signal
}

// WindowCount maps each case to its distinct-activity count, a cheap
// surrogate for behavioral variety.
func WindowCount(log *eventlog.Log) []float64 {
	signal := make([]float64, len(log.Cases))
	for idx, c := range log.Cases {
		seen := make(map[string]struct{}, len(c.Activities))
		for _, a := range c.Activities {
			seen[a] = struct{}{}
		}
		signal[idx] = float64(len(seen))
	}
	return signal
}

// RunLengths maps each case to the length of the run of identical traces
// ending at it. Long runs indicate stable behavior; runs collapsing to 1
// indicate churn.
func RunLengths(log *eventlog.Log) []float64 {
	signal := make([]float64, len(log.Cases))
	prevKey := ""
	run := 0
	for idx, c := range log.Cases {
		key := strings.Join(c.Activities, "\x1f")
		if idx > 0 && key == prevKey {
			run++
		} else {
			run = 1
		}
		prevKey = key
		signal[idx] = float64(run)
	}
	return signal
}

// activityFrequencies returns the normalized activity histogram over
// cases[start:end).
func activityFrequencies(cases []eventlog.Case, start, end int) map[string]float64 {
	counts := make(map[string]float64)
	total := 0.0
	for _, c := range cases[start:end] {
		for _, a := range c.Activities {
			counts[a]++
			total++
		}
	}
	if total == 0 {
		return counts
	}
	for a := range counts {
		counts[a] /= total
	}
	return counts
}

// totalVariation is half the L1 distance between two histograms, the
// earth mover's distance for unordered categories.
func totalVariation(p, q map[string]float64) float64 {
	sum := 0.0
	for a, pv := range p {
		qv := q[a]
		sum += math.Abs(pv - qv)
	}
	for a, qv := range q {
		if _, ok := p[a]; !ok {
			sum += qv
		}
	}
	return sum / 2
}

func meanStddev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		stddev += (v - mean) * (v - mean)
	}
	stddev = math.Sqrt(stddev / float64(len(values)))
	return mean, stddev
}
