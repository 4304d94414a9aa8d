// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package detect

import (
	"errors"
	"math"
	"sort"

	"github.com/AleutianAI/DriftBench/services/evaluation/eventlog"
)

// ErrLogTooShort indicates the log cannot fill the requested window
// configuration. Callers should skip the task instead of recording a
// failure.
var ErrLogTooShort = errors.New("log too short for requested windows")

// ksStatistic computes the two-sample Kolmogorov-Smirnov statistic, the
// maximum distance between the two empirical CDFs.
func ksStatistic(a, b []float64) float64 {
	as := append([]float64(nil), a...)
	bs := append([]float64(nil), b...)
	sort.Float64s(as)
	sort.Float64s(bs)

	d, i, j := 0.0, 0, 0
	for i < len(as) && j < len(bs) {
		// Consume ties on both sides together so equal values never
		// contribute a spurious CDF gap.
		v := as[i]
		if bs[j] < v {
			v = bs[j]
		}
		for i < len(as) && as[i] == v {
			i++
		}
		for j < len(bs) && bs[j] == v {
			j++
		}
		diff := math.Abs(float64(i)/float64(len(as)) - float64(j)/float64(len(bs)))
		if diff > d {
			d = diff
		}
	}
	return d
}

// ksPValue is the asymptotic two-sided p-value for statistic d with
// sample sizes n and m (Kolmogorov distribution tail sum).
func ksPValue(d float64, n, m int) float64 {
	if d <= 0 {
		return 1
	}
	en := math.Sqrt(float64(n) * float64(m) / float64(n+m))
	lambda := (en + 0.12 + 0.11/en) * d
	sum := 0.0
	for k := 1; k <= 100; k++ {
		term := 2 * math.Pow(-1, float64(k-1)) * math.Exp(-2*lambda*lambda*float64(k)*float64(k))
		sum += term
		if math.Abs(term) < 1e-10 {
			break
		}
	}
	return math.Min(1, math.Max(0, sum))
}

// KSChangePoints slides two adjacent fixed-size windows over the signal
// and reports boundary positions where the Kolmogorov-Smirnov test
// rejects at the given p-value. Consecutive detections closer than one
// window are collapsed into the first.
func KSChangePoints(signal []float64, window, step int, pvalue float64) ([]int, error) {
	if window <= 0 || step <= 0 {
		return nil, errors.New("window and step must be positive")
	}
	if len(signal) < 2*window {
		return nil, ErrLogTooShort
	}

	cps := []int{}
	last := -window
	for i := window; i+window <= len(signal); i += step {
		d := ksStatistic(signal[i-window:i], signal[i:i+window])
		if ksPValue(d, window, window) < pvalue && i-last >= window {
			cps = append(cps, i)
			last = i
		}
	}
	return cps, nil
}

// AdaptiveKSChangePoints behaves like KSChangePoints with a window that
// grows with the available data on both sides of each boundary, between
// minWindow and maxWindow. Larger windows raise test power deep inside
// the log while the edges still get covered at minWindow.
func AdaptiveKSChangePoints(signal []float64, minWindow, maxWindow, step int, pvalue float64) ([]int, error) {
	if minWindow <= 0 || step <= 0 || maxWindow < minWindow {
		return nil, errors.New("invalid adaptive window configuration")
	}
	if len(signal) <= minWindow || len(signal) < 2*minWindow {
		return nil, ErrLogTooShort
	}

	cps := []int{}
	last := -minWindow
	for i := minWindow; i+minWindow <= len(signal); i += step {
		w := maxWindow
		if i < w {
			w = i
		}
		if len(signal)-i < w {
			w = len(signal) - i
		}
		d := ksStatistic(signal[i-w:i], signal[i:i+w])
		if ksPValue(d, w, w) < pvalue && i-last >= minWindow {
			cps = append(cps, i)
			last = i
		}
	}
	return cps, nil
}

// EarthMoverChangePoints computes the earth mover's distance between the
// activity histograms of two adjacent case windows and reports positions
// where the distance series peaks above mean + 2*stddev. Peaks closer
// than one window are collapsed into the highest.
func EarthMoverChangePoints(log *eventlog.Log, window, step int) ([]int, error) {
	if window <= 0 || step <= 0 {
		return nil, errors.New("window and step must be positive")
	}
	n := log.CaseCount()
	if n < 2*window {
		return nil, ErrLogTooShort
	}

	positions := []int{}
	series := []float64{}
	for i := window; i+window <= n; i += step {
		left := activityFrequencies(log.Cases, i-window, i)
		right := activityFrequencies(log.Cases, i, i+window)
		positions = append(positions, i)
		series = append(series, totalVariation(left, right))
	}

	mean, stddev := meanStddev(series)
	threshold := mean + 2*stddev

	cps := []int{}
	for k, v := range series {
		if v <= threshold {
			continue
		}
		// Keep only local maxima over one window of neighbors.
		peak := true
		for j := k - 1; j >= 0 && positions[k]-positions[j] < window; j-- {
			if series[j] >= v {
				peak = false
				break
			}
		}
		for j := k + 1; j < len(series) && positions[j]-positions[k] < window; j++ {
			if series[j] > v {
				peak = false
				break
			}
		}
		if peak {
			cps = append(cps, positions[k])
		}
	}
	return cps, nil
}

// ZhengCandidates flags case indices where the local activity
// distribution shifts abruptly. mrid (minimum relative inter-drift
// distance) sets the comparison window to mrid/2; every index whose
// adjacent-window distance exceeds mean + stddev is a candidate. The
// caller clusters candidates afterward.
func ZhengCandidates(log *eventlog.Log, mrid int) []int {
	w := mrid / 2
	if w < 1 {
		w = 1
	}
	n := log.CaseCount()
	if n < 2*w {
		return []int{}
	}

	positions := []int{}
	series := []float64{}
	for i := w; i+w <= n; i++ {
		left := activityFrequencies(log.Cases, i-w, i)
		right := activityFrequencies(log.Cases, i, i+w)
		positions = append(positions, i)
		series = append(series, totalVariation(left, right))
	}

	mean, stddev := meanStddev(series)
	threshold := mean + stddev

	cands := []int{}
	for k, v := range series {
		if v > threshold {
			cands = append(cands, positions[k])
		}
	}
	return cands
}

// ClusterCandidates merges candidate indices lying within eps of each
// other (single linkage along the sorted line) and returns the rounded
// mean of each cluster, ascending.
func ClusterCandidates(cands []int, eps float64) []int {
	if len(cands) == 0 {
		return []int{}
	}
	sorted := append([]int(nil), cands...)
	sort.Ints(sorted)

	cps := []int{}
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && float64(sorted[i]-sorted[i-1]) <= eps {
			continue
		}
		sum := 0
		for _, v := range sorted[start:i] {
			sum += v
		}
		cps = append(cps, int(math.Round(float64(sum)/float64(i-start))))
		start = i
	}
	return cps
}

// LCDDChangePoints tracks the direct-follows relation of a complete
// window of reference behavior and slides a detection window across the
// rest of the log. A detection window containing successions absent from
// the reference starts a divergence streak; once the streak spans
// stablePeriod consecutive windows the streak's start is reported and
// the reference is rebuilt from the post-drift behavior.
func LCDDChangePoints(log *eventlog.Log, completeWindow, detectionWindow, stablePeriod int) ([]int, error) {
	if completeWindow <= 0 || detectionWindow <= 0 || stablePeriod <= 0 {
		return nil, errors.New("windows and stable period must be positive")
	}
	n := log.CaseCount()
	if n < completeWindow+detectionWindow {
		return nil, ErrLogTooShort
	}

	ref := directFollows(log.Cases[:completeWindow])
	cps := []int{}
	streakStart := -1
	streak := 0
	for i := completeWindow; i+detectionWindow <= n; i += detectionWindow {
		win := directFollows(log.Cases[i : i+detectionWindow])
		if divergesFrom(win, ref) {
			if streakStart < 0 {
				streakStart = i
			}
			streak++
			if streak >= stablePeriod {
				cps = append(cps, streakStart)
				end := i + detectionWindow
				if end+completeWindow > n {
					break
				}
				ref = directFollows(log.Cases[end : end+completeWindow])
				streakStart = -1
				streak = 0
			}
		} else {
			streakStart = -1
			streak = 0
		}
	}
	return cps, nil
}

func directFollows(cases []eventlog.Case) map[[2]string]struct{} {
	pairs := make(map[[2]string]struct{})
	for _, c := range cases {
		for i := 1; i < len(c.Activities); i++ {
			pairs[[2]string{c.Activities[i-1], c.Activities[i]}] = struct{}{}
		}
	}
	return pairs
}

func divergesFrom(window, reference map[[2]string]struct{}) bool {
	for p := range window {
		if _, ok := reference[p]; !ok {
			return true
		}
	}
	return false
}
