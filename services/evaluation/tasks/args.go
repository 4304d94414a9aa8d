// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tasks

import (
	"fmt"
	"sort"
	"strings"
)

// Args is the merged parameter/metadata mapping of one task. Values come
// from YAML parameter grids (ints, floats, strings, lists) and from the
// builder's dataset metadata. Accessors normalize the loose YAML types so
// task functions fail with a descriptive error instead of a type panic.
type Args map[string]any

// Clone returns a shallow copy. The builder clones before merging so
// tasks never share a mutable mapping.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Has reports whether the key is present.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Int returns an integer argument. YAML decodes small integers as int and
// large ones as int64; both are accepted.
func (a Args) Int(key string) (int, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingArg, key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q is %T, want int", ErrBadArgType, key, v)
}

// Float returns a float argument, accepting integer YAML values too.
func (a Args) Float(key string) (float64, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrMissingArg, key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%w: %q is %T, want float", ErrBadArgType, key, v)
}

// String returns a string argument.
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingArg, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrBadArgType, key, v)
	}
	return s, nil
}

// Bool returns a boolean argument, defaulting to fallback when absent.
func (a Args) Bool(key string, fallback bool) (bool, error) {
	v, ok := a[key]
	if !ok {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q is %T, want bool", ErrBadArgType, key, v)
	}
	return b, nil
}

// Ints returns an integer-list argument ([]int, []int64, or []any of
// integers, as produced by YAML lists).
func (a Args) Ints(key string) ([]int, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingArg, key)
	}
	switch list := v.(type) {
	case []int:
		return list, nil
	case []any:
		out := make([]int, 0, len(list))
		for _, item := range list {
			switch n := item.(type) {
			case int:
				out = append(out, n)
			case int64:
				out = append(out, int(n))
			default:
				return nil, fmt.Errorf("%w: %q element is %T, want int", ErrBadArgType, key, item)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q is %T, want []int", ErrBadArgType, key, v)
}

// Floats returns a float-list argument.
func (a Args) Floats(key string) ([]float64, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingArg, key)
	}
	switch list := v.(type) {
	case []float64:
		return list, nil
	case []any:
		out := make([]float64, 0, len(list))
		for _, item := range list {
			switch n := item.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			case int64:
				out = append(out, float64(n))
			default:
				return nil, fmt.Errorf("%w: %q element is %T, want float", ErrBadArgType, key, item)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q is %T, want []float64", ErrBadArgType, key, v)
}

// IntPair returns a two-element integer list, used for (min, max)
// adaptive-window bounds and (complete, detection) window pairs.
func (a Args) IntPair(key string) (int, int, error) {
	pair, err := a.Ints(key)
	if err != nil {
		return 0, 0, err
	}
	if len(pair) != 2 {
		return 0, 0, fmt.Errorf("%w: %q has %d elements, want 2", ErrBadArgType, key, len(pair))
	}
	return pair[0], pair[1], nil
}

// label renders a short, sorted key list for task logging.
func (a Args) label() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
