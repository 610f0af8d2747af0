// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package params

import (
	"fmt"
	"strings"
)

// enumName returns names[v] or a placeholder for out-of-range values.
func enumName[T ~uint8](kind string, names []string, v T) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

// parseEnum parses a case-insensitive enum name.
func parseEnum[T ~uint8](kind string, names []string, text string) (T, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	for i, n := range names {
		if n == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownEnum, kind, text)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
