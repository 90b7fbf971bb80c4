// Package utils holds small helpers shared by the HTTP layer for reading
// query parameters. Nothing here knows about the domain.
package utils

import "strconv"

// AtoiDefault parses s as a base-10 int. Empty or malformed input (including
// surrounding whitespace and overflow) yields def.
//
//	utils.AtoiDefault("3", 5)  // 3
//	utils.AtoiDefault("", 5)   // 5
//	utils.AtoiDefault("x", 5)  // 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
