// File: internal/normalize/normalizer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unified index normalization for transmit priorities and queue levels.
//
// Out-of-range input is clamped, never rejected: a priority above the
// lowest-precedence level is served at that level. Callers receive a flag so
// clamps can be counted or logged off the hot path.
//
// Example usage:
//
//	prio, clamped := normalize.Priority(b.Priority)
//	levels, _ := normalize.Levels(requested)

package normalize

// MaxLevels is the number of strict-priority levels a scheduler supports.
const MaxLevels = 32

// MaxPriority is the lowest-precedence priority value (0 is highest).
const MaxPriority = MaxLevels - 1

// Priority clamps p into [0, MaxPriority].
func Priority(p uint32) (uint32, bool) {
	if p > MaxPriority {
		return MaxPriority, true
	}
	return p, false
}

// Levels clamps a requested level count into [1, MaxLevels].
func Levels(n int) (int, bool) {
	switch {
	case n > MaxLevels:
		return MaxLevels, true
	case n < 1:
		return 1, true
	default:
		return n, false
	}
}

// Count clamps a requested buffer count to [0, limit]. A negative limit
// means unbounded.
func Count(n, limit int) (int, bool) {
	if n < 0 {
		return 0, true
	}
	if limit >= 0 && n > limit {
		return limit, true
	}
	return n, false
}
