package domain

import "math"

// Unknown is the result of every calculation that has no defined value:
// a non-positive denominator, negative financial inputs, an empty
// aggregate or an operand that was already unknown. It is IEEE NaN, so it
// propagates through further arithmetic on its own. Callers decide how to
// present it; it never signals a parsing or lookup failure.
func Unknown() float64 {
	return math.NaN()
}

// IsUnknown reports whether v is the Unknown sentinel.
func IsUnknown(v float64) bool {
	return math.IsNaN(v)
}
