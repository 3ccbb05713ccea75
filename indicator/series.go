package indicator

import "golang.org/x/exp/constraints"

// Series is a thin ordered-value helper used for crossover detection.
type Series[T constraints.Ordered] []T

// Last returns the value `position` slots from the end (0 = most recent).
func (s Series[T]) Last(position int) T {
	if position < 0 || position >= len(s) {
		var zero T
		return zero
	}
	return s[len(s)-1-position]
}

// CrossedAbove reports whether s crossed above other between the previous
// and current sample.
func CrossedAbove[T constraints.Ordered](s, other Series[T]) bool {
	if len(s) < 2 || len(other) < 2 {
		return false
	}
	prevS, curS := s.Last(1), s.Last(0)
	prevO, curO := other.Last(1), other.Last(0)
	return prevS <= prevO && curS > curO
}

// CrossedBelow reports whether s crossed below other between the previous
// and current sample.
func CrossedBelow[T constraints.Ordered](s, other Series[T]) bool {
	if len(s) < 2 || len(other) < 2 {
		return false
	}
	prevS, curS := s.Last(1), s.Last(0)
	prevO, curO := other.Last(1), other.Last(0)
	return prevS >= prevO && curS < curO
}
