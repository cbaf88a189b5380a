package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// CeilToMultiple rounds v up to the next multiple of n. n must be a power of two.
func CeilToMultiple[T constraints.Unsigned](v, n T) T {
	return (v + n - 1) &^ (n - 1)
}

// DivCeil returns ceil(v / n).
func DivCeil[T constraints.Unsigned](v, n T) T {
	return (v + n - 1) / n
}

// Lerp interpolates between a and b by t.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// Abs returns the absolute value of v.
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
