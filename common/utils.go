package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// CeilDiv returns the smallest integer q such that q*d >= n for non-negative n and positive d.
//
// Parameters:
//   - n: the dividend (must be >= 0)
//   - d: the divisor (must be > 0)
//
// Returns:
//   - int: ceil(n / d)
func CeilDiv(n, d int) int {
	return (n + d - 1) / d
}
