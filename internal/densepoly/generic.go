// Package densepoly holds the dense univariate polynomial representations
// used by the kernel's polynomial dispatch: IntPoly over int64 with checked
// arithmetic, and RatPoly over math/big rationals.
//
// Coefficients are stored low degree first, so p[i] is the coefficient of
// x^i. Every operation returns a fresh, trimmed value and never aliases its
// inputs. The zero polynomial is the empty slice and has degree -1.
package densepoly

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

var (
	// ErrOverflow reports an IntPoly computation that left int64. Callers
	// redo the work on RatPoly.
	ErrOverflow = errors.New("densepoly: int64 coefficient overflow")
	// ErrInexact reports an IntPoly division whose quotient is not integral.
	ErrInexact = errors.New("densepoly: quotient has non-integer coefficients")
	// ErrZeroDivisor reports division by the zero polynomial.
	ErrZeroDivisor = errors.New("densepoly: division by zero polynomial")
	// ErrUnsupported reports a denominator the partial fraction routine
	// cannot split over the rationals.
	ErrUnsupported = errors.New("densepoly: denominator does not split")
)

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func gcd[T constraints.Integer](a, b T) T {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// trimmed returns the length of cs once trailing zeros are dropped.
func trimmed[T any](cs []T, isZero func(T) bool) int {
	n := len(cs)
	for n > 0 && isZero(cs[n-1]) {
		n--
	}
	return n
}

func maxLen[T any](a, b []T) int {
	if len(a) > len(b) {
		return len(a)
	}
	return len(b)
}
