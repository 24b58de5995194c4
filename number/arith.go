package number

import (
	"fmt"
	"math"
	"math/big"

	"github.com/pkg/errors"
)

// ErrDivisionByZero is returned by Div, Pow and Frac for a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// ErrInexact is returned by Pow when a fractional exponent has no exact
// result in the tower. Callers keep the power symbolic.
var ErrInexact = errors.New("result is not exactly representable")

// OverflowError reports a float result that left the finite range, or an
// exact computation too large to attempt.
type OverflowError struct {
	Reason string
}

func (e *OverflowError) Error() string { return "numeric overflow: " + e.Reason }

func overflow(format string, args ...any) error {
	return errors.WithStack(&OverflowError{Reason: fmt.Sprintf(format, args...)})
}

func divisionByZero() error { return errors.WithStack(ErrDivisionByZero) }

// IsOverflow reports whether err carries an OverflowError.
func IsOverflow(err error) bool {
	var oe *OverflowError
	return errors.As(err, &oe)
}

func float(f float64) (Number, error) { return NewFloat(f) }

func bothFloat(a, b Number) (float64, float64, error) {
	fa, err := a.ToFloat64()
	if err != nil {
		return 0, 0, err
	}
	fb, err := b.ToFloat64()
	if err != nil {
		return 0, 0, err
	}
	return fa, fb, nil
}

func bothInteger(a, b Number) bool { return a.IsInteger() && b.IsInteger() }

// Add returns a+b.
func Add(a, b Number) (Number, error) {
	if a.IsFloat() || b.IsFloat() {
		fa, fb, err := bothFloat(a, b)
		if err != nil {
			return Zero, err
		}
		return float(fa + fb)
	}
	if a.ref == nil && b.ref == nil {
		if s, ok := addChecked(a.i, b.i); ok {
			return Int(s), nil
		}
	}
	if bothInteger(a, b) {
		x, _ := a.BigInt()
		y, _ := b.BigInt()
		return BigInt(x.Add(x, y)), nil
	}
	x, _ := a.BigRat()
	y, _ := b.BigRat()
	return Rat(x.Add(x, y)), nil
}

// Neg returns -a.
func Neg(a Number) Number {
	switch v := a.payload().(type) {
	case nil:
		if a.i == math.MinInt64 {
			return BigInt(new(big.Int).Neg(big.NewInt(a.i)))
		}
		return Int(-a.i)
	case *big.Int:
		return BigInt(new(big.Int).Neg(v))
	case *big.Rat:
		return Rat(new(big.Rat).Neg(v))
	default:
		f, _ := NewFloat(-a.float())
		return f
	}
}

// Abs returns |a|.
func Abs(a Number) Number {
	if a.IsNegative() {
		return Neg(a)
	}
	return a
}

// Sub returns a-b.
func Sub(a, b Number) (Number, error) { return Add(a, Neg(b)) }

// Mul returns a*b.
func Mul(a, b Number) (Number, error) {
	if a.IsFloat() || b.IsFloat() {
		fa, fb, err := bothFloat(a, b)
		if err != nil {
			return Zero, err
		}
		return float(fa * fb)
	}
	if a.ref == nil && b.ref == nil {
		if p, ok := mulChecked(a.i, b.i); ok {
			return Int(p), nil
		}
	}
	if bothInteger(a, b) {
		x, _ := a.BigInt()
		y, _ := b.BigInt()
		return BigInt(x.Mul(x, y)), nil
	}
	x, _ := a.BigRat()
	y, _ := b.BigRat()
	return Rat(x.Mul(x, y)), nil
}

// Div returns a/b. An inexact integer quotient becomes a Rational.
func Div(a, b Number) (Number, error) {
	if b.IsZero() {
		return Zero, divisionByZero()
	}
	if a.IsFloat() || b.IsFloat() {
		fa, fb, err := bothFloat(a, b)
		if err != nil {
			return Zero, err
		}
		return float(fa / fb)
	}
	if a.ref == nil && b.ref == nil && !(a.i == math.MinInt64 && b.i == -1) {
		if a.i%b.i == 0 {
			return Int(a.i / b.i), nil
		}
	}
	x, _ := a.BigRat()
	y, _ := b.BigRat()
	return Rat(x.Quo(x, y)), nil
}

// Inv returns 1/a.
func Inv(a Number) (Number, error) { return Div(One, a) }

// IntDivMod returns the floored quotient and remainder of two integers.
func IntDivMod(a, b Number) (q, r Number, err error) {
	if !bothInteger(a, b) {
		return Zero, Zero, errors.Errorf("number: IntDivMod on %s and %s", a.Kind(), b.Kind())
	}
	if b.IsZero() {
		return Zero, Zero, divisionByZero()
	}
	x, _ := a.BigInt()
	y, _ := b.BigInt()
	qq, rr := new(big.Int).DivMod(x, y, new(big.Int))
	return BigInt(qq), BigInt(rr), nil
}

// GCD returns the non-negative gcd of two integers.
func GCD(a, b Number) Number {
	x, okA := a.BigInt()
	y, okB := b.BigInt()
	if !okA || !okB {
		return One
	}
	x.Abs(x)
	y.Abs(y)
	return BigInt(new(big.Int).GCD(nil, nil, x, y))
}

// Floor returns the largest integer not above a.
func Floor(a Number) (Number, error) {
	switch a.Kind() {
	case Integer, BigInteger:
		return a, nil
	case Rational:
		r, _ := a.BigRat()
		q := new(big.Int).Div(r.Num(), r.Denom())
		return BigInt(q), nil
	}
	f := math.Floor(a.float())
	if math.Abs(f) < 1<<62 {
		return Int(int64(f)), nil
	}
	z, _ := new(big.Float).SetFloat64(f).Int(nil)
	return BigInt(z), nil
}

func addChecked(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return p, true
}
