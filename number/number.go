// Package number implements the exact numeric tower used by the gocas kernel.
//
// A Number is one of four shapes:
//   - Integer: a signed 64-bit machine integer
//   - BigInteger: an arbitrary precision integer that does not fit in int64
//   - Rational: a reduced fraction with positive denominator that is not an integer
//   - Float: a finite IEEE-754 double
//
// Arithmetic never wraps. Integer operations that overflow are re-run on
// math/big and come back as BigInteger; exact results are always demoted to
// the smallest shape that can hold them.
package number

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the shape of a Number.
type Kind uint8

const (
	Integer Kind = iota
	BigInteger
	Rational
	Float
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case BigInteger:
		return "biginteger"
	case Rational:
		return "rational"
	case Float:
		return "float"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

type floatTag struct{}

// box holds a big shape. Exactly one of z and r is set, except for
// floatBox, which marks a Float and holds neither.
type box struct {
	z *big.Int
	r *big.Rat
}

var floatBox = new(box)

// Number is a value of the tower. The zero value is the Integer 0.
//
// The small shapes live inline: i holds the Integer value or the bits of the
// Float. The big shapes are boxed behind ref, which keeps the value at two
// machine words no matter the magnitude.
type Number struct {
	i   int64
	ref *box
}

// payload returns the boxed value as nil, *big.Int, *big.Rat or floatTag{}.
func (n Number) payload() any {
	switch {
	case n.ref == nil:
		return nil
	case n.ref == floatBox:
		return floatTag{}
	case n.ref.z != nil:
		return n.ref.z
	}
	return n.ref.r
}

var (
	Zero     = Number{}
	One      = Number{i: 1}
	MinusOne = Number{i: -1}
)

// Int returns the Integer n.
func Int(n int64) Number { return Number{i: n} }

// BigInt returns z as an Integer when it fits in int64 and as a BigInteger
// otherwise. z is copied.
func BigInt(z *big.Int) Number {
	if z.IsInt64() {
		return Number{i: z.Int64()}
	}
	return Number{ref: &box{z: new(big.Int).Set(z)}}
}

// Rat returns the canonical Number for r. r is copied.
func Rat(r *big.Rat) Number {
	if r.IsInt() {
		return BigInt(r.Num())
	}
	return Number{ref: &box{r: new(big.Rat).Set(r)}}
}

// Frac returns p/q reduced. It fails with ErrDivisionByZero when q is 0.
func Frac(p, q int64) (Number, error) {
	if q == 0 {
		return Zero, divisionByZero()
	}
	return Rat(new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))), nil
}

// MustFrac is Frac for callers that pass literal, non-zero denominators.
func MustFrac(p, q int64) Number {
	n, err := Frac(p, q)
	if err != nil {
		panic(err)
	}
	return n
}

// NewFloat returns f as a Float. Non-finite values are rejected.
func NewFloat(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero, overflow("non-finite float %v", f)
	}
	if f == 0 {
		f = 0 // drop the sign of -0
	}
	return Number{i: int64(math.Float64bits(f)), ref: floatBox}, nil
}

// Parse reads an integer ("12"), a fraction ("3/4") or a float ("1.5", "1e3").
func Parse(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsRune(s, '/') {
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return Zero, fmt.Errorf("number: invalid rational %q", s)
		}
		return Rat(r), nil
	}
	if z, ok := new(big.Int).SetString(s, 10); ok {
		return BigInt(z), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Zero, fmt.Errorf("number: invalid literal %q", s)
	}
	return NewFloat(f)
}

// Kind reports the shape of n.
func (n Number) Kind() Kind {
	switch n.payload().(type) {
	case nil:
		return Integer
	case *big.Int:
		return BigInteger
	case *big.Rat:
		return Rational
	default:
		return Float
	}
}

func (n Number) IsExact() bool   { return n.Kind() != Float }
func (n Number) IsInteger() bool { k := n.Kind(); return k == Integer || k == BigInteger }
func (n Number) IsFloat() bool   { return n.Kind() == Float }

func (n Number) float() float64 { return math.Float64frombits(uint64(n.i)) }

// Sign returns -1, 0 or +1.
func (n Number) Sign() int {
	switch v := n.payload().(type) {
	case nil:
		switch {
		case n.i < 0:
			return -1
		case n.i > 0:
			return 1
		}
		return 0
	case *big.Int:
		return v.Sign()
	case *big.Rat:
		return v.Sign()
	default:
		f := n.float()
		switch {
		case f < 0:
			return -1
		case f > 0:
			return 1
		}
		return 0
	}
}

func (n Number) IsZero() bool     { return n.Sign() == 0 }
func (n Number) IsNegative() bool { return n.Sign() < 0 }
func (n Number) IsPositive() bool { return n.Sign() > 0 }

// IsOne reports whether n equals 1 (a Float 1.0 counts).
func (n Number) IsOne() bool {
	switch n.Kind() {
	case Integer:
		return n.i == 1
	case Float:
		return n.float() == 1
	}
	return false
}

// IsMinusOne reports whether n equals -1.
func (n Number) IsMinusOne() bool {
	switch n.Kind() {
	case Integer:
		return n.i == -1
	case Float:
		return n.float() == -1
	}
	return false
}

// TryInt64 returns the value when n is an Integer.
func (n Number) TryInt64() (int64, bool) {
	if n.ref == nil {
		return n.i, true
	}
	return 0, false
}

// BigRat returns n as a fresh big.Rat. ok is false for Floats.
func (n Number) BigRat() (r *big.Rat, ok bool) {
	switch v := n.payload().(type) {
	case nil:
		return new(big.Rat).SetInt64(n.i), true
	case *big.Int:
		return new(big.Rat).SetInt(v), true
	case *big.Rat:
		return new(big.Rat).Set(v), true
	}
	return nil, false
}

// BigInt returns n as a fresh big.Int when n is integral.
func (n Number) BigInt() (*big.Int, bool) {
	switch v := n.payload().(type) {
	case nil:
		return big.NewInt(n.i), true
	case *big.Int:
		return new(big.Int).Set(v), true
	}
	return nil, false
}

// Num and Den return numerator and denominator of an exact number.
func (n Number) Num() *big.Int {
	if r, ok := n.BigRat(); ok {
		return new(big.Int).Set(r.Num())
	}
	return nil
}

func (n Number) Den() *big.Int {
	if r, ok := n.BigRat(); ok {
		return new(big.Int).Set(r.Denom())
	}
	return nil
}

// ToFloat64 converts n to the nearest float64. BigIntegers outside the float
// range fail with a NumericOverflow.
func (n Number) ToFloat64() (float64, error) {
	switch v := n.payload().(type) {
	case nil:
		return float64(n.i), nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(v).Float64()
		if math.IsInf(f, 0) {
			return 0, overflow("biginteger %s exceeds float range", v.String())
		}
		return f, nil
	case *big.Rat:
		f, _ := v.Float64()
		if math.IsInf(f, 0) {
			return 0, overflow("rational exceeds float range")
		}
		return f, nil
	default:
		return n.float(), nil
	}
}

// Cmp compares a and b numerically. Comparisons that involve a Float are done
// in float64.
func Cmp(a, b Number) int {
	if a.IsFloat() || b.IsFloat() {
		fa, errA := a.ToFloat64()
		fb, errB := b.ToFloat64()
		if errA != nil || errB != nil {
			// Only huge exact values fail to convert; their sign decides.
			return cmpInfinite(a, errA, b, errB)
		}
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	if a.ref == nil && b.ref == nil {
		switch {
		case a.i < b.i:
			return -1
		case a.i > b.i:
			return 1
		}
		return 0
	}
	ra, _ := a.BigRat()
	rb, _ := b.BigRat()
	return ra.Cmp(rb)
}

func cmpInfinite(a Number, errA error, b Number, errB error) int {
	sa, sb := 0, 0
	if errA != nil {
		sa = a.Sign()
	}
	if errB != nil {
		sb = b.Sign()
	}
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

// Identical reports whether a and b have the same shape and value. Unlike
// Cmp it distinguishes the Float 2.0 from the Integer 2.
func Identical(a, b Number) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	return Cmp(a, b) == 0
}

func (n Number) String() string {
	switch v := n.payload().(type) {
	case nil:
		return strconv.FormatInt(n.i, 10)
	case *big.Int:
		return v.String()
	case *big.Rat:
		return v.RatString()
	default:
		f := n.float()
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	}
}

// Hash returns a hash that agrees with Identical.
func (n Number) Hash() uint64 {
	const prime = 1099511628211
	h := uint64(14695981039346656037) ^ uint64(n.Kind())
	h *= prime
	switch v := n.payload().(type) {
	case nil:
		h ^= uint64(n.i)
		h *= prime
	case *big.Int:
		for _, w := range v.Bits() {
			h ^= uint64(w)
			h *= prime
		}
		if v.Sign() < 0 {
			h = ^h
		}
	case *big.Rat:
		for _, w := range v.Num().Bits() {
			h ^= uint64(w)
			h *= prime
		}
		for _, w := range v.Denom().Bits() {
			h ^= uint64(w)
			h *= prime
		}
		if v.Sign() < 0 {
			h = ^h
		}
	default:
		h ^= uint64(n.i)
		h *= prime
	}
	return h
}
