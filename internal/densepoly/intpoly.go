package densepoly

import (
	"math"
	"math/big"
)

// IntPoly is a polynomial with int64 coefficients.
type IntPoly []int64

func isZeroInt(c int64) bool { return c == 0 }

// Trim drops trailing zero coefficients.
func (p IntPoly) Trim() IntPoly {
	n := trimmed(p, isZeroInt)
	out := make(IntPoly, n)
	copy(out, p[:n])
	return out
}

// Degree returns the degree of p, or -1 for the zero polynomial.
func (p IntPoly) Degree() int { return trimmed(p, isZeroInt) - 1 }

// Lead returns the leading coefficient (0 for the zero polynomial).
func (p IntPoly) Lead() int64 {
	d := p.Degree()
	if d < 0 {
		return 0
	}
	return p[d]
}

// Rat converts p to a RatPoly.
func (p IntPoly) Rat() RatPoly {
	out := make(RatPoly, len(p))
	for i, c := range p {
		out[i] = new(big.Rat).SetInt64(c)
	}
	return out.Trim()
}

// Content returns the positive gcd of the coefficients (0 for the zero
// polynomial).
func (p IntPoly) Content() int64 {
	var g int64
	for _, c := range p {
		if c == math.MinInt64 {
			return 1
		}
		g = gcd(g, abs(c))
	}
	return g
}

// Primitive divides p by its content and makes the leading coefficient
// positive.
func (p IntPoly) Primitive() IntPoly {
	p = p.Trim()
	g := p.Content()
	if g == 0 {
		return p
	}
	if p.Lead() < 0 {
		g = -g
	}
	out := make(IntPoly, len(p))
	for i, c := range p {
		out[i] = c / g
	}
	return out
}

func addInt(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

func mulInt(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrOverflow
	}
	return p, nil
}

// AddInt returns a+b.
func AddInt(a, b IntPoly) (IntPoly, error) {
	out := make(IntPoly, maxLen(a, b))
	for i := range out {
		var x, y int64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		s, err := addInt(x, y)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out.Trim(), nil
}

// ScaleInt returns k*p.
func ScaleInt(p IntPoly, k int64) (IntPoly, error) {
	out := make(IntPoly, len(p))
	for i, c := range p {
		v, err := mulInt(c, k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out.Trim(), nil
}

// SubInt returns a-b.
func SubInt(a, b IntPoly) (IntPoly, error) {
	nb, err := ScaleInt(b, -1)
	if err != nil {
		return nil, err
	}
	return AddInt(a, nb)
}

// MulInt returns a*b.
func MulInt(a, b IntPoly) (IntPoly, error) {
	a, b = a.Trim(), b.Trim()
	if len(a) == 0 || len(b) == 0 {
		return IntPoly{}, nil
	}
	out := make(IntPoly, len(a)+len(b)-1)
	for i, x := range a {
		if x == 0 {
			continue
		}
		for j, y := range b {
			p, err := mulInt(x, y)
			if err != nil {
				return nil, err
			}
			if out[i+j], err = addInt(out[i+j], p); err != nil {
				return nil, err
			}
		}
	}
	return out.Trim(), nil
}

// DivModInt divides a by b over the integers. When a leading coefficient
// does not divide evenly the division is not closed in Z[x] and ErrInexact
// is returned.
func DivModInt(a, b IntPoly) (q, r IntPoly, err error) {
	a, b = a.Trim(), b.Trim()
	db := b.Degree()
	if db < 0 {
		return nil, nil, ErrZeroDivisor
	}
	da := a.Degree()
	if da < db {
		return IntPoly{}, a, nil
	}
	lead := b[db]
	rem := make(IntPoly, len(a))
	copy(rem, a)
	quo := make(IntPoly, da-db+1)
	for k := da; k >= db; k-- {
		if rem[k] == 0 {
			continue
		}
		if rem[k]%lead != 0 {
			return nil, nil, ErrInexact
		}
		t := rem[k] / lead
		quo[k-db] = t
		for j := 0; j <= db; j++ {
			p, err := mulInt(t, b[j])
			if err != nil {
				return nil, nil, err
			}
			if rem[k-db+j], err = addInt(rem[k-db+j], -p); err != nil {
				return nil, nil, err
			}
		}
	}
	return quo.Trim(), rem.Trim(), nil
}

// pseudoRem returns lc(b)^(da-db+1) * a mod b, computed without division.
func pseudoRem(a, b IntPoly) (IntPoly, error) {
	db := b.Degree()
	lead := b[db]
	r := a.Trim()
	for r.Degree() >= db {
		dr := r.Degree()
		lr := r[dr]
		scaled, err := ScaleInt(r, lead)
		if err != nil {
			return nil, err
		}
		shift := make(IntPoly, dr-db+1)
		shift[dr-db] = lr
		sub, err := MulInt(shift, b)
		if err != nil {
			return nil, err
		}
		if r, err = SubInt(scaled, sub); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// GCDInt returns the primitive gcd of a and b with a positive leading
// coefficient, scaled by the gcd of the two contents. It uses the primitive
// remainder sequence, so intermediate coefficients stay small, but it can
// still overflow.
func GCDInt(a, b IntPoly) (IntPoly, error) {
	a, b = a.Trim(), b.Trim()
	if len(a) == 0 {
		return b.Primitive(), nil
	}
	if len(b) == 0 {
		return a.Primitive(), nil
	}
	c := gcd(a.Content(), b.Content())
	a, b = a.Primitive(), b.Primitive()
	if a.Degree() < b.Degree() {
		a, b = b, a
	}
	for b.Degree() >= 0 {
		r, err := pseudoRem(a, b)
		if err != nil {
			return nil, err
		}
		a, b = b, r.Primitive()
	}
	return ScaleInt(a.Primitive(), c)
}

// EvalInt evaluates p at x with Horner's rule.
func EvalInt(p IntPoly, x int64) (int64, error) {
	var acc int64
	for i := len(p) - 1; i >= 0; i-- {
		m, err := mulInt(acc, x)
		if err != nil {
			return 0, err
		}
		if acc, err = addInt(m, p[i]); err != nil {
			return 0, err
		}
	}
	return acc, nil
}
