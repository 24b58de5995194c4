package densepoly

import (
	"math/big"
)

// RatPoly is a polynomial with rational coefficients. Entries are never nil
// in values returned from this package.
type RatPoly []*big.Rat

func isZeroRat(c *big.Rat) bool { return c == nil || c.Sign() == 0 }

func ratOrZero(c *big.Rat) *big.Rat {
	if c == nil {
		return new(big.Rat)
	}
	return c
}

// Trim drops trailing zero coefficients and copies the rest.
func (p RatPoly) Trim() RatPoly {
	n := trimmed(p, isZeroRat)
	out := make(RatPoly, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Rat).Set(ratOrZero(p[i]))
	}
	return out
}

// Degree returns the degree of p, or -1 for the zero polynomial.
func (p RatPoly) Degree() int { return trimmed(p, isZeroRat) - 1 }

// Lead returns a copy of the leading coefficient.
func (p RatPoly) Lead() *big.Rat {
	d := p.Degree()
	if d < 0 {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p[d])
}

// Coeff returns a copy of the coefficient of x^i.
func (p RatPoly) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(p) {
		return new(big.Rat)
	}
	return new(big.Rat).Set(ratOrZero(p[i]))
}

// Int converts p back to an IntPoly when every coefficient is an integer that
// fits in int64.
func (p RatPoly) Int() (IntPoly, bool) {
	p = p.Trim()
	out := make(IntPoly, len(p))
	for i, c := range p {
		if !c.IsInt() || !c.Num().IsInt64() {
			return nil, false
		}
		out[i] = c.Num().Int64()
	}
	return out, true
}

// RatFromInts builds a RatPoly from int64 coefficients, low degree first.
func RatFromInts(cs ...int64) RatPoly { return IntPoly(cs).Rat() }

// Equal reports coefficient-wise equality.
func (p RatPoly) Equal(q RatPoly) bool {
	p, q = p.Trim(), q.Trim()
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i].Cmp(q[i]) != 0 {
			return false
		}
	}
	return true
}

// Add returns a+b.
func Add(a, b RatPoly) RatPoly {
	out := make(RatPoly, maxLen(a, b))
	for i := range out {
		s := new(big.Rat)
		if i < len(a) {
			s.Add(s, ratOrZero(a[i]))
		}
		if i < len(b) {
			s.Add(s, ratOrZero(b[i]))
		}
		out[i] = s
	}
	return out.Trim()
}

// Scale returns k*p.
func Scale(p RatPoly, k *big.Rat) RatPoly {
	out := make(RatPoly, len(p))
	for i, c := range p {
		out[i] = new(big.Rat).Mul(ratOrZero(c), k)
	}
	return out.Trim()
}

// Sub returns a-b.
func Sub(a, b RatPoly) RatPoly { return Add(a, Scale(b, big.NewRat(-1, 1))) }

// Mul returns a*b.
func Mul(a, b RatPoly) RatPoly {
	a, b = a.Trim(), b.Trim()
	if len(a) == 0 || len(b) == 0 {
		return RatPoly{}
	}
	out := make(RatPoly, len(a)+len(b)-1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	t := new(big.Rat)
	for i, x := range a {
		if x.Sign() == 0 {
			continue
		}
		for j, y := range b {
			out[i+j].Add(out[i+j], t.Mul(x, y))
		}
	}
	return out.Trim()
}

// Pow returns p^n for n >= 0.
func Pow(p RatPoly, n int) RatPoly {
	out := RatFromInts(1)
	base := p.Trim()
	for n > 0 {
		if n&1 == 1 {
			out = Mul(out, base)
		}
		n >>= 1
		if n > 0 {
			base = Mul(base, base)
		}
	}
	return out
}

// DivMod returns the quotient and remainder of a by b.
func DivMod(a, b RatPoly) (q, r RatPoly, err error) {
	a, b = a.Trim(), b.Trim()
	db := b.Degree()
	if db < 0 {
		return nil, nil, ErrZeroDivisor
	}
	da := a.Degree()
	if da < db {
		return RatPoly{}, a, nil
	}
	lead := b[db]
	rem := a.Trim()
	quo := make(RatPoly, da-db+1)
	for i := range quo {
		quo[i] = new(big.Rat)
	}
	p := new(big.Rat)
	for k := da; k >= db; k-- {
		if rem[k].Sign() == 0 {
			continue
		}
		t := new(big.Rat).Quo(rem[k], lead)
		quo[k-db] = t
		for j := 0; j <= db; j++ {
			rem[k-db+j].Sub(rem[k-db+j], p.Mul(t, b[j]))
		}
	}
	return quo.Trim(), rem.Trim(), nil
}

// Monic divides p by its leading coefficient.
func Monic(p RatPoly) RatPoly {
	p = p.Trim()
	if len(p) == 0 {
		return p
	}
	inv := new(big.Rat).Inv(p[len(p)-1])
	return Scale(p, inv)
}

// GCD returns the monic gcd of a and b. gcd(0, 0) is 0.
func GCD(a, b RatPoly) RatPoly {
	a, b = a.Trim(), b.Trim()
	for b.Degree() >= 0 {
		_, r, _ := DivMod(a, b)
		a, b = b, r
	}
	return Monic(a)
}

// Derivative returns dp/dx.
func Derivative(p RatPoly) RatPoly {
	p = p.Trim()
	if len(p) <= 1 {
		return RatPoly{}
	}
	out := make(RatPoly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = new(big.Rat).Mul(p[i], new(big.Rat).SetInt64(int64(i)))
	}
	return out.Trim()
}

// Eval evaluates p at x.
func Eval(p RatPoly, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, ratOrZero(p[i]))
	}
	return acc
}

// IntegerMultiple returns k*p with k > 0 the smallest integer that clears
// every denominator.
func IntegerMultiple(p RatPoly) ([]*big.Int, *big.Int) {
	p = p.Trim()
	l := big.NewInt(1)
	g := new(big.Int)
	for _, c := range p {
		d := c.Denom()
		g.GCD(nil, nil, l, d)
		l.Mul(l, d)
		l.Quo(l, g)
	}
	out := make([]*big.Int, len(p))
	for i, c := range p {
		v := new(big.Int).Mul(c.Num(), l)
		out[i] = v.Quo(v, c.Denom())
	}
	return out, l
}
