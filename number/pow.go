package number

import (
	"math"
	"math/big"
)

// maxExactExponent bounds exponentiation by squaring on bases other than
// 0, 1 and -1.
const maxExactExponent = 1 << 16

// Pow returns base^exp.
//
// Integer exponents are exact in the ring of base (negative exponents invert).
// A Rational exponent p/q on an exact base succeeds only when base is a perfect
// q-th power; otherwise Pow returns ErrInexact and the caller keeps the power
// symbolic. Floats on either side compute in float64.
func Pow(base, exp Number) (Number, error) {
	if base.IsFloat() || exp.IsFloat() {
		fb, fe, err := bothFloat(base, exp)
		if err != nil {
			return Zero, err
		}
		if fb == 0 && fe < 0 {
			return Zero, divisionByZero()
		}
		r := math.Pow(fb, fe)
		if math.IsNaN(r) {
			return Zero, overflow("%v^%v is not a real number", fb, fe)
		}
		return float(r)
	}
	switch exp.Kind() {
	case Integer, BigInteger:
		return powInteger(base, exp)
	}
	// Rational exponent p/q with q > 1.
	r, _ := exp.BigRat()
	if !r.Denom().IsInt64() || r.Denom().Int64() > maxExactExponent {
		return Zero, ErrInexact
	}
	q := int(r.Denom().Int64())
	root, ok := ExactRoot(base, q)
	if !ok {
		return Zero, ErrInexact
	}
	return powInteger(root, BigInt(r.Num()))
}

func powInteger(base, exp Number) (Number, error) {
	if exp.IsNegative() {
		if base.IsZero() {
			return Zero, divisionByZero()
		}
		p, err := powInteger(base, Neg(exp))
		if err != nil {
			return Zero, err
		}
		return Inv(p)
	}
	switch {
	case exp.IsZero():
		return One, nil
	case base.IsZero(), base.IsOne():
		return base, nil
	case base.IsMinusOne():
		e, _ := exp.BigInt()
		if e.Bit(0) == 0 {
			return One, nil
		}
		return MinusOne, nil
	}
	e, ok := exp.TryInt64()
	if !ok || e > maxExactExponent {
		return Zero, overflow("exponent %s too large", exp.String())
	}
	if base.ref == nil {
		if p, ok := powInt64(base.i, e); ok {
			return Int(p), nil
		}
	}
	r, _ := base.BigRat()
	num := new(big.Int).Exp(r.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(r.Denom(), big.NewInt(e), nil)
	return Rat(new(big.Rat).SetFrac(num, den)), nil
}

// powInt64 is exponentiation by squaring with overflow detection.
func powInt64(b, e int64) (int64, bool) {
	result := int64(1)
	for e > 0 {
		if e&1 == 1 {
			var ok bool
			if result, ok = mulChecked(result, b); !ok {
				return 0, false
			}
		}
		e >>= 1
		if e > 0 {
			var ok bool
			if b, ok = mulChecked(b, b); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

// ExactRoot returns the real k-th root of an exact n when it is exact.
// Even roots of negative numbers have no real root.
func ExactRoot(n Number, k int) (Number, bool) {
	if k < 1 || n.IsFloat() {
		return Zero, false
	}
	if k == 1 {
		return n, true
	}
	neg := n.IsNegative()
	if neg && k%2 == 0 {
		return Zero, false
	}
	r, _ := Abs(n).BigRat()
	num, ok := IntRoot(r.Num(), k)
	if !ok {
		return Zero, false
	}
	den, ok := IntRoot(r.Denom(), k)
	if !ok {
		return Zero, false
	}
	out := Rat(new(big.Rat).SetFrac(num, den))
	if neg {
		out = Neg(out)
	}
	return out, true
}

// IntRoot returns the k-th root of a non-negative integer when it is exact.
func IntRoot(n *big.Int, k int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	if n.Sign() == 0 || n.Cmp(big.NewInt(1)) == 0 {
		return new(big.Int).Set(n), true
	}
	if k == 2 {
		s := new(big.Int).Sqrt(n)
		return s, new(big.Int).Mul(s, s).Cmp(n) == 0
	}
	// Binary search on [1, 2^(bitlen/k + 1)].
	hi := new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen()/k+1))
	lo := big.NewInt(1)
	kk := big.NewInt(int64(k))
	one := big.NewInt(1)
	for lo.Cmp(hi) <= 0 {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		p := new(big.Int).Exp(mid, kk, nil)
		switch p.Cmp(n) {
		case 0:
			return mid, true
		case -1:
			lo = mid.Add(mid, one)
		default:
			hi = mid.Sub(mid, one)
		}
	}
	return nil, false
}

// smallPrimes drive SplitPower's trial division.
var smallPrimes = func() []int64 {
	var ps []int64
	sieve := make([]bool, 1000)
	for i := 2; i < len(sieve); i++ {
		if sieve[i] {
			continue
		}
		ps = append(ps, int64(i))
		for j := i * i; j < len(sieve); j += i {
			sieve[j] = true
		}
	}
	return ps
}()

// SplitPower factors a positive integer n as outside^k * inside, pulling out
// every k-th power of a prime below 1000 and any exact k-th root of the
// remaining cofactor. It is used to rewrite sqrt(8) as 2*sqrt(2).
func SplitPower(n *big.Int, k int) (outside, inside *big.Int) {
	outside = big.NewInt(1)
	inside = new(big.Int).Set(n)
	if n.Sign() <= 0 || k < 2 {
		return outside, inside
	}
	kk := big.NewInt(int64(k))
	for _, p := range smallPrimes {
		bp := big.NewInt(p)
		pk := new(big.Int).Exp(bp, kk, nil)
		if pk.Cmp(inside) > 0 {
			break
		}
		m := new(big.Int)
		for {
			q, r := new(big.Int).QuoRem(inside, pk, m)
			if r.Sign() != 0 {
				break
			}
			inside = q
			outside.Mul(outside, bp)
		}
	}
	if root, ok := IntRoot(inside, k); ok {
		outside.Mul(outside, root)
		inside = big.NewInt(1)
	}
	return outside, inside
}
