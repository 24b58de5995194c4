package densepoly

import (
	"math/big"
	"sort"
)

// maxDivisorSearch bounds the coefficients whose divisors are enumerated by
// the rational root search.
const maxDivisorSearch = 1_000_000_000_000

// RationalRoots returns every rational root of p, repeated by multiplicity
// and sorted ascending, together with the cofactor left after dividing them
// out. Candidates come from the rational root theorem; coefficients whose
// magnitude exceeds the search bound end the search early and the remaining
// factor is returned undivided.
func RationalRoots(p RatPoly) (roots []*big.Rat, rest RatPoly) {
	rest = p.Trim()
	for rest.Degree() >= 1 && rest[0].Sign() == 0 {
		roots = append(roots, new(big.Rat))
		rest = rest[1:].Trim()
	}
	for rest.Degree() >= 1 {
		r, ok := findRationalRoot(rest)
		if !ok {
			break
		}
		roots = append(roots, r)
		rest, _, _ = DivMod(rest, linear(r))
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots, rest
}

// linear returns x - r.
func linear(r *big.Rat) RatPoly {
	return RatPoly{new(big.Rat).Neg(r), big.NewRat(1, 1)}
}

func findRationalRoot(p RatPoly) (*big.Rat, bool) {
	ints, _ := IntegerMultiple(p)
	a0, an := ints[0], ints[len(ints)-1]
	if !a0.IsInt64() || !an.IsInt64() {
		return nil, false
	}
	c0, cn := abs(a0.Int64()), abs(an.Int64())
	if c0 > maxDivisorSearch || cn > maxDivisorSearch {
		return nil, false
	}
	seen := map[string]bool{}
	for _, num := range divisors(c0) {
		for _, den := range divisors(cn) {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*num, den)
				key := r.RatString()
				if seen[key] {
					continue
				}
				seen[key] = true
				if Eval(p, r).Sign() == 0 {
					return r, true
				}
			}
		}
	}
	return nil, false
}

// divisors returns the positive divisors of n > 0 in ascending order.
func divisors(n int64) []int64 {
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d != 0 {
			continue
		}
		small = append(small, d)
		if d != n/d {
			large = append(large, n/d)
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}
