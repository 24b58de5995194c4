package gocas

import (
	"math/big"

	"github.com/njchilds90/gocas/internal/densepoly"
)

// ============================================================
// Expansion
// ============================================================

// maxExpandPower bounds the integer powers of sums that Expand multiplies out.
const maxExpandPower = 32

// Expand distributes products over sums and multiplies out small positive
// integer powers of sums.
func Expand(e Expr) Expr { return Simplify(expandExpr(Simplify(e))) }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := mapSlice(v.factors, expandExpr)
		if !allCommute(expanded) {
			return MulOf(expanded...)
		}
		for i, f := range expanded {
			a, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			rest = append(rest, expanded[:i]...)
			rest = append(rest, expanded[i+1:]...)
			terms := make([]Expr, len(a.terms))
			for k, t := range a.terms {
				terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
			}
			return AddOf(terms...)
		}
		return MulOf(expanded...)
	case *Add:
		return AddOf(mapSlice(v.terms, expandExpr)...)
	case *Pow:
		base := expandExpr(v.base)
		if k, ok := positiveInt(v.exp); ok && k <= maxExpandPower {
			if _, isSum := base.(*Add); isSum {
				out := base
				for i := int64(1); i < k; i++ {
					out = expandExpr(MulOf(out, base))
				}
				return out
			}
		}
		return PowOf(base, expandExpr(v.exp))
	case *Func:
		if len(v.args) == 0 {
			return v
		}
		return FuncOf(v.name, mapSlice(v.args, expandExpr)...)
	}
	return mapChildren(e, expandExpr)
}

// ============================================================
// Factoring
// ============================================================

// FactorResult holds the result of a factoring attempt.
type FactorResult struct {
	Factors []Expr
	Success bool
}

// Expr multiplies the factors back together without simplifying, so the
// factored shape is kept.
func (r FactorResult) Expr() Expr {
	switch len(r.Factors) {
	case 0:
		return N(1)
	case 1:
		return r.Factors[0]
	}
	return &Mul{factors: append([]Expr(nil), r.Factors...)}
}

// Factor factors a polynomial in v with rational coefficients over Q: a
// rational content, a power of each linear factor b*v - a for every rational
// root a/b, and the primitive integer cofactor without rational roots.
func Factor(e Expr, v *Sym) FactorResult {
	e = Simplify(e)
	p, ok := toRatPoly(e, v)
	if !ok || p.Degree() < 1 {
		return FactorResult{Factors: []Expr{e}}
	}
	ints, scale := densepoly.IntegerMultiple(p)
	content := new(big.Int)
	for _, c := range ints {
		content.GCD(nil, nil, content, new(big.Int).Abs(c))
	}
	if ints[len(ints)-1].Sign() < 0 {
		content.Neg(content)
	}
	prim := make(densepoly.RatPoly, len(ints))
	for i, c := range ints {
		prim[i] = new(big.Rat).SetFrac(c, content)
	}
	coeff := new(big.Rat).SetFrac(content, scale)

	var factors []Expr
	if coeff.Cmp(big.NewRat(1, 1)) != 0 {
		factors = append(factors, ratNum(coeff))
	}
	roots, _ := densepoly.RationalRoots(prim)
	rest := prim
	for i := 0; i < len(roots); {
		j := i
		for j < len(roots) && roots[j].Cmp(roots[i]) == 0 {
			j++
		}
		r := roots[i]
		// b*v - a for r = a/b
		lin := densepoly.RatPoly{new(big.Rat).SetInt(new(big.Int).Neg(r.Num())), new(big.Rat).SetInt(r.Denom())}
		for k := i; k < j; k++ {
			rest, _, _ = densepoly.DivMod(rest, lin)
		}
		factors = append(factors, PowOf(fromRatPoly(lin, v), N(int64(j-i))))
		i = j
	}
	if rest.Degree() >= 1 {
		factors = append(factors, fromRatPoly(rest, v))
	} else if c := rest.Coeff(0); c.Cmp(big.NewRat(1, 1)) != 0 {
		factors = append([]Expr{ratNum(c)}, factors...)
	}
	nontrivial := 0
	for _, f := range factors {
		if Has(f, v) {
			nontrivial++
		}
	}
	return FactorResult{Factors: factors, Success: nontrivial > 1 || len(factors) > 1}
}

// ============================================================
// Rational functions
// ============================================================

// Cancel divides numerator and denominator by their polynomial gcd when
// both are polynomials in a single shared variable.
func Cancel(num, den Expr) Expr {
	num, den = Simplify(num), Simplify(den)
	if IsZeroFast(den) {
		return Undefined()
	}
	if v, ok := sharedVariable(num, den); ok {
		g := PolyGCD(num, den, v)
		if !IsOneFast(g) && !IsUndefined(g) {
			qn, rn := PolyDivide(num, g, v)
			qd, rd := PolyDivide(den, g, v)
			if IsZeroFast(rn) && IsZeroFast(rd) {
				num, den = qn, qd
			}
		}
	}
	return Simplify(DivOf(num, den))
}

// Apart decomposes num/den into partial fractions over Q. The denominator
// must split into rational linear factors and at most one irreducible
// quadratic.
func Apart(num, den Expr, v *Sym) ([]Expr, error) {
	pn, okN := toRatPoly(Simplify(num), v)
	pd, okD := toRatPoly(Simplify(den), v)
	if !okN || !okD {
		return nil, notImplemented("partial fractions of non-rational functions")
	}
	if pd.Degree() < 0 {
		return nil, divisionByZero("apart")
	}
	poly, fracs, err := densepoly.PartialFractions(pn, pd)
	if err != nil {
		return nil, notImplemented("partial fractions: " + err.Error())
	}
	var terms []Expr
	if poly.Degree() >= 0 {
		terms = append(terms, fromRatPoly(poly, v))
	}
	for _, f := range fracs {
		terms = append(terms, Simplify(DivOf(fromRatPoly(f.Numer, v), PowOf(fromRatPoly(f.Factor, v), N(int64(f.Power))))))
	}
	return terms, nil
}
