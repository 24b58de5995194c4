package gocas

import (
	"fmt"
)

// ============================================================
// Taylor / Maclaurin series
// ============================================================

// TaylorSeries expands e about v = a through (v - a)^order.
func TaylorSeries(e Expr, v *Sym, a Expr, order int) Expr {
	coeffs := taylorCoeffs(Simplify(e), v, a, order)
	terms := make([]Expr, 0, len(coeffs))
	shift := SubOf(v, a)
	for k, c := range coeffs {
		if IsZeroFast(c) {
			continue
		}
		terms = append(terms, MulOf(c, PowOf(shift, N(int64(k)))))
	}
	return Simplify(AddOf(terms...))
}

// TaylorSeriesWithRemainder appends an O((v - a)^(order+1)) term.
func TaylorSeriesWithRemainder(e Expr, v *Sym, a Expr, order int) Expr {
	return AddOf(TaylorSeries(e, v, a, order), OTerm(v.name, order+1))
}

// MaclaurinSeries is TaylorSeries about 0.
func MaclaurinSeries(e Expr, v *Sym, order int) Expr { return TaylorSeries(e, v, N(0), order) }

// MaclaurinSeriesWithRemainder is TaylorSeriesWithRemainder about 0.
func MaclaurinSeriesWithRemainder(e Expr, v *Sym, order int) Expr {
	return TaylorSeriesWithRemainder(e, v, N(0), order)
}

// taylorCoeffs returns f^(k)(a)/k! for k = 0..order.
func taylorCoeffs(e Expr, v *Sym, a Expr, order int) []Expr {
	out := make([]Expr, 0, order+1)
	cur := e
	fact := N(1)
	for k := 0; k <= order; k++ {
		if k > 0 {
			cur = Derivative(cur, v)
			fact = MulOf(fact, N(int64(k))).(*Num)
		}
		out = append(out, Simplify(DivOf(Substitute(cur, v, a), fact)))
	}
	return out
}

// ============================================================
// Limits
// ============================================================

// maxLHopital bounds the rounds of L'Hôpital's rule.
const maxLHopital = 5

// seriesOrder bounds the search for a nonvanishing Taylor coefficient.
const seriesOrder = 8

// LimitResult holds the result of a limit computation.
type LimitResult struct {
	Value   Expr
	Success bool
	Error   string
}

// Limit computes lim_{v -> point} e. It tries direct substitution, then
// L'Hôpital's rule on 0/0 quotients, then the leading Taylor terms of the
// numerator and denominator. Infinity() and -Infinity() are valid points.
func Limit(e Expr, v *Sym, point Expr) LimitResult {
	e, point = Simplify(e), Simplify(point)
	switch {
	case isConst(point, ConstInfinity):
		return limitAtInfinity(e, v)
	case isNegInfinity(point):
		return limitAtInfinity(Substitute(e, v, Neg(v)), v)
	}
	return limitAt(e, v, point, maxLHopital)
}

func isNegInfinity(e Expr) bool {
	m, ok := e.(*Mul)
	return ok && len(m.factors) == 2 && isNumEqual(m.factors[0], -1) && isConst(m.factors[1], ConstInfinity)
}

func limitAt(e Expr, v *Sym, point Expr, budget int) LimitResult {
	if sub := Substitute(e, v, point); !IsUndefined(sub) && !Has(sub, v) && !hasInfinity(sub) {
		return LimitResult{Value: sub, Success: true}
	}
	num, den := splitQuotient(e)
	if IsOneFast(den) {
		return limitFailed(e, v, point)
	}
	n0, d0 := Substitute(num, v, point), Substitute(den, v, point)
	if budget > 0 && IsZero(n0) && IsZero(d0) {
		dn, dd := Derivative(num, v), Derivative(den, v)
		if !IsZeroFast(dd) {
			if r := limitAt(Simplify(DivOf(dn, dd)), v, point, budget-1); r.Success {
				return r
			}
		}
	}
	kn, cn, okN := leadingTerm(num, v, point)
	kd, cd, okD := leadingTerm(den, v, point)
	if !okN || !okD {
		return limitFailed(e, v, point)
	}
	ratio := Simplify(DivOf(cn, cd))
	switch {
	case kn > kd:
		return LimitResult{Value: N(0), Success: true}
	case kn == kd:
		return LimitResult{Value: ratio, Success: true}
	}
	if (kd-kn)%2 == 1 {
		return LimitResult{Error: fmt.Sprintf("one-sided limits of %s at %s = %s differ", e, v, point)}
	}
	return signedInfinity(ratio, e, v, point)
}

// limitAtInfinity compares degrees for rational functions and otherwise
// substitutes v = 1/t with t -> 0.
func limitAtInfinity(e Expr, v *Sym) LimitResult {
	num, den := splitQuotient(e)
	pn, okN := PolyCoeffs(num, v)
	pd, okD := PolyCoeffs(den, v)
	if okN && okD {
		dn, dd := maxKey(pn), maxKey(pd)
		if dn < 0 {
			return LimitResult{Value: N(0), Success: true}
		}
		ratio := Simplify(DivOf(pn[dn], pd[dd]))
		switch {
		case dn < dd:
			return LimitResult{Value: N(0), Success: true}
		case dn == dd:
			return LimitResult{Value: ratio, Success: true}
		}
		return signedInfinity(ratio, e, v, Infinity())
	}
	t := freshSymbol("t", e)
	return limitAt(Simplify(Substitute(e, v, PowOf(t, N(-1)))), t, N(0), maxLHopital)
}

func maxKey(m map[int]Expr) int {
	k := -1
	for d := range m {
		k = max(k, d)
	}
	return k
}

func signedInfinity(ratio, e Expr, v *Sym, point Expr) LimitResult {
	s, ok := signOf(ratio)
	switch {
	case !ok || s == 0:
		return limitFailed(e, v, point)
	case s > 0:
		return LimitResult{Value: Infinity(), Success: true}
	}
	return LimitResult{Value: Neg(Infinity()), Success: true}
}

func limitFailed(e Expr, v *Sym, point Expr) LimitResult {
	return LimitResult{Error: fmt.Sprintf("limit could not be determined: %s as %s -> %s", e, v, point)}
}

// leadingTerm finds the first nonvanishing Taylor coefficient of e at
// point.
func leadingTerm(e Expr, v *Sym, point Expr) (int, Expr, bool) {
	for k, c := range taylorCoeffs(e, v, point, seriesOrder) {
		if IsUndefined(c) || Has(c, v) {
			return 0, nil, false
		}
		if !IsZero(c) {
			return k, c, true
		}
	}
	return 0, nil, false
}

// splitQuotient separates factors with negative integer exponents.
func splitQuotient(e Expr) (num, den Expr) {
	var ns, ds []Expr
	for _, f := range factorsOf(e) {
		b, x := splitPower(f)
		if k, ok := negativeInt(x); ok {
			ds = append(ds, PowOf(b, N(k)))
			continue
		}
		ns = append(ns, f)
	}
	return Simplify(MulOf(ns...)), Simplify(MulOf(ds...))
}

func hasInfinity(e Expr) bool {
	if isConst(e, ConstInfinity) {
		return true
	}
	for _, c := range children(e) {
		if hasInfinity(c) {
			return true
		}
	}
	return false
}
