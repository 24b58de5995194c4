package gocas

import (
	"math/big"
	"sort"

	"github.com/njchilds90/gocas/internal/densepoly"
	"github.com/njchilds90/gocas/number"
)

// ============================================================
// Polynomial dispatch
// ============================================================

// PolyClass is the coefficient ring of a polynomial relative to one variable.
type PolyClass uint8

const (
	IntegerPoly PolyClass = iota
	RationalPoly
	SymbolicPoly
)

func (c PolyClass) String() string {
	switch c {
	case IntegerPoly:
		return "integer"
	case RationalPoly:
		return "rational"
	}
	return "symbolic"
}

// polyTerms reads e as sum of c_k*v^k with every c_k free of v. It reports
// false on negative or non-integer powers of v and on v inside functions.
func polyTerms(e Expr, v *Sym) (map[int]Expr, bool) {
	out := make(map[int]Expr)
	for _, t := range termsOf(e) {
		deg := 0
		var coeff []Expr
		for _, f := range factorsOf(t) {
			if !Has(f, v) {
				coeff = append(coeff, f)
				continue
			}
			if s, ok := f.(*Sym); ok && s.same(v) {
				deg++
				continue
			}
			p, ok := f.(*Pow)
			if !ok {
				return nil, false
			}
			s, ok := p.base.(*Sym)
			if !ok || !s.same(v) {
				return nil, false
			}
			k, ok := positiveInt(p.exp)
			if !ok || k > 1<<16 {
				return nil, false
			}
			deg += int(k)
		}
		c := MulOf(coeff...)
		if prev, ok := out[deg]; ok {
			c = AddOf(prev, c)
		}
		out[deg] = c
	}
	return out, true
}

// polyTermsExpanded tries the tree as given, then its expansion.
func polyTermsExpanded(e Expr, v *Sym) (map[int]Expr, bool) {
	if terms, ok := polyTerms(e, v); ok {
		return terms, true
	}
	return polyTerms(Expand(e), v)
}

// Classify reports the coefficient ring of e as a polynomial in v.
// BigInteger coefficients count as rational so that they take the
// arbitrary-precision path.
func Classify(e Expr, v *Sym) PolyClass {
	terms, ok := polyTermsExpanded(Simplify(e), v)
	if !ok {
		return SymbolicPoly
	}
	return classifyTerms(terms)
}

func classifyTerms(terms map[int]Expr) PolyClass {
	class := IntegerPoly
	for _, c := range terms {
		n, ok := Simplify(c).(*Num)
		if !ok || !n.IsExact() {
			return SymbolicPoly
		}
		if n.val.Kind() != number.Integer {
			class = RationalPoly
		}
	}
	return class
}

func ratPolyOf(terms map[int]Expr) densepoly.RatPoly {
	deg := -1
	for k := range terms {
		if k > deg {
			deg = k
		}
	}
	p := make(densepoly.RatPoly, deg+1)
	for i := range p {
		p[i] = new(big.Rat)
	}
	for k, c := range terms {
		n := Simplify(c).(*Num)
		r, _ := n.val.BigRat()
		p[k] = r
	}
	return p.Trim()
}

// toRatPoly converts e to a dense polynomial in v over Q.
func toRatPoly(e Expr, v *Sym) (densepoly.RatPoly, bool) {
	terms, ok := polyTermsExpanded(e, v)
	if !ok || classifyTerms(terms) == SymbolicPoly {
		return nil, false
	}
	return ratPolyOf(terms), true
}

// fromRatPoly rebuilds an expression, highest degree first.
func fromRatPoly(p densepoly.RatPoly, v *Sym) Expr {
	p = p.Trim()
	terms := make([]Expr, 0, len(p))
	for k := len(p) - 1; k >= 0; k-- {
		if p[k].Sign() == 0 {
			continue
		}
		terms = append(terms, MulOf(ratNum(p[k]), PowOf(v, N(int64(k)))))
	}
	return AddOf(terms...)
}

func fromIntPoly(p densepoly.IntPoly, v *Sym) Expr {
	return fromRatPoly(p.Rat(), v)
}

// fromTerms rebuilds a symbolic-coefficient polynomial.
func fromTerms(terms map[int]Expr, v *Sym) Expr {
	out := make([]Expr, 0, len(terms))
	for k, c := range terms {
		out = append(out, MulOf(c, PowOf(v, N(int64(k)))))
	}
	return Simplify(AddOf(out...))
}

func intPolyOf(terms map[int]Expr) (densepoly.IntPoly, bool) {
	return ratPolyOf(terms).Int()
}

// ============================================================
// GCD and division
// ============================================================

// PolyGCD returns the gcd of a and b as polynomials in v. Over Z the result
// is primitive times the content gcd; over Q it is monic. Inputs with
// symbolic coefficients use a bounded Euclidean algorithm on trees and give
// 1 when it does not terminate in time.
func PolyGCD(a, b Expr, v *Sym) Expr {
	a, b = Simplify(a), Simplify(b)
	if IsZeroFast(a) {
		return b
	}
	if IsZeroFast(b) || Equal(a, b) {
		return a
	}
	ta, okA := polyTermsExpanded(a, v)
	tb, okB := polyTermsExpanded(b, v)
	class := SymbolicPoly
	if okA && okB {
		class = max(classifyTerms(ta), classifyTerms(tb))
	}
	switch class {
	case IntegerPoly:
		pa, okA := intPolyOf(ta)
		pb, okB := intPolyOf(tb)
		if okA && okB {
			if g, err := densepoly.GCDInt(pa, pb); err == nil {
				return fromIntPoly(g, v)
			}
		}
		fallthrough
	case RationalPoly:
		return fromRatPoly(densepoly.GCD(ratPolyOf(ta), ratPolyOf(tb)), v)
	}
	if !okA || !okB {
		return N(1)
	}
	return symbolicGCD(ta, tb, v)
}

// PolyDivide returns quotient and remainder of a by b as polynomials in v.
// A zero divisor gives a pair of undefined markers.
func PolyDivide(a, b Expr, v *Sym) (q, r Expr) {
	a, b = Simplify(a), Simplify(b)
	if IsZeroFast(b) {
		return Undefined(), Undefined()
	}
	if Equal(a, b) {
		return N(1), N(0)
	}
	if IsZeroFast(a) {
		return N(0), N(0)
	}
	ta, okA := polyTermsExpanded(a, v)
	tb, okB := polyTermsExpanded(b, v)
	if !okA || !okB {
		return N(0), a
	}
	switch max(classifyTerms(ta), classifyTerms(tb)) {
	case IntegerPoly:
		pa, okA := intPolyOf(ta)
		pb, okB := intPolyOf(tb)
		if okA && okB {
			if qi, ri, err := densepoly.DivModInt(pa, pb); err == nil {
				return fromIntPoly(qi, v), fromIntPoly(ri, v)
			}
		}
		fallthrough
	case RationalPoly:
		qr, rr, err := densepoly.DivMod(ratPolyOf(ta), ratPolyOf(tb))
		if err != nil {
			return Undefined(), Undefined()
		}
		return fromRatPoly(qr, v), fromRatPoly(rr, v)
	}
	qt, rt := symbolicDivide(ta, tb)
	return fromTerms(qt, v), fromTerms(rt, v)
}

func degreeOf(terms map[int]Expr) int {
	deg := -1
	for k, c := range terms {
		if k > deg && !IsZeroFast(Simplify(c)) {
			deg = k
		}
	}
	return deg
}

// symbolicDivide is long division with coefficients simplified as trees.
func symbolicDivide(a, b map[int]Expr) (q, r map[int]Expr) {
	q = make(map[int]Expr)
	r = make(map[int]Expr, len(a))
	for k, c := range a {
		r[k] = c
	}
	db := degreeOf(b)
	lead := b[db]
	for steps := 0; steps <= len(a)+len(b); steps++ {
		dr := degreeOf(r)
		if dr < db || dr < 0 {
			break
		}
		t := Simplify(DivOf(r[dr], lead))
		q[dr-db] = t
		for k, c := range b {
			prev, ok := r[k+dr-db]
			if !ok {
				prev = N(0)
			}
			r[k+dr-db] = Simplify(SubOf(prev, MulOf(t, c)))
		}
		delete(r, dr)
	}
	for k, c := range r {
		if IsZeroFast(c) {
			delete(r, k)
		}
	}
	return q, r
}

func symbolicGCD(a, b map[int]Expr, v *Sym) Expr {
	if degreeOf(a) < degreeOf(b) {
		a, b = b, a
	}
	for i := 0; i < cfg().SymbolicGCDIterations; i++ {
		if degreeOf(b) < 0 {
			return monicTerms(a, v)
		}
		_, r := symbolicDivide(a, b)
		a, b = b, r
	}
	kernelLog().WithField("var", v.name).Debug("symbolic gcd did not terminate")
	return N(1)
}

func monicTerms(terms map[int]Expr, v *Sym) Expr {
	d := degreeOf(terms)
	if d <= 0 {
		return N(1)
	}
	lead := terms[d]
	out := make(map[int]Expr, len(terms))
	for k, c := range terms {
		out[k] = Simplify(DivOf(c, lead))
	}
	return fromTerms(out, v)
}

// ============================================================
// Coefficients, degree, collection
// ============================================================

// Degree returns the degree of e in v, or -1 when e is not a polynomial in v.
// The zero polynomial has degree 0.
func Degree(e Expr, v *Sym) int {
	terms, ok := polyTermsExpanded(Simplify(e), v)
	if !ok {
		return -1
	}
	return max(degreeOf(terms), 0)
}

// PolyCoeffs returns the coefficient of each power of v; it reports false
// when e is not a polynomial in v.
func PolyCoeffs(e Expr, v *Sym) (map[int]Expr, bool) {
	terms, ok := polyTermsExpanded(Simplify(e), v)
	if !ok {
		return nil, false
	}
	out := make(map[int]Expr, len(terms))
	for k, c := range terms {
		if c = Simplify(c); !IsZeroFast(c) {
			out[k] = c
		}
	}
	return out, true
}

// coeffList returns the coefficients low degree first.
func coeffList(e Expr, v *Sym) ([]Expr, bool) {
	terms, ok := PolyCoeffs(e, v)
	if !ok {
		return nil, false
	}
	deg := 0
	for k := range terms {
		deg = max(deg, k)
	}
	out := make([]Expr, deg+1)
	for i := range out {
		out[i] = N(0)
	}
	for k, c := range terms {
		out[k] = c
	}
	return out, true
}

// Collect groups the terms of e by powers of v, highest power first. The
// result is returned unsimplified so the grouping survives.
func Collect(e Expr, v *Sym) Expr {
	terms, ok := PolyCoeffs(e, v)
	if !ok {
		return Simplify(e)
	}
	degrees := make([]int, 0, len(terms))
	for d := range terms {
		degrees = append(degrees, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))
	out := make([]Expr, 0, len(degrees))
	for _, d := range degrees {
		out = append(out, MulOf(terms[d], PowOf(v, N(int64(d)))))
	}
	return AddOf(out...)
}
