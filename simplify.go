package gocas

import (
	"math/big"

	"github.com/njchilds90/gocas/internal/densepoly"
	"github.com/njchilds90/gocas/number"
)

// ============================================================
// Simplify
// ============================================================

// Simplify rewrites e into canonical form. It is total: arithmetic failures
// become the undefined marker. Results are memoized in a bounded
// process-wide cache.
func Simplify(e Expr) Expr {
	switch e.(type) {
	case *Num, *Sym, *Const, *BigO, *Wildcard:
		return e
	}
	if e == nil {
		return nil
	}
	h := Hash(e)
	if v, ok := simplifyCache.get(e, h); ok {
		return v
	}
	limit := cfg().MaxSimplifyPasses
	cur := e
	converged := false
	for i := 0; i < limit; i++ {
		next := simplifyOnce(cur)
		if Equal(next, cur) {
			converged = true
			break
		}
		cur = next
	}
	if !converged {
		kernelLog().WithField("expr", e.String()).WithField("passes", limit).Warn("simplify did not reach a fixed point")
	}
	simplifyCache.put(e, h, cur)
	return cur
}

// DeepSimplify expands products and powers of sums before simplifying.
func DeepSimplify(e Expr) Expr { return Simplify(Expand(Simplify(e))) }

func simplifyOnce(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		out := AddOf(mapSlice(v.terms, Simplify)...)
		if a, ok := out.(*Add); ok {
			return simplifyAdd(a)
		}
		return out
	case *Mul:
		out := MulOf(mapSlice(v.factors, Simplify)...)
		if m, ok := out.(*Mul); ok {
			return simplifyMul(m)
		}
		return out
	case *Pow:
		out := PowOf(Simplify(v.base), Simplify(v.exp))
		if p, ok := out.(*Pow); ok {
			return simplifyPow(p)
		}
		return out
	case *Func:
		if len(v.args) == 0 {
			return v
		}
		out := FuncOf(v.name, mapSlice(v.args, Simplify)...)
		if f, ok := out.(*Func); ok {
			return simplifyFunc(f)
		}
		return out
	case *Matrix:
		return v.mapElements(Simplify).Optimize()
	case *Complex:
		return AddOf(Simplify(v.re), MulOf(Simplify(v.im), I()))
	case *FiniteSet:
		elems := mapSlice(v.elems, Simplify)
		sortCanonical(elems)
		out := elems[:0]
		for i, x := range elems {
			if i > 0 && Equal(x, out[len(out)-1]) {
				continue
			}
			out = append(out, x)
		}
		return &FiniteSet{elems: out}
	case *Exact:
		return v
	}
	return mapChildren(e, Simplify)
}

// ============================================================
// Sums
// ============================================================

func simplifyAdd(a *Add) Expr {
	terms := collectLikeTerms(a.terms)
	if out, ok := pythagorean(terms); ok {
		return out
	}
	return AddOf(terms...)
}

// collectLikeTerms adds the coefficients of terms with the same symbolic
// core; the merged term keeps the position of its first occurrence.
func collectLikeTerms(terms []Expr) []Expr {
	type group struct {
		coeff number.Number
		core  Expr
	}
	var groups []*group
	index := make(map[uint64][]*group)
	for _, t := range terms {
		c, core := splitCoeff(t)
		h := Hash(core)
		var g *group
		for _, cand := range index[h] {
			if Equal(cand.core, core) {
				g = cand
				break
			}
		}
		if g == nil {
			g = &group{coeff: c, core: core}
			groups = append(groups, g)
			index[h] = append(index[h], g)
			continue
		}
		sum, err := number.Add(g.coeff, c)
		if err != nil {
			return terms
		}
		g.coeff = sum
	}
	out := make([]Expr, 0, len(groups))
	for _, g := range groups {
		if g.coeff.IsZero() {
			continue
		}
		out = append(out, MulOf(NumOf(g.coeff), g.core))
	}
	return out
}

// squarePair describes c*f(u)^2 + sign*c*g(u)^2 = c.
type squarePair struct {
	f, g string
	sign int
}

var pythagoreanPairs = []squarePair{
	{"sin", "cos", 1},
	{"cosh", "sinh", -1},
	{"sec", "tan", -1},
	{"csc", "cot", -1},
}

// squaredCall describes one term c*f(u)^2 where c is the cofactor.
type squaredCall struct {
	index int
	name  string
	arg   Expr
	cof   Expr
}

func squaredCalls(terms []Expr) []squaredCall {
	var out []squaredCall
	for i, t := range terms {
		fs := factorsOf(t)
		for j, f := range fs {
			p, ok := f.(*Pow)
			if !ok || !isNumEqual(p.exp, 2) {
				continue
			}
			fn, ok := p.base.(*Func)
			if !ok || len(fn.args) != 1 {
				continue
			}
			rest := make([]Expr, 0, len(fs)-1)
			rest = append(rest, fs[:j]...)
			rest = append(rest, fs[j+1:]...)
			out = append(out, squaredCall{index: i, name: fn.name, arg: fn.args[0], cof: MulOf(rest...)})
		}
	}
	return out
}

// pythagorean replaces the first matching pair of squared terms by their
// common cofactor.
func pythagorean(terms []Expr) (Expr, bool) {
	calls := squaredCalls(terms)
	for _, a := range calls {
		for _, b := range calls {
			if a.index == b.index || !Equal(a.arg, b.arg) {
				continue
			}
			for _, pair := range pythagoreanPairs {
				if a.name != pair.f || b.name != pair.g {
					continue
				}
				want := b.cof
				if pair.sign < 0 {
					want = Simplify(Neg(b.cof))
				}
				if !Equal(a.cof, want) {
					continue
				}
				rest := make([]Expr, 0, len(terms)-1)
				for i, t := range terms {
					if i != a.index && i != b.index {
						rest = append(rest, t)
					}
				}
				return AddOf(append(rest, a.cof)...), true
			}
		}
	}
	return nil, false
}

// ============================================================
// Products
// ============================================================

func simplifyMul(m *Mul) Expr {
	if !allCommute(m.factors) {
		return simplifyNoncommutative(m.factors)
	}
	factors := collectPowers(m.factors)
	if folded, ok := foldSignAbs(factors); ok {
		return MulOf(folded...)
	}
	if out, ok := cancelRational(factors); ok {
		return out
	}
	out := MulOf(factors...)
	if mm, ok := out.(*Mul); ok && len(mm.factors) == 2 {
		c, cok := mm.factors[0].(*Num)
		s, sok := mm.factors[1].(*Add)
		if cok && sok {
			terms := make([]Expr, len(s.terms))
			for i, t := range s.terms {
				terms[i] = MulOf(c, t)
			}
			return AddOf(terms...)
		}
	}
	return out
}

// foldSignAbs rewrites sign(u)*abs(u)^n as u^n for odd integer n.
func foldSignAbs(factors []Expr) ([]Expr, bool) {
	for i, f := range factors {
		s, ok := f.(*Func)
		if !ok || s.name != "sign" || len(s.args) != 1 {
			continue
		}
		for j, g := range factors {
			b, x := splitPower(g)
			a, ok := b.(*Func)
			if !ok || a.name != "abs" || len(a.args) != 1 || !Equal(a.args[0], s.args[0]) {
				continue
			}
			if n, ok := exactInt(x); !ok || n%2 == 0 {
				continue
			}
			out := make([]Expr, 0, len(factors)-1)
			for k, h := range factors {
				switch k {
				case i:
				case j:
					out = append(out, PowOf(s.args[0], x))
				default:
					out = append(out, h)
				}
			}
			return out, true
		}
	}
	return nil, false
}

// collectPowers merges factors with equal bases by adding exponents.
func collectPowers(factors []Expr) []Expr {
	type group struct {
		base Expr
		exps []Expr
	}
	var groups []*group
	for _, f := range factors {
		if _, ok := f.(*Num); ok {
			groups = append(groups, &group{base: f})
			continue
		}
		b, x := splitPower(f)
		var g *group
		for _, cand := range groups {
			if cand.exps != nil && Equal(cand.base, b) {
				g = cand
				break
			}
		}
		if g == nil {
			groups = append(groups, &group{base: b, exps: []Expr{x}})
			continue
		}
		g.exps = append(g.exps, x)
	}
	out := make([]Expr, 0, len(groups))
	for _, g := range groups {
		if g.exps == nil {
			out = append(out, g.base)
			continue
		}
		if len(g.exps) == 1 {
			out = append(out, PowOf(g.base, g.exps[0]))
			continue
		}
		out = append(out, PowOf(g.base, Simplify(AddOf(g.exps...))))
	}
	return out
}

// simplifyNoncommutative keeps the factor order, merging adjacent equal
// bases and multiplying adjacent matrix literals.
func simplifyNoncommutative(factors []Expr) Expr {
	out := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if len(out) == 0 {
			out = append(out, f)
			continue
		}
		prev := out[len(out)-1]
		if pm, ok := prev.(*Matrix); ok {
			if fm, ok := f.(*Matrix); ok {
				if p, err := pm.Mul(fm); err == nil {
					out[len(out)-1] = p
					continue
				}
			}
			if n, ok := f.(*Num); ok {
				out[len(out)-1] = pm.Scale(n)
				continue
			}
		}
		if n, ok := prev.(*Num); ok {
			if fm, ok := f.(*Matrix); ok {
				out[len(out)-1] = fm.Scale(n)
				continue
			}
		}
		pb, px := splitPower(prev)
		fb, fx := splitPower(f)
		if _, isNum := pb.(*Num); !isNum && Equal(pb, fb) {
			out[len(out)-1] = PowOf(pb, Simplify(AddOf(px, fx)))
			continue
		}
		out = append(out, f)
	}
	return MulOf(out...)
}

// cancelRational divides out the polynomial gcd of a numerator factor and a
// denominator factor that are univariate polynomials in the same variable.
func cancelRational(factors []Expr) (Expr, bool) {
	for i, f := range factors {
		fb, fx := splitPower(f)
		m, ok := positiveInt(fx)
		if !ok || !isPolyCandidate(fb) {
			continue
		}
		for j, g := range factors {
			gb, gx := splitPower(g)
			n, ok := negativeInt(gx)
			if !ok || i == j || !isPolyCandidate(gb) {
				continue
			}
			v, ok := sharedVariable(fb, gb)
			if !ok {
				continue
			}
			a, okA := toRatPoly(fb, v)
			b, okB := toRatPoly(gb, v)
			if !okA || !okB {
				continue
			}
			gcd := densepoly.GCD(a, b)
			if gcd.Degree() < 1 {
				continue
			}
			aq, _, errA := densepoly.DivMod(a, gcd)
			bq, _, errB := densepoly.DivMod(b, gcd)
			if errA != nil || errB != nil {
				continue
			}
			rest := make([]Expr, 0, len(factors)+1)
			for k, h := range factors {
				if k != i && k != j {
					rest = append(rest, h)
				}
			}
			rest = append(rest,
				PowOf(fromRatPoly(gcd, v), N(m-n)),
				PowOf(fromRatPoly(aq, v), N(m)),
				PowOf(fromRatPoly(bq, v), N(-n)),
			)
			return MulOf(rest...), true
		}
	}
	return nil, false
}

func isPolyCandidate(e Expr) bool {
	switch e.(type) {
	case *Add, *Sym:
		return true
	}
	return false
}

// sharedVariable returns the single variable both expressions depend on.
func sharedVariable(a, b Expr) (*Sym, bool) {
	syms := FreeSymbols(a)
	for _, s := range FreeSymbols(b).Slice() {
		syms.Insert(s)
	}
	if syms.Size() != 1 {
		return nil, false
	}
	return syms.Slice()[0], true
}

func positiveInt(e Expr) (int64, bool) {
	n, ok := e.(*Num)
	if !ok || !n.IsExact() || !n.IsInteger() || !n.IsPositive() {
		return 0, false
	}
	return n.Int64()
}

func negativeInt(e Expr) (int64, bool) {
	n, ok := e.(*Num)
	if !ok || !n.IsExact() || !n.IsInteger() || !n.IsNegative() {
		return 0, false
	}
	v, ok := n.Int64()
	return -v, ok
}

// ============================================================
// Powers
// ============================================================

// maxRootWork bounds the size of n^r examined for perfect powers.
const maxRootWork = 4096

func simplifyPow(p *Pow) Expr {
	base, exp := p.base, p.exp
	if isConst(base, ConstE) {
		return ExpOf(exp)
	}
	if isConst(base, ConstI) {
		if k, ok := exactInt(exp); ok {
			return iPower(k)
		}
	}
	if bn, ok := isExactNum(base); ok {
		if en, ok := isExactNum(exp); ok && !en.IsInteger() {
			if out, ok := foldRadical(bn.val, en.val); ok {
				return out
			}
		}
	}
	if inner, ok := base.(*Pow); ok {
		if _, ok := exactInt(exp); ok {
			return PowOf(inner.base, Simplify(MulOf(inner.exp, exp)))
		}
	}
	if m, ok := base.(*Mul); ok && allCommute(m.factors) {
		if _, ok := exactInt(exp); ok {
			out := make([]Expr, len(m.factors))
			for i, f := range m.factors {
				out[i] = PowOf(f, exp)
			}
			return MulOf(out...)
		}
		if c, ok := m.factors[0].(*Num); ok && c.IsPositive() && c.IsExact() {
			rest := MulOf(m.factors[1:]...)
			return MulOf(PowOf(c, exp), PowOf(rest, exp))
		}
	}
	if mat, ok := base.(*Matrix); ok {
		if k, ok := exactInt(exp); ok {
			if out, err := mat.Pow(k); err == nil {
				return out
			}
		}
	}
	return p
}

func exactInt(e Expr) (int64, bool) {
	n, ok := isExactNum(e)
	if !ok || !n.IsInteger() {
		return 0, false
	}
	return n.Int64()
}

func iPower(k int64) Expr {
	switch ((k % 4) + 4) % 4 {
	case 0:
		return N(1)
	case 1:
		return I()
	case 2:
		return N(-1)
	}
	return Neg(I())
}

// foldRadical rewrites base^(p/q) for exact base and non-integer exponent:
// perfect powers are pulled out (8^(1/2) = 2*2^(1/2)), fractions split into
// numerator and denominator, and negative bases yield i or a real odd root.
// It reports false when nothing changes.
func foldRadical(base, exp number.Number) (Expr, bool) {
	r, _ := exp.BigRat()
	if !r.Denom().IsInt64() || r.Denom().Int64() > 64 {
		return nil, false
	}
	q := r.Denom().Int64()
	if base.IsNegative() {
		pos := NumOf(number.Neg(base))
		if q == 2 {
			return MulOf(PowOf(I(), BigIntOf(r.Num())), PowOf(pos, NumOf(exp))), true
		}
		if q%2 == 1 {
			sign := N(1)
			if r.Num().Bit(0) == 1 {
				sign = N(-1)
			}
			return MulOf(sign, PowOf(pos, NumOf(exp))), true
		}
		return nil, false
	}
	if !base.IsInteger() {
		num, den := BigIntOf(base.Num()), BigIntOf(base.Den())
		return MulOf(PowOf(num, NumOf(exp)), PowOf(den, NumOf(number.Neg(exp)))), true
	}
	n, _ := base.BigInt()
	// p/q = k + s/q with 0 < s < q
	k := new(big.Int)
	s := new(big.Int)
	k.DivMod(r.Num(), r.Denom(), s)
	if !s.IsInt64() || int64(n.BitLen())*s.Int64() > maxRootWork || k.BitLen() > 10 {
		return nil, false
	}
	ns := new(big.Int).Exp(n, s, nil)
	outside, inside := number.SplitPower(ns, int(q))
	if k.Sign() == 0 && outside.Cmp(big.NewInt(1)) == 0 {
		return nil, false
	}
	coeff, err := number.Pow(number.BigInt(n), number.BigInt(k))
	if err != nil {
		return nil, false
	}
	coeff, err = number.Mul(coeff, number.BigInt(outside))
	if err != nil {
		return nil, false
	}
	return MulOf(NumOf(coeff), PowOf(BigIntOf(inside), F(1, q))), true
}

// ============================================================
// Function applications
// ============================================================

func simplifyFunc(f *Func) Expr {
	def, ok := LookupFunction(f.name)
	if !ok {
		return f
	}
	if out, ok := evalFloatArgs(f, def); ok {
		return out
	}
	if def.Parity != NoParity && len(f.args) == 1 && leadsNegative(f.args[0]) {
		pos := Simplify(Neg(f.args[0]))
		if def.Parity == Even {
			return FuncOf(f.name, pos)
		}
		return Neg(FuncOf(f.name, pos))
	}
	if out, ok := applyRules(f, def.Identities); ok {
		return out
	}
	if f.name == "abs" {
		if m, ok := f.args[0].(*Mul); ok {
			if c, ok := m.factors[0].(*Num); ok && c.IsPositive() {
				return MulOf(c, AbsOf(MulOf(m.factors[1:]...)))
			}
		}
	}
	return f
}

// evalFloatArgs evaluates f numerically when every argument is a number and
// at least one is a Float.
func evalFloatArgs(f *Func, def *FunctionDef) (Expr, bool) {
	if def.Eval == nil {
		return nil, false
	}
	anyFloat := false
	vals := make([]float64, len(f.args))
	for i, a := range f.args {
		n, ok := a.(*Num)
		if !ok {
			return nil, false
		}
		if !n.IsExact() {
			anyFloat = true
		}
		vals[i] = n.Float64()
	}
	if !anyFloat {
		return nil, false
	}
	v, err := def.Eval(vals)
	if err != nil {
		return Undefined(), true
	}
	return NFloat(v), true
}

// leadsNegative reports whether e reads with a leading minus sign: a negative
// number, a product with negative coefficient, or a sum whose first symbolic
// term is negative.
func leadsNegative(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		return hasNegativeCoeff(v)
	case *Add:
		for _, t := range v.terms {
			if _, ok := t.(*Num); ok {
				continue
			}
			return hasNegativeCoeff(t)
		}
	}
	return false
}
