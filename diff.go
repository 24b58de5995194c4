package gocas

// ============================================================
// Differentiation
// ============================================================

// Derivative returns d e / d v, simplified.
func Derivative(e Expr, v *Sym) Expr {
	return Simplify(diff(Simplify(e), v, nil))
}

// DerivativeN applies Derivative n times.
func DerivativeN(e Expr, v *Sym, n int) Expr {
	out := Simplify(e)
	for i := 0; i < n; i++ {
		out = Derivative(out, v)
	}
	return out
}

// DerivativeWith differentiates treating every symbol in dependents as a
// function of v; the chain rule leaves an unevaluated d y / d v factor for
// each of them.
func DerivativeWith(e Expr, v *Sym, dependents ...*Sym) Expr {
	deps := newSymbolSet()
	deps.InsertSlice(dependents)
	return Simplify(diff(Simplify(e), v, deps))
}

// ImplicitDerivative returns dy/dx for the curve F(x, y) = 0, or for
// lhs = rhs when rel is a Relation: -F_x / F_y.
func ImplicitDerivative(rel Expr, y, x *Sym) Expr {
	f := rel
	if r, ok := rel.(*Relation); ok {
		f = SubOf(r.lhs, r.rhs)
	}
	return Simplify(Neg(DivOf(Derivative(f, x), Derivative(f, y))))
}

func diff(e Expr, v *Sym, deps *SymbolSet) Expr {
	switch x := e.(type) {
	case *Num, *Const, *BigO:
		return N(0)
	case *Sym:
		if x.same(v) {
			return N(1)
		}
		if deps != nil && deps.Contains(x) {
			return UnevaluatedDerivative(x, v, 1)
		}
		return N(0)
	}
	if !Has(e, v) && !dependsOn(e, deps) {
		return N(0)
	}
	switch x := e.(type) {
	case *Add:
		return AddOf(mapSlice(x.terms, func(t Expr) Expr { return diff(t, v, deps) })...)
	case *Mul:
		terms := make([]Expr, 0, len(x.factors))
		for i := range x.factors {
			d := diff(x.factors[i], v, deps)
			if IsZeroFast(d) {
				continue
			}
			fs := append([]Expr(nil), x.factors...)
			fs[i] = d
			terms = append(terms, MulOf(fs...))
		}
		return AddOf(terms...)
	case *Pow:
		return diffPow(x, v, deps)
	case *Func:
		if IsUndefined(x) {
			return x
		}
		def, ok := LookupFunction(x.name)
		if !ok || def.Derivative == nil || len(x.args) != 1 {
			return UnevaluatedDerivative(x, v, 1)
		}
		u := x.args[0]
		return MulOf(def.Derivative(u), diff(u, v, deps))
	case *Matrix:
		switch x.kind {
		case IdentityMatrix, ZeroMatrixKind, PermutationMatrix:
			return ZeroMatrix(x.rows, x.cols)
		}
		return x.mapElements(func(c Expr) Expr { return Simplify(diff(c, v, deps)) })
	case *Relation:
		return &Relation{op: x.op, lhs: diff(x.lhs, v, deps), rhs: diff(x.rhs, v, deps)}
	case *Piecewise:
		out := make([]Piece, len(x.pieces))
		for i, p := range x.pieces {
			out[i] = Piece{Value: diff(p.Value, v, deps), Cond: p.Cond}
		}
		return &Piecewise{pieces: out}
	case *Complex:
		return AddOf(diff(x.re, v, deps), MulOf(diff(x.im, v, deps), I()))
	case *Calculus:
		if x.v.same(v) {
			switch {
			case x.op == OpDerivative:
				return UnevaluatedDerivative(x.body, v, x.order+1)
			case x.lower == nil:
				return x.body
			}
		}
	}
	return UnevaluatedDerivative(e, v, 1)
}

// diffPow applies the power rule when the exponent is constant, the
// exponential rule when the base is, and the general rule otherwise.
func diffPow(p *Pow, v *Sym, deps *SymbolSet) Expr {
	db := diff(p.base, v, deps)
	de := diff(p.exp, v, deps)
	baseConst, expConst := IsZeroFast(db), IsZeroFast(de)
	switch {
	case expConst:
		return MulOf(p.exp, PowOf(p.base, SubOf(p.exp, N(1))), db)
	case baseConst:
		return MulOf(p, LnOf(p.base), de)
	}
	return MulOf(p, AddOf(MulOf(de, LnOf(p.base)), MulOf(p.exp, db, PowOf(p.base, N(-1)))))
}

func dependsOn(e Expr, deps *SymbolSet) bool {
	if deps == nil || deps.Empty() {
		return false
	}
	for _, s := range deps.Slice() {
		if Has(e, s) {
			return true
		}
	}
	return false
}
