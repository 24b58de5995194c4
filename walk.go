package gocas

// mapChildren rebuilds e with f applied to each direct operand. Arithmetic
// heads are rebuilt through their constructors so the result keeps the
// structural invariants; carrier heads are rebuilt verbatim. Atoms are
// returned unchanged.
func mapChildren(e Expr, f func(Expr) Expr) Expr {
	switch v := e.(type) {
	case *Add:
		return AddOf(mapSlice(v.terms, f)...)
	case *Mul:
		return MulOf(mapSlice(v.factors, f)...)
	case *Pow:
		return PowOf(f(v.base), f(v.exp))
	case *Func:
		if len(v.args) == 0 {
			return v
		}
		return FuncOf(v.name, mapSlice(v.args, f)...)
	case *Matrix:
		return v.mapElements(f)
	case *Relation:
		return &Relation{op: v.op, lhs: f(v.lhs), rhs: f(v.rhs)}
	case *Piecewise:
		out := make([]Piece, len(v.pieces))
		for i, p := range v.pieces {
			out[i] = Piece{Value: f(p.Value)}
			if p.Cond != nil {
				out[i].Cond = f(p.Cond)
			}
		}
		return &Piecewise{pieces: out}
	case *FiniteSet:
		return &FiniteSet{elems: mapSlice(v.elems, f)}
	case *Interval:
		return &Interval{lo: f(v.lo), hi: f(v.hi), leftOpen: v.leftOpen, rightOpen: v.rightOpen}
	case *Calculus:
		c := *v
		c.body = f(v.body)
		if v.lower != nil {
			c.lower, c.upper = f(v.lower), f(v.upper)
		}
		return &c
	case *Complex:
		return &Complex{re: f(v.re), im: f(v.im)}
	case *MethodCall:
		return &MethodCall{recv: f(v.recv), method: v.method, args: mapSlice(v.args, f)}
	case *Exact:
		return &Exact{e: f(v.e)}
	}
	return e
}

func mapSlice(es []Expr, f func(Expr) Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = f(e)
	}
	return out
}

// Substitute replaces every occurrence of v in e with value and simplifies.
func Substitute(e Expr, v *Sym, value Expr) Expr {
	return Simplify(substitute(e, v, value))
}

// SubstituteAll applies several substitutions at once; each occurrence is
// replaced by its original binding, never by the result of another.
func SubstituteAll(e Expr, bindings map[*Sym]Expr) Expr {
	var walk func(Expr) Expr
	walk = func(x Expr) Expr {
		if s, ok := x.(*Sym); ok {
			for k, val := range bindings {
				if k.same(s) {
					return val
				}
			}
			return s
		}
		return mapChildren(x, walk)
	}
	return Simplify(walk(e))
}

func substitute(e Expr, v *Sym, value Expr) Expr {
	switch x := e.(type) {
	case *Sym:
		if x.same(v) {
			return value
		}
		return x
	case *Num, *Const, *BigO, *Wildcard:
		return e
	case *Calculus:
		if x.v.same(v) {
			// The variable is bound by the operator; only bounds change.
			if x.lower == nil {
				return x
			}
			c := *x
			c.lower, c.upper = substitute(x.lower, v, value), substitute(x.upper, v, value)
			return &c
		}
	}
	if !Has(e, v) {
		return e
	}
	return mapChildren(e, func(c Expr) Expr { return substitute(c, v, value) })
}
