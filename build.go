package gocas

import (
	"github.com/njchilds90/gocas/number"
)

// ============================================================
// Constructors
// ============================================================
//
// The constructors keep every tree they return inside the structural
// invariants: sums and products are flat, never have fewer than two
// operands, carry at most one numeric literal, and list commutative operands
// in canonical order. Like-term collection, power collection and function
// identities are left to Simplify.

// AddOf returns the sum of terms.
func AddOf(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	for _, t := range terms {
		if a, ok := t.(*Add); ok {
			flat = append(flat, a.terms...)
		} else {
			flat = append(flat, t)
		}
	}
	if anyUndefined(flat) {
		return Undefined()
	}
	if !allCommute(flat) {
		return addOrdered(flat)
	}
	acc := number.Zero
	rest := make([]Expr, 0, len(flat))
	for _, t := range flat {
		n, ok := t.(*Num)
		if !ok {
			rest = append(rest, t)
			continue
		}
		s, err := number.Add(acc, n.val)
		if err != nil {
			return Undefined()
		}
		acc = s
	}
	if !acc.IsZero() || (acc.IsFloat() && len(rest) == 0) {
		rest = append(rest, &Num{val: acc})
	}
	switch len(rest) {
	case 0:
		return N(0)
	case 1:
		return rest[0]
	}
	sortCanonical(rest)
	return &Add{terms: rest}
}

// addOrdered keeps the caller's order and folds adjacent numbers only.
func addOrdered(flat []Expr) Expr {
	out := foldAdjacent(flat, number.Add, number.Zero)
	switch len(out) {
	case 0:
		return N(0)
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// foldAdjacent merges runs of numeric literals with op and drops results
// equal to the identity.
func foldAdjacent(es []Expr, op func(a, b number.Number) (number.Number, error), identity number.Number) []Expr {
	out := make([]Expr, 0, len(es))
	for _, e := range es {
		n, ok := e.(*Num)
		if ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(*Num); ok {
				if r, err := op(prev.val, n.val); err == nil {
					out[len(out)-1] = &Num{val: r}
					continue
				}
			}
		}
		out = append(out, e)
	}
	kept := out[:0]
	for _, e := range out {
		if n, ok := e.(*Num); ok && number.Identical(n.val, identity) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// MulOf returns the product of factors.
func MulOf(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	for _, f := range factors {
		if m, ok := f.(*Mul); ok {
			flat = append(flat, m.factors...)
		} else {
			flat = append(flat, f)
		}
	}
	if anyUndefined(flat) {
		return Undefined()
	}
	for _, f := range flat {
		if IsZeroFast(f) {
			for _, g := range flat {
				if isConst(g, ConstInfinity) {
					return Undefined()
				}
			}
			return f
		}
	}
	if !allCommute(flat) {
		out := foldAdjacent(flat, number.Mul, number.One)
		switch len(out) {
		case 0:
			return N(1)
		case 1:
			return out[0]
		}
		return &Mul{factors: out}
	}
	acc := number.One
	rest := make([]Expr, 0, len(flat))
	for _, f := range flat {
		n, ok := f.(*Num)
		if !ok {
			rest = append(rest, f)
			continue
		}
		p, err := number.Mul(acc, n.val)
		if err != nil {
			return Undefined()
		}
		acc = p
	}
	if len(rest) == 0 {
		return &Num{val: acc}
	}
	sortCanonical(rest)
	if !acc.IsOne() {
		rest = append([]Expr{&Num{val: acc}}, rest...)
	}
	if len(rest) == 1 {
		return rest[0]
	}
	return &Mul{factors: rest}
}

// PowOf returns base^exp with the trivial power laws applied:
//
//	x^0 = 1 for x not literally 0
//	x^1 = x
//	1^y = 1
//	0^y = 0 for numeric y > 0
//	0^0 and 0^y for numeric y < 0 are undefined
//
// Two exact numbers fold when the result is exact.
func PowOf(base, exp Expr) Expr {
	if IsUndefined(base) || IsUndefined(exp) {
		return Undefined()
	}
	en, expNum := exp.(*Num)
	bn, baseNum := base.(*Num)
	if baseNum && bn.IsZero() {
		if expNum {
			if en.IsPositive() {
				return base
			}
			return Undefined()
		}
		return &Pow{base: base, exp: exp}
	}
	if expNum {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() && en.IsExact() {
			return base
		}
	}
	if baseNum && bn.IsOne() && bn.IsExact() {
		return base
	}
	if baseNum && expNum {
		r, err := number.Pow(bn.val, en.val)
		if err == nil {
			return &Num{val: r}
		}
		if isDivisionByZero(err) {
			return Undefined()
		}
	}
	return &Pow{base: base, exp: exp}
}

// FuncOf applies the named function to args. Registered special values on
// literal arguments are folded immediately, so FuncOf("sin", N(0)) is 0.
func FuncOf(name string, args ...Expr) Expr {
	args = append([]Expr(nil), args...)
	if name == undefinedName && len(args) == 0 {
		return Undefined()
	}
	if anyUndefined(args) {
		return Undefined()
	}
	if def, ok := LookupFunction(name); ok && def.Special != nil && (def.Arity == 0 || def.Arity == len(args)) {
		if v, ok := def.Special(args); ok {
			return v
		}
	}
	return &Func{name: name, args: args}
}

// ============================================================
// Convenience constructors
// ============================================================

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// SubOf returns a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// DivOf returns a / b as a * b^-1.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

// SqrtOf returns arg^(1/2).
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func SinOf(arg Expr) Expr   { return FuncOf("sin", arg) }
func CosOf(arg Expr) Expr   { return FuncOf("cos", arg) }
func TanOf(arg Expr) Expr   { return FuncOf("tan", arg) }
func CotOf(arg Expr) Expr   { return FuncOf("cot", arg) }
func SecOf(arg Expr) Expr   { return FuncOf("sec", arg) }
func CscOf(arg Expr) Expr   { return FuncOf("csc", arg) }
func AsinOf(arg Expr) Expr  { return FuncOf("asin", arg) }
func AcosOf(arg Expr) Expr  { return FuncOf("acos", arg) }
func AtanOf(arg Expr) Expr  { return FuncOf("atan", arg) }
func AcotOf(arg Expr) Expr  { return FuncOf("acot", arg) }
func AsecOf(arg Expr) Expr  { return FuncOf("asec", arg) }
func AcscOf(arg Expr) Expr  { return FuncOf("acsc", arg) }
func SinhOf(arg Expr) Expr  { return FuncOf("sinh", arg) }
func CoshOf(arg Expr) Expr  { return FuncOf("cosh", arg) }
func TanhOf(arg Expr) Expr  { return FuncOf("tanh", arg) }
func ExpOf(arg Expr) Expr   { return FuncOf("exp", arg) }
func LnOf(arg Expr) Expr    { return FuncOf("ln", arg) }
func AbsOf(arg Expr) Expr   { return FuncOf("abs", arg) }
func GammaOf(arg Expr) Expr { return FuncOf("gamma", arg) }
func FloorOf(arg Expr) Expr { return FuncOf("floor", arg) }
func CeilOf(arg Expr) Expr  { return FuncOf("ceil", arg) }
func SignOf(arg Expr) Expr  { return FuncOf("sign", arg) }

// ============================================================
// Term decomposition helpers
// ============================================================

// splitCoeff separates the numeric coefficient of a term: 3*x*y gives
// (3, x*y) and x gives (1, x).
func splitCoeff(e Expr) (number.Number, Expr) {
	switch v := e.(type) {
	case *Num:
		return v.val, N(1)
	case *Mul:
		if n, ok := v.factors[0].(*Num); ok {
			rest := v.factors[1:]
			if len(rest) == 1 {
				return n.val, rest[0]
			}
			return n.val, &Mul{factors: append([]Expr(nil), rest...)}
		}
	}
	return number.One, e
}

// splitPower returns base and exponent, treating x as x^1.
func splitPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// factorsOf lists the factors of a product, or e alone.
func factorsOf(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.factors
	}
	return []Expr{e}
}

// termsOf lists the terms of a sum, or e alone.
func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// hasNegativeCoeff reports whether e prints with a leading minus sign.
func hasNegativeCoeff(e Expr) bool {
	c, _ := splitCoeff(e)
	return c.IsNegative()
}
