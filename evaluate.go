package gocas

import (
	"math"

	"github.com/njchilds90/gocas/number"
	"github.com/pkg/errors"
)

// ============================================================
// Numerical evaluation
// ============================================================

// Evaluate folds e numerically. Exact arithmetic stays exact, functions
// without an exact special value are evaluated in floating point, and free
// symbols are kept. Failures are *MathError values.
func Evaluate(e Expr) (Expr, error) { return EvaluateWith(e, nil) }

// EvaluateWith evaluates e with scalar symbols bound by name. Bindings are
// checked node by node, so 1/x at x = 0 is a division by zero rather than an
// undefined marker.
func EvaluateWith(e Expr, env map[string]Expr) (Expr, error) {
	out, err := evaluate(e, env)
	if err != nil {
		return nil, err
	}
	out = Simplify(out)
	if IsUndefined(out) {
		return nil, undefinedError(e.String(), "indeterminate form")
	}
	return out, nil
}

// EvaluateFloat evaluates e to a real float64.
func EvaluateFloat(e Expr) (float64, error) { return EvaluateFloatWith(e, nil) }

// EvaluateFloatWith evaluates e to a real float64 under env.
func EvaluateFloatWith(e Expr, env map[string]Expr) (float64, error) {
	out, err := EvaluateWith(e, env)
	if err != nil {
		return 0, err
	}
	f, ok := floatValue(out)
	if !ok {
		return 0, undefinedError(out.String(), "not a real number")
	}
	return f, nil
}

func evaluate(e Expr, env map[string]Expr) (Expr, error) {
	switch x := e.(type) {
	case *Sym:
		if val, ok := env[x.name]; ok && x.kind == Scalar {
			return evaluate(val, nil)
		}
		return x, nil
	case *Num, *Const, *BigO, *Wildcard:
		return e, nil
	case *Func:
		if IsUndefined(x) {
			return nil, undefinedError(x.String(), "indeterminate form")
		}
		args, err := evaluateAll(x.args, env)
		if err != nil {
			return nil, err
		}
		return evalFunc(x.name, args)
	case *Add:
		terms, err := evaluateAll(x.terms, env)
		if err != nil {
			return nil, err
		}
		return foldNumbers("add", terms, number.Add, number.Zero, AddOf)
	case *Mul:
		factors, err := evaluateAll(x.factors, env)
		if err != nil {
			return nil, err
		}
		if !allCommute(factors) {
			return MulOf(factors...), nil
		}
		return foldNumbers("mul", factors, number.Mul, number.One, MulOf)
	case *Pow:
		b, err := evaluate(x.base, env)
		if err != nil {
			return nil, err
		}
		p, err := evaluate(x.exp, env)
		if err != nil {
			return nil, err
		}
		return evalPow(b, p)
	}
	var first error
	out := mapChildren(e, func(c Expr) Expr {
		if first != nil {
			return c
		}
		r, err := evaluate(c, env)
		if err != nil {
			first = err
			return c
		}
		return r
	})
	return out, first
}

func evaluateAll(es []Expr, env map[string]Expr) ([]Expr, error) {
	out := make([]Expr, len(es))
	for i, e := range es {
		r, err := evaluate(e, env)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// foldNumbers combines the numeric operands with checked arithmetic so
// overflow and division errors surface instead of becoming markers.
func foldNumbers(op string, es []Expr, f func(a, b number.Number) (number.Number, error), identity number.Number, build func(...Expr) Expr) (Expr, error) {
	acc := identity
	rest := make([]Expr, 0, len(es))
	for _, e := range es {
		n, ok := e.(*Num)
		if !ok {
			rest = append(rest, e)
			continue
		}
		r, err := f(acc, n.val)
		if err != nil {
			return nil, fromArith(op, err)
		}
		acc = r
	}
	return build(append(rest, NumOf(acc))...), nil
}

func evalPow(b, p Expr) (Expr, error) {
	bn, bok := b.(*Num)
	pn, pok := p.(*Num)
	if bok && pok {
		if bn.IsZero() {
			switch {
			case pn.IsZero():
				return nil, undefinedError("0^0", "indeterminate form")
			case pn.IsNegative():
				return nil, divisionByZero("pow")
			}
		}
		if !bn.IsExact() || !pn.IsExact() {
			if bn.IsNegative() && !pn.IsInteger() {
				return nil, domainError("pow", bn.String(), "negative base with fractional exponent")
			}
			r, err := number.Pow(bn.val, pn.val)
			if err != nil {
				return nil, fromArith("pow", err)
			}
			return NumOf(r), nil
		}
	}
	out := PowOf(b, p)
	if IsUndefined(out) {
		return nil, undefinedError(b.String()+"^"+p.String(), "indeterminate form")
	}
	return out, nil
}

// evalFunc prefers an exact special value and falls back to the registry's
// float evaluator when every argument is a real number.
func evalFunc(name string, args []Expr) (Expr, error) {
	exact := Simplify(FuncOf(name, args...))
	if f, ok := exact.(*Func); !IsUndefined(exact) && (!ok || f.name != name) {
		return exact, nil
	}
	def, ok := LookupFunction(name)
	if !ok || def.Eval == nil {
		if IsUndefined(exact) {
			return nil, undefinedError(name, "no value at these arguments")
		}
		return exact, nil
	}
	fs := make([]float64, len(args))
	for i, a := range args {
		f, ok := floatValue(a)
		if !ok {
			return FuncOf(name, args...), nil
		}
		fs[i] = f
	}
	y, err := def.Eval(fs)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluate %s", name)
	}
	switch {
	case math.IsNaN(y):
		return nil, domainError(name, fstr(fs[0]), "not a real number")
	case math.IsInf(y, 0):
		return nil, errors.WithStack(&MathError{Kind: KindNumericOverflow, Operation: name, Reason: "non-finite result"})
	}
	return NFloat(y), nil
}

// floatValue computes the real value of a closed numeric expression.
func floatValue(e Expr) (float64, bool) {
	switch x := e.(type) {
	case *Num:
		return x.Float64(), true
	case *Const:
		return x.Float64()
	case *Add:
		sum := 0.0
		for _, t := range x.terms {
			f, ok := floatValue(t)
			if !ok {
				return 0, false
			}
			sum += f
		}
		return sum, true
	case *Mul:
		prod := 1.0
		for _, t := range x.factors {
			f, ok := floatValue(t)
			if !ok {
				return 0, false
			}
			prod *= f
		}
		return prod, true
	case *Pow:
		b, okB := floatValue(x.base)
		p, okP := floatValue(x.exp)
		if !okB || !okP {
			return 0, false
		}
		r := math.Pow(b, p)
		return r, !math.IsNaN(r) && !math.IsInf(r, 0)
	case *Func:
		def, ok := LookupFunction(x.name)
		if !ok || def.Eval == nil {
			return 0, false
		}
		fs := make([]float64, len(x.args))
		for i, a := range x.args {
			f, ok := floatValue(a)
			if !ok {
				return 0, false
			}
			fs[i] = f
		}
		y, err := def.Eval(fs)
		return y, err == nil && !math.IsNaN(y) && !math.IsInf(y, 0)
	}
	return 0, false
}
