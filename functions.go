package gocas

import (
	"math"
	"math/big"
	"strconv"

	"github.com/njchilds90/gocas/number"
)

// ============================================================
// Built-in functions
// ============================================================

func init() {
	w := W("u")
	mustRegister(
		FunctionDef{
			Name: "sin", Arity: 1, Parity: Odd, Period: twoPi(), Domain: "all reals", Inverse: "asin",
			Derivative:     func(u Expr) Expr { return CosOf(u) },
			Antiderivative: func(u Expr) Expr { return Neg(CosOf(u)) },
			Eval:           unary(math.Sin),
			Special:        trigSpecial(sinSurd),
			Identities:     []Rule{{Pattern: SinOf(AsinOf(w)), Template: w}},
		},
		FunctionDef{
			Name: "cos", Arity: 1, Parity: Even, Period: twoPi(), Domain: "all reals", Inverse: "acos",
			Derivative:     func(u Expr) Expr { return Neg(SinOf(u)) },
			Antiderivative: func(u Expr) Expr { return SinOf(u) },
			Eval:           unary(math.Cos),
			Special:        trigSpecial(cosSurd),
			Identities:     []Rule{{Pattern: CosOf(AcosOf(w)), Template: w}},
		},
		FunctionDef{
			Name: "tan", Arity: 1, Parity: Odd, Period: Pi(), Domain: "x != pi/2 + k*pi", Inverse: "atan",
			Derivative:     func(u Expr) Expr { return PowOf(SecOf(u), N(2)) },
			Antiderivative: func(u Expr) Expr { return Neg(LnOf(AbsOf(CosOf(u)))) },
			Eval:           poleWhen("tan", math.Cos, math.Tan),
			Special:        trigSpecialWithPoles(tanRatio),
			Identities:     []Rule{{Pattern: TanOf(AtanOf(w)), Template: w}},
		},
		FunctionDef{
			Name: "cot", Arity: 1, Parity: Odd, Period: Pi(), Domain: "x != k*pi", Inverse: "acot",
			Derivative:     func(u Expr) Expr { return Neg(PowOf(CscOf(u), N(2))) },
			Antiderivative: func(u Expr) Expr { return LnOf(AbsOf(SinOf(u))) },
			Eval:           poleWhen("cot", math.Sin, func(x float64) float64 { return 1 / math.Tan(x) }),
			Special:        trigSpecialWithPoles(cotRatio),
		},
		FunctionDef{
			Name: "sec", Arity: 1, Parity: Even, Period: twoPi(), Domain: "x != pi/2 + k*pi", Inverse: "asec",
			Derivative:     func(u Expr) Expr { return MulOf(SecOf(u), TanOf(u)) },
			Antiderivative: func(u Expr) Expr { return LnOf(AbsOf(AddOf(SecOf(u), TanOf(u)))) },
			Eval:           poleWhen("sec", math.Cos, func(x float64) float64 { return 1 / math.Cos(x) }),
			Special:        trigSpecialWithPoles(secRatio),
		},
		FunctionDef{
			Name: "csc", Arity: 1, Parity: Odd, Period: twoPi(), Domain: "x != k*pi", Inverse: "acsc",
			Derivative:     func(u Expr) Expr { return Neg(MulOf(CscOf(u), CotOf(u))) },
			Antiderivative: func(u Expr) Expr { return Neg(LnOf(AbsOf(AddOf(CscOf(u), CotOf(u))))) },
			Eval:           poleWhen("csc", math.Sin, func(x float64) float64 { return 1 / math.Sin(x) }),
			Special:        trigSpecialWithPoles(cscRatio),
		},
		FunctionDef{
			Name: "asin", Arity: 1, Parity: Odd, Domain: "[-1, 1]", Inverse: "sin",
			Derivative: func(u Expr) Expr { return PowOf(SubOf(N(1), PowOf(u, N(2))), F(-1, 2)) },
			Antiderivative: func(u Expr) Expr {
				return AddOf(MulOf(u, AsinOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
			},
			Eval:    boundedEval("asin", -1, 1, math.Asin),
			Special: inverseTrigSpecial(sinSurd, -6, 6),
		},
		FunctionDef{
			Name: "acos", Arity: 1, Domain: "[-1, 1]", Inverse: "cos",
			Derivative: func(u Expr) Expr { return Neg(PowOf(SubOf(N(1), PowOf(u, N(2))), F(-1, 2))) },
			Antiderivative: func(u Expr) Expr {
				return SubOf(MulOf(u, AcosOf(u)), SqrtOf(SubOf(N(1), PowOf(u, N(2)))))
			},
			Eval:    boundedEval("acos", -1, 1, math.Acos),
			Special: inverseTrigSpecial(cosSurd, 0, 12),
		},
		FunctionDef{
			Name: "atan", Arity: 1, Parity: Odd, Domain: "all reals", Inverse: "tan",
			Derivative: func(u Expr) Expr { return PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1)) },
			Antiderivative: func(u Expr) Expr {
				return SubOf(MulOf(u, AtanOf(u)), MulOf(F(1, 2), LnOf(AddOf(N(1), PowOf(u, N(2))))))
			},
			Eval:    unary(math.Atan),
			Special: inverseTrigSpecial(tanSurd, -5, 5),
		},
		FunctionDef{
			Name: "acot", Arity: 1, Domain: "all reals", Inverse: "cot",
			Derivative: func(u Expr) Expr { return Neg(PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))) },
			Antiderivative: func(u Expr) Expr {
				return AddOf(MulOf(u, AcotOf(u)), MulOf(F(1, 2), LnOf(AddOf(N(1), PowOf(u, N(2))))))
			},
			Eval: unary(func(x float64) float64 {
				if x == 0 {
					return math.Pi / 2
				}
				return math.Atan(1 / x)
			}),
			Special: inverseTrigSpecial(cotSurd, 1, 11),
		},
		FunctionDef{
			Name: "asec", Arity: 1, Domain: "|x| >= 1", Inverse: "sec",
			Derivative: func(u Expr) Expr {
				return MulOf(PowOf(AbsOf(u), N(-1)), PowOf(SubOf(PowOf(u, N(2)), N(1)), F(-1, 2)))
			},
			Antiderivative: func(u Expr) Expr {
				return SubOf(MulOf(u, AsecOf(u)), LnOf(AbsOf(AddOf(u, SqrtOf(SubOf(PowOf(u, N(2)), N(1)))))))
			},
			Eval: outsideEval("asec", func(x float64) float64 { return math.Acos(1 / x) }),
		},
		FunctionDef{
			Name: "acsc", Arity: 1, Parity: Odd, Domain: "|x| >= 1", Inverse: "csc",
			Derivative: func(u Expr) Expr {
				return Neg(MulOf(PowOf(AbsOf(u), N(-1)), PowOf(SubOf(PowOf(u, N(2)), N(1)), F(-1, 2))))
			},
			Antiderivative: func(u Expr) Expr {
				return AddOf(MulOf(u, AcscOf(u)), LnOf(AbsOf(AddOf(u, SqrtOf(SubOf(PowOf(u, N(2)), N(1)))))))
			},
			Eval: outsideEval("acsc", func(x float64) float64 { return math.Asin(1 / x) }),
		},
		FunctionDef{
			Name: "sinh", Arity: 1, Parity: Odd, Domain: "all reals",
			Derivative:     func(u Expr) Expr { return CoshOf(u) },
			Antiderivative: func(u Expr) Expr { return CoshOf(u) },
			Eval:           unary(math.Sinh),
			Special:        atZero(N(0)),
		},
		FunctionDef{
			Name: "cosh", Arity: 1, Parity: Even, Domain: "all reals",
			Derivative:     func(u Expr) Expr { return SinhOf(u) },
			Antiderivative: func(u Expr) Expr { return SinhOf(u) },
			Eval:           unary(math.Cosh),
			Special:        atZero(N(1)),
		},
		FunctionDef{
			Name: "tanh", Arity: 1, Parity: Odd, Domain: "all reals",
			Derivative:     func(u Expr) Expr { return SubOf(N(1), PowOf(TanhOf(u), N(2))) },
			Antiderivative: func(u Expr) Expr { return LnOf(CoshOf(u)) },
			Eval:           unary(math.Tanh),
			Special:        atZero(N(0)),
		},
		FunctionDef{
			Name: "exp", Arity: 1, Domain: "all reals", Inverse: "ln",
			Derivative:     func(u Expr) Expr { return ExpOf(u) },
			Antiderivative: func(u Expr) Expr { return ExpOf(u) },
			Eval:           unary(math.Exp),
			Special:        expSpecial,
			Identities:     []Rule{{Pattern: ExpOf(LnOf(w)), Template: w}},
		},
		FunctionDef{
			Name: "ln", Arity: 1, Domain: "x > 0", Inverse: "exp",
			Derivative:     func(u Expr) Expr { return PowOf(u, N(-1)) },
			Antiderivative: func(u Expr) Expr { return SubOf(MulOf(u, LnOf(u)), u) },
			Eval:           lnEval,
			Special:        lnSpecial,
			Identities:     []Rule{{Pattern: LnOf(ExpOf(w)), Template: w}},
		},
		FunctionDef{
			Name: "sqrt", Arity: 1, Domain: "x >= 0",
			Special: func(args []Expr) (Expr, bool) { return SqrtOf(args[0]), true },
		},
		FunctionDef{
			Name: "abs", Arity: 1, Parity: Even, Domain: "all reals",
			Derivative:     func(u Expr) Expr { return SignOf(u) },
			Antiderivative: func(u Expr) Expr { return MulOf(F(1, 2), u, AbsOf(u)) },
			Eval:           unary(math.Abs),
			Special:        exactUnary(func(n number.Number) (Expr, bool) { return NumOf(number.Abs(n)), true }),
			Identities:     []Rule{{Pattern: AbsOf(AbsOf(w)), Template: AbsOf(w)}},
		},
		FunctionDef{
			Name: "sign", Arity: 1, Parity: Odd, Domain: "all reals",
			Derivative: func(Expr) Expr { return N(0) },
			Eval: unary(func(x float64) float64 {
				switch {
				case x > 0:
					return 1
				case x < 0:
					return -1
				}
				return 0
			}),
			Special: exactUnary(func(n number.Number) (Expr, bool) { return N(int64(n.Sign())), true }),
		},
		FunctionDef{
			Name: "floor", Arity: 1, Domain: "all reals",
			Derivative: func(Expr) Expr { return N(0) },
			Eval:       unary(math.Floor),
			Special: exactUnary(func(n number.Number) (Expr, bool) {
				f, err := number.Floor(n)
				return NumOf(f), err == nil
			}),
		},
		FunctionDef{
			Name: "ceil", Arity: 1, Domain: "all reals",
			Derivative: func(Expr) Expr { return N(0) },
			Eval:       unary(math.Ceil),
			Special: exactUnary(func(n number.Number) (Expr, bool) {
				f, err := number.Floor(number.Neg(n))
				return NumOf(number.Neg(f)), err == nil
			}),
		},
		FunctionDef{
			Name: "gamma", Arity: 1, Domain: "x not in {0, -1, -2, ...}",
			Derivative: func(u Expr) Expr { return MulOf(GammaOf(u), FuncOf("digamma", u)) },
			Eval:       gammaEval,
			Special:    gammaSpecial,
		},
		FunctionDef{
			Name: "max", Domain: "all reals",
			Eval:    foldEval(math.Max),
			Special: extremum(1),
		},
		FunctionDef{
			Name: "min", Domain: "all reals",
			Eval:    foldEval(math.Min),
			Special: extremum(-1),
		},
	)
}

func twoPi() Expr { return MulOf(N(2), Pi()) }

func fstr(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

// ============================================================
// Float evaluators
// ============================================================

func unary(f func(float64) float64) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) { return f(a[0]), nil }
}

// poleWhen reports a pole where den vanishes.
func poleWhen(name string, den, f func(float64) float64) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) {
		if math.Abs(den(a[0])) < 1e-15 {
			return 0, poleError(name, fstr(a[0]))
		}
		return f(a[0]), nil
	}
}

func boundedEval(name string, lo, hi float64, f func(float64) float64) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) {
		if a[0] < lo || a[0] > hi {
			return 0, domainError(name, fstr(a[0]), "argument outside ["+fstr(lo)+", "+fstr(hi)+"]")
		}
		return f(a[0]), nil
	}
}

func outsideEval(name string, f func(float64) float64) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) {
		if math.Abs(a[0]) < 1 {
			return 0, domainError(name, fstr(a[0]), "argument inside (-1, 1)")
		}
		return f(a[0]), nil
	}
}

func lnEval(a []float64) (float64, error) {
	switch {
	case a[0] == 0:
		return 0, poleError("ln", "0")
	case a[0] < 0:
		return 0, branchCutError("ln", fstr(a[0]))
	}
	return math.Log(a[0]), nil
}

func gammaEval(a []float64) (float64, error) {
	if a[0] <= 0 && a[0] == math.Trunc(a[0]) {
		return 0, poleError("gamma", fstr(a[0]))
	}
	return math.Gamma(a[0]), nil
}

func foldEval(f func(a, b float64) float64) func([]float64) (float64, error) {
	return func(a []float64) (float64, error) {
		if len(a) == 0 {
			return 0, domainError("extremum", "", "no arguments")
		}
		r := a[0]
		for _, x := range a[1:] {
			r = f(r, x)
		}
		return r, nil
	}
}

// ============================================================
// Special values
// ============================================================

func exactUnary(f func(number.Number) (Expr, bool)) func([]Expr) (Expr, bool) {
	return func(args []Expr) (Expr, bool) {
		n, ok := isExactNum(args[0])
		if !ok {
			return nil, false
		}
		return f(n.val)
	}
}

func atZero(v Expr) func([]Expr) (Expr, bool) {
	return func(args []Expr) (Expr, bool) {
		if isNumEqual(args[0], 0) {
			return v, true
		}
		return nil, false
	}
}

func expSpecial(args []Expr) (Expr, bool) {
	switch {
	case isNumEqual(args[0], 0):
		return N(1), true
	case isNumEqual(args[0], 1):
		return E(), true
	}
	return nil, false
}

func lnSpecial(args []Expr) (Expr, bool) {
	switch a := args[0]; {
	case isNumEqual(a, 1):
		return N(0), true
	case isNumEqual(a, 0):
		return Undefined(), true
	case isConst(a, ConstE):
		return N(1), true
	}
	if p, ok := args[0].(*Pow); ok && isConst(p.base, ConstE) {
		return p.exp, true
	}
	return nil, false
}

// maxFactorialArg bounds exact gamma evaluation.
const maxFactorialArg = 1000

// gammaSpecial folds gamma at positive integers, at half-integers and at its
// poles.
func gammaSpecial(args []Expr) (Expr, bool) {
	n, ok := isExactNum(args[0])
	if !ok {
		return nil, false
	}
	if n.IsInteger() {
		k, ok := n.Int64()
		if !ok || k > maxFactorialArg {
			return nil, false
		}
		if k <= 0 {
			return Undefined(), true
		}
		return BigIntOf(new(big.Int).MulRange(1, k-1)), true
	}
	// gamma(m + 1/2) = (2m)! / (4^m m!) * sqrt(pi)
	twice, err := number.Mul(n.val, number.Int(2))
	if err != nil || !twice.IsInteger() {
		return nil, false
	}
	t, ok := twice.TryInt64()
	if !ok || t > 2*maxFactorialArg || t < 1 {
		return nil, false
	}
	m := (t - 1) / 2
	num := new(big.Int).MulRange(1, 2*m)
	fact := new(big.Int).MulRange(1, m)
	den := new(big.Int).Lsh(fact, uint(2*m))
	coeff := ratNum(new(big.Rat).SetFrac(num, den))
	return MulOf(coeff, SqrtOf(Pi())), true
}

// extremum folds max (dir 1) or min (dir -1) over exact arguments.
func extremum(dir int) func([]Expr) (Expr, bool) {
	return func(args []Expr) (Expr, bool) {
		if len(args) == 0 {
			return nil, false
		}
		var best number.Number
		for i, a := range args {
			n, ok := isExactNum(a)
			if !ok {
				return nil, false
			}
			if i == 0 || number.Cmp(n.val, best)*dir > 0 {
				best = n.val
			}
		}
		return NumOf(best), true
	}
}

// ============================================================
// Trigonometric values at rational multiples of pi
// ============================================================

// surd is the value p/q * sqrt(r) with r squarefree.
type surd struct{ p, q, r int64 }

func (s surd) expr() Expr {
	c := F(s.p, s.q)
	if s.p == 0 || s.r == 1 {
		return c
	}
	return MulOf(c, SqrtOf(N(s.r)))
}

// surdDiv returns a/b, or false when b is zero.
func surdDiv(a, b surd) (surd, bool) {
	if b.p == 0 {
		return surd{}, false
	}
	p, q, r := a.p*b.q, a.q*b.p*b.r, a.r*b.r
	for f := int64(2); f*f <= r; f++ {
		for r%(f*f) == 0 {
			r /= f * f
			p *= f
		}
	}
	if q < 0 {
		p, q = -p, -q
	}
	g := gcdInt64(abs64(p), q)
	if g > 1 {
		p, q = p/g, q/g
	}
	return surd{p, q, r}, true
}

func gcdInt64(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

// sinQuarter holds sin(k*pi/12) for the first quadrant.
var sinQuarter = map[int]surd{
	0: {0, 1, 1},
	2: {1, 2, 1},
	3: {1, 2, 2},
	4: {1, 2, 3},
	6: {1, 1, 1},
}

var one = surd{1, 1, 1}

// sinSurd returns sin(k*pi/12) when it has a closed form in the table.
func sinSurd(k int) (surd, bool) {
	k = ((k % 24) + 24) % 24
	sign := int64(1)
	if k >= 12 {
		sign, k = -1, k-12
	}
	if k > 6 {
		k = 12 - k
	}
	s, ok := sinQuarter[k]
	s.p *= sign
	return s, ok
}

func cosSurd(k int) (surd, bool) { return sinSurd(k + 6) }

// ratio returns num(k)/den(k); the second result is false when there is no
// table value and the third when the ratio has a pole.
func ratio(num, den func(int) (surd, bool)) func(int) (surd, bool, bool) {
	return func(k int) (surd, bool, bool) {
		a, ok := num(k)
		if !ok {
			return surd{}, false, false
		}
		b, ok := den(k)
		if !ok {
			return surd{}, false, false
		}
		r, ok := surdDiv(a, b)
		return r, true, !ok
	}
}

func constSurd(int) (surd, bool) { return one, true }

var (
	tanRatio = ratio(sinSurd, cosSurd)
	cotRatio = ratio(cosSurd, sinSurd)
	secRatio = ratio(constSurd, cosSurd)
	cscRatio = ratio(constSurd, sinSurd)
)

func plain(f func(int) (surd, bool)) func(int) (surd, bool, bool) {
	return func(k int) (surd, bool, bool) {
		s, ok := f(k)
		return s, ok, false
	}
}

func tanSurd(k int) (surd, bool) { s, ok, pole := tanRatio(k); return s, ok && !pole }
func cotSurd(k int) (surd, bool) { s, ok, pole := cotRatio(k); return s, ok && !pole }

// piTwelfths reads e as (k/12)*pi for an integer k.
func piTwelfths(e Expr) (int, bool) {
	var r number.Number
	switch v := e.(type) {
	case *Num:
		if !v.IsExact() || !v.IsZero() {
			return 0, false
		}
		return 0, true
	case *Const:
		if v.which != ConstPi {
			return 0, false
		}
		r = number.One
	case *Mul:
		if len(v.factors) != 2 || !isConst(v.factors[1], ConstPi) {
			return 0, false
		}
		n, ok := isExactNum(v.factors[0])
		if !ok {
			return 0, false
		}
		r = n.val
	default:
		return 0, false
	}
	m, err := number.Mul(r, number.Int(12))
	if err != nil || !m.IsInteger() {
		return 0, false
	}
	_, rem, err := number.IntDivMod(m, number.Int(24))
	if err != nil {
		return 0, false
	}
	k, ok := rem.TryInt64()
	return int(k), ok
}

func trigSpecial(table func(int) (surd, bool)) func([]Expr) (Expr, bool) {
	return trigSpecialWithPoles(plain(table))
}

func trigSpecialWithPoles(table func(int) (surd, bool, bool)) func([]Expr) (Expr, bool) {
	return func(args []Expr) (Expr, bool) {
		k, ok := piTwelfths(args[0])
		if !ok {
			return nil, false
		}
		s, ok, pole := table(k)
		if pole {
			return Undefined(), true
		}
		if !ok {
			return nil, false
		}
		return s.expr(), true
	}
}

// inverseTrigSpecial inverts table over k in [lo, hi], the principal branch.
func inverseTrigSpecial(table func(int) (surd, bool), lo, hi int) func([]Expr) (Expr, bool) {
	return func(args []Expr) (Expr, bool) {
		if !isNumericLiteral(args[0]) {
			return nil, false
		}
		for k := lo; k <= hi; k++ {
			s, ok := table(k)
			if !ok {
				continue
			}
			if Equal(s.expr(), args[0]) {
				return MulOf(F(int64(k), 12), Pi()), true
			}
		}
		return nil, false
	}
}

// isNumericLiteral reports whether e is built from exact numbers only.
func isNumericLiteral(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsExact()
	case *Mul, *Pow, *Add:
		for _, c := range children(v) {
			if !isNumericLiteral(c) {
				return false
			}
		}
		return true
	}
	return false
}
