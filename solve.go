package gocas

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/njchilds90/gocas/internal/densepoly"
	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Solver results
// ============================================================

// ResultKind classifies a SolverResult.
type ResultKind uint8

const (
	Single ResultKind = iota
	Multiple
	NoSolution
	InfiniteSolutions
)

var resultKindNames = [...]string{
	Single:            "single",
	Multiple:          "multiple",
	NoSolution:        "no_solution",
	InfiniteSolutions: "infinite_solutions",
}

func (k ResultKind) String() string { return resultKindNames[k] }

// SolverResult is the outcome of an equation solver. Steps is only filled
// when the caller asked for an explanation with WithSteps.
type SolverResult struct {
	Kind      ResultKind
	Solutions []Expr
	Steps     []string
}

func (r SolverResult) String() string {
	switch r.Kind {
	case NoSolution:
		return "no solution"
	case InfiniteSolutions:
		return "infinitely many solutions"
	}
	parts := make([]string, len(r.Solutions))
	for i, s := range r.Solutions {
		parts[i] = s.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SolveOption configures a solver call.
type SolveOption func(*solveOptions)

type solveOptions struct {
	steps bool
}

// WithSteps records a step-by-step explanation in the result.
func WithSteps() SolveOption { return func(o *solveOptions) { o.steps = true } }

type stepLog struct {
	on    bool
	lines []string
}

func newStepLog(opts []SolveOption) *stepLog {
	var o solveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &stepLog{on: o.steps}
}

func (s *stepLog) addf(format string, args ...any) {
	if s.on {
		s.lines = append(s.lines, fmt.Sprintf(format, args...))
	}
}

func (s *stepLog) result(kind ResultKind, sols ...Expr) SolverResult {
	return SolverResult{Kind: kind, Solutions: sols, Steps: s.lines}
}

// roots picks Single or Multiple by count.
func (s *stepLog) roots(sols []Expr) SolverResult {
	if len(sols) == 1 {
		return s.result(Single, sols...)
	}
	return s.result(Multiple, sols...)
}

// residual turns lhs = rhs into lhs - rhs; other expressions are read as
// expr = 0.
func residual(e Expr) Expr {
	if r, ok := e.(*Relation); ok {
		return Simplify(SubOf(r.lhs, r.rhs))
	}
	return Simplify(e)
}

// RootOf is the placeholder for the k-th root of p in v that has no closed
// form.
func RootOf(p Expr, v *Sym, k int) Expr { return FuncOf("root_of", p, v, N(int64(k))) }

// signOf reports the sign of a numeric expression.
func signOf(e Expr) (int, bool) {
	if n, ok := e.(*Num); ok {
		return n.val.Sign(), true
	}
	f, ok := floatValue(e)
	switch {
	case !ok:
		return 0, false
	case f > 0:
		return 1, true
	case f < 0:
		return -1, true
	}
	return 0, true
}

// ============================================================
// Linear and quadratic
// ============================================================

// SolveLinear solves a*v + b = 0. a and b are read off as the derivative
// and the value at v = 0.
func SolveLinear(e Expr, v *Sym, opts ...SolveOption) SolverResult {
	return solveLinear(residual(e), v, newStepLog(opts))
}

func solveLinear(f Expr, v *Sym, st *stepLog) SolverResult {
	d := Derivative(f, v)
	if Has(d, v) {
		st.addf("%s is not linear in %s", f, v)
		return solvePolynomial(f, v, st)
	}
	a, b := d, Substitute(f, v, N(0))
	st.addf("write %s = 0 as a*%s + b with a = %s and b = %s", f, v, a, b)
	if IsZero(a) {
		if IsZero(b) {
			st.addf("0 = 0 holds for every %s", v)
			return st.result(InfiniteSolutions)
		}
		st.addf("0 = %s is inconsistent", b)
		return st.result(NoSolution)
	}
	x, err := divExact("solve", Neg(b), a)
	if err != nil {
		return st.result(NoSolution)
	}
	st.addf("%s = -b/a = %s", v, x)
	return st.result(Single, x)
}

// SolveQuadratic solves a*v^2 + b*v + c = 0 through the discriminant. A
// negative discriminant gives the complex pair.
func SolveQuadratic(e Expr, v *Sym, opts ...SolveOption) SolverResult {
	return solveQuadratic(residual(e), v, newStepLog(opts))
}

func solveQuadratic(f Expr, v *Sym, st *stepLog) SolverResult {
	c, ok := coeffList(f, v)
	if !ok || len(c) > 3 {
		return solvePolynomial(f, v, st)
	}
	for len(c) < 3 {
		c = append(c, N(0))
	}
	if IsZero(c[2]) {
		st.addf("leading coefficient vanishes; the equation is linear")
		return solveLinear(f, v, st)
	}
	return st.roots(quadraticRoots(c[2], c[1], c[0], st))
}

func quadraticRoots(a, b, c Expr, st *stepLog) []Expr {
	disc := Simplify(SubOf(PowOf(b, N(2)), MulOf(N(4), a, c)))
	st.addf("discriminant b^2 - 4ac = %s", disc)
	twoA := MulOf(N(2), a)
	re := DivOf(Neg(b), twoA)
	sign, known := signOf(disc)
	switch {
	case known && sign == 0:
		st.addf("double root -b/(2a)")
		return []Expr{Simplify(re)}
	case known && sign < 0:
		st.addf("negative discriminant: complex conjugate roots")
		im := DivOf(SqrtOf(Neg(disc)), twoA)
		return []Expr{
			Simplify(AddOf(re, MulOf(I(), im))),
			Simplify(SubOf(re, MulOf(I(), im))),
		}
	}
	sq := SqrtOf(disc)
	r1 := Simplify(DivOf(AddOf(Neg(b), sq), twoA))
	r2 := Simplify(DivOf(SubOf(Neg(b), sq), twoA))
	if Equal(r1, r2) {
		return []Expr{r1}
	}
	return []Expr{r1, r2}
}

// ============================================================
// Polynomials
// ============================================================

// SolvePolynomial finds the roots of a polynomial equation in v. Rational
// roots are split off first; what remains is solved in closed form up to
// degree four (Cardano, Ferrari), numerically for float coefficients, and
// otherwise returned as RootOf placeholders.
func SolvePolynomial(e Expr, v *Sym, opts ...SolveOption) SolverResult {
	return solvePolynomial(residual(e), v, newStepLog(opts))
}

// Solve is SolvePolynomial under its short name.
func Solve(e Expr, v *Sym, opts ...SolveOption) SolverResult { return SolvePolynomial(e, v, opts...) }

func solvePolynomial(f Expr, v *Sym, st *stepLog) SolverResult {
	c, ok := coeffList(f, v)
	if !ok {
		st.addf("%s is not a polynomial in %s", f, v)
		return st.result(Single, RootOf(f, v, 1))
	}
	deg := len(c) - 1
	switch deg {
	case 0:
		if IsZero(c[0]) {
			return st.result(InfiniteSolutions)
		}
		return st.result(NoSolution)
	case 1:
		return solveLinear(f, v, st)
	}
	if p, ok := toRatPoly(f, v); ok {
		if roots, rest := densepoly.RationalRoots(p); len(roots) > 0 {
			sols := distinctRoots(roots)
			st.addf("rational roots by the rational root theorem: %s", joinExprs(sols))
			if rest.Degree() >= 1 {
				st.addf("remaining factor %s", fromRatPoly(rest, v))
				sub := solvePolynomial(fromRatPoly(rest, v), v, st)
				sols = append(sols, sub.Solutions...)
			}
			return st.roots(sols)
		}
	}
	var sols []Expr
	switch deg {
	case 2:
		sols = quadraticRoots(c[2], c[1], c[0], st)
	case 3:
		sols = cubicRoots(c, st)
	case 4:
		sols = quarticRoots(c, st)
	}
	if len(sols) > 0 {
		return st.roots(sols)
	}
	if sols, ok := eigenRoots(c); ok {
		st.addf("eigenvalues of the companion matrix")
		return st.roots(sols)
	}
	st.addf("no closed form for degree %d", deg)
	sols = make([]Expr, deg)
	for k := range sols {
		sols[k] = RootOf(f, v, k+1)
	}
	return st.roots(sols)
}

func distinctRoots(roots []*big.Rat) []Expr {
	var out []Expr
	for i, r := range roots {
		if i > 0 && r.Cmp(roots[i-1]) == 0 {
			continue
		}
		out = append(out, ratNum(r))
	}
	return out
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// realCbrt is the real cube root for numeric arguments and the principal
// one otherwise.
func realCbrt(x Expr) Expr {
	x = Simplify(x)
	if s, ok := signOf(x); ok && s < 0 {
		return Simplify(Neg(PowOf(Neg(x), F(1, 3))))
	}
	return Simplify(PowOf(x, F(1, 3)))
}

// cubicRoots applies Cardano's method to c[3]*v^3 + ... + c[0]. Three real
// roots use the trigonometric form.
func cubicRoots(c []Expr, st *stepLog) []Expr {
	a := c[3]
	b1, c1, d1 := DivOf(c[2], a), DivOf(c[1], a), DivOf(c[0], a)
	p := Simplify(SubOf(c1, DivOf(PowOf(b1, N(2)), N(3))))
	q := Simplify(AddOf(MulOf(F(2, 27), PowOf(b1, N(3))), Neg(DivOf(MulOf(b1, c1), N(3))), d1))
	shift := Simplify(DivOf(Neg(b1), N(3)))
	st.addf("depressed cubic t^3 + (%s)t + (%s) with x = t + %s", p, q, shift)
	if IsZero(p) && IsZero(q) {
		return []Expr{shift}
	}
	disc := Simplify(Neg(AddOf(MulOf(N(4), PowOf(p, N(3))), MulOf(N(27), PowOf(q, N(2))))))
	sign, known := signOf(disc)
	switch {
	case known && sign > 0:
		st.addf("positive discriminant: three real roots in trigonometric form")
		m := MulOf(N(2), SqrtOf(DivOf(Neg(p), N(3))))
		theta := DivOf(AcosOf(DivOf(MulOf(N(3), q), MulOf(p, m))), N(3))
		out := make([]Expr, 3)
		for k := range out {
			out[k] = Simplify(AddOf(MulOf(m, CosOf(SubOf(theta, MulOf(F(int64(2*k), 3), Pi())))), shift))
		}
		return out
	case known && sign == 0:
		st.addf("zero discriminant: a repeated root")
		return []Expr{
			Simplify(AddOf(DivOf(MulOf(N(3), q), p), shift)),
			Simplify(AddOf(DivOf(MulOf(N(-3), q), MulOf(N(2), p)), shift)),
		}
	}
	st.addf("Cardano: one real root and a conjugate pair")
	s := SqrtOf(AddOf(DivOf(PowOf(q, N(2)), N(4)), DivOf(PowOf(p, N(3)), N(27))))
	u := realCbrt(AddOf(DivOf(Neg(q), N(2)), s))
	if IsZero(u) {
		u = realCbrt(SubOf(DivOf(Neg(q), N(2)), s))
	}
	w := Simplify(DivOf(Neg(p), MulOf(N(3), u)))
	re := AddOf(DivOf(Neg(AddOf(u, w)), N(2)), shift)
	im := MulOf(DivOf(SqrtOf(N(3)), N(2)), SubOf(u, w))
	return []Expr{
		Simplify(AddOf(u, w, shift)),
		Simplify(AddOf(re, MulOf(I(), im))),
		Simplify(SubOf(re, MulOf(I(), im))),
	}
}

// quarticRoots applies Ferrari's method through the resolvent cubic.
func quarticRoots(c []Expr, st *stepLog) []Expr {
	a := c[4]
	b, cc, d, e := DivOf(c[3], a), DivOf(c[2], a), DivOf(c[1], a), DivOf(c[0], a)
	p := Simplify(SubOf(cc, MulOf(F(3, 8), PowOf(b, N(2)))))
	q := Simplify(AddOf(d, Neg(DivOf(MulOf(b, cc), N(2))), DivOf(PowOf(b, N(3)), N(8))))
	r := Simplify(AddOf(e, Neg(DivOf(MulOf(b, d), N(4))), DivOf(MulOf(PowOf(b, N(2)), cc), N(16)), MulOf(F(-3, 256), PowOf(b, N(4)))))
	shift := Simplify(DivOf(Neg(b), N(4)))
	st.addf("depressed quartic y^4 + (%s)y^2 + (%s)y + (%s) with x = y + %s", p, q, r, shift)
	var ys []Expr
	if IsZero(q) {
		st.addf("biquadratic: solve z^2 + pz + r = 0 with z = y^2")
		for _, z := range quadraticRoots(N(1), p, r, st) {
			ys = append(ys, SqrtOf(z), Neg(SqrtOf(z)))
		}
	} else {
		m, ok := resolventRoot(p, q, r, st)
		if !ok {
			return nil
		}
		s := SqrtOf(MulOf(N(2), m))
		for _, s1 := range []int64{1, -1} {
			inner := Neg(AddOf(MulOf(N(2), p), MulOf(N(2), m), MulOf(N(s1*2), q, PowOf(s, N(-1)))))
			for _, s2 := range []int64{1, -1} {
				ys = append(ys, DivOf(AddOf(MulOf(N(s1), s), MulOf(N(s2), SqrtOf(inner))), N(2)))
			}
		}
	}
	var out []Expr
	for _, y := range ys {
		x := Simplify(AddOf(y, shift))
		dup := false
		for _, o := range out {
			if Equal(o, x) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, x)
		}
	}
	return out
}

// resolventRoot returns a nonzero root of 8m^3 + 8pm^2 + (2p^2 - 8r)m - q^2.
func resolventRoot(p, q, r Expr, st *stepLog) (Expr, bool) {
	m := freshSymbol("m", p, q, r)
	res := AddOf(
		MulOf(N(8), PowOf(m, N(3))),
		MulOf(N(8), p, PowOf(m, N(2))),
		MulOf(SubOf(MulOf(N(2), PowOf(p, N(2))), MulOf(N(8), r)), m),
		Neg(PowOf(q, N(2))),
	)
	st.addf("resolvent cubic %s = 0", Simplify(res))
	sub := solvePolynomial(Simplify(res), m, &stepLog{})
	var fallback Expr
	for _, s := range sub.Solutions {
		if IsZero(s) || Has(s, m) {
			continue
		}
		if _, ok := s.(*Num); ok {
			return s, true
		}
		if fallback == nil {
			fallback = s
		}
	}
	return fallback, fallback != nil
}

// eigenRoots finds the roots of a float polynomial as the eigenvalues of
// its companion matrix.
func eigenRoots(c []Expr) ([]Expr, bool) {
	n := len(c) - 1
	fs := make([]float64, n+1)
	hasFloat := false
	for i, x := range c {
		num, ok := x.(*Num)
		if !ok {
			return nil, false
		}
		hasFloat = hasFloat || !num.IsExact()
		fs[i] = num.Float64()
	}
	if !hasFloat || fs[n] == 0 {
		return nil, false
	}
	comp := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}
	for i := 0; i < n; i++ {
		comp.Set(i, n-1, -fs[i]/fs[n])
	}
	var eig mat.Eigen
	if !eig.Factorize(comp, mat.EigenNone) {
		return nil, false
	}
	vals := eig.Values(nil)
	sort.Slice(vals, func(i, j int) bool {
		if real(vals[i]) != real(vals[j]) {
			return real(vals[i]) < real(vals[j])
		}
		return imag(vals[i]) < imag(vals[j])
	})
	out := make([]Expr, len(vals))
	for i, z := range vals {
		if math.Abs(imag(z)) < 1e-12*math.Max(1, math.Abs(real(z))) {
			out[i] = NFloat(real(z))
			continue
		}
		out[i] = Simplify(AddOf(NFloat(real(z)), MulOf(NFloat(imag(z)), I())))
	}
	return out, true
}
