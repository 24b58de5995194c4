package gocas_test

import (
	"math"
	"strings"
	"testing"

	"github.com/njchilds90/gocas"
)

// checkRoots substitutes every solution back into e and expects zero.
func checkRoots(t *testing.T, e gocas.Expr, x *gocas.Sym, r gocas.SolverResult) {
	t.Helper()
	for _, s := range r.Solutions {
		if res := gocas.Simplify(gocas.Substitute(e, x, s)); !gocas.IsZeroFast(res) {
			t.Errorf("%s at %s = %s: want 0, got %s", e, x, s, res)
		}
	}
}

func containsExpr(es []gocas.Expr, want gocas.Expr) bool {
	for _, e := range es {
		if gocas.Equal(e, want) {
			return true
		}
	}
	return false
}

func TestSolveLinear_Exact(t *testing.T) {
	x := gocas.S("x")
	e := gocas.AddOf(gocas.MulOf(gocas.N(2), x), gocas.N(4))
	r := gocas.SolveLinear(e, x)
	if r.Kind != gocas.Single || len(r.Solutions) != 1 {
		t.Fatalf("want a single solution, got %s", r)
	}
	if r.Solutions[0].String() != "-2" {
		t.Errorf("want -2, got %s", r.Solutions[0])
	}
	checkRoots(t, e, x, r)
}

func TestSolveLinear_Rational(t *testing.T) {
	x := gocas.S("x")
	r := gocas.SolveLinear(gocas.SubOf(gocas.MulOf(gocas.N(3), x), gocas.N(1)), x)
	if r.Kind != gocas.Single || !gocas.Equal(r.Solutions[0], gocas.F(1, 3)) {
		t.Errorf("want {1/3}, got %s", r)
	}
}

func TestSolveLinear_Relation(t *testing.T) {
	x := gocas.S("x")
	r := gocas.SolveLinear(gocas.Eq(gocas.MulOf(gocas.N(2), x), gocas.N(6)), x)
	if r.Kind != gocas.Single || r.Solutions[0].String() != "3" {
		t.Errorf("want {3}, got %s", r)
	}
}

func TestSolveLinear_Symbolic(t *testing.T) {
	x, a, b := gocas.S("x"), gocas.S("a"), gocas.S("b")
	e := gocas.AddOf(gocas.MulOf(a, x), b)
	r := gocas.SolveLinear(e, x)
	if r.Kind != gocas.Single {
		t.Fatalf("want a single solution, got %s", r)
	}
	checkRoots(t, e, x, r)
}

func TestSolveLinear_Degenerate(t *testing.T) {
	x := gocas.S("x")
	if r := gocas.SolveLinear(gocas.N(0), x); r.Kind != gocas.InfiniteSolutions {
		t.Errorf("0 = 0: want infinite_solutions, got %s", r.Kind)
	}
	if r := gocas.SolveLinear(gocas.N(3), x); r.Kind != gocas.NoSolution {
		t.Errorf("3 = 0: want no_solution, got %s", r.Kind)
	}
	if r := gocas.SolveLinear(gocas.SubOf(x, x), x); r.Kind != gocas.InfiniteSolutions {
		t.Errorf("x - x = 0: want infinite_solutions, got %s", r.Kind)
	}
}

func TestSolveQuadratic_TwoRoots(t *testing.T) {
	x := gocas.S("x")
	e := gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.MulOf(gocas.N(-5), x), gocas.N(6))
	r := gocas.SolveQuadratic(e, x)
	if r.Kind != gocas.Multiple || len(r.Solutions) != 2 {
		t.Fatalf("want two roots, got %s", r)
	}
	for _, want := range []gocas.Expr{gocas.N(2), gocas.N(3)} {
		if !containsExpr(r.Solutions, want) {
			t.Errorf("want root %s in %s", want, r)
		}
	}
	checkRoots(t, e, x, r)
}

func TestSolveQuadratic_DoubleRoot(t *testing.T) {
	x := gocas.S("x")
	e := gocas.PowOf(gocas.SubOf(x, gocas.N(1)), gocas.N(2))
	r := gocas.SolveQuadratic(gocas.Expand(e), x)
	if r.Kind != gocas.Single || r.Solutions[0].String() != "1" {
		t.Errorf("want {1}, got %s", r)
	}
}

func TestSolveQuadratic_Irrational(t *testing.T) {
	x := gocas.S("x")
	e := gocas.SubOf(gocas.PowOf(x, gocas.N(2)), gocas.N(2))
	r := gocas.SolveQuadratic(e, x)
	if len(r.Solutions) != 2 {
		t.Fatalf("want two roots, got %s", r)
	}
	if !containsExpr(r.Solutions, gocas.SqrtOf(gocas.N(2))) {
		t.Errorf("want sqrt(2) among %s", r)
	}
	checkRoots(t, e, x, r)
}

func TestSolveQuadratic_Complex(t *testing.T) {
	x := gocas.S("x")
	e := gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.N(1))
	r := gocas.SolveQuadratic(e, x)
	if len(r.Solutions) != 2 {
		t.Fatalf("want two roots, got %s", r)
	}
	if !containsExpr(r.Solutions, gocas.I()) || !containsExpr(r.Solutions, gocas.Neg(gocas.I())) {
		t.Errorf("want {i, -i}, got %s", r)
	}
	checkRoots(t, e, x, r)
}

func TestSolvePolynomial_RationalRoots(t *testing.T) {
	x := gocas.S("x")
	cubic := gocas.Expand(gocas.MulOf(
		gocas.SubOf(x, gocas.N(1)), gocas.SubOf(x, gocas.N(2)), gocas.SubOf(x, gocas.N(3)),
	))
	r := gocas.SolvePolynomial(cubic, x)
	if len(r.Solutions) != 3 {
		t.Fatalf("want three roots, got %s", r)
	}
	for _, k := range []int64{1, 2, 3} {
		if !containsExpr(r.Solutions, gocas.N(k)) {
			t.Errorf("want root %d in %s", k, r)
		}
	}
	checkRoots(t, cubic, x, r)
}

func TestSolvePolynomial_Biquadratic(t *testing.T) {
	x := gocas.S("x")
	e := gocas.AddOf(gocas.PowOf(x, gocas.N(4)), gocas.MulOf(gocas.N(-5), gocas.PowOf(x, gocas.N(2))), gocas.N(4))
	r := gocas.Solve(e, x)
	if len(r.Solutions) != 4 {
		t.Fatalf("want four roots, got %s", r)
	}
	for _, k := range []int64{-2, -1, 1, 2} {
		if !containsExpr(r.Solutions, gocas.N(k)) {
			t.Errorf("want root %d in %s", k, r)
		}
	}
}

func TestSolvePolynomial_CubeRoot(t *testing.T) {
	x := gocas.S("x")
	r := gocas.Solve(gocas.SubOf(gocas.PowOf(x, gocas.N(3)), gocas.N(2)), x)
	if len(r.Solutions) == 0 {
		t.Fatal("want at least one root")
	}
	f, err := gocas.EvaluateFloat(r.Solutions[0])
	if err != nil {
		t.Fatalf("real root %s: %v", r.Solutions[0], err)
	}
	if math.Abs(f-math.Cbrt(2)) > 1e-12 {
		t.Errorf("want %v, got %v", math.Cbrt(2), f)
	}
}

func TestSolvePolynomial_NoClosedForm(t *testing.T) {
	x := gocas.S("x")
	e := gocas.AddOf(gocas.PowOf(x, gocas.N(5)), gocas.Neg(x), gocas.N(-1))
	r := gocas.Solve(e, x)
	if len(r.Solutions) != 5 {
		t.Fatalf("want five placeholders, got %s", r)
	}
	for _, s := range r.Solutions {
		if !strings.HasPrefix(s.String(), "root_of(") {
			t.Errorf("want a root_of placeholder, got %s", s)
		}
	}
}

func TestSolve_WithSteps(t *testing.T) {
	x := gocas.S("x")
	e := gocas.SubOf(gocas.PowOf(x, gocas.N(2)), gocas.N(4))
	if r := gocas.Solve(e, x); len(r.Steps) != 0 {
		t.Errorf("steps should be off by default, got %v", r.Steps)
	}
	r := gocas.Solve(e, x, gocas.WithSteps())
	if len(r.Steps) == 0 {
		t.Error("want a step-by-step explanation")
	}
}

// ============================================================
// Linear systems
// ============================================================

func TestSolveSystem_Unique(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	eqs := []gocas.Expr{
		gocas.AddOf(gocas.MulOf(gocas.N(2), x), y, gocas.N(-5)),
		gocas.AddOf(x, gocas.Neg(y), gocas.N(-1)),
	}
	r := gocas.SolveSystem(eqs, []*gocas.Sym{x, y})
	if r.Kind != gocas.Multiple || len(r.Solutions) != 2 {
		t.Fatalf("want Multiple([2, 1]), got %s %s", r.Kind, r)
	}
	if r.Solutions[0].String() != "2" || r.Solutions[1].String() != "1" {
		t.Errorf("want {2, 1}, got %s", r)
	}
}

func TestSolveSystem_Relations(t *testing.T) {
	x, y, z := gocas.S("x"), gocas.S("y"), gocas.S("z")
	eqs := []gocas.Expr{
		gocas.Eq(gocas.AddOf(x, y, z), gocas.N(6)),
		gocas.Eq(gocas.SubOf(y, z), gocas.N(-1)),
		gocas.Eq(gocas.MulOf(gocas.N(2), x), gocas.N(2)),
	}
	r := gocas.SolveSystem(eqs, []*gocas.Sym{x, y, z})
	want := []string{"1", "2", "3"}
	if len(r.Solutions) != 3 {
		t.Fatalf("want three values, got %s", r)
	}
	for i := range want {
		if r.Solutions[i].String() != want[i] {
			t.Errorf("var %d: want %s, got %s", i, want[i], r.Solutions[i])
		}
	}
}

func TestSolveSystem_Inconsistent(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	eqs := []gocas.Expr{
		gocas.SubOf(gocas.AddOf(x, y), gocas.N(1)),
		gocas.SubOf(gocas.AddOf(x, y), gocas.N(2)),
	}
	if r := gocas.SolveSystem(eqs, []*gocas.Sym{x, y}); r.Kind != gocas.NoSolution {
		t.Errorf("want no_solution, got %s", r.Kind)
	}
}

func TestSolveSystem_Dependent(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	eqs := []gocas.Expr{
		gocas.SubOf(gocas.AddOf(x, y), gocas.N(1)),
		gocas.SubOf(gocas.AddOf(gocas.MulOf(gocas.N(2), x), gocas.MulOf(gocas.N(2), y)), gocas.N(2)),
	}
	if r := gocas.SolveSystem(eqs, []*gocas.Sym{x, y}); r.Kind != gocas.InfiniteSolutions {
		t.Errorf("want infinite_solutions, got %s", r.Kind)
	}
}

func TestSolveSystem_NotSquare(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	r := gocas.SolveSystem([]gocas.Expr{gocas.AddOf(x, y)}, []*gocas.Sym{x, y}, gocas.WithSteps())
	if r.Kind != gocas.NoSolution {
		t.Errorf("want no_solution, got %s", r.Kind)
	}
	if len(r.Steps) == 0 {
		t.Error("want the reason recorded in the steps")
	}
}

func TestSolveSystem_Nonlinear(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	eqs := []gocas.Expr{gocas.MulOf(x, y), gocas.AddOf(x, y)}
	if r := gocas.SolveSystem(eqs, []*gocas.Sym{x, y}); r.Kind != gocas.NoSolution {
		t.Errorf("want no_solution, got %s", r.Kind)
	}
}

func TestResultKindString(t *testing.T) {
	tests := map[gocas.ResultKind]string{
		gocas.Single:            "single",
		gocas.Multiple:          "multiple",
		gocas.NoSolution:        "no_solution",
		gocas.InfiniteSolutions: "infinite_solutions",
	}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("want %s, got %s", want, k.String())
		}
	}
}
