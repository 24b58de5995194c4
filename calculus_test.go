package gocas_test

import (
	"math"
	"strings"
	"testing"

	"github.com/njchilds90/gocas"
)

var samplePoints = []float64{0.3, 0.7, 1.3}

// sameFunction checks that got and want agree numerically at samplePoints.
func sameFunction(t *testing.T, got, want gocas.Expr, x *gocas.Sym) {
	t.Helper()
	for _, p := range samplePoints {
		env := map[string]gocas.Expr{x.String(): gocas.NFloat(p)}
		g, err := gocas.EvaluateFloatWith(got, env)
		if err != nil {
			t.Errorf("evaluate %s at %v: %v", got, p, err)
			return
		}
		w, err := gocas.EvaluateFloatWith(want, env)
		if err != nil {
			t.Errorf("evaluate %s at %v: %v", want, p, err)
			return
		}
		if math.Abs(g-w) > 1e-9*math.Max(1, math.Abs(w)) {
			t.Errorf("at %s = %v: want %v (%s), got %v (%s)", x, p, w, want, g, got)
			return
		}
	}
}

// ============================================================
// Derivatives
// ============================================================

func TestDerivative_Constant(t *testing.T) {
	x := gocas.S("x")
	for _, c := range []gocas.Expr{gocas.N(5), gocas.Pi(), gocas.S("y"), gocas.SinOf(gocas.S("y"))} {
		if got := gocas.Derivative(c, x); !gocas.IsZeroFast(got) {
			t.Errorf("d/dx %s: want 0, got %s", c, got)
		}
	}
}

func TestDerivative_Variable(t *testing.T) {
	x := gocas.S("x")
	if got := gocas.Derivative(x, x); got.String() != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestDerivative_PowerRule(t *testing.T) {
	x := gocas.S("x")
	got := gocas.Derivative(gocas.PowOf(x, gocas.N(3)), x)
	want := gocas.MulOf(gocas.N(3), gocas.PowOf(x, gocas.N(2)))
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestDerivative_Functions(t *testing.T) {
	x := gocas.S("x")
	tests := []struct {
		name string
		f    gocas.Expr
		want gocas.Expr
	}{
		{"sin", gocas.SinOf(x), gocas.CosOf(x)},
		{"cos", gocas.CosOf(x), gocas.Neg(gocas.SinOf(x))},
		{"exp", gocas.ExpOf(x), gocas.ExpOf(x)},
		{"ln", gocas.LnOf(x), gocas.PowOf(x, gocas.N(-1))},
	}
	for _, tt := range tests {
		got := gocas.Derivative(tt.f, x)
		want := gocas.Simplify(tt.want)
		if !gocas.Equal(got, want) {
			t.Errorf("%s: want %s, got %s", tt.name, want, got)
		}
	}
}

func TestDerivative_ChainAndProductRules(t *testing.T) {
	x := gocas.S("x")
	tests := []struct {
		f, want gocas.Expr
	}{
		{gocas.ExpOf(gocas.MulOf(gocas.N(2), x)), gocas.MulOf(gocas.N(2), gocas.ExpOf(gocas.MulOf(gocas.N(2), x)))},
		{gocas.MulOf(x, gocas.SinOf(x)), gocas.AddOf(gocas.SinOf(x), gocas.MulOf(x, gocas.CosOf(x)))},
		{gocas.SinOf(gocas.PowOf(x, gocas.N(2))), gocas.MulOf(gocas.N(2), x, gocas.CosOf(gocas.PowOf(x, gocas.N(2))))},
		{gocas.PowOf(x, x), gocas.MulOf(gocas.PowOf(x, x), gocas.AddOf(gocas.LnOf(x), gocas.N(1)))},
		{gocas.AtanOf(x), gocas.PowOf(gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.N(1)), gocas.N(-1))},
	}
	for _, tt := range tests {
		sameFunction(t, gocas.Derivative(tt.f, x), tt.want, x)
	}
}

func TestDerivativeN(t *testing.T) {
	x := gocas.S("x")
	got := gocas.DerivativeN(gocas.PowOf(x, gocas.N(3)), x, 2)
	want := gocas.MulOf(gocas.N(6), x)
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestDerivativeWith_DependentSymbol(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	got := gocas.DerivativeWith(gocas.PowOf(y, gocas.N(2)), x, y)
	if !strings.Contains(got.String(), "Derivative(y, x)") {
		t.Errorf("want an unevaluated dy/dx factor, got %s", got)
	}
}

func TestImplicitDerivative_Circle(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	circle := gocas.Eq(gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.PowOf(y, gocas.N(2))), gocas.N(1))
	dydx := gocas.ImplicitDerivative(circle, y, x)
	got, err := gocas.EvaluateFloatWith(dydx, map[string]gocas.Expr{"x": gocas.F(3, 5), "y": gocas.F(4, 5)})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got+0.75) > 1e-12 {
		t.Errorf("want -0.75, got %v (%s)", got, dydx)
	}
}

// ============================================================
// Integration
// ============================================================

func TestIntegrate_Variable(t *testing.T) {
	x := gocas.S("x")
	got := gocas.Integrate(x, x)
	want := gocas.MulOf(gocas.F(1, 2), gocas.PowOf(x, gocas.N(2)))
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
	if back := gocas.Derivative(got, x); !gocas.Equal(back, x) {
		t.Errorf("d/dx %s: want x, got %s", got, back)
	}
}

func TestIntegrate_Constant(t *testing.T) {
	x := gocas.S("x")
	got := gocas.Integrate(gocas.N(5), x)
	want := gocas.MulOf(gocas.N(5), x)
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestIntegrate_Power(t *testing.T) {
	x := gocas.S("x")
	got := gocas.Integrate(gocas.PowOf(x, gocas.N(3)), x)
	want := gocas.MulOf(gocas.F(1, 4), gocas.PowOf(x, gocas.N(4)))
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

// TestIntegrate_FundamentalTheorem differentiates every closed form the
// integrator finds and compares it with the integrand.
func TestIntegrate_FundamentalTheorem(t *testing.T) {
	x := gocas.S("x")
	one := gocas.N(1)
	integrands := map[string]gocas.Expr{
		"polynomial":   gocas.AddOf(gocas.MulOf(gocas.N(3), gocas.PowOf(x, gocas.N(2))), gocas.MulOf(gocas.N(-2), x), one),
		"sin":          gocas.SinOf(x),
		"cos(2x)":      gocas.CosOf(gocas.MulOf(gocas.N(2), x)),
		"exp(3x)":      gocas.ExpOf(gocas.MulOf(gocas.N(3), x)),
		"1/x":          gocas.PowOf(x, gocas.N(-1)),
		"sqrt":         gocas.SqrtOf(x),
		"ln":           gocas.LnOf(x),
		"x*exp(x)":     gocas.MulOf(x, gocas.ExpOf(x)),
		"x*cos(x)":     gocas.MulOf(x, gocas.CosOf(x)),
		"1/(x^2+1)":    gocas.DivOf(one, gocas.AddOf(gocas.PowOf(x, gocas.N(2)), one)),
		"sin^2":        gocas.PowOf(gocas.SinOf(x), gocas.N(2)),
		"sin*cos":      gocas.MulOf(gocas.SinOf(x), gocas.CosOf(x)),
		"partial frac": gocas.DivOf(one, gocas.MulOf(gocas.AddOf(x, one), gocas.AddOf(x, gocas.N(2)))),
		"exp*sin":      gocas.MulOf(gocas.ExpOf(x), gocas.SinOf(x)),
		"sin^3":        gocas.PowOf(gocas.SinOf(x), gocas.N(3)),
		"sin^3*cos^2":  gocas.MulOf(gocas.PowOf(gocas.SinOf(x), gocas.N(3)), gocas.PowOf(gocas.CosOf(x), gocas.N(2))),
		"tan^3":        gocas.PowOf(gocas.TanOf(x), gocas.N(3)),
		"tan^4":        gocas.PowOf(gocas.TanOf(x), gocas.N(4)),
		"cot^3":        gocas.PowOf(gocas.CotOf(x), gocas.N(3)),
		"sec^3":        gocas.PowOf(gocas.SecOf(x), gocas.N(3)),
		"sec^4":        gocas.PowOf(gocas.SecOf(x), gocas.N(4)),
		"csc^3":        gocas.PowOf(gocas.CscOf(x), gocas.N(3)),
		"tan(2x)^2":    gocas.PowOf(gocas.TanOf(gocas.MulOf(gocas.N(2), x)), gocas.N(2)),
	}
	for name, f := range integrands {
		anti, ok := gocas.TryIntegrate(f, x)
		if !ok {
			t.Errorf("%s: no closed form for %s", name, f)
			continue
		}
		sameFunction(t, gocas.Derivative(anti, x), f, x)
	}
}

func TestIntegrate_Unevaluated(t *testing.T) {
	x := gocas.S("x")
	f := gocas.ExpOf(gocas.PowOf(x, gocas.N(2)))
	if _, ok := gocas.TryIntegrate(f, x); ok {
		t.Fatalf("exp(x^2) has no elementary antiderivative")
	}
	got := gocas.Integrate(f, x)
	if !strings.HasPrefix(got.String(), "Integral(") {
		t.Errorf("want an unevaluated integral, got %s", got)
	}
	if back := gocas.Derivative(got, x); !gocas.Equal(back, f) {
		t.Errorf("d/dx of the unevaluated integral: want %s, got %s", f, back)
	}
}

func TestDefiniteIntegral(t *testing.T) {
	x := gocas.S("x")
	got := gocas.DefiniteIntegral(gocas.PowOf(x, gocas.N(2)), x, gocas.N(0), gocas.N(3))
	if got.String() != "9" {
		t.Errorf("want 9, got %s", got)
	}
	area := gocas.DefiniteIntegral(gocas.SinOf(x), x, gocas.N(0), gocas.Pi())
	f, err := gocas.EvaluateFloat(area)
	if err != nil || math.Abs(f-2) > 1e-12 {
		t.Errorf("want 2, got %s (%v)", area, err)
	}
}

func TestDefiniteIntegrateNumeric(t *testing.T) {
	x := gocas.S("x")
	got, err := gocas.DefiniteIntegrateNumeric(gocas.ExpOf(x), x, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-(math.E-1)) > 1e-10 {
		t.Errorf("want %v, got %v", math.E-1, got)
	}
}

func TestDefiniteIntegrateNumeric_FreeSymbol(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	if _, err := gocas.DefiniteIntegrateNumeric(gocas.MulOf(x, y), x, 0, 1); err == nil {
		t.Error("want an error for an unbound symbol")
	}
}

// ============================================================
// Series and limits
// ============================================================

func TestMaclaurinSeries_Exp(t *testing.T) {
	x := gocas.S("x")
	got := gocas.MaclaurinSeries(gocas.ExpOf(x), x, 3)
	want := gocas.Simplify(gocas.AddOf(
		gocas.N(1), x,
		gocas.MulOf(gocas.F(1, 2), gocas.PowOf(x, gocas.N(2))),
		gocas.MulOf(gocas.F(1, 6), gocas.PowOf(x, gocas.N(3))),
	))
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestMaclaurinSeries_Sin(t *testing.T) {
	x := gocas.S("x")
	got := gocas.MaclaurinSeries(gocas.SinOf(x), x, 5)
	want := gocas.AddOf(
		x,
		gocas.MulOf(gocas.F(-1, 6), gocas.PowOf(x, gocas.N(3))),
		gocas.MulOf(gocas.F(1, 120), gocas.PowOf(x, gocas.N(5))),
	)
	sameFunction(t, got, want, x)
}

func TestTaylorSeries_AroundPoint(t *testing.T) {
	x := gocas.S("x")
	got := gocas.TaylorSeries(gocas.PowOf(x, gocas.N(2)), x, gocas.N(1), 2)
	sameFunction(t, got, gocas.PowOf(x, gocas.N(2)), x)
}

func TestTaylorSeriesWithRemainder(t *testing.T) {
	x := gocas.S("x")
	got := gocas.MaclaurinSeriesWithRemainder(gocas.ExpOf(x), x, 3).String()
	if !strings.Contains(got, "O(x^4)") {
		t.Errorf("want an O(x^4) term, got %s", got)
	}
}

func TestLimit(t *testing.T) {
	x := gocas.S("x")
	one := gocas.N(1)
	tests := []struct {
		name  string
		e     gocas.Expr
		point gocas.Expr
		want  gocas.Expr
	}{
		{"sin(x)/x", gocas.DivOf(gocas.SinOf(x), x), gocas.N(0), one},
		{"(1-cos x)/x^2", gocas.DivOf(gocas.SubOf(one, gocas.CosOf(x)), gocas.PowOf(x, gocas.N(2))), gocas.N(0), gocas.F(1, 2)},
		{"removable", gocas.DivOf(gocas.SubOf(gocas.PowOf(x, gocas.N(2)), one), gocas.SubOf(x, one)), one, gocas.N(2)},
		{"continuous", gocas.AddOf(gocas.PowOf(x, gocas.N(2)), one), gocas.N(2), gocas.N(5)},
		{"rational at infinity", gocas.DivOf(
			gocas.AddOf(gocas.MulOf(gocas.N(2), gocas.PowOf(x, gocas.N(2))), one),
			gocas.SubOf(gocas.PowOf(x, gocas.N(2)), gocas.N(3))), gocas.Infinity(), gocas.N(2)},
		{"decay at infinity", gocas.PowOf(x, gocas.N(-1)), gocas.Infinity(), gocas.N(0)},
	}
	for _, tt := range tests {
		r := gocas.Limit(tt.e, x, tt.point)
		if !r.Success {
			t.Errorf("%s: limit failed: %s", tt.name, r.Error)
			continue
		}
		if !gocas.Equal(gocas.Simplify(r.Value), tt.want) {
			t.Errorf("%s: want %s, got %s", tt.name, tt.want, r.Value)
		}
	}
}

func TestLimit_TwoSidedPole(t *testing.T) {
	x := gocas.S("x")
	r := gocas.Limit(gocas.PowOf(x, gocas.N(-1)), x, gocas.N(0))
	if r.Success {
		t.Errorf("1/x at 0 has no two-sided limit, got %s", r.Value)
	}
	if r.Error == "" {
		t.Error("want an error message")
	}
}

// ============================================================
// Vector calculus
// ============================================================

func TestGradient(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	f := gocas.MulOf(gocas.PowOf(x, gocas.N(2)), y)
	got := gocas.Gradient(f, []*gocas.Sym{x, y})
	want := []gocas.Expr{gocas.MulOf(gocas.N(2), x, y), gocas.PowOf(x, gocas.N(2))}
	for i := range want {
		if !gocas.Equal(got[i], want[i]) {
			t.Errorf("component %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestHessian_Symmetric(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	h := gocas.Hessian(gocas.MulOf(gocas.PowOf(x, gocas.N(2)), y), []*gocas.Sym{x, y})
	if !gocas.Equal(h.Get(0, 1), h.Get(1, 0)) {
		t.Errorf("mixed partials differ: %s vs %s", h.Get(0, 1), h.Get(1, 0))
	}
	if !gocas.Equal(h.Get(0, 0), gocas.MulOf(gocas.N(2), y)) {
		t.Errorf("want 2*y, got %s", h.Get(0, 0))
	}
	if !gocas.IsZeroFast(h.Get(1, 1)) {
		t.Errorf("want 0, got %s", h.Get(1, 1))
	}
	if h.Kind() != gocas.SymmetricMatrix {
		t.Errorf("want a symmetric matrix, got %s", h.Kind())
	}
}

func TestJacobian(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	j := gocas.Jacobian([]gocas.Expr{gocas.MulOf(x, y), gocas.AddOf(x, y)}, []*gocas.Sym{x, y})
	want := [][]gocas.Expr{{y, x}, {gocas.N(1), gocas.N(1)}}
	for r := range want {
		for c := range want[r] {
			if !gocas.Equal(j.Get(r, c), want[r][c]) {
				t.Errorf("J[%d][%d]: want %s, got %s", r, c, want[r][c], j.Get(r, c))
			}
		}
	}
}

func TestLaplacian(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	got := gocas.Laplacian(gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.PowOf(y, gocas.N(2))), []*gocas.Sym{x, y})
	if got.String() != "4" {
		t.Errorf("want 4, got %s", got)
	}
}

func TestDivergence(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	got, err := gocas.Divergence([]gocas.Expr{x, gocas.MulOf(gocas.N(3), y)}, []*gocas.Sym{x, y})
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "4" {
		t.Errorf("want 4, got %s", got)
	}
	if _, err := gocas.Divergence([]gocas.Expr{x}, []*gocas.Sym{x, y}); err == nil {
		t.Error("want an error for mismatched lengths")
	}
}

func TestCurl(t *testing.T) {
	x, y, z := gocas.S("x"), gocas.S("y"), gocas.S("z")
	got := gocas.Curl([3]gocas.Expr{gocas.Neg(y), x, gocas.N(0)}, [3]*gocas.Sym{x, y, z})
	want := []string{"0", "0", "2"}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("component %d: want %s, got %s", i, want[i], got[i])
		}
	}
}
