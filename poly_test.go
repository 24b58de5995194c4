package gocas_test

import (
	"math/big"
	"testing"

	"github.com/njchilds90/gocas"
)

func sameExpr(t *testing.T, what string, got, want gocas.Expr) {
	t.Helper()
	if !gocas.IsZero(gocas.SubOf(got, want)) {
		t.Errorf("%s: want %s, got %s", what, want, got)
	}
}

func TestClassify(t *testing.T) {
	x, a := gocas.S("x"), gocas.S("a")
	big70 := new(big.Int).Lsh(big.NewInt(1), 70)
	tests := []struct {
		name string
		e    gocas.Expr
		want gocas.PolyClass
	}{
		{"integer", gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.MulOf(gocas.N(2), x), gocas.N(1)), gocas.IntegerPoly},
		{"rational", gocas.AddOf(gocas.MulOf(gocas.F(1, 2), gocas.PowOf(x, gocas.N(2))), gocas.N(1)), gocas.RationalPoly},
		{"big integer", gocas.AddOf(gocas.MulOf(gocas.BigIntOf(big70), x), gocas.N(1)), gocas.RationalPoly},
		{"product form", gocas.MulOf(gocas.AddOf(x, gocas.N(1)), gocas.AddOf(x, gocas.N(-1))), gocas.IntegerPoly},
		{"multivariate", gocas.AddOf(gocas.MulOf(a, x), gocas.N(1)), gocas.SymbolicPoly},
		{"float coefficient", gocas.MulOf(gocas.NFloat(2.5), x), gocas.SymbolicPoly},
		{"not a polynomial", gocas.SinOf(x), gocas.SymbolicPoly},
		{"negative power", gocas.PowOf(x, gocas.N(-1)), gocas.SymbolicPoly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gocas.Classify(tt.e, x); got != tt.want {
				t.Errorf("%s: want %s, got %s", tt.e, tt.want, got)
			}
		})
	}
}

func TestPolyDivide_EdgeCases(t *testing.T) {
	x := gocas.S("x")
	p := gocas.AddOf(gocas.PowOf(x, gocas.N(2)), x)

	q, r := gocas.PolyDivide(p, gocas.N(0), x)
	if !gocas.IsUndefined(q) || !gocas.IsUndefined(r) {
		t.Errorf("zero divisor: want (undefined, undefined), got (%s, %s)", q, r)
	}
	q, r = gocas.PolyDivide(p, p, x)
	if q.String() != "1" || r.String() != "0" {
		t.Errorf("equal inputs: want (1, 0), got (%s, %s)", q, r)
	}
	q, r = gocas.PolyDivide(gocas.N(0), gocas.AddOf(x, gocas.N(1)), x)
	if q.String() != "0" || r.String() != "0" {
		t.Errorf("zero dividend: want (0, 0), got (%s, %s)", q, r)
	}
	q, r = gocas.PolyDivide(gocas.SinOf(x), gocas.AddOf(x, gocas.N(1)), x)
	if q.String() != "0" || !gocas.Equal(r, gocas.SinOf(x)) {
		t.Errorf("non-polynomial dividend: want (0, sin(x)), got (%s, %s)", q, r)
	}
}

func TestPolyDivide_Integer(t *testing.T) {
	x := gocas.S("x")
	a := gocas.AddOf(gocas.PowOf(x, gocas.N(3)), gocas.MulOf(gocas.N(-2), x), gocas.N(5))
	q, r := gocas.PolyDivide(a, gocas.AddOf(x, gocas.N(-1)), x)
	sameExpr(t, "quotient", q, gocas.AddOf(gocas.PowOf(x, gocas.N(2)), x, gocas.N(-1)))
	sameExpr(t, "remainder", r, gocas.N(4))
}

// x^2 / (2x) is not exact over the integers, so division moves to the
// rationals.
func TestPolyDivide_RationalFallback(t *testing.T) {
	x := gocas.S("x")
	q, r := gocas.PolyDivide(gocas.PowOf(x, gocas.N(2)), gocas.MulOf(gocas.N(2), x), x)
	sameExpr(t, "quotient", q, gocas.MulOf(gocas.F(1, 2), x))
	sameExpr(t, "remainder", r, gocas.N(0))
}

func TestPolyDivide_Symbolic(t *testing.T) {
	x, a := gocas.S("x"), gocas.S("a")
	num := gocas.AddOf(gocas.MulOf(a, gocas.PowOf(x, gocas.N(2))), gocas.MulOf(a, x))
	q, r := gocas.PolyDivide(num, gocas.AddOf(x, gocas.N(1)), x)
	sameExpr(t, "quotient", q, gocas.MulOf(a, x))
	sameExpr(t, "remainder", r, gocas.N(0))
}

func TestPolyGCD(t *testing.T) {
	x, a := gocas.S("x"), gocas.S("a")
	one := gocas.N(1)
	tests := []struct {
		name string
		a, b gocas.Expr
		want gocas.Expr
	}{
		{
			"integer",
			gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.N(-1)),
			gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.MulOf(gocas.N(2), x), one),
			gocas.AddOf(x, one),
		},
		{
			"rational",
			gocas.AddOf(gocas.MulOf(gocas.F(1, 2), gocas.PowOf(x, gocas.N(2))), gocas.F(-1, 2)),
			gocas.AddOf(gocas.MulOf(gocas.F(1, 3), x), gocas.F(-1, 3)),
			gocas.AddOf(x, gocas.N(-1)),
		},
		{
			"coprime",
			gocas.AddOf(x, one),
			gocas.AddOf(x, gocas.N(2)),
			one,
		},
		{
			"symbolic",
			gocas.AddOf(gocas.MulOf(a, gocas.PowOf(x, gocas.N(2))), gocas.Neg(a)),
			gocas.AddOf(x, gocas.N(-1)),
			gocas.AddOf(x, gocas.N(-1)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sameExpr(t, "gcd", gocas.PolyGCD(tt.a, tt.b, x), tt.want)
		})
	}
	if got := gocas.PolyGCD(gocas.N(0), gocas.AddOf(x, one), x); !gocas.Equal(got, gocas.AddOf(x, one)) {
		t.Errorf("gcd(0, x+1): want x + 1, got %s", got)
	}
}
