package gocas_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/njchilds90/gocas"
)

func roundTrip(t *testing.T, e gocas.Expr) gocas.Expr {
	t.Helper()
	s, err := gocas.ToJSON(e)
	if err != nil {
		t.Fatalf("encode %s: %v", e, err)
	}
	back, err := gocas.ParseJSON(s)
	if err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return back
}

func TestJSON_RoundTrip(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	big30, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	tests := []struct {
		name string
		e    gocas.Expr
	}{
		{"integer", gocas.N(-7)},
		{"big integer", gocas.BigIntOf(big30)},
		{"rational", gocas.F(-3, 8)},
		{"float", gocas.NFloat(2.5)},
		{"whole float", gocas.NFloat(2)},
		{"symbol", x},
		{"matrix symbol", gocas.SymOf("A", gocas.MatrixSymbol)},
		{"constant", gocas.Pi()},
		{"sum", gocas.AddOf(x, gocas.MulOf(gocas.N(2), y), gocas.N(1))},
		{"power", gocas.PowOf(gocas.AddOf(x, gocas.N(1)), gocas.F(1, 3))},
		{"function", gocas.SinOf(gocas.MulOf(gocas.N(3), x))},
		{"undefined", gocas.Undefined()},
		{"relation", gocas.Rel(gocas.RelLe, x, gocas.N(4))},
		{"piecewise", gocas.PiecewiseOf(
			gocas.Piece{Value: x, Cond: gocas.Rel(gocas.RelGe, x, gocas.N(0))},
			gocas.Piece{Value: gocas.Neg(x)},
		)},
		{"set", gocas.SetOf(gocas.N(1), x)},
		{"interval", gocas.IntervalOf(gocas.N(0), gocas.Infinity(), false, true)},
		{"derivative", gocas.UnevaluatedDerivative(gocas.ExpOf(gocas.PowOf(x, gocas.N(2))), x, 2)},
		{"integral", gocas.UnevaluatedIntegral(gocas.ExpOf(gocas.PowOf(x, gocas.N(2))), x)},
		{"definite integral", gocas.UnevaluatedDefiniteIntegral(x, x, gocas.N(0), gocas.N(1))},
		{"complex", gocas.ComplexOf(gocas.N(1), gocas.N(2))},
		{"method call", gocas.MethodCallOf(x, "conjugate")},
		{"big o", gocas.OTerm("x", 4)},
		{"wildcard", gocas.W("a", gocas.Excluding(x))},
		{"exact", gocas.ExactOf(gocas.W("a"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roundTrip(t, tt.e); !gocas.Equal(got, tt.e) {
				t.Errorf("want %s, got %s", tt.e, got)
			}
		})
	}
}

func TestJSON_MatrixKeepsKind(t *testing.T) {
	p, err := gocas.PermutationOf(2, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range []*gocas.Matrix{
		gocas.Identity(3),
		gocas.ZeroMatrix(2, 3),
		gocas.DiagonalOf(gocas.N(1), gocas.S("x")),
		gocas.ScalarMatrixOf(2, gocas.N(5)),
		p,
		gocas.MatrixFromSlice(2, 2, []gocas.Expr{gocas.N(1), gocas.N(2), gocas.N(0), gocas.N(3)}).Optimize(),
		gocas.MatrixFromSlice(2, 2, []gocas.Expr{gocas.N(1), gocas.N(2), gocas.N(3), gocas.N(4)}),
	} {
		got, ok := roundTrip(t, m).(*gocas.Matrix)
		if !ok {
			t.Fatalf("want a matrix back for %s", m)
		}
		if got.Kind() != m.Kind() {
			t.Errorf("%s: want kind %s, got %s", m, m.Kind(), got.Kind())
		}
		if !gocas.Equal(got, m) {
			t.Errorf("want %s, got %s", m, got)
		}
	}
}

func TestJSON_HandWritten(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"type":"num","value":3}`, "3"},
		{`{"type":"num","value":"1/3"}`, "1/3"},
		{`{"type":"func","name":"sin","arg":{"type":"sym","name":"x"}}`, "sin(x)"},
		{`{"type":"add","terms":[{"type":"sym","name":"x"},{"type":"sym","name":"x"}]}`, "x + x"},
		{`{"type":"matrix","rows":2,"cols":2,"data":[{"type":"num","value":1},{"type":"num","value":0},{"type":"num","value":0},{"type":"num","value":1}]}`, "[[1, 0], [0, 1]]"},
	}
	for _, tt := range tests {
		e, err := gocas.ParseJSON(tt.in)
		if err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		if e.String() != tt.want {
			t.Errorf("%s: want %s, got %s", tt.in, tt.want, e)
		}
	}
}

func TestJSON_Errors(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"name":"x"}`, "missing 'type'"},
		{`{"type":"nope"}`, "unknown expression type"},
		{`{"type":"add","terms":5}`, "must be an array"},
		{`{"type":"sym"}`, "missing"},
		{`{"type":"const","name":"tau"}`, "unknown constant"},
		{`{"type":"rel","op":"~","lhs":{"type":"num","value":1},"rhs":{"type":"num","value":2}}`, "unknown operator"},
		{`{"type":"matrix","rows":2,"cols":2,"data":[{"type":"num","value":1}]}`, "entries"},
		{`{"type":"matrix","kind":"upper","rows":2,"cols":2,"data":[{"type":"num","value":1},{"type":"num","value":0},{"type":"num","value":2},{"type":"num","value":1}]}`, "upper"},
		{`not json`, "decode expression"},
	}
	for _, tt := range tests {
		_, err := gocas.ParseJSON(tt.in)
		if err == nil {
			t.Errorf("%s: want an error", tt.in)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: want error containing %q, got %v", tt.in, tt.want, err)
		}
	}
}
