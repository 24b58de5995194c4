package gocas_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/njchilds90/gocas"
)

func TestMatch_FunctionArgument(t *testing.T) {
	x := gocas.S("x")
	b, ok := gocas.Match(gocas.SinOf(x), gocas.SinOf(gocas.W("a")))
	if !ok {
		t.Fatal("sin(x) should match sin(a_)")
	}
	if !gocas.Equal(b["a"], x) {
		t.Errorf("want a = x, got %s", b["a"])
	}
	if _, ok := gocas.Match(gocas.CosOf(x), gocas.SinOf(gocas.W("a"))); ok {
		t.Error("cos(x) should not match sin(a_)")
	}
}

func TestMatch_SumReordering(t *testing.T) {
	x := gocas.S("x")
	e := gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.N(3))
	p := gocas.AddOf(gocas.PowOf(gocas.W("a"), gocas.N(2)), gocas.W("b"))
	b, ok := gocas.Match(e, p)
	if !ok {
		t.Fatalf("%s should match %s", e, p)
	}
	if !gocas.Equal(b["a"], x) || b["b"].String() != "3" {
		t.Errorf("want a = x and b = 3, got %v", b)
	}
}

func TestMatch_RepeatedWildcard(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	p := gocas.PowOf(gocas.W("a"), gocas.W("a"))
	if _, ok := gocas.Match(gocas.PowOf(x, x), p); !ok {
		t.Error("x^x should match a_^a_")
	}
	if _, ok := gocas.Match(gocas.PowOf(x, y), p); ok {
		t.Error("x^y should not match a_^a_")
	}
}

func TestMatch_Excluding(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	p := gocas.MulOf(gocas.W("c", gocas.Excluding(x)), x)
	b, ok := gocas.Match(gocas.MulOf(y, x), p)
	if !ok || !gocas.Equal(b["c"], y) {
		t.Errorf("y*x: want c = y, got %v (%v)", b, ok)
	}
	if _, ok := gocas.Match(gocas.MulOf(gocas.SinOf(x), x), p); ok {
		t.Error("sin(x)*x must not bind c to an expression in x")
	}
}

func TestMatch_Where(t *testing.T) {
	n := gocas.W("n", gocas.Where(gocas.IsNumber))
	if _, ok := gocas.Match(gocas.N(3), n); !ok {
		t.Error("3 should satisfy the number predicate")
	}
	if _, ok := gocas.Match(gocas.S("x"), n); ok {
		t.Error("x should not satisfy the number predicate")
	}
}

func TestMatch_Exact(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	if _, ok := gocas.Match(x, gocas.ExactOf(x)); !ok {
		t.Error("x should match Exact(x)")
	}
	if _, ok := gocas.Match(y, gocas.ExactOf(x)); ok {
		t.Error("y should not match Exact(x)")
	}
	if _, ok := gocas.Match(x, gocas.ExactOf(gocas.W("a"))); ok {
		t.Error("a wildcard inside Exact is literal")
	}
}

func TestMatch_ArityMismatch(t *testing.T) {
	x, y, z := gocas.S("x"), gocas.S("y"), gocas.S("z")
	p := gocas.AddOf(gocas.W("a"), gocas.W("b"))
	if _, ok := gocas.Match(gocas.AddOf(x, y, z), p); ok {
		t.Error("a three-term sum should not match a two-term pattern")
	}
}

// letters returns the symbols a, b, c, ... as expressions.
func letters(n int) []gocas.Expr {
	out := make([]gocas.Expr, n)
	for i := range out {
		out[i] = gocas.S(string(rune('a' + i)))
	}
	return out
}

func TestMatch_LargeSumGreedy(t *testing.T) {
	x := gocas.S("x")
	e := gocas.AddOf(append(letters(7), gocas.SinOf(x))...)
	p := gocas.AddOf(append(letters(7), gocas.W("r"))...)
	b, ok := gocas.Match(e, p)
	if !ok {
		t.Fatalf("%s should match %s", e, p)
	}
	if !gocas.Equal(b["r"], gocas.SinOf(x)) {
		t.Errorf("want r = sin(x), got %s", b["r"])
	}
}

// Above the permutation limit each pattern operand takes the first
// compatible operand and never backtracks, so an assignment that needs a
// second choice is missed.
func TestMatch_GreedyIsFirstFit(t *testing.T) {
	t.Cleanup(func() { gocas.Configure(gocas.DefaultConfig()) })
	x := gocas.S("x")
	e := gocas.AddOf(append(letters(6), gocas.N(3), x)...)
	p := gocas.AddOf(append(letters(6), gocas.W("p"), gocas.W("q", gocas.Where(gocas.IsNumber)))...)
	if _, ok := gocas.Match(e, p); ok {
		t.Errorf("eight operands match greedily; p_ takes 3 first and q_ is left with x")
	}
	gocas.Configure(gocas.Config{PermutationLimit: 8})
	b, ok := gocas.Match(e, p)
	if !ok {
		t.Fatalf("with every permutation tried %s should match %s", e, p)
	}
	if !gocas.Equal(b["p"], x) || b["q"].String() != "3" {
		t.Errorf("want p = x and q = 3, got %v", b)
	}
}

func TestMatch_LoweredPermutationLimit(t *testing.T) {
	t.Cleanup(func() { gocas.Configure(gocas.DefaultConfig()) })
	x := gocas.S("x")
	e := gocas.AddOf(x, gocas.N(3))
	p := gocas.AddOf(gocas.W("a"), gocas.W("b", gocas.Where(gocas.IsNumber)))
	if _, ok := gocas.Match(e, p); !ok {
		t.Fatalf("%s should match %s by permutation", e, p)
	}
	gocas.Configure(gocas.Config{PermutationLimit: 1})
	if got := gocas.CurrentConfig().PermutationLimit; got != 1 {
		t.Fatalf("want limit 1, got %d", got)
	}
	if _, ok := gocas.Match(e, p); ok {
		t.Error("with a limit of 1 the two-term sum matches greedily and a_ binds 3")
	}
}

func TestReplace(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	e := gocas.AddOf(gocas.SinOf(x), gocas.SinOf(y))
	got := gocas.Replace(e, gocas.SinOf(gocas.W("a")), gocas.CosOf(gocas.W("a")))
	want := gocas.AddOf(gocas.CosOf(x), gocas.CosOf(y))
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestReplace_Nested(t *testing.T) {
	x := gocas.S("x")
	e := gocas.ExpOf(gocas.SinOf(gocas.MulOf(gocas.N(2), x)))
	got := gocas.Replace(e, gocas.SinOf(gocas.W("a")), gocas.W("a"))
	want := gocas.ExpOf(gocas.MulOf(gocas.N(2), x))
	if !gocas.Equal(got, want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestReplace_Identity(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	exprs := []gocas.Expr{
		gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.SinOf(y)),
		gocas.MulOf(gocas.N(3), x, gocas.ExpOf(y)),
		gocas.Eq(x, y),
	}
	for _, e := range exprs {
		if got := gocas.Replace(e, x, x); !gocas.Equal(got, e) {
			t.Errorf("replacing x by x changed %s into %s", e, got)
		}
	}
}

func TestReplaceRules_FirstRuleWins(t *testing.T) {
	x := gocas.S("x")
	a := gocas.W("a")
	rules := []gocas.Rule{
		{Pattern: gocas.SinOf(gocas.W("n", gocas.Where(gocas.IsNumber))), Template: gocas.N(0)},
		{Pattern: gocas.SinOf(a), Template: gocas.TanOf(a)},
		{Pattern: gocas.SinOf(a), Template: gocas.CosOf(a)},
	}
	got := gocas.ReplaceRules(gocas.SinOf(x), rules...)
	if !gocas.Equal(got, gocas.TanOf(x)) {
		t.Errorf("want tan(x), got %s", got)
	}
}

func TestInstantiate(t *testing.T) {
	x := gocas.S("x")
	tmpl := gocas.MulOf(gocas.N(2), gocas.W("a"))
	got := gocas.Instantiate(tmpl, gocas.Bindings{"a": x})
	if got.String() != "2*x" {
		t.Errorf("want 2*x, got %s", got)
	}
	if got := gocas.Instantiate(gocas.W("b"), gocas.Bindings{}); got.String() != "b_" {
		t.Errorf("unbound wildcard should stay, got %s", got)
	}
}

func TestWildcards(t *testing.T) {
	p := gocas.AddOf(gocas.PowOf(gocas.W("a"), gocas.N(2)), gocas.MulOf(gocas.W("b"), gocas.W("a")))
	names := gocas.Wildcards(p)
	sort.Strings(names)
	if got := strings.Join(names, ","); got != "a,b" {
		t.Errorf("want a,b, got %s", got)
	}
}
