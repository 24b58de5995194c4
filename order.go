package gocas

import (
	"sort"
	"strings"

	"github.com/njchilds90/gocas/number"
)

// headRank places heads in the canonical order used for sums and products:
// numbers, symbols, constants, powers, products, sums, functions, then the
// carrier heads.
func headRank(e Expr) int {
	switch e.(type) {
	case *Num:
		return 0
	case *Sym:
		return 1
	case *Const:
		return 2
	case *Pow:
		return 3
	case *Mul:
		return 4
	case *Add:
		return 5
	case *Func:
		return 6
	case *BigO:
		return 7
	case *Matrix:
		return 8
	case *Relation:
		return 9
	case *Piecewise:
		return 10
	case *FiniteSet:
		return 11
	case *Interval:
		return 12
	case *Calculus:
		return 13
	case *Complex:
		return 14
	case *MethodCall:
		return 15
	case *Wildcard:
		return 16
	case *Exact:
		return 17
	}
	return 18
}

// Compare is the canonical total order on expressions. It returns -1, 0 or
// +1 and is 0 exactly when Equal holds.
func Compare(a, b Expr) int {
	ra, rb := headRank(a), headRank(b)
	if ra != rb {
		return cmpInt(ra, rb)
	}
	switch x := a.(type) {
	case *Num:
		y := b.(*Num)
		if c := number.Cmp(x.val, y.val); c != 0 {
			return c
		}
		return cmpInt(int(x.val.Kind()), int(y.val.Kind()))
	case *Sym:
		y := b.(*Sym)
		if c := strings.Compare(x.name, y.name); c != 0 {
			return c
		}
		return cmpInt(int(x.kind), int(y.kind))
	case *Const:
		return cmpInt(int(x.which), int(b.(*Const).which))
	case *Pow:
		y := b.(*Pow)
		if c := Compare(x.base, y.base); c != 0 {
			return c
		}
		return Compare(x.exp, y.exp)
	case *Mul:
		return compareSlices(x.factors, b.(*Mul).factors)
	case *Add:
		return compareSlices(x.terms, b.(*Add).terms)
	case *Func:
		y := b.(*Func)
		if c := strings.Compare(x.name, y.name); c != 0 {
			return c
		}
		return compareSlices(x.args, y.args)
	case *Wildcard:
		return strings.Compare(x.name, b.(*Wildcard).name)
	}
	if Equal(a, b) {
		return 0
	}
	if c := strings.Compare(a.String(), b.String()); c != 0 {
		return c
	}
	return cmpUint(Hash(a), Hash(b))
}

func compareSlices(a, b []Expr) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmpInt(len(a), len(b))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// sortCanonical orders es in place by Compare.
func sortCanonical(es []Expr) {
	sort.SliceStable(es, func(i, j int) bool { return Compare(es[i], es[j]) < 0 })
}
