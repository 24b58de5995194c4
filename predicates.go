package gocas

import (
	"sort"

	"github.com/hashicorp/go-set/v2"
	"github.com/njchilds90/gocas/number"
)

// ============================================================
// Structural equality and hashing
// ============================================================

// Equal reports structural equality: the same head, the same payload and
// equal children in the same order. Numbers must be identical in shape, so
// the Float 2.0 is not Equal to the Integer 2.
func Equal(a, b Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch x := a.(type) {
	case *Num:
		y, ok := b.(*Num)
		return ok && number.Identical(x.val, y.val)
	case *Sym:
		y, ok := b.(*Sym)
		return ok && x.same(y)
	case *Const:
		y, ok := b.(*Const)
		return ok && x.which == y.which
	case *Add:
		y, ok := b.(*Add)
		return ok && equalSlices(x.terms, y.terms)
	case *Mul:
		y, ok := b.(*Mul)
		return ok && equalSlices(x.factors, y.factors)
	case *Pow:
		y, ok := b.(*Pow)
		return ok && Equal(x.base, y.base) && Equal(x.exp, y.exp)
	case *Func:
		y, ok := b.(*Func)
		return ok && x.name == y.name && equalSlices(x.args, y.args)
	case *Matrix:
		y, ok := b.(*Matrix)
		return ok && x.equal(y)
	case *Relation:
		y, ok := b.(*Relation)
		return ok && x.op == y.op && Equal(x.lhs, y.lhs) && Equal(x.rhs, y.rhs)
	case *Piecewise:
		y, ok := b.(*Piecewise)
		if !ok || len(x.pieces) != len(y.pieces) {
			return false
		}
		for i := range x.pieces {
			if !Equal(x.pieces[i].Value, y.pieces[i].Value) || !Equal(x.pieces[i].Cond, y.pieces[i].Cond) {
				return false
			}
		}
		return true
	case *FiniteSet:
		y, ok := b.(*FiniteSet)
		return ok && equalSlices(x.elems, y.elems)
	case *Interval:
		y, ok := b.(*Interval)
		return ok && x.leftOpen == y.leftOpen && x.rightOpen == y.rightOpen &&
			Equal(x.lo, y.lo) && Equal(x.hi, y.hi)
	case *Calculus:
		y, ok := b.(*Calculus)
		return ok && x.op == y.op && x.order == y.order && x.v.same(y.v) &&
			Equal(x.body, y.body) && Equal(x.lower, y.lower) && Equal(x.upper, y.upper)
	case *Complex:
		y, ok := b.(*Complex)
		return ok && Equal(x.re, y.re) && Equal(x.im, y.im)
	case *MethodCall:
		y, ok := b.(*MethodCall)
		return ok && x.method == y.method && Equal(x.recv, y.recv) && equalSlices(x.args, y.args)
	case *BigO:
		y, ok := b.(*BigO)
		return ok && x.varName == y.varName && x.order == y.order
	case *Wildcard:
		y, ok := b.(*Wildcard)
		return ok && x.name == y.name
	case *Exact:
		y, ok := b.(*Exact)
		return ok && Equal(x.e, y.e)
	}
	return false
}

func equalSlices(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

const (
	hashOffset = 14695981039346656037
	hashPrime  = 1099511628211
)

func mix(h, v uint64) uint64 { return (h ^ v) * hashPrime }

func hashString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h = mix(h, uint64(s[i]))
	}
	return h
}

// Hash returns a structural hash that agrees with Equal.
func Hash(e Expr) uint64 {
	if e == nil {
		return hashOffset
	}
	h := hashString(hashOffset, e.exprType())
	switch v := e.(type) {
	case *Num:
		return mix(h, v.val.Hash())
	case *Sym:
		return v.Hash()
	case *Const:
		return mix(h, uint64(v.which))
	case *Func:
		h = hashString(h, v.name)
	case *Relation:
		h = mix(h, uint64(v.op))
	case *Interval:
		if v.leftOpen {
			h = mix(h, 1)
		}
		if v.rightOpen {
			h = mix(h, 2)
		}
	case *Calculus:
		h = mix(h, uint64(v.op))
		h = mix(h, uint64(v.order))
		h = mix(h, v.v.Hash())
	case *MethodCall:
		h = hashString(h, v.method)
	case *BigO:
		h = hashString(h, v.varName)
		return mix(h, uint64(v.order))
	case *Wildcard:
		return hashString(h, v.name)
	case *Matrix:
		h = mix(h, uint64(v.rows))
		h = mix(h, uint64(v.cols))
	case *Piecewise:
		for _, p := range v.pieces {
			h = mix(h, Hash(p.Value))
			h = mix(h, Hash(p.Cond))
		}
		return h
	}
	for _, c := range children(e) {
		h = mix(h, Hash(c))
	}
	return h
}

// Hash makes *Sym usable as a go-set HashSet element.
func (s *Sym) Hash() uint64 {
	h := hashString(hashOffset, "sym")
	h = hashString(h, s.name)
	return mix(h, uint64(s.kind))
}

// children lists the direct operands of e in structural order.
func children(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Func:
		return v.args
	case *Matrix:
		return v.elements()
	case *Relation:
		return []Expr{v.lhs, v.rhs}
	case *Piecewise:
		var out []Expr
		for _, p := range v.pieces {
			out = append(out, p.Value)
			if p.Cond != nil {
				out = append(out, p.Cond)
			}
		}
		return out
	case *FiniteSet:
		return v.elems
	case *Interval:
		return []Expr{v.lo, v.hi}
	case *Calculus:
		out := []Expr{v.body}
		if v.lower != nil {
			out = append(out, v.lower, v.upper)
		}
		return out
	case *Complex:
		return []Expr{v.re, v.im}
	case *MethodCall:
		return append([]Expr{v.recv}, v.args...)
	case *Exact:
		return []Expr{v.e}
	}
	return nil
}

// ============================================================
// Cheap structural queries
// ============================================================

// Depth returns the height of the tree; atoms have depth 1.
func Depth(e Expr) int {
	d := 0
	for _, c := range children(e) {
		if cd := Depth(c); cd > d {
			d = cd
		}
	}
	return d + 1
}

// OperandCount returns the number of direct operands of e.
func OperandCount(e Expr) int { return len(children(e)) }

// SymbolSet is the set type returned by FreeSymbols.
type SymbolSet = set.HashSet[*Sym, uint64]

func newSymbolSet() *SymbolSet { return set.NewHashSet[*Sym, uint64](0) }

// FreeSymbols returns the symbols occurring in e. Variables bound by an
// unevaluated derivative or integral are still reported.
func FreeSymbols(e Expr) *SymbolSet {
	out := newSymbolSet()
	collectSymbols(e, out)
	return out
}

func collectSymbols(e Expr, out *SymbolSet) {
	switch v := e.(type) {
	case *Sym:
		out.Insert(v)
		return
	case *Calculus:
		out.Insert(v.v)
	case *BigO:
		out.Insert(S(v.varName))
		return
	}
	for _, c := range children(e) {
		collectSymbols(c, out)
	}
}

// SortedSymbols returns the members of s ordered by name then kind.
func SortedSymbols(s *SymbolSet) []*Sym {
	out := s.Slice()
	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].kind < out[j].kind
	})
	return out
}

// FreeSymbolNames returns the sorted names of the symbols in e.
func FreeSymbolNames(e Expr) []string {
	syms := SortedSymbols(FreeSymbols(e))
	names := make([]string, 0, len(syms))
	for i, s := range syms {
		if i > 0 && syms[i-1].name == s.name {
			continue
		}
		names = append(names, s.name)
	}
	return names
}

// Has reports whether v occurs anywhere in e.
func Has(e Expr, v *Sym) bool {
	switch x := e.(type) {
	case *Sym:
		return x.same(v)
	case *Num, *Const:
		return false
	case *BigO:
		return x.varName == v.name
	case *Calculus:
		if x.v.same(v) {
			return true
		}
	}
	for _, c := range children(e) {
		if Has(c, v) {
			return true
		}
	}
	return false
}

// ============================================================
// Fast and canonical zero/one tests
// ============================================================

// IsZeroFast reports whether e is literally the number zero. It never
// simplifies and is meant for inner loops over already simplified values.
func IsZeroFast(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.val.IsZero()
}

// IsOneFast reports whether e is literally the number one.
func IsOneFast(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.val.IsOne()
}

// IsZero simplifies e and then tests for zero, so sin(x)^2 + cos(x)^2 - 1
// is zero while IsZeroFast of the same tree is not.
func IsZero(e Expr) bool { return IsZeroFast(Simplify(e)) }

// IsOne simplifies e and then tests for one.
func IsOne(e Expr) bool { return IsOneFast(Simplify(e)) }

// IsNumber reports whether e is a number literal.
func IsNumber(e Expr) bool {
	_, ok := e.(*Num)
	return ok
}

// isExactNum reports whether e is an exact number literal.
func isExactNum(e Expr) (*Num, bool) {
	n, ok := e.(*Num)
	if !ok || !n.val.IsExact() {
		return nil, false
	}
	return n, true
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	if !ok {
		return false
	}
	i, ok := n.val.TryInt64()
	return ok && i == v && n.val.IsExact()
}

// commutes reports whether e may be reordered freely inside a product.
func commutes(e Expr) bool {
	switch v := e.(type) {
	case *Num, *Const:
		return true
	case *Sym:
		return v.Commutes()
	case *Matrix:
		return false
	case *Wildcard, *Exact:
		return true
	}
	for _, c := range children(e) {
		if !commutes(c) {
			return false
		}
	}
	return true
}

func allCommute(es []Expr) bool {
	for _, e := range es {
		if !commutes(e) {
			return false
		}
	}
	return true
}
