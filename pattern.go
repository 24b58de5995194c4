package gocas

import (
	"github.com/hashicorp/go-set/v2"
)

// ============================================================
// Pattern heads
// ============================================================

// Wildcard matches any expression and binds it by name. A wildcard seen
// twice in one pattern must bind equal expressions.
type Wildcard struct {
	name    string
	exclude *SymbolSet
	pred    func(Expr) bool
}

// WildcardOption configures a Wildcard.
type WildcardOption func(*Wildcard)

// W returns an unconstrained wildcard.
func W(name string, opts ...WildcardOption) *Wildcard {
	w := &Wildcard{name: name}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Excluding rejects bindings that mention any of syms.
func Excluding(syms ...*Sym) WildcardOption {
	return func(w *Wildcard) {
		if w.exclude == nil {
			w.exclude = newSymbolSet()
		}
		w.exclude.InsertSlice(syms)
	}
}

// Where rejects bindings for which pred is false.
func Where(pred func(Expr) bool) WildcardOption {
	return func(w *Wildcard) { w.pred = pred }
}

func (w *Wildcard) Name() string     { return w.name }
func (w *Wildcard) String() string   { return w.name + "_" }
func (w *Wildcard) LaTeX() string    { return w.name + "_{?}" }
func (w *Wildcard) exprType() string { return "wildcard" }

func (w *Wildcard) accepts(e Expr) bool {
	if w.exclude != nil && !w.exclude.Empty() {
		free := FreeSymbols(e)
		for _, s := range w.exclude.Slice() {
			if free.Contains(s) {
				return false
			}
		}
	}
	return w.pred == nil || w.pred(e)
}

// Exact matches only an expression structurally equal to its payload;
// wildcards inside it are literal.
type Exact struct{ e Expr }

func ExactOf(e Expr) *Exact { return &Exact{e: e} }

func (x *Exact) Expr() Expr       { return x.e }
func (x *Exact) String() string   { return "Exact(" + x.e.String() + ")" }
func (x *Exact) LaTeX() string    { return x.e.LaTeX() }
func (x *Exact) exprType() string { return "exact" }

// Bindings maps wildcard names to the expressions they matched.
type Bindings map[string]Expr

func (b Bindings) with(name string, e Expr) Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[name] = e
	return out
}

// Rule is a rewrite from Pattern to Template.
type Rule struct {
	Pattern  Expr
	Template Expr
}

// ============================================================
// Matching
// ============================================================

// Match unifies e with pattern. Sums and products match up to reordering:
// all permutations are tried for up to Config.PermutationLimit operands and
// a greedy first-fit assignment is used above that.
func Match(e, pattern Expr) (Bindings, bool) {
	return match(e, pattern, Bindings{})
}

func match(e, p Expr, b Bindings) (Bindings, bool) {
	switch pv := p.(type) {
	case *Wildcard:
		if bound, ok := b[pv.name]; ok {
			return b, Equal(bound, e)
		}
		if !pv.accepts(e) {
			return nil, false
		}
		return b.with(pv.name, e), true
	case *Exact:
		return b, Equal(e, pv.e)
	case *Num, *Sym, *Const, *BigO:
		return b, Equal(e, p)
	case *Add:
		ev, ok := e.(*Add)
		if !ok {
			return nil, false
		}
		if !allCommute(ev.terms) || !allCommute(pv.terms) {
			return matchOrdered(ev.terms, pv.terms, b)
		}
		return matchCommutative(ev.terms, pv.terms, b)
	case *Mul:
		ev, ok := e.(*Mul)
		if !ok {
			return nil, false
		}
		if !allCommute(ev.factors) || !allCommute(pv.factors) {
			return matchOrdered(ev.factors, pv.factors, b)
		}
		return matchCommutative(ev.factors, pv.factors, b)
	case *Func:
		ev, ok := e.(*Func)
		if !ok || ev.name != pv.name {
			return nil, false
		}
		return matchOrdered(ev.args, pv.args, b)
	}
	if e.exprType() != p.exprType() || !samePayload(e, p) {
		return nil, false
	}
	return matchOrdered(children(e), children(p), b)
}

// samePayload compares the non-operand fields of two nodes of one head.
func samePayload(a, b Expr) bool {
	switch x := a.(type) {
	case *Relation:
		return x.op == b.(*Relation).op
	case *Interval:
		y := b.(*Interval)
		return x.leftOpen == y.leftOpen && x.rightOpen == y.rightOpen
	case *Calculus:
		y := b.(*Calculus)
		return x.op == y.op && x.order == y.order && x.v.same(y.v) && (x.lower == nil) == (y.lower == nil)
	case *MethodCall:
		return x.method == b.(*MethodCall).method
	case *Matrix:
		y := b.(*Matrix)
		return x.rows == y.rows && x.cols == y.cols
	case *Piecewise:
		y := b.(*Piecewise)
		if len(x.pieces) != len(y.pieces) {
			return false
		}
		for i := range x.pieces {
			if (x.pieces[i].Cond == nil) != (y.pieces[i].Cond == nil) {
				return false
			}
		}
	}
	return true
}

func matchOrdered(es, ps []Expr, b Bindings) (Bindings, bool) {
	if len(es) != len(ps) {
		return nil, false
	}
	for i := range ps {
		var ok bool
		if b, ok = match(es[i], ps[i], b); !ok {
			return nil, false
		}
	}
	return b, true
}

func matchCommutative(es, ps []Expr, b Bindings) (Bindings, bool) {
	if len(es) != len(ps) {
		return nil, false
	}
	if len(ps) > cfg().PermutationLimit {
		return matchGreedy(es, ps, b)
	}
	used := make([]bool, len(es))
	return matchPermutations(es, ps, 0, used, b)
}

// matchPermutations assigns ps[i:] to unused expressions, backtracking over
// every order.
func matchPermutations(es, ps []Expr, i int, used []bool, b Bindings) (Bindings, bool) {
	if i == len(ps) {
		return b, true
	}
	for j := range es {
		if used[j] {
			continue
		}
		nb, ok := match(es[j], ps[i], b)
		if !ok {
			continue
		}
		used[j] = true
		if out, ok := matchPermutations(es, ps, i+1, used, nb); ok {
			return out, true
		}
		used[j] = false
	}
	return nil, false
}

// matchGreedy gives each pattern operand the first compatible unused
// expression operand and never revisits a choice.
func matchGreedy(es, ps []Expr, b Bindings) (Bindings, bool) {
	used := make([]bool, len(es))
	for _, p := range ps {
		found := false
		for j, e := range es {
			if used[j] {
				continue
			}
			if nb, ok := match(e, p, b); ok {
				b, used[j], found = nb, true, true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return b, true
}

// ============================================================
// Replacement
// ============================================================

// Instantiate substitutes bound wildcards into template.
func Instantiate(template Expr, b Bindings) Expr {
	switch t := template.(type) {
	case *Wildcard:
		if v, ok := b[t.name]; ok {
			return v
		}
		return t
	case *Exact:
		return t.e
	}
	return mapChildren(template, func(c Expr) Expr { return Instantiate(c, b) })
}

// Replace scans e top-down. Where pattern matches, the instantiated template
// replaces the subtree; elsewhere the scan descends into operands.
func Replace(e, pattern, template Expr) Expr {
	return ReplaceRules(e, Rule{Pattern: pattern, Template: template})
}

// ReplaceRules is Replace with several rules tried in order at each node.
func ReplaceRules(e Expr, rules ...Rule) Expr {
	if out, ok := applyRules(e, rules); ok {
		return out
	}
	return mapChildren(e, func(c Expr) Expr { return ReplaceRules(c, rules...) })
}

// applyRules rewrites e with the first matching rule.
func applyRules(e Expr, rules []Rule) (Expr, bool) {
	for _, r := range rules {
		if b, ok := Match(e, r.Pattern); ok {
			return Instantiate(r.Template, b), true
		}
	}
	return nil, false
}

// Wildcards lists the distinct wildcard names in p.
func Wildcards(p Expr) []string {
	seen := set.New[string](0)
	var names []string
	var walk func(Expr)
	walk = func(e Expr) {
		if w, ok := e.(*Wildcard); ok {
			if seen.Insert(w.name) {
				names = append(names, w.name)
			}
			return
		}
		for _, c := range children(e) {
			walk(c)
		}
	}
	walk(p)
	return names
}
