package gocas

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/njchilds90/gocas/number"
)

// ============================================================
// Plain-text rendering
// ============================================================

func (n *Num) String() string   { return n.val.String() }
func (s *Sym) String() string   { return s.name }
func (c *Const) String() string { return constTable[c.which].name }
func (o *BigO) String() string  { return fmt.Sprintf("O(%s^%d)", o.varName, o.order) }

// String prints the symbolic terms in storage order followed by the numeric
// term, writing negative terms with a binary minus: x^2 - 2*x + 1.
func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range printOrder(a.terms) {
		s := t.String()
		if i > 0 {
			if hasNegativeCoeff(t) {
				sb.WriteString(" - ")
				s = negateForPrint(t).String()
			} else {
				sb.WriteString(" + ")
			}
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// printOrder moves the numeric term of a commutative sum to the end.
func printOrder(terms []Expr) []Expr {
	if !allCommute(terms) {
		return terms
	}
	out := make([]Expr, 0, len(terms))
	var nums []Expr
	for _, t := range terms {
		if _, ok := t.(*Num); ok {
			nums = append(nums, t)
		} else {
			out = append(out, t)
		}
	}
	return append(out, nums...)
}

// negateForPrint flips the sign of the leading coefficient without running
// the simplifier.
func negateForPrint(e Expr) Expr {
	c, rest := splitCoeff(e)
	c = number.Neg(c)
	if _, ok := e.(*Num); ok {
		return &Num{val: c}
	}
	if c.IsOne() && c.IsExact() {
		return rest
	}
	return &Mul{factors: append([]Expr{&Num{val: c}}, factorsOf(rest)...)}
}

func (m *Mul) String() string {
	c, rest := splitCoeff(m)
	if c.IsNegative() && !Equal(rest, N(1)) {
		return "-" + negateForPrint(m).String()
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		parts[i] = factorString(f, i == 0)
	}
	return strings.Join(parts, "*")
}

func factorString(f Expr, first bool) string {
	switch v := f.(type) {
	case *Add:
		return "(" + v.String() + ")"
	case *Num:
		if !v.IsInteger() && v.IsExact() || (!first && v.IsNegative()) {
			return "(" + v.String() + ")"
		}
	}
	return f.String()
}

func (p *Pow) String() string {
	base := p.base.String()
	if needsBaseParens(p.base) {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	if needsExpParens(p.exp) {
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func needsBaseParens(e Expr) bool {
	switch v := e.(type) {
	case *Add, *Mul, *Pow, *Complex, *Relation:
		return true
	case *Num:
		return v.IsNegative() || (v.IsExact() && !v.IsInteger())
	}
	return false
}

func needsExpParens(e Expr) bool {
	switch v := e.(type) {
	case *Sym, *Const:
		return false
	case *Num:
		return v.IsNegative() || (v.IsExact() && !v.IsInteger())
	}
	return true
}

func (f *Func) String() string {
	if f.name == undefinedName && len(f.args) == 0 {
		return undefinedName
	}
	return f.name + "(" + joinStrings(f.args, ", ") + ")"
}

func joinStrings(es []Expr, sep string) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

func (r *Relation) String() string {
	return r.lhs.String() + " " + relSymbols[r.op] + " " + r.rhs.String()
}

func (p *Piecewise) String() string {
	parts := make([]string, len(p.pieces))
	for i, pc := range p.pieces {
		cond := "otherwise"
		if pc.Cond != nil {
			cond = pc.Cond.String()
		}
		parts[i] = "(" + pc.Value.String() + ", " + cond + ")"
	}
	return "Piecewise(" + strings.Join(parts, ", ") + ")"
}

func (s *FiniteSet) String() string { return "{" + joinStrings(s.elems, ", ") + "}" }

func (iv *Interval) String() string {
	l, r := "[", "]"
	if iv.leftOpen {
		l = "("
	}
	if iv.rightOpen {
		r = ")"
	}
	return l + iv.lo.String() + ", " + iv.hi.String() + r
}

func (c *Calculus) String() string {
	if c.op == OpDerivative {
		if c.order == 1 {
			return fmt.Sprintf("Derivative(%s, %s)", c.body, c.v)
		}
		return fmt.Sprintf("Derivative(%s, %s, %d)", c.body, c.v, c.order)
	}
	if c.lower != nil {
		return fmt.Sprintf("Integral(%s, (%s, %s, %s))", c.body, c.v, c.lower, c.upper)
	}
	return fmt.Sprintf("Integral(%s, %s)", c.body, c.v)
}

func (c *Complex) String() string { return "Complex(" + c.re.String() + ", " + c.im.String() + ")" }

func (m *MethodCall) String() string {
	recv := m.recv.String()
	if needsBaseParens(m.recv) {
		recv = "(" + recv + ")"
	}
	return recv + "." + m.method + "(" + joinStrings(m.args, ", ") + ")"
}

// ============================================================
// LaTeX rendering
// ============================================================

func (n *Num) LaTeX() string {
	if !n.val.IsExact() || n.val.IsInteger() {
		return n.val.String()
	}
	sign := ""
	if n.val.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, new(big.Int).Abs(n.val.Num()), n.val.Den().String())
}

func (s *Sym) LaTeX() string {
	switch s.kind {
	case MatrixSymbol:
		return "\\mathbf{" + s.name + "}"
	case Operator:
		return "\\hat{" + s.name + "}"
	}
	return s.name
}

func (c *Const) LaTeX() string { return constTable[c.which].latex }

func (o *BigO) LaTeX() string {
	return fmt.Sprintf("\\mathcal{O}(%s^{%d})", o.varName, o.order)
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range printOrder(a.terms) {
		s := t.LaTeX()
		if i > 0 {
			if hasNegativeCoeff(t) {
				sb.WriteString(" - ")
				s = negateForPrint(t).LaTeX()
			} else {
				sb.WriteString(" + ")
			}
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// LaTeX writes products with negative exact exponents as a fraction.
func (m *Mul) LaTeX() string {
	c, rest := splitCoeff(m)
	if c.IsNegative() && !Equal(rest, N(1)) {
		return "-" + negateForPrint(m).LaTeX()
	}
	var num, den []string
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok && n.IsExact() && !n.IsInteger() {
			if !n.val.Num().IsInt64() || n.val.Num().Int64() != 1 {
				num = append(num, n.val.Num().String())
			}
			den = append(den, n.val.Den().String())
			continue
		}
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.IsNegative() && e.IsExact() {
				inv := PowOf(p.base, &Num{val: number.Neg(e.val)})
				den = append(den, latexFactor(inv))
				continue
			}
		}
		num = append(num, latexFactor(f))
	}
	numStr := strings.Join(num, " ")
	if numStr == "" {
		numStr = "1"
	}
	if len(den) == 0 {
		return numStr
	}
	return "\\frac{" + numStr + "}{" + strings.Join(den, " ") + "}"
}

func latexFactor(f Expr) string {
	if _, ok := f.(*Add); ok {
		return "\\left(" + f.LaTeX() + "\\right)"
	}
	return f.LaTeX()
}

func (p *Pow) LaTeX() string {
	if e, ok := p.exp.(*Num); ok && e.IsExact() && e.val.IsPositive() {
		if r, _ := e.val.BigRat(); r.Num().IsInt64() && r.Num().Int64() == 1 && r.Denom().IsInt64() {
			switch r.Denom().Int64() {
			case 2:
				return "\\sqrt{" + p.base.LaTeX() + "}"
			case 1:
			default:
				return fmt.Sprintf("\\sqrt[%d]{%s}", r.Denom().Int64(), p.base.LaTeX())
			}
		}
	}
	base := p.base.LaTeX()
	if needsBaseParens(p.base) {
		base = "\\left(" + base + "\\right)"
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

var latexFuncNames = map[string]string{
	"sin": "\\sin", "cos": "\\cos", "tan": "\\tan", "cot": "\\cot", "sec": "\\sec", "csc": "\\csc",
	"asin": "\\arcsin", "acos": "\\arccos", "atan": "\\arctan",
	"sinh": "\\sinh", "cosh": "\\cosh", "tanh": "\\tanh",
	"exp": "\\exp", "ln": "\\ln", "gamma": "\\Gamma",
}

func (f *Func) LaTeX() string {
	if f.name == undefinedName && len(f.args) == 0 {
		return constTable[ConstUndefined].latex
	}
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.LaTeX()
	}
	args := strings.Join(parts, ", ")
	switch f.name {
	case "abs":
		return "\\left|" + args + "\\right|"
	case "floor":
		return "\\lfloor " + args + " \\rfloor"
	case "ceil":
		return "\\lceil " + args + " \\rceil"
	}
	if name, ok := latexFuncNames[f.name]; ok {
		return name + "\\left(" + args + "\\right)"
	}
	return "\\operatorname{" + f.name + "}\\left(" + args + "\\right)"
}

func (r *Relation) LaTeX() string {
	return r.lhs.LaTeX() + " " + relLaTeX[r.op] + " " + r.rhs.LaTeX()
}

func (p *Piecewise) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{cases}")
	for i, pc := range p.pieces {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		sb.WriteString(pc.Value.LaTeX())
		sb.WriteString(" & ")
		if pc.Cond == nil {
			sb.WriteString("\\text{otherwise}")
		} else {
			sb.WriteString(pc.Cond.LaTeX())
		}
	}
	sb.WriteString("\\end{cases}")
	return sb.String()
}

func (s *FiniteSet) LaTeX() string {
	parts := make([]string, len(s.elems))
	for i, e := range s.elems {
		parts[i] = e.LaTeX()
	}
	return "\\left\\{" + strings.Join(parts, ", ") + "\\right\\}"
}

func (iv *Interval) LaTeX() string {
	l, r := "\\left[", "\\right]"
	if iv.leftOpen {
		l = "\\left("
	}
	if iv.rightOpen {
		r = "\\right)"
	}
	return l + iv.lo.LaTeX() + ", " + iv.hi.LaTeX() + r
}

func (c *Calculus) LaTeX() string {
	if c.op == OpDerivative {
		if c.order == 1 {
			return fmt.Sprintf("\\frac{d}{d%s}\\left(%s\\right)", c.v.LaTeX(), c.body.LaTeX())
		}
		return fmt.Sprintf("\\frac{d^{%d}}{d%s^{%d}}\\left(%s\\right)", c.order, c.v.LaTeX(), c.order, c.body.LaTeX())
	}
	if c.lower != nil {
		return fmt.Sprintf("\\int_{%s}^{%s} %s \\, d%s", c.lower.LaTeX(), c.upper.LaTeX(), c.body.LaTeX(), c.v.LaTeX())
	}
	return fmt.Sprintf("\\int %s \\, d%s", c.body.LaTeX(), c.v.LaTeX())
}

func (c *Complex) LaTeX() string { return c.re.LaTeX() + " + " + c.im.LaTeX() + " i" }

func (m *MethodCall) LaTeX() string {
	parts := make([]string, len(m.args))
	for i, a := range m.args {
		parts[i] = a.LaTeX()
	}
	return m.recv.LaTeX() + ".\\operatorname{" + m.method + "}\\left(" + strings.Join(parts, ", ") + "\\right)"
}
