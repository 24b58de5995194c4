package gocas

import (
	"math/big"

	"github.com/njchilds90/gocas/number"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is a node of the expression tree. Trees are persistent: no operation
// in this package mutates a node after it is built, so subtrees may be shared
// freely between expressions and goroutines.
//
// The set of node types is closed. Package functions (Simplify, Derivative,
// Equal, ...) switch on the concrete type rather than calling methods, and
// the unexported methods keep foreign types out.
type Expr interface {
	String() string
	LaTeX() string
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: a number tower value
// ============================================================

type Num struct{ val number.Number }

// N returns the integer n.
func N(n int64) *Num { return &Num{val: number.Int(n)} }

// F returns the reduced fraction p/q. It panics when q is zero; use
// RationalOf for data that is not a literal.
func F(p, q int64) *Num { return &Num{val: number.MustFrac(p, q)} }

// NFloat returns f as a Float number. Non-finite values become the
// undefined marker.
func NFloat(f float64) Expr {
	n, err := number.NewFloat(f)
	if err != nil {
		return Undefined()
	}
	return &Num{val: n}
}

// NumOf wraps a number tower value.
func NumOf(n number.Number) *Num { return &Num{val: n} }

// BigIntOf returns z as an integer literal.
func BigIntOf(z *big.Int) *Num { return &Num{val: number.BigInt(z)} }

// RationalOf returns p/q, or the undefined marker when q is zero.
func RationalOf(p, q int64) Expr {
	n, err := number.Frac(p, q)
	if err != nil {
		return Undefined()
	}
	return &Num{val: n}
}

func ratNum(r *big.Rat) *Num { return &Num{val: number.Rat(r)} }

func (n *Num) Value() number.Number { return n.val }
func (n *Num) IsZero() bool         { return n.val.IsZero() }
func (n *Num) IsOne() bool          { return n.val.IsOne() }
func (n *Num) IsNegOne() bool       { return n.val.IsMinusOne() }
func (n *Num) IsInteger() bool      { return n.val.IsInteger() }
func (n *Num) IsExact() bool        { return n.val.IsExact() }
func (n *Num) IsNegative() bool     { return n.val.IsNegative() }
func (n *Num) IsPositive() bool     { return n.val.IsPositive() }
func (n *Num) exprType() string     { return "num" }

// Float64 returns the nearest float64; huge values saturate to ±Inf.
func (n *Num) Float64() float64 {
	f, err := n.val.ToFloat64()
	if err != nil {
		if n.val.IsNegative() {
			return negInf
		}
		return posInf
	}
	return f
}

// Int64 returns the value when it is a machine integer.
func (n *Num) Int64() (int64, bool) { return n.val.TryInt64() }

// ============================================================
// Sym: a named variable
// ============================================================

// SymbolKind declares how a symbol behaves under multiplication.
type SymbolKind uint8

const (
	// Scalar symbols commute with everything.
	Scalar SymbolKind = iota
	// MatrixSymbol, Operator and Quaternion symbols keep their position in
	// products.
	MatrixSymbol
	Operator
	Quaternion
)

func (k SymbolKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case MatrixSymbol:
		return "matrix"
	case Operator:
		return "operator"
	case Quaternion:
		return "quaternion"
	}
	return "unknown"
}

// ParseSymbolKind is the inverse of SymbolKind.String.
func ParseSymbolKind(s string) (SymbolKind, bool) {
	for k := Scalar; k <= Quaternion; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return Scalar, false
}

type Sym struct {
	name string
	kind SymbolKind
}

// S returns the scalar symbol name.
func S(name string) *Sym { return &Sym{name: name} }

// SymOf returns a symbol of the given kind.
func SymOf(name string, kind SymbolKind) *Sym { return &Sym{name: name, kind: kind} }

func (s *Sym) Name() string          { return s.name }
func (s *Sym) Kind() SymbolKind      { return s.kind }
func (s *Sym) Commutes() bool        { return s.kind == Scalar }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) same(o *Sym) bool      { return s.name == o.name && s.kind == o.kind }
func (s *Sym) isNamed(n string) bool { return s.kind == Scalar && s.name == n }

// ============================================================
// Add, Mul, Pow
// ============================================================

type Add struct{ terms []Expr }

func (a *Add) Terms() []Expr    { return append([]Expr(nil), a.terms...) }
func (a *Add) exprType() string { return "add" }

type Mul struct{ factors []Expr }

func (m *Mul) Factors() []Expr  { return append([]Expr(nil), m.factors...) }
func (m *Mul) exprType() string { return "mul" }

type Pow struct{ base, exp Expr }

func (p *Pow) Base() Expr       { return p.base }
func (p *Pow) Exp() Expr        { return p.exp }
func (p *Pow) exprType() string { return "pow" }

// ============================================================
// Func: named function application
// ============================================================

type Func struct {
	name string
	args []Expr
}

func (f *Func) Name() string     { return f.name }
func (f *Func) Args() []Expr     { return append([]Expr(nil), f.args...) }
func (f *Func) exprType() string { return "func" }

// Arg returns the first argument, or nil for a nullary application.
func (f *Func) Arg() Expr {
	if len(f.args) == 0 {
		return nil
	}
	return f.args[0]
}

// ============================================================
// Carrier heads
// ============================================================

// RelOp is the comparison carried by a Relation.
type RelOp uint8

const (
	RelEq RelOp = iota
	RelNe
	RelLt
	RelLe
	RelGt
	RelGe
)

var relSymbols = [...]string{"=", "!=", "<", "<=", ">", ">="}
var relLaTeX = [...]string{"=", "\\neq", "<", "\\leq", ">", "\\geq"}

func (op RelOp) String() string { return relSymbols[op] }

// Relation is lhs op rhs. It is a carrier: simplification only threads
// through both sides.
type Relation struct {
	op       RelOp
	lhs, rhs Expr
}

// Eq returns the equation lhs = rhs.
func Eq(lhs, rhs Expr) *Relation { return &Relation{op: RelEq, lhs: lhs, rhs: rhs} }

// Rel returns lhs op rhs.
func Rel(op RelOp, lhs, rhs Expr) *Relation { return &Relation{op: op, lhs: lhs, rhs: rhs} }

func (r *Relation) Op() RelOp        { return r.op }
func (r *Relation) LHS() Expr        { return r.lhs }
func (r *Relation) RHS() Expr        { return r.rhs }
func (r *Relation) exprType() string { return "rel" }

// Residual returns lhs - rhs, simplified.
func (r *Relation) Residual() Expr { return Simplify(SubOf(r.lhs, r.rhs)) }

// Piece is one branch of a Piecewise. A nil Cond marks the otherwise branch.
type Piece struct {
	Value Expr
	Cond  Expr
}

type Piecewise struct{ pieces []Piece }

func PiecewiseOf(pieces ...Piece) *Piecewise {
	return &Piecewise{pieces: append([]Piece(nil), pieces...)}
}

func (p *Piecewise) Pieces() []Piece  { return append([]Piece(nil), p.pieces...) }
func (p *Piecewise) exprType() string { return "piecewise" }

// FiniteSet is an unordered collection of distinct expressions. Simplify
// sorts and deduplicates the elements.
type FiniteSet struct{ elems []Expr }

func SetOf(elems ...Expr) *FiniteSet { return &FiniteSet{elems: append([]Expr(nil), elems...)} }

func (s *FiniteSet) Elems() []Expr    { return append([]Expr(nil), s.elems...) }
func (s *FiniteSet) exprType() string { return "set" }

type Interval struct {
	lo, hi              Expr
	leftOpen, rightOpen bool
}

func IntervalOf(lo, hi Expr, leftOpen, rightOpen bool) *Interval {
	return &Interval{lo: lo, hi: hi, leftOpen: leftOpen, rightOpen: rightOpen}
}

func (iv *Interval) Lo() Expr         { return iv.lo }
func (iv *Interval) Hi() Expr         { return iv.hi }
func (iv *Interval) LeftOpen() bool   { return iv.leftOpen }
func (iv *Interval) RightOpen() bool  { return iv.rightOpen }
func (iv *Interval) exprType() string { return "interval" }

// CalculusOp distinguishes unevaluated derivatives from integrals.
type CalculusOp uint8

const (
	OpDerivative CalculusOp = iota
	OpIntegral
)

// Calculus is an unevaluated derivative or integral. Derivatives carry an
// order; definite integrals carry both bounds.
type Calculus struct {
	op           CalculusOp
	body         Expr
	v            *Sym
	order        int
	lower, upper Expr
}

// UnevaluatedDerivative returns d^order body / d v^order.
func UnevaluatedDerivative(body Expr, v *Sym, order int) *Calculus {
	return &Calculus{op: OpDerivative, body: body, v: v, order: order}
}

// UnevaluatedIntegral returns ∫ body dv.
func UnevaluatedIntegral(body Expr, v *Sym) *Calculus {
	return &Calculus{op: OpIntegral, body: body, v: v}
}

// UnevaluatedDefiniteIntegral returns ∫_lower^upper body dv.
func UnevaluatedDefiniteIntegral(body Expr, v *Sym, lower, upper Expr) *Calculus {
	return &Calculus{op: OpIntegral, body: body, v: v, lower: lower, upper: upper}
}

func (c *Calculus) Op() CalculusOp { return c.op }
func (c *Calculus) Body() Expr     { return c.body }
func (c *Calculus) Var() *Sym      { return c.v }
func (c *Calculus) Order() int     { return c.order }

// Bounds returns the integration bounds of a definite integral.
func (c *Calculus) Bounds() (lower, upper Expr, ok bool) {
	return c.lower, c.upper, c.lower != nil
}

func (c *Calculus) exprType() string { return "calculus" }

// Complex is re + im*I in rectangular form. Simplify rewrites it as a sum.
type Complex struct{ re, im Expr }

func ComplexOf(re, im Expr) *Complex { return &Complex{re: re, im: im} }

func (c *Complex) Re() Expr         { return c.re }
func (c *Complex) Im() Expr         { return c.im }
func (c *Complex) exprType() string { return "complex" }

// MethodCall is an opaque receiver.method(args) application kept for front
// ends; the kernel simplifies its operands and nothing else.
type MethodCall struct {
	recv   Expr
	method string
	args   []Expr
}

func MethodCallOf(recv Expr, method string, args ...Expr) *MethodCall {
	return &MethodCall{recv: recv, method: method, args: append([]Expr(nil), args...)}
}

func (m *MethodCall) Receiver() Expr   { return m.recv }
func (m *MethodCall) Method() string   { return m.method }
func (m *MethodCall) Args() []Expr     { return append([]Expr(nil), m.args...) }
func (m *MethodCall) exprType() string { return "method" }

// BigO is the remainder term O(v^order) of a truncated series.
type BigO struct {
	varName string
	order   int
}

func OTerm(varName string, order int) *BigO { return &BigO{varName: varName, order: order} }

func (o *BigO) Var() string      { return o.varName }
func (o *BigO) Order() int       { return o.order }
func (o *BigO) exprType() string { return "bigo" }
