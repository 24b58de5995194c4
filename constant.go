package gocas

import (
	"math"
)

var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
)

// NamedConst enumerates the mathematical constants the kernel knows by name.
type NamedConst uint8

const (
	ConstPi NamedConst = iota
	ConstE
	ConstI
	ConstPhi
	ConstEulerGamma
	ConstInfinity
	ConstUndefined
)

type constInfo struct {
	name  string
	latex string
	value float64
}

var constTable = [...]constInfo{
	ConstPi:         {"pi", "\\pi", math.Pi},
	ConstE:          {"E", "e", math.E},
	ConstI:          {"I", "i", math.NaN()},
	ConstPhi:        {"phi", "\\varphi", math.Phi},
	ConstEulerGamma: {"EulerGamma", "\\gamma", 0.5772156649015329},
	ConstInfinity:   {"oo", "\\infty", math.Inf(1)},
	ConstUndefined:  {"undefined", "\\text{undefined}", math.NaN()},
}

func (c NamedConst) String() string { return constTable[c].name }

// lookupConst finds a constant by its printed name.
func lookupConst(name string) (NamedConst, bool) {
	for i, info := range constTable {
		if info.name == name {
			return NamedConst(i), true
		}
	}
	return 0, false
}

// Const is a named constant atom. The undefined marker is not a Const: it is
// the nullary function application undefined().
type Const struct{ which NamedConst }

var (
	piConst  = &Const{which: ConstPi}
	eConst   = &Const{which: ConstE}
	iConst   = &Const{which: ConstI}
	phiConst = &Const{which: ConstPhi}
	egConst  = &Const{which: ConstEulerGamma}
	infConst = &Const{which: ConstInfinity}
)

// Constant returns the atom for c. ConstUndefined yields the undefined
// marker.
func Constant(c NamedConst) Expr {
	switch c {
	case ConstPi:
		return piConst
	case ConstE:
		return eConst
	case ConstI:
		return iConst
	case ConstPhi:
		return phiConst
	case ConstEulerGamma:
		return egConst
	case ConstInfinity:
		return infConst
	}
	return Undefined()
}

func Pi() Expr         { return piConst }
func E() Expr          { return eConst }
func I() Expr          { return iConst }
func Phi() Expr        { return phiConst }
func EulerGamma() Expr { return egConst }
func Infinity() Expr   { return infConst }

func (c *Const) Which() NamedConst { return c.which }
func (c *Const) exprType() string  { return "const" }

// Float64 returns the numeric value of a real constant. I and infinity have
// no finite real value.
func (c *Const) Float64() (float64, bool) {
	v := constTable[c.which].value
	return v, !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ============================================================
// Undefined marker
// ============================================================

const undefinedName = "undefined"

var undefinedExpr = &Func{name: undefinedName}

// Undefined returns the structural indeterminate marker undefined(). The
// simplifier produces it for 0^0, 0^-n and exact division by zero, and it
// absorbs every arithmetic head it meets.
func Undefined() Expr { return undefinedExpr }

// IsUndefined reports whether e is the undefined marker.
func IsUndefined(e Expr) bool {
	f, ok := e.(*Func)
	return ok && f.name == undefinedName && len(f.args) == 0
}

func anyUndefined(es []Expr) bool {
	for _, e := range es {
		if IsUndefined(e) {
			return true
		}
	}
	return false
}

func isConst(e Expr, c NamedConst) bool {
	k, ok := e.(*Const)
	return ok && k.which == c
}
