package gocas

import (
	"encoding/json"
	"math"

	"github.com/njchilds90/gocas/number"
	"github.com/pkg/errors"
)

// ============================================================
// JSON Serialization
// ============================================================

// Every node encodes as an object with a "type" field naming its head.
// Numbers are strings so big integers and rationals survive intact.

func (n *Num) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "num", "value": n.val.String()}
}

func (s *Sym) toJSON() map[string]interface{} {
	out := map[string]interface{}{"type": "sym", "name": s.name}
	if s.kind != Scalar {
		out["kind"] = s.kind.String()
	}
	return out
}

func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.which.String()}
}

func (a *Add) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "add", "terms": encodeAll(a.terms)}
}

func (m *Mul) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "mul", "factors": encodeAll(m.factors)}
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "args": encodeAll(f.args)}
}

func (r *Relation) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "rel", "op": r.op.String(), "lhs": r.lhs.toJSON(), "rhs": r.rhs.toJSON()}
}

func (p *Piecewise) toJSON() map[string]interface{} {
	pieces := make([]interface{}, len(p.pieces))
	for i, pc := range p.pieces {
		m := map[string]interface{}{"value": pc.Value.toJSON()}
		if pc.Cond != nil {
			m["cond"] = pc.Cond.toJSON()
		}
		pieces[i] = m
	}
	return map[string]interface{}{"type": "piecewise", "pieces": pieces}
}

func (s *FiniteSet) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "set", "elems": encodeAll(s.elems)}
}

func (iv *Interval) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type":       "interval",
		"lo":         iv.lo.toJSON(),
		"hi":         iv.hi.toJSON(),
		"left_open":  iv.leftOpen,
		"right_open": iv.rightOpen,
	}
}

func (c *Calculus) toJSON() map[string]interface{} {
	out := map[string]interface{}{"type": "calculus", "body": c.body.toJSON(), "var": c.v.toJSON()}
	if c.op == OpDerivative {
		out["op"] = "derivative"
		out["order"] = c.order
		return out
	}
	out["op"] = "integral"
	if c.lower != nil {
		out["lower"] = c.lower.toJSON()
		out["upper"] = c.upper.toJSON()
	}
	return out
}

func (c *Complex) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "complex", "re": c.re.toJSON(), "im": c.im.toJSON()}
}

func (m *MethodCall) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "method", "recv": m.recv.toJSON(), "method": m.method, "args": encodeAll(m.args)}
}

func (o *BigO) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "bigo", "var": o.varName, "order": o.order}
}

// Structured matrices are written densely with their kind; the decoder
// repacks them.
func (m *Matrix) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type": "matrix",
		"kind": m.kind.String(),
		"rows": m.rows,
		"cols": m.cols,
		"data": encodeAll(m.elements()),
	}
}

// Predicates are not serializable; only the name and exclusions survive.
func (w *Wildcard) toJSON() map[string]interface{} {
	out := map[string]interface{}{"type": "wildcard", "name": w.name}
	if w.exclude != nil && !w.exclude.Empty() {
		syms := SortedSymbols(w.exclude)
		ex := make([]interface{}, len(syms))
		for i, s := range syms {
			ex[i] = s.toJSON()
		}
		out["exclude"] = ex
	}
	return out
}

func (x *Exact) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "exact", "expr": x.e.toJSON()}
}

func encodeAll(es []Expr) []interface{} {
	out := make([]interface{}, len(es))
	for i, e := range es {
		out[i] = e.toJSON()
	}
	return out
}

// ToJSON encodes e as a JSON object.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), errors.Wrap(err, "encode expression")
}

// ParseJSON decodes an expression from its JSON text.
func ParseJSON(s string) (Expr, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, errors.Wrap(err, "decode expression")
	}
	return FromJSON(data)
}

// FromJSON rebuilds an expression from its decoded JSON object. Nodes are
// rebuilt through the public constructors, so the result is canonical.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, errors.New("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, errors.New("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, errors.New("field 'type' must be a non-empty string")
	}

	subExpr := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, errors.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		return e, errors.Wrapf(err, "%s: %s", typ, field)
	}

	subExprs := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, errors.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, errors.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: %s[%d]", typ, field, i)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", errors.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", errors.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	subNumberAsInt := func(field string) (int, error) {
		v, ok := data[field]
		if !ok {
			return 0, errors.Errorf("%s: missing %q", typ, field)
		}
		n, ok := v.(float64)
		if !ok || n != math.Trunc(n) {
			return 0, errors.Errorf("%s: %q must be an integer", typ, field)
		}
		return int(n), nil
	}

	subBool := func(field string) bool {
		b, _ := data[field].(bool)
		return b
	}

	subSym := func(field string) (*Sym, error) {
		e, err := subExpr(field)
		if err != nil {
			return nil, err
		}
		s, ok := e.(*Sym)
		if !ok {
			return nil, errors.Errorf("%s: %q must be a symbol", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		return decodeNum(data["value"])

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		kind := Scalar
		if k, ok := data["kind"].(string); ok {
			if kind, ok = ParseSymbolKind(k); !ok {
				return nil, errors.Errorf("sym: unknown kind %q", k)
			}
		}
		return SymOf(name, kind), nil

	case "const":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		c, ok := lookupConst(name)
		if !ok {
			return nil, errors.Errorf("const: unknown constant %q", name)
		}
		return Constant(c), nil

	case "add":
		terms, err := subExprs("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subExprs("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := subExpr("base")
		if err != nil {
			return nil, err
		}
		exp, err := subExpr("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if _, single := data["arg"]; single {
			arg, err := subExpr("arg")
			if err != nil {
				return nil, err
			}
			return FuncOf(name, arg), nil
		}
		var args []Expr
		if _, ok := data["args"]; ok {
			if args, err = subExprs("args"); err != nil {
				return nil, err
			}
		}
		return FuncOf(name, args...), nil

	case "rel":
		opName, err := subString("op")
		if err != nil {
			return nil, err
		}
		op, ok := parseRelOp(opName)
		if !ok {
			return nil, errors.Errorf("rel: unknown operator %q", opName)
		}
		lhs, err := subExpr("lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := subExpr("rhs")
		if err != nil {
			return nil, err
		}
		return Rel(op, lhs, rhs), nil

	case "piecewise":
		raw, ok := data["pieces"].([]interface{})
		if !ok {
			return nil, errors.New("piecewise: \"pieces\" must be an array")
		}
		pieces := make([]Piece, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf("piecewise: pieces[%d] must be an object", i)
			}
			p, err := decodePiece(m)
			if err != nil {
				return nil, errors.Wrapf(err, "piecewise: pieces[%d]", i)
			}
			pieces[i] = p
		}
		return PiecewiseOf(pieces...), nil

	case "set":
		elems, err := subExprs("elems")
		if err != nil {
			return nil, err
		}
		return SetOf(elems...), nil

	case "interval":
		lo, err := subExpr("lo")
		if err != nil {
			return nil, err
		}
		hi, err := subExpr("hi")
		if err != nil {
			return nil, err
		}
		return IntervalOf(lo, hi, subBool("left_open"), subBool("right_open")), nil

	case "calculus":
		body, err := subExpr("body")
		if err != nil {
			return nil, err
		}
		v, err := subSym("var")
		if err != nil {
			return nil, err
		}
		op, err := subString("op")
		if err != nil {
			return nil, err
		}
		switch op {
		case "derivative":
			order, err := subNumberAsInt("order")
			if err != nil {
				return nil, err
			}
			return UnevaluatedDerivative(body, v, order), nil
		case "integral":
			if _, definite := data["lower"]; !definite {
				return UnevaluatedIntegral(body, v), nil
			}
			lower, err := subExpr("lower")
			if err != nil {
				return nil, err
			}
			upper, err := subExpr("upper")
			if err != nil {
				return nil, err
			}
			return UnevaluatedDefiniteIntegral(body, v, lower, upper), nil
		}
		return nil, errors.Errorf("calculus: unknown op %q", op)

	case "complex":
		re, err := subExpr("re")
		if err != nil {
			return nil, err
		}
		im, err := subExpr("im")
		if err != nil {
			return nil, err
		}
		return ComplexOf(re, im), nil

	case "method":
		recv, err := subExpr("recv")
		if err != nil {
			return nil, err
		}
		method, err := subString("method")
		if err != nil {
			return nil, err
		}
		args, err := subExprs("args")
		if err != nil {
			return nil, err
		}
		return MethodCallOf(recv, method, args...), nil

	case "bigo":
		v, err := subString("var")
		if err != nil {
			return nil, err
		}
		order, err := subNumberAsInt("order")
		if err != nil {
			return nil, err
		}
		return OTerm(v, order), nil

	case "matrix":
		rows, err := subNumberAsInt("rows")
		if err != nil {
			return nil, err
		}
		cols, err := subNumberAsInt("cols")
		if err != nil {
			return nil, err
		}
		entries, err := subExprs("data")
		if err != nil {
			return nil, err
		}
		if rows < 0 || cols < 0 || len(entries) != rows*cols {
			return nil, errors.Errorf("matrix: %d entries for %dx%d", len(entries), rows, cols)
		}
		kind, _ := data["kind"].(string)
		return repack(MatrixFromSlice(rows, cols, entries), kind)

	case "wildcard":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if _, ok := data["exclude"]; !ok {
			return W(name), nil
		}
		ex, err := subExprs("exclude")
		if err != nil {
			return nil, err
		}
		syms := make([]*Sym, 0, len(ex))
		for i, e := range ex {
			s, ok := e.(*Sym)
			if !ok {
				return nil, errors.Errorf("wildcard: exclude[%d] must be a symbol", i)
			}
			syms = append(syms, s)
		}
		return W(name, Excluding(syms...)), nil

	case "exact":
		e, err := subExpr("expr")
		if err != nil {
			return nil, err
		}
		return ExactOf(e), nil
	}
	return nil, errors.Errorf("unknown expression type: %s", typ)
}

// decodeNum accepts the canonical string form and, for hand-written
// requests, plain JSON numbers.
func decodeNum(v interface{}) (Expr, error) {
	switch val := v.(type) {
	case string:
		n, err := number.Parse(val)
		if err != nil {
			return nil, errors.Wrap(err, "num")
		}
		return NumOf(n), nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return N(int64(val)), nil
		}
		out := NFloat(val)
		if IsUndefined(out) {
			return nil, errors.Errorf("num: %v is not finite", val)
		}
		return out, nil
	case nil:
		return nil, errors.New("num: missing 'value'")
	}
	return nil, errors.Errorf("num: 'value' must be a string or number, got %T", v)
}

func decodePiece(m map[string]interface{}) (Piece, error) {
	vm, ok := m["value"].(map[string]interface{})
	if !ok {
		return Piece{}, errors.New("\"value\" must be an object")
	}
	val, err := FromJSON(vm)
	if err != nil {
		return Piece{}, err
	}
	p := Piece{Value: val}
	if cm, ok := m["cond"].(map[string]interface{}); ok {
		if p.Cond, err = FromJSON(cm); err != nil {
			return Piece{}, err
		}
	}
	return p, nil
}

func parseRelOp(s string) (RelOp, bool) {
	for i, sym := range relSymbols {
		if sym == s {
			return RelOp(i), true
		}
	}
	return 0, false
}

// repack restores the storage kind recorded by Matrix.toJSON. An empty kind
// lets Optimize choose.
func repack(m *Matrix, kind string) (*Matrix, error) {
	square := m.IsSquare()
	switch kind {
	case "", "auto":
		return m.Optimize(), nil
	case "dense":
		return m, nil
	case "identity", "zero":
		if opt := m.Optimize(); opt.kind.String() == kind {
			return opt, nil
		}
	case "diagonal":
		if square && isTriangular(m, true) && isTriangular(m, false) {
			return DiagonalOf(m.diagonal()...), nil
		}
	case "scalar":
		if d := m.diagonal(); square && isTriangular(m, true) && isTriangular(m, false) && allEqual(d) {
			return ScalarMatrixOf(m.rows, d[0]), nil
		}
	case "permutation":
		if p, ok := m.asPermutation(); square && ok {
			return p, nil
		}
	case "upper":
		if square && isTriangular(m, true) {
			return m.packUpper(), nil
		}
	case "lower":
		if square && isTriangular(m, false) {
			return m.packLower(), nil
		}
	case "symmetric":
		if square && isSymmetric(m) {
			return m.packSymmetric(), nil
		}
	default:
		return nil, errors.Errorf("matrix: unknown kind %q", kind)
	}
	return nil, errors.Errorf("matrix: entries do not form a %s matrix", kind)
}

func isTriangular(m *Matrix, upper bool) bool {
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if (upper && i > j || !upper && i < j) && !IsZeroFast(m.at(i, j)) {
				return false
			}
		}
	}
	return true
}

func isSymmetric(m *Matrix) bool {
	for i := 0; i < m.rows; i++ {
		for j := i + 1; j < m.cols; j++ {
			if !Equal(m.at(i, j), m.at(j, i)) {
				return false
			}
		}
	}
	return true
}

func allEqual(es []Expr) bool {
	for _, e := range es {
		if !Equal(e, es[0]) {
			return false
		}
	}
	return len(es) > 0
}
