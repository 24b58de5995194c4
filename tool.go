package gocas

import (
	"context"
	"encoding/json"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ============================================================
// Tool Interface
// ============================================================

// ToolRequest names a tool and carries its JSON parameters. Expressions are
// passed in the FromJSON encoding.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse carries an encoded result with its renderings. Decimal is set
// when the result is a closed numeric value.
type ToolResponse struct {
	Result  interface{} `json:"result,omitempty"`
	LaTeX   string      `json:"latex,omitempty"`
	String  string      `json:"string,omitempty"`
	Decimal string      `json:"decimal,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// defaultPlaces is the number of digits after the point in Decimal.
const defaultPlaces = 16

type tool struct {
	name        string
	description string
	required    []string
	props       map[string]string
	run         func(ctx context.Context, p toolParams) (ToolResponse, error)
}

// HandleToolCall runs one tool call.
func HandleToolCall(req ToolRequest) ToolResponse {
	return HandleToolCallContext(context.Background(), req)
}

// HandleToolCallContext runs one tool call under ctx. Only the batch tools
// observe cancellation; kernel operations run to completion.
func HandleToolCallContext(ctx context.Context, req ToolRequest) ToolResponse {
	t, ok := lookupTool(req.Tool)
	if !ok {
		return ToolResponse{Error: "unknown tool: " + req.Tool}
	}
	p := toolParams(req.Params)
	if p == nil {
		p = toolParams{}
	}
	resp, err := t.run(ctx, p)
	if err != nil {
		kernelLog().WithError(err).WithField("tool", t.name).Debug("tool call failed")
		return ToolResponse{Error: err.Error()}
	}
	return resp
}

func lookupTool(name string) (tool, bool) {
	for _, t := range tools() {
		if t.name == name {
			return t, true
		}
	}
	return tool{}, false
}

// ToolNames lists the tools in schema order.
func ToolNames() []string {
	ts := tools()
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.name
	}
	return out
}

// ToolSpec returns the JSON schema of every tool for agent registration.
func ToolSpec() string {
	ts := tools()
	specs := make([]map[string]interface{}, len(ts))
	for i, t := range ts {
		specs[i] = toolSchema(t)
	}
	b, _ := json.MarshalIndent(map[string]interface{}{"tools": specs}, "", "  ")
	return string(b)
}

func toolSchema(t tool) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range t.props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	required := t.required
	if required == nil {
		required = []string{}
	}
	return map[string]interface{}{
		"name":        t.name,
		"description": t.description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// ============================================================
// Parameter access
// ============================================================

type toolParams map[string]interface{}

func (p toolParams) raw(key string) (interface{}, error) {
	v, ok := p[key]
	if !ok {
		return nil, errors.Errorf("missing param: %s", key)
	}
	return v, nil
}

func (p toolParams) expr(key string) (Expr, error) {
	v, err := p.raw(key)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be an expression object", key)
	}
	e, err := FromJSON(m)
	return e, errors.Wrapf(err, "param %s", key)
}

func (p toolParams) exprs(key string) ([]Expr, error) {
	v, err := p.raw(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be an array", key)
	}
	out := make([]Expr, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("param %s[%d] must be an expression object", key, i)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s[%d]", key, i)
		}
		out[i] = e
	}
	return out, nil
}

func (p toolParams) str(key string) (string, error) {
	v, err := p.raw(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errors.Errorf("param %s must be a non-empty string", key)
	}
	return s, nil
}

func (p toolParams) sym(key string) (*Sym, error) {
	name, err := p.str(key)
	if err != nil {
		return nil, err
	}
	return S(name), nil
}

func (p toolParams) syms(key string) ([]*Sym, error) {
	v, err := p.raw(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be an array of names", key)
	}
	out := make([]*Sym, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok || s == "" {
			return nil, errors.Errorf("param %s[%d] must be a non-empty string", key, i)
		}
		out[i] = S(s)
	}
	return out, nil
}

// integer reads an optional integer, returning def when key is absent.
func (p toolParams) integer(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, errors.Errorf("param %s must be an integer", key)
	}
	return int(f), nil
}

func (p toolParams) number(key string) (float64, error) {
	v, err := p.raw(key)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errors.Errorf("param %s must be a number", key)
	}
	return f, nil
}

func (p toolParams) flag(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// matrix accepts either a "matrix" expression object or the short form
// {rows, cols, entries}.
func (p toolParams) matrix(key string) (*Matrix, error) {
	v, err := p.raw(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be a matrix object", key)
	}
	if _, typed := raw["type"]; typed {
		e, err := FromJSON(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s", key)
		}
		m, ok := e.(*Matrix)
		if !ok {
			return nil, errors.Errorf("param %s must be a matrix, got %s", key, e.exprType())
		}
		return m, nil
	}
	inner := toolParams(raw)
	rows, err := inner.integer("rows", 0)
	if err != nil {
		return nil, err
	}
	cols, err := inner.integer("cols", 0)
	if err != nil {
		return nil, err
	}
	if rows <= 0 || cols <= 0 {
		return nil, errors.New("matrix dimensions must be positive")
	}
	entries, err := inner.exprs("entries")
	if err != nil {
		return nil, err
	}
	if len(entries) != rows*cols {
		return nil, errors.Errorf("matrix entries count mismatch: %d for %dx%d", len(entries), rows, cols)
	}
	return MatrixFromSlice(rows, cols, entries).Optimize(), nil
}

func (p toolParams) places() int32 {
	n, err := p.integer("places", defaultPlaces)
	if err != nil || n < 0 {
		return defaultPlaces
	}
	return int32(n)
}

// ============================================================
// Responses
// ============================================================

func (p toolParams) respond(e Expr) ToolResponse {
	return ToolResponse{Result: e.toJSON(), LaTeX: e.LaTeX(), String: e.String(), Decimal: decimalString(e, p.places())}
}

func (p toolParams) respondAll(es []Expr) ToolResponse {
	strs := make([]string, len(es))
	latex := make([]string, len(es))
	for i, e := range es {
		strs[i], latex[i] = e.String(), e.LaTeX()
	}
	return ToolResponse{
		Result: encodeAll(es),
		String: "[" + strings.Join(strs, ", ") + "]",
		LaTeX:  `\left[` + strings.Join(latex, ", ") + `\right]`,
	}
}

func respondSolver(r SolverResult) ToolResponse {
	latex := make([]string, len(r.Solutions))
	for i, s := range r.Solutions {
		latex[i] = s.LaTeX()
	}
	result := map[string]interface{}{"kind": r.Kind.String(), "solutions": encodeAll(r.Solutions)}
	if len(r.Steps) > 0 {
		result["steps"] = r.Steps
	}
	return ToolResponse{Result: result, String: r.String(), LaTeX: strings.Join(latex, `,\; `)}
}

func respondFloat(f float64, places int32) ToolResponse {
	return ToolResponse{Result: f, String: fstr(f), Decimal: decimal.NewFromFloat(f).Round(places).String()}
}

// decimalString renders closed numeric expressions; anything else gives "".
func decimalString(e Expr, places int32) string {
	if n, ok := e.(*Num); ok {
		return n.val.Decimal(places)
	}
	f, ok := floatValue(e)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return ""
	}
	return decimal.NewFromFloat(f).Round(places).String()
}

// ============================================================
// Tool table
// ============================================================

var (
	exprProps       = map[string]string{"expr": "object"}
	exprVarProps    = map[string]string{"expr": "object", "var": "string"}
	exprVarsProps   = map[string]string{"expr": "object", "vars": "array"}
	exprsVarsProps  = map[string]string{"exprs": "array", "vars": "array"}
	matrixProps     = map[string]string{"matrix": "object"}
	matrixPairProps = map[string]string{"a": "object", "b": "object"}
)

// exprTool builds a tool that maps one expression to another.
func exprTool(name, description string, f func(Expr) Expr) tool {
	return tool{name: name, description: description, required: []string{"expr"}, props: exprProps,
		run: func(_ context.Context, p toolParams) (ToolResponse, error) {
			e, err := p.expr("expr")
			if err != nil {
				return ToolResponse{}, err
			}
			return p.respond(f(e)), nil
		}}
}

// inVar builds a tool over an expression and one variable.
func inVar(name, description string, f func(p toolParams, e Expr, v *Sym) (ToolResponse, error)) tool {
	return tool{name: name, description: description, required: []string{"expr", "var"}, props: exprVarProps,
		run: func(_ context.Context, p toolParams) (ToolResponse, error) {
			e, err := p.expr("expr")
			if err != nil {
				return ToolResponse{}, err
			}
			v, err := p.sym("var")
			if err != nil {
				return ToolResponse{}, err
			}
			return f(p, e, v)
		}}
}

// onMatrix builds a tool over one matrix parameter.
func onMatrix(name, description string, f func(p toolParams, m *Matrix) (ToolResponse, error)) tool {
	return tool{name: name, description: description, required: []string{"matrix"}, props: matrixProps,
		run: func(_ context.Context, p toolParams) (ToolResponse, error) {
			m, err := p.matrix("matrix")
			if err != nil {
				return ToolResponse{}, err
			}
			return f(p, m)
		}}
}

// onMatrixPair builds a tool over matrices a and b.
func onMatrixPair(name, description string, f func(a, b *Matrix) (*Matrix, error)) tool {
	return tool{name: name, description: description, required: []string{"a", "b"}, props: matrixPairProps,
		run: func(_ context.Context, p toolParams) (ToolResponse, error) {
			a, err := p.matrix("a")
			if err != nil {
				return ToolResponse{}, err
			}
			b, err := p.matrix("b")
			if err != nil {
				return ToolResponse{}, err
			}
			out, err := f(a, b)
			if err != nil {
				return ToolResponse{}, err
			}
			return p.respond(out), nil
		}}
}

func tools() []tool {
	return []tool{
		exprTool("simplify", "Simplify a symbolic expression", Simplify),
		exprTool("deep_simplify", "Expand then simplify", DeepSimplify),
		exprTool("expand", "Algebraically expand expression", Expand),
		exprTool("to_latex", "Render as LaTeX", func(e Expr) Expr { return e }),
		{name: "free_symbols", description: "Return free symbol names", required: []string{"expr"}, props: exprProps,
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				names := FreeSymbolNames(e)
				return ToolResponse{Result: names, String: strings.Join(names, ", ")}, nil
			}},
		inVar("collect", "Collect terms by powers of variable", func(p toolParams, e Expr, v *Sym) (ToolResponse, error) {
			return p.respond(Collect(e, v)), nil
		}),
		inVar("factor", "Factor a polynomial over the rationals", func(p toolParams, e Expr, v *Sym) (ToolResponse, error) {
			r := Factor(e, v)
			if !r.Success {
				return ToolResponse{}, errors.Errorf("factor: %s is not a rational polynomial in %s", e, v)
			}
			return p.respond(r.Expr()), nil
		}),
		{name: "cancel", description: "Cancel the common polynomial factors of num/denom", required: []string{"num", "denom"},
			props: map[string]string{"num": "object", "denom": "object"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				num, err := p.expr("num")
				if err != nil {
					return ToolResponse{}, err
				}
				den, err := p.expr("denom")
				if err != nil {
					return ToolResponse{}, err
				}
				return p.respond(Cancel(num, den)), nil
			}},
		{name: "apart", description: "Partial fraction decomposition", required: []string{"num", "denom", "var"},
			props: map[string]string{"num": "object", "denom": "object", "var": "string"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				num, err := p.expr("num")
				if err != nil {
					return ToolResponse{}, err
				}
				den, err := p.expr("denom")
				if err != nil {
					return ToolResponse{}, err
				}
				v, err := p.sym("var")
				if err != nil {
					return ToolResponse{}, err
				}
				parts, err := Apart(num, den, v)
				if err != nil {
					return ToolResponse{}, err
				}
				return p.respondAll(parts), nil
			}},
		{name: "substitute", description: "Substitute var with value", required: []string{"expr", "var", "value"},
			props: map[string]string{"expr": "object", "var": "string", "value": "object"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				v, err := p.sym("var")
				if err != nil {
					return ToolResponse{}, err
				}
				val, err := p.expr("value")
				if err != nil {
					return ToolResponse{}, err
				}
				return p.respond(Simplify(Substitute(e, v, val))), nil
			}},
		{name: "evaluate", description: "Evaluate numerically. Optional env maps names to expressions",
			required: []string{"expr"}, props: map[string]string{"expr": "object", "env": "object", "places": "integer"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				env := map[string]Expr{}
				if raw, ok := p["env"].(map[string]interface{}); ok {
					for name, v := range raw {
						m, ok := v.(map[string]interface{})
						if !ok {
							return ToolResponse{}, errors.Errorf("env %s must be an expression object", name)
						}
						val, err := FromJSON(m)
						if err != nil {
							return ToolResponse{}, errors.Wrapf(err, "env %s", name)
						}
						env[name] = val
					}
				}
				out, err := EvaluateWith(e, env)
				if err != nil {
					return ToolResponse{}, err
				}
				return p.respond(out), nil
			}},
		inVar("diff", "Derivative d^n/dvar^n. Optional n (default 1)", func(p toolParams, e Expr, v *Sym) (ToolResponse, error) {
			n, err := p.integer("n", 1)
			if err != nil {
				return ToolResponse{}, err
			}
			if n < 0 {
				return ToolResponse{}, errors.New("param n must be >= 0")
			}
			return p.respond(DerivativeN(e, v, n)), nil
		}),
		{name: "implicit_diff", description: "dy/dx on the curve eq, read as eq = 0 unless a relation",
			required: []string{"eq", "y", "x"}, props: map[string]string{"eq": "object", "y": "string", "x": "string"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				eq, err := p.expr("eq")
				if err != nil {
					return ToolResponse{}, err
				}
				y, err := p.sym("y")
				if err != nil {
					return ToolResponse{}, err
				}
				x, err := p.sym("x")
				if err != nil {
					return ToolResponse{}, err
				}
				return p.respond(ImplicitDerivative(eq, y, x)), nil
			}},
		vectorTool("gradient", "Gradient vector of expr", func(p toolParams, e Expr, vars []*Sym) (ToolResponse, error) {
			return p.respondAll(Gradient(e, vars)), nil
		}),
		vectorTool("hessian", "Hessian matrix of second partials", func(p toolParams, e Expr, vars []*Sym) (ToolResponse, error) {
			return p.respond(Hessian(e, vars)), nil
		}),
		vectorTool("laplacian", "Sum of unmixed second partials", func(p toolParams, e Expr, vars []*Sym) (ToolResponse, error) {
			return p.respond(Laplacian(e, vars)), nil
		}),
		fieldTool("jacobian", "Jacobian matrix of exprs", func(p toolParams, es []Expr, vars []*Sym) (ToolResponse, error) {
			return p.respond(Jacobian(es, vars)), nil
		}),
		fieldTool("divergence", "Divergence of the field exprs", func(p toolParams, es []Expr, vars []*Sym) (ToolResponse, error) {
			d, err := Divergence(es, vars)
			if err != nil {
				return ToolResponse{}, err
			}
			return p.respond(d), nil
		}),
		inVar("integrate", "Symbolic antiderivative", func(p toolParams, e Expr, v *Sym) (ToolResponse, error) {
			return p.respond(Integrate(e, v)), nil
		}),
		{name: "definite_integrate", description: "Exact definite integral between expression bounds a and b",
			required: []string{"expr", "var", "a", "b"},
			props:    map[string]string{"expr": "object", "var": "string", "a": "object", "b": "object"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				v, err := p.sym("var")
				if err != nil {
					return ToolResponse{}, err
				}
				a, err := p.expr("a")
				if err != nil {
					return ToolResponse{}, err
				}
				b, err := p.expr("b")
				if err != nil {
					return ToolResponse{}, err
				}
				return p.respond(DefiniteIntegral(e, v, a, b)), nil
			}},
		{name: "numeric_integrate", description: "Gauss-Legendre quadrature between numbers a and b",
			required: []string{"expr", "var", "a", "b"},
			props:    map[string]string{"expr": "object", "var": "string", "a": "number", "b": "number"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				v, err := p.sym("var")
				if err != nil {
					return ToolResponse{}, err
				}
				a, err := p.number("a")
				if err != nil {
					return ToolResponse{}, err
				}
				b, err := p.number("b")
				if err != nil {
					return ToolResponse{}, err
				}
				f, err := DefiniteIntegrateNumeric(e, v, a, b)
				if err != nil {
					return ToolResponse{}, err
				}
				return respondFloat(f, p.places()), nil
			}},
		{name: "taylor", description: "Taylor series. Optional around (default 0), order (default 5), remainder",
			required: []string{"expr", "var"},
			props:    map[string]string{"expr": "object", "var": "string", "around": "object", "order": "integer", "remainder": "boolean"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				v, err := p.sym("var")
				if err != nil {
					return ToolResponse{}, err
				}
				order, err := p.integer("order", 5)
				if err != nil {
					return ToolResponse{}, err
				}
				if order < 0 {
					return ToolResponse{}, errors.New("param order must be >= 0")
				}
				var around Expr = N(0)
				if _, ok := p["around"]; ok {
					if around, err = p.expr("around"); err != nil {
						return ToolResponse{}, err
					}
				}
				if p.flag("remainder") {
					return p.respond(TaylorSeriesWithRemainder(e, v, around, order)), nil
				}
				return p.respond(TaylorSeries(e, v, around, order)), nil
			}},
		{name: "limit", description: "Limit of expr as var approaches point", required: []string{"expr", "var", "point"},
			props: map[string]string{"expr": "object", "var": "string", "point": "object"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				v, err := p.sym("var")
				if err != nil {
					return ToolResponse{}, err
				}
				point, err := p.expr("point")
				if err != nil {
					return ToolResponse{}, err
				}
				r := Limit(e, v, point)
				if !r.Success {
					return ToolResponse{}, errors.New(r.Error)
				}
				return p.respond(r.Value), nil
			}},
		inVar("degree", "Polynomial degree in variable", func(_ toolParams, e Expr, v *Sym) (ToolResponse, error) {
			d := Degree(e, v)
			return ToolResponse{Result: d, String: strconv.Itoa(d)}, nil
		}),
		inVar("classify", "Coefficient class of a polynomial", func(_ toolParams, e Expr, v *Sym) (ToolResponse, error) {
			c := Classify(e, v).String()
			return ToolResponse{Result: c, String: c}, nil
		}),
		inVar("poly_coeffs", "Polynomial coefficients keyed by degree", func(_ toolParams, e Expr, v *Sym) (ToolResponse, error) {
			coeffs, ok := PolyCoeffs(e, v)
			if !ok {
				return ToolResponse{}, errors.Errorf("%s is not a polynomial in %s", e, v)
			}
			degrees := make([]int, 0, len(coeffs))
			for d := range coeffs {
				degrees = append(degrees, d)
			}
			sort.Ints(degrees)
			out := make(map[string]interface{}, len(coeffs))
			strs := make([]string, len(degrees))
			for i, d := range degrees {
				k := strconv.Itoa(d)
				out[k] = coeffs[d].toJSON()
				strs[i] = k + ": " + coeffs[d].String()
			}
			return ToolResponse{Result: out, String: "{" + strings.Join(strs, ", ") + "}"}, nil
		}),
		polyPair("poly_gcd", "Monic polynomial GCD of a and b", func(p toolParams, a, b Expr, v *Sym) (ToolResponse, error) {
			return p.respond(PolyGCD(a, b, v)), nil
		}),
		polyPair("poly_div", "Polynomial quotient and remainder of a / b", func(_ toolParams, a, b Expr, v *Sym) (ToolResponse, error) {
			q, r := PolyDivide(a, b, v)
			return ToolResponse{
				Result: map[string]interface{}{"quotient": q.toJSON(), "remainder": r.toJSON()},
				String: "q = " + q.String() + ", r = " + r.String(),
			}, nil
		}),
		{name: "solve", description: "Solve expr = 0 (or a relation) for var. Optional steps",
			required: []string{"expr", "var"}, props: map[string]string{"expr": "object", "var": "string", "steps": "boolean"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				v, err := p.sym("var")
				if err != nil {
					return ToolResponse{}, err
				}
				return respondSolver(Solve(e, v, p.solveOptions()...)), nil
			}},
		{name: "solve_system", description: "Solve a square linear system. Optional steps",
			required: []string{"exprs", "vars"}, props: map[string]string{"exprs": "array", "vars": "array", "steps": "boolean"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				es, err := p.exprs("exprs")
				if err != nil {
					return ToolResponse{}, err
				}
				vars, err := p.syms("vars")
				if err != nil {
					return ToolResponse{}, err
				}
				return respondSolver(SolveSystem(es, vars, p.solveOptions()...)), nil
			}},
		{name: "match", description: "Match expr against pattern; wildcards bind by name",
			required: []string{"expr", "pattern"}, props: map[string]string{"expr": "object", "pattern": "object"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				pat, err := p.expr("pattern")
				if err != nil {
					return ToolResponse{}, err
				}
				b, ok := Match(e, pat)
				if !ok {
					return ToolResponse{Result: map[string]interface{}{"matched": false}, String: "no match"}, nil
				}
				names := make([]string, 0, len(b))
				for name := range b {
					names = append(names, name)
				}
				sort.Strings(names)
				out := make(map[string]interface{}, len(b))
				strs := make([]string, len(names))
				for i, name := range names {
					out[name] = b[name].toJSON()
					strs[i] = name + " = " + b[name].String()
				}
				return ToolResponse{Result: map[string]interface{}{"matched": true, "bindings": out}, String: strings.Join(strs, ", ")}, nil
			}},
		{name: "replace", description: "Rewrite every match of pattern bottom-up with template",
			required: []string{"expr", "pattern", "template"},
			props:    map[string]string{"expr": "object", "pattern": "object", "template": "object"},
			run: func(_ context.Context, p toolParams) (ToolResponse, error) {
				e, err := p.expr("expr")
				if err != nil {
					return ToolResponse{}, err
				}
				pat, err := p.expr("pattern")
				if err != nil {
					return ToolResponse{}, err
				}
				tmpl, err := p.expr("template")
				if err != nil {
					return ToolResponse{}, err
				}
				return p.respond(Replace(e, pat, tmpl)), nil
			}},
		onMatrix("matrix_det", "Matrix determinant", func(p toolParams, m *Matrix) (ToolResponse, error) {
			d, err := m.Det()
			if err != nil {
				return ToolResponse{}, err
			}
			return p.respond(d), nil
		}),
		onMatrix("matrix_inv", "Matrix inverse", func(p toolParams, m *Matrix) (ToolResponse, error) {
			inv, err := m.Inverse()
			if err != nil {
				return ToolResponse{}, err
			}
			return p.respond(inv), nil
		}),
		onMatrix("matrix_trace", "Matrix trace", func(p toolParams, m *Matrix) (ToolResponse, error) {
			tr, err := m.Trace()
			if err != nil {
				return ToolResponse{}, err
			}
			return p.respond(tr), nil
		}),
		onMatrix("matrix_transpose", "Matrix transpose", func(p toolParams, m *Matrix) (ToolResponse, error) {
			return p.respond(m.Transpose()), nil
		}),
		onMatrix("matrix_lu", "LU decomposition with partial pivoting", func(_ toolParams, m *Matrix) (ToolResponse, error) {
			lu, err := m.LU()
			if err != nil {
				return ToolResponse{}, err
			}
			return ToolResponse{
				Result: map[string]interface{}{"l": lu.L.toJSON(), "u": lu.U.toJSON(), "perm": lu.Perm, "sign": lu.Sign},
				String: "L = " + lu.L.String() + ", U = " + lu.U.String(),
				LaTeX:  "L = " + lu.L.LaTeX() + ",\\; U = " + lu.U.LaTeX(),
			}, nil
		}),
		onMatrix("matrix_qr", "QR decomposition", func(_ toolParams, m *Matrix) (ToolResponse, error) {
			q, r, err := m.QR()
			if err != nil {
				return ToolResponse{}, err
			}
			return ToolResponse{
				Result: map[string]interface{}{"q": q.toJSON(), "r": r.toJSON()},
				String: "Q = " + q.String() + ", R = " + r.String(),
				LaTeX:  "Q = " + q.LaTeX() + ",\\; R = " + r.LaTeX(),
			}, nil
		}),
		onMatrix("matrix_cholesky", "Cholesky factor L with A = L L^T", func(p toolParams, m *Matrix) (ToolResponse, error) {
			l, err := m.Cholesky()
			if err != nil {
				return ToolResponse{}, err
			}
			return p.respond(l), nil
		}),
		onMatrixPair("matrix_add", "Matrix sum a + b", (*Matrix).Add),
		onMatrixPair("matrix_mul", "Matrix product a * b", (*Matrix).Mul),
		onMatrixPair("matrix_solve", "Solve a x = b", (*Matrix).Solve),
		onMatrixPair("matrix_least_squares", "Least-squares solution of a x = b", (*Matrix).LeastSquares),
		{name: "batch_simplify", description: "Simplify many expressions concurrently", required: []string{"exprs"},
			props: map[string]string{"exprs": "array"},
			run:   batchSimplify},
		{name: "cache_stats", description: "Simplifier cache statistics",
			run: func(context.Context, toolParams) (ToolResponse, error) {
				st := SimplifyCacheStats()
				return ToolResponse{Result: st, String: strconv.Itoa(st.Size) + "/" + strconv.Itoa(st.Capacity) + " entries"}, nil
			}},
		{name: "tool_spec", description: "Return this tool schema",
			run: func(context.Context, toolParams) (ToolResponse, error) {
				return ToolResponse{String: ToolSpec()}, nil
			}},
	}
}

func vectorTool(name, description string, f func(p toolParams, e Expr, vars []*Sym) (ToolResponse, error)) tool {
	return tool{name: name, description: description, required: []string{"expr", "vars"}, props: exprVarsProps,
		run: func(_ context.Context, p toolParams) (ToolResponse, error) {
			e, err := p.expr("expr")
			if err != nil {
				return ToolResponse{}, err
			}
			vars, err := p.syms("vars")
			if err != nil {
				return ToolResponse{}, err
			}
			return f(p, e, vars)
		}}
}

func fieldTool(name, description string, f func(p toolParams, es []Expr, vars []*Sym) (ToolResponse, error)) tool {
	return tool{name: name, description: description, required: []string{"exprs", "vars"}, props: exprsVarsProps,
		run: func(_ context.Context, p toolParams) (ToolResponse, error) {
			es, err := p.exprs("exprs")
			if err != nil {
				return ToolResponse{}, err
			}
			vars, err := p.syms("vars")
			if err != nil {
				return ToolResponse{}, err
			}
			return f(p, es, vars)
		}}
}

func polyPair(name, description string, f func(p toolParams, a, b Expr, v *Sym) (ToolResponse, error)) tool {
	return tool{name: name, description: description, required: []string{"a", "b", "var"},
		props: map[string]string{"a": "object", "b": "object", "var": "string"},
		run: func(_ context.Context, p toolParams) (ToolResponse, error) {
			a, err := p.expr("a")
			if err != nil {
				return ToolResponse{}, err
			}
			b, err := p.expr("b")
			if err != nil {
				return ToolResponse{}, err
			}
			v, err := p.sym("var")
			if err != nil {
				return ToolResponse{}, err
			}
			return f(p, a, b, v)
		}}
}

func (p toolParams) solveOptions() []SolveOption {
	if p.flag("steps") {
		return []SolveOption{WithSteps()}
	}
	return nil
}

// batchSimplify fans the expressions out over GOMAXPROCS workers. Results
// keep the input order.
func batchSimplify(ctx context.Context, p toolParams) (ToolResponse, error) {
	es, err := p.exprs("exprs")
	if err != nil {
		return ToolResponse{}, err
	}
	out := make([]Expr, len(es))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, e := range es {
		i, e := i, e
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Simplify(e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ToolResponse{}, errors.Wrap(err, "batch_simplify")
	}
	return p.respondAll(out), nil
}
