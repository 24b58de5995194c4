package gocas_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/njchilds90/gocas"
)

// call runs a tool with params given as JSON text, the way an agent sends
// them.
func call(t *testing.T, tool, params string) gocas.ToolResponse {
	t.Helper()
	var p map[string]interface{}
	if err := json.Unmarshal([]byte(params), &p); err != nil {
		t.Fatalf("bad test params %s: %v", params, err)
	}
	return gocas.HandleToolCall(gocas.ToolRequest{Tool: tool, Params: p})
}

func enc(t *testing.T, e gocas.Expr) string {
	t.Helper()
	s, err := gocas.ToJSON(e)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTool_Simplify(t *testing.T) {
	x := gocas.S("x")
	resp := call(t, "simplify", `{"expr":`+enc(t, gocas.AddOf(x, x))+`}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "2*x" {
		t.Errorf("want 2*x, got %s", resp.String)
	}
	if resp.Result == nil || resp.LaTeX == "" {
		t.Errorf("want an encoded result and LaTeX, got %+v", resp)
	}
}

func TestTool_Diff(t *testing.T) {
	x := gocas.S("x")
	resp := call(t, "diff", `{"expr":`+enc(t, gocas.PowOf(x, gocas.N(3)))+`,"var":"x","n":2}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "6*x" {
		t.Errorf("want 6*x, got %s", resp.String)
	}
	if resp := call(t, "diff", `{"expr":`+enc(t, x)+`,"var":"x","n":1.5}`); resp.Error == "" {
		t.Error("a fractional order should be rejected")
	}
}

func TestTool_Evaluate(t *testing.T) {
	x := gocas.S("x")
	e := gocas.DivOf(gocas.N(1), x)
	resp := call(t, "evaluate", `{"expr":`+enc(t, e)+`,"env":{"x":{"type":"num","value":3}},"places":4}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "1/3" || resp.Decimal != "0.3333" {
		t.Errorf("want 1/3 and 0.3333, got %s and %s", resp.String, resp.Decimal)
	}
	resp = call(t, "evaluate", `{"expr":`+enc(t, e)+`,"env":{"x":{"type":"num","value":0}}}`)
	if !strings.Contains(resp.Error, "division by zero") {
		t.Errorf("want a division by zero, got %q", resp.Error)
	}
}

func TestTool_Solve(t *testing.T) {
	x := gocas.S("x")
	e := gocas.AddOf(gocas.PowOf(x, gocas.N(2)), gocas.MulOf(gocas.N(-5), x), gocas.N(6))
	resp := call(t, "solve", `{"expr":`+enc(t, e)+`,"var":"x"}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("want an object result, got %T", resp.Result)
	}
	if result["kind"] != "multiple" {
		t.Errorf("want kind multiple, got %v", result["kind"])
	}
	if sols, _ := result["solutions"].([]interface{}); len(sols) != 2 {
		t.Errorf("want two solutions, got %v", result["solutions"])
	}
	if _, ok := result["steps"]; ok {
		t.Error("steps should only be returned on request")
	}
	resp = call(t, "solve", `{"expr":`+enc(t, e)+`,"var":"x","steps":true}`)
	if result, _ := resp.Result.(map[string]interface{}); result["steps"] == nil {
		t.Error("want steps when asked")
	}
}

func TestTool_SolveSystem(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	e1 := gocas.AddOf(gocas.MulOf(gocas.N(2), x), y, gocas.N(-5))
	e2 := gocas.AddOf(x, gocas.Neg(y), gocas.N(-1))
	resp := call(t, "solve_system", `{"exprs":[`+enc(t, e1)+`,`+enc(t, e2)+`],"vars":["x","y"]}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	if result["kind"] != "multiple" {
		t.Errorf("want kind multiple, got %v", result["kind"])
	}
	if !strings.Contains(resp.String, "2") || !strings.Contains(resp.String, "1") {
		t.Errorf("want the solutions 2 and 1 in %q", resp.String)
	}
}

func TestTool_MatrixSolveSingular(t *testing.T) {
	resp := call(t, "matrix_solve", `{
		"a": {"rows": 2, "cols": 2, "entries": [
			{"type":"num","value":1}, {"type":"num","value":2},
			{"type":"num","value":2}, {"type":"num","value":4}]},
		"b": {"rows": 2, "cols": 1, "entries": [
			{"type":"num","value":3}, {"type":"num","value":6}]}
	}`)
	if !strings.Contains(resp.Error, "division by zero") {
		t.Errorf("want a division by zero error, got %+v", resp)
	}
}

func TestTool_MatrixDet(t *testing.T) {
	m := gocas.MatrixFromSlice(2, 2, []gocas.Expr{gocas.N(1), gocas.N(2), gocas.N(3), gocas.N(4)})
	resp := call(t, "matrix_det", `{"matrix":`+enc(t, m)+`}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "-2" || resp.Decimal == "" {
		t.Errorf("want -2 with a decimal rendering, got %+v", resp)
	}
	if resp := call(t, "matrix_det", `{"matrix":{"rows":2,"cols":2,"entries":[]}}`); resp.Error == "" {
		t.Error("want an entry count error")
	}
}

func TestTool_Integrate(t *testing.T) {
	x := gocas.S("x")
	resp := call(t, "integrate", `{"expr":`+enc(t, x)+`,"var":"x"}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	want := gocas.MulOf(gocas.F(1, 2), gocas.PowOf(x, gocas.N(2))).String()
	if resp.String != want {
		t.Errorf("want %s, got %s", want, resp.String)
	}
}

func TestTool_Match(t *testing.T) {
	x := gocas.S("x")
	resp := call(t, "match", `{"expr":`+enc(t, gocas.SinOf(x))+`,"pattern":`+enc(t, gocas.SinOf(gocas.W("a")))+`}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "a = x" {
		t.Errorf("want a = x, got %s", resp.String)
	}
	resp = call(t, "match", `{"expr":`+enc(t, gocas.CosOf(x))+`,"pattern":`+enc(t, gocas.SinOf(gocas.W("a")))+`}`)
	if result, _ := resp.Result.(map[string]interface{}); result["matched"] != false {
		t.Errorf("want matched false, got %+v", resp)
	}
}

func TestTool_BatchSimplifyKeepsOrder(t *testing.T) {
	x, y := gocas.S("x"), gocas.S("y")
	exprs := []gocas.Expr{
		gocas.AddOf(x, x),
		gocas.MulOf(y, y),
		gocas.AddOf(gocas.PowOf(gocas.SinOf(x), gocas.N(2)), gocas.PowOf(gocas.CosOf(x), gocas.N(2))),
	}
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = enc(t, e)
	}
	resp := call(t, "batch_simplify", `{"exprs":[`+strings.Join(parts, ",")+`]}`)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "[2*x, y^2, 1]" {
		t.Errorf("want [2*x, y^2, 1], got %s", resp.String)
	}
}

func TestTool_BatchSimplifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var p map[string]interface{}
	_ = json.Unmarshal([]byte(`{"exprs":[{"type":"sym","name":"x"}]}`), &p)
	resp := gocas.HandleToolCallContext(ctx, gocas.ToolRequest{Tool: "batch_simplify", Params: p})
	if !strings.Contains(resp.Error, "canceled") {
		t.Errorf("want a cancellation error, got %+v", resp)
	}
}

func TestTool_Errors(t *testing.T) {
	if resp := call(t, "nope", `{}`); resp.Error != "unknown tool: nope" {
		t.Errorf("want unknown tool: nope, got %q", resp.Error)
	}
	if resp := call(t, "simplify", `{}`); resp.Error != "missing param: expr" {
		t.Errorf("want missing param: expr, got %q", resp.Error)
	}
	if resp := call(t, "simplify", `{"expr":{"type":"bogus"}}`); !strings.Contains(resp.Error, "unknown expression type") {
		t.Errorf("want a decode error, got %q", resp.Error)
	}
	if resp := gocas.HandleToolCall(gocas.ToolRequest{Tool: "cache_stats"}); resp.Error != "" {
		t.Errorf("nil params should be accepted, got %q", resp.Error)
	}
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name        string                 `json:"name"`
			InputSchema map[string]interface{} `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(gocas.ToolSpec()), &spec); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	names := gocas.ToolNames()
	if len(spec.Tools) != len(names) {
		t.Fatalf("want %d tools, got %d", len(names), len(spec.Tools))
	}
	seen := map[string]bool{}
	for i, tool := range spec.Tools {
		if tool.Name != names[i] {
			t.Errorf("tool %d: want %s, got %s", i, names[i], tool.Name)
		}
		if seen[tool.Name] {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		seen[tool.Name] = true
		if tool.InputSchema["type"] != "object" {
			t.Errorf("%s: want an object input schema", tool.Name)
		}
	}
	for _, want := range []string{"simplify", "solve", "solve_system", "matrix_solve", "batch_simplify", "match"} {
		if !seen[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}
