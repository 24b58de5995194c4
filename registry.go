package gocas

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ============================================================
// Function registry
// ============================================================

// Parity describes f(-x) in terms of f(x).
type Parity uint8

const (
	NoParity Parity = iota
	Even
	Odd
)

// FunctionDef is the registry entry of a named function. Every field but
// Name is optional.
type FunctionDef struct {
	Name string
	// Arity is the number of arguments; 0 accepts any count.
	Arity  int
	Parity Parity
	// Period is the smallest positive period, if any.
	Period Expr
	// Domain describes the real domain for documentation and tool output.
	Domain string
	// Inverse names the functional inverse.
	Inverse string
	// Derivative returns f'(u) for a unary function.
	Derivative func(u Expr) Expr
	// Antiderivative returns F(u) with F' = f for a unary function.
	Antiderivative func(u Expr) Expr
	// Eval evaluates f on floats. Domain violations are returned as
	// *MathError values.
	Eval func(args []float64) (float64, error)
	// Special folds exact literal arguments; it reports false when no
	// special value applies.
	Special func(args []Expr) (Expr, bool)
	// Identities are rewrite rules tried on every simplified application.
	Identities []Rule
}

var registry = struct {
	sync.RWMutex
	defs map[string]*FunctionDef
}{defs: make(map[string]*FunctionDef)}

// RegisterFunction adds or replaces a registry entry. Registration is meant
// for program startup; the table is read-mostly afterwards. Cached
// simplifications are dropped since they may predate the new rules.
func RegisterFunction(def FunctionDef) error {
	if def.Name == "" {
		return errors.New("register function: empty name")
	}
	if def.Name == undefinedName {
		return errors.Errorf("register function: %q is reserved", def.Name)
	}
	d := def
	registry.Lock()
	registry.defs[def.Name] = &d
	registry.Unlock()
	simplifyCache.reset()
	return nil
}

// LookupFunction returns the entry for name.
func LookupFunction(name string) (*FunctionDef, bool) {
	registry.RLock()
	defer registry.RUnlock()
	d, ok := registry.defs[name]
	return d, ok
}

// RegisteredFunctions lists the registered names in sorted order.
func RegisteredFunctions() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.defs))
	for n := range registry.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mustRegister(defs ...FunctionDef) {
	for _, d := range defs {
		if err := RegisterFunction(d); err != nil {
			panic(err)
		}
	}
}
