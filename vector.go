package gocas

import "github.com/pkg/errors"

// ============================================================
// Partial derivatives and vector calculus
// ============================================================

// Gradient returns the partial derivatives of e in vars order.
func Gradient(e Expr, vars []*Sym) []Expr {
	out := make([]Expr, len(vars))
	for i, v := range vars {
		out[i] = Derivative(e, v)
	}
	return out
}

// Jacobian returns the len(exprs) x len(vars) matrix of partials.
func Jacobian(exprs []Expr, vars []*Sym) *Matrix {
	entries := make([]Expr, 0, len(exprs)*len(vars))
	for _, e := range exprs {
		entries = append(entries, Gradient(e, vars)...)
	}
	return MatrixFromSlice(len(exprs), len(vars), entries).Optimize()
}

// Hessian returns the matrix of second partials, stored as a symmetric
// matrix when the mixed partials agree.
func Hessian(e Expr, vars []*Sym) *Matrix {
	return Jacobian(Gradient(e, vars), vars)
}

// Laplacian returns the sum of the unmixed second partials.
func Laplacian(e Expr, vars []*Sym) Expr {
	terms := make([]Expr, len(vars))
	for i, v := range vars {
		terms[i] = DerivativeN(e, v, 2)
	}
	return Simplify(AddOf(terms...))
}

// Divergence returns the sum of d field[i] / d vars[i].
func Divergence(field []Expr, vars []*Sym) (Expr, error) {
	if len(field) != len(vars) {
		return nil, errors.Errorf("divergence: %d components for %d variables", len(field), len(vars))
	}
	terms := make([]Expr, len(field))
	for i := range field {
		terms[i] = Derivative(field[i], vars[i])
	}
	return Simplify(AddOf(terms...)), nil
}

// Curl returns the curl of a three-dimensional field.
func Curl(field [3]Expr, vars [3]*Sym) [3]Expr {
	d := func(i, j int) Expr { return Derivative(field[i], vars[j]) }
	return [3]Expr{
		Simplify(SubOf(d(2, 1), d(1, 2))),
		Simplify(SubOf(d(0, 2), d(2, 0))),
		Simplify(SubOf(d(1, 0), d(0, 1))),
	}
}
