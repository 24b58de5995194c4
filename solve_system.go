package gocas

// ============================================================
// Linear systems
// ============================================================

// SolveSystem solves the square linear system eqs in vars by Gaussian
// elimination with partial pivoting over the number tower. Equations may be
// relations or expressions read as expr = 0. Non-square and non-linear
// systems give NoSolution.
func SolveSystem(eqs []Expr, vars []*Sym, opts ...SolveOption) SolverResult {
	st := newStepLog(opts)
	n := len(vars)
	if len(eqs) != n || n == 0 {
		st.addf("%d equations in %d unknowns: the system is not square", len(eqs), n)
		return st.result(NoSolution)
	}
	aug, ok := augmented(eqs, vars, st)
	if !ok {
		return st.result(NoSolution)
	}
	rank, err := eliminate(aug, n, st)
	if err != nil {
		st.addf("elimination failed: %v", err)
		return st.result(NoSolution)
	}
	for i := rank; i < n; i++ {
		if rhs := Simplify(aug[i][n]); !IsZeroFast(rhs) {
			st.addf("row %d reads 0 = %s", i+1, rhs)
			return st.result(NoSolution)
		}
	}
	if rank < n {
		st.addf("rank %d < %d with a consistent system", rank, n)
		return st.result(InfiniteSolutions)
	}
	sols := make([]Expr, n)
	for i := n - 1; i >= 0; i-- {
		acc := aug[i][n]
		for j := i + 1; j < n; j++ {
			acc = SubOf(acc, MulOf(aug[i][j], sols[j]))
		}
		x, err := divExact("solve system", Simplify(acc), aug[i][i])
		if err != nil {
			return st.result(NoSolution)
		}
		sols[i] = x
		st.addf("%s = %s", vars[i], x)
	}
	return st.result(Multiple, sols...)
}

// augmented builds [A | b] from equations linear in vars: A holds the
// derivatives, b the negated value at the origin.
func augmented(eqs []Expr, vars []*Sym, st *stepLog) ([][]Expr, bool) {
	n := len(vars)
	origin := make(map[*Sym]Expr, n)
	for _, v := range vars {
		origin[v] = N(0)
	}
	aug := make([][]Expr, n)
	for i, eq := range eqs {
		f := residual(eq)
		row := make([]Expr, n+1)
		for j, v := range vars {
			a := Derivative(f, v)
			for _, w := range vars {
				if Has(a, w) {
					st.addf("equation %d is not linear in %s", i+1, v)
					return nil, false
				}
			}
			row[j] = a
		}
		row[n] = Simplify(Neg(SubstituteAll(f, origin)))
		aug[i] = row
	}
	st.addf("augmented matrix %s", fromGrid(aug))
	return aug, true
}

// eliminate reduces the first n columns of aug to row echelon form in place
// and returns the rank.
func eliminate(aug [][]Expr, n int, st *stepLog) (int, error) {
	rank := 0
	for col := 0; col < n && rank < len(aug); col++ {
		p := pivotRow(aug, rank, col)
		if p < 0 {
			continue
		}
		if p != rank {
			aug[p], aug[rank] = aug[rank], aug[p]
			st.addf("swap rows %d and %d", rank+1, p+1)
		}
		pivot := aug[rank][col]
		for r := rank + 1; r < len(aug); r++ {
			if IsZeroFast(Simplify(aug[r][col])) {
				continue
			}
			factor, err := divExact("solve system", aug[r][col], pivot)
			if err != nil {
				return 0, err
			}
			for c := col; c <= n; c++ {
				aug[r][c] = Simplify(SubOf(aug[r][c], MulOf(factor, aug[rank][c])))
			}
			st.addf("R%d -= (%s) R%d", r+1, factor, rank+1)
		}
		rank++
	}
	return rank, nil
}
