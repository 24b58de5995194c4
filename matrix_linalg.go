package gocas

import (
	"fmt"

	"github.com/njchilds90/gocas/number"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Exact helpers
// ============================================================

// divExact divides a by b, combining exact numbers in the number tower.
func divExact(op string, a, b Expr) (Expr, error) {
	b = Simplify(b)
	if IsZeroFast(b) {
		return nil, divisionByZero(op)
	}
	an, okA := a.(*Num)
	bn, okB := b.(*Num)
	if okA && okB {
		q, err := number.Div(an.val, bn.val)
		if err != nil {
			return nil, fromArith(op, err)
		}
		return NumOf(q), nil
	}
	return Simplify(DivOf(a, b)), nil
}

func (m *Matrix) grid() [][]Expr {
	out := make([][]Expr, m.rows)
	for i := range out {
		out[i] = make([]Expr, m.cols)
		for j := range out[i] {
			out[i][j] = m.at(i, j)
		}
	}
	return out
}

func fromGrid(g [][]Expr) *Matrix {
	if len(g) == 0 {
		return ZeroMatrix(0, 0)
	}
	data := make([]Expr, 0, len(g)*len(g[0]))
	for _, r := range g {
		data = append(data, r...)
	}
	return MatrixFromSlice(len(g), len(g[0]), data)
}

func (m *Matrix) requireSquare(op string) error {
	if m.IsSquare() {
		return nil
	}
	return domainError(op, fmt.Sprintf("%dx%d", m.rows, m.cols), "matrix is not square")
}

// isSymmetric checks a_ij = a_ji entry by entry.
func (m *Matrix) isSymmetric() bool {
	switch m.kind {
	case SymmetricMatrix, IdentityMatrix, ZeroMatrixKind, DiagonalMatrix, ScalarMatrix:
		return m.IsSquare()
	}
	if !m.IsSquare() {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := i + 1; j < m.cols; j++ {
			if !Equal(m.at(i, j), m.at(j, i)) {
				return false
			}
		}
	}
	return true
}

// ============================================================
// Float dispatch
// ============================================================

// floats returns the entries as float64 when every entry is a number.
func (m *Matrix) floats() ([]float64, bool) {
	out := make([]float64, 0, m.rows*m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			n, ok := m.at(i, j).(*Num)
			if !ok {
				return nil, false
			}
			out = append(out, n.Float64())
		}
	}
	return out, true
}

func (m *Matrix) hasFloat() bool {
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if n, ok := m.at(i, j).(*Num); ok && !n.IsExact() {
				return true
			}
		}
	}
	return false
}

// gonumDense converts m when it is numeric and at least one of ms holds a
// Float, so exact inputs keep exact arithmetic.
func gonumDense(m *Matrix, ms ...*Matrix) (*mat.Dense, bool) {
	anyFloat := m.hasFloat()
	for _, o := range ms {
		anyFloat = anyFloat || o.hasFloat()
	}
	if !anyFloat || m.rows == 0 || m.cols == 0 {
		return nil, false
	}
	data, ok := m.floats()
	if !ok {
		return nil, false
	}
	return mat.NewDense(m.rows, m.cols, data), true
}

func fromGonum(d mat.Matrix) *Matrix {
	r, c := d.Dims()
	out := make([]Expr, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, NFloat(d.At(i, j)))
		}
	}
	return MatrixFromSlice(r, c, out)
}

func logFloatDispatch(op string, m *Matrix) {
	kernelLog().WithField("op", op).WithField("dims", fmt.Sprintf("%dx%d", m.rows, m.cols)).Debug("float matrix dispatched to gonum")
}

// ============================================================
// LU decomposition
// ============================================================

// LUDecomposition holds P*A = L*U with L unit lower triangular. Row i of
// P*A is row Perm[i] of A; Sign is the determinant of P.
type LUDecomposition struct {
	L, U *Matrix
	Perm []int
	Sign int
}

// P returns the permutation matrix of the decomposition.
func (d *LUDecomposition) P() *Matrix {
	p, _ := PermutationOf(d.Perm...)
	return p
}

// LU factors a square matrix with partial pivoting. A column without a
// nonzero pivot is reported as DivisionByZero.
func (m *Matrix) LU() (*LUDecomposition, error) {
	if err := m.requireSquare("lu"); err != nil {
		return nil, err
	}
	n := m.rows
	a := m.grid()
	l := Identity(n).grid()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sign := 1
	for k := 0; k < n; k++ {
		p := pivotRow(a, k, k)
		if p < 0 {
			return nil, divisionByZero("lu: singular matrix")
		}
		if p != k {
			a[p], a[k] = a[k], a[p]
			perm[p], perm[k] = perm[k], perm[p]
			for j := 0; j < k; j++ {
				l[p][j], l[k][j] = l[k][j], l[p][j]
			}
			sign = -sign
		}
		for i := k + 1; i < n; i++ {
			if IsZeroFast(a[i][k]) {
				continue
			}
			f, err := divExact("lu", a[i][k], a[k][k])
			if err != nil {
				return nil, err
			}
			l[i][k] = f
			a[i][k] = N(0)
			for j := k + 1; j < n; j++ {
				a[i][j] = Simplify(SubOf(a[i][j], MulOf(f, a[k][j])))
			}
		}
	}
	return &LUDecomposition{L: fromGrid(l).Optimize(), U: fromGrid(a).Optimize(), Perm: perm, Sign: sign}, nil
}

// pivotRow picks the row at or below from with the largest numeric entry in
// column k, or the first symbolic entry that does not simplify to zero.
func pivotRow(a [][]Expr, from, k int) int {
	best := -1
	var bestAbs number.Number
	symbolic := -1
	for r := from; r < len(a); r++ {
		e := Simplify(a[r][k])
		a[r][k] = e
		if IsZeroFast(e) {
			continue
		}
		if n, ok := e.(*Num); ok {
			abs := number.Abs(n.val)
			if best < 0 || number.Cmp(abs, bestAbs) > 0 {
				best, bestAbs = r, abs
			}
			continue
		}
		if symbolic < 0 {
			symbolic = r
		}
	}
	if best >= 0 {
		return best
	}
	return symbolic
}

// forwardSubst solves L*y = b row by row.
func forwardSubst(l [][]Expr, b []Expr) ([]Expr, error) {
	y := make([]Expr, len(b))
	for i := range b {
		terms := []Expr{b[i]}
		for j := 0; j < i; j++ {
			if !IsZeroFast(l[i][j]) {
				terms = append(terms, Neg(MulOf(l[i][j], y[j])))
			}
		}
		v, err := divExact("forward substitution", Simplify(AddOf(terms...)), l[i][i])
		if err != nil {
			return nil, err
		}
		y[i] = v
	}
	return y, nil
}

// backSubst solves U*x = y from the last row up.
func backSubst(u [][]Expr, y []Expr) ([]Expr, error) {
	n := len(y)
	x := make([]Expr, n)
	for i := n - 1; i >= 0; i-- {
		terms := []Expr{y[i]}
		for j := i + 1; j < n; j++ {
			if !IsZeroFast(u[i][j]) {
				terms = append(terms, Neg(MulOf(u[i][j], x[j])))
			}
		}
		v, err := divExact("back substitution", Simplify(AddOf(terms...)), u[i][i])
		if err != nil {
			return nil, err
		}
		x[i] = v
	}
	return x, nil
}

// solveColumns applies solve to each column of b.
func solveColumns(b *Matrix, solve func([]Expr) ([]Expr, error)) (*Matrix, error) {
	out := make([][]Expr, b.rows)
	for i := range out {
		out[i] = make([]Expr, b.cols)
	}
	for j := 0; j < b.cols; j++ {
		x, err := solve(b.Col(j))
		if err != nil {
			return nil, err
		}
		for i := range x {
			out[i][j] = x[i]
		}
	}
	return fromGrid(out), nil
}

// SolveLU solves A*x = b with an existing decomposition.
func (d *LUDecomposition) SolveLU(b *Matrix) (*Matrix, error) {
	l, u := d.L.grid(), d.U.grid()
	return solveColumns(b, func(col []Expr) ([]Expr, error) {
		pb := make([]Expr, len(col))
		for i, p := range d.Perm {
			pb[i] = col[p]
		}
		y, err := forwardSubst(l, pb)
		if err != nil {
			return nil, err
		}
		return backSubst(u, y)
	})
}

// ============================================================
// Cholesky and QR
// ============================================================

// Cholesky returns lower triangular L with A = L*L^T. A must be symmetric;
// a numeric pivot that is not positive is a DomainError.
func (m *Matrix) Cholesky() (*Matrix, error) {
	if err := m.requireSquare("cholesky"); err != nil {
		return nil, err
	}
	if !m.isSymmetric() {
		return nil, domainError("cholesky", "", "matrix is not symmetric")
	}
	if _, ok := gonumDense(m); ok {
		logFloatDispatch("cholesky", m)
		data, _ := m.floats()
		var ch mat.Cholesky
		if !ch.Factorize(mat.NewSymDense(m.rows, data)) {
			return nil, domainError("cholesky", "", "matrix is not positive definite")
		}
		var l mat.TriDense
		ch.LTo(&l)
		return fromGonum(&l).Optimize(), nil
	}
	n := m.rows
	a := m.grid()
	l := ZeroMatrix(n, n).grid()
	for j := 0; j < n; j++ {
		terms := []Expr{a[j][j]}
		for k := 0; k < j; k++ {
			terms = append(terms, Neg(PowOf(l[j][k], N(2))))
		}
		s := Simplify(AddOf(terms...))
		if sn, ok := s.(*Num); ok && !sn.IsPositive() {
			return nil, domainError("cholesky", s.String(), "matrix is not positive definite")
		}
		l[j][j] = Simplify(SqrtOf(s))
		for i := j + 1; i < n; i++ {
			terms := []Expr{a[i][j]}
			for k := 0; k < j; k++ {
				terms = append(terms, Neg(MulOf(l[i][k], l[j][k])))
			}
			v, err := divExact("cholesky", Simplify(AddOf(terms...)), l[j][j])
			if err != nil {
				return nil, err
			}
			l[i][j] = v
		}
	}
	return fromGrid(l).Optimize(), nil
}

// QR returns orthogonal Q (m x m) and upper trapezoidal R (m x n) with
// A = Q*R, computed with Householder reflections.
func (m *Matrix) QR() (q, r *Matrix, err error) {
	if a, ok := gonumDense(m); ok {
		logFloatDispatch("qr", m)
		var f mat.QR
		f.Factorize(a)
		var qd, rd mat.Dense
		f.QTo(&qd)
		f.RTo(&rd)
		return fromGonum(&qd), fromGonum(&rd), nil
	}
	rows, cols := m.rows, m.cols
	rg := m.grid()
	qg := Identity(rows).grid()
	for k := 0; k < min(rows-1, cols); k++ {
		x := make([]Expr, rows-k)
		sq := make([]Expr, rows-k)
		for i := range x {
			x[i] = rg[k+i][k]
			sq[i] = PowOf(x[i], N(2))
		}
		normSq := Simplify(AddOf(sq...))
		if IsZeroFast(normSq) {
			continue
		}
		alpha := Simplify(Neg(SqrtOf(normSq)))
		if n, ok := x[0].(*Num); ok && n.IsNegative() {
			alpha = Simplify(SqrtOf(normSq))
		}
		v := append([]Expr(nil), x...)
		v[0] = Simplify(SubOf(x[0], alpha))
		for i := range sq {
			sq[i] = PowOf(v[i], N(2))
		}
		vtv := Simplify(AddOf(sq...))
		if IsZeroFast(vtv) {
			continue
		}
		for j := 0; j < cols; j++ {
			dot := make([]Expr, len(v))
			for i := range v {
				dot[i] = MulOf(v[i], rg[k+i][j])
			}
			f := Simplify(DivOf(MulOf(N(2), AddOf(dot...)), vtv))
			for i := range v {
				rg[k+i][j] = Simplify(SubOf(rg[k+i][j], MulOf(f, v[i])))
			}
		}
		for r := 0; r < rows; r++ {
			dot := make([]Expr, len(v))
			for i := range v {
				dot[i] = MulOf(qg[r][k+i], v[i])
			}
			f := Simplify(DivOf(MulOf(N(2), AddOf(dot...)), vtv))
			for i := range v {
				qg[r][k+i] = Simplify(SubOf(qg[r][k+i], MulOf(f, v[i])))
			}
		}
	}
	return fromGrid(qg).Optimize(), fromGrid(rg).Optimize(), nil
}

// ============================================================
// Determinant, inverse, solve
// ============================================================

// Det returns the determinant: closed forms for structured variants, LU
// elimination otherwise.
func (m *Matrix) Det() (Expr, error) {
	if err := m.requireSquare("determinant"); err != nil {
		return nil, err
	}
	n := m.rows
	switch m.kind {
	case IdentityMatrix:
		return N(1), nil
	case ZeroMatrixKind:
		if n == 0 {
			return N(1), nil
		}
		return N(0), nil
	case ScalarMatrix:
		return Simplify(PowOf(m.value, N(int64(n)))), nil
	case DiagonalMatrix, UpperTriangularMatrix, LowerTriangularMatrix:
		return Simplify(MulOf(m.diagonal()...)), nil
	case PermutationMatrix:
		return N(int64(permutationSign(m.perm))), nil
	}
	if a, ok := gonumDense(m); ok {
		logFloatDispatch("determinant", m)
		return NFloat(mat.Det(a)), nil
	}
	lu, err := m.LU()
	if err != nil {
		if errors.Is(err, ErrDivisionByZero) {
			return N(0), nil
		}
		return nil, err
	}
	return Simplify(MulOf(N(int64(lu.Sign)), MulOf(lu.U.diagonal()...))), nil
}

func permutationSign(perm []int) int {
	seen := make([]bool, len(perm))
	sign := 1
	for i := range perm {
		if seen[i] {
			continue
		}
		length := 0
		for j := i; !seen[j]; j = perm[j] {
			seen[j] = true
			length++
		}
		if length%2 == 0 {
			sign = -sign
		}
	}
	return sign
}

// Inverse computes the inverse by one LU factorization and a solve per
// column of the identity.
func (m *Matrix) Inverse() (*Matrix, error) {
	if err := m.requireSquare("inverse"); err != nil {
		return nil, err
	}
	switch m.kind {
	case IdentityMatrix:
		return m, nil
	case ZeroMatrixKind:
		return nil, divisionByZero("inverse: singular matrix")
	case PermutationMatrix:
		return m.Transpose(), nil
	case ScalarMatrix:
		inv, err := divExact("inverse", N(1), m.value)
		if err != nil {
			return nil, err
		}
		return ScalarMatrixOf(m.rows, inv), nil
	case DiagonalMatrix:
		out := make([]Expr, len(m.data))
		for i, d := range m.data {
			inv, err := divExact("inverse", N(1), d)
			if err != nil {
				return nil, err
			}
			out[i] = inv
		}
		return DiagonalOf(out...), nil
	}
	if a, ok := gonumDense(m); ok {
		logFloatDispatch("inverse", m)
		var inv mat.Dense
		if err := inv.Inverse(a); err != nil {
			return nil, divisionByZero("inverse: singular matrix")
		}
		return fromGonum(&inv).Optimize(), nil
	}
	lu, err := m.LU()
	if err != nil {
		return nil, err
	}
	inv, err := lu.SolveLU(Identity(m.rows))
	if err != nil {
		return nil, err
	}
	return inv.Optimize(), nil
}

// Solve returns x with A*x = b. Symmetric matrices try Cholesky before LU;
// tall matrices are solved in the least squares sense; wide matrices have no
// unique solution.
func (m *Matrix) Solve(b *Matrix) (*Matrix, error) {
	if b.rows != m.rows {
		return nil, domainError("solve", fmt.Sprintf("%dx%d and %dx%d", m.rows, m.cols, b.rows, b.cols), "dimension mismatch")
	}
	if m.rows > m.cols {
		return m.LeastSquares(b)
	}
	if m.rows < m.cols {
		return nil, noSolution("solve: more unknowns than equations")
	}
	switch m.kind {
	case IdentityMatrix:
		return b, nil
	case ZeroMatrixKind:
		return nil, divisionByZero("solve: singular matrix")
	case PermutationMatrix:
		return m.Transpose().Mul(b)
	case ScalarMatrix, DiagonalMatrix:
		inv, err := m.Inverse()
		if err != nil {
			return nil, err
		}
		return inv.Mul(b)
	case UpperTriangularMatrix:
		u := m.grid()
		return solveColumns(b, func(col []Expr) ([]Expr, error) { return backSubst(u, col) })
	case LowerTriangularMatrix:
		l := m.grid()
		return solveColumns(b, func(col []Expr) ([]Expr, error) { return forwardSubst(l, col) })
	}
	if a, ok := gonumDense(m, b); ok {
		if bd, ok := b.floats(); ok {
			logFloatDispatch("solve", m)
			var lu mat.LU
			lu.Factorize(a)
			var x mat.Dense
			if err := lu.SolveTo(&x, false, mat.NewDense(b.rows, b.cols, bd)); err != nil {
				return nil, divisionByZero("solve: singular matrix")
			}
			return fromGonum(&x), nil
		}
	}
	if m.isSymmetric() {
		x, err := m.solveCholesky(b)
		if err == nil {
			return x, nil
		}
		kernelLog().WithError(err).Debug("cholesky failed, falling back to lu")
	}
	lu, err := m.LU()
	if err != nil {
		return nil, err
	}
	return lu.SolveLU(b)
}

func (m *Matrix) solveCholesky(b *Matrix) (*Matrix, error) {
	l, err := m.Cholesky()
	if err != nil {
		return nil, err
	}
	lg, ug := l.grid(), l.Transpose().grid()
	return solveColumns(b, func(col []Expr) ([]Expr, error) {
		y, err := forwardSubst(lg, col)
		if err != nil {
			return nil, err
		}
		return backSubst(ug, y)
	})
}

// LeastSquares minimizes |A*x - b| for a matrix with at least as many rows
// as columns, as x = R^-1 * Q^T * b over the leading n rows of a QR
// factorization. Float input uses gonum's Householder QR. Exact input uses
// the square-root-free form A = W*U from orthogonalQR, where
// x = U^-1 * (W^T*W)^-1 * W^T * b keeps rational entries rational.
func (m *Matrix) LeastSquares(b *Matrix) (*Matrix, error) {
	if m.rows < m.cols {
		return nil, domainError("least squares", fmt.Sprintf("%dx%d", m.rows, m.cols), "fewer rows than columns")
	}
	if b.rows != m.rows {
		return nil, domainError("least squares", fmt.Sprintf("%dx%d and %dx%d", m.rows, m.cols, b.rows, b.cols), "dimension mismatch")
	}
	if a, ok := gonumDense(m, b); ok {
		if bd, ok := b.floats(); ok {
			logFloatDispatch("least squares", m)
			var qr mat.QR
			qr.Factorize(a)
			var x mat.Dense
			if err := qr.SolveTo(&x, false, mat.NewDense(b.rows, b.cols, bd)); err != nil {
				return nil, divisionByZero("least squares: rank deficient matrix")
			}
			return fromGonum(&x), nil
		}
	}
	w, norms, u, err := m.orthogonalQR()
	if err != nil {
		return nil, err
	}
	return solveColumns(b, func(col []Expr) ([]Expr, error) {
		y := make([]Expr, m.cols)
		for j := range y {
			dot := make([]Expr, m.rows)
			for i := range dot {
				dot[i] = MulOf(w[i][j], col[i])
			}
			v, err := divExact("least squares", Simplify(AddOf(dot...)), norms[j])
			if err != nil {
				return nil, err
			}
			y[j] = v
		}
		return backSubst(u, y)
	})
}

// orthogonalQR factors A = W*U by Gram-Schmidt without normalization: the
// columns of W are mutually orthogonal with squared norms in norms, and U is
// unit upper triangular. A zero column norm means A is rank deficient and is
// reported as DivisionByZero.
func (m *Matrix) orthogonalQR() (w [][]Expr, norms []Expr, u [][]Expr, err error) {
	w = m.grid()
	u = Identity(m.cols).grid()
	norms = make([]Expr, m.cols)
	for j := 0; j < m.cols; j++ {
		sq := make([]Expr, m.rows)
		for i := range sq {
			sq[i] = MulOf(w[i][j], w[i][j])
		}
		norms[j] = Simplify(AddOf(sq...))
		if IsZeroFast(norms[j]) {
			return nil, nil, nil, divisionByZero("least squares: rank deficient matrix")
		}
		for k := j + 1; k < m.cols; k++ {
			dot := make([]Expr, m.rows)
			for i := range dot {
				dot[i] = MulOf(w[i][j], w[i][k])
			}
			f, err := divExact("least squares", Simplify(AddOf(dot...)), norms[j])
			if err != nil {
				return nil, nil, nil, err
			}
			u[j][k] = f
			for i := 0; i < m.rows; i++ {
				w[i][k] = Simplify(SubOf(w[i][k], MulOf(f, w[i][j])))
			}
		}
	}
	return w, norms, u, nil
}
