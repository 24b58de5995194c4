package gocas

import (
	"fmt"
	"strings"
)

// ============================================================
// Matrix representations
// ============================================================

// MatrixKind names the storage variant of a Matrix.
type MatrixKind uint8

const (
	DenseMatrix MatrixKind = iota
	IdentityMatrix
	ZeroMatrixKind
	DiagonalMatrix
	ScalarMatrix
	UpperTriangularMatrix
	LowerTriangularMatrix
	SymmetricMatrix
	PermutationMatrix
)

var matrixKindNames = [...]string{
	DenseMatrix:           "dense",
	IdentityMatrix:        "identity",
	ZeroMatrixKind:        "zero",
	DiagonalMatrix:        "diagonal",
	ScalarMatrix:          "scalar",
	UpperTriangularMatrix: "upper",
	LowerTriangularMatrix: "lower",
	SymmetricMatrix:       "symmetric",
	PermutationMatrix:     "permutation",
}

func (k MatrixKind) String() string { return matrixKindNames[k] }

// Matrix is an immutable matrix of expressions. Structured variants store
// only what they need: nothing for identity and zero, the diagonal for
// diagonal matrices, one value for scalar matrices, a packed triangle for
// triangular and symmetric matrices, and the column index of each row's one
// for permutations.
type Matrix struct {
	kind       MatrixKind
	rows, cols int
	data       []Expr
	value      Expr
	perm       []int
}

// MatrixFromSlice builds a dense matrix from row-major entries.
func MatrixFromSlice(rows, cols int, entries []Expr) *Matrix {
	if len(entries) != rows*cols {
		panic(fmt.Sprintf("gocas: MatrixFromSlice needs %d entries, got %d", rows*cols, len(entries)))
	}
	return &Matrix{kind: DenseMatrix, rows: rows, cols: cols, data: append([]Expr(nil), entries...)}
}

// MatrixOf builds a dense matrix from rows of equal length.
func MatrixOf(rows ...[]Expr) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{kind: ZeroMatrixKind}, nil
	}
	cols := len(rows[0])
	data := make([]Expr, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, domainError("matrix", fmt.Sprintf("row %d", i), fmt.Sprintf("has %d entries, want %d", len(r), cols))
		}
		data = append(data, r...)
	}
	return &Matrix{kind: DenseMatrix, rows: len(rows), cols: cols, data: data}, nil
}

// ColumnOf builds an n x 1 matrix.
func ColumnOf(entries ...Expr) *Matrix { return MatrixFromSlice(len(entries), 1, entries) }

func Identity(n int) *Matrix { return &Matrix{kind: IdentityMatrix, rows: n, cols: n} }

func ZeroMatrix(rows, cols int) *Matrix { return &Matrix{kind: ZeroMatrixKind, rows: rows, cols: cols} }

func DiagonalOf(diag ...Expr) *Matrix {
	return &Matrix{kind: DiagonalMatrix, rows: len(diag), cols: len(diag), data: append([]Expr(nil), diag...)}
}

func ScalarMatrixOf(n int, v Expr) *Matrix { return &Matrix{kind: ScalarMatrix, rows: n, cols: n, value: v} }

// PermutationOf builds the matrix with a one at (i, perm[i]) in every row.
func PermutationOf(perm ...int) (*Matrix, error) {
	seen := make([]bool, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return nil, domainError("permutation", fmt.Sprintf("index %d", i), "not a permutation")
		}
		seen[p] = true
	}
	return &Matrix{kind: PermutationMatrix, rows: len(perm), cols: len(perm), perm: append([]int(nil), perm...)}, nil
}

func (m *Matrix) Rows() int          { return m.rows }
func (m *Matrix) Cols() int          { return m.cols }
func (m *Matrix) Kind() MatrixKind   { return m.kind }
func (m *Matrix) IsSquare() bool     { return m.rows == m.cols }
func (m *Matrix) exprType() string   { return "matrix" }
func (m *Matrix) upperIndex(i, j int) int { return i*m.cols - i*(i-1)/2 + (j - i) }
func (m *Matrix) lowerIndex(i, j int) int { return i*(i+1)/2 + j }

func (m *Matrix) checkBounds(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("gocas: matrix index out of range [%d,%d] for %dx%d", row, col, m.rows, m.cols))
	}
}

// Get returns the entry at (row, col) in O(1).
func (m *Matrix) Get(row, col int) Expr {
	m.checkBounds(row, col)
	return m.at(row, col)
}

func (m *Matrix) at(i, j int) Expr {
	switch m.kind {
	case DenseMatrix:
		return m.data[i*m.cols+j]
	case IdentityMatrix:
		if i == j {
			return N(1)
		}
	case DiagonalMatrix:
		if i == j {
			return m.data[i]
		}
	case ScalarMatrix:
		if i == j {
			return m.value
		}
	case UpperTriangularMatrix:
		if i <= j {
			return m.data[m.upperIndex(i, j)]
		}
	case LowerTriangularMatrix:
		if i >= j {
			return m.data[m.lowerIndex(i, j)]
		}
	case SymmetricMatrix:
		if i > j {
			i, j = j, i
		}
		return m.data[m.upperIndex(i, j)]
	case PermutationMatrix:
		if m.perm[i] == j {
			return N(1)
		}
	}
	return N(0)
}

// With returns a dense copy of m with one entry replaced.
func (m *Matrix) With(row, col int, v Expr) *Matrix {
	m.checkBounds(row, col)
	out := m.Dense()
	out.data[row*out.cols+col] = v
	return out
}

// Dense returns m in dense storage.
func (m *Matrix) Dense() *Matrix {
	return &Matrix{kind: DenseMatrix, rows: m.rows, cols: m.cols, data: m.elements()}
}

// elements lists every entry in row-major order.
func (m *Matrix) elements() []Expr {
	out := make([]Expr, 0, m.rows*m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out = append(out, m.at(i, j))
		}
	}
	return out
}

// Row returns row i as a slice.
func (m *Matrix) Row(i int) []Expr {
	out := make([]Expr, m.cols)
	for j := range out {
		out[j] = m.Get(i, j)
	}
	return out
}

// Col returns column j as a slice.
func (m *Matrix) Col(j int) []Expr {
	out := make([]Expr, m.rows)
	for i := range out {
		out[i] = m.Get(i, j)
	}
	return out
}

// mapElements applies f to the stored entries. f must map 0 to 0 and 1 to 1,
// which holds for substitution, simplification and template instantiation.
func (m *Matrix) mapElements(f func(Expr) Expr) *Matrix {
	out := *m
	switch m.kind {
	case DenseMatrix, DiagonalMatrix, UpperTriangularMatrix, LowerTriangularMatrix, SymmetricMatrix:
		out.data = mapSlice(m.data, f)
	case ScalarMatrix:
		out.value = f(m.value)
	}
	return &out
}

func (m *Matrix) equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	if m.kind == o.kind && (m.kind == IdentityMatrix || m.kind == ZeroMatrixKind) {
		return true
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if !Equal(m.at(i, j), o.at(i, j)) {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.at(i, j).String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{pmatrix}")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(m.at(i, j).LaTeX())
		}
	}
	sb.WriteString("\\end{pmatrix}")
	return sb.String()
}

// ============================================================
// Structural optimization
// ============================================================

// Optimize narrows a dense matrix to the tightest structured variant whose
// invariants it satisfies: zero, identity, scalar, diagonal, permutation,
// upper or lower triangular, symmetric. Other variants are returned as is.
func (m *Matrix) Optimize() *Matrix {
	if m.kind != DenseMatrix {
		return m
	}
	allZero := true
	for _, e := range m.data {
		if !IsZeroFast(e) {
			allZero = false
			break
		}
	}
	if allZero {
		return ZeroMatrix(m.rows, m.cols)
	}
	if !m.IsSquare() {
		return m
	}
	n := m.rows
	lowerZero, upperZero := true, true
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || IsZeroFast(m.data[i*n+j]) {
				continue
			}
			if i > j {
				lowerZero = false
			} else {
				upperZero = false
			}
		}
	}
	switch {
	case lowerZero && upperZero:
		return optimizeDiagonal(m)
	case lowerZero:
		return m.packUpper()
	case upperZero:
		return m.packLower()
	}
	if p, ok := m.asPermutation(); ok {
		return p
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !Equal(m.data[i*n+j], m.data[j*n+i]) {
				return m
			}
		}
	}
	return m.packSymmetric()
}

func optimizeDiagonal(m *Matrix) *Matrix {
	n := m.rows
	diag := make([]Expr, n)
	same := true
	for i := 0; i < n; i++ {
		diag[i] = m.data[i*n+i]
		if i > 0 && !Equal(diag[i], diag[0]) {
			same = false
		}
	}
	if !same {
		return DiagonalOf(diag...)
	}
	if IsOneFast(diag[0]) {
		return Identity(n)
	}
	return ScalarMatrixOf(n, diag[0])
}

func (m *Matrix) asPermutation() (*Matrix, bool) {
	n := m.rows
	perm := make([]int, n)
	seen := make([]bool, n)
	for i := 0; i < n; i++ {
		perm[i] = -1
		for j := 0; j < n; j++ {
			e := m.data[i*n+j]
			switch {
			case IsZeroFast(e):
			case IsOneFast(e) && perm[i] < 0 && !seen[j]:
				perm[i], seen[j] = j, true
			default:
				return nil, false
			}
		}
		if perm[i] < 0 {
			return nil, false
		}
	}
	return &Matrix{kind: PermutationMatrix, rows: n, cols: n, perm: perm}, true
}

func (m *Matrix) packUpper() *Matrix {
	n := m.rows
	data := make([]Expr, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			data = append(data, m.at(i, j))
		}
	}
	return &Matrix{kind: UpperTriangularMatrix, rows: n, cols: n, data: data}
}

func (m *Matrix) packLower() *Matrix {
	n := m.rows
	data := make([]Expr, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			data = append(data, m.at(i, j))
		}
	}
	return &Matrix{kind: LowerTriangularMatrix, rows: n, cols: n, data: data}
}

func (m *Matrix) packSymmetric() *Matrix {
	p := m.packUpper()
	p.kind = SymmetricMatrix
	return p
}

// ============================================================
// Elementwise arithmetic
// ============================================================

func isDiagonalKind(k MatrixKind) bool {
	return k == IdentityMatrix || k == DiagonalMatrix || k == ScalarMatrix
}

func (m *Matrix) diagonal() []Expr {
	n := min(m.rows, m.cols)
	out := make([]Expr, n)
	for i := range out {
		out[i] = m.at(i, i)
	}
	return out
}

// Add returns m + o.
func (m *Matrix) Add(o *Matrix) (*Matrix, error) {
	if m.rows != o.rows || m.cols != o.cols {
		return nil, domainError("matrix add", fmt.Sprintf("%dx%d + %dx%d", m.rows, m.cols, o.rows, o.cols), "dimension mismatch")
	}
	switch {
	case m.kind == ZeroMatrixKind:
		return o, nil
	case o.kind == ZeroMatrixKind:
		return m, nil
	case isDiagonalKind(m.kind) && isDiagonalKind(o.kind):
		a, b := m.diagonal(), o.diagonal()
		out := make([]Expr, len(a))
		for i := range a {
			out[i] = Simplify(AddOf(a[i], b[i]))
		}
		return DiagonalOf(out...).Dense().Optimize(), nil
	}
	out := make([]Expr, m.rows*m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out[i*m.cols+j] = Simplify(AddOf(m.at(i, j), o.at(i, j)))
		}
	}
	return MatrixFromSlice(m.rows, m.cols, out).Optimize(), nil
}

// Sub returns m - o.
func (m *Matrix) Sub(o *Matrix) (*Matrix, error) { return m.Add(o.Scale(N(-1))) }

// Scale multiplies every entry by s, keeping the variant where it can.
func (m *Matrix) Scale(s Expr) *Matrix {
	s = Simplify(s)
	if IsZeroFast(s) {
		return ZeroMatrix(m.rows, m.cols)
	}
	if IsOneFast(s) {
		return m
	}
	switch m.kind {
	case ZeroMatrixKind:
		return m
	case IdentityMatrix:
		return ScalarMatrixOf(m.rows, s)
	case PermutationMatrix:
		return m.Dense().Scale(s)
	}
	return m.mapElements(func(e Expr) Expr { return Simplify(MulOf(s, e)) })
}

// Mul returns the matrix product m*o.
func (m *Matrix) Mul(o *Matrix) (*Matrix, error) {
	if m.cols != o.rows {
		return nil, domainError("matrix multiply", fmt.Sprintf("%dx%d * %dx%d", m.rows, m.cols, o.rows, o.cols), "dimension mismatch")
	}
	switch {
	case m.kind == IdentityMatrix:
		return o, nil
	case o.kind == IdentityMatrix:
		return m, nil
	case m.kind == ZeroMatrixKind || o.kind == ZeroMatrixKind:
		return ZeroMatrix(m.rows, o.cols), nil
	case m.kind == ScalarMatrix:
		return o.Scale(m.value), nil
	case o.kind == ScalarMatrix:
		return m.Scale(o.value), nil
	case isDiagonalKind(m.kind) && isDiagonalKind(o.kind):
		a, b := m.diagonal(), o.diagonal()
		out := make([]Expr, len(a))
		for i := range a {
			out[i] = Simplify(MulOf(a[i], b[i]))
		}
		return DiagonalOf(out...).Dense().Optimize(), nil
	case m.kind == PermutationMatrix:
		out := make([]Expr, 0, m.rows*o.cols)
		for i := 0; i < m.rows; i++ {
			for j := 0; j < o.cols; j++ {
				out = append(out, o.at(m.perm[i], j))
			}
		}
		return MatrixFromSlice(m.rows, o.cols, out).Optimize(), nil
	}
	out := make([]Expr, m.rows*o.cols)
	terms := make([]Expr, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < o.cols; j++ {
			for k := 0; k < m.cols; k++ {
				terms[k] = MulOf(m.at(i, k), o.at(k, j))
			}
			out[i*o.cols+j] = Simplify(AddOf(terms...))
		}
	}
	return MatrixFromSlice(m.rows, o.cols, out).Optimize(), nil
}

// Pow raises a square matrix to an integer power; negative powers invert.
func (m *Matrix) Pow(k int64) (*Matrix, error) {
	if !m.IsSquare() {
		return nil, domainError("matrix power", fmt.Sprintf("%dx%d", m.rows, m.cols), "matrix is not square")
	}
	base := m
	if k < 0 {
		inv, err := m.Inverse()
		if err != nil {
			return nil, err
		}
		base, k = inv, -k
	}
	out := Identity(m.rows)
	for k > 0 {
		var err error
		if k&1 == 1 {
			if out, err = out.Mul(base); err != nil {
				return nil, err
			}
		}
		k >>= 1
		if k > 0 {
			if base, err = base.Mul(base); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Transpose returns the transpose, keeping the variant.
func (m *Matrix) Transpose() *Matrix {
	switch m.kind {
	case IdentityMatrix, DiagonalMatrix, ScalarMatrix, SymmetricMatrix:
		return m
	case ZeroMatrixKind:
		return ZeroMatrix(m.cols, m.rows)
	case PermutationMatrix:
		inv := make([]int, len(m.perm))
		for i, p := range m.perm {
			inv[p] = i
		}
		return &Matrix{kind: PermutationMatrix, rows: m.rows, cols: m.cols, perm: inv}
	case UpperTriangularMatrix:
		return m.transposeDense().packLower()
	case LowerTriangularMatrix:
		return m.transposeDense().packUpper()
	}
	return m.transposeDense()
}

func (m *Matrix) transposeDense() *Matrix {
	out := make([]Expr, 0, m.rows*m.cols)
	for j := 0; j < m.cols; j++ {
		for i := 0; i < m.rows; i++ {
			out = append(out, m.at(i, j))
		}
	}
	return MatrixFromSlice(m.cols, m.rows, out)
}

// Trace returns the sum of the diagonal.
func (m *Matrix) Trace() (Expr, error) {
	if !m.IsSquare() {
		return nil, domainError("trace", fmt.Sprintf("%dx%d", m.rows, m.cols), "matrix is not square")
	}
	switch m.kind {
	case IdentityMatrix:
		return N(int64(m.rows)), nil
	case ZeroMatrixKind:
		return N(0), nil
	case ScalarMatrix:
		return Simplify(MulOf(N(int64(m.rows)), m.value)), nil
	case PermutationMatrix:
		fixed := 0
		for i, p := range m.perm {
			if i == p {
				fixed++
			}
		}
		return N(int64(fixed)), nil
	}
	return Simplify(AddOf(m.diagonal()...)), nil
}
