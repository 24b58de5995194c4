package densepoly

import (
	"math/big"
)

// Fraction is one partial fraction term Numer / Factor^Power, where Factor
// is monic of degree one or two and Numer has lower degree than Factor.
type Fraction struct {
	Factor RatPoly
	Power  int
	Numer  RatPoly
}

// Factorization of a monic polynomial into powers of monic factors of degree
// at most two.
type factorPower struct {
	f RatPoly
	m int
}

// PartialFractions splits num/den into a polynomial part plus a sum of
// Fractions. den must split over the rationals into linear factors and at
// most one irreducible quadratic (possibly squared); anything else returns
// ErrUnsupported.
func PartialFractions(num, den RatPoly) (RatPoly, []Fraction, error) {
	q, r, err := DivMod(num, den)
	if err != nil {
		return nil, nil, err
	}
	if r.Degree() < 0 {
		return q, nil, nil
	}
	lead := den.Trim().Lead()
	r = Scale(r, new(big.Rat).Inv(lead))
	d := Monic(den)

	factors, err := splitMonic(d)
	if err != nil {
		return nil, nil, err
	}

	// One unknown per numerator coefficient of each F^k term; the matching
	// column is x^j * d / F^k.
	type slot struct {
		fi, k, j int
	}
	var slots []slot
	var cols []RatPoly
	for fi, fp := range factors {
		for k := 1; k <= fp.m; k++ {
			cof, _, _ := DivMod(d, Pow(fp.f, k))
			for j := 0; j < fp.f.Degree(); j++ {
				shift := make(RatPoly, j+1)
				for i := range shift {
					shift[i] = new(big.Rat)
				}
				shift[j].SetInt64(1)
				slots = append(slots, slot{fi, k, j})
				cols = append(cols, Mul(shift, cof))
			}
		}
	}
	n := len(slots)
	a := make([][]*big.Rat, n)
	b := make([]*big.Rat, n)
	for row := 0; row < n; row++ {
		a[row] = make([]*big.Rat, n)
		for c := 0; c < n; c++ {
			a[row][c] = cols[c].Coeff(row)
		}
		b[row] = r.Coeff(row)
	}
	x, err := solveRat(a, b)
	if err != nil {
		return nil, nil, err
	}

	var out []Fraction
	for fi, fp := range factors {
		for k := 1; k <= fp.m; k++ {
			numer := make(RatPoly, fp.f.Degree())
			for s, sl := range slots {
				if sl.fi == fi && sl.k == k {
					numer[sl.j] = x[s]
				}
			}
			numer = numer.Trim()
			if numer.Degree() < 0 {
				continue
			}
			out = append(out, Fraction{Factor: fp.f.Trim(), Power: k, Numer: numer})
		}
	}
	return q, out, nil
}

func splitMonic(d RatPoly) ([]factorPower, error) {
	roots, rest := RationalRoots(d)
	var out []factorPower
	for i := 0; i < len(roots); {
		j := i
		for j < len(roots) && roots[j].Cmp(roots[i]) == 0 {
			j++
		}
		out = append(out, factorPower{f: linear(roots[i]), m: j - i})
		i = j
	}
	rest = Monic(rest)
	switch rest.Degree() {
	case 0:
	case 2:
		out = append(out, factorPower{f: rest, m: 1})
	case 4:
		g := GCD(rest, Derivative(rest))
		if g.Degree() != 2 || !Mul(g, g).Equal(rest) {
			return nil, ErrUnsupported
		}
		out = append(out, factorPower{f: g, m: 2})
	default:
		return nil, ErrUnsupported
	}
	return out, nil
}

// solveRat solves the square system a*x = b by Gaussian elimination over
// the rationals.
func solveRat(a [][]*big.Rat, b []*big.Rat) ([]*big.Rat, error) {
	n := len(b)
	m := make([][]*big.Rat, n)
	for i := range a {
		m[i] = make([]*big.Rat, n+1)
		for j := 0; j < n; j++ {
			m[i][j] = new(big.Rat).Set(a[i][j])
		}
		m[i][n] = new(big.Rat).Set(b[i])
	}
	t := new(big.Rat)
	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if m[row][col].Sign() != 0 {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return nil, ErrUnsupported
		}
		m[col], m[pivot] = m[pivot], m[col]
		inv := new(big.Rat).Inv(m[col][col])
		for j := col; j <= n; j++ {
			m[col][j].Mul(m[col][j], inv)
		}
		for row := 0; row < n; row++ {
			if row == col || m[row][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(m[row][col])
			for j := col; j <= n; j++ {
				m[row][j].Sub(m[row][j], t.Mul(f, m[col][j]))
			}
		}
	}
	x := make([]*big.Rat, n)
	for i := range x {
		x[i] = m[i][n]
	}
	return x, nil
}
