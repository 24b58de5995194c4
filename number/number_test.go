package number_test

import (
	"math"
	"math/big"
	"strconv"
	"testing"
	"unsafe"

	"github.com/njchilds90/gocas/number"
	"github.com/pkg/errors"
)

func mustFrac(t *testing.T, p, q int64) number.Number {
	t.Helper()
	n, err := number.Frac(p, q)
	if err != nil {
		t.Fatalf("Frac(%d, %d): %v", p, q, err)
	}
	return n
}

func TestAdd_OverflowPromotesToBigInteger(t *testing.T) {
	got, err := number.Add(number.Int(math.MaxInt64), number.Int(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind() != number.BigInteger {
		t.Fatalf("want biginteger, got %s", got.Kind())
	}
	want := new(big.Int).Add(big.NewInt(math.MaxInt64), big.NewInt(1))
	if got.String() != want.String() {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestMul_OverflowNeverWraps(t *testing.T) {
	got, err := number.Mul(number.Int(math.MaxInt64), number.Int(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind() != number.BigInteger || got.Sign() <= 0 {
		t.Errorf("want positive biginteger, got %s (%s)", got, got.Kind())
	}
}

func TestBigInteger_DemotesWhenSmall(t *testing.T) {
	big1, _ := number.Add(number.Int(math.MaxInt64), number.Int(1))
	back, err := number.Sub(big1, number.Int(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Kind() != number.Integer {
		t.Errorf("want integer after demotion, got %s", back.Kind())
	}
}

func TestNeg_MinInt64(t *testing.T) {
	got := number.Neg(number.Int(math.MinInt64))
	if got.Kind() != number.BigInteger || got.String() != "9223372036854775808" {
		t.Errorf("want 9223372036854775808, got %s (%s)", got, got.Kind())
	}
}

func TestDiv_ExactAndRational(t *testing.T) {
	q, err := number.Div(number.Int(12), number.Int(4))
	if err != nil || q.String() != "3" || q.Kind() != number.Integer {
		t.Errorf("12/4: want integer 3, got %s (%v)", q, err)
	}
	q, err = number.Div(number.Int(-6), number.Int(4))
	if err != nil || q.String() != "-3/2" || q.Kind() != number.Rational {
		t.Errorf("-6/4: want -3/2, got %s (%v)", q, err)
	}
	q, err = number.Div(number.Int(6), number.Int(-4))
	if err != nil || q.String() != "-3/2" {
		t.Errorf("6/-4: sign belongs in the numerator, got %s", q)
	}
}

func TestDiv_ByZero(t *testing.T) {
	_, err := number.Div(number.Int(1), number.Int(0))
	if !errors.Is(err, number.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
	_, err = number.Frac(1, 0)
	if !errors.Is(err, number.ErrDivisionByZero) {
		t.Errorf("Frac(1, 0): want ErrDivisionByZero, got %v", err)
	}
}

func TestExactness_MulThenDiv(t *testing.T) {
	cases := [][2]int64{{7, 3}, {-12, 5}, {math.MaxInt64, 3}, {math.MinInt64, -1}, {0, 9}}
	for _, c := range cases {
		a, b := number.Int(c[0]), number.Int(c[1])
		p, err := number.Mul(a, b)
		if err != nil {
			t.Fatalf("mul: %v", err)
		}
		q, err := number.Div(p, b)
		if err != nil {
			t.Fatalf("div: %v", err)
		}
		if number.Cmp(q, a) != 0 {
			t.Errorf("(%d*%d)/%d: want %d, got %s", c[0], c[1], c[1], c[0], q)
		}
	}
}

func TestExactness_RationalReciprocal(t *testing.T) {
	pq := mustFrac(t, 22, 7)
	qp := mustFrac(t, 7, 22)
	got, err := number.Mul(pq, qp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsOne() || got.Kind() != number.Integer {
		t.Errorf("want integer 1, got %s (%s)", got, got.Kind())
	}
}

func TestRational_Reduced(t *testing.T) {
	n := mustFrac(t, 10, -4)
	if n.String() != "-5/2" {
		t.Errorf("want -5/2, got %s", n)
	}
	if mustFrac(t, 8, 4).Kind() != number.Integer {
		t.Error("8/4 should collapse to an integer")
	}
}

func TestFloat_Promotion(t *testing.T) {
	f, _ := number.NewFloat(0.5)
	got, err := number.Add(number.Int(1), f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind() != number.Float || got.String() != "1.5" {
		t.Errorf("want float 1.5, got %s (%s)", got, got.Kind())
	}
	got, _ = number.Mul(mustFrac(t, 1, 4), f)
	if got.Kind() != number.Float || got.String() != "0.125" {
		t.Errorf("want float 0.125, got %s", got)
	}
}

func TestFloat_NonFiniteIsOverflow(t *testing.T) {
	huge, _ := number.NewFloat(math.MaxFloat64)
	_, err := number.Mul(huge, number.Int(10))
	if !number.IsOverflow(err) {
		t.Errorf("want overflow, got %v", err)
	}
	if _, err := number.NewFloat(math.NaN()); !number.IsOverflow(err) {
		t.Errorf("NaN: want overflow, got %v", err)
	}
}

func TestBigIntegerToFloat_OutOfRange(t *testing.T) {
	z := new(big.Int).Exp(big.NewInt(10), big.NewInt(400), nil)
	f, _ := number.NewFloat(1)
	_, err := number.Add(number.BigInt(z), f)
	if !number.IsOverflow(err) {
		t.Errorf("want overflow converting 10^400, got %v", err)
	}
}

func TestPow_Integer(t *testing.T) {
	got, err := number.Pow(number.Int(3), number.Int(4))
	if err != nil || got.String() != "81" {
		t.Errorf("3^4: want 81, got %s (%v)", got, err)
	}
	got, err = number.Pow(number.Int(2), number.Int(-3))
	if err != nil || got.String() != "1/8" {
		t.Errorf("2^-3: want 1/8, got %s (%v)", got, err)
	}
	got, err = number.Pow(number.Int(2), number.Int(100))
	if err != nil || got.Kind() != number.BigInteger {
		t.Errorf("2^100: want biginteger, got %s (%v)", got.Kind(), err)
	}
	got, err = number.Pow(mustFrac(t, -2, 3), number.Int(3))
	if err != nil || got.String() != "-8/27" {
		t.Errorf("(-2/3)^3: want -8/27, got %s", got)
	}
}

func TestPow_ZeroNegative(t *testing.T) {
	_, err := number.Pow(number.Int(0), number.Int(-1))
	if !errors.Is(err, number.ErrDivisionByZero) {
		t.Errorf("0^-1: want ErrDivisionByZero, got %v", err)
	}
}

func TestPow_RationalExponent(t *testing.T) {
	got, err := number.Pow(mustFrac(t, 4, 9), mustFrac(t, 1, 2))
	if err != nil || got.String() != "2/3" {
		t.Errorf("(4/9)^(1/2): want 2/3, got %s (%v)", got, err)
	}
	got, err = number.Pow(number.Int(-8), mustFrac(t, 2, 3))
	if err != nil || got.String() != "4" {
		t.Errorf("(-8)^(2/3): want 4, got %s (%v)", got, err)
	}
	_, err = number.Pow(number.Int(2), mustFrac(t, 1, 2))
	if !errors.Is(err, number.ErrInexact) {
		t.Errorf("2^(1/2): want ErrInexact, got %v", err)
	}
	_, err = number.Pow(number.Int(-4), mustFrac(t, 1, 2))
	if !errors.Is(err, number.ErrInexact) {
		t.Errorf("(-4)^(1/2): want ErrInexact, got %v", err)
	}
}

func TestSplitPower(t *testing.T) {
	out, in := number.SplitPower(big.NewInt(72), 2)
	if out.Int64() != 6 || in.Int64() != 2 {
		t.Errorf("72 = 6^2*2: got %s^2*%s", out, in)
	}
	out, in = number.SplitPower(big.NewInt(54), 3)
	if out.Int64() != 3 || in.Int64() != 2 {
		t.Errorf("54 = 3^3*2: got %s^3*%s", out, in)
	}
}

func TestCmp_MixedShapes(t *testing.T) {
	f, _ := number.NewFloat(0.5)
	if number.Cmp(mustFrac(t, 1, 2), f) != 0 {
		t.Error("1/2 should compare equal to 0.5")
	}
	if number.Identical(mustFrac(t, 1, 2), f) {
		t.Error("1/2 and 0.5 are not identical")
	}
	if number.Cmp(number.Int(-3), mustFrac(t, -5, 2)) != -1 {
		t.Error("-3 < -5/2")
	}
}

func TestDecimal(t *testing.T) {
	if got := mustFrac(t, 1, 3).Decimal(4); got != "0.3333" {
		t.Errorf("want 0.3333, got %s", got)
	}
	if got := mustFrac(t, -7, 8).Decimal(2); got != "-0.88" {
		t.Errorf("want -0.88, got %s", got)
	}
	if got := number.Int(12).Decimal(3); got != "12" {
		t.Errorf("want 12, got %s", got)
	}
}

func TestParse(t *testing.T) {
	for in, want := range map[string]string{"42": "42", "6/8": "3/4", "2.5": "2.5", "123456789012345678901234567890": "123456789012345678901234567890"} {
		n, err := number.Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if n.String() != want {
			t.Errorf("Parse(%q): want %s, got %s", in, want, n)
		}
	}
}

func TestHash_AgreesWithIdentical(t *testing.T) {
	a := mustFrac(t, 3, 6)
	b := mustFrac(t, 1, 2)
	if a.Hash() != b.Hash() {
		t.Error("equal rationals must hash alike")
	}
	if number.Int(2).Hash() == number.Int(3).Hash() {
		t.Error("distinct integers should not collide here")
	}
}

func TestNumber_TwoWords(t *testing.T) {
	if strconv.IntSize != 64 {
		t.Skip("layout checked on 64-bit platforms")
	}
	if got := unsafe.Sizeof(number.Zero); got != 16 {
		t.Errorf("want 16 bytes, got %d", got)
	}
	big30, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	f, _ := number.NewFloat(0.5)
	tests := []struct {
		n    number.Number
		want number.Kind
	}{
		{number.Int(-4), number.Integer},
		{number.BigInt(big30), number.BigInteger},
		{mustFrac(t, 2, 3), number.Rational},
		{f, number.Float},
	}
	for _, tt := range tests {
		if tt.n.Kind() != tt.want {
			t.Errorf("%s: want kind %s, got %s", tt.n, tt.want, tt.n.Kind())
		}
	}
}
