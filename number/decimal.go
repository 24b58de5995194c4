package number

import (
	"github.com/shopspring/decimal"
)

// Decimal renders n in positional notation rounded to places digits after the
// point. Exact shapes are divided out with decimal arithmetic, so 1/3 renders
// as "0.3333" for places=4 without a float round trip.
func (n Number) Decimal(places int32) string {
	return n.ToDecimal(places).String()
}

// ToDecimal converts n to a decimal.Decimal rounded half away from zero.
func (n Number) ToDecimal(places int32) decimal.Decimal {
	if n.IsFloat() {
		return decimal.NewFromFloat(n.float()).Round(places)
	}
	r, _ := n.BigRat()
	num := decimal.NewFromBigInt(r.Num(), 0)
	if r.IsInt() {
		return num.Round(places)
	}
	den := decimal.NewFromBigInt(r.Denom(), 0)
	return num.DivRound(den, places)
}

// FromDecimal converts d to an exact Number.
func FromDecimal(d decimal.Decimal) Number {
	return Rat(d.Rat())
}
