package orderbook

import "github.com/shopspring/decimal"

// Price is a signed fixed-point integer with six implied fractional
// decimals: the real price multiplied by 1e6. All matching arithmetic
// is integer-exact; floats appear only at the external boundary.
type Price int64

// PriceScale is the fixed-point multiplier (six decimal places).
const PriceScale int64 = 1_000_000

// InvalidPrice marks an absent/unset price.
const InvalidPrice Price = 0

var scale = decimal.NewFromInt(PriceScale)

// PriceFromFloat converts a wire-format double into fixed-point,
// truncating toward zero. Going through decimal avoids the usual
// float64 rounding surprises (1.005*1e6 == 1004999.99...).
func PriceFromFloat(p float64) Price {
	return Price(decimal.NewFromFloat(p).Mul(scale).IntPart())
}

// ParsePrice converts a decimal string into fixed-point, truncating
// toward zero.
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return InvalidPrice, err
	}
	return Price(d.Mul(scale).IntPart()), nil
}

// Float64 converts back to a double. Display/serialization only.
func (p Price) Float64() float64 {
	return float64(p) / float64(PriceScale)
}

// String renders the price at six-decimal scale, e.g. "101.000000".
// This is the representation used on the trade wire format.
func (p Price) String() string {
	return decimal.New(int64(p), -6).StringFixed(6)
}
