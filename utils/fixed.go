package utils

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// FIXED_POINT_DECIMALS is the exponent of the pool's fixed-point unit (10^12).
const FIXED_POINT_DECIMALS = 12

const HOURS_PER_YEAR = 365.25 * 24

var (
	ErrNegativeDecimal = errors.New("negative decimal")
	ErrDecimalOverflow = errors.New("decimal overflows uint256")
)

// Uint256FromDecimal scales d by 10^12 and truncates the remainder.
func Uint256FromDecimal(d decimal.Decimal) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, ErrNegativeDecimal
	}
	scaled := d.Shift(FIXED_POINT_DECIMALS).Truncate(0)
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, ErrDecimalOverflow
	}
	return v, nil
}

// MustUint256FromString is meant for constants and tests.
func MustUint256FromString(s string) *uint256.Int {
	v, err := Uint256FromDecimal(decimal.RequireFromString(s))
	if err != nil {
		panic(err)
	}
	return v
}

// DecimalFromUint256 is the inverse of Uint256FromDecimal.
func DecimalFromUint256(x *uint256.Int) decimal.Decimal {
	if x == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(x.ToBig(), -FIXED_POINT_DECIMALS)
}

/*
const aprToApy = (apr: number, compoundingFrequency = HOURS_PER_YEAR) =>

	(1 + apr / compoundingFrequency) ** compoundingFrequency - 1;
*/
func AprToApy(apr decimal.Decimal) decimal.Decimal {
	hoursPerYear := decimal.NewFromFloat(HOURS_PER_YEAR)
	one := decimal.NewFromInt(1)
	return (one.Add(apr.Div(hoursPerYear))).Pow(hoursPerYear).Sub(one).Round(8)
}
