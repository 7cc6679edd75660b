package lendingpool

import (
	"github.com/holiman/uint256"
)

const (
	SECONDS_PER_YEAR = 31_536_000

	ONE_UNIT            = 1_000_000_000_000
	ONE_PERCENTAGE_UNIT = 10_000_000_000
)

// Fixed-point constants. Shared pointers, never pass them as a receiver.
var (
	ONE            = uint256.NewInt(ONE_UNIT)
	ONE_PERCENTAGE = uint256.NewInt(ONE_PERCENTAGE_UNIT)

	HEALTH_FACTOR_LIQUIDATION_THRESHOLD = uint256.NewInt(ONE_UNIT)
	LIQUIDATION_CLOSE_FACTOR_PERCENT    = uint256.NewInt(50 * ONE_PERCENTAGE_UNIT)

	// MAX_AMOUNT bounds every externally supplied amount so that products of
	// two fixed-point operands stay far below 2^256.
	MAX_AMOUNT = new(uint256.Int).SubUint64(new(uint256.Int).Lsh(uint256.NewInt(1), 128), 1)

	// MAX_RATE caps any configured per-annum rate (10000%).
	MAX_RATE = uint256.NewInt(100 * ONE_UNIT)
)

// Zero returns a fresh zero amount.
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// CloneAmount copies x, treating nil as zero.
func CloneAmount(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(x)
}

// Percent returns p percent in fixed-point units.
func Percent(p uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(p), ONE_PERCENTAGE)
}
