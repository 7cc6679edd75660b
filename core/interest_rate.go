package core

import (
	"github.com/DomeLiquid/lendingpool"
	"github.com/holiman/uint256"
)

// Rates is the output of the interest rate model.
type Rates struct {
	LiquidityRate   *uint256.Int
	BorrowRate      *uint256.Int
	UtilizationRate *uint256.Int
}

// ComputeRates maps the reserve's utilization to a (liquidity, borrow) rate
// pair. availableLiquidity is the underlying currently held by the pool; the
// added and taken deltas let callers price an operation before it moves funds.
func ComputeRates(reserve *lendingpool.Reserve, availableLiquidity, liquidityAdded, liquidityTaken, totalDebt *uint256.Int) Rates {
	available := sub(add(availableLiquidity, liquidityAdded), liquidityTaken)

	utilization := UtilizationRate(available, totalDebt)
	borrowRate := reserve.InterestRateConfig.InterestRateCurve(utilization)

	liquidityRate := zero()
	if !totalDebt.IsZero() {
		// borrowRate * U * (ONE - reserveFactor) / ONE^2
		oneMinusFactor := sub(lendingpool.ONE, reserve.ReserveFactor)
		liquidityRate = wadMul(wadMul(borrowRate, utilization), oneMinusFactor)
	}

	return Rates{
		LiquidityRate:   liquidityRate,
		BorrowRate:      borrowRate,
		UtilizationRate: utilization,
	}
}

// UtilizationRate is totalDebt / (available + totalDebt), clamped to [0, ONE].
func UtilizationRate(available, totalDebt *uint256.Int) *uint256.Int {
	total := add(available, totalDebt)
	if totalDebt.IsZero() || total.IsZero() {
		return zero()
	}
	u := mulDiv(totalDebt, lendingpool.ONE, total)
	if u.Gt(lendingpool.ONE) {
		return clone(lendingpool.ONE)
	}
	return u
}

// ApplyRates stores a computed rate tuple on the reserve.
func ApplyRates(reserve *lendingpool.Reserve, rates Rates) {
	reserve.LiquidityRate = clone(rates.LiquidityRate)
	reserve.BorrowRate = clone(rates.BorrowRate)
	reserve.UtilizationRate = clone(rates.UtilizationRate)
}
