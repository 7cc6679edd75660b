package core

import (
	"github.com/DomeLiquid/lendingpool"
	"github.com/holiman/uint256"
)

var secondsPerYear = uint256.NewInt(lendingpool.SECONDS_PER_YEAR)

// LinearInterest is the simple-interest factor rate*elapsed/SECONDS_PER_YEAR + ONE.
func LinearInterest(rate *uint256.Int, elapsed uint64) *uint256.Int {
	interest := mulDiv(rate, uint256.NewInt(elapsed), secondsPerYear)
	return interest.Add(interest, lendingpool.ONE)
}

// CompoundedInterest approximates (1 + rate/SECONDS_PER_YEAR)^elapsed - 1 with
// the first three binomial terms. It is the increment, zero when elapsed is 0.
func CompoundedInterest(rate *uint256.Int, elapsed uint64) *uint256.Int {
	if elapsed == 0 || rate.IsZero() {
		return zero()
	}

	// r*e/Y
	first := mulDiv(rate, uint256.NewInt(elapsed), secondsPerYear)
	if elapsed == 1 {
		return first
	}

	// e*(e-1)*r^2 / (2*Y^2)
	second := mulDiv(first, mulDiv(rate, uint256.NewInt(elapsed-1), secondsPerYear), uint256.NewInt(2*lendingpool.ONE_UNIT))

	// e*(e-1)*(e-2)*r^3 / (6*Y^3)
	third := zero()
	if elapsed > 2 {
		third = mulDiv(second, mulDiv(rate, uint256.NewInt(elapsed-2), secondsPerYear), uint256.NewInt(3*lendingpool.ONE_UNIT))
	}

	interest := add(first, second)
	return interest.Add(interest, third)
}

// AccrueReserve advances both indices from LastUpdatedTimestamp to now.
// totalDebt is the outstanding debt before the triggering operation; the
// borrow index stands still while there is none. A second call at the same
// timestamp is a no-op.
func AccrueReserve(log lendingpool.Log, reserve *lendingpool.Reserve, totalDebt *uint256.Int, now int64) {
	if now <= reserve.LastUpdatedTimestamp {
		return
	}
	elapsed := uint64(now - reserve.LastUpdatedTimestamp)

	if !reserve.LiquidityRate.IsZero() {
		reserve.LiquidityIndex = wadMul(reserve.LiquidityIndex, LinearInterest(reserve.LiquidityRate, elapsed))
	}

	compounded := CompoundedInterest(reserve.BorrowRate, elapsed)
	if !compounded.IsZero() && !totalDebt.IsZero() {
		prev := reserve.BorrowIndex
		next := mulDivUp(prev, add(lendingpool.ONE, compounded), lendingpool.ONE)

		interest := mulDiv(totalDebt, sub(next, prev), prev)
		reserve.AccruedToTreasury = add(reserve.AccruedToTreasury, wadMul(interest, reserve.ReserveFactor))
		reserve.BorrowIndex = next
	}

	log.Debug().Msgf("accrue reserve %s: elapsed %d, liquidityIndex %s, borrowIndex %s",
		reserve.Id, elapsed, reserve.LiquidityIndex.Dec(), reserve.BorrowIndex.Dec())

	reserve.LastUpdatedTimestamp = now
}

// NormalizedIncome projects the liquidity index to ts without touching the reserve.
func NormalizedIncome(reserve *lendingpool.Reserve, ts int64) *uint256.Int {
	if ts <= reserve.LastUpdatedTimestamp || reserve.LiquidityRate.IsZero() {
		return clone(reserve.LiquidityIndex)
	}
	elapsed := uint64(ts - reserve.LastUpdatedTimestamp)
	return wadMul(reserve.LiquidityIndex, LinearInterest(reserve.LiquidityRate, elapsed))
}

// NormalizedDebt projects the borrow index to ts without touching the reserve.
func NormalizedDebt(reserve *lendingpool.Reserve, ts int64) *uint256.Int {
	if ts <= reserve.LastUpdatedTimestamp {
		return clone(reserve.BorrowIndex)
	}
	compounded := CompoundedInterest(reserve.BorrowRate, uint64(ts-reserve.LastUpdatedTimestamp))
	if compounded.IsZero() {
		return clone(reserve.BorrowIndex)
	}
	return mulDivUp(reserve.BorrowIndex, add(lendingpool.ONE, compounded), lendingpool.ONE)
}
