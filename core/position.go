package core

import (
	"github.com/DomeLiquid/lendingpool"
	"github.com/holiman/uint256"
)

// Balances are an account's supply-token and debt-token balances.
type Balances struct {
	Supply *uint256.Int
	Debt   *uint256.Int
}

// ReconcilePosition folds the interest earned and owed since the position's
// index snapshots into its cumulated counters, then moves the snapshots to
// the reserve's indices at now. Earned interest rounds down, owed interest up.
func ReconcilePosition(reserve *lendingpool.Reserve, position *lendingpool.Position, balances Balances, now int64) {
	income := NormalizedIncome(reserve, now)
	debtIndex := NormalizedDebt(reserve, now)

	earned := interestSince(balances.Supply, income, position.LiquidityIndex, false)
	owed := interestSince(balances.Debt, debtIndex, position.BorrowIndex, true)

	position.CumulatedLiquidityInterest = add(clone(position.CumulatedLiquidityInterest), earned)
	position.CumulatedBorrowInterest = add(clone(position.CumulatedBorrowInterest), owed)
	position.LiquidityIndex = income
	position.BorrowIndex = debtIndex
	if now > position.LastUpdateTimestamp {
		position.LastUpdateTimestamp = now
	}
}

// interestSince is balance*index/snapshot - balance.
func interestSince(balance, index, snapshot *uint256.Int, roundUp bool) *uint256.Int {
	if balance == nil || balance.IsZero() {
		return zero()
	}
	if snapshot == nil || snapshot.IsZero() {
		snapshot = lendingpool.ONE
	}
	var grown *uint256.Int
	if roundUp {
		grown = mulDivUp(balance, index, snapshot)
	} else {
		grown = mulDiv(balance, index, snapshot)
	}
	return sub(grown, balance)
}

// Collateral is the supply balance plus recognized liquidity interest.
func Collateral(position *lendingpool.Position, balances Balances) *uint256.Int {
	return add(balances.Supply, clone(position.CumulatedLiquidityInterest))
}

// Debt is the debt balance plus recognized borrow interest.
func Debt(position *lendingpool.Position, balances Balances) *uint256.Int {
	return add(balances.Debt, clone(position.CumulatedBorrowInterest))
}

// AvailableBalance is supply - debt + cumulated liquidity interest - cumulated
// borrow interest, floored at zero.
func AvailableBalance(position *lendingpool.Position, balances Balances) *uint256.Int {
	return sub(Collateral(position, balances), Debt(position, balances))
}
