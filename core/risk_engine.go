package core

import (
	"github.com/DomeLiquid/lendingpool"
	"github.com/holiman/uint256"
)

// RiskEngine prices positions of one reserve at a fixed oracle price.
type RiskEngine struct {
	Reserve *lendingpool.Reserve
	Price   *uint256.Int
}

func NewRiskEngine(reserve *lendingpool.Reserve, price *uint256.Int) *RiskEngine {
	return &RiskEngine{
		Reserve: reserve,
		Price:   price,
	}
}

// HealthFactor is collateralUsd * liquidationThreshold / debtUsd, and 0 when
// there is no debt. Use IsLiquidatable rather than comparing the result.
func HealthFactor(collateralUsd, debtUsd, liquidationThreshold *uint256.Int) *uint256.Int {
	if debtUsd.IsZero() {
		return zero()
	}
	return mulDiv(collateralUsd, liquidationThreshold, debtUsd)
}

// IsLiquidatable reports a health factor below the threshold. A position
// without debt is never liquidatable.
func IsLiquidatable(healthFactor, debt *uint256.Int) bool {
	if debt.IsZero() {
		return false
	}
	return healthFactor.Lt(lendingpool.HEALTH_FACTOR_LIQUIDATION_THRESHOLD)
}

func (r *RiskEngine) GetAccountHealthComponents(collateral, debt *uint256.Int) (*uint256.Int, *uint256.Int) {
	return usdValue(collateral, r.Price), usdValue(debt, r.Price)
}

func (r *RiskEngine) HealthFactorOf(collateral, debt *uint256.Int) *uint256.Int {
	collateralUsd, debtUsd := r.GetAccountHealthComponents(collateral, debt)
	return HealthFactor(collateralUsd, debtUsd, r.Reserve.LiquidationThreshold)
}

// CheckAccountHealth fails with ErrHealthFactorTooLow if debt is not covered.
func (r *RiskEngine) CheckAccountHealth(collateral, debt *uint256.Int) error {
	if debt.IsZero() {
		return nil
	}
	if r.HealthFactorOf(collateral, debt).Lt(lendingpool.HEALTH_FACTOR_LIQUIDATION_THRESHOLD) {
		return lendingpool.ErrHealthFactorTooLow
	}
	return nil
}

// BalanceDecreaseAllowed reports whether collateral can shrink by amount
// while keeping the health factor at or above ONE.
func (r *RiskEngine) BalanceDecreaseAllowed(collateral, debt, amount *uint256.Int) bool {
	threshold := r.Reserve.LiquidationThreshold
	if debt.IsZero() || threshold.IsZero() {
		return true
	}

	collateralUsd, debtUsd := r.GetAccountHealthComponents(collateral, debt)
	decreaseUsd := usdValue(amount, r.Price)
	if !collateralUsd.Gt(decreaseUsd) {
		return false
	}
	collateralAfter := new(uint256.Int).Sub(collateralUsd, decreaseUsd)

	// value-weighted threshold of what remains
	weighted := sub(wadMul(collateralUsd, threshold), wadMul(decreaseUsd, threshold))
	thresholdAfter := mulDiv(weighted, lendingpool.ONE, collateralAfter)

	healthFactor := HealthFactor(collateralAfter, debtUsd, thresholdAfter)
	return !healthFactor.Lt(lendingpool.HEALTH_FACTOR_LIQUIDATION_THRESHOLD)
}

// SizeLiquidation bounds debtToCover by the close factor and by what the
// borrower's collateral balance can pay for, returning the debt to repay and
// the collateral to seize.
func (r *RiskEngine) SizeLiquidation(debtToCover, borrowerDebt, collateralBalance *uint256.Int) (*uint256.Int, *uint256.Int) {
	maxLiquidatable := wadMul(borrowerDebt, lendingpool.LIQUIDATION_CLOSE_FACTOR_PERCENT)
	actualDebt := minOf(debtToCover, maxLiquidatable)

	collateralToSeize, debtNeeded := r.CalculateAvailableCollateralToLiquidate(actualDebt, collateralBalance)
	return minOf(actualDebt, debtNeeded), collateralToSeize
}

// CalculateAvailableCollateralToLiquidate converts debtToLiquidate into
// collateral units including the liquidation bonus. When the borrower holds
// less, all of it is seized and the debt is scaled down to match.
func (r *RiskEngine) CalculateAvailableCollateralToLiquidate(debtToLiquidate, collateralBalance *uint256.Int) (*uint256.Int, *uint256.Int) {
	bonus := r.Reserve.LiquidationBonus
	if r.Price.IsZero() || bonus.IsZero() {
		return zero(), zero()
	}

	// USD values carry the price's ONE scale, dividing by price returns units
	debtUsd := usdValue(debtToLiquidate, r.Price)
	maxCollateral := new(uint256.Int).Div(wadMul(debtUsd, bonus), r.Price)
	if !maxCollateral.Gt(collateralBalance) {
		return maxCollateral, clone(debtToLiquidate)
	}

	collateralUsd := usdValue(collateralBalance, r.Price)
	debtNeeded := new(uint256.Int).Div(wadDiv(collateralUsd, bonus), r.Price)
	return clone(collateralBalance), debtNeeded
}
