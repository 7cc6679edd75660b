package lendingpool

import (
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// ReserveView is the aggregate utilization and liquidity picture of a reserve.
type ReserveView struct {
	Reserve *Reserve `json:"reserve"`

	TotalSupply        *uint256.Int `json:"totalSupply"`
	TotalDebt          *uint256.Int `json:"totalDebt"`
	AvailableLiquidity *uint256.Int `json:"availableLiquidity"`
	UtilizationRate    *uint256.Int `json:"utilizationRate"`
	NormalizedIncome   *uint256.Int `json:"normalizedIncome"`
	NormalizedDebt     *uint256.Int `json:"normalizedDebt"`

	SupplyApr decimal.Decimal `json:"supplyApr"`
	SupplyApy decimal.Decimal `json:"supplyApy"`
	BorrowApr decimal.Decimal `json:"borrowApr"`
	BorrowApy decimal.Decimal `json:"borrowApy"`

	Timestamp int64 `json:"timestamp"`
}

// PositionView is an account's position projected to Timestamp.
type PositionView struct {
	AccountId uuid.UUID `json:"accountId"`

	SupplyBalance              *uint256.Int `json:"supplyBalance"`
	DebtBalance                *uint256.Int `json:"debtBalance"`
	CumulatedLiquidityInterest *uint256.Int `json:"cumulatedLiquidityInterest"`
	CumulatedBorrowInterest    *uint256.Int `json:"cumulatedBorrowInterest"`
	NormalizedSupply           *uint256.Int `json:"normalizedSupply"`
	NormalizedDebt             *uint256.Int `json:"normalizedDebt"`
	AvailableBalance           *uint256.Int `json:"availableBalance"`

	LastUpdateTimestamp int64 `json:"lastUpdateTimestamp"`
	Timestamp           int64 `json:"timestamp"`
}

// UserAccountData is the health probe of one account. USD values are
// amount * price and so carry the ONE scale.
type UserAccountData struct {
	AccountId uuid.UUID `json:"accountId"`

	Price               *uint256.Int `json:"price"`
	TotalCollateral     *uint256.Int `json:"totalCollateral"`
	TotalDebt           *uint256.Int `json:"totalDebt"`
	TotalCollateralUsd  *uint256.Int `json:"totalCollateralUsd"`
	TotalDebtUsd        *uint256.Int `json:"totalDebtUsd"`
	AvailableBorrowsUsd *uint256.Int `json:"availableBorrowsUsd"`
	HealthFactor        *uint256.Int `json:"healthFactor"`
	Liquidatable        bool         `json:"liquidatable"`
}
