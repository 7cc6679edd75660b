package lendingpool

import (
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
)

type LiquidationState uint8

const (
	LiquidationStateNone LiquidationState = iota
	LiquidationStateEligible
	LiquidationStateSized
	LiquidationStateSettled
)

func (s LiquidationState) String() string {
	switch s {
	case LiquidationStateNone:
		return "None"
	case LiquidationStateEligible:
		return "Eligible"
	case LiquidationStateSized:
		return "Sized"
	case LiquidationStateSettled:
		return "Settled"
	default:
		return "Unknown"
	}
}

type LiquidationResult struct {
	Liquidator uuid.UUID `json:"liquidator"`
	Liquidatee uuid.UUID `json:"liquidatee"`

	State              LiquidationState `json:"state"`
	ReceiveSupplyToken bool             `json:"receiveSupplyToken"`

	DebtToCover       *uint256.Int `json:"debtToCover"`
	ActualDebt        *uint256.Int `json:"actualDebt"`
	CollateralSeized  *uint256.Int `json:"collateralSeized"`
	LiquidateeDebt    *uint256.Int `json:"liquidateeDebt"`
	LiquidateeSupply  *uint256.Int `json:"liquidateeSupply"`
	Price             *uint256.Int `json:"price"`
	PreHealthFactor   *uint256.Int `json:"preHealthFactor"`
	PostHealthFactor  *uint256.Int `json:"postHealthFactor"`
	LiquidateeBalance *Position    `json:"liquidateeBalance"`
}
