package lendingpool

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
)

type (
	PositionStore interface {
		FindPosition(ctx context.Context, reserveId, accountId uuid.UUID) (*Position, error)
		UpsertPosition(ctx context.Context, position *Position) error
		ListPositions(ctx context.Context, reserveId uuid.UUID) ([]*Position, error)
	}

	// Position is the per-account interest snapshot. Principal lives in the
	// supply and debt token ledgers.
	Position struct {
		AccountId uuid.UUID `json:"accountId"`
		ReserveId uuid.UUID `json:"reserveId"`

		CumulatedLiquidityInterest *uint256.Int `json:"cumulatedLiquidityInterest"`
		CumulatedBorrowInterest    *uint256.Int `json:"cumulatedBorrowInterest"`

		// index values the cumulated interest was last folded at
		LiquidityIndex *uint256.Int `json:"liquidityIndex"`
		BorrowIndex    *uint256.Int `json:"borrowIndex"`

		LastUpdateTimestamp int64 `json:"lastUpdateTimestamp"`
		CreatedAt           int64 `json:"createdAt"`
	}
)

func NewPosition(clk clock.Clock, accountId uuid.UUID, reserve *Reserve) *Position {
	now := clk.Now().Unix()
	return &Position{
		AccountId:                  accountId,
		ReserveId:                  reserve.Id,
		CumulatedLiquidityInterest: Zero(),
		CumulatedBorrowInterest:    Zero(),
		LiquidityIndex:             CloneAmount(reserve.LiquidityIndex),
		BorrowIndex:                CloneAmount(reserve.BorrowIndex),
		LastUpdateTimestamp:        now,
		CreatedAt:                  now,
	}
}

func (p *Position) Clone() *Position {
	return &Position{
		AccountId:                  p.AccountId,
		ReserveId:                  p.ReserveId,
		CumulatedLiquidityInterest: CloneAmount(p.CumulatedLiquidityInterest),
		CumulatedBorrowInterest:    CloneAmount(p.CumulatedBorrowInterest),
		LiquidityIndex:             CloneAmount(p.LiquidityIndex),
		BorrowIndex:                CloneAmount(p.BorrowIndex),
		LastUpdateTimestamp:        p.LastUpdateTimestamp,
		CreatedAt:                  p.CreatedAt,
	}
}
