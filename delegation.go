package lendingpool

import (
	"context"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
)

type (
	DelegationStore interface {
		FindDelegation(ctx context.Context, reserveId, delegator, delegatee uuid.UUID) (*Delegation, error)
		UpsertDelegation(ctx context.Context, delegation *Delegation) error
		ListDelegationsByDelegatee(ctx context.Context, reserveId, delegatee uuid.UUID) ([]*Delegation, error)
		ListDelegationsByDelegator(ctx context.Context, reserveId, delegator uuid.UUID) ([]*Delegation, error)
	}

	// Delegation is the remaining amount Delegatee may borrow against
	// Delegator's position.
	Delegation struct {
		ReserveId uuid.UUID    `json:"reserveId"`
		Delegator uuid.UUID    `json:"delegator"`
		Delegatee uuid.UUID    `json:"delegatee"`
		Amount    *uint256.Int `json:"amount"`
		UpdatedAt int64        `json:"updatedAt"`
	}
)

func NewDelegation(clk clock.Clock, reserveId, delegator, delegatee uuid.UUID, amount *uint256.Int) *Delegation {
	return &Delegation{
		ReserveId: reserveId,
		Delegator: delegator,
		Delegatee: delegatee,
		Amount:    CloneAmount(amount),
		UpdatedAt: clk.Now().Unix(),
	}
}

func (d *Delegation) Clone() *Delegation {
	return &Delegation{
		ReserveId: d.ReserveId,
		Delegator: d.Delegator,
		Delegatee: d.Delegatee,
		Amount:    CloneAmount(d.Amount),
		UpdatedAt: d.UpdatedAt,
	}
}
