package lendingpool

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
)

type (
	// AssetLedger is a fungible token the pool mints and burns: one instance
	// for supply tokens, one for debt tokens.
	AssetLedger interface {
		Mint(ctx context.Context, to uuid.UUID, amount *uint256.Int) error
		Burn(ctx context.Context, from uuid.UUID, amount *uint256.Int) error
		TransferFrom(ctx context.Context, from, to uuid.UUID, amount *uint256.Int) error
		BalanceOf(ctx context.Context, account uuid.UUID) (*uint256.Int, error)
		TotalSupply(ctx context.Context) (*uint256.Int, error)
	}

	// PriceOracle prices one unit of the underlying asset, scaled by ONE.
	PriceOracle interface {
		Update(ctx context.Context) error
		Get(ctx context.Context) (*uint256.Int, error)
	}

	// Vault moves the underlying asset between accounts and the pool.
	Vault interface {
		TransferIn(ctx context.Context, from uuid.UUID, amount *uint256.Int) error
		TransferOut(ctx context.Context, to uuid.UUID, amount *uint256.Int) error
		// Balance is the underlying held by the pool.
		Balance(ctx context.Context) (*uint256.Int, error)
	}

	Store interface {
		ReserveStore
		PositionStore
		DelegationStore
		EventStore

		// Atomic runs fn against a transactional view of the store; nothing
		// fn writes is kept if it returns an error.
		Atomic(ctx context.Context, fn func(tx Store) error) error
	}
)
