package core

import (
	"context"
	"testing"

	"github.com/DomeLiquid/lendingpool"
	"github.com/DomeLiquid/lendingpool/store"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("collaborator unavailable")

// flakyVault fails TransferOut while failOut is set.
type flakyVault struct {
	lendingpool.Vault
	failOut bool
}

func (v *flakyVault) TransferOut(ctx context.Context, to uuid.UUID, amount *uint256.Int) error {
	if v.failOut {
		return errUnavailable
	}
	return v.Vault.TransferOut(ctx, to, amount)
}

// brokenStore refuses every commit.
type brokenStore struct {
	*store.MemoryStore
}

func (s *brokenStore) Atomic(ctx context.Context, fn func(tx lendingpool.Store) error) error {
	return errUnavailable
}

func TestRollbackOnCollaboratorFailure(t *testing.T) {
	var vault *flakyVault
	f := newFixtureWith(t, func(c *Collaborators) {
		vault = &flakyVault{Vault: c.Vault}
		c.Vault = vault
	})
	alice := newAccount()
	f.deposit(t, alice, 1000)
	require.NoError(t, f.pool.Delegate(f.ctx, alice, alice, amount(500)))

	vault.failOut = true
	before := f.snapshot(t, alice)

	// debt tokens are minted before the payout fails
	err := f.pool.Borrow(f.ctx, alice, amount(500), alice)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)
	assert.ErrorIs(t, err, lendingpool.ErrInsufficientPoolLiquidity)
	var collaboratorErr *lendingpool.CollaboratorError
	require.True(t, errors.As(err, &collaboratorErr))
	assert.Equal(t, "vault transfer out", collaboratorErr.Op)

	// supply tokens are burned before the payout fails
	err = f.pool.Withdraw(f.ctx, alice, amount(100), alice)
	assert.ErrorIs(t, err, errUnavailable)

	assert.Equal(t, before, f.snapshot(t, alice))
	allowance, err := f.pool.Allowance(f.ctx, alice, alice)
	require.NoError(t, err)
	assert.Equal(t, amount(500), allowance)

	vault.failOut = false
	require.NoError(t, f.pool.Borrow(f.ctx, alice, amount(500), alice))
	assert.Equal(t, amount(500), f.debtOf(t, alice))
}

func TestRollbackOnCommitFailure(t *testing.T) {
	f := newFixture(t)
	alice := newAccount()
	f.deposit(t, alice, 1000)

	pool, err := NewPool(f.ctx, f.clk, testLog(t), &brokenStore{MemoryStore: f.store}, testReserve(f.clk), Collaborators{
		SupplyToken: f.supply, DebtToken: f.debt, Vault: f.vault, Oracle: f.oracle,
	})
	require.NoError(t, err)

	f.vault.Fund(alice, amount(100))
	before := f.snapshot(t, alice)

	assert.ErrorIs(t, pool.Deposit(f.ctx, alice, amount(100), alice), errUnavailable)
	assert.ErrorIs(t, pool.Withdraw(f.ctx, alice, amount(100), alice), errUnavailable)
	assert.ErrorIs(t, pool.Delegate(f.ctx, alice, alice, amount(100)), errUnavailable)
	assert.Equal(t, before, f.snapshot(t, alice))
}

func TestJournalRollbackOrder(t *testing.T) {
	j := newJournal(testLog(t))
	var order []string
	j.push("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	j.push("second", func(ctx context.Context) error {
		order = append(order, "second")
		return errUnavailable
	})
	j.push("third", func(ctx context.Context) error {
		order = append(order, "third")
		return nil
	})

	j.rollback(context.Background())
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Empty(t, j.undo)
}
