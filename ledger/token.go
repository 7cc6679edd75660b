package ledger

import (
	"context"
	"sync"

	"github.com/DomeLiquid/lendingpool"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Token is an in-memory fungible ledger, used for the pool's supply and debt
// tokens when no external ledger is wired in.
type Token struct {
	mu       sync.RWMutex
	symbol   string
	balances map[uuid.UUID]*uint256.Int
	supply   *uint256.Int
}

var _ lendingpool.AssetLedger = (*Token)(nil)

func NewToken(symbol string) *Token {
	return &Token{
		symbol:   symbol,
		balances: map[uuid.UUID]*uint256.Int{},
		supply:   lendingpool.Zero(),
	}
}

func (t *Token) Symbol() string {
	return t.symbol
}

func (t *Token) Mint(ctx context.Context, to uuid.UUID, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	supply, overflow := new(uint256.Int).AddOverflow(t.supply, amount)
	if overflow {
		return errors.Errorf("%s: supply overflow", t.symbol)
	}
	t.supply = supply
	t.balances[to] = new(uint256.Int).Add(t.balanceOf(to), amount)
	return nil
}

func (t *Token) Burn(ctx context.Context, from uuid.UUID, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	balance := t.balanceOf(from)
	if balance.Lt(amount) {
		return errors.Wrapf(lendingpool.ErrInsufficientBalance, "%s: burn %s from %s holding %s", t.symbol, amount.Dec(), from, balance.Dec())
	}
	t.balances[from] = new(uint256.Int).Sub(balance, amount)
	t.supply = new(uint256.Int).Sub(t.supply, amount)
	return nil
}

func (t *Token) TransferFrom(ctx context.Context, from, to uuid.UUID, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	balance := t.balanceOf(from)
	if balance.Lt(amount) {
		return errors.Wrapf(lendingpool.ErrInsufficientBalance, "%s: transfer %s from %s holding %s", t.symbol, amount.Dec(), from, balance.Dec())
	}
	t.balances[from] = new(uint256.Int).Sub(balance, amount)
	t.balances[to] = new(uint256.Int).Add(t.balanceOf(to), amount)
	return nil
}

func (t *Token) BalanceOf(ctx context.Context, account uuid.UUID) (*uint256.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return lendingpool.CloneAmount(t.balanceOf(account)), nil
}

func (t *Token) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return lendingpool.CloneAmount(t.supply), nil
}

func (t *Token) balanceOf(account uuid.UUID) *uint256.Int {
	if balance, ok := t.balances[account]; ok {
		return balance
	}
	return lendingpool.Zero()
}
