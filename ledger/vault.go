package ledger

import (
	"context"
	"sync"

	"github.com/DomeLiquid/lendingpool"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Vault holds the underlying asset: the pool's own balance plus the wallets
// of the accounts that trade with it.
type Vault struct {
	mu      sync.RWMutex
	pool    *uint256.Int
	wallets map[uuid.UUID]*uint256.Int
}

var _ lendingpool.Vault = (*Vault)(nil)

func NewVault() *Vault {
	return &Vault{
		pool:    lendingpool.Zero(),
		wallets: map[uuid.UUID]*uint256.Int{},
	}
}

// Fund credits an account's wallet with underlying from outside the pool.
func (v *Vault) Fund(account uuid.UUID, amount *uint256.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.wallets[account] = new(uint256.Int).Add(v.walletOf(account), amount)
}

// WalletOf is the underlying an account holds outside the pool.
func (v *Vault) WalletOf(account uuid.UUID) *uint256.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return lendingpool.CloneAmount(v.walletOf(account))
}

func (v *Vault) TransferIn(ctx context.Context, from uuid.UUID, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	wallet := v.walletOf(from)
	if wallet.Lt(amount) {
		return errors.Wrapf(lendingpool.ErrInsufficientBalance, "vault: %s holds %s, needs %s", from, wallet.Dec(), amount.Dec())
	}
	v.wallets[from] = new(uint256.Int).Sub(wallet, amount)
	v.pool = new(uint256.Int).Add(v.pool, amount)
	return nil
}

func (v *Vault) TransferOut(ctx context.Context, to uuid.UUID, amount *uint256.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.pool.Lt(amount) {
		return errors.Wrapf(lendingpool.ErrInsufficientBalance, "vault: pool holds %s, needs %s", v.pool.Dec(), amount.Dec())
	}
	v.pool = new(uint256.Int).Sub(v.pool, amount)
	v.wallets[to] = new(uint256.Int).Add(v.walletOf(to), amount)
	return nil
}

func (v *Vault) Balance(ctx context.Context) (*uint256.Int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return lendingpool.CloneAmount(v.pool), nil
}

func (v *Vault) walletOf(account uuid.UUID) *uint256.Int {
	if wallet, ok := v.wallets[account]; ok {
		return wallet
	}
	return lendingpool.Zero()
}
