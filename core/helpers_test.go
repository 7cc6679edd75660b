package core

import (
	"context"
	"testing"
	"time"

	"github.com/DomeLiquid/lendingpool"
	"github.com/DomeLiquid/lendingpool/ledger"
	"github.com/DomeLiquid/lendingpool/oracle"
	"github.com/DomeLiquid/lendingpool/store"
	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClock() *clock.Mock {
	clk := clock.NewMock()
	clk.Add(1_700_000_000 * time.Second)
	return clk
}

func testLog(t *testing.T) *zerolog.Logger {
	log := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.InfoLevel)
	return &log
}

// testReserve: ltv 75%, threshold 80%, bonus 5%, reserve factor 10%, kink at
// 80% with slopes of 4% and 75%.
func testReserve(clk clock.Clock) *lendingpool.Reserve {
	return lendingpool.NewReserve(clk, "USDT", "4d8c508b-91c5-375b-92b0-ee702ed2dac5",
		lendingpool.ReserveConfig{
			Ltv:                  lendingpool.Percent(75),
			LiquidationThreshold: lendingpool.Percent(80),
			LiquidationBonus:     lendingpool.Percent(105),
			Decimals:             8,
			ReserveFactor:        lendingpool.Percent(10),
		},
		lendingpool.NewInterestRateConfig(lendingpool.Percent(80), zero(), lendingpool.Percent(4), lendingpool.Percent(75)),
	)
}

type fixture struct {
	ctx    context.Context
	clk    *clock.Mock
	store  *store.MemoryStore
	supply *ledger.Token
	debt   *ledger.Token
	vault  *ledger.Vault
	oracle *oracle.StaticOracle
	pool   *Pool
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, func(c *Collaborators) {})
}

// newFixtureWith lets a test wrap the collaborators before the pool is built.
func newFixtureWith(t *testing.T, wrap func(c *Collaborators)) *fixture {
	f := &fixture{
		ctx:    context.Background(),
		clk:    newTestClock(),
		store:  store.NewMemoryStore(),
		supply: ledger.NewToken("sUSDT"),
		debt:   ledger.NewToken("dUSDT"),
		vault:  ledger.NewVault(),
		oracle: oracle.NewStaticOracle(lendingpool.ONE),
	}
	c := Collaborators{
		SupplyToken: f.supply,
		DebtToken:   f.debt,
		Vault:       f.vault,
		Oracle:      f.oracle,
	}
	wrap(&c)

	pool, err := NewPool(f.ctx, f.clk, testLog(t), f.store, testReserve(f.clk), c)
	require.NoError(t, err)
	f.pool = pool
	return f
}

func newAccount() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func amount(n uint64) *uint256.Int {
	return uint256.NewInt(n)
}

// usd is n dollars at ONE scale.
func usd(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(amount(n), lendingpool.ONE)
}

// deposit funds account's wallet and supplies n to the pool for it.
func (f *fixture) deposit(t *testing.T, account uuid.UUID, n uint64) {
	t.Helper()
	f.vault.Fund(account, amount(n))
	require.NoError(t, f.pool.Deposit(f.ctx, account, amount(n), account))
}

// borrowOwn borrows n against account's own position through a self-delegation.
func (f *fixture) borrowOwn(t *testing.T, account uuid.UUID, n uint64) {
	t.Helper()
	require.NoError(t, f.pool.Delegate(f.ctx, account, account, amount(n)))
	require.NoError(t, f.pool.Borrow(f.ctx, account, amount(n), account))
}

func (f *fixture) supplyOf(t *testing.T, account uuid.UUID) *uint256.Int {
	t.Helper()
	balance, err := f.supply.BalanceOf(f.ctx, account)
	require.NoError(t, err)
	return balance
}

func (f *fixture) debtOf(t *testing.T, account uuid.UUID) *uint256.Int {
	t.Helper()
	balance, err := f.debt.BalanceOf(f.ctx, account)
	require.NoError(t, err)
	return balance
}

func (f *fixture) cash(t *testing.T) *uint256.Int {
	t.Helper()
	balance, err := f.vault.Balance(f.ctx)
	require.NoError(t, err)
	return balance
}

func (f *fixture) reserve(t *testing.T) *lendingpool.Reserve {
	t.Helper()
	reserve, err := f.pool.GetReserve(f.ctx)
	require.NoError(t, err)
	return reserve
}

func (f *fixture) events(t *testing.T, account uuid.UUID, action lendingpool.ActionType) []*lendingpool.Event {
	t.Helper()
	events, err := f.pool.ListEvents(f.ctx, account, action, 0, 0)
	require.NoError(t, err)
	return events
}

// snapshot captures every observable balance of the accounts plus the reserve.
type snapshot struct {
	reserve *lendingpool.Reserve
	cash    *uint256.Int
	supply  map[uuid.UUID]*uint256.Int
	debt    map[uuid.UUID]*uint256.Int
	wallets map[uuid.UUID]*uint256.Int
	events  int
}

func (f *fixture) snapshot(t *testing.T, accounts ...uuid.UUID) snapshot {
	t.Helper()
	s := snapshot{
		reserve: f.reserve(t),
		cash:    f.cash(t),
		supply:  map[uuid.UUID]*uint256.Int{},
		debt:    map[uuid.UUID]*uint256.Int{},
		wallets: map[uuid.UUID]*uint256.Int{},
		events:  len(f.events(t, uuid.Nil, 0)),
	}
	for _, account := range accounts {
		s.supply[account] = f.supplyOf(t, account)
		s.debt[account] = f.debtOf(t, account)
		s.wallets[account] = f.vault.WalletOf(account)
	}
	return s
}
