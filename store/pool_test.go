package store_test

import (
	"context"
	"testing"

	"github.com/DomeLiquid/lendingpool"
	"github.com/DomeLiquid/lendingpool/core"
	"github.com/DomeLiquid/lendingpool/ledger"
	"github.com/DomeLiquid/lendingpool/oracle"
	"github.com/DomeLiquid/lendingpool/store"
	"github.com/facebookgo/clock"
	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPoolOnSqlite(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open("file:pool_on_sqlite?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	s := store.New(db)
	require.NoError(t, s.Migrate(ctx))

	clk := clock.NewMock()
	log := zerolog.New(zerolog.NewTestWriter(t))
	vault := ledger.NewVault()
	reserve := lendingpool.NewReserve(clk, "USDT", "4d8c508b-91c5-375b-92b0-ee702ed2dac5",
		lendingpool.ReserveConfig{
			Ltv:                  lendingpool.Percent(75),
			LiquidationThreshold: lendingpool.Percent(80),
			LiquidationBonus:     lendingpool.Percent(105),
			ReserveFactor:        lendingpool.Percent(10),
		},
		lendingpool.NewInterestRateConfig(lendingpool.Percent(80), lendingpool.Zero(), lendingpool.Percent(4), lendingpool.Percent(75)),
	)
	pool, err := core.NewPool(ctx, clk, &log, s, reserve, core.Collaborators{
		SupplyToken: ledger.NewToken("sUSDT"),
		DebtToken:   ledger.NewToken("dUSDT"),
		Vault:       vault,
		Oracle:      oracle.NewStaticOracle(lendingpool.ONE),
	})
	require.NoError(t, err)

	alice, bob := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	vault.Fund(alice, uint256.NewInt(1000))
	require.NoError(t, pool.Deposit(ctx, alice, uint256.NewInt(1000), alice))
	require.NoError(t, pool.Delegate(ctx, alice, bob, uint256.NewInt(300)))
	require.NoError(t, pool.Borrow(ctx, bob, uint256.NewInt(300), alice))

	stored, err := s.GetReserveById(ctx, reserve.Id)
	require.NoError(t, err)
	assert.Equal(t, lendingpool.Percent(30), stored.UtilizationRate)

	position, err := s.FindPosition(ctx, reserve.Id, alice)
	require.NoError(t, err)
	assert.Equal(t, alice, position.AccountId)

	allowance, err := pool.Allowance(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, allowance.IsZero())

	events, err := pool.ListEvents(ctx, alice, 0, 0, 0)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	// a failed borrow leaves the database as it was
	err = pool.Borrow(ctx, bob, uint256.NewInt(1), alice)
	assert.ErrorIs(t, err, lendingpool.ErrInsufficientAvailableBalance)
	events, err = pool.ListEvents(ctx, uuid.Nil, lendingpool.ActionBorrow, 0, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
