package store

import (
	"context"
	"strings"
	"testing"

	"github.com/DomeLiquid/lendingpool"
	"github.com/facebookgo/clock"
	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSqliteStore(t *testing.T) *Store {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func forEachStore(t *testing.T, fn func(t *testing.T, s lendingpool.Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSqliteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
}

func testReserve(clk clock.Clock) *lendingpool.Reserve {
	reserve := lendingpool.NewReserve(clk, "USDT", "4d8c508b-91c5-375b-92b0-ee702ed2dac5",
		lendingpool.ReserveConfig{
			Ltv:                  lendingpool.Percent(75),
			LiquidationThreshold: lendingpool.Percent(80),
			LiquidationBonus:     lendingpool.Percent(105),
			Decimals:             8,
			ReserveFactor:        lendingpool.Percent(10),
		},
		lendingpool.NewInterestRateConfig(lendingpool.Percent(80), lendingpool.Zero(), lendingpool.Percent(4), lendingpool.Percent(75)),
	)
	// wider than 64 bits
	reserve.AccruedToTreasury = new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	return reserve
}

func TestReserveStore(t *testing.T) {
	forEachStore(t, func(t *testing.T, s lendingpool.Store) {
		ctx := context.Background()
		reserve := testReserve(clock.NewMock())

		_, err := s.GetReserveById(ctx, reserve.Id)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
		assert.True(t, errors.Is(s.UpdateReserve(ctx, reserve), gorm.ErrRecordNotFound))

		require.NoError(t, s.CreateReserve(ctx, reserve))
		got, err := s.GetReserveById(ctx, reserve.Id)
		require.NoError(t, err)
		assert.Equal(t, reserve, got)

		// writing an unchanged reserve is not a miss
		require.NoError(t, s.UpdateReserve(ctx, reserve))

		reserve.BorrowIndex = lendingpool.Percent(101)
		reserve.LiquidityRate = lendingpool.Zero()
		reserve.LastUpdatedTimestamp += 60
		require.NoError(t, s.UpdateReserve(ctx, reserve))
		got, err = s.GetReserveById(ctx, reserve.Id)
		require.NoError(t, err)
		assert.Equal(t, reserve, got)
	})
}

func TestPositionStore(t *testing.T) {
	forEachStore(t, func(t *testing.T, s lendingpool.Store) {
		ctx := context.Background()
		clk := clock.NewMock()
		reserve := testReserve(clk)
		alice, bob := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

		_, err := s.FindPosition(ctx, reserve.Id, alice)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

		position := lendingpool.NewPosition(clk, alice, reserve)
		require.NoError(t, s.UpsertPosition(ctx, position))

		position.CumulatedBorrowInterest = uint256.NewInt(42)
		position.BorrowIndex = lendingpool.Percent(102)
		require.NoError(t, s.UpsertPosition(ctx, position))
		require.NoError(t, s.UpsertPosition(ctx, lendingpool.NewPosition(clk, bob, reserve)))

		got, err := s.FindPosition(ctx, reserve.Id, alice)
		require.NoError(t, err)
		assert.Equal(t, position, got)

		positions, err := s.ListPositions(ctx, reserve.Id)
		require.NoError(t, err)
		assert.Len(t, positions, 2)

		positions, err = s.ListPositions(ctx, uuid.Must(uuid.NewV4()))
		require.NoError(t, err)
		assert.Empty(t, positions)
	})
}

func TestDelegationStore(t *testing.T) {
	forEachStore(t, func(t *testing.T, s lendingpool.Store) {
		ctx := context.Background()
		clk := clock.NewMock()
		reserveId := testReserve(clk).Id
		alice, bob, carol := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

		_, err := s.FindDelegation(ctx, reserveId, alice, bob)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

		require.NoError(t, s.UpsertDelegation(ctx, lendingpool.NewDelegation(clk, reserveId, alice, bob, uint256.NewInt(100))))
		require.NoError(t, s.UpsertDelegation(ctx, lendingpool.NewDelegation(clk, reserveId, carol, bob, uint256.NewInt(200))))
		require.NoError(t, s.UpsertDelegation(ctx, lendingpool.NewDelegation(clk, reserveId, alice, carol, uint256.NewInt(300))))
		require.NoError(t, s.UpsertDelegation(ctx, lendingpool.NewDelegation(clk, reserveId, alice, bob, uint256.NewInt(50))))

		got, err := s.FindDelegation(ctx, reserveId, alice, bob)
		require.NoError(t, err)
		assert.Equal(t, uint256.NewInt(50), got.Amount)

		received, err := s.ListDelegationsByDelegatee(ctx, reserveId, bob)
		require.NoError(t, err)
		assert.Len(t, received, 2)

		granted, err := s.ListDelegationsByDelegator(ctx, reserveId, alice)
		require.NoError(t, err)
		assert.Len(t, granted, 2)
		for _, d := range granted {
			assert.Equal(t, alice, d.Delegator)
		}
	})
}

func TestEventStore(t *testing.T) {
	forEachStore(t, func(t *testing.T, s lendingpool.Store) {
		ctx := context.Background()
		clk := clock.NewMock()
		reserveId := testReserve(clk).Id
		alice, bob, carol := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

		deposit := lendingpool.NewDepositEvent(clk, reserveId, alice, alice, uint256.NewInt(1000))
		deposit.CreatedAt = 100
		borrow := lendingpool.NewBorrowEvent(clk, reserveId, bob, alice, uint256.NewInt(300))
		borrow.CreatedAt = 200
		liquidation := lendingpool.NewLiquidationEvent(clk, reserveId, carol, alice, uint256.NewInt(150), uint256.NewInt(157), true)
		liquidation.Detail.HealthFactorBefore = "900000000000"
		liquidation.CreatedAt = 300
		for _, e := range []*lendingpool.Event{deposit, borrow, liquidation} {
			require.NoError(t, s.CreateEvent(ctx, e))
		}

		tests := []struct {
			name            string
			account         uuid.UUID
			action          lendingpool.ActionType
			createdBeforeAt int64
			limit           int64
			want            []*lendingpool.Event
		}{
			{name: "all newest first", want: []*lendingpool.Event{liquidation, borrow, deposit}},
			{name: "as counterparty", account: alice, want: []*lendingpool.Event{liquidation, borrow, deposit}},
			{name: "as actor", account: bob, want: []*lendingpool.Event{borrow}},
			{name: "by action", action: lendingpool.ActionDeposit, want: []*lendingpool.Event{deposit}},
			{name: "before", createdBeforeAt: 300, want: []*lendingpool.Event{borrow, deposit}},
			{name: "limit", limit: 1, want: []*lendingpool.Event{liquidation}},
			{name: "account and action", account: carol, action: lendingpool.ActionBorrow, want: []*lendingpool.Event{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				events, err := s.ListEvents(ctx, reserveId, tt.account, tt.action, tt.createdBeforeAt, tt.limit)
				require.NoError(t, err)
				assert.Equal(t, tt.want, events)
			})
		}

		events, err := s.ListEvents(ctx, uuid.Must(uuid.NewV4()), uuid.Nil, 0, 0, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestAtomic(t *testing.T) {
	forEachStore(t, func(t *testing.T, s lendingpool.Store) {
		ctx := context.Background()
		clk := clock.NewMock()
		reserve := testReserve(clk)
		require.NoError(t, s.CreateReserve(ctx, reserve))
		alice := uuid.Must(uuid.NewV4())

		errAbort := errors.New("abort")
		err := s.Atomic(ctx, func(tx lendingpool.Store) error {
			changed := reserve.Clone()
			changed.BorrowIndex = lendingpool.Percent(200)
			if err := tx.UpdateReserve(ctx, changed); err != nil {
				return err
			}
			if err := tx.UpsertPosition(ctx, lendingpool.NewPosition(clk, alice, reserve)); err != nil {
				return err
			}
			return errAbort
		})
		assert.True(t, errors.Is(err, errAbort))

		got, err := s.GetReserveById(ctx, reserve.Id)
		require.NoError(t, err)
		assert.Equal(t, lendingpool.ONE, got.BorrowIndex)
		_, err = s.FindPosition(ctx, reserve.Id, alice)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

		err = s.Atomic(ctx, func(tx lendingpool.Store) error {
			return tx.UpsertPosition(ctx, lendingpool.NewPosition(clk, alice, reserve))
		})
		require.NoError(t, err)
		_, err = s.FindPosition(ctx, reserve.Id, alice)
		assert.NoError(t, err)
	})
}

func TestMemoryStoreClones(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	reserve := testReserve(clock.NewMock())
	require.NoError(t, s.CreateReserve(ctx, reserve))
	assert.True(t, errors.Is(s.CreateReserve(ctx, reserve), gorm.ErrDuplicatedKey))

	reserve.BorrowIndex.SetUint64(7)
	got, err := s.GetReserveById(ctx, reserve.Id)
	require.NoError(t, err)
	assert.Equal(t, lendingpool.ONE, got.BorrowIndex)

	got.LiquidityIndex.SetUint64(7)
	again, err := s.GetReserveById(ctx, reserve.Id)
	require.NoError(t, err)
	assert.Equal(t, lendingpool.ONE, again.LiquidityIndex)
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("")
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	_, err = parseAmount("12a")
	assert.Error(t, err)

	m := newEventModel(lendingpool.NewDepositEvent(clock.NewMock(), uuid.Nil, uuid.Nil, uuid.Nil, uint256.NewInt(1)))
	m.Amount = "-1"
	_, err = m.toDomain()
	assert.Error(t, err)
}
