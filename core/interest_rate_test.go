package core

import (
	"testing"

	"github.com/DomeLiquid/lendingpool"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestComputeRates(t *testing.T) {
	reserve := testReserve(newTestClock())

	tests := []struct {
		name        string
		available   uint64
		added       uint64
		taken       uint64
		totalDebt   uint64
		utilization *uint256.Int
		borrow      *uint256.Int
		liquidity   *uint256.Int
	}{
		{
			name:        "idle pool",
			available:   1000,
			utilization: zero(),
			borrow:      zero(),
			liquidity:   zero(),
		},
		{
			name:        "at the kink",
			available:   200,
			totalDebt:   800,
			utilization: lendingpool.Percent(80),
			borrow:      lendingpool.Percent(4),
			// 4% * 80% * (1 - 10%)
			liquidity: uint256.NewInt(28_800_000_000),
		},
		{
			name:        "liquidity taken",
			available:   1000,
			taken:       200,
			totalDebt:   800,
			utilization: lendingpool.Percent(50),
			borrow:      uint256.NewInt(25_000_000_000),
			liquidity:   uint256.NewInt(11_250_000_000),
		},
		{
			name:        "liquidity added",
			available:   0,
			added:       800,
			totalDebt:   800,
			utilization: lendingpool.Percent(50),
			borrow:      uint256.NewInt(25_000_000_000),
			liquidity:   uint256.NewInt(11_250_000_000),
		},
		{
			name:        "fully borrowed",
			available:   0,
			totalDebt:   800,
			utilization: lendingpool.ONE,
			borrow:      lendingpool.Percent(79),
			liquidity:   wadMul(lendingpool.Percent(79), lendingpool.Percent(90)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rates := ComputeRates(reserve,
				uint256.NewInt(tt.available), uint256.NewInt(tt.added), uint256.NewInt(tt.taken), uint256.NewInt(tt.totalDebt))
			assert.Equal(t, tt.utilization, rates.UtilizationRate, "utilization %s", rates.UtilizationRate.Dec())
			assert.Equal(t, tt.borrow, rates.BorrowRate, "borrow %s", rates.BorrowRate.Dec())
			assert.Equal(t, tt.liquidity, rates.LiquidityRate, "liquidity %s", rates.LiquidityRate.Dec())
		})
	}
}

func TestApplyRates(t *testing.T) {
	reserve := testReserve(newTestClock())
	rates := Rates{
		LiquidityRate:   lendingpool.Percent(1),
		BorrowRate:      lendingpool.Percent(2),
		UtilizationRate: lendingpool.Percent(3),
	}
	ApplyRates(reserve, rates)
	rates.BorrowRate.SetUint64(0)

	assert.Equal(t, lendingpool.Percent(1), reserve.LiquidityRate)
	assert.Equal(t, lendingpool.Percent(2), reserve.BorrowRate)
	assert.Equal(t, lendingpool.Percent(3), reserve.UtilizationRate)
}
