package core

import (
	"context"

	"github.com/DomeLiquid/lendingpool"
	"github.com/DomeLiquid/lendingpool/utils"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetReserve returns the stored reserve snapshot.
func (p *Pool) GetReserve(ctx context.Context) (*lendingpool.Reserve, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.GetReserveById(ctx, p.reserveId)
}

// GetReserveView projects the reserve to now without persisting anything.
func (p *Pool) GetReserveView(ctx context.Context) (*lendingpool.ReserveView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, 0)
	if err != nil {
		return nil, err
	}
	totalSupply, err := p.supplyToken.TotalSupply(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "supply token total supply")
	}

	supplyApr := utils.DecimalFromUint256(op.reserve.LiquidityRate)
	borrowApr := utils.DecimalFromUint256(op.reserve.BorrowRate)
	return &lendingpool.ReserveView{
		Reserve:            op.reserve,
		TotalSupply:        totalSupply,
		TotalDebt:          op.totalDebt,
		AvailableLiquidity: op.cash,
		UtilizationRate:    UtilizationRate(op.cash, op.totalDebt),
		NormalizedIncome:   NormalizedIncome(op.reserve, op.now),
		NormalizedDebt:     NormalizedDebt(op.reserve, op.now),
		SupplyApr:          supplyApr,
		SupplyApy:          utils.AprToApy(supplyApr),
		BorrowApr:          borrowApr,
		BorrowApy:          utils.AprToApy(borrowApr),
		Timestamp:          op.now,
	}, nil
}

// GetPosition projects account's position to now. An account the pool has
// never seen gets an empty view.
func (p *Pool) GetPosition(ctx context.Context, account uuid.UUID) (*lendingpool.PositionView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, 0)
	if err != nil {
		return nil, err
	}
	position, balances, err := p.reconciledPosition(ctx, op, account, true)
	if err != nil {
		return nil, err
	}

	return &lendingpool.PositionView{
		AccountId:                  account,
		SupplyBalance:              balances.Supply,
		DebtBalance:                balances.Debt,
		CumulatedLiquidityInterest: clone(position.CumulatedLiquidityInterest),
		CumulatedBorrowInterest:    clone(position.CumulatedBorrowInterest),
		NormalizedSupply:           Collateral(position, balances),
		NormalizedDebt:             Debt(position, balances),
		AvailableBalance:           AvailableBalance(position, balances),
		LastUpdateTimestamp:        position.LastUpdateTimestamp,
		Timestamp:                  op.now,
	}, nil
}

// GetUserAccountData is the health probe: collateral and debt valued at the
// oracle price, borrow headroom by LTV, and the health factor.
func (p *Pool) GetUserAccountData(ctx context.Context, account uuid.UUID) (*lendingpool.UserAccountData, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, 0)
	if err != nil {
		return nil, err
	}
	position, balances, err := p.reconciledPosition(ctx, op, account, true)
	if err != nil {
		return nil, err
	}
	price, err := p.price(ctx)
	if err != nil {
		return nil, err
	}

	engine := NewRiskEngine(op.reserve, price)
	collateral, debt := Collateral(position, balances), Debt(position, balances)
	collateralUsd, debtUsd := engine.GetAccountHealthComponents(collateral, debt)
	healthFactor := HealthFactor(collateralUsd, debtUsd, op.reserve.LiquidationThreshold)

	return &lendingpool.UserAccountData{
		AccountId:           account,
		Price:               price,
		TotalCollateral:     collateral,
		TotalDebt:           debt,
		TotalCollateralUsd:  collateralUsd,
		TotalDebtUsd:        debtUsd,
		AvailableBorrowsUsd: sub(wadMul(collateralUsd, op.reserve.Ltv), debtUsd),
		HealthFactor:        healthFactor,
		Liquidatable:        IsLiquidatable(healthFactor, debt),
	}, nil
}

// Allowance is what delegatee may still borrow on behalf of delegator.
func (p *Pool) Allowance(ctx context.Context, delegator, delegatee uuid.UUID) (*uint256.Int, error) {
	delegation, err := p.store.FindDelegation(ctx, p.reserveId, delegator, delegatee)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero(), nil
		}
		return nil, err
	}
	return clone(delegation.Amount), nil
}

// DelegationsOf lists the allowances granted to delegatee.
func (p *Pool) DelegationsOf(ctx context.Context, delegatee uuid.UUID) ([]*lendingpool.Delegation, error) {
	return p.store.ListDelegationsByDelegatee(ctx, p.reserveId, delegatee)
}

// DelegationsBy lists the allowances delegator has granted.
func (p *Pool) DelegationsBy(ctx context.Context, delegator uuid.UUID) ([]*lendingpool.Delegation, error) {
	return p.store.ListDelegationsByDelegator(ctx, p.reserveId, delegator)
}

func (p *Pool) ListEvents(ctx context.Context, account uuid.UUID, action lendingpool.ActionType, createdBeforeAt, limit int64) ([]*lendingpool.Event, error) {
	return p.store.ListEvents(ctx, p.reserveId, account, action, createdBeforeAt, limit)
}

// Configure changes the reserve's risk or rate parameters after accruing
// interest at the old ones.
func (p *Pool) Configure(ctx context.Context, reserveConfig *lendingpool.ReserveConfig, irConfig *lendingpool.InterestRateConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, lendingpool.ActionConfigure)
	if err != nil {
		return err
	}
	if err := op.reserve.Configure(reserveConfig, irConfig); err != nil {
		return err
	}
	ApplyRates(op.reserve, ComputeRates(op.reserve, op.cash, zero(), zero(), op.totalDebt))
	if err := p.commit(ctx, op); err != nil {
		return err
	}

	p.log.Info().Msgf("reserve %s configured", op.reserve.Id)
	return nil
}
