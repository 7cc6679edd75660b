package core

import (
	"context"

	"github.com/DomeLiquid/lendingpool"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// liquidation walks Eligible -> Sized -> Settled. Nothing is mutated before
// Sized is reached.
type liquidation struct {
	engine *RiskEngine
	state  lendingpool.LiquidationState

	collateral        *uint256.Int
	debt              *uint256.Int
	collateralBalance *uint256.Int
	healthFactor      *uint256.Int

	actualDebt        *uint256.Int
	collateralToSeize *uint256.Int
}

func newLiquidation(engine *RiskEngine, collateral, debt, collateralBalance *uint256.Int) *liquidation {
	return &liquidation{
		engine:            engine,
		state:             lendingpool.LiquidationStateNone,
		collateral:        collateral,
		debt:              debt,
		collateralBalance: collateralBalance,
	}
}

func (l *liquidation) checkEligible() error {
	if l.debt.IsZero() {
		return lendingpool.ErrNoDebtToLiquidate
	}
	l.healthFactor = l.engine.HealthFactorOf(l.collateral, l.debt)
	if !IsLiquidatable(l.healthFactor, l.debt) {
		return lendingpool.ErrHealthFactorNotBelowThreshold
	}
	l.state = lendingpool.LiquidationStateEligible
	return nil
}

func (l *liquidation) size(debtToCover *uint256.Int) error {
	if l.state != lendingpool.LiquidationStateEligible {
		return errors.Errorf("cannot size a liquidation in state %s", l.state)
	}
	l.actualDebt, l.collateralToSeize = l.engine.SizeLiquidation(debtToCover, l.debt, l.collateralBalance)
	if l.actualDebt.IsZero() || l.collateralToSeize.IsZero() {
		return errors.Wrap(lendingpool.ErrInvalidAmount, "liquidation sizes to zero")
	}
	l.state = lendingpool.LiquidationStateSized
	return nil
}

func (l *liquidation) settle() error {
	if l.state != lendingpool.LiquidationStateSized {
		return errors.Errorf("cannot settle a liquidation in state %s", l.state)
	}
	l.state = lendingpool.LiquidationStateSettled
	return nil
}

// LiquidationCall repays part of borrower's debt with liquidator's underlying
// and hands over borrower collateral plus the liquidation bonus, either as
// supply tokens or, when receiveSupplyToken is false, as underlying.
func (p *Pool) LiquidationCall(ctx context.Context, liquidator, borrower uuid.UUID, debtToCover *uint256.Int, receiveSupplyToken bool) (*lendingpool.LiquidationResult, error) {
	if err := ValidateAmount(debtToCover); err != nil {
		return nil, err
	}
	if liquidator == borrower {
		return nil, errors.Wrap(lendingpool.ErrTransferNotAllowed, "self liquidation")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, lendingpool.ActionLiquidation)
	if err != nil {
		return nil, err
	}

	position, balances, err := p.reconciledPosition(ctx, op, borrower, false)
	if err != nil {
		return nil, p.abort(ctx, op, err)
	}
	if position == nil {
		return nil, p.abort(ctx, op, lendingpool.ErrNoDebtForUser)
	}

	price, err := p.price(ctx)
	if err != nil {
		return nil, p.abort(ctx, op, err)
	}
	engine := NewRiskEngine(op.reserve, price)

	collateral := Collateral(position, balances)
	debt := Debt(position, balances)
	l := newLiquidation(engine, collateral, debt, balances.Supply)
	if err := l.checkEligible(); err != nil {
		return nil, p.abort(ctx, op, err)
	}
	if err := l.size(debtToCover); err != nil {
		return nil, p.abort(ctx, op, err)
	}

	if !receiveSupplyToken && l.collateralToSeize.Gt(op.cash) {
		return nil, p.abort(ctx, op, lendingpool.ErrInsufficientPoolLiquidity)
	}

	var liquidatorPosition *lendingpool.Position
	if receiveSupplyToken {
		liquidatorPosition, _, err = p.reconciledPosition(ctx, op, liquidator, true)
		if err != nil {
			return nil, p.abort(ctx, op, err)
		}
	}

	fromInterest := minOf(l.actualDebt, position.CumulatedBorrowInterest)
	burnDebt := minOf(sub(l.actualDebt, fromInterest), balances.Debt)
	debtAfter := sub(op.totalDebt, burnDebt)

	// debt leg
	if err := op.journal.transferIn(ctx, p.vault, liquidator, l.actualDebt); err != nil {
		return nil, p.abort(ctx, op, err)
	}
	if err := op.journal.burn(ctx, p.debtToken, debtTokenName, borrower, burnDebt); err != nil {
		return nil, p.abort(ctx, op, err)
	}
	AccrueReserve(p.log, op.reserve, debtAfter, op.now)
	ApplyRates(op.reserve, ComputeRates(op.reserve, op.cash, l.actualDebt, zero(), debtAfter))

	// collateral leg
	cashAfterDebt := add(op.cash, l.actualDebt)
	if receiveSupplyToken {
		if err := op.journal.transferFrom(ctx, p.supplyToken, supplyTokenName, borrower, liquidator, l.collateralToSeize); err != nil {
			return nil, p.abort(ctx, op, err)
		}
		AccrueReserve(p.log, op.reserve, debtAfter, op.now)
		ApplyRates(op.reserve, ComputeRates(op.reserve, cashAfterDebt, zero(), zero(), debtAfter))
	} else {
		if err := op.journal.burn(ctx, p.supplyToken, supplyTokenName, borrower, l.collateralToSeize); err != nil {
			return nil, p.abort(ctx, op, err)
		}
		if err := op.journal.transferOut(ctx, p.vault, liquidator, l.collateralToSeize); err != nil {
			return nil, p.abort(ctx, op, err)
		}
		AccrueReserve(p.log, op.reserve, debtAfter, op.now)
		ApplyRates(op.reserve, ComputeRates(op.reserve, cashAfterDebt, zero(), l.collateralToSeize, debtAfter))
	}
	if err := l.settle(); err != nil {
		return nil, p.abort(ctx, op, err)
	}

	position.CumulatedBorrowInterest = sub(position.CumulatedBorrowInterest, fromInterest)
	op.positions = append(op.positions, position)
	if liquidatorPosition != nil {
		op.positions = append(op.positions, liquidatorPosition)
	}
	op.event = lendingpool.NewLiquidationEvent(p.clk, op.reserve.Id, liquidator, borrower, l.actualDebt, l.collateralToSeize, receiveSupplyToken)

	postHealth := engine.HealthFactorOf(sub(collateral, l.collateralToSeize), sub(debt, l.actualDebt))
	op.event.Detail.HealthFactorBefore = l.healthFactor.Dec()
	op.event.Detail.HealthFactorAfter = postHealth.Dec()

	if err := p.commit(ctx, op); err != nil {
		return nil, p.abort(ctx, op, err)
	}

	p.log.Info().Msgf("liquidation: liquidator %s, liquidatee %s, debt %s, collateral %s, health %s -> %s",
		liquidator, borrower, l.actualDebt.Dec(), l.collateralToSeize.Dec(), l.healthFactor.Dec(), postHealth.Dec())

	return &lendingpool.LiquidationResult{
		Liquidator:         liquidator,
		Liquidatee:         borrower,
		State:              l.state,
		ReceiveSupplyToken: receiveSupplyToken,
		DebtToCover:        clone(debtToCover),
		ActualDebt:         l.actualDebt,
		CollateralSeized:   l.collateralToSeize,
		LiquidateeDebt:     debt,
		LiquidateeSupply:   clone(balances.Supply),
		Price:              price,
		PreHealthFactor:    l.healthFactor,
		PostHealthFactor:   postHealth,
		LiquidateeBalance:  position.Clone(),
	}, nil
}
