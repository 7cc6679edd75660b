package core

import (
	"context"

	"github.com/DomeLiquid/lendingpool"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Deposit moves amount of the underlying from user into the pool and mints
// the same amount of supply tokens to onBehalfOf.
func (p *Pool) Deposit(ctx context.Context, user uuid.UUID, amount *uint256.Int, onBehalfOf uuid.UUID) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, lendingpool.ActionDeposit)
	if err != nil {
		return err
	}

	position, _, err := p.reconciledPosition(ctx, op, onBehalfOf, true)
	if err != nil {
		return p.abort(ctx, op, err)
	}

	rates := ComputeRates(op.reserve, op.cash, amount, zero(), op.totalDebt)

	if err := op.journal.transferIn(ctx, p.vault, user, amount); err != nil {
		return p.abort(ctx, op, err)
	}
	if err := op.journal.mint(ctx, p.supplyToken, supplyTokenName, onBehalfOf, amount); err != nil {
		return p.abort(ctx, op, err)
	}

	ApplyRates(op.reserve, rates)
	op.positions = append(op.positions, position)
	op.event = lendingpool.NewDepositEvent(p.clk, op.reserve.Id, user, onBehalfOf, amount)
	if err := p.commit(ctx, op); err != nil {
		return p.abort(ctx, op, err)
	}

	p.log.Info().Msgf("deposit: user %s, on behalf of %s, amount %s", user, onBehalfOf, amount.Dec())
	return nil
}

// Withdraw pays amount of the underlying from user's position to to. Any
// cumulated liquidity interest is spent first; the rest burns supply tokens.
func (p *Pool) Withdraw(ctx context.Context, user uuid.UUID, amount *uint256.Int, to uuid.UUID) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, lendingpool.ActionWithdraw)
	if err != nil {
		return err
	}

	position, balances, err := p.reconciledPosition(ctx, op, user, false)
	if err != nil {
		return p.abort(ctx, op, err)
	}
	if position == nil || amount.Gt(AvailableBalance(position, balances)) {
		return p.abort(ctx, op, lendingpool.ErrInsufficientAvailableBalance)
	}

	price, err := p.price(ctx)
	if err != nil {
		return p.abort(ctx, op, err)
	}
	engine := NewRiskEngine(op.reserve, price)
	if !engine.BalanceDecreaseAllowed(Collateral(position, balances), Debt(position, balances), amount) {
		return p.abort(ctx, op, lendingpool.ErrTransferNotAllowed)
	}
	if amount.Gt(op.cash) {
		return p.abort(ctx, op, lendingpool.ErrInsufficientPoolLiquidity)
	}

	fromInterest := minOf(amount, position.CumulatedLiquidityInterest)
	burnAmount := minOf(sub(amount, fromInterest), balances.Supply)

	rates := ComputeRates(op.reserve, op.cash, zero(), amount, op.totalDebt)

	if err := op.journal.burn(ctx, p.supplyToken, supplyTokenName, user, burnAmount); err != nil {
		return p.abort(ctx, op, err)
	}
	if err := op.journal.transferOut(ctx, p.vault, to, amount); err != nil {
		return p.abort(ctx, op, err)
	}

	position.CumulatedLiquidityInterest = sub(position.CumulatedLiquidityInterest, fromInterest)
	ApplyRates(op.reserve, rates)
	op.positions = append(op.positions, position)
	op.event = lendingpool.NewWithdrawEvent(p.clk, op.reserve.Id, user, to, amount)
	if err := p.commit(ctx, op); err != nil {
		return p.abort(ctx, op, err)
	}

	p.log.Info().Msgf("withdraw: user %s, to %s, amount %s (interest %s, burned %s)",
		user, to, amount.Dec(), fromInterest.Dec(), burnAmount.Dec())
	return nil
}

// Borrow draws amount against onBehalfOf's position, spending the allowance
// onBehalfOf delegated to user. Debt tokens go to onBehalfOf, the underlying
// to user. Borrowing against one's own position needs a self-delegation.
func (p *Pool) Borrow(ctx context.Context, user uuid.UUID, amount *uint256.Int, onBehalfOf uuid.UUID) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, lendingpool.ActionBorrow)
	if err != nil {
		return err
	}

	delegation, err := p.store.FindDelegation(ctx, op.reserve.Id, onBehalfOf, user)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return p.abort(ctx, op, errors.Wrap(err, "load delegation"))
		}
		return p.abort(ctx, op, lendingpool.ErrInsufficientAvailableBalance)
	}
	if amount.Gt(delegation.Amount) {
		return p.abort(ctx, op, lendingpool.ErrInsufficientAvailableBalance)
	}

	position, balances, err := p.reconciledPosition(ctx, op, onBehalfOf, false)
	if err != nil {
		return p.abort(ctx, op, err)
	}
	if position == nil || amount.Gt(AvailableBalance(position, balances)) {
		return p.abort(ctx, op, lendingpool.ErrInsufficientAvailableBalance)
	}

	price, err := p.price(ctx)
	if err != nil {
		return p.abort(ctx, op, err)
	}
	engine := NewRiskEngine(op.reserve, price)
	if err := engine.CheckAccountHealth(Collateral(position, balances), add(Debt(position, balances), amount)); err != nil {
		return p.abort(ctx, op, err)
	}
	if amount.Gt(op.cash) {
		return p.abort(ctx, op, lendingpool.ErrInsufficientPoolLiquidity)
	}

	rates := ComputeRates(op.reserve, op.cash, zero(), amount, add(op.totalDebt, amount))

	if err := op.journal.mint(ctx, p.debtToken, debtTokenName, onBehalfOf, amount); err != nil {
		return p.abort(ctx, op, err)
	}
	if err := op.journal.transferOut(ctx, p.vault, user, amount); err != nil {
		return p.abort(ctx, op, err)
	}

	delegation = delegation.Clone()
	delegation.Amount = sub(delegation.Amount, amount)
	delegation.UpdatedAt = op.now

	ApplyRates(op.reserve, rates)
	op.positions = append(op.positions, position)
	op.delegation = delegation
	op.event = lendingpool.NewBorrowEvent(p.clk, op.reserve.Id, user, onBehalfOf, amount)
	if err := p.commit(ctx, op); err != nil {
		return p.abort(ctx, op, err)
	}

	p.log.Info().Msgf("borrow: user %s, on behalf of %s, amount %s, allowance left %s",
		user, onBehalfOf, amount.Dec(), delegation.Amount.Dec())
	return nil
}

// Repay pays down onBehalfOf's debt with up to amount of user's underlying,
// cumulated borrow interest first. Only the outstanding debt is pulled; the
// repaid amount is returned.
func (p *Pool) Repay(ctx context.Context, user uuid.UUID, amount *uint256.Int, onBehalfOf uuid.UUID) (*uint256.Int, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	op, err := p.begin(ctx, lendingpool.ActionRepay)
	if err != nil {
		return nil, err
	}

	position, balances, err := p.reconciledPosition(ctx, op, onBehalfOf, false)
	if err != nil {
		return nil, p.abort(ctx, op, err)
	}
	if position == nil {
		return nil, p.abort(ctx, op, lendingpool.ErrNoDebtForUser)
	}
	outstanding := Debt(position, balances)
	if outstanding.IsZero() {
		return nil, p.abort(ctx, op, lendingpool.ErrNoDebtForUser)
	}

	paid := minOf(amount, outstanding)
	fromInterest := minOf(paid, position.CumulatedBorrowInterest)
	burnAmount := minOf(sub(paid, fromInterest), balances.Debt)

	rates := ComputeRates(op.reserve, op.cash, paid, zero(), sub(op.totalDebt, burnAmount))

	if err := op.journal.transferIn(ctx, p.vault, user, paid); err != nil {
		return nil, p.abort(ctx, op, err)
	}
	if err := op.journal.burn(ctx, p.debtToken, debtTokenName, onBehalfOf, burnAmount); err != nil {
		return nil, p.abort(ctx, op, err)
	}

	position.CumulatedBorrowInterest = sub(position.CumulatedBorrowInterest, fromInterest)
	ApplyRates(op.reserve, rates)
	op.positions = append(op.positions, position)
	op.event = lendingpool.NewRepayEvent(p.clk, op.reserve.Id, onBehalfOf, user, paid)
	if err := p.commit(ctx, op); err != nil {
		return nil, p.abort(ctx, op, err)
	}

	p.log.Info().Msgf("repay: repayer %s, receiver %s, amount %s (interest %s, burned %s)",
		user, onBehalfOf, paid.Dec(), fromInterest.Dec(), burnAmount.Dec())
	return paid, nil
}

// Delegate sets the amount delegatee may borrow on behalf of delegator,
// replacing any previous allowance. Zero revokes it.
func (p *Pool) Delegate(ctx context.Context, delegator, delegatee uuid.UUID, amount *uint256.Int) error {
	if amount == nil || amount.Gt(lendingpool.MAX_AMOUNT) {
		return lendingpool.ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delegation := lendingpool.NewDelegation(p.clk, p.reserveId, delegator, delegatee, amount)
	event := lendingpool.NewDelegateEvent(p.clk, p.reserveId, delegator, delegatee, amount)
	err := p.store.Atomic(ctx, func(tx lendingpool.Store) error {
		if err := tx.UpsertDelegation(ctx, delegation); err != nil {
			return errors.Wrap(err, "upsert delegation")
		}
		return tx.CreateEvent(ctx, event)
	})
	if err != nil {
		p.log.Warn().Err(err).Msg("delegate aborted")
		return errors.Wrap(err, "commit delegate")
	}

	p.log.Info().Msgf("delegate: delegator %s, delegatee %s, amount %s", delegator, delegatee, amount.Dec())
	return nil
}
