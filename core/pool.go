package core

import (
	"context"
	"sync"

	"github.com/DomeLiquid/lendingpool"
	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	supplyTokenName = "supply token"
	debtTokenName   = "debt token"
)

// Collaborators are the external ledgers, vault and oracle a pool drives.
type Collaborators struct {
	SupplyToken lendingpool.AssetLedger
	DebtToken   lendingpool.AssetLedger
	Vault       lendingpool.Vault
	Oracle      lendingpool.PriceOracle
}

// Pool runs the operations of a single reserve. mu is held across the
// accrue, validate, mutate and rerate steps of every operation, giving all
// operations on the reserve a total order.
type Pool struct {
	mu sync.Mutex

	clk       clock.Clock
	log       lendingpool.Log
	store     lendingpool.Store
	reserveId uuid.UUID

	supplyToken lendingpool.AssetLedger
	debtToken   lendingpool.AssetLedger
	vault       lendingpool.Vault
	oracle      lendingpool.PriceOracle
}

// NewPool binds a pool to reserve, creating it in store when it does not exist
// yet. An existing reserve keeps its stored state.
func NewPool(ctx context.Context, clk clock.Clock, log lendingpool.Log, store lendingpool.Store, reserve *lendingpool.Reserve, c Collaborators) (*Pool, error) {
	if c.SupplyToken == nil || c.DebtToken == nil || c.Vault == nil || c.Oracle == nil {
		return nil, errors.Wrap(lendingpool.ErrInvalidConfig, "missing collaborator")
	}
	if err := reserve.ReserveConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "reserve config")
	}
	if err := reserve.InterestRateConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "interest rate config")
	}

	_, err := store.GetReserveById(ctx, reserve.Id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(err, "load reserve")
		}
		if err := store.CreateReserve(ctx, reserve); err != nil {
			return nil, errors.Wrap(err, "create reserve")
		}
		log.Info().Msgf("reserve %s (%s) created", reserve.Name, reserve.Id)
	}

	return &Pool{
		clk:         clk,
		log:         log,
		store:       store,
		reserveId:   reserve.Id,
		supplyToken: c.SupplyToken,
		debtToken:   c.DebtToken,
		vault:       c.Vault,
		oracle:      c.Oracle,
	}, nil
}

func (p *Pool) ReserveId() uuid.UUID {
	return p.reserveId
}

// operation is the working set of one pool call, written back by commit.
type operation struct {
	action    lendingpool.ActionType
	now       int64
	reserve   *lendingpool.Reserve
	totalDebt *uint256.Int
	cash      *uint256.Int
	journal   *journal

	positions  []*lendingpool.Position
	delegation *lendingpool.Delegation
	event      *lendingpool.Event
}

// begin loads the reserve and accrues it to now against the pre-operation
// debt total.
func (p *Pool) begin(ctx context.Context, action lendingpool.ActionType) (*operation, error) {
	reserve, err := p.store.GetReserveById(ctx, p.reserveId)
	if err != nil {
		return nil, errors.Wrap(err, "load reserve")
	}
	totalDebt, err := p.debtToken.TotalSupply(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "debt token total supply")
	}
	cash, err := p.vault.Balance(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "vault balance")
	}

	now := p.clk.Now().Unix()
	AccrueReserve(p.log, reserve, totalDebt, now)

	return &operation{
		action:    action,
		now:       now,
		reserve:   reserve,
		totalDebt: totalDebt,
		cash:      cash,
		journal:   newJournal(p.log),
	}, nil
}

func (p *Pool) balances(ctx context.Context, account uuid.UUID) (Balances, error) {
	supply, err := p.supplyToken.BalanceOf(ctx, account)
	if err != nil {
		return Balances{}, errors.Wrap(err, "supply token balance")
	}
	debt, err := p.debtToken.BalanceOf(ctx, account)
	if err != nil {
		return Balances{}, errors.Wrap(err, "debt token balance")
	}
	return Balances{Supply: supply, Debt: debt}, nil
}

// reconciledPosition loads account's position and folds interest up to
// op.now. A missing position is created when create is set, otherwise nil
// is returned.
func (p *Pool) reconciledPosition(ctx context.Context, op *operation, account uuid.UUID, create bool) (*lendingpool.Position, Balances, error) {
	position, err := p.store.FindPosition(ctx, op.reserve.Id, account)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Balances{}, errors.Wrap(err, "load position")
		}
		if !create {
			return nil, Balances{}, nil
		}
		position = lendingpool.NewPosition(p.clk, account, op.reserve)
	}

	balances, err := p.balances(ctx, account)
	if err != nil {
		return nil, Balances{}, err
	}
	ReconcilePosition(op.reserve, position, balances, op.now)
	return position, balances, nil
}

// price refreshes the oracle and reads the current price.
func (p *Pool) price(ctx context.Context) (*uint256.Int, error) {
	if err := p.oracle.Update(ctx); err != nil {
		return nil, errors.Wrap(err, "oracle update")
	}
	price, err := p.oracle.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "oracle get")
	}
	if price.IsZero() {
		return nil, lendingpool.ErrZeroPrice
	}
	return price, nil
}

func (p *Pool) commit(ctx context.Context, op *operation) error {
	err := p.store.Atomic(ctx, func(tx lendingpool.Store) error {
		if err := tx.UpdateReserve(ctx, op.reserve); err != nil {
			return errors.Wrap(err, "update reserve")
		}
		for _, position := range op.positions {
			if err := tx.UpsertPosition(ctx, position); err != nil {
				return errors.Wrap(err, "upsert position")
			}
		}
		if op.delegation != nil {
			if err := tx.UpsertDelegation(ctx, op.delegation); err != nil {
				return errors.Wrap(err, "upsert delegation")
			}
		}
		if op.event != nil {
			if err := tx.CreateEvent(ctx, op.event); err != nil {
				return errors.Wrap(err, "create event")
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "commit %s", op.action)
	}
	return nil
}

// abort reverts the operation's ledger mutations and hands err back.
func (p *Pool) abort(ctx context.Context, op *operation, err error) error {
	op.journal.rollback(ctx)
	p.log.Warn().Err(err).Msgf("%s aborted", op.action)
	return err
}
