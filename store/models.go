package store

import (
	"github.com/DomeLiquid/lendingpool"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Amounts are stored as base-10 strings so any 256-bit value survives every
// SQL dialect.

type Reserve struct {
	Id      string `gorm:"primaryKey;size:36"`
	Name    string `gorm:"size:64"`
	AssetId string `gorm:"size:64;index"`

	LiquidityRate     string `gorm:"size:80"`
	BorrowRate        string `gorm:"size:80"`
	UtilizationRate   string `gorm:"size:80"`
	LiquidityIndex    string `gorm:"size:80"`
	BorrowIndex       string `gorm:"size:80"`
	AccruedToTreasury string `gorm:"size:80"`

	Ltv                  string `gorm:"size:80"`
	LiquidationThreshold string `gorm:"size:80"`
	LiquidationBonus     string `gorm:"size:80"`
	Decimals             uint8
	ReserveFactor        string `gorm:"size:80"`

	OptimalUtilizationRate string `gorm:"size:80"`
	ExcessUtilizationRate  string `gorm:"size:80"`
	BaseBorrowRate         string `gorm:"size:80"`
	RateSlope1             string `gorm:"size:80"`
	RateSlope2             string `gorm:"size:80"`

	LastUpdatedTimestamp int64
	CreatedAt            int64 `gorm:"autoCreateTime:false"`
}

type Position struct {
	ReserveId string `gorm:"primaryKey;size:36"`
	AccountId string `gorm:"primaryKey;size:36"`

	CumulatedLiquidityInterest string `gorm:"size:80"`
	CumulatedBorrowInterest    string `gorm:"size:80"`
	LiquidityIndex             string `gorm:"size:80"`
	BorrowIndex                string `gorm:"size:80"`

	LastUpdateTimestamp int64
	CreatedAt           int64 `gorm:"autoCreateTime:false"`
}

type Delegation struct {
	ReserveId string `gorm:"primaryKey;size:36"`
	Delegator string `gorm:"primaryKey;size:36"`
	Delegatee string `gorm:"primaryKey;size:36;index"`
	Amount    string `gorm:"size:80"`
	UpdatedAt int64  `gorm:"autoUpdateTime:false"`
}

type Event struct {
	Id           string                  `gorm:"primaryKey;size:36"`
	ReserveId    string                  `gorm:"size:36;index"`
	Action       uint8                   `gorm:"index"`
	Actor        string                  `gorm:"size:36;index"`
	Counterparty string                  `gorm:"size:36;index"`
	Amount       string                  `gorm:"size:80"`
	Detail       lendingpool.EventDetail `gorm:"type:text"`
	CreatedAt    int64                   `gorm:"index;autoCreateTime:false"`
}

func formatAmount(x *uint256.Int) string {
	return lendingpool.CloneAmount(x).Dec()
}

func parseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return lendingpool.Zero(), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse amount %q", s)
	}
	return v, nil
}

// amountParser collects the first parse error so conversions read linearly.
type amountParser struct {
	err error
}

func (p *amountParser) amount(s string) *uint256.Int {
	v, err := parseAmount(s)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return lendingpool.Zero()
	}
	return v
}

func (p *amountParser) uuid(s string) uuid.UUID {
	v, err := uuid.FromString(s)
	if err != nil {
		if p.err == nil {
			p.err = errors.Wrapf(err, "parse uuid %q", s)
		}
		return uuid.Nil
	}
	return v
}

func newReserveModel(r *lendingpool.Reserve) *Reserve {
	return &Reserve{
		Id:                     r.Id.String(),
		Name:                   r.Name,
		AssetId:                r.AssetId,
		LiquidityRate:          formatAmount(r.LiquidityRate),
		BorrowRate:             formatAmount(r.BorrowRate),
		UtilizationRate:        formatAmount(r.UtilizationRate),
		LiquidityIndex:         formatAmount(r.LiquidityIndex),
		BorrowIndex:            formatAmount(r.BorrowIndex),
		AccruedToTreasury:      formatAmount(r.AccruedToTreasury),
		Ltv:                    formatAmount(r.Ltv),
		LiquidationThreshold:   formatAmount(r.LiquidationThreshold),
		LiquidationBonus:       formatAmount(r.LiquidationBonus),
		Decimals:               r.Decimals,
		ReserveFactor:          formatAmount(r.ReserveFactor),
		OptimalUtilizationRate: formatAmount(r.OptimalUtilizationRate),
		ExcessUtilizationRate:  formatAmount(r.ExcessUtilizationRate),
		BaseBorrowRate:         formatAmount(r.BaseBorrowRate),
		RateSlope1:             formatAmount(r.RateSlope1),
		RateSlope2:             formatAmount(r.RateSlope2),
		LastUpdatedTimestamp:   r.LastUpdatedTimestamp,
		CreatedAt:              r.CreatedAt,
	}
}

func (m *Reserve) toDomain() (*lendingpool.Reserve, error) {
	p := &amountParser{}
	r := &lendingpool.Reserve{
		Id:                p.uuid(m.Id),
		Name:              m.Name,
		AssetId:           m.AssetId,
		LiquidityRate:     p.amount(m.LiquidityRate),
		BorrowRate:        p.amount(m.BorrowRate),
		UtilizationRate:   p.amount(m.UtilizationRate),
		LiquidityIndex:    p.amount(m.LiquidityIndex),
		BorrowIndex:       p.amount(m.BorrowIndex),
		AccruedToTreasury: p.amount(m.AccruedToTreasury),
		ReserveConfig: lendingpool.ReserveConfig{
			Ltv:                  p.amount(m.Ltv),
			LiquidationThreshold: p.amount(m.LiquidationThreshold),
			LiquidationBonus:     p.amount(m.LiquidationBonus),
			Decimals:             m.Decimals,
			ReserveFactor:        p.amount(m.ReserveFactor),
		},
		InterestRateConfig: lendingpool.InterestRateConfig{
			OptimalUtilizationRate: p.amount(m.OptimalUtilizationRate),
			ExcessUtilizationRate:  p.amount(m.ExcessUtilizationRate),
			BaseBorrowRate:         p.amount(m.BaseBorrowRate),
			RateSlope1:             p.amount(m.RateSlope1),
			RateSlope2:             p.amount(m.RateSlope2),
		},
		LastUpdatedTimestamp: m.LastUpdatedTimestamp,
		CreatedAt:            m.CreatedAt,
	}
	if p.err != nil {
		return nil, p.err
	}
	return r, nil
}

func newPositionModel(pos *lendingpool.Position) *Position {
	return &Position{
		ReserveId:                  pos.ReserveId.String(),
		AccountId:                  pos.AccountId.String(),
		CumulatedLiquidityInterest: formatAmount(pos.CumulatedLiquidityInterest),
		CumulatedBorrowInterest:    formatAmount(pos.CumulatedBorrowInterest),
		LiquidityIndex:             formatAmount(pos.LiquidityIndex),
		BorrowIndex:                formatAmount(pos.BorrowIndex),
		LastUpdateTimestamp:        pos.LastUpdateTimestamp,
		CreatedAt:                  pos.CreatedAt,
	}
}

func (m *Position) toDomain() (*lendingpool.Position, error) {
	p := &amountParser{}
	pos := &lendingpool.Position{
		AccountId:                  p.uuid(m.AccountId),
		ReserveId:                  p.uuid(m.ReserveId),
		CumulatedLiquidityInterest: p.amount(m.CumulatedLiquidityInterest),
		CumulatedBorrowInterest:    p.amount(m.CumulatedBorrowInterest),
		LiquidityIndex:             p.amount(m.LiquidityIndex),
		BorrowIndex:                p.amount(m.BorrowIndex),
		LastUpdateTimestamp:        m.LastUpdateTimestamp,
		CreatedAt:                  m.CreatedAt,
	}
	if p.err != nil {
		return nil, p.err
	}
	return pos, nil
}

func newDelegationModel(d *lendingpool.Delegation) *Delegation {
	return &Delegation{
		ReserveId: d.ReserveId.String(),
		Delegator: d.Delegator.String(),
		Delegatee: d.Delegatee.String(),
		Amount:    formatAmount(d.Amount),
		UpdatedAt: d.UpdatedAt,
	}
}

func (m *Delegation) toDomain() (*lendingpool.Delegation, error) {
	p := &amountParser{}
	d := &lendingpool.Delegation{
		ReserveId: p.uuid(m.ReserveId),
		Delegator: p.uuid(m.Delegator),
		Delegatee: p.uuid(m.Delegatee),
		Amount:    p.amount(m.Amount),
		UpdatedAt: m.UpdatedAt,
	}
	if p.err != nil {
		return nil, p.err
	}
	return d, nil
}

func newEventModel(e *lendingpool.Event) *Event {
	return &Event{
		Id:           e.Id.String(),
		ReserveId:    e.ReserveId.String(),
		Action:       uint8(e.Action),
		Actor:        e.Actor.String(),
		Counterparty: e.Counterparty.String(),
		Amount:       formatAmount(e.Amount),
		Detail:       e.Detail,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *Event) toDomain() (*lendingpool.Event, error) {
	p := &amountParser{}
	e := &lendingpool.Event{
		Id:           p.uuid(m.Id),
		ReserveId:    p.uuid(m.ReserveId),
		Action:       lendingpool.ActionType(m.Action),
		Actor:        p.uuid(m.Actor),
		Counterparty: p.uuid(m.Counterparty),
		Amount:       p.amount(m.Amount),
		Detail:       m.Detail,
		CreatedAt:    m.CreatedAt,
	}
	if p.err != nil {
		return nil, p.err
	}
	return e, nil
}
