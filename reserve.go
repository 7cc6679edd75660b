package lendingpool

import (
	"context"

	"github.com/DomeLiquid/lendingpool/utils"
	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
)

type (
	ReserveStore interface {
		CreateReserve(ctx context.Context, reserve *Reserve) error
		UpdateReserve(ctx context.Context, reserve *Reserve) error
		GetReserveById(ctx context.Context, reserveId uuid.UUID) (*Reserve, error)
	}

	Reserve struct {
		Id      uuid.UUID `json:"id"`
		Name    string    `json:"name"`
		AssetId string    `json:"assetId"`

		LiquidityRate   *uint256.Int `json:"liquidityRate"`
		BorrowRate      *uint256.Int `json:"borrowRate"`
		UtilizationRate *uint256.Int `json:"utilizationRate"`

		LiquidityIndex *uint256.Int `json:"liquidityIndex"`
		BorrowIndex    *uint256.Int `json:"borrowIndex"`

		// AccruedToTreasury is the reserve-factor share of borrow interest.
		AccruedToTreasury *uint256.Int `json:"accruedToTreasury"`

		ReserveConfig      `json:"reserveConfig"`
		InterestRateConfig `json:"interestRateConfig"`

		LastUpdatedTimestamp int64 `json:"lastUpdatedTimestamp"`
		CreatedAt            int64 `json:"createdAt"`
	}

	// ReserveConfig holds the risk parameters, all scaled by ONE.
	ReserveConfig struct {
		Ltv                  *uint256.Int `json:"ltv"`
		LiquidationThreshold *uint256.Int `json:"liquidationThreshold"`
		LiquidationBonus     *uint256.Int `json:"liquidationBonus"`
		Decimals             uint8        `json:"decimals"`
		ReserveFactor        *uint256.Int `json:"reserveFactor"`
	}

	InterestRateConfig struct {
		OptimalUtilizationRate *uint256.Int `json:"optimalUtilizationRate"`
		ExcessUtilizationRate  *uint256.Int `json:"excessUtilizationRate"`
		BaseBorrowRate         *uint256.Int `json:"baseBorrowRate"`
		RateSlope1             *uint256.Int `json:"rateSlope1"`
		RateSlope2             *uint256.Int `json:"rateSlope2"`
	}
)

// NewReserveId keys a reserve on its name and asset id, in that order.
func NewReserveId(name, assetId string) uuid.UUID {
	return uuid.Must(uuid.FromString(utils.GenUuidFromFields(name, assetId)))
}

func NewReserve(clk clock.Clock, name, assetId string, reserveConfig ReserveConfig, irConfig InterestRateConfig) *Reserve {
	now := clk.Now().Unix()
	return &Reserve{
		Id:                   NewReserveId(name, assetId),
		Name:                 name,
		AssetId:              assetId,
		LiquidityRate:        Zero(),
		BorrowRate:           CloneAmount(irConfig.BaseBorrowRate),
		UtilizationRate:      Zero(),
		LiquidityIndex:       CloneAmount(ONE),
		BorrowIndex:          CloneAmount(ONE),
		AccruedToTreasury:    Zero(),
		ReserveConfig:        reserveConfig.Clone(),
		InterestRateConfig:   irConfig.Clone(),
		LastUpdatedTimestamp: now,
		CreatedAt:            now,
	}
}

func (r *Reserve) Clone() *Reserve {
	return &Reserve{
		Id:                   r.Id,
		Name:                 r.Name,
		AssetId:              r.AssetId,
		LiquidityRate:        CloneAmount(r.LiquidityRate),
		BorrowRate:           CloneAmount(r.BorrowRate),
		UtilizationRate:      CloneAmount(r.UtilizationRate),
		LiquidityIndex:       CloneAmount(r.LiquidityIndex),
		BorrowIndex:          CloneAmount(r.BorrowIndex),
		AccruedToTreasury:    CloneAmount(r.AccruedToTreasury),
		ReserveConfig:        r.ReserveConfig.Clone(),
		InterestRateConfig:   r.InterestRateConfig.Clone(),
		LastUpdatedTimestamp: r.LastUpdatedTimestamp,
		CreatedAt:            r.CreatedAt,
	}
}

// Configure overrides the non-nil fields of both configs and validates the result.
func (r *Reserve) Configure(reserveConfig *ReserveConfig, irConfig *InterestRateConfig) error {
	next := r.ReserveConfig.Clone()
	if reserveConfig != nil {
		next.Update(reserveConfig)
	}
	nextIr := r.InterestRateConfig.Clone()
	if irConfig != nil {
		nextIr.Update(irConfig)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	if err := nextIr.Validate(); err != nil {
		return err
	}
	r.ReserveConfig = next
	r.InterestRateConfig = nextIr
	return nil
}

func (c ReserveConfig) Clone() ReserveConfig {
	return ReserveConfig{
		Ltv:                  CloneAmount(c.Ltv),
		LiquidationThreshold: CloneAmount(c.LiquidationThreshold),
		LiquidationBonus:     CloneAmount(c.LiquidationBonus),
		Decimals:             c.Decimals,
		ReserveFactor:        CloneAmount(c.ReserveFactor),
	}
}

func (c *ReserveConfig) Validate() error {
	if c.Ltv == nil || c.LiquidationThreshold == nil || c.LiquidationBonus == nil || c.ReserveFactor == nil {
		return ErrInvalidConfig
	}
	if c.Ltv.IsZero() || c.Ltv.Gt(c.LiquidationThreshold) || c.LiquidationThreshold.Gt(ONE) {
		return ErrInvalidConfig
	}
	if c.LiquidationBonus.Lt(ONE) {
		return ErrInvalidConfig
	}
	// a liquidation must never seize more than the collateral backing the repaid debt
	product := new(uint256.Int).Mul(c.LiquidationThreshold, c.LiquidationBonus)
	if product.Gt(new(uint256.Int).Mul(ONE, ONE)) {
		return ErrInvalidConfig
	}
	if !c.ReserveFactor.Lt(ONE) {
		return ErrInvalidConfig
	}
	return nil
}

func (c *ReserveConfig) Update(config *ReserveConfig) {
	if config.Ltv != nil {
		c.Ltv = CloneAmount(config.Ltv)
	}
	if config.LiquidationThreshold != nil {
		c.LiquidationThreshold = CloneAmount(config.LiquidationThreshold)
	}
	if config.LiquidationBonus != nil {
		c.LiquidationBonus = CloneAmount(config.LiquidationBonus)
	}
	if config.Decimals != 0 {
		c.Decimals = config.Decimals
	}
	if config.ReserveFactor != nil {
		c.ReserveFactor = CloneAmount(config.ReserveFactor)
	}
}

func (i InterestRateConfig) Clone() InterestRateConfig {
	return InterestRateConfig{
		OptimalUtilizationRate: CloneAmount(i.OptimalUtilizationRate),
		ExcessUtilizationRate:  CloneAmount(i.ExcessUtilizationRate),
		BaseBorrowRate:         CloneAmount(i.BaseBorrowRate),
		RateSlope1:             CloneAmount(i.RateSlope1),
		RateSlope2:             CloneAmount(i.RateSlope2),
	}
}

func (i *InterestRateConfig) Validate() error {
	optimal := i.OptimalUtilizationRate
	if optimal == nil || i.ExcessUtilizationRate == nil || i.BaseBorrowRate == nil || i.RateSlope1 == nil || i.RateSlope2 == nil {
		return ErrInvalidConfig
	}
	if optimal.IsZero() || !optimal.Lt(ONE) {
		return ErrInvalidConfig
	}
	if !new(uint256.Int).Add(optimal, i.ExcessUtilizationRate).Eq(ONE) {
		return ErrInvalidConfig
	}
	maxRate := new(uint256.Int).Add(i.BaseBorrowRate, i.RateSlope1)
	maxRate.Add(maxRate, i.RateSlope2)
	if maxRate.Gt(MAX_RATE) {
		return ErrInvalidConfig
	}
	return nil
}

// InterestRateCurve is the kinked borrow rate at utilization u (ONE-scaled).
func (i *InterestRateConfig) InterestRateCurve(u *uint256.Int) *uint256.Int {
	rate := CloneAmount(i.BaseBorrowRate)
	if u.Gt(i.OptimalUtilizationRate) {
		// base + slope1 + slope2 * (u - optimal) / excess
		rate.Add(rate, i.RateSlope1)
		if i.ExcessUtilizationRate.IsZero() {
			return rate
		}
		excessRatio, _ := new(uint256.Int).MulDivOverflow(new(uint256.Int).Sub(u, i.OptimalUtilizationRate), ONE, i.ExcessUtilizationRate)
		term, _ := new(uint256.Int).MulDivOverflow(i.RateSlope2, excessRatio, ONE)
		return rate.Add(rate, term)
	}
	// base + slope1 * u / optimal
	if i.OptimalUtilizationRate.IsZero() {
		return rate
	}
	term, _ := new(uint256.Int).MulDivOverflow(i.RateSlope1, u, i.OptimalUtilizationRate)
	return rate.Add(rate, term)
}

// Update overrides the non-nil fields. ExcessUtilizationRate always follows
// the optimal rate.
func (i *InterestRateConfig) Update(irConfig *InterestRateConfig) {
	if irConfig.OptimalUtilizationRate != nil {
		i.OptimalUtilizationRate = CloneAmount(irConfig.OptimalUtilizationRate)
		if irConfig.OptimalUtilizationRate.Lt(ONE) {
			i.ExcessUtilizationRate = new(uint256.Int).Sub(ONE, irConfig.OptimalUtilizationRate)
		}
	}
	if irConfig.BaseBorrowRate != nil {
		i.BaseBorrowRate = CloneAmount(irConfig.BaseBorrowRate)
	}
	if irConfig.RateSlope1 != nil {
		i.RateSlope1 = CloneAmount(irConfig.RateSlope1)
	}
	if irConfig.RateSlope2 != nil {
		i.RateSlope2 = CloneAmount(irConfig.RateSlope2)
	}
}

// NewInterestRateConfig derives the excess utilization rate from the optimal one.
func NewInterestRateConfig(optimal, base, slope1, slope2 *uint256.Int) InterestRateConfig {
	excess := Zero()
	if optimal.Lt(ONE) {
		excess.Sub(ONE, optimal)
	}
	return InterestRateConfig{
		OptimalUtilizationRate: CloneAmount(optimal),
		ExcessUtilizationRate:  excess,
		BaseBorrowRate:         CloneAmount(base),
		RateSlope1:             CloneAmount(slope1),
		RateSlope2:             CloneAmount(slope2),
	}
}
