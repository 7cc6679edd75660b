package config

import (
	"os"
	"strings"
	"time"

	"github.com/DomeLiquid/lendingpool"
	"github.com/DomeLiquid/lendingpool/oracle"
	"github.com/DomeLiquid/lendingpool/utils"
	"github.com/facebookgo/clock"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config describes one reserve. Ratios are decimal strings, "0.8" is 80%.
type Config struct {
	Reserve      ReserveConfig      `yaml:"reserve"`
	InterestRate InterestRateConfig `yaml:"interest_rate"`
	Oracle       OracleConfig       `yaml:"oracle"`
}

type ReserveConfig struct {
	Name                 string `yaml:"name"`
	AssetId              string `yaml:"asset_id"`
	Decimals             uint8  `yaml:"decimals"`
	Ltv                  string `yaml:"ltv"`
	LiquidationThreshold string `yaml:"liquidation_threshold"`
	LiquidationBonus     string `yaml:"liquidation_bonus"`
	ReserveFactor        string `yaml:"reserve_factor"`
}

type InterestRateConfig struct {
	OptimalUtilizationRate string `yaml:"optimal_utilization_rate"`
	BaseBorrowRate         string `yaml:"base_borrow_rate"`
	RateSlope1             string `yaml:"rate_slope1"`
	RateSlope2             string `yaml:"rate_slope2"`
}

type OracleConfig struct {
	Setup  string        `yaml:"setup"`
	Price  string        `yaml:"price"`
	MaxAge time.Duration `yaml:"max_age"`
}

// Load reads the YAML configuration from disk and validates the result.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() {
	r := &cfg.Reserve
	r.Name = strings.TrimSpace(r.Name)
	r.AssetId = strings.TrimSpace(r.AssetId)
	if r.Name == "" {
		r.Name = r.AssetId
	}
	r.LiquidationBonus = orDefault(r.LiquidationBonus, "1")
	r.ReserveFactor = orDefault(r.ReserveFactor, "0")

	ir := &cfg.InterestRate
	ir.BaseBorrowRate = orDefault(ir.BaseBorrowRate, "0")
	ir.RateSlope1 = orDefault(ir.RateSlope1, "0")
	ir.RateSlope2 = orDefault(ir.RateSlope2, "0")

	cfg.Oracle.Setup = strings.ToLower(strings.TrimSpace(cfg.Oracle.Setup))
}

func orDefault(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func (cfg *Config) validate() error {
	if cfg.Reserve.AssetId == "" {
		return errors.Wrap(lendingpool.ErrInvalidConfig, "reserve: asset_id required")
	}

	reserveConfig, err := cfg.ReserveConfig()
	if err != nil {
		return errors.Wrap(err, "reserve")
	}
	if err := reserveConfig.Validate(); err != nil {
		return errors.Wrap(err, "reserve")
	}

	irConfig, err := cfg.InterestRateConfig()
	if err != nil {
		return errors.Wrap(err, "interest_rate")
	}
	if err := irConfig.Validate(); err != nil {
		return errors.Wrap(err, "interest_rate")
	}

	opts, err := cfg.OracleOptions()
	if err != nil {
		return errors.Wrap(err, "oracle")
	}
	if err := oracle.Validate(opts); err != nil {
		return errors.Wrap(err, "oracle")
	}
	return nil
}

// ReserveConfig converts the risk parameters to fixed-point.
func (cfg *Config) ReserveConfig() (lendingpool.ReserveConfig, error) {
	p := &ratioParser{}
	c := lendingpool.ReserveConfig{
		Ltv:                  p.parse("ltv", cfg.Reserve.Ltv),
		LiquidationThreshold: p.parse("liquidation_threshold", cfg.Reserve.LiquidationThreshold),
		LiquidationBonus:     p.parse("liquidation_bonus", cfg.Reserve.LiquidationBonus),
		Decimals:             cfg.Reserve.Decimals,
		ReserveFactor:        p.parse("reserve_factor", cfg.Reserve.ReserveFactor),
	}
	return c, p.err
}

// InterestRateConfig converts the rate curve to fixed-point.
func (cfg *Config) InterestRateConfig() (lendingpool.InterestRateConfig, error) {
	p := &ratioParser{}
	optimal := p.parse("optimal_utilization_rate", cfg.InterestRate.OptimalUtilizationRate)
	base := p.parse("base_borrow_rate", cfg.InterestRate.BaseBorrowRate)
	slope1 := p.parse("rate_slope1", cfg.InterestRate.RateSlope1)
	slope2 := p.parse("rate_slope2", cfg.InterestRate.RateSlope2)
	if p.err != nil {
		return lendingpool.InterestRateConfig{}, p.err
	}
	return lendingpool.NewInterestRateConfig(optimal, base, slope1, slope2), nil
}

// OracleOptions selects the price oracle. The asset reader of a mixin oracle
// is left for the caller to set.
func (cfg *Config) OracleOptions() (oracle.Options, error) {
	setup, err := lendingpool.ParseOracleSetup(cfg.Oracle.Setup)
	if err != nil {
		return oracle.Options{}, err
	}
	opts := oracle.Options{
		Setup:   setup,
		AssetId: cfg.Reserve.AssetId,
		MaxAge:  cfg.Oracle.MaxAge,
	}
	if setup == lendingpool.StaticOracle {
		p := &ratioParser{}
		opts.StaticPrice = p.parse("price", orDefault(cfg.Oracle.Price, "0"))
		if p.err != nil {
			return oracle.Options{}, p.err
		}
	}
	return opts, nil
}

// NewReserve builds a fresh reserve from a validated config. When asset is
// given its decimals replace the configured ones, and it names the reserve
// unless the config sets a name.
func (cfg *Config) NewReserve(clk clock.Clock, asset *lendingpool.Asset) (*lendingpool.Reserve, error) {
	reserveConfig, err := cfg.ReserveConfig()
	if err != nil {
		return nil, err
	}
	irConfig, err := cfg.InterestRateConfig()
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return lendingpool.NewReserve(clk, cfg.Reserve.Name, cfg.Reserve.AssetId, reserveConfig, irConfig), nil
	}

	if asset.AssetID != cfg.Reserve.AssetId {
		return nil, errors.Wrapf(lendingpool.ErrInvalidConfig, "asset %s does not match reserve asset %s", asset.AssetID, cfg.Reserve.AssetId)
	}
	if cfg.Reserve.Name == cfg.Reserve.AssetId {
		return lendingpool.NewReserveForAsset(clk, asset, reserveConfig, irConfig), nil
	}
	reserveConfig.Decimals = asset.Decimals()
	return lendingpool.NewReserve(clk, cfg.Reserve.Name, cfg.Reserve.AssetId, reserveConfig, irConfig), nil
}

type ratioParser struct {
	err error
}

func (p *ratioParser) parse(field, s string) *uint256.Int {
	if p.err != nil {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		p.err = errors.Wrapf(lendingpool.ErrInvalidConfig, "%s: %q is not a decimal", field, s)
		return nil
	}
	v, err := utils.Uint256FromDecimal(d)
	if err != nil {
		p.err = errors.Wrapf(lendingpool.ErrInvalidConfig, "%s: %v", field, err)
		return nil
	}
	return v
}
