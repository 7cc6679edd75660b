package oracle

import (
	"time"

	"github.com/DomeLiquid/lendingpool"
	"github.com/facebookgo/clock"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const MAX_ORACLE_AGE = 90 * time.Second

var ErrOracleMaxAgeTooLong = errors.New("oracle max age too long")

// Options select and parameterize a PriceOracle.
type Options struct {
	Setup       lendingpool.OracleSetup
	AssetId     string
	StaticPrice *uint256.Int
	MaxAge      time.Duration
	Reader      AssetReader
}

func Validate(opts Options) error {
	switch opts.Setup {
	case lendingpool.StaticOracle:
		if opts.StaticPrice == nil || opts.StaticPrice.IsZero() {
			return lendingpool.ErrZeroPrice
		}
	case lendingpool.MixinOracle:
		if opts.MaxAge > MAX_ORACLE_AGE {
			return ErrOracleMaxAgeTooLong
		}
		if opts.AssetId == "" {
			return errors.Wrap(lendingpool.ErrInvalidConfig, "mixin oracle needs an asset id")
		}
	default:
		return lendingpool.ErrUnknownOracleSetup
	}
	return nil
}

func New(clk clock.Clock, opts Options) (lendingpool.PriceOracle, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	switch opts.Setup {
	case lendingpool.MixinOracle:
		if opts.Reader == nil {
			return nil, errors.Wrap(lendingpool.ErrInvalidConfig, "mixin oracle needs an asset reader")
		}
		return NewMixinOracle(clk, opts.Reader, opts.AssetId, opts.MaxAge), nil
	default:
		return NewStaticOracle(opts.StaticPrice), nil
	}
}
