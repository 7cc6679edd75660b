package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/DomeLiquid/lendingpool"
	"github.com/DomeLiquid/lendingpool/utils"
	"github.com/facebookgo/clock"
	"github.com/fox-one/mixin-sdk-go/v2"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// AssetReader reads network asset info; *mixin.Client satisfies it.
type AssetReader interface {
	ReadNetworkAsset(ctx context.Context, assetID string) (*mixin.Asset, error)
}

// MixinOracle prices the underlying by the USD price Mixin reports for it.
// Update fetches; Get serves the cached price until it is older than maxAge.
type MixinOracle struct {
	mu sync.RWMutex

	clk     clock.Clock
	reader  AssetReader
	assetId string
	maxAge  time.Duration

	price     *uint256.Int
	updatedAt time.Time
}

var _ lendingpool.PriceOracle = (*MixinOracle)(nil)

func NewMixinOracle(clk clock.Clock, reader AssetReader, assetId string, maxAge time.Duration) *MixinOracle {
	return &MixinOracle{
		clk:     clk,
		reader:  reader,
		assetId: assetId,
		maxAge:  maxAge,
	}
}

func (o *MixinOracle) Update(ctx context.Context) error {
	asset, err := o.reader.ReadNetworkAsset(ctx, o.assetId)
	if err != nil {
		return errors.Wrapf(err, "read mixin asset %s", o.assetId)
	}
	price, err := utils.Uint256FromDecimal(asset.PriceUSD)
	if err != nil {
		return errors.Wrapf(err, "mixin asset %s price %s", o.assetId, asset.PriceUSD)
	}
	if price.IsZero() {
		return errors.Wrapf(lendingpool.ErrZeroPrice, "mixin asset %s", o.assetId)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.price = price
	o.updatedAt = o.clk.Now()
	return nil
}

func (o *MixinOracle) Get(ctx context.Context) (*uint256.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.price == nil {
		return nil, lendingpool.ErrStalePrice
	}
	if o.maxAge > 0 && o.clk.Now().Sub(o.updatedAt) > o.maxAge {
		return nil, lendingpool.ErrStalePrice
	}
	return lendingpool.CloneAmount(o.price), nil
}
