package oracle

import (
	"context"
	"sync"

	"github.com/DomeLiquid/lendingpool"
	"github.com/holiman/uint256"
)

// StaticOracle serves a price set by its owner.
type StaticOracle struct {
	mu    sync.RWMutex
	price *uint256.Int
}

var _ lendingpool.PriceOracle = (*StaticOracle)(nil)

func NewStaticOracle(price *uint256.Int) *StaticOracle {
	return &StaticOracle{price: lendingpool.CloneAmount(price)}
}

func (o *StaticOracle) Set(price *uint256.Int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.price = lendingpool.CloneAmount(price)
}

func (o *StaticOracle) Update(ctx context.Context) error {
	return nil
}

func (o *StaticOracle) Get(ctx context.Context) (*uint256.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.price.IsZero() {
		return nil, lendingpool.ErrZeroPrice
	}
	return lendingpool.CloneAmount(o.price), nil
}
