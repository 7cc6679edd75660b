package lendingpool

import (
	"github.com/facebookgo/clock"
	"github.com/fox-one/mixin-sdk-go/v2"
	"github.com/shopspring/decimal"
)

// Asset describes the reserve's underlying asset.
type Asset struct {
	AssetID   string          `json:"assetId,omitempty"`
	ChainID   string          `json:"chainId,omitempty"`
	Symbol    string          `json:"symbol,omitempty"`
	Name      string          `json:"name,omitempty"`
	IconURL   string          `json:"iconUrl,omitempty"`
	Precision int32           `json:"precision,omitempty"`
	Dust      decimal.Decimal `json:"dust,omitempty"`
}

func NewAssetFromMixin(asset *mixin.SafeAsset) *Asset {
	return &Asset{
		AssetID:   asset.AssetID,
		ChainID:   asset.ChainID,
		Symbol:    asset.Symbol,
		Name:      asset.Name,
		IconURL:   asset.IconURL,
		Precision: asset.Precision,
		Dust:      asset.Dust,
	}
}

// Decimals clamps the precision into the reserve's decimals field.
func (a *Asset) Decimals() uint8 {
	switch {
	case a.Precision <= 0:
		return 0
	case a.Precision > 36:
		return 36
	default:
		return uint8(a.Precision)
	}
}

// ReserveName is the reserve name used when none is configured.
func (a *Asset) ReserveName() string {
	if a.Symbol != "" {
		return a.Symbol
	}
	return a.AssetID
}

// NewReserveForAsset names the reserve after the asset and takes its decimals.
func NewReserveForAsset(clk clock.Clock, asset *Asset, reserveConfig ReserveConfig, irConfig InterestRateConfig) *Reserve {
	reserveConfig = reserveConfig.Clone()
	reserveConfig.Decimals = asset.Decimals()
	return NewReserve(clk, asset.ReserveName(), asset.AssetID, reserveConfig, irConfig)
}
