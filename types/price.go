package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSample is one tick of market data: a price per asset at a single
// timestamp. Samples are ordered and spaced by the request resolution.
type PriceSample struct {
	Timestamp time.Time                  `json:"timestamp"`
	Prices    map[string]decimal.Decimal `json:"prices"`
}

// Price returns the sampled price for an asset.
func (s PriceSample) Price(assetID string) (decimal.Decimal, bool) {
	p, ok := s.Prices[assetID]
	return p, ok
}
