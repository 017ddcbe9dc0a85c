package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

// PriceProvider supplies the historical market data a run replays.
type PriceProvider interface {
	GetPriceSeries(ctx context.Context, assetIDs []string, start, end time.Time, resolution time.Duration) ([]types.PriceSample, error)
}

// YieldProvider supplies protocol APYs for apy conditions. A run without
// one treats every apy condition as unsatisfied.
type YieldProvider interface {
	APY(ctx context.Context, protocol, assetID string, at time.Time) (decimal.Decimal, bool)
}
