package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

// GetPriceSeries loads all persisted prices for the given assets between
// start and end, grouped into per-timestamp samples sorted ascending. A
// sample carries only the assets that actually have a row at that
// timestamp; callers carry forward the last known price across gaps.
func (db *Database) GetPriceSeries(ctx context.Context, assetIDs []string, start, end time.Time, resolution time.Duration) ([]types.PriceSample, error) {
	args := ListPricesParams{
		Network:    db.network,
		AssetIDs:   assetIDs,
		StartTime:  &start,
		EndTime:    &end,
		Resolution: resolution,
	}
	rows, err := db.prices.ListPrices(ctx, args)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoPrices
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoPrices
	}
	return groupSamples(rows), nil
}

func groupSamples(rows []PriceRow) []types.PriceSample {
	byTime := make(map[int64]*types.PriceSample)
	for _, row := range rows {
		key := row.Timestamp.UnixMilli()
		sample, ok := byTime[key]
		if !ok {
			sample = &types.PriceSample{
				Timestamp: row.Timestamp,
				Prices:    make(map[string]decimal.Decimal, 4),
			}
			byTime[key] = sample
		}
		sample.Prices[row.AssetID] = row.Price
	}

	samples := make([]types.PriceSample, 0, len(byTime))
	for _, sample := range byTime {
		samples = append(samples, *sample)
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
	return samples
}
