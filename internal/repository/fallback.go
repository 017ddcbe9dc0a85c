package repository

import (
	"context"
	"time"

	"vaultsim/internal/logger"
	"vaultsim/types"
)

// PriceSource is the provider contract the fallback chain composes.
type PriceSource interface {
	GetPriceSeries(ctx context.Context, assetIDs []string, start, end time.Time, resolution time.Duration) ([]types.PriceSample, error)
}

// FallbackProvider tries each source in order and serves the first one
// that returns data. The last link is usually the synthetic generator,
// which always answers.
type FallbackProvider struct {
	sources []PriceSource
}

func NewFallbackProvider(sources ...PriceSource) *FallbackProvider {
	return &FallbackProvider{sources: sources}
}

func (p *FallbackProvider) GetPriceSeries(ctx context.Context, assetIDs []string, start, end time.Time, resolution time.Duration) ([]types.PriceSample, error) {
	log := logger.GetForComponent("prices")

	var lastErr error
	for i, source := range p.sources {
		samples, err := source.GetPriceSeries(ctx, assetIDs, start, end, resolution)
		if err == nil && len(samples) > 0 {
			return samples, nil
		}
		lastErr = err
		if i < len(p.sources)-1 {
			log.Warn().Err(err).Int("source", i).
				Msg("price source unavailable, trying the next one")
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoPrices
}
