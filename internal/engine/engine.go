package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"vaultsim/internal/cache"
	"vaultsim/internal/logger"
	"vaultsim/types"
)

// Engine runs backtests against a price source, consulting the result
// cache when one is configured.
type Engine struct {
	prices       PriceProvider
	yields       YieldProvider
	store        cache.Store
	log          zerolog.Logger
	now          func() time.Time
	riskFreeRate decimal.Decimal
	showProgress bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithYieldProvider enables apy conditions.
func WithYieldProvider(yields YieldProvider) Option {
	return func(e *Engine) { e.yields = yields }
}

// WithCache enables the content-addressed result cache.
func WithCache(store cache.Store) Option {
	return func(e *Engine) { e.store = store }
}

// WithClock overrides the wall clock used for request validation and
// cache timestamps. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithProgress renders a terminal progress bar during the run loop.
func WithProgress() Option {
	return func(e *Engine) { e.showProgress = true }
}

// WithRiskFreeRate sets the annual risk-free rate (0-100 scale) used by
// the Sharpe ratio. Defaults to zero.
func WithRiskFreeRate(rate decimal.Decimal) Option {
	return func(e *Engine) { e.riskFreeRate = rate }
}

func NewEngine(prices PriceProvider, opts ...Option) *Engine {
	e := &Engine{
		prices: prices,
		log:    logger.GetForComponent("engine"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run validates the request, replays the window and computes metrics.
// Cache failures are logged and never fail the run.
func (e *Engine) Run(ctx context.Context, req types.BacktestRequest) (*types.BacktestResponse, error) {
	if err := validateRequest(req, e.now()); err != nil {
		return nil, err
	}

	if req.VaultConfig.Normalize() {
		e.log.Warn().Str("vault", req.VaultConfig.Name).
			Msg("asset weights did not sum to 100, normalized")
	}

	key := e.cacheKey(req)
	if cached := e.cacheGet(ctx, key); cached != nil {
		return cached, nil
	}

	response, err := e.simulate(ctx, req)
	if err != nil {
		return nil, err
	}

	e.cachePut(ctx, key, req, response)
	return response, nil
}

func (e *Engine) simulate(ctx context.Context, req types.BacktestRequest) (*types.BacktestResponse, error) {
	assetIDs := make([]string, 0, len(req.VaultConfig.Assets))
	for _, asset := range req.VaultConfig.Assets {
		assetIDs = append(assetIDs, asset.AssetID)
	}

	samples, err := e.prices.GetPriceSeries(ctx, assetIDs, req.StartTime, req.EndTime, req.ResolutionDuration())
	if err != nil {
		return nil, fmt.Errorf("loading prices for %s to %s: %w",
			req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339), err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("loading prices for %s to %s: %w",
			req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339), ErrInsufficientData)
	}

	var bar *progressbar.ProgressBar
	if e.showProgress {
		ticks := int(req.EndTime.Sub(req.StartTime) / req.ResolutionDuration())
		bar = initProgressBar(ticks)
	}

	sim := newSimulation(req, samples, e.yields, bar)
	if err := sim.run(ctx); err != nil {
		return nil, err
	}

	metrics := computeMetrics(
		req.InitialCapital,
		sim.snapshots,
		req.ResolutionDuration(),
		e.riskFreeRate,
		sim.rebalances,
		sim.buyHoldFinalValue(),
	)

	e.log.Info().
		Str("vault", req.VaultConfig.Name).
		Int("ticks", len(sim.snapshots)).
		Int("rebalances", sim.rebalances).
		Str("totalReturn", metrics.TotalReturn.StringFixed(4)).
		Msg("backtest complete")

	return assembleResponse(req, sim, metrics), nil
}

func assembleResponse(req types.BacktestRequest, sim *simulation, metrics types.BacktestMetrics) *types.BacktestResponse {
	response := &types.BacktestResponse{
		Request:  req,
		Metrics:  metrics,
		Timeline: sim.timeline,
	}
	for _, snap := range sim.snapshots {
		response.PortfolioValueHistory = append(response.PortfolioValueHistory, types.ValuePoint{
			Timestamp: snap.Timestamp,
			Value:     snap.TotalValue,
		})
		response.AllocationHistory = append(response.AllocationHistory, types.AllocationPoint{
			Timestamp:   snap.Timestamp,
			Allocations: snap.Allocations,
		})
	}
	if sim.gapTicks > 0 {
		response.DataWarning = fmt.Sprintf(
			"%d of %d ticks had no fresh price data, last known prices were carried forward",
			sim.gapTicks, len(sim.snapshots)+sim.gapTicks)
	}
	return response
}

func (e *Engine) cacheKey(req types.BacktestRequest) string {
	if e.store == nil {
		return ""
	}
	key, err := cache.Key(req)
	if err != nil {
		e.log.Warn().Err(err).Msg("cache key derivation failed")
		return ""
	}
	return key
}

func (e *Engine) cacheGet(ctx context.Context, key string) *types.BacktestResponse {
	if e.store == nil || key == "" {
		return nil
	}
	entry, err := e.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			e.log.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
		}
		return nil
	}
	e.log.Debug().Str("key", key).Msg("cache hit")
	return entry.Results
}

func (e *Engine) cachePut(ctx context.Context, key string, req types.BacktestRequest, response *types.BacktestResponse) {
	if e.store == nil || key == "" {
		return
	}
	entry := &cache.Entry{
		CacheKey:       key,
		VaultID:        req.VaultConfig.Name,
		VaultConfig:    req.VaultConfig,
		Timeframe:      cache.Timeframe{Start: req.StartTime, End: req.EndTime},
		InitialCapital: req.InitialCapital,
		Results:        response,
		CreatedAt:      e.now(),
	}
	if err := e.store.Put(ctx, entry); err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
