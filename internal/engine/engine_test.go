package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vaultsim/internal/cache"
	"vaultsim/types"
)

type scriptedProvider struct {
	samples []types.PriceSample
	err     error
	calls   int
}

func (p *scriptedProvider) GetPriceSeries(_ context.Context, _ []string, _, _ time.Time, _ time.Duration) ([]types.PriceSample, error) {
	p.calls++
	return p.samples, p.err
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (*cache.Entry, error) {
	return nil, errors.New("redis is down")
}
func (failingStore) Put(context.Context, *cache.Entry) error {
	return errors.New("redis is down")
}
func (failingStore) Sweep(context.Context, time.Duration) (int, error) {
	return 0, errors.New("redis is down")
}

func engineClock() time.Time {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
}

func flatSamples() []types.PriceSample {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scripts := map[string][]string{"XLM": nil, "USDC": nil}
	for i := 0; i < 31; i++ {
		scripts["XLM"] = append(scripts["XLM"], "2")
		scripts["USDC"] = append(scripts["USDC"], "1")
	}
	return pricedSamples(start, scripts)
}

func engineRequest() types.BacktestRequest {
	req := simRequest(nil, "0", "0")
	req.EndTime = req.StartTime.Add(30 * day)
	return req
}

func TestEngineRunReturnsMetrics(t *testing.T) {
	provider := &scriptedProvider{samples: flatSamples()}
	eng := NewEngine(provider, WithClock(engineClock))

	resp, err := eng.Run(context.Background(), engineRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.PortfolioValueHistory) != 31 {
		t.Errorf("value history = %d points, want 31", len(resp.PortfolioValueHistory))
	}
	if len(resp.AllocationHistory) != 31 {
		t.Errorf("allocation history = %d points, want 31", len(resp.AllocationHistory))
	}
	if !resp.Metrics.FinalValue.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("final value = %s, want 10000", resp.Metrics.FinalValue)
	}
	if resp.DataWarning != "" {
		t.Errorf("unexpected data warning: %s", resp.DataWarning)
	}
}

func TestEngineRunUsesCache(t *testing.T) {
	provider := &scriptedProvider{samples: flatSamples()}
	store := cache.NewMemoryStore().WithClock(engineClock)
	eng := NewEngine(provider, WithClock(engineClock), WithCache(store))

	first, err := eng.Run(context.Background(), engineRequest())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := eng.Run(context.Background(), engineRequest())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("price provider called %d times, want 1 (second run served from cache)", provider.calls)
	}
	if !first.Metrics.FinalValue.Equal(second.Metrics.FinalValue) {
		t.Errorf("cached result differs: %s vs %s", first.Metrics.FinalValue, second.Metrics.FinalValue)
	}
}

func TestEngineRunSurvivesCacheOutage(t *testing.T) {
	provider := &scriptedProvider{samples: flatSamples()}
	eng := NewEngine(provider, WithClock(engineClock), WithCache(failingStore{}))

	resp, err := eng.Run(context.Background(), engineRequest())
	if err != nil {
		t.Fatalf("cache failures must not fail the run: %v", err)
	}
	if resp == nil || len(resp.PortfolioValueHistory) == 0 {
		t.Fatal("expected a full response despite the cache outage")
	}
}

func TestEngineRunRejectsInvalidRequest(t *testing.T) {
	eng := NewEngine(&scriptedProvider{}, WithClock(engineClock))

	req := engineRequest()
	req.InitialCapital = decimal.Zero

	_, err := eng.Run(context.Background(), req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if vErr.Field != "initialCapital" {
		t.Errorf("field = %s, want initialCapital", vErr.Field)
	}
}

func TestEngineRunNoPriceData(t *testing.T) {
	eng := NewEngine(&scriptedProvider{}, WithClock(engineClock))

	_, err := eng.Run(context.Background(), engineRequest())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("error = %v, want ErrInsufficientData", err)
	}
	// The error names the requested window for operators.
	if !strings.Contains(err.Error(), "2026-01-01") {
		t.Errorf("error should mention the window start: %v", err)
	}
}

func TestEngineRunProviderError(t *testing.T) {
	providerErr := errors.New("connection refused")
	eng := NewEngine(&scriptedProvider{err: providerErr}, WithClock(engineClock))

	_, err := eng.Run(context.Background(), engineRequest())
	if !errors.Is(err, providerErr) {
		t.Fatalf("error = %v, want wrapped provider error", err)
	}
}

func TestEngineRunReportsDataGaps(t *testing.T) {
	// Ten days of data for a thirty-day window.
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scripts := map[string][]string{}
	for i := 0; i < 10; i++ {
		scripts["XLM"] = append(scripts["XLM"], "2")
		scripts["USDC"] = append(scripts["USDC"], "1")
	}
	provider := &scriptedProvider{samples: pricedSamples(start, scripts)}
	eng := NewEngine(provider, WithClock(engineClock))

	resp, err := eng.Run(context.Background(), engineRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DataWarning == "" {
		t.Error("expected a data warning for the gap-filled window")
	}
}
