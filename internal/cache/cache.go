package cache

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

// ErrCacheMiss is returned when a key is absent or its entry is stale.
var ErrCacheMiss = errors.New("cache: key not found")

const (
	// FreshnessWindow is how long a cached result is served as a hit.
	FreshnessWindow = 24 * time.Hour
	// RetentionPeriod is how long entries are kept before Sweep removes them.
	RetentionPeriod = 7 * 24 * time.Hour
)

// Timeframe is the simulated period covered by a cached result.
type Timeframe struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Entry is the persisted record for one backtest result, keyed by the
// content hash of its request. Entries are immutable once written; a
// re-run of the same configuration overwrites the whole entry.
type Entry struct {
	CacheKey       string                  `json:"cache_key"`
	VaultID        string                  `json:"vault_id"`
	VaultConfig    types.VaultConfig       `json:"vault_config"`
	Timeframe      Timeframe               `json:"timeframe"`
	InitialCapital decimal.Decimal         `json:"initial_capital"`
	Results        *types.BacktestResponse `json:"results"`
	CreatedAt      time.Time               `json:"created_at"`
}

// Store is the consumed contract of the result cache. Get must treat
// entries older than FreshnessWindow as misses. Put is a last-writer-wins
// upsert. Sweep deletes entries older than maxAge and reports how many.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, entry *Entry) error
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}
