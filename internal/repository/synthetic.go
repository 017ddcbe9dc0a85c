package repository

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

// SyntheticProvider generates a deterministic price series when no
// database is configured. Each asset follows a geometric random walk
// seeded from its identifier, so repeated runs over the same window
// produce identical samples.
type SyntheticProvider struct {
	network string
}

// NewSyntheticProvider creates a provider scoped to one network. The
// network participates in the seed so testnet and mainnet series differ.
func NewSyntheticProvider(network string) *SyntheticProvider {
	return &SyntheticProvider{network: network}
}

func (p *SyntheticProvider) GetPriceSeries(_ context.Context, assetIDs []string, start, end time.Time, resolution time.Duration) ([]types.PriceSample, error) {
	if resolution <= 0 || !start.Before(end) {
		return nil, ErrNoPrices
	}

	walks := make(map[string]*assetWalk, len(assetIDs))
	for _, id := range assetIDs {
		walks[id] = newAssetWalk(id, p.network)
	}

	var samples []types.PriceSample
	for ts := start; !ts.After(end); ts = ts.Add(resolution) {
		prices := make(map[string]decimal.Decimal, len(assetIDs))
		for _, id := range assetIDs {
			prices[id] = walks[id].next()
		}
		samples = append(samples, types.PriceSample{Timestamp: ts, Prices: prices})
	}
	return samples, nil
}

type assetWalk struct {
	rng   *rand.Rand
	price float64
}

func newAssetWalk(assetID, network string) *assetWalk {
	h := fnv.New64a()
	h.Write([]byte(network))
	h.Write([]byte{0})
	h.Write([]byte(assetID))
	seed := int64(h.Sum64())

	rng := rand.New(rand.NewSource(seed))
	// Base price between 0.1 and 100, skewed low like real token prices.
	base := 0.1 * math.Pow(1000, rng.Float64())
	return &assetWalk{rng: rng, price: base}
}

// next advances one step with a mild upward drift and ~1% step noise.
func (w *assetWalk) next() decimal.Decimal {
	current := w.price
	step := 0.0001 + 0.01*w.rng.NormFloat64()
	w.price = current * math.Max(0.5, 1+step)
	return decimal.NewFromFloat(current).Round(8)
}
