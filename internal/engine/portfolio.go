package engine

import (
	"errors"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

var ErrMissingPrice = errors.New("no price available for asset")

var hundred = decimal.NewFromInt(100)

// portfolioState tracks the simulated vault between ticks. Spot units
// live in holdings; staked and pooled units are carried separately so a
// rebalance only touches the spot sleeve.
type portfolioState struct {
	holdings map[string]decimal.Decimal
	staked   []stakedPosition
	pools    []liquidityPosition
}

type stakedPosition struct {
	Protocol string
	AssetID  string
	Units    decimal.Decimal
}

type liquidityPosition struct {
	Protocol string
	Units    map[string]decimal.Decimal
}

// newPortfolioState buys into the configured weights at the first tick's
// prices. Weights are percentages summing to 100.
func newPortfolioState(cfg types.VaultConfig, capital decimal.Decimal, prices map[string]decimal.Decimal) (*portfolioState, error) {
	state := &portfolioState{holdings: make(map[string]decimal.Decimal, len(cfg.Assets))}
	for _, asset := range cfg.Assets {
		price, ok := prices[asset.AssetID]
		if !ok || !price.IsPositive() {
			return nil, ErrMissingPrice
		}
		value := capital.Mul(asset.Percentage).Div(hundred)
		state.holdings[asset.AssetID] = value.Div(price)
	}
	return state, nil
}

// totalValue prices every sleeve at the current tick.
func (p *portfolioState) totalValue(prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for assetID, units := range p.holdings {
		if price, ok := prices[assetID]; ok {
			total = total.Add(units.Mul(price))
		}
	}
	for _, pos := range p.staked {
		if price, ok := prices[pos.AssetID]; ok {
			total = total.Add(pos.Units.Mul(price))
		}
	}
	for _, pool := range p.pools {
		for assetID, units := range pool.Units {
			if price, ok := prices[assetID]; ok {
				total = total.Add(units.Mul(price))
			}
		}
	}
	return total
}

// allocations returns each asset's share of total value on a 0-100
// scale, counting spot, staked and pooled units together.
func (p *portfolioState) allocations(prices map[string]decimal.Decimal) map[string]decimal.Decimal {
	total := p.totalValue(prices)
	values := make(map[string]decimal.Decimal, len(p.holdings))

	add := func(assetID string, units decimal.Decimal) {
		if price, ok := prices[assetID]; ok {
			values[assetID] = values[assetID].Add(units.Mul(price))
		}
	}
	for assetID, units := range p.holdings {
		add(assetID, units)
	}
	for _, pos := range p.staked {
		add(pos.AssetID, pos.Units)
	}
	for _, pool := range p.pools {
		for assetID, units := range pool.Units {
			add(assetID, units)
		}
	}

	out := make(map[string]decimal.Decimal, len(values))
	for assetID, value := range values {
		if total.IsPositive() {
			out[assetID] = value.Div(total).Mul(hundred)
		} else {
			out[assetID] = decimal.Zero
		}
	}
	return out
}
