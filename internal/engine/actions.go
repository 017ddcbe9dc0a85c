package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

// feeFactor is the fraction of moved value that survives a conversion.
// Management fee applies first, performance fee on the remainder.
func feeFactor(cfg types.VaultConfig) decimal.Decimal {
	one := decimal.NewFromInt(1)
	mgmt := one.Sub(cfg.ManagementFee.Div(hundred))
	perf := one.Sub(cfg.PerformanceFee.Div(hundred))
	return mgmt.Mul(perf)
}

// applyAction mutates the portfolio for one fired action. Rebalances are
// frictionless; swap, stake and liquidity conversions pay fees on the
// moved value.
func (s *simulation) applyAction(action types.Action, prices map[string]decimal.Decimal) error {
	switch a := action.(type) {
	case types.RebalanceAction:
		return s.applyRebalance(a, prices)
	case types.SwapAction:
		return s.applySwap(a, prices)
	case types.StakeAction:
		s.applyStake(a)
		return nil
	case types.ProvideLiquidityAction:
		s.applyProvideLiquidity(a)
		return nil
	default:
		return fmt.Errorf("unsupported action %s", action.ActionKind())
	}
}

// applyRebalance redistributes the spot sleeve across the action's
// targets. Staked and pooled positions are left where they are.
func (s *simulation) applyRebalance(a types.RebalanceAction, prices map[string]decimal.Decimal) error {
	spotValue := decimal.Zero
	for assetID, units := range s.state.holdings {
		price, ok := prices[assetID]
		if !ok {
			return fmt.Errorf("rebalance: %w: %s", ErrMissingPrice, assetID)
		}
		spotValue = spotValue.Add(units.Mul(price))
	}
	if !spotValue.IsPositive() {
		return nil
	}

	// Price every target before touching holdings, so an unpriced target
	// leaves the portfolio exactly as it was.
	next := make(map[string]decimal.Decimal, len(a.TargetAllocations))
	for _, target := range a.TargetAllocations {
		price, ok := prices[target.AssetID]
		if !ok || !price.IsPositive() {
			return fmt.Errorf("rebalance: %w: %s", ErrMissingPrice, target.AssetID)
		}
		value := spotValue.Mul(target.Percentage).Div(hundred)
		next[target.AssetID] = next[target.AssetID].Add(value.Div(price))
	}

	for assetID := range s.state.holdings {
		s.state.holdings[assetID] = decimal.Zero
	}
	for assetID, units := range next {
		s.state.holdings[assetID] = units
	}
	return nil
}

// applySwap converts the full spot position of one asset into another.
func (s *simulation) applySwap(a types.SwapAction, prices map[string]decimal.Decimal) error {
	units := s.state.holdings[a.AssetID]
	if !units.IsPositive() {
		return nil
	}
	srcPrice, okSrc := prices[a.AssetID]
	dstPrice, okDst := prices[a.TargetAsset]
	if !okSrc || !okDst || !dstPrice.IsPositive() {
		return fmt.Errorf("swap %s->%s: %w", a.AssetID, a.TargetAsset, ErrMissingPrice)
	}

	netValue := units.Mul(srcPrice).Mul(s.fees)
	s.state.holdings[a.AssetID] = decimal.Zero
	s.state.holdings[a.TargetAsset] = s.state.holdings[a.TargetAsset].Add(netValue.Div(dstPrice))
	return nil
}

// applyStake moves the spot units of the target asset into a staked
// position on the protocol. Fees come out of the moved units.
func (s *simulation) applyStake(a types.StakeAction) {
	units := s.state.holdings[a.TargetAsset]
	if !units.IsPositive() {
		return
	}
	s.state.holdings[a.TargetAsset] = decimal.Zero
	netUnits := units.Mul(s.fees)

	for i := range s.state.staked {
		pos := &s.state.staked[i]
		if pos.Protocol == a.Protocol && pos.AssetID == a.TargetAsset {
			pos.Units = pos.Units.Add(netUnits)
			return
		}
	}
	s.state.staked = append(s.state.staked, stakedPosition{
		Protocol: a.Protocol,
		AssetID:  a.TargetAsset,
		Units:    netUnits,
	})
}

// applyProvideLiquidity moves the spot units of each listed asset into a
// pool position on the protocol. An empty asset list moves everything.
func (s *simulation) applyProvideLiquidity(a types.ProvideLiquidityAction) {
	var pool *liquidityPosition
	for i := range s.state.pools {
		if s.state.pools[i].Protocol == a.Protocol {
			pool = &s.state.pools[i]
			break
		}
	}

	assetIDs := a.Assets
	if len(assetIDs) == 0 {
		for assetID := range s.state.holdings {
			assetIDs = append(assetIDs, assetID)
		}
	}

	for _, assetID := range assetIDs {
		units := s.state.holdings[assetID]
		if !units.IsPositive() {
			continue
		}
		if pool == nil {
			s.state.pools = append(s.state.pools, liquidityPosition{
				Protocol: a.Protocol,
				Units:    make(map[string]decimal.Decimal, len(a.Assets)),
			})
			pool = &s.state.pools[len(s.state.pools)-1]
		}
		s.state.holdings[assetID] = decimal.Zero
		pool.Units[assetID] = pool.Units[assetID].Add(units.Mul(s.fees))
	}
}
