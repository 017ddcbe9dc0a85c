package types

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Asset is one entry in a vault's basket. AssetIssuer is empty for the
// two native/reserve assets and set for issued tokens.
type Asset struct {
	AssetID     string          `json:"assetId"`
	AssetCode   string          `json:"assetCode"`
	AssetIssuer string          `json:"assetIssuer,omitempty"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// TargetAllocation is a rebalance target weight for a single asset.
type TargetAllocation struct {
	AssetID     string          `json:"assetId"`
	AssetCode   string          `json:"assetCode"`
	AssetIssuer string          `json:"assetIssuer,omitempty"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// NormalizeWeights rescales weights in place so they sum to exactly 100.
// A zero sum distributes weights equally. Returns true when any weight
// was changed. Safe to call repeatedly.
func NormalizeWeights(weights []decimal.Decimal) bool {
	if len(weights) == 0 {
		return false
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}

	if sum.Equal(hundred) {
		return false
	}

	if sum.IsZero() {
		equal := hundred.Div(decimal.NewFromInt(int64(len(weights))))
		for i := range weights {
			weights[i] = equal
		}
		return true
	}

	scale := hundred.Div(sum)
	for i := range weights {
		weights[i] = weights[i].Mul(scale)
	}
	return true
}

// NormalizeAssets rescales asset percentages to sum to 100.
func NormalizeAssets(assets []Asset) bool {
	weights := make([]decimal.Decimal, len(assets))
	for i, a := range assets {
		weights[i] = a.Percentage
	}
	changed := NormalizeWeights(weights)
	if changed {
		for i := range assets {
			assets[i].Percentage = weights[i]
		}
	}
	return changed
}

// NormalizeTargets rescales rebalance target percentages to sum to 100.
func NormalizeTargets(targets []TargetAllocation) bool {
	weights := make([]decimal.Decimal, len(targets))
	for i, t := range targets {
		weights[i] = t.Percentage
	}
	changed := NormalizeWeights(weights)
	if changed {
		for i := range targets {
			targets[i].Percentage = weights[i]
		}
	}
	return changed
}
