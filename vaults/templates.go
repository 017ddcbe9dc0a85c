// Package vaults holds ready-made vault configurations for trying out
// the simulator without writing a request file by hand.
package vaults

import (
	"github.com/shopspring/decimal"

	"vaultsim/types"
)

// Balanced is a two-asset 60/40 vault with a weekly rebalance.
func Balanced() types.VaultConfig {
	return types.VaultConfig{
		Name:        "balanced",
		Description: "60/40 XLM/USDC with a weekly rebalance",
		Assets: []types.Asset{
			{AssetID: "XLM", AssetCode: "XLM", Percentage: decimal.NewFromInt(60)},
			{AssetID: "USDC", AssetCode: "USDC", Percentage: decimal.NewFromInt(40)},
		},
		Rules: []types.Rule{
			{
				ID:      "weekly-rebalance",
				Name:    "weekly rebalance",
				Enabled: true,
				Conditions: []types.Condition{
					types.TimeCondition{Value: 7 * 24 * 60 * 60 * 1000},
				},
				Actions: []types.Action{
					types.RebalanceAction{TargetAllocations: []types.TargetAllocation{
						{AssetID: "XLM", Percentage: decimal.NewFromInt(60)},
						{AssetID: "USDC", Percentage: decimal.NewFromInt(40)},
					}},
				},
			},
		},
		ManagementFee:  decimal.NewFromInt(1),
		PerformanceFee: decimal.NewFromInt(10),
	}
}

// DriftGuard rebalances whenever an asset drifts five points from its
// target instead of on a schedule.
func DriftGuard() types.VaultConfig {
	targets := []types.TargetAllocation{
		{AssetID: "XLM", Percentage: decimal.NewFromInt(50)},
		{AssetID: "USDC", Percentage: decimal.NewFromInt(50)},
	}
	return types.VaultConfig{
		Name:        "drift-guard",
		Description: "50/50 vault that rebalances on 5 points of drift",
		Assets: []types.Asset{
			{AssetID: "XLM", AssetCode: "XLM", Percentage: decimal.NewFromInt(50)},
			{AssetID: "USDC", AssetCode: "USDC", Percentage: decimal.NewFromInt(50)},
		},
		Rules: []types.Rule{
			{
				ID:      "xlm-drift",
				Name:    "rebalance on XLM drift",
				Enabled: true,
				Conditions: []types.Condition{
					types.AllocationCondition{
						AssetID:   "XLM",
						Operator:  types.OpGreaterOrEqual,
						Threshold: decimal.NewFromInt(5),
					},
				},
				Actions: []types.Action{types.RebalanceAction{TargetAllocations: targets}},
			},
			{
				ID:      "usdc-drift",
				Name:    "rebalance on USDC drift",
				Enabled: true,
				Conditions: []types.Condition{
					types.AllocationCondition{
						AssetID:   "USDC",
						Operator:  types.OpGreaterOrEqual,
						Threshold: decimal.NewFromInt(5),
					},
				},
				Actions: []types.Action{types.RebalanceAction{TargetAllocations: targets}},
			},
		},
		ManagementFee:  decimal.NewFromInt(1),
		PerformanceFee: decimal.NewFromInt(10),
	}
}

// YieldSeeker stakes XLM when the protocol APY clears 8% and takes
// profit into USDC after a 10% price rise.
func YieldSeeker() types.VaultConfig {
	return types.VaultConfig{
		Name:        "yield-seeker",
		Description: "stakes on high APY, takes profit on price spikes",
		Assets: []types.Asset{
			{AssetID: "XLM", AssetCode: "XLM", Percentage: decimal.NewFromInt(70)},
			{AssetID: "USDC", AssetCode: "USDC", Percentage: decimal.NewFromInt(30)},
		},
		Rules: []types.Rule{
			{
				ID:       "stake-on-apy",
				Name:     "stake XLM above 8% APY",
				Priority: 1,
				Enabled:  true,
				Conditions: []types.Condition{
					types.APYCondition{
						AssetID:   "XLM",
						Protocol:  "stellar-liquid",
						Operator:  types.OpGreaterOrEqual,
						Threshold: decimal.NewFromInt(8),
					},
				},
				Actions: []types.Action{
					types.StakeAction{Protocol: "stellar-liquid", TargetAsset: "XLM"},
				},
			},
			{
				ID:       "take-profit",
				Name:     "swap XLM to USDC after a 10% rise",
				Priority: 2,
				Enabled:  true,
				Conditions: []types.Condition{
					types.PriceCondition{
						AssetID:  "XLM",
						Operator: types.OpGreaterOrEqual,
						Value:    decimal.NewFromInt(10),
					},
				},
				Actions: []types.Action{
					types.SwapAction{AssetID: "XLM", TargetAsset: "USDC"},
				},
			},
		},
		ManagementFee:  decimal.NewFromInt(2),
		PerformanceFee: decimal.NewFromInt(15),
	}
}

// ByName resolves a template for the CLI's -template flag.
func ByName(name string) (types.VaultConfig, bool) {
	switch name {
	case "balanced":
		return Balanced(), true
	case "drift-guard":
		return DriftGuard(), true
	case "yield-seeker":
		return YieldSeeker(), true
	default:
		return types.VaultConfig{}, false
	}
}
