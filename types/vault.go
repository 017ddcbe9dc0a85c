package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// VaultConfig describes a weighted basket of assets plus the conditional
// rules that govern it. Fees are percentages of the moved amount.
type VaultConfig struct {
	Owner          string          `json:"owner"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Assets         []Asset         `json:"assets"`
	Rules          []Rule          `json:"rules"`
	ManagementFee  decimal.Decimal `json:"managementFee"`
	PerformanceFee decimal.Decimal `json:"performanceFee"`
	IsPublic       bool            `json:"isPublic"`
}

// Normalize rescales asset weights to sum to 100 and rebalance targets
// inside every rule the same way. Returns true when any weight changed,
// which callers surface as a normalization warning.
func (c *VaultConfig) Normalize() bool {
	changed := NormalizeAssets(c.Assets)
	for i := range c.Rules {
		for j, action := range c.Rules[i].Actions {
			reb, ok := action.(RebalanceAction)
			if !ok {
				continue
			}
			if NormalizeTargets(reb.TargetAllocations) {
				c.Rules[i].Actions[j] = reb
				changed = true
			}
		}
	}
	return changed
}

// TargetWeight returns the configured weight for an asset, or zero when
// the asset is not part of the basket.
func (c *VaultConfig) TargetWeight(assetID string) decimal.Decimal {
	for _, a := range c.Assets {
		if a.AssetID == assetID {
			return a.Percentage
		}
	}
	return decimal.Zero
}

// UnmarshalJSON accepts rules in both the canonical and the legacy
// persisted shape, converting legacy rows on the way in.
func (c *VaultConfig) UnmarshalJSON(data []byte) error {
	type alias VaultConfig
	raw := struct {
		*alias
		Rules []json.RawMessage `json:"rules"`
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Rules = nil
	for _, r := range raw.Rules {
		rule, err := DecodeRule(r)
		if err != nil {
			return err
		}
		c.Rules = append(c.Rules, rule)
	}
	return nil
}
