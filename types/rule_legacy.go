package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// LegacyRule is the flat persisted rule shape used before rules carried
// explicit condition and action lists. It exists only at the storage
// boundary; ConvertLegacyRule turns it into a canonical Rule and nothing
// downstream of decoding ever sees this shape.
type LegacyRule struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	ConditionType string          `json:"condition_type"`
	Threshold     decimal.Decimal `json:"threshold"`
	Action        string          `json:"action"`
	Parameters    legacyParams    `json:"parameters"`
}

type legacyParams struct {
	AssetID           string             `json:"asset_id"`
	TargetAsset       string             `json:"target_asset"`
	Protocol          string             `json:"protocol"`
	Operator          Operator           `json:"operator"`
	TimeValueMillis   int64              `json:"time_value_ms"`
	TargetAllocations []TargetAllocation `json:"target_allocation"`
}

// ConvertLegacyRule maps a flat legacy rule onto the canonical Rule
// shape. Legacy rules had a single condition and a single action and
// were always enabled.
func ConvertLegacyRule(lr LegacyRule) (Rule, error) {
	rule := Rule{
		ID:      lr.ID,
		Name:    lr.Name,
		Enabled: true,
	}

	op := lr.Parameters.Operator
	if op == "" {
		op = OpGreaterOrEqual
	}

	switch lr.ConditionType {
	case ConditionTime, "time_based":
		value := lr.Parameters.TimeValueMillis
		if value == 0 {
			// Older rows stored the interval in the threshold column, in seconds.
			value = lr.Threshold.IntPart() * 1000
		}
		if value <= 0 {
			return Rule{}, fmt.Errorf("legacy rule %s: no usable time interval", lr.ID)
		}
		rule.Conditions = []Condition{TimeCondition{Value: value}}
	case ConditionPrice, "price_based":
		rule.Conditions = []Condition{PriceCondition{
			AssetID:  lr.Parameters.AssetID,
			Operator: op,
			Value:    lr.Threshold,
		}}
	case ConditionAllocation, "allocation_drift":
		rule.Conditions = []Condition{AllocationCondition{
			AssetID:   lr.Parameters.AssetID,
			Operator:  op,
			Threshold: lr.Threshold,
		}}
	case ConditionAPY, "apy_threshold":
		rule.Conditions = []Condition{APYCondition{
			AssetID:   lr.Parameters.AssetID,
			Protocol:  lr.Parameters.Protocol,
			Operator:  op,
			Threshold: lr.Threshold,
		}}
	default:
		return Rule{}, fmt.Errorf("legacy rule %s: unknown condition type %q", lr.ID, lr.ConditionType)
	}

	switch lr.Action {
	case ActionRebalance:
		if len(lr.Parameters.TargetAllocations) == 0 {
			return Rule{}, fmt.Errorf("legacy rule %s: rebalance without target allocation", lr.ID)
		}
		rule.Actions = []Action{RebalanceAction{TargetAllocations: lr.Parameters.TargetAllocations}}
	case ActionSwap:
		rule.Actions = []Action{SwapAction{
			AssetID:     lr.Parameters.AssetID,
			TargetAsset: lr.Parameters.TargetAsset,
		}}
	case ActionStake:
		rule.Actions = []Action{StakeAction{
			Protocol:    lr.Parameters.Protocol,
			TargetAsset: lr.Parameters.TargetAsset,
		}}
	case ActionProvideLiquidity, "liquidity":
		rule.Actions = []Action{ProvideLiquidityAction{Protocol: lr.Parameters.Protocol}}
	default:
		return Rule{}, fmt.Errorf("legacy rule %s: unknown action %q", lr.ID, lr.Action)
	}

	return rule, nil
}

// DecodeRule parses a rule in either the canonical or the legacy
// persisted shape, returning a canonical Rule.
func DecodeRule(data []byte) (Rule, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Rule{}, err
	}

	if _, legacy := probe["condition_type"]; legacy {
		var lr LegacyRule
		if err := json.Unmarshal(data, &lr); err != nil {
			return Rule{}, err
		}
		return ConvertLegacyRule(lr)
	}

	var rule Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return Rule{}, err
	}
	return rule, nil
}
