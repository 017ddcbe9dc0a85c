package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Operator compares a measured value against a rule threshold.
type Operator string

const (
	OpGreaterThan    Operator = "gt"
	OpLessThan       Operator = "lt"
	OpGreaterOrEqual Operator = "gte"
	OpLessOrEqual    Operator = "lte"
)

// Compare applies the operator with the measured value on the left.
func (op Operator) Compare(measured, threshold decimal.Decimal) bool {
	switch op {
	case OpGreaterThan:
		return measured.GreaterThan(threshold)
	case OpLessThan:
		return measured.LessThan(threshold)
	case OpGreaterOrEqual:
		return measured.GreaterThanOrEqual(threshold)
	case OpLessOrEqual:
		return measured.LessThanOrEqual(threshold)
	}
	return false
}

func (op Operator) valid() bool {
	switch op {
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		return true
	}
	return false
}

const (
	ConditionTime       = "time"
	ConditionPrice      = "price"
	ConditionAllocation = "allocation"
	ConditionAPY        = "apy"

	ActionRebalance        = "rebalance"
	ActionSwap             = "swap"
	ActionStake            = "stake"
	ActionProvideLiquidity = "provide_liquidity"
)

// Condition is one clause of a rule. A rule fires only when every
// condition holds at the same tick. The set of kinds is closed; unknown
// kinds are rejected when a rule is decoded.
type Condition interface {
	Kind() string
}

// TimeCondition holds once the simulated time since the rule's last fire
// (or the simulation start) reaches Value milliseconds.
type TimeCondition struct {
	Value int64 `json:"value"`
}

func (TimeCondition) Kind() string { return ConditionTime }

// PriceCondition compares an asset's percentage price change since the
// rule's anchor price (its last fire, or the simulation start) against
// Value.
type PriceCondition struct {
	AssetID  string          `json:"assetId"`
	Operator Operator        `json:"operator"`
	Value    decimal.Decimal `json:"value"`
}

func (PriceCondition) Kind() string { return ConditionPrice }

// AllocationCondition compares an asset's signed drift from its target
// weight, in percentage points, against Threshold. Overweight is a
// positive drift.
type AllocationCondition struct {
	AssetID   string          `json:"assetId"`
	Operator  Operator        `json:"operator"`
	Threshold decimal.Decimal `json:"threshold"`
}

func (AllocationCondition) Kind() string { return ConditionAllocation }

// APYCondition compares an externally supplied yield figure against
// Threshold. Without a yield figure the condition never holds.
type APYCondition struct {
	AssetID   string          `json:"assetId"`
	Protocol  string          `json:"protocol,omitempty"`
	Operator  Operator        `json:"operator"`
	Threshold decimal.Decimal `json:"threshold"`
}

func (APYCondition) Kind() string { return ConditionAPY }

// Action is one effect of a fired rule, applied to the simulated
// portfolio. The set of kinds is closed, like Condition.
type Action interface {
	ActionKind() string
}

// RebalanceAction restores the portfolio to the target weights.
type RebalanceAction struct {
	TargetAllocations []TargetAllocation `json:"targetAllocations"`
}

func (RebalanceAction) ActionKind() string { return ActionRebalance }

// SwapAction converts the full balance of AssetID into TargetAsset.
type SwapAction struct {
	AssetID     string `json:"assetId"`
	TargetAsset string `json:"targetAsset"`
}

func (SwapAction) ActionKind() string { return ActionSwap }

// StakeAction moves the balance of TargetAsset into a yield-bearing
// position in Protocol.
type StakeAction struct {
	Protocol    string `json:"protocol"`
	TargetAsset string `json:"targetAsset"`
}

func (StakeAction) ActionKind() string { return ActionStake }

// ProvideLiquidityAction moves the balances of Assets into a liquidity
// position in Protocol. An empty Assets list takes every held asset.
type ProvideLiquidityAction struct {
	Protocol string   `json:"protocol"`
	Assets   []string `json:"assets,omitempty"`
}

func (ProvideLiquidityAction) ActionKind() string { return ActionProvideLiquidity }

// Rule pairs conditions with actions. Lower priority evaluates first.
type Rule struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Priority   int         `json:"priority"`
	Enabled    bool        `json:"enabled"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
}

type conditionEnvelope struct {
	Type string `json:"type"`
}

type actionEnvelope struct {
	Type string `json:"type"`
}

type ruleJSON struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Priority   int               `json:"priority"`
	Enabled    bool              `json:"enabled"`
	Conditions []json.RawMessage `json:"conditions"`
	Actions    []json.RawMessage `json:"actions"`
}

// UnmarshalJSON decodes the canonical rule shape. Legacy flat-shape
// rules must go through ConvertLegacyRule before reaching this point.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var raw ruleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ID = raw.ID
	r.Name = raw.Name
	r.Priority = raw.Priority
	r.Enabled = raw.Enabled
	r.Conditions = nil
	r.Actions = nil

	for _, c := range raw.Conditions {
		cond, err := DecodeCondition(c)
		if err != nil {
			return fmt.Errorf("rule %s: %w", raw.ID, err)
		}
		r.Conditions = append(r.Conditions, cond)
	}
	for _, a := range raw.Actions {
		act, err := DecodeAction(a)
		if err != nil {
			return fmt.Errorf("rule %s: %w", raw.ID, err)
		}
		r.Actions = append(r.Actions, act)
	}
	return nil
}

// MarshalJSON writes the canonical rule shape with type-tagged
// conditions and actions, with stable field order.
func (r Rule) MarshalJSON() ([]byte, error) {
	raw := ruleJSON{
		ID:       r.ID,
		Name:     r.Name,
		Priority: r.Priority,
		Enabled:  r.Enabled,
	}
	for _, c := range r.Conditions {
		b, err := encodeTagged(c.Kind(), c)
		if err != nil {
			return nil, err
		}
		raw.Conditions = append(raw.Conditions, b)
	}
	for _, a := range r.Actions {
		b, err := encodeTagged(a.ActionKind(), a)
		if err != nil {
			return nil, err
		}
		raw.Actions = append(raw.Actions, b)
	}
	return json.Marshal(raw)
}

// DecodeCondition parses one type-tagged condition object.
func DecodeCondition(data []byte) (Condition, error) {
	var env conditionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case ConditionTime:
		var c TimeCondition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		if c.Value <= 0 {
			return nil, fmt.Errorf("time condition: value must be positive, got %d", c.Value)
		}
		return c, nil
	case ConditionPrice:
		var c PriceCondition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		if !c.Operator.valid() {
			return nil, fmt.Errorf("price condition: unknown operator %q", c.Operator)
		}
		return c, nil
	case ConditionAllocation:
		var c AllocationCondition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		if !c.Operator.valid() {
			return nil, fmt.Errorf("allocation condition: unknown operator %q", c.Operator)
		}
		return c, nil
	case ConditionAPY:
		var c APYCondition
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		if !c.Operator.valid() {
			return nil, fmt.Errorf("apy condition: unknown operator %q", c.Operator)
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown condition type %q", env.Type)
}

// DecodeAction parses one type-tagged action object.
func DecodeAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Type {
	case ActionRebalance:
		var a RebalanceAction
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		if len(a.TargetAllocations) == 0 {
			return nil, fmt.Errorf("rebalance action: empty target allocations")
		}
		return a, nil
	case ActionSwap:
		var a SwapAction
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		if a.TargetAsset == "" {
			return nil, fmt.Errorf("swap action: missing target asset")
		}
		return a, nil
	case ActionStake:
		var a StakeAction
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		if a.Protocol == "" {
			return nil, fmt.Errorf("stake action: missing protocol")
		}
		return a, nil
	case ActionProvideLiquidity:
		var a ProvideLiquidityAction
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		if a.Protocol == "" {
			return nil, fmt.Errorf("provide_liquidity action: missing protocol")
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown action type %q", env.Type)
}

func encodeTagged(kind string, v any) (json.RawMessage, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", kind))
	return json.Marshal(fields)
}
