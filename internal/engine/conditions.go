package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

// ruleSatisfied reports whether every condition of a rule holds at the
// current tick. Rules fire on the rising edge of this predicate, so a
// threshold that stays crossed triggers once per crossing.
func (s *simulation) ruleSatisfied(ctx context.Context, rule types.Rule, curTime time.Time, prices map[string]decimal.Decimal) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	for _, cond := range rule.Conditions {
		if !s.conditionSatisfied(ctx, rule.ID, cond, curTime, prices) {
			return false
		}
	}
	return true
}

func (s *simulation) conditionSatisfied(ctx context.Context, ruleID string, cond types.Condition, curTime time.Time, prices map[string]decimal.Decimal) bool {
	switch c := cond.(type) {
	case types.TimeCondition:
		anchor, ok := s.lastFire[ruleID]
		if !ok {
			anchor = s.start
		}
		return curTime.Sub(anchor) >= time.Duration(c.Value)*time.Millisecond

	case types.PriceCondition:
		price, ok := prices[c.AssetID]
		if !ok {
			return false
		}
		anchor, ok := s.anchorPrice(ruleID, c.AssetID)
		if !ok || !anchor.IsPositive() {
			// First sighting becomes the anchor; nothing to compare yet.
			s.setAnchorPrice(ruleID, c.AssetID, price)
			return false
		}
		change := price.Sub(anchor).Div(anchor).Mul(hundred)
		return c.Operator.Compare(change, c.Value)

	case types.AllocationCondition:
		current, ok := s.state.allocations(prices)[c.AssetID]
		if !ok {
			return false
		}
		drift := current.Sub(s.config.TargetWeight(c.AssetID))
		return c.Operator.Compare(drift, c.Threshold)

	case types.APYCondition:
		if s.yields == nil {
			return false
		}
		apy, ok := s.yields.APY(ctx, c.Protocol, c.AssetID, curTime)
		if !ok {
			return false
		}
		return c.Operator.Compare(apy, c.Threshold)

	default:
		return false
	}
}
