package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"vaultsim/internal/logger"
	"vaultsim/types"
)

var ErrInsufficientData = errors.New("not enough price data to start the simulation")

// simulation replays one request tick by tick. It owns the mutable run
// state; the Engine builds one per request and discards it afterwards.
type simulation struct {
	config  types.VaultConfig
	request types.BacktestRequest
	samples []types.PriceSample
	yields  YieldProvider
	fees    decimal.Decimal
	bar     *progressbar.ProgressBar

	start time.Time
	state *portfolioState

	// lastFire anchors time conditions, anchors holds the reference
	// prices for price conditions, and wasSatisfied drives edge
	// detection for every rule.
	lastFire     map[string]time.Time
	anchors      map[string]decimal.Decimal
	wasSatisfied map[string]bool

	lastPrices   map[string]decimal.Decimal
	buyHoldUnits map[string]decimal.Decimal

	snapshots  []types.Snapshot
	timeline   []types.TimelineEvent
	rebalances int
	gapTicks   int
}

func newSimulation(req types.BacktestRequest, samples []types.PriceSample, yields YieldProvider, bar *progressbar.ProgressBar) *simulation {
	return &simulation{
		config:       req.VaultConfig,
		request:      req,
		samples:      samples,
		yields:       yields,
		fees:         feeFactor(req.VaultConfig),
		bar:          bar,
		start:        req.StartTime,
		lastFire:     make(map[string]time.Time),
		anchors:      make(map[string]decimal.Decimal),
		wasSatisfied: make(map[string]bool),
		lastPrices:   make(map[string]decimal.Decimal),
		buyHoldUnits: make(map[string]decimal.Decimal),
	}
}

// run walks the window at the request resolution. Prices carry forward
// across sample gaps; ticks before every asset has a price are skipped
// and surfaced as a data warning by the caller.
func (s *simulation) run(ctx context.Context) error {
	resolution := s.request.ResolutionDuration()
	sampleIdx := 0
	rules := s.orderedRules()

	for curTime := s.request.StartTime; !curTime.After(s.request.EndTime); curTime = curTime.Add(resolution) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fresh := false
		for sampleIdx < len(s.samples) && !s.samples[sampleIdx].Timestamp.After(curTime) {
			for assetID, price := range s.samples[sampleIdx].Prices {
				s.lastPrices[assetID] = price
			}
			sampleIdx++
			fresh = true
		}

		if s.state == nil {
			if !s.initPortfolio(curTime) {
				continue
			}
		} else if !fresh {
			s.gapTicks++
		}

		s.step(ctx, rules, curTime)

		if s.bar != nil {
			s.bar.Add(1)
		}
	}

	if s.state == nil {
		return ErrInsufficientData
	}
	return nil
}

// initPortfolio buys in once every configured asset has a price. Returns
// false while data is still missing.
func (s *simulation) initPortfolio(curTime time.Time) bool {
	for _, asset := range s.config.Assets {
		price, ok := s.lastPrices[asset.AssetID]
		if !ok || !price.IsPositive() {
			s.gapTicks++
			return false
		}
	}

	state, err := newPortfolioState(s.config, s.request.InitialCapital, s.lastPrices)
	if err != nil {
		s.gapTicks++
		return false
	}
	s.state = state
	s.start = curTime

	// The buy-and-hold baseline buys the same weights and never trades.
	for assetID, units := range state.holdings {
		s.buyHoldUnits[assetID] = units
	}

	// Buy-in prices anchor every price condition until its rule fires.
	for _, rule := range s.config.Rules {
		s.resetPriceAnchors(rule)
	}
	return true
}

// resetPriceAnchors re-anchors the rule's price conditions at the
// current prices.
func (s *simulation) resetPriceAnchors(rule types.Rule) {
	for _, cond := range rule.Conditions {
		pc, ok := cond.(types.PriceCondition)
		if !ok {
			continue
		}
		if price, ok := s.lastPrices[pc.AssetID]; ok {
			s.setAnchorPrice(rule.ID, pc.AssetID, price)
		}
	}
}

func (s *simulation) anchorPrice(ruleID, assetID string) (decimal.Decimal, bool) {
	price, ok := s.anchors[ruleID+"\x00"+assetID]
	return price, ok
}

func (s *simulation) setAnchorPrice(ruleID, assetID string, price decimal.Decimal) {
	s.anchors[ruleID+"\x00"+assetID] = price
}

// step evaluates every enabled rule at one tick and records a snapshot.
func (s *simulation) step(ctx context.Context, rules []types.Rule, curTime time.Time) {
	var firedIDs []string

	for _, rule := range rules {
		satisfied := s.ruleSatisfied(ctx, rule, curTime, s.lastPrices)
		if satisfied && !s.wasSatisfied[rule.ID] {
			s.fireRule(rule, curTime)
			firedIDs = append(firedIDs, rule.ID)
			// Re-evaluate so a state that remains crossed after the
			// actions ran does not fire again next tick.
			satisfied = s.ruleSatisfied(ctx, rule, curTime, s.lastPrices)
		}
		s.wasSatisfied[rule.ID] = satisfied
	}

	s.snapshots = append(s.snapshots, types.Snapshot{
		Timestamp:    curTime,
		TotalValue:   s.state.totalValue(s.lastPrices),
		Allocations:  s.state.allocations(s.lastPrices),
		FiredRuleIDs: firedIDs,
	})
}

func (s *simulation) fireRule(rule types.Rule, curTime time.Time) {
	for _, action := range rule.Actions {
		valueBefore := s.state.totalValue(s.lastPrices)
		if err := s.applyAction(action, s.lastPrices); err != nil {
			// A rule that cannot execute at this tick is skipped, not
			// fatal. Skips leave no timeline entry.
			simLog := logger.GetForComponent("simulation")
			simLog.Warn().
				Err(err).
				Str("rule", rule.ID).
				Str("action", action.ActionKind()).
				Time("tick", curTime).
				Msg("action skipped")
			continue
		}
		if action.ActionKind() == types.ActionRebalance {
			s.rebalances++
		}
		s.timeline = append(s.timeline, types.TimelineEvent{
			Timestamp:   curTime,
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			Action:      action.ActionKind(),
			ValueBefore: valueBefore,
			ValueAfter:  s.state.totalValue(s.lastPrices),
		})
	}
	s.lastFire[rule.ID] = curTime
	s.resetPriceAnchors(rule)
}

// orderedRules returns the enabled rules in priority order, lower
// numbers first, original order preserved within a priority.
func (s *simulation) orderedRules() []types.Rule {
	rules := make([]types.Rule, 0, len(s.config.Rules))
	for _, rule := range s.config.Rules {
		if rule.Enabled {
			rules = append(rules, rule)
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
	return rules
}

// buyHoldFinalValue prices the untouched baseline at the last seen
// prices.
func (s *simulation) buyHoldFinalValue() decimal.Decimal {
	total := decimal.Zero
	for assetID, units := range s.buyHoldUnits {
		if price, ok := s.lastPrices[assetID]; ok {
			total = total.Add(units.Mul(price))
		}
	}
	return total
}
