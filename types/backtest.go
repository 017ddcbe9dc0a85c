package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// BacktestRequest asks for a historical replay of a vault configuration.
// Resolution is the tick size in milliseconds.
type BacktestRequest struct {
	VaultConfig    VaultConfig     `json:"vaultConfig"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	InitialCapital decimal.Decimal `json:"initialCapital"`
	Resolution     int64           `json:"resolution"`
	Network        string          `json:"network"`
}

// ResolutionDuration returns the tick size as a duration.
func (r BacktestRequest) ResolutionDuration() time.Duration {
	return time.Duration(r.Resolution) * time.Millisecond
}

// Snapshot is the immutable per-tick record of the simulated portfolio.
type Snapshot struct {
	Timestamp    time.Time                  `json:"timestamp"`
	TotalValue   decimal.Decimal            `json:"totalValue"`
	Allocations  map[string]decimal.Decimal `json:"allocations"`
	FiredRuleIDs []string                   `json:"firedRuleIds,omitempty"`
}

// TimelineEvent is one audit entry for a fired rule action.
type TimelineEvent struct {
	Timestamp   time.Time       `json:"timestamp"`
	RuleID      string          `json:"ruleId"`
	RuleName    string          `json:"ruleName,omitempty"`
	Action      string          `json:"action"`
	ValueBefore decimal.Decimal `json:"valueBefore"`
	ValueAfter  decimal.Decimal `json:"valueAfter"`
}

// ValuePoint is one entry of the portfolio value history.
type ValuePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

// AllocationPoint is one entry of the allocation history.
type AllocationPoint struct {
	Timestamp   time.Time                  `json:"timestamp"`
	Allocations map[string]decimal.Decimal `json:"allocations"`
}

// BacktestMetrics summarizes a completed run. Percentages are expressed
// on a 0-100 scale.
type BacktestMetrics struct {
	TotalReturn       decimal.Decimal `json:"totalReturn"`
	TotalReturnAmount decimal.Decimal `json:"totalReturnAmount"`
	AnnualizedReturn  decimal.Decimal `json:"annualizedReturn"`
	Volatility        decimal.Decimal `json:"volatility"`
	SharpeRatio       decimal.Decimal `json:"sharpeRatio"`
	MaxDrawdown       decimal.Decimal `json:"maxDrawdown"`
	WinRate           decimal.Decimal `json:"winRate"`
	NumRebalances     int             `json:"numRebalances"`
	FinalValue        decimal.Decimal `json:"finalValue"`
	BuyAndHoldReturn  decimal.Decimal `json:"buyAndHoldReturn"`
}

// BacktestResponse is the full result contract returned to callers.
type BacktestResponse struct {
	Request               BacktestRequest   `json:"request"`
	Metrics               BacktestMetrics   `json:"metrics"`
	Timeline              []TimelineEvent   `json:"timeline"`
	PortfolioValueHistory []ValuePoint      `json:"portfolioValueHistory"`
	AllocationHistory     []AllocationPoint `json:"allocationHistory"`
	DataWarning           string            `json:"dataWarning,omitempty"`
}
