package engine

import (
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

const daysPerYear = 365.0

// computeMetrics derives the full metric set from the snapshot series.
// The independent calculations fan out across goroutines; ratios that
// combine them are assembled after the wait.
func computeMetrics(
	initial decimal.Decimal,
	snapshots []types.Snapshot,
	resolution time.Duration,
	riskFreeRate decimal.Decimal,
	rebalances int,
	buyHoldFinal decimal.Decimal,
) types.BacktestMetrics {
	metrics := types.BacktestMetrics{NumRebalances: rebalances}
	if len(snapshots) == 0 || !initial.IsPositive() {
		return metrics
	}

	final := snapshots[len(snapshots)-1].TotalValue
	metrics.FinalValue = final
	metrics.TotalReturnAmount = final.Sub(initial)
	metrics.TotalReturn = metrics.TotalReturnAmount.Div(initial).Mul(hundred)
	metrics.BuyAndHoldReturn = buyHoldFinal.Sub(initial).Div(initial).Mul(hundred)

	returns := perTickReturns(snapshots)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		metrics.AnnualizedReturn = calcAnnualizedReturn(initial, final, snapshots, &wg)
	}()
	go func() {
		metrics.Volatility = calcVolatility(returns, resolution, &wg)
	}()
	go func() {
		metrics.MaxDrawdown = calcMaxDrawdown(snapshots, &wg)
	}()
	go func() {
		metrics.WinRate = calcWinRate(returns, &wg)
	}()
	wg.Wait()

	if metrics.Volatility.IsPositive() {
		metrics.SharpeRatio = metrics.AnnualizedReturn.Sub(riskFreeRate).Div(metrics.Volatility)
	}
	return metrics
}

// perTickReturns yields the fractional value change between consecutive
// snapshots. Ticks following a zero value contribute nothing.
func perTickReturns(snapshots []types.Snapshot) []decimal.Decimal {
	if len(snapshots) < 2 {
		return nil
	}
	returns := make([]decimal.Decimal, 0, len(snapshots)-1)
	prev := snapshots[0].TotalValue
	for _, snap := range snapshots[1:] {
		if prev.IsPositive() {
			returns = append(returns, snap.TotalValue.Div(prev).Sub(decimal.NewFromInt(1)))
		}
		prev = snap.TotalValue
	}
	return returns
}

// calcAnnualizedReturn compounds the total return over a 365-day year.
func calcAnnualizedReturn(initial, final decimal.Decimal, snapshots []types.Snapshot, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	duration := snapshots[len(snapshots)-1].Timestamp.Sub(snapshots[0].Timestamp)
	if duration <= 0 {
		return decimal.Zero
	}
	years := duration.Hours() / (24.0 * daysPerYear)

	ratio := final.Div(initial)
	if !ratio.IsPositive() {
		return decimal.Zero
	}

	annualized := math.Pow(ratio.InexactFloat64(), 1.0/years) - 1.0
	return decimal.NewFromFloat(annualized).Mul(hundred)
}

// calcVolatility annualizes the sample standard deviation of per-tick
// returns by sqrt of the tick count per year.
func calcVolatility(returns []decimal.Decimal, resolution time.Duration, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	if len(returns) < 2 || resolution <= 0 {
		return decimal.Zero
	}

	var sum float64
	values := make([]float64, len(returns))
	for i, r := range returns {
		values[i] = r.InexactFloat64()
		sum += values[i]
	}
	mean := sum / float64(len(values))

	var varianceSum float64
	for _, v := range values {
		diff := v - mean
		varianceSum += diff * diff
	}
	std := math.Sqrt(varianceSum / float64(len(values)-1))

	ticksPerYear := daysPerYear * 24.0 * float64(time.Hour) / float64(resolution)
	return decimal.NewFromFloat(std * math.Sqrt(ticksPerYear)).Mul(hundred)
}

// calcMaxDrawdown finds the largest peak-to-trough decline on a 0-100
// scale.
func calcMaxDrawdown(snapshots []types.Snapshot, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	peak := decimal.Zero
	maxDD := decimal.Zero
	for _, snap := range snapshots {
		value := snap.TotalValue
		if value.GreaterThan(peak) {
			peak = value
		}
		if peak.IsPositive() {
			dd := peak.Sub(value).Div(peak)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
			}
		}
	}
	if maxDD.GreaterThan(decimal.NewFromInt(1)) {
		maxDD = decimal.NewFromInt(1)
	}
	return maxDD.Mul(hundred)
}

// calcWinRate is the share of ticks whose value did not fall.
func calcWinRate(returns []decimal.Decimal, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	if len(returns) == 0 {
		return decimal.Zero
	}
	wins := 0
	for _, r := range returns {
		if !r.IsNegative() {
			wins++
		}
	}
	return decimal.NewFromInt(int64(wins)).
		Div(decimal.NewFromInt(int64(len(returns)))).
		Mul(hundred)
}
