package engine

import (
	"fmt"
	"time"

	"vaultsim/types"
)

// MinBacktestSpan is the shortest window a request may cover. Shorter
// windows produce too few ticks for the risk metrics to mean anything.
const MinBacktestSpan = 7 * 24 * time.Hour

// ValidationError reports which request field was rejected and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func validateRequest(req types.BacktestRequest, now time.Time) error {
	if !req.StartTime.Before(req.EndTime) {
		return &ValidationError{Field: "startTime", Message: "must be before endTime"}
	}
	if req.EndTime.After(now) {
		return &ValidationError{Field: "endTime", Message: "must not be in the future"}
	}
	if req.EndTime.Sub(req.StartTime) < MinBacktestSpan {
		return &ValidationError{Field: "endTime", Message: "window must span at least 7 days"}
	}
	if !req.InitialCapital.IsPositive() {
		return &ValidationError{Field: "initialCapital", Message: "must be positive"}
	}
	if req.Resolution <= 0 {
		return &ValidationError{Field: "resolution", Message: "must be positive"}
	}
	if len(req.VaultConfig.Assets) == 0 {
		return &ValidationError{Field: "vaultConfig.assets", Message: "at least one asset is required"}
	}
	seen := make(map[string]bool, len(req.VaultConfig.Assets))
	for _, a := range req.VaultConfig.Assets {
		if a.AssetID == "" {
			return &ValidationError{Field: "vaultConfig.assets", Message: "asset with empty id"}
		}
		if seen[a.AssetID] {
			return &ValidationError{Field: "vaultConfig.assets", Message: fmt.Sprintf("duplicate asset %s", a.AssetID)}
		}
		seen[a.AssetID] = true
		if a.Percentage.IsNegative() {
			return &ValidationError{Field: "vaultConfig.assets", Message: fmt.Sprintf("negative weight for %s", a.AssetID)}
		}
	}
	if req.VaultConfig.ManagementFee.IsNegative() {
		return &ValidationError{Field: "vaultConfig.managementFee", Message: "must not be negative"}
	}
	if req.VaultConfig.PerformanceFee.IsNegative() {
		return &ValidationError{Field: "vaultConfig.performanceFee", Message: "must not be negative"}
	}
	return nil
}
