package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

var testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func validRequest() types.BacktestRequest {
	return types.BacktestRequest{
		VaultConfig: types.VaultConfig{
			Name: "test vault",
			Assets: []types.Asset{
				{AssetID: "XLM", Percentage: decimal.NewFromInt(60)},
				{AssetID: "USDC", Percentage: decimal.NewFromInt(40)},
			},
		},
		StartTime:      testNow.Add(-90 * 24 * time.Hour),
		EndTime:        testNow.Add(-24 * time.Hour),
		InitialCapital: decimal.NewFromInt(10000),
		Resolution:     86400000,
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*types.BacktestRequest)
		wantField string
	}{
		{"valid request", func(r *types.BacktestRequest) {}, ""},
		{"start after end", func(r *types.BacktestRequest) {
			r.StartTime = r.EndTime.Add(time.Hour)
		}, "startTime"},
		{"start equals end", func(r *types.BacktestRequest) {
			r.StartTime = r.EndTime
		}, "startTime"},
		{"end in the future", func(r *types.BacktestRequest) {
			r.EndTime = testNow.Add(time.Hour)
		}, "endTime"},
		{"window under seven days", func(r *types.BacktestRequest) {
			r.StartTime = r.EndTime.Add(-6 * 24 * time.Hour)
		}, "endTime"},
		{"zero capital", func(r *types.BacktestRequest) {
			r.InitialCapital = decimal.Zero
		}, "initialCapital"},
		{"negative capital", func(r *types.BacktestRequest) {
			r.InitialCapital = decimal.NewFromInt(-5)
		}, "initialCapital"},
		{"zero resolution", func(r *types.BacktestRequest) {
			r.Resolution = 0
		}, "resolution"},
		{"no assets", func(r *types.BacktestRequest) {
			r.VaultConfig.Assets = nil
		}, "vaultConfig.assets"},
		{"empty asset id", func(r *types.BacktestRequest) {
			r.VaultConfig.Assets[0].AssetID = ""
		}, "vaultConfig.assets"},
		{"duplicate asset", func(r *types.BacktestRequest) {
			r.VaultConfig.Assets[1].AssetID = "XLM"
		}, "vaultConfig.assets"},
		{"negative weight", func(r *types.BacktestRequest) {
			r.VaultConfig.Assets[0].Percentage = decimal.NewFromInt(-10)
		}, "vaultConfig.assets"},
		{"negative management fee", func(r *types.BacktestRequest) {
			r.VaultConfig.ManagementFee = decimal.NewFromInt(-1)
		}, "vaultConfig.managementFee"},
		{"negative performance fee", func(r *types.BacktestRequest) {
			r.VaultConfig.PerformanceFee = decimal.NewFromInt(-1)
		}, "vaultConfig.performanceFee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := validateRequest(req, testNow)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("field = %s, want %s", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateRequestExactSevenDays(t *testing.T) {
	req := validRequest()
	req.StartTime = req.EndTime.Add(-7 * 24 * time.Hour)

	if err := validateRequest(req, testNow); err != nil {
		t.Fatalf("a window of exactly seven days should pass: %v", err)
	}
}
