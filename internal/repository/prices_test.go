package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var startTime = time.UnixMilli(0).UTC()
var endTime = startTime.Add(time.Hour * 5)
var testResolution = time.Hour

type mockPricesRepository struct {
	sqlError error
	rows     []PriceRow
}

func (m mockPricesRepository) ListPrices(_ context.Context, _ ListPricesParams) ([]PriceRow, error) {
	if m.sqlError != nil {
		return nil, m.sqlError
	}
	return m.rows, nil
}

func TestDatabase_GetPriceSeries(t *testing.T) {
	tests := []struct {
		name        string
		rows        []PriceRow
		sqlErr      error
		wantErr     error
		wantSamples int
	}{
		{"should throw ErrNoPrices on empty result", nil, nil, ErrNoPrices, 0},
		{"should throw ErrNoPrices on sql.ErrNoRows", nil, sql.ErrNoRows, ErrNoPrices, 0},
		{"should group rows into samples", mockRows(startTime, endTime), nil, nil, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &Database{
				prices:  mockPricesRepository{sqlError: tt.sqlErr, rows: tt.rows},
				network: "testnet",
			}
			got, err := db.GetPriceSeries(context.Background(), []string{"XLM", "USDC"}, startTime, endTime, testResolution)

			if err != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetPriceSeries() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if len(got) != tt.wantSamples {
				t.Fatalf("GetPriceSeries() samples = %d, want %d", len(got), tt.wantSamples)
			}
			for i := 1; i < len(got); i++ {
				if !got[i-1].Timestamp.Before(got[i].Timestamp) {
					t.Errorf("samples out of order at %d: %s >= %s", i, got[i-1].Timestamp, got[i].Timestamp)
				}
			}
			for _, sample := range got {
				if _, ok := sample.Price("XLM"); !ok {
					t.Errorf("sample %s missing XLM price", sample.Timestamp)
				}
				if _, ok := sample.Price("USDC"); !ok {
					t.Errorf("sample %s missing USDC price", sample.Timestamp)
				}
			}
		})
	}
}

func TestDatabase_GetPriceSeriesPartialSamples(t *testing.T) {
	// USDC has no row in the second bucket. The sample still surfaces with
	// just the assets that reported.
	rows := []PriceRow{
		{Timestamp: startTime, AssetID: "USDC", Price: decimal.NewFromInt(1)},
		{Timestamp: startTime, AssetID: "XLM", Price: decimal.RequireFromString("0.4")},
		{Timestamp: startTime.Add(time.Hour), AssetID: "XLM", Price: decimal.RequireFromString("0.41")},
	}
	db := &Database{prices: mockPricesRepository{rows: rows}, network: "testnet"}

	got, err := db.GetPriceSeries(context.Background(), []string{"XLM", "USDC"}, startTime, endTime, testResolution)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("samples = %d, want 2", len(got))
	}
	if _, ok := got[1].Price("USDC"); ok {
		t.Error("second sample should not carry a USDC price")
	}
	if p, ok := got[1].Price("XLM"); !ok || !p.Equal(decimal.RequireFromString("0.41")) {
		t.Errorf("second sample XLM = %s, want 0.41", p)
	}
}

func mockRows(start, end time.Time) []PriceRow {
	var rows []PriceRow
	for ts := start; ts.Before(end); ts = ts.Add(testResolution) {
		rows = append(rows,
			PriceRow{Timestamp: ts, AssetID: "XLM", Price: decimal.NewFromInt(ts.UnixMilli() + 1)},
			PriceRow{Timestamp: ts, AssetID: "USDC", Price: decimal.NewFromInt(1)},
		)
	}
	return rows
}
