package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSyntheticYieldsDeterminism(t *testing.T) {
	at := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	yields := NewSyntheticYields("testnet")

	first, ok := yields.APY(context.Background(), "stellar-liquid", "XLM", at)
	if !ok {
		t.Fatal("expected an APY")
	}
	second, _ := yields.APY(context.Background(), "stellar-liquid", "XLM", at)
	if !first.Equal(second) {
		t.Fatalf("APY not deterministic: %s vs %s", first, second)
	}

	// Bounded by base 2-12 plus a 4 point swing.
	if first.LessThan(decimal.NewFromInt(-2)) || first.GreaterThan(decimal.NewFromInt(16)) {
		t.Fatalf("APY %s outside the expected band", first)
	}

	other, _ := yields.APY(context.Background(), "blend", "XLM", at)
	if first.Equal(other) {
		t.Errorf("different protocols should not share an APY curve")
	}
}
