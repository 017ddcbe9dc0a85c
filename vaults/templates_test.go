package vaults

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

func TestTemplatesAreWellFormed(t *testing.T) {
	for _, name := range []string{"balanced", "drift-guard", "yield-seeker"} {
		t.Run(name, func(t *testing.T) {
			cfg, ok := ByName(name)
			if !ok {
				t.Fatalf("template %s not found", name)
			}

			sum := decimal.Zero
			for _, asset := range cfg.Assets {
				sum = sum.Add(asset.Percentage)
			}
			if !sum.Equal(decimal.NewFromInt(100)) {
				t.Errorf("weights sum to %s, want 100", sum)
			}

			for _, rule := range cfg.Rules {
				if !rule.Enabled {
					t.Errorf("rule %s is disabled in a template", rule.ID)
				}
				if len(rule.Conditions) == 0 || len(rule.Actions) == 0 {
					t.Errorf("rule %s is missing conditions or actions", rule.ID)
				}
			}

			// Templates must survive the JSON boundary, rules included.
			data, err := json.Marshal(cfg)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var back types.VaultConfig
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(back.Rules) != len(cfg.Rules) {
				t.Errorf("rules after round trip = %d, want %d", len(back.Rules), len(cfg.Rules))
			}
		})
	}
}

func TestByNameUnknownTemplate(t *testing.T) {
	if _, ok := ByName("does-not-exist"); ok {
		t.Error("unknown template should not resolve")
	}
}
