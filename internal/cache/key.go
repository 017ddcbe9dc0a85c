package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"vaultsim/types"
)

// keyEnvelope is the canonical form hashed into a cache key. Only fields
// that change the simulation outcome are included; cosmetic vault fields
// (owner, name, description, visibility) and the network label are not.
type keyEnvelope struct {
	Assets         []keyAsset        `json:"assets"`
	Rules          []json.RawMessage `json:"rules"`
	ManagementFee  string            `json:"managementFee"`
	PerformanceFee string            `json:"performanceFee"`
	StartTime      int64             `json:"startTime"`
	EndTime        int64             `json:"endTime"`
	InitialCapital string            `json:"initialCapital"`
	Resolution     int64             `json:"resolution"`
}

type keyAsset struct {
	AssetID     string `json:"assetId"`
	AssetIssuer string `json:"assetIssuer,omitempty"`
	Weight      string `json:"weight"`
}

// Key derives the content-addressed cache key for a request. The vault
// configuration is normalized before hashing so that equivalent weight
// spellings collapse onto the same key.
func Key(req types.BacktestRequest) (string, error) {
	cfg := req.VaultConfig
	cfg.Normalize()

	env := keyEnvelope{
		ManagementFee:  canonDecimal(cfg.ManagementFee),
		PerformanceFee: canonDecimal(cfg.PerformanceFee),
		StartTime:      req.StartTime.UnixMilli(),
		EndTime:        req.EndTime.UnixMilli(),
		InitialCapital: canonDecimal(req.InitialCapital),
		Resolution:     req.Resolution,
	}

	for _, a := range cfg.Assets {
		env.Assets = append(env.Assets, keyAsset{
			AssetID:     a.AssetID,
			AssetIssuer: a.AssetIssuer,
			Weight:      canonDecimal(a.Percentage),
		})
	}

	for _, r := range cfg.Rules {
		raw, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("hashing rule %s: %w", r.ID, err)
		}
		env.Rules = append(env.Rules, raw)
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("hashing request: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// canonDecimal renders a decimal with a fixed scale so that 50 and 50.0
// hash identically.
func canonDecimal(d decimal.Decimal) string {
	return d.StringFixed(8)
}
