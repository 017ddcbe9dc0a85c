package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"vaultsim/internal/cache"
	"vaultsim/internal/config"
	"vaultsim/internal/engine"
	"vaultsim/internal/logger"
	"vaultsim/internal/repository"
	"vaultsim/types"
	"vaultsim/vaults"
)

func main() {
	requestPath := flag.String("request", "", "path to a backtest request JSON file")
	template := flag.String("template", "", "run a built-in vault template (balanced, drift-guard, yield-seeker)")
	capital := flag.String("capital", "10000", "initial capital when using -template")
	days := flag.Int("days", 90, "window length in days when using -template")
	outPath := flag.String("out", "", "write the response JSON to this file instead of stdout")
	timelineCSV := flag.String("timeline-csv", "", "also write the fired-rule timeline as CSV")
	valuesCSV := flag.String("values-csv", "", "also write the value history as CSV")
	sweep := flag.Bool("sweep", false, "sweep expired cache entries after the run")
	flag.Parse()

	// A missing .env file is fine, the defaults cover local runs.
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Initialize(cfg.LogLevel)
	log := logger.GetForComponent("cli")

	ctx := context.Background()

	req, err := loadRequest(*requestPath, *template, *capital, *days, cfg.Network)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build the backtest request")
	}

	provider, cleanup, err := buildProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to the price source")
	}
	defer cleanup()

	store, storeCleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to the result cache")
	}
	defer storeCleanup()

	eng := engine.NewEngine(provider,
		engine.WithCache(store),
		engine.WithYieldProvider(repository.NewSyntheticYields(cfg.Network)),
		engine.WithProgress(),
	)

	resp, err := eng.Run(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("backtest failed")
	}

	if err := writeResponse(resp, *outPath); err != nil {
		log.Fatal().Err(err).Msg("could not write the response")
	}
	if *timelineCSV != "" {
		if err := engine.WriteTimelineCSVFile(*timelineCSV, resp.Timeline); err != nil {
			log.Fatal().Err(err).Msg("could not write the timeline CSV")
		}
	}
	if *valuesCSV != "" {
		if err := engine.WriteValueHistoryCSVFile(*valuesCSV, resp.PortfolioValueHistory); err != nil {
			log.Fatal().Err(err).Msg("could not write the value history CSV")
		}
	}

	if *sweep {
		removed, err := store.Sweep(ctx, cache.RetentionPeriod)
		if err != nil {
			log.Warn().Err(err).Msg("cache sweep failed")
		} else {
			log.Info().Int("removed", removed).Msg("cache sweep complete")
		}
	}
}

// loadRequest builds the request either from a JSON file or from a
// built-in template plus the -capital/-days flags.
func loadRequest(path, template, capital string, days int, network string) (types.BacktestRequest, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return types.BacktestRequest{}, fmt.Errorf("read request file: %w", err)
		}
		var req types.BacktestRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return types.BacktestRequest{}, fmt.Errorf("parse request file: %w", err)
		}
		return req, nil
	}

	if template == "" {
		return types.BacktestRequest{}, fmt.Errorf("either -request or -template is required")
	}
	vaultConfig, ok := vaults.ByName(template)
	if !ok {
		return types.BacktestRequest{}, fmt.Errorf("unknown template %q", template)
	}
	initialCapital, err := decimal.NewFromString(capital)
	if err != nil {
		return types.BacktestRequest{}, fmt.Errorf("parse -capital: %w", err)
	}

	end := time.Now().Add(-24 * time.Hour).Truncate(24 * time.Hour)
	return types.BacktestRequest{
		VaultConfig:    vaultConfig,
		StartTime:      end.Add(-time.Duration(days) * 24 * time.Hour),
		EndTime:        end,
		InitialCapital: initialCapital,
		Resolution:     (24 * time.Hour).Milliseconds(),
		Network:        network,
	}, nil
}

func buildProvider(cfg *config.Config) (engine.PriceProvider, func(), error) {
	synthetic := repository.NewSyntheticProvider(cfg.Network)
	if cfg.DatabaseURL == "" {
		return synthetic, func() {}, nil
	}
	db, err := repository.NewDatabase(cfg.DatabaseURL, cfg.Network)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewFallbackProvider(&db, synthetic), db.Close, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore(), func() {}, nil
	}
	store, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

func writeResponse(resp *types.BacktestResponse, path string) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write response file: %w", err)
	}
	return nil
}
