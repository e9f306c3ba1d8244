package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/caixinha/caixinha-server/internal/config"
	"github.com/caixinha/caixinha-server/internal/logger"
	"github.com/caixinha/caixinha-server/internal/opssync"
)

func main() {
	log := logger.New()

	var sheetID, apiKey, tab, cachePath string

	flag.StringVar(&sheetID, "sheet-id", "", "Google Sheets spreadsheet ID (falls back to OPS_SHEET_ID)")
	flag.StringVar(&apiKey, "api-key", "", "Google API key (falls back to OPS_SHEET_API_KEY)")
	flag.StringVar(&tab, "tab", "", "Sheet tab to read the operations column from (falls back to OPS_SHEET_TAB)")
	flag.StringVar(&cachePath, "cache", "", "Path of the local operations cache (falls back to OPS_CACHE_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if sheetID == "" {
		sheetID = cfg.SheetID
	}
	if apiKey == "" {
		apiKey = cfg.SheetAPIKey
	}
	if tab == "" {
		tab = cfg.SheetTab
	}
	if cachePath == "" {
		cachePath = cfg.OpsCachePath
	}

	if sheetID == "" {
		log.Fatal().Msg("-sheet-id flag or OPS_SHEET_ID is required")
	}
	if apiKey == "" {
		log.Fatal().Msg("-api-key flag or OPS_SHEET_API_KEY is required")
	}
	if tab == "" {
		log.Fatal().Msg("-tab flag or OPS_SHEET_TAB is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	reader, err := opssync.NewGoogleSheets(ctx, apiKey, sheetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Sheets client")
	}

	ops, err := opssync.New(reader, cachePath).Sync(ctx, tab)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Synced %d operations from tab %q:\n", len(ops), tab)
	for _, op := range ops {
		fmt.Printf("  %s\n", op)
	}
}
