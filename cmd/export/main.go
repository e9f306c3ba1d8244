package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caixinha/caixinha-server/internal/config"
	"github.com/caixinha/caixinha-server/internal/logger"
	"github.com/caixinha/caixinha-server/internal/report"
	"github.com/caixinha/caixinha-server/internal/store/postgres"
)

func main() {
	log := logger.New()

	var userID, outDir string
	var xlsx, zip bool

	flag.StringVar(&userID, "user", "", "User whose transactions to export (required)")
	flag.StringVar(&outDir, "out", ".", "Directory to write the export files into")
	flag.BoolVar(&xlsx, "xlsx", true, "Write the general spreadsheet report")
	flag.BoolVar(&zip, "zip", false, "Write the receipts bundle")
	flag.Parse()

	if userID == "" {
		log.Fatal().Msg("-user flag is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pool.Close()

	transactions, err := postgres.NewRepository(pool).ListByUser(ctx, userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list transactions")
	}

	stamp := time.Now().Format("2006-01-02")

	if xlsx {
		data, err := report.Excel(transactions)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build spreadsheet report")
		}
		name := filepath.Join(outDir, fmt.Sprintf("Relatorio_Geral_Caixinha_%s.xlsx", stamp))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			log.Fatal().Err(err).Str("file", name).Msg("Failed to write spreadsheet report")
		}
		fmt.Printf("Wrote %s (%d transactions).\n", name, len(transactions))
	}

	if zip {
		data, count, err := report.Bundle(transactions)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build receipts bundle")
		}
		name := filepath.Join(outDir, fmt.Sprintf("comprovantes_caixinha_%s.zip", stamp))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			log.Fatal().Err(err).Str("file", name).Msg("Failed to write receipts bundle")
		}
		fmt.Printf("Wrote %s (%d attachments).\n", name, count)
	}
}
