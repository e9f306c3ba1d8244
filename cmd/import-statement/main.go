package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caixinha/caixinha-server/internal/config"
	"github.com/caixinha/caixinha-server/internal/domain"
	"github.com/caixinha/caixinha-server/internal/extract"
	"github.com/caixinha/caixinha-server/internal/logger"
	"github.com/caixinha/caixinha-server/internal/report"
	"github.com/caixinha/caixinha-server/internal/statement"
	"github.com/caixinha/caixinha-server/internal/store/postgres"
)

func main() {
	log := logger.New()

	var filePath, userID, operation string
	var confirm bool

	flag.StringVar(&filePath, "file", "", "Path to the statement file, .csv or .pdf (required)")
	flag.StringVar(&userID, "user", "", "User to import for (required with -confirm)")
	flag.StringVar(&operation, "operation", "", "Operation code to assign to every imported row")
	flag.BoolVar(&confirm, "confirm", false, "Persist the drafts instead of only previewing them")
	flag.Parse()

	if filePath == "" {
		log.Fatal().Msg("-file flag is required")
	}
	if confirm && userID == "" {
		log.Fatal().Msg("-user flag is required with -confirm")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if confirm && cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required with -confirm")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to read statement file")
	}

	batch, err := parseStatement(ctx, cfg, raw, filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse statement")
	}

	fmt.Printf("Parsed %d drafts from %s (%d rows skipped):\n", len(batch.Drafts), batch.Source, batch.SkippedRows)
	for _, d := range batch.Drafts {
		fmt.Printf("  %s  %-14s  R$ %8.2f  %s\n", d.Date, d.Category, d.Amount, d.City)
	}

	if !confirm {
		fmt.Println("Preview only. Re-run with -confirm -user <id> to persist.")
		return
	}

	transactions := make([]domain.Transaction, 0, len(batch.Drafts))
	for i := range batch.Drafts {
		exp := batch.Drafts[i]
		if operation != "" {
			exp.Operation = operation
		}
		transactions = append(transactions, domain.NewReceiptTransaction(&exp))
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pool.Close()

	repo := postgres.NewRepository(pool)
	if err := repo.CreateBulk(ctx, userID, transactions); err != nil {
		log.Fatal().Err(err).Msg("Failed to persist imported transactions")
	}

	fmt.Printf("Imported %d transactions for user %s.\n", len(transactions), userID)
}

func parseStatement(ctx context.Context, cfg *config.Config, raw []byte, filePath string) (*statement.DraftBatch, error) {
	name := filepath.Base(filePath)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".csv":
		parser := &statement.CSVParser{Placeholder: report.PlaceholderReceipt}
		return parser.Parse(raw, name)
	case ".pdf":
		model, err := buildModelClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		parser := &statement.PDFParser{Model: model, Placeholder: report.PlaceholderReceipt}
		return parser.Parse(ctx, raw, name)
	default:
		return nil, fmt.Errorf("unsupported statement extension %q, expected .csv or .pdf", filepath.Ext(filePath))
	}
}

func buildModelClient(ctx context.Context, cfg *config.Config) (extract.Client, error) {
	if cfg.ExtractProvider == "openai" {
		return extract.NewOpenAICompatible(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	}
	return extract.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}
