package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/caixinha/caixinha-server/internal/config"
	"github.com/caixinha/caixinha-server/internal/logger"
	"github.com/caixinha/caixinha-server/internal/notionsync"
	"github.com/caixinha/caixinha-server/internal/store/postgres"
)

func main() {
	log := logger.New()

	var notionToken, notionDBID, userID string
	var dryRun bool

	flag.StringVar(&notionToken, "notion-token", "", "Notion integration token (falls back to NOTION_TOKEN)")
	flag.StringVar(&notionDBID, "notion-db-id", "", "Notion database ID (falls back to NOTION_DATABASE_ID)")
	flag.StringVar(&userID, "user", "", "User whose transactions to sync (required)")
	flag.BoolVar(&dryRun, "dry-run", false, "Log what would change without writing to Notion")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if notionToken == "" {
		notionToken = cfg.NotionToken
	}
	if notionDBID == "" {
		notionDBID = cfg.NotionDatabaseID
	}

	if notionToken == "" {
		log.Fatal().Msg("-notion-token flag or NOTION_TOKEN is required")
	}
	if notionDBID == "" {
		log.Fatal().Msg("-notion-db-id flag or NOTION_DATABASE_ID is required")
	}
	if userID == "" {
		log.Fatal().Msg("-user flag is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pool.Close()

	repo := postgres.NewRepository(pool)
	notion := notionsync.NewNotionClient(notionToken)

	result, err := notionsync.SyncTransactions(ctx, repo, notion, notionDBID, userID, dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed: %d created, %d updated, %d archived.\n",
		result.Created, result.Updated, result.Deleted)
}
