package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/caixinha/caixinha-server/internal/config"
	"github.com/caixinha/caixinha-server/internal/logger"
	"github.com/caixinha/caixinha-server/internal/store/postgres"
)

func main() {
	log := logger.New()

	apply := flag.Bool("apply", false, "Run the setup SQL against the configured database (default: print it)")
	flag.Parse()

	if !*apply {
		// Printing lets the user paste the script into a hosted SQL
		// console, which is the usual path for managed Postgres.
		fmt.Print(postgres.SetupSQL)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required with -apply")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pool.Close()

	repo := postgres.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Schema setup failed")
	}

	fmt.Println("Schema is up to date.")
}
