package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caixinha/caixinha-server/internal/config"
	"github.com/caixinha/caixinha-server/internal/extract"
	"github.com/caixinha/caixinha-server/internal/imageprep"
	"github.com/caixinha/caixinha-server/internal/logger"
)

func main() {
	log := logger.New()

	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to the receipt image or PDF (required)")
	flag.Parse()

	if filePath == "" {
		log.Fatal().Msg("-file flag is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", filePath).Msg("Failed to read receipt file")
	}

	mimeType := mime.TypeByExtension(filepath.Ext(filePath))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	payload := raw
	if strings.HasPrefix(mimeType, "image/") {
		prepared, err := imageprep.Prepare(raw, cfg.MaxImageDimension)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare image")
		}
		payload = prepared
		mimeType = "image/jpeg"
	}

	var client extract.Client
	if cfg.ExtractProvider == "openai" {
		client = extract.NewOpenAICompatible(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		client, err = extract.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
	}

	result, err := extract.New(client).Extract(ctx, payload, mimeType)
	if err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}

	fmt.Printf("Date:     %s\n", result.Date)
	fmt.Printf("Amount:   R$ %.2f\n", result.Amount)
	fmt.Printf("City:     %s\n", result.City)
	fmt.Printf("Category: %s\n", result.Category)
	if result.Notes != "" {
		fmt.Printf("Notes:    %s\n", result.Notes)
	}
	if result.Degraded {
		fmt.Println("Warning: fields came from the fallback parser, confirm them before saving.")
	}
}
