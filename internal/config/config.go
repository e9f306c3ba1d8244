package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the single configuration surface injected into the adapters.
// Resolution order for every key: process environment, then a .env file in
// the working directory, then the optional local overrides file. The
// overrides file plays the role the browser app gave to locally stored
// connection settings: a user-editable layer that survives restarts.
type Config struct {
	// DatabaseURL is the Postgres connection string of the hosted store.
	DatabaseURL string

	// GeminiAPIKey authenticates the default extraction provider.
	GeminiAPIKey string
	// GeminiModel is the Gemini model used for extraction and PDF parsing.
	GeminiModel string

	// ExtractProvider selects the extraction backend: "gemini" (default)
	// or "openai" for an OpenAI-compatible endpoint.
	ExtractProvider string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string

	// GCSBucket receives archived statement files and export bundles.
	// Empty disables archiving.
	GCSBucket string

	// SheetID and SheetTab locate the cost-center spreadsheet.
	SheetID     string
	SheetTab    string
	SheetAPIKey string

	// NotionToken and NotionDatabaseID configure the report mirror.
	NotionToken      string
	NotionDatabaseID string

	// OpsCachePath is where the synced operations set is cached locally.
	OpsCachePath string

	Port string

	// MaxImageDimension bounds receipt images before extraction.
	MaxImageDimension int
}

// OverridesPath is the default location of the local overrides file.
const OverridesPath = "caixinha.local.json"

// Load resolves the configuration. A missing .env or overrides file is not
// an error; missing required keys are reported by the adapters that need
// them, not here, so read-only commands keep working unconfigured.
func Load() (*Config, error) {
	return LoadFrom(OverridesPath)
}

// LoadFrom is Load with an explicit overrides file path.
func LoadFrom(overridesPath string) (*Config, error) {
	// .env layer sits below real env vars: godotenv.Load never overwrites
	// variables that are already set.
	_ = godotenv.Load()

	overrides, err := readOverrides(overridesPath)
	if err != nil {
		return nil, err
	}

	get := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v, ok := overrides[key]; ok && v != "" {
			return v
		}
		return fallback
	}

	maxDim, err := strconv.Atoi(get("MAX_IMAGE_DIMENSION", "1024"))
	if err != nil || maxDim <= 0 {
		maxDim = 1024
	}

	return &Config{
		DatabaseURL:       get("DATABASE_URL", ""),
		GeminiAPIKey:      get("GEMINI_API_KEY", ""),
		GeminiModel:       get("GEMINI_MODEL", "gemini-2.5-flash"),
		ExtractProvider:   get("EXTRACT_PROVIDER", "gemini"),
		OpenAIAPIKey:      get("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     get("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:       get("OPENAI_MODEL", "gpt-4o-mini"),
		GCSBucket:         get("GCS_BUCKET", ""),
		SheetID:           get("OPS_SHEET_ID", ""),
		SheetTab:          get("OPS_SHEET_TAB", "JANEIRO"),
		SheetAPIKey:       get("OPS_SHEET_API_KEY", ""),
		NotionToken:       get("NOTION_TOKEN", ""),
		NotionDatabaseID:  get("NOTION_DATABASE_ID", ""),
		OpsCachePath:      get("OPS_CACHE_PATH", "operations.json"),
		Port:              get("PORT", "8080"),
		MaxImageDimension: maxDim,
	}, nil
}

func readOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading overrides %s: %w", path, err)
	}

	overrides := map[string]string{}
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("config: parsing overrides %s: %w", path, err)
	}
	return overrides, nil
}
