package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatasetPath    = "educacion_basica.csv"
	defaultDatasetTable   = "educacion_basica"
	defaultRequestTimeout = 30 * time.Second
)

// Config holds runtime configuration for the importer.
type Config struct {
	DatabaseURL    string
	DatasetPath    string
	DatasetURL     string
	DatasetTable   string
	RequestTimeout time.Duration
	LogLevel       string
	DryRun         bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		DatasetPath:    defaultDatasetPath,
		DatasetTable:   defaultDatasetTable,
		RequestTimeout: defaultRequestTimeout,
		LogLevel:       "info",
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" && !cfg.DryRun {
		return cfg, errors.New("DATABASE_URL is required")
	}

	if v := strings.TrimSpace(os.Getenv("DATASET_PATH")); v != "" {
		cfg.DatasetPath = v
	}
	cfg.DatasetURL = strings.TrimSpace(os.Getenv("DATASET_URL"))
	if v := strings.TrimSpace(os.Getenv("DATASET_TABLE")); v != "" {
		cfg.DatasetTable = v
	}

	if v := strings.TrimSpace(os.Getenv("IMPORT_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid IMPORT_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	return cfg, nil
}
