// Command importer loads the indicators CSV into the database table read by the API
// when DATABASE_URL is set.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/dataset"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/db"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/logging"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/query"
	"github.com/02loveslollipop/educacion-basica-viewer/services/importer/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("importer failed: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("importer failed: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+10*time.Second)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("importer failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	var (
		tbl    *dataset.Table
		err    error
		origin string
	)
	if cfg.DatasetURL != "" {
		origin = cfg.DatasetURL
		tbl, err = dataset.Fetch(ctx, &http.Client{Timeout: cfg.RequestTimeout}, cfg.DatasetURL)
	} else {
		origin = cfg.DatasetPath
		tbl, err = dataset.LoadFile(cfg.DatasetPath)
	}
	if err != nil {
		return err
	}

	domain := query.Domain(*tbl)
	logger.Info("dataset read",
		zap.String("origin", origin),
		zap.Int("records", tbl.Len()),
		zap.Int("departments", len(domain.Departments)),
		zap.Strings("categories", domain.Categories),
	)

	if cfg.DryRun {
		logger.Info("dry-run: skipping table replace", zap.String("table", cfg.DatasetTable))
		return nil
	}

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ReplaceTable(ctx, cfg.DatasetTable, tbl); err != nil {
		return err
	}

	logger.Info("table replaced", zap.String("table", cfg.DatasetTable), zap.Int("records", tbl.Len()))
	return nil
}
