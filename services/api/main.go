package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/02loveslollipop/educacion-basica-viewer/services/api/config"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/db"
	httpserver "github.com/02loveslollipop/educacion-basica-viewer/services/api/http"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/logging"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/metrics"
	"github.com/02loveslollipop/educacion-basica-viewer/services/api/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var source session.Source
	switch cfg.Source() {
	case config.SourceDatabase:
		store, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connection error", zap.Error(err))
		}
		defer store.Close()
		source = session.SQLSource{Store: store, Table: cfg.DatasetTable}
	case config.SourceURL:
		source = session.URLSource{URL: cfg.DatasetURL, Client: &http.Client{Timeout: cfg.FetchTimeout}}
	default:
		source = session.FileSource{Path: cfg.DatasetPath}
	}

	m := metrics.New()
	holder, err := session.Open(ctx, source, logger, m.DatasetLoaded)
	if err != nil {
		logger.Fatal("dataset load error", zap.String("source", string(cfg.Source())), zap.Error(err))
	}

	if cfg.Watch {
		if cfg.Source() != config.SourceFile {
			logger.Warn("DATASET_WATCH only applies to DATASET_PATH, ignoring", zap.String("source", string(cfg.Source())))
		} else if err := holder.Watch(ctx, cfg.DatasetPath); err != nil {
			logger.Fatal("dataset watch error", zap.Error(err))
		}
	}

	srv := httpserver.New(cfg, holder, logger, m)
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
