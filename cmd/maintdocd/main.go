package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/maintdoc-analyzer/internal/anomaly"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/extract"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/legacy"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/llm"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/reports"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/repository"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/server"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/storage"
)

func main() {
	logger, closeLog := common.SetupLogger(os.Getenv("LOG_FILE"), slog.LevelInfo)
	defer func() { _ = closeLog() }()
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Health(ctx, cfg.Database.DialTimeout); err != nil {
		logger.Error("database health failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database health ok")

	store, err := storage.NewStore(cfg.Storage.UploadDir, logger)
	if err != nil {
		logger.Error("creating upload store", "error", err)
		os.Exit(1)
	}

	// Model is optional; without one, extraction takes the regex path and
	// report routes return 503.
	var gen llm.Generator
	if cfg.LLM.Provider != "none" {
		model, err := llm.NewModel(cfg.LLM, logger)
		if err != nil {
			logger.Warn("language model unavailable, using regex extraction only", "error", err)
		} else {
			gen = model
			logger.Info("language model initialized", "provider", cfg.LLM.Provider, "model", model.ModelName())
		}
	}

	docs := repository.NewDocumentRepository(db, logger)
	records := repository.NewRecordRepository(db, logger)
	anomalies := repository.NewAnomalyRepository(db, logger)

	pipe := pipeline.New(docs, store,
		extract.NewExtractor(logger),
		llm.NewExtractor(gen, logger),
		anomaly.NewDetector(),
		logger)
	converter := legacy.NewConverter(docs, logger)
	reportSvc := reports.NewService(gen, docs, records, logger)

	srv := server.New(db, docs, records, anomalies, store, pipe, converter, reportSvc, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
