// Package server exposes the ingestion and review API over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joseph-ayodele/maintdoc-analyzer/internal/legacy"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/reports"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/repository"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/storage"
)

// ingestTimeout bounds one background pipeline run triggered over HTTP.
const ingestTimeout = 5 * time.Minute

// Server wires the HTTP routes to the application services.
type Server struct {
	docs      repository.DocumentRepository
	records   repository.RecordRepository
	anomalies repository.AnomalyRepository
	store     *storage.Store
	pipe      *pipeline.Pipeline
	converter *legacy.Converter
	reports   *reports.Service
	db        *repository.DB
	log       *slog.Logger
}

// New creates a Server over the given services.
func New(db *repository.DB, docs repository.DocumentRepository,
	records repository.RecordRepository, anomalies repository.AnomalyRepository,
	store *storage.Store, pipe *pipeline.Pipeline, converter *legacy.Converter,
	rep *reports.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		docs:      docs,
		records:   records,
		anomalies: anomalies,
		store:     store,
		pipe:      pipe,
		converter: converter,
		reports:   rep,
		db:        db,
		log:       logger,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/ai/health", s.handleAIHealth)

	r.Post("/upload", s.handleUpload)
	r.Post("/ingest/{id}", s.handleIngest)
	r.Post("/legacy/convert", s.handleLegacyConvert)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.handleListDocuments)
		r.Get("/{id}", s.handleGetDocument)
		r.Get("/{id}/records", s.handleListRecords)
		r.Get("/{id}/anomalies", s.handleListDocumentAnomalies)
		r.Get("/{id}/summary", s.handleSummary)
		r.Get("/{id}/report", s.handleCAP)
	})

	r.Route("/records", func(r chi.Router) {
		r.Get("/{id}", s.handleGetRecord)
		r.Get("/{id}/anomalies", s.handleListRecordAnomalies)
		r.Get("/{id}/history", s.handleStatusHistory)
		r.Post("/{id}/status", s.handleUpdateStatus)
	})

	r.Post("/anomalies/{id}/resolve", s.handleResolveAnomaly)

	return r
}

// requestLogger logs one line per request in the shared structured format.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds())
	})
}
