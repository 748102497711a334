// Package reports generates narrative summaries and Corrective Action Plans
// from a document's extracted data through the language model.
package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/llm"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/repository"
)

// Service produces model-generated reports. Unlike extraction there is no
// deterministic fallback here: an unavailable model is an explicit error.
type Service struct {
	gen     llm.Generator
	docs    repository.DocumentRepository
	records repository.RecordRepository
	log     *slog.Logger
}

// NewService creates a report service. gen may be nil when no model is
// configured; every report call then fails with ErrModelUnavailable.
func NewService(gen llm.Generator, docs repository.DocumentRepository,
	records repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, docs: docs, records: records, log: logger}
}

// ErrModelUnavailable reports that no language model is reachable for report
// generation.
var ErrModelUnavailable = common.NewAppError("MODEL_UNAVAILABLE",
	"language model is not available for report generation", nil)

// Summarize returns a short narrative summary of the document's raw text.
func (s *Service) Summarize(ctx context.Context, docID uuid.UUID) (string, error) {
	if s.gen == nil {
		return "", ErrModelUnavailable
	}

	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}
	if doc.RawText == nil || strings.TrimSpace(*doc.RawText) == "" {
		return "", common.NewAppError("NO_TEXT",
			"document has no extracted text to summarize", common.ErrInvalidInput)
	}

	summary, err := s.gen.Generate(ctx, llm.SummarySystemPrompt, llm.BuildSummaryPrompt(*doc.RawText))
	if err != nil {
		s.log.Error("reports.summary.failed", "document_id", docID, "error", err)
		return "", common.WrapError(err, "failed to generate summary")
	}
	s.log.Info("reports.summary.ok", "document_id", docID, "bytes", len(summary))
	return summary, nil
}

// GenerateCAP returns a Markdown Corrective Action Plan built from the
// document's extracted records.
func (s *Service) GenerateCAP(ctx context.Context, docID uuid.UUID) (string, error) {
	if s.gen == nil {
		return "", ErrModelUnavailable
	}

	if _, err := s.docs.GetByID(ctx, docID); err != nil {
		return "", err
	}
	recs, err := s.records.ListByDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", common.NewAppError("NO_RECORDS",
			"document has no extracted records for a corrective action plan", common.ErrInvalidInput)
	}

	recordsJSON, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return "", common.WrapError(err, "failed to encode records")
	}

	plan, err := s.gen.Generate(ctx, llm.CAPSystemPrompt, llm.BuildCAPPrompt(string(recordsJSON)))
	if err != nil {
		s.log.Error("reports.cap.failed", "document_id", docID, "error", err)
		return "", common.WrapError(err, "failed to generate corrective action plan")
	}
	s.log.Info("reports.cap.ok", "document_id", docID, "bytes", len(plan))
	return plan, nil
}

// ModelAvailable probes the configured model.
func (s *Service) ModelAvailable(ctx context.Context) bool {
	return s.gen != nil && s.gen.IsAvailable(ctx)
}
