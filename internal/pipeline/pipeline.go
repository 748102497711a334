// Package pipeline orchestrates one document's run from claimed upload to
// persisted records and anomalies.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/anomaly"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/extract"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/llm"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/normalize"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/repository"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/storage"
)

// Confidence scores by extraction path.
const (
	confidenceLLM   = 0.85
	confidenceRegex = 0.60
)

// maxErrorStatusLen bounds the failure message stored in the document status
// column.
const maxErrorStatusLen = 100

// Pipeline runs the ingestion stages for one document: claim, text
// extraction, structured extraction, normalization, anomaly detection, and a
// single-transaction persist.
type Pipeline struct {
	docs      repository.DocumentRepository
	store     *storage.Store
	texts     *extract.Extractor
	extractor *llm.Extractor
	detector  *anomaly.Detector
	log       *slog.Logger
}

// New assembles a Pipeline from its stages.
func New(docs repository.DocumentRepository, store *storage.Store, texts *extract.Extractor,
	extractor *llm.Extractor, detector *anomaly.Detector, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		docs:      docs,
		store:     store,
		texts:     texts,
		extractor: extractor,
		detector:  detector,
		log:       logger,
	}
}

// ProcessDocument runs the full pipeline for one uploaded document.
// Extraction and model failures are absorbed into the document's status;
// storage failures propagate. A document already being processed by another
// worker returns ErrConflict without touching it.
func (p *Pipeline) ProcessDocument(ctx context.Context, id uuid.UUID) error {
	doc, err := p.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	claimed, err := p.docs.ClaimForProcessing(ctx, id)
	if err != nil {
		return err
	}
	if !claimed {
		p.log.Warn("pipeline.claim.rejected", "document_id", id)
		return common.ErrConflict
	}
	p.log.Info("pipeline.start", "document_id", id, "file_type", doc.FileType)

	text, err := p.texts.Extract(p.store.Resolve(doc), doc.FileType)
	if err != nil {
		return p.fail(ctx, id, err)
	}
	p.log.Info("pipeline.extract.ok", "document_id", id, "text_bytes", len(text))

	candidates, method := p.extractor.ExtractRecords(ctx, text)

	confidence := confidenceLLM
	if method == constants.MethodRegex {
		confidence = confidenceRegex
	}

	results := make([]repository.ExtractionResult, 0, len(candidates))
	for _, c := range candidates {
		rec := normalize.Record(c)
		rec.ID = uuid.New()
		rec.DocumentID = id
		rec.Method = method
		rec.Confidence = confidence

		anomalies := p.detector.Detect(&rec)
		for i := range anomalies {
			anomalies[i].RecordID = rec.ID
			anomalies[i].DocumentID = id
		}
		results = append(results, repository.ExtractionResult{Record: &rec, Anomalies: anomalies})
	}

	if err := p.docs.SaveResults(ctx, id, text, results); err != nil {
		return p.fail(ctx, id, err)
	}

	p.log.Info("pipeline.complete", "document_id", id,
		"records", len(results), "method", method)
	return nil
}

// fail stores the truncated failure cause in the document status and returns
// the original error.
func (p *Pipeline) fail(ctx context.Context, id uuid.UUID, cause error) error {
	status := constants.ErrorPrefix + common.Truncate(cause.Error(), maxErrorStatusLen)
	if err := p.docs.SetStatus(ctx, id, status, false); err != nil {
		p.log.Error("pipeline.status.write_failed", "document_id", id, "error", err)
	}
	p.log.Error("pipeline.failed", "document_id", id, "error", cause)
	return cause
}
