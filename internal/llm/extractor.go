package llm

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/maintdoc-analyzer/constants"
)

// Extractor turns raw document text into candidate records. It tries the
// model first and degrades to the deterministic regex extractor when the
// model is unavailable, returns nothing, or returns output that cannot be
// decoded at any stage. It never fails on malformed model output.
type Extractor struct {
	gen Generator
	log *slog.Logger
}

// NewExtractor creates an Extractor. gen may be nil, in which case every
// extraction takes the regex path.
func NewExtractor(gen Generator, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gen: gen, log: logger}
}

// ExtractRecords extracts candidate records from text and reports which path
// produced them. The result is always a (possibly empty) validated list.
func (e *Extractor) ExtractRecords(ctx context.Context, text string) ([]CandidateRecord, constants.ExtractionMethod) {
	if e.gen != nil {
		if records, ok := e.modelExtract(ctx, text); ok {
			return validateCandidates(records), constants.MethodLLM
		}
	}

	records := RegexExtract(text)
	e.log.Info("llm.extract.fallback", "records", len(records))
	return validateCandidates(records), constants.MethodRegex
}

// modelExtract runs the model path. ok is false whenever the path yielded no
// usable list: generation failure, empty response, undecodable output, or a
// decoded empty list.
func (e *Extractor) modelExtract(ctx context.Context, text string) ([]CandidateRecord, bool) {
	prompt := BuildExtractionPrompt(text)

	response, err := e.gen.Generate(ctx, extractionSystemPrompt, prompt)
	if err != nil {
		e.log.Warn("llm.extract.generate_failed", "error", err)
		return nil, false
	}
	if strings.TrimSpace(response) == "" {
		e.log.Warn("llm.extract.empty_response")
		return nil, false
	}

	records, ok := DecodeCandidates(response)
	if !ok {
		e.log.Warn("llm.extract.undecodable", "response_bytes", len(response))
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}

	e.log.Info("llm.extract.ok", "records", len(records))
	return records, true
}

// validateCandidates normalizes placeholder values ("null" in any casing) to
// absent and drops candidates carrying neither component nor maintenance
// action.
func validateCandidates(records []CandidateRecord) []CandidateRecord {
	out := make([]CandidateRecord, 0, len(records))
	for _, rec := range records {
		rec.Component = cleanValue(rec.Component)
		rec.System = cleanValue(rec.System)
		rec.FailureType = cleanValue(rec.FailureType)
		rec.MaintAction = cleanValue(rec.MaintAction)
		rec.Priority = cleanValue(rec.Priority)
		rec.Status = cleanValue(rec.Status)
		rec.StartDate = cleanValue(rec.StartDate)
		rec.EndDate = cleanValue(rec.EndDate)
		rec.CostEstimate = cleanValue(rec.CostEstimate)
		rec.SummaryNotes = cleanValue(rec.SummaryNotes)

		if rec.Empty() {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// cleanValue trims and treats an empty or "null" token as absent.
func cleanValue(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}
